package cli

import (
	"errors"
	"strconv"

	"github.com/spf13/cobra"
)

var errDoctorFailed = errors.New("one or more checks failed")

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and connectivity",
	Long: `Checks the catalog, pings the configured LLM and transcription
providers and runs a short LLM completion. Exits non-zero if any check fails.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	ok := true

	check := func(name string, err error, detail string) {
		if err != nil {
			ok = false
			cmd.Printf("  [FAIL] %-14s %v\n", name, err)
			return
		}
		cmd.Printf("  [ OK ] %-14s %s\n", name, detail)
	}

	cmd.Println("aisle doctor")
	cmd.Println()

	stats, err := app.Catalog.Stats(ctx)
	check("catalog", err, pluralise(stats.Products, "product")+", "+pluralise(stats.Aisles, "aisle"))

	llm := app.Config.LLMSettings()
	if llm.IsConfigured() {
		err := app.Validator.ValidateLLM(ctx, llm)
		check("llm", err, string(llm.Provider)+" "+llm.Model)
		if err == nil {
			reply, perr := app.Validator.ProbeLLM(ctx, llm)
			check("completion", perr, strconv.Quote(truncate(reply, 40)))
		}
	} else {
		cmd.Printf("  [SKIP] %-14s no provider configured; rule-based replies only\n", "llm")
	}

	tr := app.Config.TranscriptionSettings()
	if tr.IsConfigured() {
		check("transcription", app.Validator.ValidateTranscription(ctx, tr), string(tr.Provider)+" "+tr.Model)
	} else {
		cmd.Printf("  [SKIP] %-14s no provider configured; voice queries disabled\n", "transcription")
	}

	cmd.Printf("  [INFO] %-14s %s\n", "responses by", app.Assistant.ProviderName())

	if !ok {
		return errDoctorFailed
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func pluralise(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
