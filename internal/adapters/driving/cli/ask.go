package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/aisle/internal/core/domain"
)

var (
	askJSON    bool
	askRoute   bool
	askContext []string
	askNoMap   bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the store assistant a question",
	Long: `Sends one question to the assistant and prints its reply.

The assistant answers with the configured LLM when it is reachable and
falls back to rule-based replies otherwise. Use --context with the product
IDs from a previous answer to follow up, for example "take me there".`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the reply as JSON")
	askCmd.Flags().BoolVar(&askRoute, "route", false, "plan a route to the answer")
	askCmd.Flags().StringSliceVar(&askContext, "context", nil, "product IDs from the previous answer")
	askCmd.Flags().BoolVar(&askNoMap, "no-map", false, "do not draw the store map")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	req := domain.QueryRequest{
		Text:              strings.Join(args, " "),
		ContextProductIDs: askContext,
		WantRoute:         askRoute,
	}

	reply, err := app.Assistant.Handle(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return printJSON(cmd, reply)
	}

	cmd.Println(reply.Text)
	if len(reply.Products) > 0 {
		layout, err := app.Catalog.Layout(cmd.Context())
		if err != nil {
			return err
		}
		cmd.Println()
		printProducts(cmd, reply.Products, layout)
		if reply.Route != nil {
			cmd.Println()
			printRoute(cmd, reply.Route, layout, askNoMap)
		}
	}
	if reply.RouteError != "" {
		cmd.Printf("\nNo route: %s\n", reply.RouteError)
	}
	if reply.FallbackReason != "" {
		cmd.Printf("\n(answered by %s: %s)\n", reply.Provider, reply.FallbackReason)
	}
	return nil
}
