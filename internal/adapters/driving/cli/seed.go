package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/aisle/internal/adapters/driven/config/file"
	"github.com/custodia-labs/aisle/internal/core/domain"
)

var seedForce bool

var seedCmd = &cobra.Command{
	Use:   "seed [file]",
	Short: "Load a store layout and products",
	Long: `Loads a TOML seed file with [store], [[aisles]], [[connections]] and
[[products]] tables. Without a file the built-in sample store is loaded.

Seeding is skipped when the catalog already has products. Use --force to
replace the existing catalog.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().BoolVar(&seedForce, "force", false, "replace existing products")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	var (
		seed domain.Seed
		err  error
	)
	if len(args) == 1 {
		seed, err = file.LoadSeed(args[0])
		if err != nil {
			return err
		}
	} else {
		seed = file.SampleSeed()
	}

	result, err := app.Catalog.Seed(cmd.Context(), seed, seedForce)
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}

	if result.Skipped {
		cmd.Println("Catalog already has products; nothing loaded. Use --force to replace it.")
		return nil
	}
	cmd.Printf("Loaded %q: %d aisles, %d products.\n", seed.Layout.Name, result.Aisles, result.Products)
	return nil
}
