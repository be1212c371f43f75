package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	searchLimit    int
	searchMinScore float64
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the product catalog",
	Long: `Fuzzy-matches the query against product names, aliases, brands and
categories. Typos are tolerated: "choclate" finds "Chocolate".`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default from [search] limit)")
	searchCmd.Flags().Float64Var(&searchMinScore, "min-score", -1, "minimum match score 0-100 (default from [search] min_score)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	limit := searchLimit
	if limit <= 0 {
		limit = app.Config.Search.Limit
	}
	minScore := searchMinScore
	if minScore < 0 {
		minScore = app.Config.Search.MinScore
	}

	results, err := app.Catalog.Search(cmd.Context(), args[0], limit, minScore)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return printJSON(cmd, results)
	}

	if len(results) == 0 {
		cmd.Println("No products found.")
		return nil
	}

	layout, err := app.Catalog.Layout(cmd.Context())
	if err != nil {
		return err
	}
	cmd.Println("Results:")
	cmd.Println()
	printProducts(cmd, results, layout)
	return nil
}
