package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/aisle/internal/core/domain"
)

var (
	routeJSON  bool
	routeNoMap bool
)

var routeCmd = &cobra.Command{
	Use:   "route [product]...",
	Short: "Plan a walking route to products",
	Long: `Plans a route from the store entrance through the given products.

Each argument is a product ID or, if no product has that ID, a name that is
resolved to the best catalog match. Stops are visited nearest first.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRoute,
}

func init() {
	routeCmd.Flags().BoolVar(&routeJSON, "json", false, "output the route as JSON")
	routeCmd.Flags().BoolVar(&routeNoMap, "no-map", false, "do not draw the store map")
	rootCmd.AddCommand(routeCmd)
}

func runRoute(cmd *cobra.Command, args []string) error {
	ids := make([]string, 0, len(args))
	for _, arg := range args {
		id, err := resolveProduct(cmd, arg)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	plan, err := app.Routes.PlanRoute(cmd.Context(), ids)
	if err != nil {
		return fmt.Errorf("route failed: %w", err)
	}

	if routeJSON {
		return printJSON(cmd, plan)
	}

	layout, err := app.Catalog.Layout(cmd.Context())
	if err != nil {
		return err
	}
	printRoute(cmd, plan, layout, routeNoMap)
	return nil
}

// resolveProduct returns arg when it is a product ID, otherwise the ID of
// the best match for arg as a name.
func resolveProduct(cmd *cobra.Command, arg string) (string, error) {
	_, err := app.Catalog.FindByID(cmd.Context(), arg)
	if err == nil {
		return arg, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}

	matches, err := app.Catalog.Search(cmd.Context(), arg, 1, app.Config.Search.MinScore)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no product matches %q: %w", arg, domain.ErrNotFound)
	}
	return matches[0].ID, nil
}
