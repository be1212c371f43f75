package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/aisle/internal/adapters/driving/render"
	"github.com/custodia-labs/aisle/internal/core/domain"
)

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// printProducts prints one product per line with its aisle and shelf.
func printProducts(cmd *cobra.Command, products []domain.ScoredProduct, layout domain.StoreLayout) {
	for i := range products {
		p := products[i]
		aisle, _ := layout.Aisle(p.AisleID)
		name := p.Name
		if p.Brand != "" {
			name = p.Brand + " " + p.Name
		}
		line := fmt.Sprintf("  [%d] %s - %s", i+1, name, p.LocationLabel(aisle))
		if p.Score > 0 {
			line += fmt.Sprintf(" (%.0f)", p.Score)
		}
		cmd.Println(line)
		cmd.Printf("      id: %s\n", p.ID)
	}
}

// printRoute prints the directions for each leg and, unless noMap is set,
// the store map with the route drawn on it.
func printRoute(cmd *cobra.Command, plan *domain.RoutePlan, layout domain.StoreLayout, noMap bool) {
	cmd.Printf("Route: %d stop(s), %.1f m, %d steps\n", len(plan.Legs), plan.TotalDistance, plan.Steps)
	for i, leg := range plan.Legs {
		cmd.Printf("  %d. %s\n", i+1, strings.TrimSpace(leg.Directions))
	}
	if noMap {
		return
	}
	cmd.Println()
	cmd.Print(render.ForWriter(cmd.OutOrStdout(), render.NewGrid(layout, plan)))
}
