package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/aisle/internal/adapters/driving/render"
)

var catalogJSON bool

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the product catalog and store layout",
}

var catalogProductsCmd = &cobra.Command{
	Use:   "products",
	Short: "List all products",
	Args:  cobra.NoArgs,
	RunE:  runCatalogProducts,
}

var catalogAislesCmd = &cobra.Command{
	Use:   "aisles",
	Short: "List all aisles",
	Args:  cobra.NoArgs,
	RunE:  runCatalogAisles,
}

var catalogMapCmd = &cobra.Command{
	Use:   "map",
	Short: "Draw the store map",
	Args:  cobra.NoArgs,
	RunE:  runCatalogMap,
}

func init() {
	catalogCmd.PersistentFlags().BoolVar(&catalogJSON, "json", false, "output as JSON")
	catalogCmd.AddCommand(catalogProductsCmd, catalogAislesCmd, catalogMapCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogProducts(cmd *cobra.Command, _ []string) error {
	products, err := app.Catalog.FindAll(cmd.Context())
	if err != nil {
		return err
	}
	if catalogJSON {
		return printJSON(cmd, products)
	}
	if len(products) == 0 {
		cmd.Println("No products. Run \"aisle seed\" to load the sample store.")
		return nil
	}

	layout, err := app.Catalog.Layout(cmd.Context())
	if err != nil {
		return err
	}
	category := ""
	for i := range products {
		p := products[i]
		if p.Category != category {
			category = p.Category
			if i > 0 {
				cmd.Println()
			}
			cmd.Printf("%s:\n", orDefault(category, "Uncategorised"))
		}
		aisle, _ := layout.Aisle(p.AisleID)
		cmd.Printf("  %-24s %-28s %s\n", p.Name, p.LocationLabel(aisle), p.ID)
	}
	return nil
}

func runCatalogAisles(cmd *cobra.Command, _ []string) error {
	aisles, err := app.Catalog.Aisles(cmd.Context())
	if err != nil {
		return err
	}
	if catalogJSON {
		return printJSON(cmd, aisles)
	}
	if len(aisles) == 0 {
		cmd.Println("No aisles.")
		return nil
	}
	for _, a := range aisles {
		pts := make([]string, len(a.Waypoints))
		for i, p := range a.Waypoints {
			pts[i] = p.String()
		}
		cmd.Printf("  %-6s %-32s %s\n", a.ID, a.DisplayName(), strings.Join(pts, " "))
	}
	return nil
}

func runCatalogMap(cmd *cobra.Command, _ []string) error {
	layout, err := app.Catalog.Layout(cmd.Context())
	if err != nil {
		return err
	}
	if catalogJSON {
		return printJSON(cmd, layout)
	}
	cmd.Printf("%s (%gx%g)\n", orDefault(layout.Name, "Store"), layout.Width, layout.Height)
	cmd.Print(render.ForWriter(cmd.OutOrStdout(), render.NewGrid(layout, nil)))
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
