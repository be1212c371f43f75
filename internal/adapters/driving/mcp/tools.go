package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/aisle/internal/core/domain"
	"github.com/custodia-labs/aisle/internal/metrics"
)

const (
	defaultLimit    = 5
	defaultMinScore = 50
)

// FindProductInput is the input schema for the find_product tool.
type FindProductInput struct {
	Query string `json:"query" jsonschema:"product name or description, e.g. amul butter"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of matches to return (default 5)"`
}

// FindProductOutput is the output schema for the find_product tool.
type FindProductOutput struct {
	Matches []ProductMatch `json:"matches"`
	Count   int            `json:"count"`
}

// ProductMatch is one product with where to find it.
type ProductMatch struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Brand    string       `json:"brand,omitempty"`
	Category string       `json:"category,omitempty"`
	Aisle    string       `json:"aisle"`
	Location string       `json:"location"`
	Point    domain.Point `json:"point"`
	Score    float64      `json:"score"`
}

// PlanRouteInput is the input schema for the plan_route tool.
type PlanRouteInput struct {
	ProductIDs []string `json:"product_ids" jsonschema:"IDs of the products to visit, as returned by find_product"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Text              string   `json:"text" jsonschema:"the shopper's question"`
	ContextProductIDs []string `json:"context_product_ids,omitempty" jsonschema:"product IDs from the previous answer"`
	Route             bool     `json:"route,omitempty" jsonschema:"also plan a route to the answer"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "find_product",
		Description: "Find products in the store catalog and report their aisle and shelf",
	}, s.handleFindProduct)

	if s.ports.Routes != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "plan_route",
			Description: "Plan a walking route from the store entrance to the given products",
		}, s.handlePlanRoute)
	}

	if s.ports.Assistant != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask",
			Description: "Ask the store assistant a question in plain language",
		}, s.handleAsk)
	}
}

// handleFindProduct handles the find_product tool invocation.
func (s *Server) handleFindProduct(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FindProductInput,
) (*mcp.CallToolResult, FindProductOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	results, err := s.ports.Catalog.Search(ctx, input.Query, limit, defaultMinScore)
	if err != nil {
		return nil, FindProductOutput{}, err
	}
	layout, err := s.ports.Catalog.Layout(ctx)
	if err != nil {
		return nil, FindProductOutput{}, err
	}

	output := FindProductOutput{
		Matches: make([]ProductMatch, len(results)),
		Count:   len(results),
	}
	for i := range results {
		p := results[i]
		aisle, _ := layout.Aisle(p.AisleID)
		output.Matches[i] = ProductMatch{
			ID:       p.ID,
			Name:     p.Name,
			Brand:    p.Brand,
			Category: p.Category,
			Aisle:    aisle.DisplayName(),
			Location: p.LocationLabel(aisle),
			Point:    p.Location,
			Score:    p.Score,
		}
	}

	return nil, output, nil
}

// handlePlanRoute handles the plan_route tool invocation.
func (s *Server) handlePlanRoute(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PlanRouteInput,
) (*mcp.CallToolResult, domain.RoutePlan, error) {
	plan, err := s.ports.Routes.PlanRoute(ctx, input.ProductIDs)
	metrics.ObserveRoute(err)
	if err != nil {
		return nil, domain.RoutePlan{}, err
	}
	return nil, *plan, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, domain.Reply, error) {
	reply, err := s.ports.Assistant.Handle(ctx, domain.QueryRequest{
		Text:              input.Text,
		ContextProductIDs: input.ContextProductIDs,
		WantRoute:         input.Route,
	})
	if err != nil {
		return nil, domain.Reply{}, err
	}
	metrics.ObserveReply(*reply)
	return nil, *reply, nil
}
