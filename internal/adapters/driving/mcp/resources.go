package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/aisle/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for store resources.
	uriScheme = "aisle://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "layout",
		Name:        "layout",
		Description: "Store floor layout: bounds, entrance, aisles and connections",
		MIMEType:    "application/json",
	}, s.handleLayoutResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "products",
		Name:        "products",
		Description: "Every product in the catalog",
		MIMEType:    "application/json",
	}, s.handleProductsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "products/{productId}",
		Name:        "product",
		Description: "A single product and its shelf location",
		MIMEType:    "application/json",
	}, s.handleProductResource)
}

// handleLayoutResource returns the store layout.
func (s *Server) handleLayoutResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	layout, err := s.ports.Catalog.Layout(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading layout: %w", err)
	}
	return jsonResource(req.Params.URI, layout)
}

// handleProductsResource returns a summary of every product.
func (s *Server) handleProductsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	products, err := s.ports.Catalog.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	type productInfo struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Category string `json:"category,omitempty"`
		AisleID  string `json:"aisle_id"`
	}

	infos := make([]productInfo, len(products))
	for i := range products {
		infos[i] = productInfo{
			ID:       products[i].ID,
			Name:     products[i].Name,
			Category: products[i].Category,
			AisleID:  products[i].AisleID,
		}
	}
	return jsonResource(req.Params.URI, infos)
}

// handleProductResource returns one product.
func (s *Server) handleProductResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := extractProductID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	p, err := s.ports.Catalog.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting product: %w", err)
	}
	return jsonResource(req.Params.URI, p)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractProductID extracts the product ID from a URI like aisle://products/{productId}.
func extractProductID(uri string) string {
	const prefix = uriScheme + "products/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
