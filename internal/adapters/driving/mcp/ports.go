package mcp

import (
	"github.com/custodia-labs/aisle/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Catalog provides product lookup and the store layout.
	Catalog driving.CatalogService

	// Routes plans walking routes. Optional.
	Routes driving.RouteService

	// Assistant answers free-text questions. Optional.
	Assistant driving.AssistantService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Catalog == nil {
		return ErrMissingCatalogService
	}
	return nil
}
