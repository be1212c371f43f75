// Package mcp provides an MCP (Model Context Protocol) server adapter for the
// store assistant. It lets AI assistants look up products, plan routes and
// ask questions about the store.
package mcp

import "errors"

// ErrMissingCatalogService is returned when the catalog service is not provided.
var ErrMissingCatalogService = errors.New("mcp: catalog service is required")
