package driven

import (
	"context"

	"github.com/custodia-labs/aisle/internal/core/domain"
)

// CatalogRepository persists products and the store layout.
// The catalog service caches everything it reads, so implementations
// need not be fast, only consistent.
type CatalogRepository interface {
	// LoadLayout returns the stored layout. An empty store returns a
	// zero-value layout and no error.
	LoadLayout(ctx context.Context) (domain.StoreLayout, error)

	// SaveLayout replaces the layout: store settings, aisles and connections.
	SaveLayout(ctx context.Context, layout domain.StoreLayout) error

	// SaveAisle stores or updates one aisle.
	SaveAisle(ctx context.Context, aisle domain.Aisle) error

	// DeleteAisle removes an aisle and its connections.
	DeleteAisle(ctx context.Context, id string) error

	// ListProducts returns all products.
	ListProducts(ctx context.Context) ([]domain.Product, error)

	// GetProduct retrieves a product by ID.
	// Returns domain.ErrNotFound if missing.
	GetProduct(ctx context.Context, id string) (*domain.Product, error)

	// SaveProduct stores or updates a product.
	SaveProduct(ctx context.Context, product domain.Product) error

	// DeleteProduct removes a product.
	// Returns domain.ErrNotFound if missing.
	DeleteProduct(ctx context.Context, id string) error

	// Close releases resources.
	Close() error
}
