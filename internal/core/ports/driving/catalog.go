package driving

import (
	"context"

	"github.com/custodia-labs/aisle/internal/core/domain"
)

// CatalogService manages products and the store layout.
// Reads are served from an in-memory snapshot; writes go through to
// the repository and replace the snapshot.
type CatalogService interface {
	// FindByID returns a product. Returns domain.ErrNotFound if missing.
	FindByID(ctx context.Context, id string) (*domain.Product, error)

	// FindAll returns all products ordered by category then name.
	FindAll(ctx context.Context) ([]domain.Product, error)

	// Upsert creates or updates a product and returns the stored value.
	// Fails with domain.ErrInvalidReference if the aisle is unknown.
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)

	// Create stores a new product. Returns domain.ErrAlreadyExists if the
	// ID is taken.
	Create(ctx context.Context, product domain.Product) (*domain.Product, error)

	// Update replaces an existing product. Returns domain.ErrNotFound if missing.
	Update(ctx context.Context, product domain.Product) (*domain.Product, error)

	// Remove deletes a product. Returns domain.ErrNotFound if missing.
	Remove(ctx context.Context, id string) error

	// Search fuzzy-matches text against the catalog.
	Search(ctx context.Context, text string, topK int, minScore float64) ([]domain.ScoredProduct, error)

	// Aisles returns the aisles of the current layout.
	Aisles(ctx context.Context) ([]domain.Aisle, error)

	// UpsertAisle creates or updates an aisle.
	UpsertAisle(ctx context.Context, aisle domain.Aisle) (*domain.Aisle, error)

	// CreateAisle stores a new aisle. Returns domain.ErrAlreadyExists if
	// the ID is taken.
	CreateAisle(ctx context.Context, aisle domain.Aisle) (*domain.Aisle, error)

	// UpdateAisle replaces an existing aisle. Returns domain.ErrNotFound if missing.
	UpdateAisle(ctx context.Context, aisle domain.Aisle) (*domain.Aisle, error)

	// RemoveAisle deletes an aisle no product references.
	RemoveAisle(ctx context.Context, id string) error

	// Layout returns the current store layout.
	Layout(ctx context.Context) (domain.StoreLayout, error)

	// UpdateLayout replaces the store name, bounds, entrance, aisles and connections.
	UpdateLayout(ctx context.Context, layout domain.StoreLayout) error

	// Seed loads a complete store. It skips a catalog that already has
	// products unless force is set.
	Seed(ctx context.Context, seed domain.Seed, force bool) (domain.SeedResult, error)

	// Stats returns catalog counts for the admin dashboard.
	Stats(ctx context.Context) (domain.CatalogStats, error)

	// Reload rebuilds the snapshot from the repository.
	Reload(ctx context.Context) error
}
