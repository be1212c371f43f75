package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/custodia-labs/aisle/internal/core/domain"
	"github.com/custodia-labs/aisle/internal/core/ports/driven"
	"github.com/custodia-labs/aisle/internal/core/ports/driving"
	"github.com/custodia-labs/aisle/internal/logger"
)

// Ensure CatalogService implements the interface.
var _ driving.CatalogService = (*CatalogService)(nil)

// CatalogService serves catalog reads from an immutable snapshot and
// writes through to the repository.
type CatalogService struct {
	repo driven.CatalogRepository

	// mu serialises writers; readers only load snap.
	mu   sync.Mutex
	snap atomic.Pointer[Snapshot]

	entropy *ulid.MonotonicEntropy
}

// NewCatalogService creates a catalog service and loads the first snapshot.
func NewCatalogService(ctx context.Context, repo driven.CatalogRepository) (*CatalogService, error) {
	s := &CatalogService{
		repo:    repo,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Snapshot returns the current catalog snapshot. Callers should take one
// snapshot per request and read everything from it.
func (s *CatalogService) Snapshot() *Snapshot {
	return s.snap.Load()
}

// Reload rebuilds the snapshot from the repository.
func (s *CatalogService) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	layout, err := s.repo.LoadLayout(ctx)
	if err != nil {
		return fmt.Errorf("load layout: %w", err)
	}
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}

	for _, p := range products {
		if _, ok := layout.Aisle(p.AisleID); !ok {
			logger.Warn("product %s references unknown aisle %q", p.ID, p.AisleID)
		}
	}

	s.snap.Store(newSnapshot(layout, products))
	logger.Debug("Catalog loaded: %d products, %d aisles", len(products), len(layout.Aisles))
	return nil
}

// FindByID returns a product from the snapshot.
func (s *CatalogService) FindByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := s.Snapshot().Product(id)
	if !ok {
		return nil, fmt.Errorf("product %q: %w", id, domain.ErrNotFound)
	}
	return &p, nil
}

// FindAll returns every product ordered by category then name.
func (s *CatalogService) FindAll(_ context.Context) ([]domain.Product, error) {
	products := s.Snapshot().Products()
	out := make([]domain.Product, len(products))
	copy(out, products)
	return out, nil
}

// writeMode selects the existence check applied by a write.
type writeMode int

const (
	writeUpsert writeMode = iota
	writeCreate
	writeUpdate
)

// Upsert validates and stores a product. A missing ID is generated; a
// zero location defaults to the aisle's first waypoint.
func (s *CatalogService) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	return s.saveProduct(ctx, product, writeUpsert)
}

// Create stores a new product. It fails with domain.ErrAlreadyExists when
// the ID is already taken.
func (s *CatalogService) Create(ctx context.Context, product domain.Product) (*domain.Product, error) {
	return s.saveProduct(ctx, product, writeCreate)
}

// Update replaces an existing product. Returns domain.ErrNotFound if missing.
func (s *CatalogService) Update(ctx context.Context, product domain.Product) (*domain.Product, error) {
	return s.saveProduct(ctx, product, writeUpdate)
}

func (s *CatalogService) saveProduct(ctx context.Context, product domain.Product, mode writeMode) (*domain.Product, error) {
	product.Normalise()
	if err := product.Validate(); err != nil {
		return nil, err
	}
	if mode == writeUpdate && product.ID == "" {
		return nil, fmt.Errorf("%w: product id is required", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	if err := s.checkProduct(ctx, cur, product.ID, mode); err != nil {
		return nil, err
	}
	layout := cur.Layout()
	aisle, ok := layout.Aisle(product.AisleID)
	if !ok {
		return nil, fmt.Errorf("%w: aisle %q does not exist", domain.ErrInvalidReference, product.AisleID)
	}
	if product.Location.IsZero() {
		product.Location = aisle.Waypoints[0]
	} else if !layout.Contains(product.Location) {
		return nil, fmt.Errorf("%w: location %s outside store bounds", domain.ErrInvalidInput, product.Location)
	}
	if product.ID == "" {
		product.ID = ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
	}

	if err := s.repo.SaveProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}
	s.snap.Store(cur.withProduct(product))

	logger.Debug("Saved product %s (%s) in aisle %s", product.ID, product.Name, product.AisleID)
	return &product, nil
}

// checkProduct applies the mode's existence rule. Callers hold mu.
func (s *CatalogService) checkProduct(ctx context.Context, cur *Snapshot, id string, mode writeMode) error {
	if id == "" || mode == writeUpsert {
		return nil
	}
	_, known := cur.Product(id)
	switch mode {
	case writeUpdate:
		if !known {
			return fmt.Errorf("product %q: %w", id, domain.ErrNotFound)
		}
	case writeCreate:
		if known {
			return fmt.Errorf("%w: product %q", domain.ErrAlreadyExists, id)
		}
		// Another process may have written the row since the last reload.
		_, err := s.repo.GetProduct(ctx, id)
		switch {
		case err == nil:
			return fmt.Errorf("%w: product %q", domain.ErrAlreadyExists, id)
		case !errors.Is(err, domain.ErrNotFound):
			return fmt.Errorf("get product: %w", err)
		}
	}
	return nil
}

// Remove deletes a product.
func (s *CatalogService) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	if _, ok := cur.Product(id); !ok {
		return fmt.Errorf("product %q: %w", id, domain.ErrNotFound)
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	s.snap.Store(cur.withoutProduct(id))
	return nil
}

// Search fuzzy-matches text against every product in the snapshot.
func (s *CatalogService) Search(_ context.Context, text string, topK int, minScore float64) ([]domain.ScoredProduct, error) {
	return Match(text, s.Snapshot().Products(), topK, minScore)
}

// Aisles returns the aisles of the current layout.
func (s *CatalogService) Aisles(_ context.Context) ([]domain.Aisle, error) {
	aisles := s.Snapshot().Layout().Aisles
	out := make([]domain.Aisle, len(aisles))
	copy(out, aisles)
	return out, nil
}

// UpsertAisle validates and stores an aisle.
func (s *CatalogService) UpsertAisle(ctx context.Context, aisle domain.Aisle) (*domain.Aisle, error) {
	return s.saveAisle(ctx, aisle, writeUpsert)
}

// CreateAisle stores a new aisle. It fails with domain.ErrAlreadyExists
// when the ID is already taken.
func (s *CatalogService) CreateAisle(ctx context.Context, aisle domain.Aisle) (*domain.Aisle, error) {
	return s.saveAisle(ctx, aisle, writeCreate)
}

// UpdateAisle replaces an existing aisle. Returns domain.ErrNotFound if missing.
func (s *CatalogService) UpdateAisle(ctx context.Context, aisle domain.Aisle) (*domain.Aisle, error) {
	return s.saveAisle(ctx, aisle, writeUpdate)
}

func (s *CatalogService) saveAisle(ctx context.Context, aisle domain.Aisle, mode writeMode) (*domain.Aisle, error) {
	aisle.ID = strings.TrimSpace(aisle.ID)
	aisle.Label = strings.TrimSpace(aisle.Label)
	if aisle.Label == "" {
		aisle.Label = aisle.ID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	layout := cur.Layout()
	_, known := layout.Aisle(aisle.ID)
	switch {
	case mode == writeCreate && known:
		return nil, fmt.Errorf("%w: aisle %q", domain.ErrAlreadyExists, aisle.ID)
	case mode == writeUpdate && !known:
		return nil, fmt.Errorf("aisle %q: %w", aisle.ID, domain.ErrNotFound)
	}
	if err := layout.ValidateAisle(aisle); err != nil {
		return nil, err
	}
	if err := s.repo.SaveAisle(ctx, aisle); err != nil {
		return nil, fmt.Errorf("save aisle: %w", err)
	}
	s.snap.Store(cur.withLayout(layout.WithAisle(aisle)))
	return &aisle, nil
}

// RemoveAisle deletes an aisle and its connections. It fails with
// domain.ErrInvalidReference while any product is stocked there.
func (s *CatalogService) RemoveAisle(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	layout := cur.Layout()
	if _, ok := layout.Aisle(id); !ok {
		return fmt.Errorf("aisle %q: %w", id, domain.ErrNotFound)
	}
	if refs := cur.referencing(id); len(refs) > 0 {
		return fmt.Errorf("%w: aisle %q holds %d products", domain.ErrInvalidReference, id, len(refs))
	}
	if err := s.repo.DeleteAisle(ctx, id); err != nil {
		return fmt.Errorf("delete aisle: %w", err)
	}
	s.snap.Store(cur.withLayout(layout.WithoutAisle(id)))
	return nil
}

// Layout returns the current store layout.
func (s *CatalogService) Layout(_ context.Context) (domain.StoreLayout, error) {
	return s.Snapshot().Layout(), nil
}

// UpdateLayout replaces the whole layout. Every product must still
// reference an aisle and lie within the new bounds.
func (s *CatalogService) UpdateLayout(ctx context.Context, layout domain.StoreLayout) error {
	layout.Name = strings.TrimSpace(layout.Name)
	if err := layout.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	for _, p := range cur.Products() {
		if _, ok := layout.Aisle(p.AisleID); !ok {
			return fmt.Errorf("%w: product %s references aisle %q", domain.ErrInvalidReference, p.ID, p.AisleID)
		}
		if !layout.Contains(p.Location) {
			return fmt.Errorf("%w: product %s location %s outside store bounds", domain.ErrInvalidInput, p.ID, p.Location)
		}
	}

	if err := s.repo.SaveLayout(ctx, layout); err != nil {
		return fmt.Errorf("save layout: %w", err)
	}
	s.snap.Store(cur.withLayout(layout))
	logger.Debug("Layout updated: %d aisles, %d connections", len(layout.Aisles), len(layout.Connections))
	return nil
}

// Seed replaces the layout and loads the seed products. A catalog that
// already has products is left alone unless force is set, in which case
// the existing products are removed first.
func (s *CatalogService) Seed(ctx context.Context, seed domain.Seed, force bool) (domain.SeedResult, error) {
	layout := seed.Layout
	layout.Name = strings.TrimSpace(layout.Name)
	if err := layout.Validate(); err != nil {
		return domain.SeedResult{}, err
	}

	products := make([]domain.Product, 0, len(seed.Products))
	for _, p := range seed.Products {
		p.Normalise()
		if err := p.Validate(); err != nil {
			return domain.SeedResult{}, err
		}
		aisle, ok := layout.Aisle(p.AisleID)
		if !ok {
			return domain.SeedResult{}, fmt.Errorf("%w: product %q references aisle %q", domain.ErrInvalidReference, p.Name, p.AisleID)
		}
		if p.Location.IsZero() {
			p.Location = aisle.Waypoints[0]
		} else if !layout.Contains(p.Location) {
			return domain.SeedResult{}, fmt.Errorf("%w: product %q location %s outside store bounds", domain.ErrInvalidInput, p.Name, p.Location)
		}
		if p.ID == "" {
			p.ID = ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
		}
		products = append(products, p)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	if existing := cur.Products(); len(existing) > 0 {
		if !force {
			logger.Info("Catalog has %d products, skipping seed", len(existing))
			return domain.SeedResult{Skipped: true}, nil
		}
		for _, p := range existing {
			if err := s.repo.DeleteProduct(ctx, p.ID); err != nil {
				return domain.SeedResult{}, s.resync(ctx, fmt.Errorf("delete product: %w", err))
			}
		}
	}

	if err := s.repo.SaveLayout(ctx, layout); err != nil {
		return domain.SeedResult{}, s.resync(ctx, fmt.Errorf("save layout: %w", err))
	}
	for _, p := range products {
		if err := s.repo.SaveProduct(ctx, p); err != nil {
			return domain.SeedResult{}, s.resync(ctx, fmt.Errorf("save product %q: %w", p.Name, err))
		}
	}

	s.snap.Store(newSnapshot(layout, products))
	logger.Info("Seeded %d products in %d aisles", len(products), len(layout.Aisles))
	return domain.SeedResult{Products: len(products), Aisles: len(layout.Aisles)}, nil
}

// resync rebuilds the snapshot after a partially applied write so reads
// match the repository again. Callers hold mu.
func (s *CatalogService) resync(ctx context.Context, cause error) error {
	layout, err := s.repo.LoadLayout(ctx)
	if err != nil {
		return cause
	}
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return cause
	}
	s.snap.Store(newSnapshot(layout, products))
	return cause
}

// Stats returns product and aisle counts and the category list.
func (s *CatalogService) Stats(_ context.Context) (domain.CatalogStats, error) {
	snap := s.Snapshot()
	seen := make(map[string]bool)
	categories := make([]string, 0)
	for _, p := range snap.Products() {
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	sort.Strings(categories)
	return domain.CatalogStats{
		Products:   len(snap.Products()),
		Aisles:     len(snap.Layout().Aisles),
		Categories: categories,
	}, nil
}
