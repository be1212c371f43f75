package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/aisle/internal/core/domain"
	"github.com/custodia-labs/aisle/internal/core/ports/driven"
)

// Ensure CatalogStore implements the interface.
var _ driven.CatalogRepository = (*CatalogStore)(nil)

// CatalogStore is an in-memory implementation of driven.CatalogRepository.
type CatalogStore struct {
	mu       sync.RWMutex
	layout   domain.StoreLayout
	products map[string]domain.Product
}

// NewCatalogStore creates a new in-memory catalog store.
func NewCatalogStore() *CatalogStore {
	return &CatalogStore{
		products: make(map[string]domain.Product),
	}
}

// LoadLayout returns a copy of the stored layout.
func (s *CatalogStore) LoadLayout(_ context.Context) (domain.StoreLayout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneLayout(s.layout), nil
}

// SaveLayout replaces the layout.
func (s *CatalogStore) SaveLayout(_ context.Context, layout domain.StoreLayout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layout = cloneLayout(layout)
	return nil
}

// SaveAisle stores or updates one aisle.
func (s *CatalogStore) SaveAisle(_ context.Context, aisle domain.Aisle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layout = s.layout.WithAisle(aisle)
	return nil
}

// DeleteAisle removes an aisle and its connections.
func (s *CatalogStore) DeleteAisle(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layout = s.layout.WithoutAisle(id)
	return nil
}

// ListProducts returns all products ordered by ID.
func (s *CatalogStore) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// GetProduct retrieves a product by ID.
func (s *CatalogStore) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

// SaveProduct stores or updates a product.
func (s *CatalogStore) SaveProduct(_ context.Context, product domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[product.ID] = product
	return nil
}

// DeleteProduct removes a product.
func (s *CatalogStore) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

// Close is a no-op.
func (s *CatalogStore) Close() error {
	return nil
}

func cloneLayout(l domain.StoreLayout) domain.StoreLayout {
	out := l
	out.Aisles = make([]domain.Aisle, len(l.Aisles))
	for i, a := range l.Aisles {
		a.Waypoints = append([]domain.Point(nil), a.Waypoints...)
		out.Aisles[i] = a
	}
	out.Connections = append([]domain.Connection(nil), l.Connections...)
	return out
}
