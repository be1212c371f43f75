package services

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/aisle/internal/core/domain"
)

// Snapshot is an immutable view of the catalog and layout.
// Callers must not modify the slices it returns.
type Snapshot struct {
	layout   domain.StoreLayout
	products []domain.Product
	byID     map[string]int
}

// newSnapshot builds a snapshot, ordering products by category then name.
func newSnapshot(layout domain.StoreLayout, products []domain.Product) *Snapshot {
	sorted := make([]domain.Product, len(products))
	copy(sorted, products)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Category != sorted[j].Category {
			return sorted[i].Category < sorted[j].Category
		}
		if sorted[i].Name != sorted[j].Name {
			return sorted[i].Name < sorted[j].Name
		}
		return sorted[i].ID < sorted[j].ID
	})

	byID := make(map[string]int, len(sorted))
	for i, p := range sorted {
		byID[p.ID] = i
	}
	return &Snapshot{layout: layout, products: sorted, byID: byID}
}

// Layout returns the store layout.
func (s *Snapshot) Layout() domain.StoreLayout {
	return s.layout
}

// Products returns every product ordered by category then name.
func (s *Snapshot) Products() []domain.Product {
	return s.products
}

// Product returns the product with the given ID.
func (s *Snapshot) Product(id string) (domain.Product, bool) {
	i, ok := s.byID[id]
	if !ok {
		return domain.Product{}, false
	}
	return s.products[i], true
}

// Resolve returns the products for the given IDs in order.
// Unknown IDs fail with domain.ErrNotFound.
func (s *Snapshot) Resolve(ids []string) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		p, ok := s.Product(id)
		if !ok {
			return nil, fmt.Errorf("product %q: %w", id, domain.ErrNotFound)
		}
		out = append(out, p)
	}
	return out, nil
}

// referencing returns the IDs of products stocked in the aisle.
func (s *Snapshot) referencing(aisleID string) []string {
	var ids []string
	for _, p := range s.products {
		if p.AisleID == aisleID {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// withProduct returns a snapshot with the product inserted or replaced.
func (s *Snapshot) withProduct(p domain.Product) *Snapshot {
	products := make([]domain.Product, 0, len(s.products)+1)
	for _, existing := range s.products {
		if existing.ID != p.ID {
			products = append(products, existing)
		}
	}
	return newSnapshot(s.layout, append(products, p))
}

// withoutProduct returns a snapshot without the product.
func (s *Snapshot) withoutProduct(id string) *Snapshot {
	products := make([]domain.Product, 0, len(s.products))
	for _, existing := range s.products {
		if existing.ID != id {
			products = append(products, existing)
		}
	}
	return newSnapshot(s.layout, products)
}

// withLayout returns a snapshot sharing the products with a new layout.
func (s *Snapshot) withLayout(layout domain.StoreLayout) *Snapshot {
	return &Snapshot{layout: layout, products: s.products, byID: s.byID}
}
