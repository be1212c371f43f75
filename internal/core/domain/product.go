package domain

import (
	"fmt"
	"strings"
)

// Product is a catalog item and where it sits in the store.
type Product struct {
	// ID uniquely identifies the product.
	ID string `json:"id"`

	// Name is the display name.
	Name string `json:"name"`

	// Aliases are extra searchable names and synonyms.
	Aliases []string `json:"aliases,omitempty"`

	Brand    string   `json:"brand,omitempty"`
	Category string   `json:"category,omitempty"`
	Variants []string `json:"variants,omitempty"`
	Price    float64  `json:"price,omitempty"`
	Quantity string   `json:"quantity,omitempty"`

	// AisleID references the aisle holding the product.
	AisleID string `json:"aisle_id"`

	// Shelf is the shelf number within the aisle, counted from 1.
	Shelf int `json:"shelf,omitempty"`

	// Location is the shelf coordinate on the store floor.
	Location Point `json:"location"`
}

// Normalise trims text fields and drops empty aliases.
func (p *Product) Normalise() {
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	p.Brand = strings.TrimSpace(p.Brand)
	p.Category = strings.TrimSpace(p.Category)
	p.AisleID = strings.TrimSpace(p.AisleID)

	aliases := p.Aliases[:0:0]
	for _, a := range p.Aliases {
		if a = strings.TrimSpace(a); a != "" {
			aliases = append(aliases, a)
		}
	}
	p.Aliases = aliases
	if p.Shelf <= 0 {
		p.Shelf = 1
	}
}

// Validate checks the product's own fields. Aisle references are
// checked by the catalog against the current layout.
func (p Product) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: product name is required", ErrInvalidInput)
	}
	if p.AisleID == "" {
		return fmt.Errorf("%w: product %q has no aisle", ErrInvalidReference, p.Name)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: product %q has negative price", ErrInvalidInput, p.Name)
	}
	return nil
}

// ScoredProduct is a product with a match score on a 0-100 scale.
type ScoredProduct struct {
	Product
	Score float64 `json:"score"`
}

// CatalogStats summarises the catalog for the admin dashboard.
type CatalogStats struct {
	Products   int      `json:"products"`
	Aisles     int      `json:"aisles"`
	Categories []string `json:"categories"`
}

// SearchTerm is a piece of product text the matcher scores a query against.
type SearchTerm struct {
	Text string

	// Weight scales the term's similarity; names and aliases weigh 1.
	Weight float64
}

// Weights for secondary product text.
const (
	primaryTermWeight   = 1.0
	secondaryTermWeight = 0.85
)

// SearchTerms returns the name, aliases, brand and category as weighted
// terms. Brand and category count for less than the name.
func (p Product) SearchTerms() []SearchTerm {
	terms := make([]SearchTerm, 0, 3+len(p.Aliases))
	terms = append(terms, SearchTerm{Text: p.Name, Weight: primaryTermWeight})
	for _, a := range p.Aliases {
		terms = append(terms, SearchTerm{Text: a, Weight: primaryTermWeight})
	}
	if p.Brand != "" {
		terms = append(terms, SearchTerm{Text: p.Brand, Weight: secondaryTermWeight})
	}
	if p.Category != "" {
		terms = append(terms, SearchTerm{Text: p.Category, Weight: secondaryTermWeight})
	}
	return terms
}

// LocationLabel returns "Aisle <label>, Shelf <n>" for replies.
func (p Product) LocationLabel(aisle Aisle) string {
	return fmt.Sprintf("%s, Shelf %d", aisle.DisplayName(), p.Shelf)
}
