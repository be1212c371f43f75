package domain

// Seed is a complete store to load into an empty catalog.
type Seed struct {
	Layout   StoreLayout
	Products []Product
}

// SeedResult reports what a seed run did.
type SeedResult struct {
	// Skipped is set when the catalog already had products.
	Skipped bool `json:"skipped"`

	Products int `json:"products"`
	Aisles   int `json:"aisles"`
}
