package file

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/aisle/internal/core/domain"
)

//go:embed sample_store.toml
var sampleStore []byte

// seedFile is the TOML layout of a seed file.
type seedFile struct {
	Store struct {
		Name     string       `toml:"name"`
		Width    float64      `toml:"width"`
		Height   float64      `toml:"height"`
		Entrance domain.Point `toml:"entrance"`
	} `toml:"store"`
	Aisles []struct {
		ID        string         `toml:"id"`
		Label     string         `toml:"label"`
		Section   string         `toml:"section"`
		Waypoints []domain.Point `toml:"waypoints"`
	} `toml:"aisles"`
	Connections []struct {
		From     string  `toml:"from"`
		To       string  `toml:"to"`
		Distance float64 `toml:"distance"`
	} `toml:"connections"`
	Products []struct {
		ID       string        `toml:"id"`
		Name     string        `toml:"name"`
		Aliases  []string      `toml:"aliases"`
		Brand    string        `toml:"brand"`
		Category string        `toml:"category"`
		Variants []string      `toml:"variants"`
		Price    float64       `toml:"price"`
		Quantity string        `toml:"quantity"`
		Aisle    string        `toml:"aisle"`
		Shelf    int           `toml:"shelf"`
		Location *domain.Point `toml:"location"`
	} `toml:"products"`
}

// LoadSeed reads a seed file from disk.
func LoadSeed(path string) (domain.Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Seed{}, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return ParseSeed(f)
}

// SampleSeed returns the built-in sample store.
func SampleSeed() domain.Seed {
	seed, err := ParseSeed(bytes.NewReader(sampleStore))
	if err != nil {
		panic(fmt.Sprintf("embedded sample store: %v", err))
	}
	return seed
}

// ParseSeed decodes a TOML seed. Unknown keys are rejected so typos
// surface instead of silently dropping data.
func ParseSeed(r io.Reader) (domain.Seed, error) {
	var raw seedFile
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return domain.Seed{}, fmt.Errorf("%w: parse seed: %w", domain.ErrInvalidInput, err)
	}

	seed := domain.Seed{
		Layout: domain.StoreLayout{
			Name:     raw.Store.Name,
			Width:    raw.Store.Width,
			Height:   raw.Store.Height,
			Entrance: raw.Store.Entrance,
		},
	}
	for _, a := range raw.Aisles {
		seed.Layout.Aisles = append(seed.Layout.Aisles, domain.Aisle{
			ID:        a.ID,
			Label:     a.Label,
			Section:   a.Section,
			Waypoints: a.Waypoints,
		})
	}
	for _, c := range raw.Connections {
		seed.Layout.Connections = append(seed.Layout.Connections, domain.Connection{
			From:     c.From,
			To:       c.To,
			Distance: c.Distance,
		})
	}
	for _, p := range raw.Products {
		product := domain.Product{
			ID:       p.ID,
			Name:     p.Name,
			Aliases:  p.Aliases,
			Brand:    p.Brand,
			Category: p.Category,
			Variants: p.Variants,
			Price:    p.Price,
			Quantity: p.Quantity,
			AisleID:  p.Aisle,
			Shelf:    p.Shelf,
		}
		if p.Location != nil {
			product.Location = *p.Location
		}
		seed.Products = append(seed.Products, product)
	}
	return seed, nil
}
