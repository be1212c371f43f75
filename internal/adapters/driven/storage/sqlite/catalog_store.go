package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/custodia-labs/aisle/internal/core/domain"
	"github.com/custodia-labs/aisle/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.CatalogRepository = (*Store)(nil)

// store_config keys.
const (
	configName      = "name"
	configWidth     = "width"
	configHeight    = "height"
	configEntranceX = "entrance_x"
	configEntranceY = "entrance_y"
)

type aisleRow struct {
	ID        string `db:"id"`
	Label     string `db:"label"`
	Section   string `db:"section"`
	Waypoints string `db:"waypoints"`
}

type connectionRow struct {
	From     string  `db:"from_node"`
	To       string  `db:"to_node"`
	Distance float64 `db:"distance"`
}

type productRow struct {
	ID       string  `db:"id"`
	Name     string  `db:"name"`
	Aliases  string  `db:"aliases"`
	Brand    string  `db:"brand"`
	Category string  `db:"category"`
	Variants string  `db:"variants"`
	Price    float64 `db:"price"`
	Quantity string  `db:"quantity"`
	AisleID  string  `db:"aisle_id"`
	Shelf    int     `db:"shelf"`
	LocX     float64 `db:"loc_x"`
	LocY     float64 `db:"loc_y"`
}

const productColumns = `id, name, aliases, brand, category, variants, price, quantity, aisle_id, shelf, loc_x, loc_y`

// LoadLayout reads the store settings, aisles and connections.
func (s *Store) LoadLayout(ctx context.Context) (domain.StoreLayout, error) {
	var layout domain.StoreLayout

	var kv []struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}
	if err := s.db.SelectContext(ctx, &kv, "SELECT key, value FROM store_config"); err != nil {
		return layout, fmt.Errorf("query store config: %w", err)
	}
	for _, row := range kv {
		if err := applyConfig(&layout, row.Key, row.Value); err != nil {
			return layout, err
		}
	}

	var aisles []aisleRow
	if err := s.db.SelectContext(ctx, &aisles,
		"SELECT id, label, section, waypoints FROM aisles ORDER BY position, id"); err != nil {
		return layout, fmt.Errorf("query aisles: %w", err)
	}
	for _, row := range aisles {
		a, err := row.toDomain()
		if err != nil {
			return layout, err
		}
		layout.Aisles = append(layout.Aisles, a)
	}

	var conns []connectionRow
	if err := s.db.SelectContext(ctx, &conns,
		"SELECT from_node, to_node, distance FROM connections ORDER BY rowid"); err != nil {
		return layout, fmt.Errorf("query connections: %w", err)
	}
	for _, row := range conns {
		layout.Connections = append(layout.Connections, domain.Connection{
			From: row.From, To: row.To, Distance: row.Distance,
		})
	}

	return layout, nil
}

// SaveLayout replaces the layout in one transaction. Aisles missing from
// the new layout are deleted; the products foreign key rejects deleting
// an aisle that still holds products.
func (s *Store) SaveLayout(ctx context.Context, layout domain.StoreLayout) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		config := map[string]string{
			configName:      layout.Name,
			configWidth:     formatFloat(layout.Width),
			configHeight:    formatFloat(layout.Height),
			configEntranceX: formatFloat(layout.Entrance.X),
			configEntranceY: formatFloat(layout.Entrance.Y),
		}
		for k, v := range config {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO store_config (key, value) VALUES (?, ?)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value
			`, k, v); err != nil {
				return fmt.Errorf("save store config %s: %w", k, err)
			}
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM connections"); err != nil {
			return fmt.Errorf("clear connections: %w", err)
		}

		keep := make(map[string]bool, len(layout.Aisles))
		for i, a := range layout.Aisles {
			keep[a.ID] = true
			if err := upsertAisle(ctx, tx, a, i); err != nil {
				return err
			}
		}

		var existing []string
		if err := tx.SelectContext(ctx, &existing, "SELECT id FROM aisles"); err != nil {
			return fmt.Errorf("query aisles: %w", err)
		}
		for _, id := range existing {
			if keep[id] {
				continue
			}
			if _, err := tx.ExecContext(ctx, "DELETE FROM aisles WHERE id = ?", id); err != nil {
				return fmt.Errorf("delete aisle %s: %w", id, err)
			}
		}

		for _, c := range layout.Connections {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO connections (from_node, to_node, distance) VALUES (?, ?, ?)
				ON CONFLICT(from_node, to_node) DO UPDATE SET distance = excluded.distance
			`, c.From, c.To, c.Distance); err != nil {
				return fmt.Errorf("save connection %s-%s: %w", c.From, c.To, err)
			}
		}
		return nil
	})
}

// SaveAisle stores or updates one aisle. New aisles go last.
func (s *Store) SaveAisle(ctx context.Context, aisle domain.Aisle) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		var position int
		err := tx.GetContext(ctx, &position, "SELECT position FROM aisles WHERE id = ?", aisle.ID)
		if errors.Is(err, sql.ErrNoRows) {
			err = tx.GetContext(ctx, &position, "SELECT COALESCE(MAX(position) + 1, 0) FROM aisles")
		}
		if err != nil {
			return fmt.Errorf("aisle position: %w", err)
		}
		return upsertAisle(ctx, tx, aisle, position)
	})
}

// DeleteAisle removes an aisle and its connections.
func (s *Store) DeleteAisle(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM connections WHERE from_node = ? OR to_node = ?", id, id); err != nil {
			return fmt.Errorf("delete connections: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM aisles WHERE id = ?", id); err != nil {
			return fmt.Errorf("delete aisle: %w", err)
		}
		return nil
	})
}

// ListProducts returns all products ordered by ID.
func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var rows []productRow
	if err := s.db.SelectContext(ctx, &rows,
		"SELECT "+productColumns+" FROM products ORDER BY id"); err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}

	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		p, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

// GetProduct retrieves a product by ID.
func (s *Store) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var row productRow
	err := s.db.GetContext(ctx, &row, "SELECT "+productColumns+" FROM products WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}

	p, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveProduct stores or updates a product.
func (s *Store) SaveProduct(ctx context.Context, product domain.Product) error {
	row, err := newProductRow(product)
	if err != nil {
		return err
	}

	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES (:id, :name, :aliases, :brand, :category, :variants, :price, :quantity, :aisle_id, :shelf, :loc_x, :loc_y)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			aliases = excluded.aliases,
			brand = excluded.brand,
			category = excluded.category,
			variants = excluded.variants,
			price = excluded.price,
			quantity = excluded.quantity,
			aisle_id = excluded.aisle_id,
			shelf = excluded.shelf,
			loc_x = excluded.loc_x,
			loc_y = excluded.loc_y
	`, row)
	if err != nil {
		return fmt.Errorf("save product: %w", err)
	}
	return nil
}

// DeleteProduct removes a product.
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func upsertAisle(ctx context.Context, tx *sqlx.Tx, a domain.Aisle, position int) error {
	waypoints, err := json.Marshal(a.Waypoints)
	if err != nil {
		return fmt.Errorf("marshalling waypoints: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO aisles (id, label, section, waypoints, position) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			label = excluded.label,
			section = excluded.section,
			waypoints = excluded.waypoints,
			position = excluded.position
	`, a.ID, a.Label, a.Section, string(waypoints), position); err != nil {
		return fmt.Errorf("save aisle %s: %w", a.ID, err)
	}
	return nil
}

func applyConfig(layout *domain.StoreLayout, key, value string) error {
	if key == configName {
		layout.Name = value
		return nil
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("store config %s: %w", key, err)
	}
	switch key {
	case configWidth:
		layout.Width = f
	case configHeight:
		layout.Height = f
	case configEntranceX:
		layout.Entrance.X = f
	case configEntranceY:
		layout.Entrance.Y = f
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (r aisleRow) toDomain() (domain.Aisle, error) {
	a := domain.Aisle{ID: r.ID, Label: r.Label, Section: r.Section}
	if err := json.Unmarshal([]byte(r.Waypoints), &a.Waypoints); err != nil {
		return a, fmt.Errorf("unmarshalling waypoints of aisle %s: %w", r.ID, err)
	}
	return a, nil
}

func newProductRow(p domain.Product) (productRow, error) {
	aliases, err := marshalStrings(p.Aliases)
	if err != nil {
		return productRow{}, fmt.Errorf("marshalling aliases: %w", err)
	}
	variants, err := marshalStrings(p.Variants)
	if err != nil {
		return productRow{}, fmt.Errorf("marshalling variants: %w", err)
	}
	return productRow{
		ID:       p.ID,
		Name:     p.Name,
		Aliases:  aliases,
		Brand:    p.Brand,
		Category: p.Category,
		Variants: variants,
		Price:    p.Price,
		Quantity: p.Quantity,
		AisleID:  p.AisleID,
		Shelf:    p.Shelf,
		LocX:     p.Location.X,
		LocY:     p.Location.Y,
	}, nil
}

func (r productRow) toDomain() (domain.Product, error) {
	p := domain.Product{
		ID:       r.ID,
		Name:     r.Name,
		Brand:    r.Brand,
		Category: r.Category,
		Price:    r.Price,
		Quantity: r.Quantity,
		AisleID:  r.AisleID,
		Shelf:    r.Shelf,
		Location: domain.Point{X: r.LocX, Y: r.LocY},
	}
	if err := unmarshalStrings(r.Aliases, &p.Aliases); err != nil {
		return p, fmt.Errorf("unmarshalling aliases of product %s: %w", r.ID, err)
	}
	if err := unmarshalStrings(r.Variants, &p.Variants); err != nil {
		return p, fmt.Errorf("unmarshalling variants of product %s: %w", r.ID, err)
	}
	return p, nil
}

// marshalStrings stores nil and empty slices as "[]".
func marshalStrings(v []string) (string, error) {
	if len(v) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(v)
	return string(b), err
}

// unmarshalStrings leaves dst nil for an empty array.
func unmarshalStrings(s string, dst *[]string) error {
	if s == "" || s == "[]" {
		return nil
	}
	return json.Unmarshal([]byte(s), dst)
}
