package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/aisle/internal/core/domain"
)

func sampleLayout() domain.StoreLayout {
	return domain.StoreLayout{
		Name:     "Corner Mart",
		Width:    20,
		Height:   10,
		Entrance: domain.Point{X: 0, Y: 0},
		Aisles: []domain.Aisle{
			{ID: "a1", Label: "A1", Section: "Dairy", Waypoints: []domain.Point{{X: 2, Y: 1}, {X: 2, Y: 8}}},
			{ID: "a2", Label: "A2", Section: "Snacks", Waypoints: []domain.Point{{X: 6, Y: 1}, {X: 6, Y: 8}}},
		},
		Connections: []domain.Connection{
			{From: domain.EntranceNode, To: "a1", Distance: 2},
			{From: "a1", To: "a2", Distance: 4},
		},
	}
}

func TestNewCatalogStore(t *testing.T) {
	store := NewCatalogStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.products)
}

func TestCatalogStore_EmptyLayout(t *testing.T) {
	store := NewCatalogStore()

	layout, err := store.LoadLayout(context.Background())
	require.NoError(t, err)
	assert.Empty(t, layout.Aisles)
	assert.Zero(t, layout.Width)
}

func TestCatalogStore_SaveLayout_IsCopied(t *testing.T) {
	store := NewCatalogStore()
	ctx := context.Background()
	layout := sampleLayout()

	require.NoError(t, store.SaveLayout(ctx, layout))
	layout.Aisles[0].Waypoints[0] = domain.Point{X: 99, Y: 99}

	loaded, err := store.LoadLayout(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Point{X: 2, Y: 1}, loaded.Aisles[0].Waypoints[0])
	assert.Equal(t, "Corner Mart", loaded.Name)
	assert.Len(t, loaded.Connections, 2)
}

func TestCatalogStore_SaveAisle_InsertAndUpdate(t *testing.T) {
	store := NewCatalogStore()
	ctx := context.Background()
	require.NoError(t, store.SaveLayout(ctx, sampleLayout()))

	require.NoError(t, store.SaveAisle(ctx, domain.Aisle{ID: "a3", Label: "A3", Waypoints: []domain.Point{{X: 10, Y: 1}}}))
	require.NoError(t, store.SaveAisle(ctx, domain.Aisle{ID: "a1", Label: "A1", Section: "Bakery", Waypoints: []domain.Point{{X: 2, Y: 1}}}))

	layout, err := store.LoadLayout(ctx)
	require.NoError(t, err)
	require.Len(t, layout.Aisles, 3)
	assert.Equal(t, "Bakery", layout.Aisles[0].Section)
	assert.Equal(t, "a3", layout.Aisles[2].ID)
}

func TestCatalogStore_DeleteAisle_DropsConnections(t *testing.T) {
	store := NewCatalogStore()
	ctx := context.Background()
	require.NoError(t, store.SaveLayout(ctx, sampleLayout()))

	require.NoError(t, store.DeleteAisle(ctx, "a2"))

	layout, err := store.LoadLayout(ctx)
	require.NoError(t, err)
	require.Len(t, layout.Aisles, 1)
	require.Len(t, layout.Connections, 1)
	assert.Equal(t, "a1", layout.Connections[0].To)
}

func TestCatalogStore_Products(t *testing.T) {
	store := NewCatalogStore()
	ctx := context.Background()

	require.NoError(t, store.SaveProduct(ctx, domain.Product{ID: "p2", Name: "Bread", AisleID: "a1"}))
	require.NoError(t, store.SaveProduct(ctx, domain.Product{ID: "p1", Name: "Milk", AisleID: "a1"}))

	got, err := store.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Milk", got.Name)

	list, err := store.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "p1", list[0].ID)

	require.NoError(t, store.DeleteProduct(ctx, "p1"))
	_, err = store.GetProduct(ctx, "p1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, store.DeleteProduct(ctx, "p1"), domain.ErrNotFound)
}

func TestCatalogStore_ConcurrentAccess(t *testing.T) {
	store := NewCatalogStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(id int) {
			defer wg.Done()
			_ = store.SaveProduct(ctx, domain.Product{ID: string(rune('a' + id)), Name: "x"})
		}(i)
		go func() {
			defer wg.Done()
			_, _ = store.ListProducts(ctx)
		}()
	}
	wg.Wait()

	list, err := store.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 10)
}

func TestCatalogStore_Close(t *testing.T) {
	assert.NoError(t, NewCatalogStore().Close())
}
