package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLayout() StoreLayout {
	return StoreLayout{
		Name:     "Corner Mart",
		Width:    10,
		Height:   8,
		Entrance: Point{X: 0, Y: 0},
		Aisles: []Aisle{
			{ID: "A1", Label: "A1", Section: "Dairy", Waypoints: []Point{{X: 2, Y: 1}, {X: 2, Y: 6}}},
			{ID: "A2", Label: "A2", Section: "Snacks", Waypoints: []Point{{X: 5, Y: 1}, {X: 5, Y: 6}}},
		},
		Connections: []Connection{
			{From: EntranceNode, To: "A1"},
			{From: "A1", To: "A2", Distance: 3},
		},
	}
}

func TestStoreLayout_Validate_OK(t *testing.T) {
	require.NoError(t, testLayout().Validate())
}

func TestStoreLayout_Validate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(l *StoreLayout)
		want   error
	}{
		{"zero bounds", func(l *StoreLayout) { l.Width = 0 }, ErrInvalidInput},
		{"entrance outside", func(l *StoreLayout) { l.Entrance = Point{X: -1} }, ErrInvalidInput},
		{"aisle outside", func(l *StoreLayout) { l.Aisles[0].Waypoints[0] = Point{X: 20, Y: 1} }, ErrInvalidInput},
		{"aisle without waypoints", func(l *StoreLayout) { l.Aisles[1].Waypoints = nil }, ErrInvalidInput},
		{"reserved aisle id", func(l *StoreLayout) { l.Aisles[0].ID = EntranceNode }, ErrInvalidInput},
		{"duplicate aisle", func(l *StoreLayout) { l.Aisles[1].ID = "A1" }, ErrAlreadyExists},
		{"unknown node", func(l *StoreLayout) { l.Connections[1].To = "A9" }, ErrInvalidReference},
		{"negative distance", func(l *StoreLayout) { l.Connections[1].Distance = -2 }, ErrInvalidInput},
		{"self loop", func(l *StoreLayout) { l.Connections[1].To = "A1" }, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := testLayout()
			tt.mutate(&l)
			assert.ErrorIs(t, l.Validate(), tt.want)
		})
	}
}

func TestStoreLayout_Contains(t *testing.T) {
	l := testLayout()
	assert.True(t, l.Contains(Point{X: 0, Y: 0}))
	assert.True(t, l.Contains(Point{X: 10, Y: 8}))
	assert.False(t, l.Contains(Point{X: 10.5, Y: 8}))
	assert.False(t, l.Contains(Point{X: 1, Y: -0.1}))
}

func TestStoreLayout_WithoutAisle(t *testing.T) {
	l := testLayout()
	out := l.WithoutAisle("A2")

	assert.Len(t, out.Aisles, 1)
	assert.Len(t, out.Connections, 1)
	assert.False(t, out.HasNode("A2"))
	// original untouched
	assert.Len(t, l.Aisles, 2)
	assert.Len(t, l.Connections, 2)
}

func TestStoreLayout_WithAisle(t *testing.T) {
	l := testLayout()

	replaced := l.WithAisle(Aisle{ID: "A1", Label: "A1", Section: "Milk", Waypoints: []Point{{X: 1, Y: 1}}})
	require.Len(t, replaced.Aisles, 2)
	assert.Equal(t, "Milk", replaced.Aisles[0].Section)
	assert.Equal(t, "Dairy", l.Aisles[0].Section)

	added := l.WithAisle(Aisle{ID: "A3", Waypoints: []Point{{X: 8, Y: 1}}})
	assert.Len(t, added.Aisles, 3)
}

func TestStoreLayout_NodePosition(t *testing.T) {
	l := testLayout()

	p, ok := l.NodePosition(EntranceNode)
	require.True(t, ok)
	assert.Equal(t, l.Entrance, p)

	p, ok = l.NodePosition("A2")
	require.True(t, ok)
	assert.Equal(t, Point{X: 5, Y: 1}, p)

	_, ok = l.NodePosition("nope")
	assert.False(t, ok)
}

func TestAisle_NearestWaypoint(t *testing.T) {
	a := Aisle{ID: "A1", Waypoints: []Point{{X: 2, Y: 1}, {X: 2, Y: 6}}}

	p, ok := a.NearestWaypoint(Point{X: 3, Y: 5})
	require.True(t, ok)
	assert.Equal(t, Point{X: 2, Y: 6}, p)

	_, ok = Aisle{}.NearestWaypoint(Point{})
	assert.False(t, ok)
}

func TestAisle_DisplayName(t *testing.T) {
	assert.Equal(t, "Aisle A1 (Dairy)", Aisle{ID: "x", Label: "A1", Section: "Dairy"}.DisplayName())
	assert.Equal(t, "Aisle x", Aisle{ID: "x"}.DisplayName())
}

func TestConnection_Weight(t *testing.T) {
	assert.Equal(t, 1.0, Connection{}.Weight())
	assert.Equal(t, 2.5, Connection{Distance: 2.5}.Weight())
}
