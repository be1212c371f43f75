package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/aisle/internal/core/domain"
)

func testLayout() domain.StoreLayout {
	return domain.StoreLayout{
		Name:   "Test Mart",
		Width:  10,
		Height: 4,
		Aisles: []domain.Aisle{
			{ID: "a1", Label: "A1", Section: "Dairy", Waypoints: []domain.Point{{X: 2, Y: 1}, {X: 2, Y: 3}}},
			{ID: "a2", Label: "A2", Section: "Snacks", Waypoints: []domain.Point{{X: 6, Y: 1}, {X: 6, Y: 3}}},
		},
		Connections: []domain.Connection{{From: "entrance", To: "a1"}, {From: "a1", To: "a2"}},
	}
}

func testPlan() *domain.RoutePlan {
	return &domain.RoutePlan{
		Targets: []domain.Product{{ID: "p2"}, {ID: "p1"}},
		Waypoints: []domain.Waypoint{
			{Point: domain.Point{X: 0, Y: 0}, Kind: domain.WaypointEntrance},
			{Point: domain.Point{X: 2, Y: 1}, Kind: domain.WaypointAisle, AisleID: "a1"},
			{Point: domain.Point{X: 3, Y: 1}, Kind: domain.WaypointShelf, AisleID: "a1", ProductID: "p2"},
			{Point: domain.Point{X: 6, Y: 2}, Kind: domain.WaypointAisle, AisleID: "a2"},
			{Point: domain.Point{X: 7, Y: 2}, Kind: domain.WaypointShelf, AisleID: "a2", ProductID: "p1"},
		},
	}
}

func TestNewGrid_Layout(t *testing.T) {
	g := NewGrid(testLayout(), nil)

	assert.Equal(t, 11, g.Width)
	assert.Equal(t, 5, g.Height)
	assert.Equal(t, Cell{Rune: 'E', Kind: CellEntrance}, g.At(0, 0))
	assert.Equal(t, 'A', g.At(2, 2).Rune)
	assert.Equal(t, 'B', g.At(6, 3).Rune)
	assert.Equal(t, CellEmpty, g.At(4, 2).Kind)
	assert.Equal(t, CellEmpty, g.At(-1, 50).Kind)

	require.Len(t, g.Legend, 2)
	assert.Equal(t, "a2", g.Legend[1].Aisle.ID)
}

func TestNewGrid_Route(t *testing.T) {
	g := NewGrid(testLayout(), testPlan())

	assert.Equal(t, Cell{Rune: '1', Kind: CellTarget}, g.At(3, 1))
	assert.Equal(t, Cell{Rune: '2', Kind: CellTarget}, g.At(7, 2))
	assert.Equal(t, CellEntrance, g.At(0, 0).Kind)
	assert.Equal(t, CellPath, g.At(1, 1).Kind)
	// The route passes over aisle A at (2, 1).
	assert.Equal(t, CellPath, g.At(2, 1).Kind)
	assert.Equal(t, CellAisle, g.At(2, 3).Kind)
}

func TestNewGrid_ClampsOutOfBounds(t *testing.T) {
	layout := testLayout()
	layout.Aisles[0].Waypoints = []domain.Point{{X: 40, Y: -3}}

	g := NewGrid(layout, nil)
	assert.Equal(t, 'A', g.At(10, 0).Rune)
}

func TestNewGrid_ScalesLargeFloor(t *testing.T) {
	layout := domain.StoreLayout{
		Width:    1000,
		Height:   100,
		Entrance: domain.Point{X: 0, Y: 0},
		Aisles: []domain.Aisle{
			{ID: "a1", Waypoints: []domain.Point{{X: 500, Y: 10}, {X: 500, Y: 90}}},
			{ID: "a2", Waypoints: []domain.Point{{X: 995, Y: 50}}},
		},
	}

	g := NewGrid(layout, nil)

	assert.Equal(t, maxCells, g.Width)
	assert.Equal(t, 21, g.Height)
	assert.InDelta(t, 0.199, g.Scale, 0.001)
	assert.Equal(t, 'A', g.At(100, 10).Rune)
	assert.Equal(t, 'B', g.At(198, 10).Rune)
	assert.Equal(t, CellEmpty, g.At(199, 10).Kind)
	assert.Contains(t, ASCII(g), "1 cell = 5.0 m")
}

func TestNewGrid_HugeFloorStaysBounded(t *testing.T) {
	layout := domain.StoreLayout{
		Width:  1e9,
		Height: 1e9,
		Aisles: []domain.Aisle{
			{ID: "a1", Waypoints: []domain.Point{{X: 0, Y: 0}, {X: 1e9, Y: 1e9}}},
		},
	}

	g := NewGrid(layout, nil)

	assert.Equal(t, maxCells, g.Width)
	assert.Equal(t, maxCells, g.Height)
	assert.Equal(t, 'A', g.At(100, 100).Rune)
}

func TestASCII(t *testing.T) {
	out := ASCII(NewGrid(testLayout(), testPlan()))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	require.Len(t, lines, 8)
	assert.Equal(t, "+-----------+", lines[0])
	assert.Equal(t, lines[0], lines[6])
	// Bottom map row holds the entrance in the first column.
	assert.True(t, strings.HasPrefix(lines[5], "|E"), lines[5])
	assert.Contains(t, lines[7], "A Aisle A1 (Dairy)")
	assert.Contains(t, lines[7], "B Aisle A2 (Snacks)")
}

func TestStyled(t *testing.T) {
	out := Styled(NewGrid(testLayout(), testPlan()), nil)

	assert.Contains(t, out, "E")
	assert.Contains(t, out, "1")
	assert.Contains(t, out, "2")
	assert.Contains(t, out, "Aisle A2 (Snacks)")
}

func TestForWriter_NonTerminal(t *testing.T) {
	g := NewGrid(testLayout(), nil)
	var buf bytes.Buffer

	assert.Equal(t, ASCII(g), ForWriter(&buf, g))
}
