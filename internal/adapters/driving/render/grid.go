// Package render draws the store floor and a planned route as a character
// map for terminals. The HTTP API returns only waypoint data.
package render

import (
	"math"

	"github.com/custodia-labs/aisle/internal/core/domain"
)

// CellKind classifies a map cell. Higher kinds win when cells overlap.
type CellKind int

// Cell kinds in drawing priority order.
const (
	CellEmpty CellKind = iota
	CellAisle
	CellPath
	CellEntrance
	CellTarget
)

// Cell is one character of the map.
type Cell struct {
	Rune rune
	Kind CellKind
}

// Legend entry for an aisle.
type Legend struct {
	Rune  rune
	Aisle domain.Aisle
}

// Grid is a rasterised store floor with y = 0 on the bottom row. Floors
// larger than maxCells metres on a side are scaled down to fit, so one cell
// covers 1/Scale metres.
type Grid struct {
	Width  int
	Height int
	Scale  float64
	Legend []Legend

	cells [][]Cell
}

const maxCells = 200

// NewGrid rasterises the layout and, when plan is non-nil, the route over it.
// Aisles are lettered A, B, C... in layout order; route targets are
// numbered in visit order.
func NewGrid(layout domain.StoreLayout, plan *domain.RoutePlan) *Grid {
	scale := scaleFor(layout.Width, layout.Height)
	w := cellCount(layout.Width, scale)
	h := cellCount(layout.Height, scale)
	g := &Grid{Width: w, Height: h, Scale: scale, cells: make([][]Cell, h)}
	for y := range g.cells {
		g.cells[y] = make([]Cell, w)
		for x := range g.cells[y] {
			g.cells[y][x] = Cell{Rune: ' ', Kind: CellEmpty}
		}
	}

	for i, a := range layout.Aisles {
		r := aisleRune(i)
		g.Legend = append(g.Legend, Legend{Rune: r, Aisle: a})
		g.polyline(a.Waypoints, Cell{Rune: r, Kind: CellAisle})
	}

	g.set(layout.Entrance, Cell{Rune: 'E', Kind: CellEntrance})

	if plan != nil {
		pts := make([]domain.Point, len(plan.Waypoints))
		for i, wp := range plan.Waypoints {
			pts[i] = wp.Point
		}
		g.polyline(pts, Cell{Rune: '·', Kind: CellPath})

		order := make(map[string]int, len(plan.Targets))
		for i, id := range plan.VisitOrder() {
			order[id] = i + 1
		}
		for _, wp := range plan.Waypoints {
			if wp.Kind == domain.WaypointShelf {
				g.set(wp.Point, Cell{Rune: targetRune(order[wp.ProductID]), Kind: CellTarget})
			}
		}
	}
	return g
}

// At returns the cell at grid coordinate (x, y). At Scale 1 these are
// floor metres.
func (g *Grid) At(x, y int) Cell {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return Cell{Rune: ' ', Kind: CellEmpty}
	}
	return g.cells[y][x]
}

// Rows returns the cells top row first.
func (g *Grid) Rows() [][]Cell {
	rows := make([][]Cell, g.Height)
	for i := range rows {
		rows[i] = g.cells[g.Height-1-i]
	}
	return rows
}

func (g *Grid) set(p domain.Point, c Cell) {
	x, y := g.cellOf(p)
	if c.Kind >= g.cells[y][x].Kind {
		g.cells[y][x] = c
	}
}

func (g *Grid) polyline(pts []domain.Point, c Cell) {
	if len(pts) == 1 {
		g.set(pts[0], c)
		return
	}
	for i := 1; i < len(pts); i++ {
		g.segment(pts[i-1], pts[i], c)
	}
}

func (g *Grid) segment(a, b domain.Point, c Cell) {
	span := math.Max(math.Abs(b.X-a.X), math.Abs(b.Y-a.Y)) * g.Scale
	steps := int(math.Ceil(math.Min(span, float64(2*maxCells))))
	if steps == 0 {
		g.set(a, c)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		g.set(domain.Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}, c)
	}
}

func (g *Grid) cellOf(p domain.Point) (int, int) {
	x := int(math.Round(p.X * g.Scale))
	y := int(math.Round(p.Y * g.Scale))
	return clamp(x, g.Width-1), clamp(y, g.Height-1)
}

func clamp(v, hi int) int {
	if v < 0 {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}

// scaleFor returns the cells per metre that fit the longer side into
// maxCells.
func scaleFor(width, height float64) float64 {
	longest := math.Max(width, height)
	if longest <= maxCells-1 {
		return 1
	}
	return (maxCells - 1) / longest
}

func cellCount(v, scale float64) int {
	n := int(math.Round(v*scale)) + 1
	if n < 1 {
		return 1
	}
	if n > maxCells {
		return maxCells
	}
	return n
}

func aisleRune(i int) rune {
	if i < 26 {
		return rune('A' + i)
	}
	return '#'
}

func targetRune(n int) rune {
	if n >= 1 && n <= 9 {
		return rune('0' + n)
	}
	return '*'
}
