package domain

import (
	"fmt"
	"math"
)

// Point is a coordinate on the store floor.
type Point struct {
	X float64 `json:"x" toml:"x"`
	Y float64 `json:"y" toml:"y"`
}

// DistanceTo returns the Euclidean distance between two points.
func (p Point) DistanceTo(o Point) float64 {
	return math.Hypot(o.X-p.X, o.Y-p.Y)
}

// IsZero reports whether the point is the origin.
func (p Point) IsZero() bool {
	return p.X == 0 && p.Y == 0
}

// String returns the point as "(x, y)".
func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// WaypointKind classifies a vertex of a route.
type WaypointKind string

// Waypoint kinds.
const (
	// WaypointEntrance is the store entrance, the origin of every route.
	WaypointEntrance WaypointKind = "entrance"

	// WaypointJunction is where the route enters an aisle it passes through.
	WaypointJunction WaypointKind = "junction"

	// WaypointAisle is the point of the target aisle nearest the shelf.
	WaypointAisle WaypointKind = "aisle"

	// WaypointShelf is the shelf coordinate of a target product.
	WaypointShelf WaypointKind = "shelf"
)

// Waypoint is a coordinate used as a path vertex.
type Waypoint struct {
	Point
	Kind      WaypointKind `json:"kind"`
	AisleID   string       `json:"aisle_id,omitempty"`
	ProductID string       `json:"product_id,omitempty"`
}

// nearestPoint returns the point in pts closest to target.
// Ties keep the earliest point so results are stable.
func nearestPoint(pts []Point, target Point) (Point, bool) {
	if len(pts) == 0 {
		return Point{}, false
	}
	best := pts[0]
	bestDist := best.DistanceTo(target)
	for _, p := range pts[1:] {
		if d := p.DistanceTo(target); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best, true
}
