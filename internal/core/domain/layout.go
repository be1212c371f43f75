package domain

import (
	"fmt"
	"strings"
)

// EntranceNode is the reserved node ID of the store entrance in the
// connectivity graph. Aisles may not use it as their ID.
const EntranceNode = "entrance"

// Aisle is a named region of the store with a geometric extent.
type Aisle struct {
	// ID uniquely identifies the aisle.
	ID string `json:"id"`

	// Label is the human label shown to shoppers, e.g. "A3".
	Label string `json:"label"`

	// Section describes what the aisle holds, e.g. "Dairy".
	Section string `json:"section,omitempty"`

	// Waypoints is the aisle's extent as an ordered list of points.
	Waypoints []Point `json:"waypoints"`
}

// DisplayName returns "Aisle <label> (<section>)", omitting empty parts.
func (a Aisle) DisplayName() string {
	label := a.Label
	if label == "" {
		label = a.ID
	}
	if a.Section == "" {
		return "Aisle " + label
	}
	return fmt.Sprintf("Aisle %s (%s)", label, a.Section)
}

// NearestWaypoint returns the aisle waypoint closest to p.
func (a Aisle) NearestWaypoint(p Point) (Point, bool) {
	return nearestPoint(a.Waypoints, p)
}

// Connection is an undirected walkable segment between two nodes.
// A node is an aisle ID or EntranceNode.
type Connection struct {
	From string `json:"from"`
	To   string `json:"to"`

	// Distance is the walking cost. Zero means the default weight of 1.
	Distance float64 `json:"distance,omitempty"`
}

// Weight returns the edge weight used for shortest-path search.
func (c Connection) Weight() float64 {
	if c.Distance <= 0 {
		return 1
	}
	return c.Distance
}

// StoreLayout describes the store floor. There is one per deployment.
type StoreLayout struct {
	// Name is the store name used in replies.
	Name string `json:"name"`

	// Width and Height bound the floor: 0 <= x <= Width, 0 <= y <= Height.
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// Entrance is the origin of every route.
	Entrance Point `json:"entrance"`

	Aisles      []Aisle      `json:"aisles"`
	Connections []Connection `json:"connections"`
}

// Contains reports whether p lies within the layout bounds.
func (l StoreLayout) Contains(p Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X <= l.Width && p.Y <= l.Height
}

// Aisle returns the aisle with the given ID.
func (l StoreLayout) Aisle(id string) (Aisle, bool) {
	for _, a := range l.Aisles {
		if a.ID == id {
			return a, true
		}
	}
	return Aisle{}, false
}

// HasNode reports whether id is the entrance or a known aisle.
func (l StoreLayout) HasNode(id string) bool {
	if id == EntranceNode {
		return true
	}
	_, ok := l.Aisle(id)
	return ok
}

// NodePosition returns the representative coordinate of a graph node:
// the entrance point, or an aisle's first waypoint.
func (l StoreLayout) NodePosition(id string) (Point, bool) {
	if id == EntranceNode {
		return l.Entrance, true
	}
	a, ok := l.Aisle(id)
	if !ok || len(a.Waypoints) == 0 {
		return Point{}, false
	}
	return a.Waypoints[0], true
}

// Validate checks the layout's structural invariants.
// Overlapping aisles are not detected.
func (l StoreLayout) Validate() error {
	if l.Width <= 0 || l.Height <= 0 {
		return fmt.Errorf("%w: layout bounds must be positive", ErrInvalidInput)
	}
	if !l.Contains(l.Entrance) {
		return fmt.Errorf("%w: entrance %s outside store bounds", ErrInvalidInput, l.Entrance)
	}

	seen := make(map[string]bool, len(l.Aisles))
	for _, a := range l.Aisles {
		if err := l.ValidateAisle(a); err != nil {
			return err
		}
		if seen[a.ID] {
			return fmt.Errorf("%w: duplicate aisle %q", ErrAlreadyExists, a.ID)
		}
		seen[a.ID] = true
	}

	for _, c := range l.Connections {
		if c.Distance < 0 {
			return fmt.Errorf("%w: connection %s-%s has negative distance", ErrInvalidInput, c.From, c.To)
		}
		if c.From == c.To {
			return fmt.Errorf("%w: connection %s-%s is a loop", ErrInvalidInput, c.From, c.To)
		}
		for _, node := range []string{c.From, c.To} {
			if !l.HasNode(node) {
				return fmt.Errorf("%w: connection references unknown node %q", ErrInvalidReference, node)
			}
		}
	}
	return nil
}

// ValidateAisle checks a single aisle against the layout bounds.
func (l StoreLayout) ValidateAisle(a Aisle) error {
	id := strings.TrimSpace(a.ID)
	if id == "" {
		return fmt.Errorf("%w: aisle id is required", ErrInvalidInput)
	}
	if id == EntranceNode {
		return fmt.Errorf("%w: aisle id %q is reserved", ErrInvalidInput, EntranceNode)
	}
	if len(a.Waypoints) == 0 {
		return fmt.Errorf("%w: aisle %q has no waypoints", ErrInvalidInput, a.ID)
	}
	for _, p := range a.Waypoints {
		if !l.Contains(p) {
			return fmt.Errorf("%w: aisle %q waypoint %s outside store bounds", ErrInvalidInput, a.ID, p)
		}
	}
	return nil
}

// WithoutAisle returns a copy of the layout with the aisle and its
// connections removed.
func (l StoreLayout) WithoutAisle(id string) StoreLayout {
	out := l
	out.Aisles = make([]Aisle, 0, len(l.Aisles))
	for _, a := range l.Aisles {
		if a.ID != id {
			out.Aisles = append(out.Aisles, a)
		}
	}
	out.Connections = make([]Connection, 0, len(l.Connections))
	for _, c := range l.Connections {
		if c.From != id && c.To != id {
			out.Connections = append(out.Connections, c)
		}
	}
	return out
}

// WithAisle returns a copy of the layout with the aisle inserted,
// or replaced in place when an aisle with the same ID exists.
func (l StoreLayout) WithAisle(a Aisle) StoreLayout {
	out := l
	out.Aisles = make([]Aisle, 0, len(l.Aisles)+1)
	replaced := false
	for _, existing := range l.Aisles {
		if existing.ID == a.ID {
			out.Aisles = append(out.Aisles, a)
			replaced = true
			continue
		}
		out.Aisles = append(out.Aisles, existing)
	}
	if !replaced {
		out.Aisles = append(out.Aisles, a)
	}
	return out
}
