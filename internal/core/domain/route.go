package domain

// HeuristicGreedyNearest names the multi-target ordering strategy.
// It visits the nearest unvisited target next and does not guarantee
// the shortest total route.
const HeuristicGreedyNearest = "greedy-nearest-neighbour"

// RouteLeg is the part of a route that ends at one product.
type RouteLeg struct {
	ProductID string     `json:"product_id"`
	AisleID   string     `json:"aisle_id"`
	Waypoints []Waypoint `json:"waypoints"`
	Distance  float64    `json:"distance"`

	// Directions is a human-readable description of the leg.
	Directions string `json:"directions"`
}

// RoutePlan is the ordered waypoint sequence a shopper follows to reach
// one or more products.
type RoutePlan struct {
	// Targets are the products in visit order.
	Targets []Product  `json:"targets"`
	Legs    []RouteLeg `json:"legs"`

	// Waypoints is the whole route, starting at the entrance.
	Waypoints []Waypoint `json:"waypoints"`

	// TotalDistance is the Euclidean length of the waypoint path.
	TotalDistance float64 `json:"total_distance"`

	// Steps is the number of waypoint transitions.
	Steps int `json:"steps"`

	// Heuristic names the visit-ordering strategy.
	Heuristic string `json:"heuristic"`
}

// Start returns the first waypoint of the route.
func (r RoutePlan) Start() (Waypoint, bool) {
	if len(r.Waypoints) == 0 {
		return Waypoint{}, false
	}
	return r.Waypoints[0], true
}

// End returns the last waypoint of the route.
func (r RoutePlan) End() (Waypoint, bool) {
	if len(r.Waypoints) == 0 {
		return Waypoint{}, false
	}
	return r.Waypoints[len(r.Waypoints)-1], true
}

// VisitOrder returns the target product IDs in visit order.
func (r RoutePlan) VisitOrder() []string {
	ids := make([]string, len(r.Targets))
	for i := range r.Targets {
		ids[i] = r.Targets[i].ID
	}
	return ids
}
