package services

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/aisle/internal/core/domain"
	"github.com/custodia-labs/aisle/internal/core/ports/driving"
	"github.com/custodia-labs/aisle/internal/logger"
)

// Ensure RouteService implements the interface.
var _ driving.RouteService = (*RouteService)(nil)

// Planner computes walking routes over a store layout.
// It holds no state; Plan is safe for concurrent use.
type Planner struct{}

// NewPlanner creates a path planner.
func NewPlanner() *Planner {
	return &Planner{}
}

// edge is an undirected adjacency entry.
type edge struct {
	to     string
	weight float64
}

// graph is the aisle connectivity graph with sorted adjacency lists.
type graph struct {
	nodes []string
	adj   map[string][]edge
}

func buildGraph(layout domain.StoreLayout) *graph {
	g := &graph{adj: make(map[string][]edge)}
	g.nodes = append(g.nodes, domain.EntranceNode)
	for _, a := range layout.Aisles {
		g.nodes = append(g.nodes, a.ID)
	}
	sort.Strings(g.nodes)

	for _, c := range layout.Connections {
		w := c.Weight()
		g.adj[c.From] = append(g.adj[c.From], edge{to: c.To, weight: w})
		g.adj[c.To] = append(g.adj[c.To], edge{to: c.From, weight: w})
	}
	for n := range g.adj {
		edges := g.adj[n]
		sort.Slice(edges, func(i, j int) bool {
			if edges[i].to != edges[j].to {
				return edges[i].to < edges[j].to
			}
			return edges[i].weight < edges[j].weight
		})
	}
	return g
}

// shortestPaths runs Dijkstra from src. Ties between equally distant
// nodes are settled in node ID order so paths are deterministic.
func (g *graph) shortestPaths(src string) (map[string]float64, map[string]string) {
	dist := make(map[string]float64, len(g.nodes))
	prev := make(map[string]string, len(g.nodes))
	done := make(map[string]bool, len(g.nodes))
	for _, n := range g.nodes {
		dist[n] = math.Inf(1)
	}
	dist[src] = 0

	for {
		u := ""
		best := math.Inf(1)
		for _, n := range g.nodes {
			if !done[n] && dist[n] < best {
				u, best = n, dist[n]
			}
		}
		if u == "" {
			break
		}
		done[u] = true
		for _, e := range g.adj[u] {
			if nd := dist[u] + e.weight; nd < dist[e.to] {
				dist[e.to] = nd
				prev[e.to] = u
			}
		}
	}
	return dist, prev
}

// pathTo walks prev back from dst. The result starts at the source.
func pathTo(prev map[string]string, src, dst string) []string {
	path := []string{dst}
	for n := dst; n != src; {
		n = prev[n]
		path = append(path, n)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// target is a product resolved against the layout.
type target struct {
	product domain.Product
	aisle   domain.Aisle
	shelf   domain.Point
}

// Plan returns a route from the entrance through every target product.
// Targets are visited nearest-unvisited first, which is a heuristic and
// not the shortest possible tour. Duplicate products are visited once.
func (p *Planner) Plan(targets []domain.Product, layout domain.StoreLayout) (*domain.RoutePlan, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: no products to route to", domain.ErrInvalidInput)
	}

	pending, err := resolveTargets(targets, layout)
	if err != nil {
		return nil, err
	}

	g := buildGraph(layout)
	plan := &domain.RoutePlan{Heuristic: domain.HeuristicGreedyNearest}
	plan.Waypoints = append(plan.Waypoints, domain.Waypoint{Point: layout.Entrance, Kind: domain.WaypointEntrance})

	node := domain.EntranceNode
	pos := layout.Entrance
	for len(pending) > 0 {
		dist, prev := g.shortestPaths(node)

		next := -1
		for i, t := range pending {
			d := dist[t.aisle.ID]
			if math.IsInf(d, 1) {
				continue
			}
			if next < 0 || closer(t, d, pending[next], dist[pending[next].aisle.ID], pos) {
				next = i
			}
		}
		if next < 0 {
			t := pending[0]
			return nil, fmt.Errorf("%w: %s is not reachable from %s", domain.ErrNoRouteFound, t.aisle.DisplayName(), node)
		}

		t := pending[next]
		leg := buildLeg(layout, pathTo(prev, node, t.aisle.ID), pos, t)
		plan.Legs = append(plan.Legs, leg)
		plan.Targets = append(plan.Targets, t.product)
		plan.Waypoints = append(plan.Waypoints, leg.Waypoints[1:]...)
		plan.TotalDistance += leg.Distance

		node, pos = t.aisle.ID, t.shelf
		pending = append(pending[:next], pending[next+1:]...)
	}

	plan.Steps = len(plan.Waypoints) - 1
	plan.TotalDistance = round1(plan.TotalDistance)
	logger.Debug("Planned route through %d products: %.1f m in %d steps", len(plan.Targets), plan.TotalDistance, plan.Steps)
	return plan, nil
}

// closer orders candidates by graph distance, then straight-line distance
// to the shelf, then product ID.
func closer(a target, da float64, b target, db float64, from domain.Point) bool {
	if da != db {
		return da < db
	}
	ea, eb := from.DistanceTo(a.shelf), from.DistanceTo(b.shelf)
	if ea != eb {
		return ea < eb
	}
	return a.product.ID < b.product.ID
}

func resolveTargets(products []domain.Product, layout domain.StoreLayout) ([]target, error) {
	seen := make(map[string]bool, len(products))
	out := make([]target, 0, len(products))
	for _, p := range products {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true

		aisle, ok := layout.Aisle(p.AisleID)
		if !ok || len(aisle.Waypoints) == 0 {
			return nil, fmt.Errorf("%w: %s is in aisle %q which is not on the map", domain.ErrUnknownLocation, p.Name, p.AisleID)
		}
		shelf := p.Location
		if shelf.IsZero() {
			shelf, _ = layout.NodePosition(aisle.ID)
		}
		out = append(out, target{product: p, aisle: aisle, shelf: shelf})
	}
	return out, nil
}

// buildLeg turns a node path into waypoints: the start position, a
// junction for every aisle passed through, the target aisle's waypoint
// nearest the shelf, and the shelf itself.
func buildLeg(layout domain.StoreLayout, path []string, start domain.Point, t target) domain.RouteLeg {
	startKind := domain.WaypointShelf
	if path[0] == domain.EntranceNode {
		startKind = domain.WaypointEntrance
	}
	wps := []domain.Waypoint{{Point: start, Kind: startKind}}
	pos := start

	add := func(wp domain.Waypoint) {
		if wp.Point == pos {
			return
		}
		wps = append(wps, wp)
		pos = wp.Point
	}

	for i := 1; i < len(path)-1; i++ {
		n := path[i]
		if n == domain.EntranceNode {
			add(domain.Waypoint{Point: layout.Entrance, Kind: domain.WaypointJunction})
			continue
		}
		a, _ := layout.Aisle(n)
		if pt, ok := a.NearestWaypoint(pos); ok {
			add(domain.Waypoint{Point: pt, Kind: domain.WaypointJunction, AisleID: n})
		}
	}

	// Within the same aisle, walk straight to the next shelf.
	if len(path) > 1 {
		if pt, ok := t.aisle.NearestWaypoint(t.shelf); ok {
			add(domain.Waypoint{Point: pt, Kind: domain.WaypointAisle, AisleID: t.aisle.ID})
		}
	}
	shelf := domain.Waypoint{Point: t.shelf, Kind: domain.WaypointShelf, AisleID: t.aisle.ID, ProductID: t.product.ID}
	if shelf.Point == pos && len(wps) > 1 {
		wps[len(wps)-1] = shelf
	} else {
		wps = append(wps, shelf)
	}

	leg := domain.RouteLeg{ProductID: t.product.ID, AisleID: t.aisle.ID, Waypoints: wps}
	for i := 1; i < len(wps); i++ {
		leg.Distance += wps[i-1].DistanceTo(wps[i].Point)
	}
	leg.Distance = round1(leg.Distance)
	leg.Directions = describeLeg(wps, t.product, t.aisle)
	return leg
}

// RouteService resolves product IDs against the catalog snapshot and
// plans a route.
type RouteService struct {
	catalog *CatalogService
	planner *Planner
}

// NewRouteService creates a route service.
func NewRouteService(catalog *CatalogService, planner *Planner) *RouteService {
	return &RouteService{catalog: catalog, planner: planner}
}

// PlanRoute plans a route through the products with the given IDs.
// Unknown IDs fail with domain.ErrNotFound.
func (s *RouteService) PlanRoute(_ context.Context, productIDs []string) (*domain.RoutePlan, error) {
	if len(productIDs) == 0 {
		return nil, fmt.Errorf("%w: no products to route to", domain.ErrInvalidInput)
	}
	snap := s.catalog.Snapshot()
	products, err := snap.Resolve(productIDs)
	if err != nil {
		return nil, err
	}
	return s.planner.Plan(products, snap.Layout())
}
