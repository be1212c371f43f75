package services

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/aisle/internal/core/domain"
)

// storeLayout is a three-aisle store. Produce (a3) has no connection.
func storeLayout() domain.StoreLayout {
	return domain.StoreLayout{
		Name:     "Corner Mart",
		Width:    20,
		Height:   10,
		Entrance: domain.Point{X: 0, Y: 0},
		Aisles: []domain.Aisle{
			{ID: "a1", Label: "A1", Section: "Dairy", Waypoints: []domain.Point{{X: 2, Y: 1}, {X: 2, Y: 9}}},
			{ID: "a2", Label: "A2", Section: "Snacks", Waypoints: []domain.Point{{X: 6, Y: 1}, {X: 6, Y: 9}}},
			{ID: "a3", Label: "A3", Section: "Produce", Waypoints: []domain.Point{{X: 10, Y: 1}, {X: 10, Y: 9}}},
		},
		Connections: []domain.Connection{
			{From: domain.EntranceNode, To: "a1", Distance: 2},
			{From: "a1", To: "a2", Distance: 4},
		},
	}
}

func storeProducts() []domain.Product {
	return []domain.Product{
		{ID: "p1", Name: "Milk", Category: "Dairy", AisleID: "a1", Shelf: 1, Location: domain.Point{X: 2, Y: 4}},
		{ID: "p2", Name: "Potato Chips", Category: "Snacks", AisleID: "a2", Shelf: 3, Location: domain.Point{X: 6, Y: 3}},
		{ID: "p3", Name: "Butter", Category: "Dairy", AisleID: "a1", Shelf: 2, Location: domain.Point{X: 2, Y: 6}},
		{ID: "p4", Name: "Banana", Category: "Produce", AisleID: "a3", Shelf: 1, Location: domain.Point{X: 10, Y: 2}},
	}
}

func product(t *testing.T, id string) domain.Product {
	t.Helper()
	for _, p := range storeProducts() {
		if p.ID == id {
			return p
		}
	}
	t.Fatalf("no product %s", id)
	return domain.Product{}
}

func TestPlanner_SingleTarget(t *testing.T) {
	plan, err := NewPlanner().Plan([]domain.Product{product(t, "p1")}, storeLayout())
	require.NoError(t, err)

	start, ok := plan.Start()
	require.True(t, ok)
	assert.Equal(t, domain.WaypointEntrance, start.Kind)
	assert.Equal(t, domain.Point{X: 0, Y: 0}, start.Point)

	end, ok := plan.End()
	require.True(t, ok)
	assert.Equal(t, domain.WaypointShelf, end.Kind)
	assert.Equal(t, domain.Point{X: 2, Y: 4}, end.Point)
	assert.Equal(t, "p1", end.ProductID)

	assert.Equal(t, domain.HeuristicGreedyNearest, plan.Heuristic)
	assert.Equal(t, 2, plan.Steps)
	assert.InDelta(t, 5.2, plan.TotalDistance, 0.01)
	require.Len(t, plan.Legs, 1)
	assert.Equal(t, "Go right 2.2 m, then go forward 3 m. Milk is in Aisle A1 (Dairy), Shelf 1.", plan.Legs[0].Directions)
}

func TestPlanner_JunctionThroughIntermediateAisle(t *testing.T) {
	plan, err := NewPlanner().Plan([]domain.Product{product(t, "p2")}, storeLayout())
	require.NoError(t, err)

	kinds := make([]domain.WaypointKind, len(plan.Waypoints))
	for i, wp := range plan.Waypoints {
		kinds[i] = wp.Kind
	}
	assert.Equal(t, []domain.WaypointKind{
		domain.WaypointEntrance, domain.WaypointJunction, domain.WaypointAisle, domain.WaypointShelf,
	}, kinds)
	assert.Equal(t, "a1", plan.Waypoints[1].AisleID)
	assert.Equal(t, domain.Point{X: 2, Y: 1}, plan.Waypoints[1].Point)
	assert.Equal(t, domain.Point{X: 6, Y: 1}, plan.Waypoints[2].Point)
}

func TestPlanner_NearestFirstOrdering(t *testing.T) {
	targets := []domain.Product{product(t, "p2"), product(t, "p3"), product(t, "p1")}

	plan, err := NewPlanner().Plan(targets, storeLayout())
	require.NoError(t, err)

	assert.Equal(t, []string{"p1", "p3", "p2"}, plan.VisitOrder())
	require.Len(t, plan.Legs, 3)
	assert.Equal(t, "Go forward 2 m. Butter is in Aisle A1 (Dairy), Shelf 2.", plan.Legs[1].Directions)
	assert.Len(t, plan.Legs[1].Waypoints, 2)
	assert.Equal(t, plan.Steps, len(plan.Waypoints)-1)

	end, _ := plan.End()
	assert.Equal(t, "p2", end.ProductID)
}

func TestPlanner_Deterministic(t *testing.T) {
	planner := NewPlanner()
	first, err := planner.Plan([]domain.Product{product(t, "p3"), product(t, "p2"), product(t, "p1")}, storeLayout())
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		again, err := planner.Plan([]domain.Product{product(t, "p2"), product(t, "p1"), product(t, "p3")}, storeLayout())
		require.NoError(t, err)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("plan changed between runs (-first +again):\n%s", diff)
		}
	}
}

func TestPlanner_DuplicateTargetsVisitedOnce(t *testing.T) {
	plan, err := NewPlanner().Plan([]domain.Product{product(t, "p1"), product(t, "p1")}, storeLayout())
	require.NoError(t, err)
	assert.Len(t, plan.Legs, 1)
}

func TestPlanner_DefaultsShelfToAisleStart(t *testing.T) {
	p := product(t, "p1")
	p.Location = domain.Point{}

	plan, err := NewPlanner().Plan([]domain.Product{p}, storeLayout())
	require.NoError(t, err)

	end, _ := plan.End()
	assert.Equal(t, domain.Point{X: 2, Y: 1}, end.Point)
	assert.Equal(t, domain.WaypointShelf, end.Kind)
}

func TestPlanner_Errors(t *testing.T) {
	planner := NewPlanner()

	_, err := planner.Plan(nil, storeLayout())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	ghost := product(t, "p1")
	ghost.AisleID = "z9"
	_, err = planner.Plan([]domain.Product{ghost}, storeLayout())
	assert.ErrorIs(t, err, domain.ErrUnknownLocation)

	_, err = planner.Plan([]domain.Product{product(t, "p4")}, storeLayout())
	assert.ErrorIs(t, err, domain.ErrNoRouteFound)

	_, err = planner.Plan([]domain.Product{product(t, "p1"), product(t, "p4")}, storeLayout())
	assert.ErrorIs(t, err, domain.ErrNoRouteFound)
}

func TestPlanner_PrefersCheaperEdges(t *testing.T) {
	layout := storeLayout()
	layout.Connections = append(layout.Connections,
		domain.Connection{From: domain.EntranceNode, To: "a3", Distance: 1},
		domain.Connection{From: "a3", To: "a2", Distance: 1},
	)

	plan, err := NewPlanner().Plan([]domain.Product{product(t, "p2")}, layout)
	require.NoError(t, err)
	assert.Equal(t, "a3", plan.Waypoints[1].AisleID)
}

func TestRouteService_PlanRoute(t *testing.T) {
	catalog := newTestCatalog(t)
	svc := NewRouteService(catalog, NewPlanner())
	ctx := context.Background()

	plan, err := svc.PlanRoute(ctx, []string{"p2", "p1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, plan.VisitOrder())

	_, err = svc.PlanRoute(ctx, []string{"missing"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.PlanRoute(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
