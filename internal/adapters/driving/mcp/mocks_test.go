package mcp

import (
	"context"

	"github.com/custodia-labs/aisle/internal/core/domain"
)

// mockCatalogService is a mock implementation of driving.CatalogService.
type mockCatalogService struct {
	products []domain.Product
	scored   []domain.ScoredProduct
	layout   domain.StoreLayout
	err      error

	lastQuery string
	lastLimit int
}

func (m *mockCatalogService) FindByID(_ context.Context, id string) (*domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.products {
		if m.products[i].ID == id {
			return &m.products[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockCatalogService) FindAll(_ context.Context) ([]domain.Product, error) {
	return m.products, m.err
}

func (m *mockCatalogService) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	return &p, m.err
}

func (m *mockCatalogService) Create(_ context.Context, p domain.Product) (*domain.Product, error) {
	return &p, m.err
}

func (m *mockCatalogService) Update(_ context.Context, p domain.Product) (*domain.Product, error) {
	return &p, m.err
}

func (m *mockCatalogService) Remove(_ context.Context, _ string) error {
	return m.err
}

func (m *mockCatalogService) Search(_ context.Context, text string, topK int, _ float64) ([]domain.ScoredProduct, error) {
	m.lastQuery = text
	m.lastLimit = topK
	return m.scored, m.err
}

func (m *mockCatalogService) Aisles(_ context.Context) ([]domain.Aisle, error) {
	return m.layout.Aisles, m.err
}

func (m *mockCatalogService) UpsertAisle(_ context.Context, a domain.Aisle) (*domain.Aisle, error) {
	return &a, m.err
}

func (m *mockCatalogService) CreateAisle(_ context.Context, a domain.Aisle) (*domain.Aisle, error) {
	return &a, m.err
}

func (m *mockCatalogService) UpdateAisle(_ context.Context, a domain.Aisle) (*domain.Aisle, error) {
	return &a, m.err
}

func (m *mockCatalogService) RemoveAisle(_ context.Context, _ string) error {
	return m.err
}

func (m *mockCatalogService) Layout(_ context.Context) (domain.StoreLayout, error) {
	return m.layout, m.err
}

func (m *mockCatalogService) UpdateLayout(_ context.Context, _ domain.StoreLayout) error {
	return m.err
}

func (m *mockCatalogService) Seed(_ context.Context, _ domain.Seed, _ bool) (domain.SeedResult, error) {
	return domain.SeedResult{}, m.err
}

func (m *mockCatalogService) Stats(_ context.Context) (domain.CatalogStats, error) {
	return domain.CatalogStats{Products: len(m.products), Aisles: len(m.layout.Aisles)}, m.err
}

func (m *mockCatalogService) Reload(_ context.Context) error {
	return m.err
}

// mockRouteService is a mock implementation of driving.RouteService.
type mockRouteService struct {
	plan *domain.RoutePlan
	err  error
	ids  []string
}

func (m *mockRouteService) PlanRoute(_ context.Context, ids []string) (*domain.RoutePlan, error) {
	m.ids = ids
	return m.plan, m.err
}

// mockAssistantService is a mock implementation of driving.AssistantService.
type mockAssistantService struct {
	reply *domain.Reply
	err   error
	req   domain.QueryRequest
}

func (m *mockAssistantService) Handle(_ context.Context, req domain.QueryRequest) (*domain.Reply, error) {
	m.req = req
	return m.reply, m.err
}

func (m *mockAssistantService) HandleAudio(
	_ context.Context, _ []byte, _ string, req domain.QueryRequest,
) (*domain.Reply, error) {
	m.req = req
	return m.reply, m.err
}

func (m *mockAssistantService) ProviderName() string {
	return "mock"
}

func testLayout() domain.StoreLayout {
	return domain.StoreLayout{
		Name:     "Test Mart",
		Width:    10,
		Height:   10,
		Aisles:   []domain.Aisle{{ID: "a1", Label: "A1", Section: "Dairy", Waypoints: []domain.Point{{X: 2, Y: 1}}}},
		Entrance: domain.Point{},
	}
}
