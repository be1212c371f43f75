package driving

import (
	"context"

	"github.com/custodia-labs/aisle/internal/core/domain"
)

// RouteService plans walking routes through the store.
type RouteService interface {
	// PlanRoute resolves product IDs against the catalog and plans a route
	// from the entrance through every product.
	PlanRoute(ctx context.Context, productIDs []string) (*domain.RoutePlan, error)
}
