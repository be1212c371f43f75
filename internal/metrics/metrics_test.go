package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/aisle/internal/core/domain"
)

func TestObserveReply(t *testing.T) {
	before := testutil.ToFloat64(QueriesTotal.WithLabelValues("lookup", "rules"))
	fallbacks := testutil.ToFloat64(FallbacksTotal.WithLabelValues("timeout"))
	routes := testutil.ToFloat64(RoutePlansTotal.WithLabelValues(RouteOK))

	ObserveReply(domain.Reply{
		Intent:         domain.IntentLookup,
		Provider:       "rules",
		FallbackReason: "timeout",
		WantsRoute:     true,
		Route:          &domain.RoutePlan{},
	})

	assert.Equal(t, before+1, testutil.ToFloat64(QueriesTotal.WithLabelValues("lookup", "rules")))
	assert.Equal(t, fallbacks+1, testutil.ToFloat64(FallbacksTotal.WithLabelValues("timeout")))
	assert.Equal(t, routes+1, testutil.ToFloat64(RoutePlansTotal.WithLabelValues(RouteOK)))
}

func TestObserveReply_NoRouteWanted(t *testing.T) {
	routes := testutil.ToFloat64(RoutePlansTotal.WithLabelValues(RouteFailed))

	ObserveReply(domain.Reply{Intent: domain.IntentChat, Provider: "rules", RouteError: "ignored"})

	assert.Equal(t, routes, testutil.ToFloat64(RoutePlansTotal.WithLabelValues(RouteFailed)))
}

func TestRouteResult(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, RouteOK},
		{fmt.Errorf("p1: %w", domain.ErrUnknownLocation), RouteUnknown},
		{domain.ErrNoRouteFound, RouteNoPath},
		{domain.ErrInvalidInput, RouteInvalid},
		{domain.ErrNotFound, RouteInvalid},
		{fmt.Errorf("boom"), RouteFailed},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RouteResult(tt.err))
	}
}
