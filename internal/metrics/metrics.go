// Package metrics holds the prometheus collectors for the assistant.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/custodia-labs/aisle/internal/core/domain"
)

// Route plan results.
const (
	RouteOK          = "ok"
	RouteUnknown     = "unknown_location"
	RouteNoPath      = "no_route"
	RouteInvalid     = "invalid"
	RouteFailed      = "error"
	routeNotAttached = ""
)

var (
	QueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aisle_queries_total",
		Help: "Queries answered, by intent and provider",
	}, []string{"intent", "provider"})

	FallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aisle_fallbacks_total",
		Help: "Replies produced by a fallback provider, by reason",
	}, []string{"reason"})

	LLMRequestSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aisle_llm_request_seconds",
		Help:    "LLM request latency by outcome",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	// LLMBreakerState is 0 closed, 1 half-open, 2 open.
	LLMBreakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "aisle_llm_breaker_state",
		Help: "LLM circuit breaker state (0 closed, 1 half-open, 2 open)",
	})

	RoutePlansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aisle_route_plans_total",
		Help: "Route plans attempted, by result",
	}, []string{"result"})

	CatalogReloadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aisle_catalog_reloads_total",
		Help: "Catalog snapshot reloads from the repository",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aisle_http_requests_total",
		Help: "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})
)

// ObserveReply records a finished assistant reply.
func ObserveReply(reply domain.Reply) {
	QueriesTotal.WithLabelValues(reply.Intent.String(), reply.Provider).Inc()
	if reply.FallbackReason != "" {
		FallbacksTotal.WithLabelValues(reply.FallbackReason).Inc()
	}
	if !reply.WantsRoute {
		return
	}
	switch {
	case reply.Route != nil:
		RoutePlansTotal.WithLabelValues(RouteOK).Inc()
	case reply.RouteError != routeNotAttached:
		RoutePlansTotal.WithLabelValues(RouteFailed).Inc()
	}
}

// ObserveRoute records a standalone route request.
func ObserveRoute(err error) {
	RoutePlansTotal.WithLabelValues(RouteResult(err)).Inc()
}

// RouteResult maps a planning error to its metric label.
func RouteResult(err error) string {
	switch {
	case err == nil:
		return RouteOK
	case errors.Is(err, domain.ErrUnknownLocation):
		return RouteUnknown
	case errors.Is(err, domain.ErrNoRouteFound):
		return RouteNoPath
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrNotFound):
		return RouteInvalid
	default:
		return RouteFailed
	}
}
