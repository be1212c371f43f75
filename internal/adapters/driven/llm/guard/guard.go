// Package guard decorates an LLM service with a circuit breaker and a
// rate limiter so a failing or saturated model is skipped immediately.
package guard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/aisle/internal/core/domain"
	"github.com/custodia-labs/aisle/internal/core/ports/driven"
	"github.com/custodia-labs/aisle/internal/logger"
	"github.com/custodia-labs/aisle/internal/metrics"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultFailures = 3
	DefaultCooldown = 30 * time.Second
)

// Request outcomes recorded in aisle_llm_request_seconds.
const (
	outcomeOK      = "ok"
	outcomeError   = "error"
	outcomeTimeout = "timeout"
	outcomeOpen    = "open"
	outcomeLimited = "limited"
)

// ErrRateLimited is returned when a request exceeds the configured rate.
var ErrRateLimited = errors.New("rate limited")

// Config configures the guard.
type Config struct {
	// Failures is the number of consecutive failures that opens the circuit.
	Failures uint32

	// Cooldown is how long the circuit stays open before a trial request.
	Cooldown time.Duration

	// RatePerSecond limits outgoing requests. Zero disables limiting.
	RatePerSecond float64

	// Burst is the limiter bucket size (default: 1 when limiting).
	Burst int
}

// LLMService wraps another LLMService.
type LLMService struct {
	next    driven.LLMService
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

// New wraps next with a circuit breaker and an optional rate limiter.
func New(next driven.LLMService, cfg Config) *LLMService {
	if cfg.Failures == 0 {
		cfg.Failures = DefaultFailures
	}
	if cfg.Cooldown == 0 {
		cfg.Cooldown = DefaultCooldown
	}

	g := &LLMService{next: next}
	g.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "llm-" + next.ModelName(),
		MaxRequests: 1,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.Failures
		},
		IsSuccessful: func(err error) bool {
			// A caller giving up is not the model's fault.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			metrics.LLMBreakerState.Set(stateValue(to))
			logger.Zap().Warn("LLM circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}
	return g
}

// Generate produces text completion from a prompt.
func (g *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	return g.call(ctx, func() (string, error) {
		return g.next.Generate(ctx, prompt, opts)
	})
}

// Chat conducts a multi-turn conversation.
func (g *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	return g.call(ctx, func() (string, error) {
		return g.next.Chat(ctx, messages, opts)
	})
}

// call runs fn through the limiter and breaker. Over-limit requests fail
// at once rather than wait.
func (g *LLMService) call(ctx context.Context, fn func() (string, error)) (string, error) {
	if g.limiter != nil && !g.limiter.Allow() {
		metrics.LLMRequestSeconds.WithLabelValues(outcomeLimited).Observe(0)
		return "", fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, ErrRateLimited)
	}

	start := time.Now()
	out, err := g.breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	elapsed := time.Since(start).Seconds()

	if err != nil {
		metrics.LLMRequestSeconds.WithLabelValues(outcome(ctx, err)).Observe(elapsed)
		if errors.Is(err, domain.ErrUpstreamUnavailable) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
	}
	metrics.LLMRequestSeconds.WithLabelValues(outcomeOK).Observe(elapsed)

	text, _ := out.(string)
	return text, nil
}

// ModelName returns the wrapped model name.
func (g *LLMService) ModelName() string {
	return g.next.ModelName()
}

// Ping bypasses the breaker so startup validation sees the real error.
func (g *LLMService) Ping(ctx context.Context) error {
	return g.next.Ping(ctx)
}

// Close closes the wrapped service.
func (g *LLMService) Close() error {
	return g.next.Close()
}

// State returns the current breaker state.
func (g *LLMService) State() gobreaker.State {
	return g.breaker.State()
}

func outcome(ctx context.Context, err error) string {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return outcomeOpen
	case errors.Is(err, context.DeadlineExceeded), ctx.Err() != nil:
		return outcomeTimeout
	default:
		return outcomeError
	}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
