package guard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/aisle/internal/core/domain"
	"github.com/custodia-labs/aisle/internal/core/ports/driven"
)

// mockLLM is a scripted LLM service.
type mockLLM struct {
	err   error
	calls int
	pings int
}

func (m *mockLLM) Generate(_ context.Context, _ string, _ driven.GenerateOptions) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return "generated", nil
}

func (m *mockLLM) Chat(_ context.Context, _ []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return "chatted", nil
}

func (m *mockLLM) ModelName() string { return "mock" }

func (m *mockLLM) Ping(_ context.Context) error {
	m.pings++
	return m.err
}

func (m *mockLLM) Close() error { return nil }

func TestGuard_PassesThrough(t *testing.T) {
	next := &mockLLM{}
	g := New(next, Config{})

	out, err := g.Chat(context.Background(), nil, driven.ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "chatted", out)

	out, err = g.Generate(context.Background(), "p", driven.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "generated", out)
	assert.Equal(t, "mock", g.ModelName())
}

func TestGuard_WrapsErrors(t *testing.T) {
	boom := errors.New("boom")
	g := New(&mockLLM{err: boom}, Config{})

	_, err := g.Chat(context.Background(), nil, driven.ChatOptions{})
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, boom)
}

func TestGuard_OpensAfterConsecutiveFailures(t *testing.T) {
	next := &mockLLM{err: errors.New("refused")}
	g := New(next, Config{Failures: 2, Cooldown: time.Hour})

	for range 2 {
		_, err := g.Chat(context.Background(), nil, driven.ChatOptions{})
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, g.State())

	_, err := g.Chat(context.Background(), nil, driven.ChatOptions{})
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, next.calls, "open circuit must not reach the model")
}

func TestGuard_CancelledCallerDoesNotTrip(t *testing.T) {
	next := &mockLLM{err: context.Canceled}
	g := New(next, Config{Failures: 1, Cooldown: time.Hour})

	for range 3 {
		_, _ = g.Chat(context.Background(), nil, driven.ChatOptions{})
	}
	assert.Equal(t, gobreaker.StateClosed, g.State())
	assert.Equal(t, 3, next.calls)
}

func TestGuard_RateLimitFailsFast(t *testing.T) {
	next := &mockLLM{}
	g := New(next, Config{RatePerSecond: 0.001, Burst: 1})

	_, err := g.Chat(context.Background(), nil, driven.ChatOptions{})
	require.NoError(t, err)

	_, err = g.Chat(context.Background(), nil, driven.ChatOptions{})
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.Equal(t, 1, next.calls)
}

func TestGuard_PingBypassesBreaker(t *testing.T) {
	next := &mockLLM{err: errors.New("down")}
	g := New(next, Config{Failures: 1, Cooldown: time.Hour})

	_, _ = g.Chat(context.Background(), nil, driven.ChatOptions{})
	require.Equal(t, gobreaker.StateOpen, g.State())

	assert.Error(t, g.Ping(context.Background()))
	assert.Equal(t, 1, next.pings)
}
