package mcp

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil catalog service returns error", func(t *testing.T) {
		ports := &Ports{}
		server, err := NewServer(ports)
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingCatalogService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		ports := &Ports{
			Catalog: &mockCatalogService{},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("nil catalog service returns error", func(t *testing.T) {
		ports := &Ports{Routes: &mockRouteService{}}
		err := ports.Validate()
		assert.ErrorIs(t, err, ErrMissingCatalogService)
	})

	t.Run("catalog only is valid", func(t *testing.T) {
		ports := &Ports{
			Catalog: &mockCatalogService{},
		}
		err := ports.Validate()
		assert.NoError(t, err)
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Catalog:   &mockCatalogService{},
			Routes:    &mockRouteService{},
			Assistant: &mockAssistantService{},
		}
		err := ports.Validate()
		assert.NoError(t, err)
	})
}

func TestServer_Instructions(t *testing.T) {
	t.Run("catalog only", func(t *testing.T) {
		s, err := NewServer(&Ports{Catalog: &mockCatalogService{}})
		require.NoError(t, err)

		got := s.instructions()
		assert.Contains(t, got, "find_product")
		assert.NotContains(t, got, "plan_route")
		assert.NotContains(t, got, "Call ask")
	})

	t.Run("all ports", func(t *testing.T) {
		s, err := NewServer(&Ports{
			Catalog:   &mockCatalogService{},
			Routes:    &mockRouteService{},
			Assistant: &mockAssistantService{},
		})
		require.NoError(t, err)

		got := s.instructions()
		assert.Contains(t, got, "plan_route")
		assert.Contains(t, got, "Call ask")
		assert.Contains(t, got, "aisle://layout")
	})
}

func TestServer_RunHTTP(t *testing.T) {
	s, err := NewServer(&Ports{Catalog: &mockCatalogService{}})
	require.NoError(t, err)

	t.Run("stops on cancel", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- s.serveHTTP(ctx, ln)
		}()

		cancel()
		assert.NoError(t, <-done)
	})

	t.Run("bind failure", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer ln.Close()

		err = s.RunHTTP(context.Background(), ln.Addr().String())
		assert.ErrorContains(t, err, "mcp listen")
	})
}
