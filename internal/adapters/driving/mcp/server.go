package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/custodia-labs/aisle/internal/logger"
)

// Version is the MCP server version.
const Version = "0.1.0"

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Server exposes the shopping assistant to MCP clients: product lookup,
// route planning and free-text questions, plus the layout and catalog as
// resources.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer registers the tools the ports support. Catalog is required;
// plan_route and ask are only offered when Routes and Assistant are set.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{ports: ports}
	s.server = mcp.NewServer(
		&mcp.Implementation{Name: "aisle", Version: Version},
		&mcp.ServerOptions{Instructions: s.instructions()},
	)

	s.registerTools()
	s.registerResources()
	return s, nil
}

// instructions tells the client which tools this store offers.
func (s *Server) instructions() string {
	lines := []string{
		"Helps shoppers find products in a single store and walk to them.",
		"Call find_product with what the shopper named to get aisle and shelf locations.",
	}
	if s.ports.Routes != nil {
		lines = append(lines, "Call plan_route with product IDs from find_product for walking directions from the entrance.")
	}
	if s.ports.Assistant != nil {
		lines = append(lines, "Call ask to pass a shopper's question through unchanged.")
	}
	lines = append(lines, "Read aisle://layout for the floor plan and aisle://products for the full catalog.")
	return strings.Join(lines, "\n")
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves streamable HTTP on addr until ctx is cancelled. A bind
// failure is returned before anything is served.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("mcp listen %s: %w", addr, err)
	}
	return s.serveHTTP(ctx, ln)
}

func (s *Server) serveHTTP(ctx context.Context, ln net.Listener) error {
	log := logger.Zap().With(zap.String("addr", ln.Addr().String()))

	httpServer := &http.Server{
		Handler: mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
			return s.server
		}, nil),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()
	log.Debug("mcp http serving")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := httpServer.Shutdown(shutdownCtx)
	if serveErr := <-errCh; serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) && err == nil {
		err = serveErr
	}
	log.Debug("mcp http stopped")
	return err
}
