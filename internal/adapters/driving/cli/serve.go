package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/aisle/internal/adapters/driving/api"
	"github.com/custodia-labs/aisle/internal/adapters/driving/mcp"
	"github.com/custodia-labs/aisle/internal/logger"
)

var (
	servePort    int
	serveMCPPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Starts the REST API and, when [mcp] port is set, an MCP server over
streamable HTTP. Prompt files are reloaded on change when [prompts] watch
is enabled. Stops cleanly on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "HTTP port (default from [server] port)")
	serveCmd.Flags().IntVar(&serveMCPPort, "mcp-port", 0, "also serve MCP over HTTP on this port")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return serve(ctx, cmd)
}

func serve(ctx context.Context, cmd *cobra.Command) error {
	cfg := app.Config
	for _, w := range app.Warnings {
		cmd.PrintErrf("warning: %s\n", w)
	}

	port := cfg.Server.Port
	if servePort > 0 {
		port = servePort
	}
	mcpPort := cfg.MCP.Port
	if serveMCPPort > 0 {
		mcpPort = serveMCPPort
	}

	srv := api.NewServer(api.Services{
		Catalog:   app.Catalog,
		Assistant: app.Assistant,
		Routes:    app.Routes,
	}, api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		BodyLimit:      cfg.Server.BodyLimit,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		SearchLimit:    cfg.Search.Limit,
		SearchMinScore: cfg.Search.MinScore,
	}, logger.Zap())

	var mcpServer *mcp.Server
	if mcpPort > 0 {
		var err error
		if mcpServer, err = newMCPServer(); err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(port))
	cmd.Printf("Serving on http://%s (responses by %s)\n", addr, app.Assistant.ProviderName())
	g.Go(func() error {
		return srv.Run(ctx, addr)
	})

	if mcpServer != nil {
		mcpAddr := fmt.Sprintf(":%d", mcpPort)
		cmd.Printf("MCP server listening on http://localhost%s\n", mcpAddr)
		g.Go(func() error {
			return mcpServer.RunHTTP(ctx, mcpAddr)
		})
	}

	if cfg.Prompts.Watch && app.Watcher != nil {
		g.Go(func() error {
			return app.Watcher.Run(ctx)
		})
	}

	return g.Wait()
}

func newMCPServer() (*mcp.Server, error) {
	return mcp.NewServer(&mcp.Ports{
		Catalog:   app.Catalog,
		Routes:    app.Routes,
		Assistant: app.Assistant,
	})
}
