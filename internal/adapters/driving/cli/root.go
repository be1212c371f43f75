// Package cli provides the aisle command line.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/aisle/internal/config"
	"github.com/custodia-labs/aisle/internal/core/ports/driven"
	"github.com/custodia-labs/aisle/internal/core/ports/driving"
	"github.com/custodia-labs/aisle/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=v1.2.3".
var version = "dev"

// skipApp marks commands that run without the catalog and AI services.
const skipApp = "skip-app"

// Options are the persistent flags passed to the Builder.
type Options struct {
	ConfigFile string
	DBPath     string
	Verbose    bool
}

// Runner is a background task run by serve, such as the prompt watcher.
type Runner interface {
	Run(ctx context.Context) error
}

// App holds the wired services the commands use.
type App struct {
	Config    *config.Config
	Catalog   driving.CatalogService
	Assistant driving.AssistantService
	Routes    driving.RouteService

	// Validator checks AI provider settings for doctor.
	Validator driven.AIConfigValidator

	// Watcher reloads prompt files while serving. May be nil.
	Watcher Runner

	// Warnings are non-fatal start-up problems, such as an unreachable LLM.
	Warnings []string

	closers []func() error
}

// OnClose registers fn to run when the app shuts down. Closers run in
// reverse order of registration.
func (a *App) OnClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

// Close releases everything registered with OnClose.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Builder wires an App from the persistent flags.
type Builder func(ctx context.Context, opts Options) (*App, error)

var (
	opts    Options
	builder Builder
	app     *App
)

var rootCmd = &cobra.Command{
	Use:   "aisle",
	Short: "In-store shopping assistant",
	Long: `aisle answers shoppers' questions about where products are and
plans walking routes through the store.

Run "aisle seed" to load the sample store, then "aisle serve" to start the
HTTP API, or ask directly:

  aisle ask "where is the milk?"
  aisle route milk bread`,
	SilenceUsage:      true,
	PersistentPreRunE: prepareApp,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default: ./aisle.toml or ~/.aisle/aisle.toml)")
	rootCmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "SQLite database path (overrides [database] path)")
	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "enable verbose logging")
}

// SetBuilder sets the function that wires services before a command runs.
func SetBuilder(b Builder) {
	builder = b
}

// Execute runs the root command and releases the app afterwards.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if app != nil {
		if cerr := app.Close(); cerr != nil && err == nil {
			err = cerr
		}
		app = nil
	}
	return err
}

func prepareApp(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(opts.Verbose)
	if cmd.Annotations[skipApp] == "true" || app != nil {
		return nil
	}
	if builder == nil {
		return errors.New("services not configured")
	}

	a, err := builder(cmd.Context(), opts)
	if err != nil {
		return err
	}
	app = a
	return nil
}
