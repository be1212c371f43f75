// Command aisle is the in-store shopping assistant.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/custodia-labs/aisle/internal/adapters/driven/ai"
	"github.com/custodia-labs/aisle/internal/adapters/driven/config/file"
	"github.com/custodia-labs/aisle/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/aisle/internal/adapters/driving/cli"
	"github.com/custodia-labs/aisle/internal/config"
	"github.com/custodia-labs/aisle/internal/core/services"
	"github.com/custodia-labs/aisle/internal/logger"
)

func main() {
	cli.SetBuilder(build)
	if err := cli.Execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// build wires storage, AI adapters and services from configuration.
func build(ctx context.Context, opts cli.Options) (*cli.App, error) {
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	if opts.DBPath != "" {
		cfg.Database.Path = opts.DBPath
	}

	app := &cli.App{
		Config:    cfg,
		Validator: ai.NewConfigValidator(),
	}

	store, err := sqlite.NewStore(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	app.OnClose(store.Close)
	logger.Debug("Database: %s", store.Path())

	catalog, err := services.NewCatalogService(ctx, store)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	aiResult := ai.Init(ctx, cfg.LLMSettings(), cfg.TranscriptionSettings())
	app.OnClose(func() error {
		aiResult.Close()
		return nil
	})
	app.Warnings = aiResult.Warnings

	planner := services.NewPlanner()
	assistant := services.NewAssistantService(
		catalog, planner, aiResult.LLMService, aiResult.Transcriber, cfg.AssistantConfig(),
	)

	prompts, err := file.NewPromptStore(cfg.Prompts.Dir)
	if err != nil {
		logger.Warn("custom prompts disabled: %v", err)
	} else {
		assistant.SetPromptStore(prompts)
		app.Watcher = file.NewPromptWatcher(prompts)
	}

	app.Catalog = catalog
	app.Assistant = assistant
	app.Routes = services.NewRouteService(catalog, planner)
	return app, nil
}
