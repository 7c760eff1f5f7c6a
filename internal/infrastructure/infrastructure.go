// Package infrastructure provides core service initialization for application startup.
// It assembles the dependencies (logging, graph store, engine client, runner,
// palette, template catalog) that the editor system requires.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/JaimeStill/agentflow/internal/config"
	"github.com/JaimeStill/agentflow/internal/palette"
	"github.com/JaimeStill/agentflow/internal/runner"
	"github.com/JaimeStill/agentflow/internal/templates"
	"github.com/JaimeStill/agentflow/pkg/client"
	"github.com/JaimeStill/agentflow/pkg/lifecycle"
	"github.com/JaimeStill/agentflow/pkg/store"
)

// Infrastructure holds the core systems required by all domain modules.
// It provides a single point of initialization for lifecycle coordination,
// logging, the workflow graph, and engine access.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Store     *store.Store
	Engine    *client.Client
	Runner    *runner.Runner
	Palette   *palette.Palette
	Templates *templates.Catalog
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	return NewWithLogger(cfg, slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

// NewWithLogger creates an Infrastructure that logs through logger.
func NewWithLogger(cfg *config.Config, logger *slog.Logger) (*Infrastructure, error) {
	lc := lifecycle.New()

	st := store.New(
		store.WithLogger(logger),
		store.WithSubscriberBuffer(cfg.Editor.SubscriberBuffer),
		store.WithEdgeValidation(cfg.Editor.EdgeValidationEnabled()),
	)

	engine := client.New(&cfg.Engine, client.WithLogger(logger))

	run := runner.New(st, engine, cfg.Runner, runner.WithLogger(logger))

	catalog, err := templates.Builtin()
	if err != nil {
		return nil, fmt.Errorf("templates init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Store:     st,
		Engine:    engine,
		Runner:    run,
		Palette:   palette.New(palette.WithSnapGrid(cfg.Editor.SnapGrid)),
		Templates: catalog,
	}, nil
}

// Start registers infrastructure hooks with the lifecycle coordinator.
// An unreachable engine is logged but does not block startup; runs report
// the failure when they are attempted.
func (i *Infrastructure) Start() error {
	logger := i.Logger.With("system", "infrastructure")

	i.Lifecycle.OnStartup(func() {
		status, err := i.Engine.HealthCheck(i.Lifecycle.Context())
		if err != nil {
			logger.Warn("engine unreachable", "url", i.Engine.BaseURL(), "error", err)
			return
		}
		logger.Info("engine reachable", "url", i.Engine.BaseURL(), "status", status.Status)
	})

	i.Lifecycle.OnShutdown(func() {
		<-i.Lifecycle.Context().Done()
		if i.Runner.Running() {
			logger.Info("cancelling active run")
			i.Runner.Reset()
		}
	})

	return nil
}
