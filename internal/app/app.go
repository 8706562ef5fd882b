// Package app wires the application together: logger, configuration
// loading, module registration, and the build-and-compile run.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/andncl/arbok-driver/internal/config"
	"github.com/andncl/arbok-driver/internal/ctxlog"
	"github.com/andncl/arbok-driver/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW   io.Writer
	cfg    *Config
	logger *slog.Logger
	reg    *registry.Registry
	model  *config.Model
}

// NewApp constructs the application. It returns a fully initialized App
// instance with its own isolated logger and registry. A failure to load
// configuration is a fatal startup error and panics; callers recover it
// at the process boundary.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := ctxlog.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, cfg.ConfigPath)
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Configuration loaded and translated into unified model.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All modules registered.",
		"sequence_types", reg.SequenceTypes(),
		"readout_methods", reg.ReadoutMethods(),
	)

	return &App{
		outW:   outW,
		cfg:    cfg,
		logger: logger,
		reg:    reg,
		model:  model,
	}
}

// Registry returns the application's registry. Primarily for testing.
func (a *App) Registry() *registry.Registry { return a.reg }
