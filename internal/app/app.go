package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/planweave/planweave/internal/ctxlog"
	"github.com/planweave/planweave/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	inR      io.Reader
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
func NewApp(inR io.Reader, outW io.Writer, logW io.Writer, appConfig *Config) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg, err := registry.Load(ctx, appConfig.ManifestDirs...)
	if err != nil {
		// A failure to load the framework tables is a fatal startup error.
		panic(fmt.Errorf("failed to load registry manifests: %w", err))
	}
	logger.Debug("Registry manifests loaded.",
		"factories", len(reg.Factories()),
		"allowed_modules", len(reg.AllowedModules()))

	return &App{
		inR:      inR,
		outW:     outW,
		logger:   logger,
		registry: reg,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}
