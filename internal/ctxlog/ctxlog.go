// Package ctxlog carries a scoped slog.Logger through context.Context.
// Every App owns its own logger, so packages below the app layer pull
// theirs from the context instead of the process-global default.
package ctxlog

import (
	"context"
	"log/slog"
)

// ctxKey is unexported so no other package can collide with our entry.
type ctxKey struct{}

// WithLogger derives a context carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger stored by WithLogger. Contexts without
// one fall back to slog.Default(), which keeps the analysis packages
// usable from code that never went through an App.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
