package app

import (
	"io"
	"log/slog"
	"strings"
)

// logLevels maps the accepted -log-level values. Unknown values fall back
// to info; the CLI rejects bad input before it reaches here, so the
// fallback only matters for programmatic Config construction.
var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// newLogger builds the app's isolated logger on the diagnostic writer.
// It never touches the process-global logger, so concurrent apps and
// tests keep separate streams.
func newLogger(levelStr, formatStr string, logW io.Writer) *slog.Logger {
	level, ok := logLevels[strings.ToLower(levelStr)]
	if !ok {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if formatStr == "json" {
		return slog.New(slog.NewJSONHandler(logW, opts))
	}
	return slog.New(slog.NewTextHandler(logW, opts))
}
