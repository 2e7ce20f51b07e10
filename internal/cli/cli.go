package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/planweave/planweave/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("planweave", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
Planweave - a bidirectional bridge between pipeline modules and graph payloads.

Usage:
  planweave <mode> [options] [INPUT]

Modes:
  analyze      Parse a pipeline module and print its graph payload as JSON.
  synthesize   Read a graph payload (JSON) and print regenerated source.
  verify       Round-trip a pipeline module and report equivalence.

Arguments:
  INPUT
    Path to the input file. '-' or no argument reads standard input.

Options:
`)
		flagSet.PrintDefaults()
	}

	// Flag defaults may be seeded from PLANWEAVE_* variables, typically
	// loaded from .env at startup. Explicit flags still win.
	outFlag := flagSet.String("o", "", "Write output to this file instead of stdout.")
	moduleNameFlag := flagSet.String("module-name", "", "Module name carried into payloads and generated source. Defaults to the input file name.")
	manifestsFlag := flagSet.String("manifests", envOr("PLANWEAVE_MANIFESTS", ""), "Comma-separated extra manifest directories merged over the built-in tables.")
	logFormatFlag := flagSet.String("log-format", envOr("PLANWEAVE_LOG_FORMAT", "text"), "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", envOr("PLANWEAVE_LOG_LEVEL", "info"), "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if len(args) == 0 {
		flagSet.Usage()
		return nil, true, nil
	}
	mode := args[0]
	switch mode {
	case "help", "-h", "--help":
		flagSet.Usage()
		return nil, true, nil
	case app.ModeAnalyze, app.ModeSynthesize, app.ModeVerify:
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unknown mode %q: expected 'analyze', 'synthesize' or 'verify'", mode)}
	}

	if err := flagSet.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.", "mode", mode)

	input := "-"
	if flagSet.NArg() > 0 {
		input = flagSet.Arg(0)
	}
	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: 2, Message: "expected at most one input path"}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	var manifestDirs []string
	for _, dir := range strings.Split(*manifestsFlag, ",") {
		if dir = strings.TrimSpace(dir); dir != "" {
			manifestDirs = append(manifestDirs, dir)
		}
	}

	config, err := app.NewConfig(app.Config{
		Mode:         mode,
		InputPath:    input,
		OutputPath:   *outFlag,
		ModuleName:   *moduleNameFlag,
		ManifestDirs: manifestDirs,
		LogFormat:    logFormat,
		LogLevel:     logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

// envOr returns the environment value for key, or fallback when it is
// unset or blank. Only flag defaults are seeded this way, so an explicit
// flag always wins over the environment.
func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
