package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/planweave/planweave/internal/analyzer"
	"github.com/planweave/planweave/internal/ctxlog"
	"github.com/planweave/planweave/internal/equivalence"
	"github.com/planweave/planweave/internal/ir"
	"github.com/planweave/planweave/internal/synthesizer"
)

// ErrNotEquivalent reports a verify run whose round trip drifted. The
// report JSON has already been written when this is returned.
var ErrNotEquivalent = errors.New("round trip is not equivalent")

// Run executes the selected transducer mode. Mode output goes to the
// configured destination even when the mode fails, so fault descriptors
// reach the caller as JSON.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "mode", appConfig.Mode)

	input, moduleName, err := a.readInput(appConfig)
	if err != nil {
		return err
	}

	var output string
	switch appConfig.Mode {
	case ModeAnalyze:
		output, err = a.analyze(ctx, input, moduleName)
	case ModeSynthesize:
		output, err = a.synthesize(ctx, input, appConfig.ModuleName)
	case ModeVerify:
		output, err = a.verify(ctx, input, moduleName)
	default:
		return fmt.Errorf("unknown mode %q", appConfig.Mode)
	}

	if output != "" {
		if werr := a.writeOutput(appConfig.OutputPath, output); werr != nil {
			return werr
		}
	}
	a.logger.Debug("App.Run method finished.", "mode", appConfig.Mode, "failed", err != nil)
	return err
}

func (a *App) analyze(ctx context.Context, src []byte, moduleName string) (string, error) {
	graph, err := analyzer.AnalyzeSource(ctx, a.registry, src, moduleName)
	if err != nil {
		return faultJSON(err), err
	}
	payload, err := graph.Payload()
	if err != nil {
		return faultJSON(err), err
	}
	text, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding payload: %w", err)
	}
	return string(text) + "\n", nil
}

func (a *App) synthesize(ctx context.Context, input []byte, moduleName string) (string, error) {
	var payload ir.GraphPayload
	if err := json.Unmarshal(input, &payload); err != nil {
		fault := ir.NewFault(ir.FaultPayload, "decoding payload JSON: %v", err)
		return faultJSON(fault), fault
	}
	if moduleName != "" {
		payload.ModuleName = moduleName
	}
	result, err := synthesizer.Synthesize(ctx, a.registry, &payload)
	if err != nil {
		return faultJSON(err), err
	}
	return result.Source, nil
}

func (a *App) verify(ctx context.Context, src []byte, moduleName string) (string, error) {
	rt, err := equivalence.VerifyRoundTrip(ctx, a.registry, src, moduleName)
	if err != nil {
		return faultJSON(err), err
	}
	report := struct {
		Equivalent bool   `json:"equivalent"`
		Diff       string `json:"diff,omitempty"`
	}{Equivalent: rt.Equivalent, Diff: rt.Diff}
	text, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}
	if !rt.Equivalent {
		return string(text) + "\n", ErrNotEquivalent
	}
	return string(text) + "\n", nil
}

// readInput loads the mode input and derives the module name from the
// file name unless the configuration overrides it.
func (a *App) readInput(appConfig *Config) ([]byte, string, error) {
	if appConfig.InputPath == "" || appConfig.InputPath == "-" {
		data, err := io.ReadAll(a.inR)
		if err != nil {
			return nil, "", fmt.Errorf("reading stdin: %w", err)
		}
		name := appConfig.ModuleName
		if name == "" {
			name = "stdin"
		}
		return data, name, nil
	}
	data, err := os.ReadFile(appConfig.InputPath)
	if err != nil {
		return nil, "", fmt.Errorf("reading input: %w", err)
	}
	name := appConfig.ModuleName
	if name == "" {
		base := filepath.Base(appConfig.InputPath)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return data, name, nil
}

func (a *App) writeOutput(path, text string) error {
	if path == "" {
		_, err := io.WriteString(a.outW, text)
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	a.logger.Debug("Output written.", "path", path, "bytes", len(text))
	return nil
}

// faultJSON renders an error as the editor-facing fault envelope.
func faultJSON(err error) string {
	var envelope struct {
		Error any `json:"error"`
	}
	if fault, ok := ir.AsFault(err); ok {
		envelope.Error = fault
	} else {
		envelope.Error = map[string]string{"message": err.Error()}
	}
	text, merr := json.MarshalIndent(&envelope, "", "  ")
	if merr != nil {
		return ""
	}
	return string(text) + "\n"
}
