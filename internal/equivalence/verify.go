package equivalence

import (
	"context"
	"fmt"

	"github.com/planweave/planweave/internal/analyzer"
	"github.com/planweave/planweave/internal/ctxlog"
	"github.com/planweave/planweave/internal/ir"
	"github.com/planweave/planweave/internal/registry"
	"github.com/planweave/planweave/internal/synthesizer"
)

// RoundTrip is the full verification artifact: the comparison report, the
// regenerated source and the two graphs behind the report.
type RoundTrip struct {
	Report
	Source   string
	Original *ir.Graph
	Reparsed *ir.Graph
}

// VerifyRoundTrip analyzes src, synthesizes the resulting graph back into
// source, re-analyzes that and compares the two graphs. A fault in any
// stage aborts the verification with that fault.
func VerifyRoundTrip(ctx context.Context, reg *registry.Registry, src []byte, moduleName string) (*RoundTrip, error) {
	logger := ctxlog.FromContext(ctx)

	original, err := analyzer.AnalyzeSource(ctx, reg, src, moduleName)
	if err != nil {
		return nil, err
	}
	payload, err := original.Payload()
	if err != nil {
		return nil, err
	}
	result, err := synthesizer.Synthesize(ctx, reg, payload)
	if err != nil {
		return nil, err
	}
	reparsed, err := analyzer.AnalyzeSource(ctx, reg, []byte(result.Source), moduleName)
	if err != nil {
		return nil, fmt.Errorf("re-analyzing generated source: %w", err)
	}

	rt := &RoundTrip{
		Report:   Compare(original, reparsed),
		Source:   result.Source,
		Original: original,
		Reparsed: reparsed,
	}
	logger.Debug("Round trip verified.",
		"module", moduleName,
		"equivalent", rt.Equivalent)
	return rt, nil
}
