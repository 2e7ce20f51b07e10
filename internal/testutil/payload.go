package testutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/planweave/planweave/internal/app"
	"github.com/planweave/planweave/internal/ir"
)

// AnalyzeToGraph provides a simplified harness for analyzing a single
// pipeline source string. It wraps the main integration test harness,
// runs the analyze mode, and decodes the emitted payload back into a
// graph so tests can assert on typed entities.
func AnalyzeToGraph(t *testing.T, source string) (*HarnessResult, *ir.Graph) {
	t.Helper()

	appConfig := &app.Config{Mode: app.ModeAnalyze, InputPath: "-"}
	result := RunTransducerTest(t, appConfig, source)
	if result.Err != nil {
		return result, nil
	}

	var payload ir.GraphPayload
	require.NoError(t, json.Unmarshal([]byte(result.Output), &payload),
		"analyze output is not a graph payload: %s", result.Output)
	graph, err := payload.Decode()
	require.NoError(t, err, "emitted payload does not decode")
	return result, graph
}

// SynthesizeFromPayload provides a simplified harness for rendering a
// payload through the synthesize mode. The payload is marshaled and fed
// to the app as stdin, mirroring how an editor would call the binary.
func SynthesizeFromPayload(t *testing.T, payload *ir.GraphPayload) *HarnessResult {
	t.Helper()

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	appConfig := &app.Config{Mode: app.ModeSynthesize, InputPath: "-"}
	return RunTransducerTest(t, appConfig, string(data))
}
