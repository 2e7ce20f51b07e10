package integration_tests

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/planweave/planweave/internal/app"
	"github.com/planweave/planweave/internal/ir"
	"github.com/planweave/planweave/internal/testutil"
)

// writeAcmeManifests writes the extension manifest directory shared by this
// package: one extra factory plus two extra allowed modules.
func writeAcmeManifests(t *testing.T) string {
	t.Helper()
	return testutil.WriteFixtureTree(t, map[string]string{
		"acme.hcl": `
factory "make_extractor" {
  module             = "acme.flows"
  default_class_name = "Extractor"
  variant            = "llmtaskworker"
  input_types        = ["RawDoc"]
  output_types       = ["DocSummary"]
}

allow "acme.flows" {
  classes = ["make_extractor", "RawDoc", "DocSummary"]
}

allow "acme.types" {
  classes = ["Invoice"]
}
`,
	})
}

// analyzeWithManifests mirrors testutil.AnalyzeToGraph with extension
// manifest directories merged into the registry.
func analyzeWithManifests(t *testing.T, dirs []string, source string) (*testutil.HarnessResult, *ir.Graph) {
	t.Helper()

	appConfig := &app.Config{Mode: app.ModeAnalyze, InputPath: "-", ManifestDirs: dirs}
	result := testutil.RunTransducerTest(t, appConfig, source)
	if result.Err != nil {
		return result, nil
	}

	var payload ir.GraphPayload
	require.NoError(t, json.Unmarshal([]byte(result.Output), &payload),
		"analyze output is not a graph payload: %s", result.Output)
	graph, err := payload.Decode()
	require.NoError(t, err)
	return result, graph
}
