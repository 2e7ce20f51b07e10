package testutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/planweave/planweave/internal/ir"
)

// AssertFaultKind checks that a failed run wrote a fault envelope of the
// expected kind to the output stream and returns the decoded fault for
// further inspection.
func AssertFaultKind(t *testing.T, result *HarnessResult, kind ir.FaultKind) *ir.Fault {
	t.Helper()

	require.Error(t, result.Err, "expected the run to fail, but it succeeded")

	var envelope struct {
		Error *ir.Fault `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(result.Output), &envelope),
		"output is not a fault envelope: %s", result.Output)
	require.NotNil(t, envelope.Error, "fault envelope has no error field")
	require.Equal(t, kind, envelope.Error.Kind,
		"fault kind mismatch: %s", envelope.Error.Message)
	return envelope.Error
}

// AssertEquivalent checks that a verify run succeeded and reported an
// equivalent round trip. The diff is included in the failure message so a
// drifting property is visible directly in the test output.
func AssertEquivalent(t *testing.T, result *HarnessResult) {
	t.Helper()

	require.NoError(t, result.Err, "verify run failed")

	var report struct {
		Equivalent bool   `json:"equivalent"`
		Diff       string `json:"diff"`
	}
	require.NoError(t, json.Unmarshal([]byte(result.Output), &report),
		"output is not a verify report: %s", result.Output)
	require.True(t, report.Equivalent, "round trip drifted:\n%s", report.Diff)
}
