package runproto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanErrorBlock(t *testing.T) {
	stdout := strings.Join([]string{
		"loading workers...",
		"##ERROR_JSON_START##",
		`{"success": false, "error": {"message": "boom", "nodeName": "Drafter", "fullTraceback": "Traceback (most recent call last):\n..."}}`,
		"##ERROR_JSON_END##",
		"",
	}, "\n")

	outcome, err := Scan(strings.NewReader(stdout))
	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.False(t, outcome.Success)
	require.NotNil(t, outcome.Error)
	assert.Equal(t, "boom", outcome.Error.Message)
	assert.Equal(t, "Drafter", outcome.Error.NodeName)
	assert.Contains(t, outcome.Error.FullTraceback, "Traceback")
}

func TestScanSuccessBlock(t *testing.T) {
	stdout := strings.Join([]string{
		"progress: 1/3",
		"progress: 2/3",
		"  ##SUCCESS_JSON_START##  ",
		`{"success": true, "message": "Graph executed successfully."}`,
		"##SUCCESS_JSON_END##",
		"trailing chatter",
	}, "\n")

	outcome, err := Scan(strings.NewReader(stdout))
	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.True(t, outcome.Success)
	assert.Equal(t, "Graph executed successfully.", outcome.Message)
	assert.Nil(t, outcome.Error)
}

func TestScanFirstCompleteBlockWins(t *testing.T) {
	stdout := strings.Join([]string{
		"##ERROR_JSON_START##",
		`{"success": false, "error": {"message": "first"}}`,
		"##ERROR_JSON_END##",
		"##SUCCESS_JSON_START##",
		`{"success": true, "message": "second"}`,
		"##SUCCESS_JSON_END##",
	}, "\n")

	outcome, err := Scan(strings.NewReader(stdout))
	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.False(t, outcome.Success)
	assert.Equal(t, "first", outcome.Error.Message)
}

func TestScanEdgeCases(t *testing.T) {
	testCases := []struct {
		name      string
		stdout    string
		expectErr bool
		expectNil bool
	}{
		{
			name:      "no markers at all",
			stdout:    "plain output\nmore output\n",
			expectNil: true,
		},
		{
			name:      "start without close",
			stdout:    "##ERROR_JSON_START##\n{\"success\": false}\n",
			expectErr: true,
		},
		{
			name:      "marker embedded in a longer line is ignored",
			stdout:    "prefix ##SUCCESS_JSON_START## suffix\n",
			expectNil: true,
		},
		{
			name:      "invalid payload",
			stdout:    "##SUCCESS_JSON_START##\nnot json\n##SUCCESS_JSON_END##\n",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			outcome, err := Scan(strings.NewReader(tc.stdout))
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tc.expectNil {
				assert.Nil(t, outcome)
			}
		})
	}
}

func TestPyTemplates(t *testing.T) {
	failure := strings.Join(PyFailureLines("Drafter"), "\n")
	assert.Contains(t, failure, `print("##ERROR_JSON_START##")`)
	assert.Contains(t, failure, `"nodeName": "Drafter"`)
	assert.Contains(t, failure, "traceback.format_exc()")
	assert.Contains(t, failure, "sys.exit(1)")

	anonymous := strings.Join(PyFailureLines(""), "\n")
	assert.Contains(t, anonymous, `"nodeName": None`)

	success := strings.Join(PySuccessLines("Graph executed successfully."), "\n")
	assert.Contains(t, success, `print("##SUCCESS_JSON_START##")`)
	assert.Contains(t, success, `"message": "Graph executed successfully."`)
}
