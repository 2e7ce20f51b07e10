package runproto

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/planweave/planweave/internal/pyast"
)

// Stdout delimiters of the structured outcome blocks.
const (
	ErrorStartMarker   = "##ERROR_JSON_START##"
	ErrorEndMarker     = "##ERROR_JSON_END##"
	SuccessStartMarker = "##SUCCESS_JSON_START##"
	SuccessEndMarker   = "##SUCCESS_JSON_END##"
)

// RunError describes a failure reported by a generated module.
type RunError struct {
	Message       string `json:"message"`
	NodeName      string `json:"nodeName,omitempty"`
	FullTraceback string `json:"fullTraceback,omitempty"`
}

// Outcome is the decoded payload of one marker block.
type Outcome struct {
	Success bool      `json:"success"`
	Message string    `json:"message,omitempty"`
	Error   *RunError `json:"error,omitempty"`
}

// Scan reads r line by line and decodes the first complete marker block.
// Text outside blocks is ignored. A start marker without its closing
// marker is a scan error; a stream without any block returns (nil, nil).
func Scan(r io.Reader) (*Outcome, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var (
		collecting bool
		endMarker  string
		payload    []string
	)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !collecting {
			switch line {
			case ErrorStartMarker:
				collecting, endMarker, payload = true, ErrorEndMarker, nil
			case SuccessStartMarker:
				collecting, endMarker, payload = true, SuccessEndMarker, nil
			}
			continue
		}
		if line == endMarker {
			return decodeOutcome(strings.Join(payload, "\n"))
		}
		payload = append(payload, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning run output: %w", err)
	}
	if collecting {
		return nil, fmt.Errorf("marker block opened but never closed (missing %s)", endMarker)
	}
	return nil, nil
}

func decodeOutcome(payload string) (*Outcome, error) {
	var out Outcome
	if err := json.Unmarshal([]byte(strings.TrimSpace(payload)), &out); err != nil {
		return nil, fmt.Errorf("decoding outcome payload: %w", err)
	}
	return &out, nil
}

// PyFailureLines returns the generated-code statements that print a
// failure block and exit. The caller embeds them in an except handler
// that binds the exception as `e`; nodeName is empty for whole-run
// failures.
func PyFailureLines(nodeName string) []string {
	node := "None"
	if nodeName != "" {
		node = pyast.Quote(nodeName)
	}
	return []string{
		"print(" + pyast.Quote(ErrorStartMarker) + ")",
		`print(json.dumps({"success": False, "error": {"message": str(e), "nodeName": ` + node + `, "fullTraceback": traceback.format_exc()}}))`,
		"print(" + pyast.Quote(ErrorEndMarker) + ")",
		"sys.exit(1)",
	}
}

// PySuccessLines returns the generated-code statements that print a
// success block.
func PySuccessLines(message string) []string {
	return []string{
		"print(" + pyast.Quote(SuccessStartMarker) + ")",
		`print(json.dumps({"success": True, "message": ` + pyast.Quote(message) + `}))`,
		"print(" + pyast.Quote(SuccessEndMarker) + ")",
	}
}
