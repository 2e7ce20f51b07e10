package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/planweave/planweave/internal/ir"
)

// frameworkImport pulls in every base class and helper a fixture class
// might inherit from, so test cases only write the class itself.
const frameworkImport = "from planai import (CachedLLMTaskWorker, CachedTaskWorker, ChatTaskWorker,\n" +
	"                    Graph, InitialTaskWorker, JoinedTaskWorker, LLMTaskWorker,\n" +
	"                    SubGraphWorker, Task, TaskWorker, llm_from_config)"

// WorkerTestCase defines a single scenario for testing the analysis of one
// worker class.
type WorkerTestCase struct {
	Name string
	// Base is the worker base class name; "TaskWorker" when empty.
	Base string
	// Body should contain only the statements *inside* the class block.
	// It can be written as a readable, indented multi-line string; the
	// harness re-indents it to the class level.
	Body string
	// Preamble holds extra module-level statements placed before the
	// class, such as task definitions the body refers to.
	Preamble string
	// ExpectErr should be true if an analysis fault is expected.
	ExpectErr bool
	// ErrContains is a substring that must appear in the error message if
	// ExpectErr is true.
	ErrContains string
	// Validate performs assertions on the analyzed worker. It is only
	// called if ExpectErr is false.
	Validate func(t *testing.T, w *ir.WorkerDef)
}

// unindent removes common leading whitespace from a multi-line string,
// allowing for readable, indented Python snippets in Go tests.
func unindent(s string) string {
	lines := strings.Split(s, "\n")
	if len(lines) == 0 {
		return ""
	}

	// Remove leading/trailing empty lines that are common with multi-line literals
	if strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}

	if len(lines) == 0 {
		return ""
	}

	// Find the minimum indentation of non-empty lines
	minIndent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := 0
		for _, r := range line {
			if r == ' ' || r == '\t' {
				indent++
			} else {
				break
			}
		}
		if minIndent == -1 || indent < minIndent {
			minIndent = indent
		}
	}

	if minIndent <= 0 {
		return strings.Join(lines, "\n")
	}

	// Strip the common indentation from each line
	var b strings.Builder
	for i, line := range lines {
		if len(line) >= minIndent {
			b.WriteString(line[minIndent:])
		} else {
			b.WriteString(strings.TrimSpace(line))
		}
		if i < len(lines)-1 {
			b.WriteRune('\n')
		}
	}
	return b.String()
}

// expandLeadingTabs rewrites leading tab runs as four-space indents, so
// snippets indented with Go-source tabs become plain-space Python.
func expandLeadingTabs(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		n := 0
		for n < len(line) && line[n] == '\t' {
			n++
		}
		if n > 0 {
			lines[i] = strings.Repeat("    ", n) + line[n:]
		}
	}
	return strings.Join(lines, "\n")
}

// reindent shifts every non-blank line of a column-zero block right by
// one class level.
func reindent(s string) string {
	lines := strings.Split(expandLeadingTabs(s), "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[i] = "    " + line
		}
	}
	return strings.Join(lines, "\n")
}

// RunWorkerParsingTests provides a reusable harness for testing the
// analysis of worker classes. It iterates through a table of test cases,
// handling module boilerplate and common assertions. The class under test
// is always named Probe.
func RunWorkerParsingTests(t *testing.T, cases []WorkerTestCase) {
	t.Helper()

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			base := tc.Base
			if base == "" {
				base = "TaskWorker"
			}
			body := reindent(unindent(tc.Body))
			if strings.TrimSpace(body) == "" {
				body = "    pass"
			}

			var source strings.Builder
			source.WriteString("from textwrap import dedent\n")
			source.WriteString("from typing import List, Literal, Optional\n\n")
			source.WriteString(frameworkImport + "\n")
			source.WriteString("from pydantic import Field\n\n\n")
			if pre := expandLeadingTabs(unindent(tc.Preamble)); pre != "" {
				source.WriteString(pre)
				source.WriteString("\n\n\n")
			}
			fmt.Fprintf(&source, "class Probe(%s):\n%s\n", base, body)

			result, graph := AnalyzeToGraph(t, source.String())

			if tc.ExpectErr {
				require.Error(t, result.Err, "Expected an analysis fault, but got none")
				if tc.ErrContains != "" {
					require.Contains(t, result.Err.Error(), tc.ErrContains, "Error message did not contain the expected text")
				}
				return
			}

			require.NoError(t, result.Err, "Expected successful analysis, but got an error")
			worker := graph.Worker("Probe")
			require.NotNil(t, worker, "Analyzed worker 'Probe' not found in graph")

			if tc.Validate != nil {
				tc.Validate(t, worker)
			}
		})
	}
}
