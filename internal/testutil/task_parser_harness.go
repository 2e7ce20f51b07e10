package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/planweave/planweave/internal/ir"
)

// RunTaskParsingTest provides a standardized harness for testing the
// analysis of a task class. It encapsulates the boilerplate of wrapping
// the field block in a module, running the analyzer end to end, and
// locating the parsed task. The class under test is always named Probe.
// It returns the parsed task and any fault raised during analysis.
func RunTaskParsingTest(t *testing.T, fieldBlock string) (*ir.TaskDef, error) {
	t.Helper()

	body := reindent(unindent(fieldBlock))
	if strings.TrimSpace(body) == "" {
		body = "    pass"
	}

	var source strings.Builder
	source.WriteString("from typing import List, Literal, Optional\n\n")
	source.WriteString(frameworkImport + "\n")
	source.WriteString("from pydantic import Field\n\n\n")
	fmt.Fprintf(&source, "class Probe(Task):\n%s\n", body)

	result, graph := AnalyzeToGraph(t, source.String())
	if result.Err != nil {
		return nil, result.Err
	}

	task := graph.Task("Probe")
	require.NotNil(t, task, "Analyzed task 'Probe' not found in graph")
	return task, nil
}
