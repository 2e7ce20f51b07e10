package analyzer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planweave/planweave/internal/ir"
)

func TestExtractTaskFields(t *testing.T) {
	src := `from planai import Task
from pydantic import Field
from typing import List, Literal, Optional


class Report(Task):
    """One analysis report."""

    title: str
    count: int
    ratio: float
    ready: bool
    tags: List[str]
    aliases: list[str]
    note: Optional[str] = Field(None, description="Free-form remark")
    fallback: str = None
    mode: Literal["fast", "slow", 3]
    payload: dict[str, int]
`
	graph := analyze(t, src)
	require.Len(t, graph.Tasks, 1)
	task := graph.Tasks[0]
	assert.Equal(t, "Report", task.ClassName)

	want := []ir.FieldDef{
		{Name: "title", Type: "string", Required: true},
		{Name: "count", Type: "integer", Required: true},
		{Name: "ratio", Type: "float", Required: true},
		{Name: "ready", Type: "boolean", Required: true},
		{Name: "tags", Type: "string", IsList: true, Required: true},
		{Name: "aliases", Type: "string", IsList: true, Required: true},
		{Name: "note", Type: "string", Description: "Free-form remark"},
		{Name: "fallback", Type: "string"},
		{Name: "mode", Type: ir.TypeLiteral, Required: true, LiteralValues: []string{"fast", "slow", "3"}},
		{Name: "payload", Type: "dict[str, int]", Required: true},
	}
	if diff := cmp.Diff(want, task.Fields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractTaskSkipsUnannotatedStatements(t *testing.T) {
	src := `class Config(Task):
    name: str
    legacy = "not a field"

    def helper(self):
        return self.name
`
	graph := analyze(t, src)
	require.Len(t, graph.Tasks, 1)
	require.Len(t, graph.Tasks[0].Fields, 1)
	assert.Equal(t, "name", graph.Tasks[0].Fields[0].Name)
}

func TestExtractTaskForwardReference(t *testing.T) {
	src := `class Chain(Task):
    next_link: "Chain"
    slot: Optional["Chain"]
`
	graph := analyze(t, src)
	require.Len(t, graph.Tasks, 1)

	want := []ir.FieldDef{
		{Name: "next_link", Type: "Chain", Required: true},
		{Name: "slot", Type: "Chain"},
	}
	if diff := cmp.Diff(want, graph.Tasks[0].Fields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractTaskFieldWithDefaultKeepsRequired(t *testing.T) {
	src := `class Item(Task):
    kind: str = Field("generic", description="Item kind")
    level: int = 3
`
	graph := analyze(t, src)
	require.Len(t, graph.Tasks, 1)

	want := []ir.FieldDef{
		{Name: "kind", Type: "string", Required: true, Description: "Item kind"},
		{Name: "level", Type: "integer", Required: true},
	}
	if diff := cmp.Diff(want, graph.Tasks[0].Fields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}
