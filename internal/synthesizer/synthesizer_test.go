package synthesizer

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planweave/planweave/internal/ctxlog"
	"github.com/planweave/planweave/internal/ir"
	"github.com/planweave/planweave/internal/registry"
)

func testContext() context.Context {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ctxlog.WithLogger(context.Background(), logger)
}

func loadRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.Load(testContext())
	require.NoError(t, err)
	return reg
}

func synth(t *testing.T, g *ir.Graph) *Result {
	t.Helper()
	res, err := SynthesizeGraph(testContext(), loadRegistry(t), g)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

// lineIndex locates substr in source, failing the test when absent.
func lineIndex(t *testing.T, source, substr string) int {
	t.Helper()
	idx := strings.Index(source, substr)
	require.GreaterOrEqual(t, idx, 0, "generated source is missing %q:\n%s", substr, source)
	return idx
}

func TestSynthesizeGraphGolden(t *testing.T) {
	g := &ir.Graph{
		ModuleName: "pipeline",
		Tasks: []ir.TaskDef{
			{ClassName: "Seed", Fields: []ir.FieldDef{
				{Name: "text", Type: "string", Required: true},
			}},
		},
		Workers: []ir.WorkerDef{
			{
				ClassName:  "Planner",
				Variant:    ir.VariantTaskWorker,
				ClassVars:  ir.ClassVars{OutputTypes: []string{"Seed"}},
				InputTypes: []string{"Seed"},
				EntryPoint: true,
			},
		},
		EntryEdges: []ir.EntryEdge{{SourceTask: "Seed", TargetWorker: "Planner"}},
	}

	res := synth(t, g)
	assert.Equal(t, "pipeline", res.ModuleName)

	want := `# Generated by planweave. Structural edits may be overwritten.

import json
import sys
import traceback

from planai import Graph, Task, TaskWorker


class Seed(Task):
    text: str


class Planner(TaskWorker):
    output_types = [Seed]

    def consume_work(self, task: Seed):
        pass


def run_pipeline():
    graph = Graph(name="pipeline")
    try:
        planner = Planner()
    except Exception as e:
        print("##ERROR_JSON_START##")
        print(json.dumps({"success": False, "error": {"message": str(e), "nodeName": "Planner", "fullTraceback": traceback.format_exc()}}))
        print("##ERROR_JSON_END##")
        sys.exit(1)
    graph.add_workers(planner)
    graph.set_entry(planner)
    initial_tasks = []
    try:
        graph.run(initial_tasks=initial_tasks)
        print("##SUCCESS_JSON_START##")
        print(json.dumps({"success": True, "message": "Graph executed successfully."}))
        print("##SUCCESS_JSON_END##")
    except Exception as e:
        print("##ERROR_JSON_START##")
        print(json.dumps({"success": False, "error": {"message": str(e), "nodeName": None, "fullTraceback": traceback.format_exc()}}))
        print("##ERROR_JSON_END##")
        sys.exit(1)


if __name__ == "__main__":
    run_pipeline()
`
	if diff := cmp.Diff(want, res.Source); diff != "" {
		t.Errorf("generated source mismatch (-want +got):\n%s", diff)
	}
}

func TestSynthesizeTaskFields(t *testing.T) {
	g := &ir.Graph{
		Tasks: []ir.TaskDef{
			{ClassName: "Survey", Fields: []ir.FieldDef{
				{Name: "title", Type: "string", Required: true},
				{Name: "count", Type: "integer", Required: true, Description: "How many rounds."},
				{Name: "tags", Type: "string", IsList: true, Required: true},
				{Name: "note", Type: "string", Required: false, Description: "Optional remark."},
				{Name: "fallback", Type: "string", Required: false},
				{Name: "mode", Type: ir.TypeLiteral, Required: true, LiteralValues: []string{"fast", "slow", "3"}},
				{Name: "payload", Type: "dict[str, int]", Required: true},
				{Name: "parent", Type: "Survey", Required: false},
			}},
		},
	}

	src := synth(t, g).Source
	for _, line := range []string{
		"    title: str",
		`    count: int = Field(..., description="How many rounds.")`,
		"    tags: List[str]",
		`    note: Optional[str] = Field(None, description="Optional remark.")`,
		"    fallback: Optional[str] = Field(None)",
		`    mode: Literal["fast", "slow", 3]`,
		"    payload: dict[str, int]",
		"    parent: Optional[Survey] = Field(None)",
	} {
		assert.Contains(t, src, line+"\n")
	}
	assert.Contains(t, src, "from typing import List, Literal, Optional\n")
	assert.Contains(t, src, "from pydantic import Field\n")
}

func TestSynthesizeEmptyTaskBody(t *testing.T) {
	g := &ir.Graph{Tasks: []ir.TaskDef{{ClassName: "Ping"}}}
	src := synth(t, g).Source
	assert.Contains(t, src, "class Ping(Task):\n    pass\n")
}

func TestSynthesizeWorkerClassVarOrder(t *testing.T) {
	debug := true
	useXML := false
	g := &ir.Graph{
		Workers: []ir.WorkerDef{
			{
				ClassName: "Drafter",
				Variant:   ir.VariantLLMTaskWorker,
				ClassVars: ir.ClassVars{
					OutputTypes:   []string{"Draft"},
					LLMInputType:  "Topic",
					LLMOutputType: "Draft",
					Prompt:        "Write a draft.",
					SystemPrompt:  "You are terse.",
					DebugMode:     &debug,
					UseXML:        &useXML,
					Tools:         []string{"search_web", "tools.calculator"},
				},
				InputTypes: []string{"Topic"},
			},
		},
	}

	src := synth(t, g).Source
	ordered := []string{
		"class Drafter(LLMTaskWorker):",
		"    output_types = [Draft]",
		"    llm_input_type = Topic",
		"    llm_output_type = Draft",
		`    prompt = "Write a draft."`,
		`    system_prompt = "You are terse."`,
		"    debug_mode = True",
		"    use_xml = False",
		"    tools = [search_web, tools.calculator]",
	}
	prev := -1
	for _, line := range ordered {
		idx := lineIndex(t, src, line+"\n")
		assert.Greater(t, idx, prev, "line %q out of order", line)
		prev = idx
	}
}

func TestSynthesizePromptWrapping(t *testing.T) {
	g := &ir.Graph{
		Workers: []ir.WorkerDef{
			{
				ClassName: "Drafter",
				Variant:   ir.VariantLLMTaskWorker,
				ClassVars: ir.ClassVars{
					Prompt: "Draft an outline.\n\nCover every topic point.",
				},
			},
		},
	}

	src := synth(t, g).Source
	want := `    prompt = dedent("""
        Draft an outline.

        Cover every topic point.
    """).strip()
`
	assert.Contains(t, src, want)
	assert.Contains(t, src, "from textwrap import dedent\n")
}

func TestSynthesizeConsumeStubs(t *testing.T) {
	testCases := []struct {
		name   string
		worker ir.WorkerDef
		want   string
		absent string
	}{
		{
			name: "plain worker gets typed stub",
			worker: ir.WorkerDef{
				ClassName:  "Step",
				Variant:    ir.VariantTaskWorker,
				InputTypes: []string{"Seed"},
			},
			want: "    def consume_work(self, task: Seed):\n        pass\n",
		},
		{
			name: "untyped worker gets bare stub",
			worker: ir.WorkerDef{
				ClassName: "Step",
				Variant:   ir.VariantCachedTaskWorker,
			},
			want: "    def consume_work(self, task):\n        pass\n",
		},
		{
			name: "join worker gets joined stub",
			worker: ir.WorkerDef{
				ClassName:  "Merger",
				Variant:    ir.VariantJoinedTaskWorker,
				ClassVars:  ir.ClassVars{JoinType: "InitialTaskWorker"},
				InputTypes: []string{"Fragment"},
			},
			want: "    def consume_work_joined(self, tasks: List[Fragment]):\n        pass\n",
		},
		{
			name: "llm worker gets no stub",
			worker: ir.WorkerDef{
				ClassName:  "Drafter",
				Variant:    ir.VariantLLMTaskWorker,
				ClassVars:  ir.ClassVars{LLMInputType: "Topic"},
				InputTypes: []string{"Topic"},
			},
			absent: "def consume_work",
		},
		{
			name: "stored consume suppresses the stub",
			worker: ir.WorkerDef{
				ClassName:  "Step",
				Variant:    ir.VariantTaskWorker,
				InputTypes: []string{"Seed"},
				Methods: map[string]string{
					"consume_work": "def consume_work(self, task: Seed):\n    self.publish_work(task, input_task=task)",
				},
			},
			want:   "    def consume_work(self, task: Seed):\n        self.publish_work(task, input_task=task)\n",
			absent: "        pass",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := &ir.Graph{Workers: []ir.WorkerDef{tc.worker}}
			src := synth(t, g).Source
			if tc.want != "" {
				assert.Contains(t, src, tc.want)
			}
			if tc.absent != "" {
				assert.NotContains(t, src, tc.absent)
			}
		})
	}
}

func TestSynthesizeMethodReconstruction(t *testing.T) {
	g := &ir.Graph{
		Workers: []ir.WorkerDef{
			{
				ClassName:  "Shaper",
				Variant:    ir.VariantLLMTaskWorker,
				InputTypes: []string{"Topic"},
				Methods: map[string]string{
					// Bare body text gets a canonical signature wrapped around it.
					"format_prompt": `return self.prompt.format(topic=task.topic)`,
					"pre_process":   "",
				},
			},
		},
	}

	src := synth(t, g).Source
	assert.Contains(t, src, "    def format_prompt(self, task):\n        return self.prompt.format(topic=task.topic)\n")
	assert.Contains(t, src, "    def pre_process(self, task):\n        pass\n")
	// Canonical hook order: pre_process before format_prompt.
	assert.Less(t, lineIndex(t, src, "def pre_process"), lineIndex(t, src, "def format_prompt"))
}

func TestSynthesizeFactoryWorker(t *testing.T) {
	g := &ir.Graph{
		Workers: []ir.WorkerDef{
			{
				ClassName:         "CustomPlanner",
				Variant:           ir.VariantSubGraphWorker,
				VariableName:      "planner",
				FactoryFunction:   "create_planning_worker",
				FactoryInvocation: `name="CustomPlanner", llm=planner_llm`,
				LLMConfigVar:      "planner_llm",
				LLMConfigFromCode: map[string]ir.LLMArg{
					"provider": {Value: "openai", IsLiteral: true},
				},
				InputTypes: []string{"PlanRequest"},
			},
		},
		ImportedTasks: []ir.ImportedTaskRef{
			{ModulePath: "planai.patterns", ClassName: "PlanRequest", IsImplicit: true},
		},
	}

	src := synth(t, g).Source
	assert.NotContains(t, src, "class CustomPlanner", "factory workers must not emit a class")
	assert.Contains(t, src, `    planner_llm = llm_from_config(provider="openai")`+"\n")
	assert.Contains(t, src, `        planner = create_planning_worker(name="CustomPlanner", llm=planner_llm)`+"\n")
	assert.Contains(t, src, "from planai.patterns import PlanRequest, create_planning_worker\n")
}

func TestSynthesizeFactoryWorkerCanonicalArgs(t *testing.T) {
	// A payload-built factory node carries no invocation text; the argument
	// list is reconstructed, omitting name= when the default class applies.
	g := &ir.Graph{
		Workers: []ir.WorkerDef{
			{
				ClassName:       "PlanningWorker",
				Variant:         ir.VariantSubGraphWorker,
				FactoryFunction: "create_planning_worker",
			},
			{
				ClassName:       "Custom",
				Variant:         ir.VariantSubGraphWorker,
				FactoryFunction: "create_planning_worker",
			},
		},
	}

	src := synth(t, g).Source
	assert.Contains(t, src, "planning_worker = create_planning_worker()\n")
	assert.Contains(t, src, `custom = create_planning_worker(name="Custom")`+"\n")
}

func TestSynthesizeSharedLLMVar(t *testing.T) {
	cfg := map[string]ir.LLMArg{
		"provider":   {Value: "openai", IsLiteral: true},
		"max_tokens": {Value: "2000", IsLiteral: true},
		"client":     {Value: "make_client()", IsLiteral: false},
	}
	g := &ir.Graph{
		Workers: []ir.WorkerDef{
			{ClassName: "Drafter", Variant: ir.VariantLLMTaskWorker, LLMConfigVar: "llm", LLMConfigFromCode: cfg},
			{ClassName: "Critic", Variant: ir.VariantLLMTaskWorker, LLMConfigVar: "llm", LLMConfigFromCode: cfg},
		},
	}

	src := synth(t, g).Source
	decl := `    llm = llm_from_config(client=make_client(), max_tokens=2000, provider="openai")` + "\n"
	assert.Equal(t, 1, strings.Count(src, decl), "shared config must be bound once:\n%s", src)
	assert.Contains(t, src, "drafter = Drafter(llm=llm)\n")
	assert.Contains(t, src, "critic = Critic(llm=llm)\n")
	assert.Less(t, lineIndex(t, src, decl), lineIndex(t, src, "drafter = Drafter"))
}

func TestSynthesizeInlineLLMConfig(t *testing.T) {
	g := &ir.Graph{
		Workers: []ir.WorkerDef{
			{
				ClassName: "Critic",
				Variant:   ir.VariantLLMTaskWorker,
				LLMConfigFromCode: map[string]ir.LLMArg{
					"provider":    {Value: "ollama", IsLiteral: true},
					"temperature": {Value: "0.7", IsLiteral: true},
				},
			},
		},
	}

	src := synth(t, g).Source
	assert.Contains(t, src, `critic = Critic(llm=llm_from_config(provider="ollama", temperature=0.7))`+"\n")
}

func TestSynthesizeWiring(t *testing.T) {
	g := &ir.Graph{
		Workers: []ir.WorkerDef{
			{ClassName: "A", Variant: ir.VariantTaskWorker, InputTypes: []string{"Seed"}, EntryPoint: true},
			{ClassName: "B", Variant: ir.VariantTaskWorker, InputTypes: []string{"Mid"}},
		},
		Edges: []ir.Edge{
			{Source: "A", Target: "B", TargetInputType: "Mid"},
			{Source: "A", Target: "Ghost"},
		},
		EntryEdges: []ir.EntryEdge{
			{SourceTask: "Seed", TargetWorker: "A", InitArgs: `text="go"`},
			{SourceTask: "Nowhere", TargetWorker: "A"},
		},
		Tasks: []ir.TaskDef{
			{ClassName: "Seed"}, {ClassName: "Mid"},
		},
	}

	src := synth(t, g).Source
	assert.Contains(t, src, "graph.add_workers(a, b)\n")
	assert.Contains(t, src, "graph.set_dependency(a, b)\n")
	assert.NotContains(t, src, "Ghost")
	assert.NotContains(t, src, "Nowhere")
	assert.Contains(t, src, "graph.set_entry(a)\n")
	assert.Contains(t, src, `        (a, Seed(text="go")),`+"\n")
}

func TestSynthesizeRedundantEntryTupleOmitted(t *testing.T) {
	g := &ir.Graph{
		Tasks: []ir.TaskDef{{ClassName: "Seed"}},
		Workers: []ir.WorkerDef{
			{ClassName: "A", Variant: ir.VariantTaskWorker, InputTypes: []string{"Seed"}, EntryPoint: true},
		},
		EntryEdges: []ir.EntryEdge{{SourceTask: "Seed", TargetWorker: "A"}},
	}

	src := synth(t, g).Source
	assert.Contains(t, src, "    initial_tasks = []\n")
	assert.Contains(t, src, "graph.set_entry(a)\n")
	assert.NotContains(t, src, "(a, Seed())")
}

func TestSynthesizeValidation(t *testing.T) {
	testCases := []struct {
		name     string
		graph    *ir.Graph
		wantKind ir.FaultKind
		wantNode string
	}{
		{
			name:     "invalid task class name",
			graph:    &ir.Graph{Tasks: []ir.TaskDef{{ClassName: "3Bad"}}},
			wantKind: ir.FaultInvalidIdentifier,
			wantNode: "3Bad",
		},
		{
			name: "invalid field name",
			graph: &ir.Graph{Tasks: []ir.TaskDef{
				{ClassName: "Q", Fields: []ir.FieldDef{{Name: "not valid", Type: "string"}}},
			}},
			wantKind: ir.FaultInvalidIdentifier,
			wantNode: "Q",
		},
		{
			name:     "reserved worker class name",
			graph:    &ir.Graph{Workers: []ir.WorkerDef{{ClassName: "class", Variant: ir.VariantTaskWorker}}},
			wantKind: ir.FaultInvalidIdentifier,
			wantNode: "class",
		},
		{
			name:     "unknown variant",
			graph:    &ir.Graph{Workers: []ir.WorkerDef{{ClassName: "W", Variant: "mystery"}}},
			wantKind: ir.FaultPayload,
			wantNode: "W",
		},
		{
			name: "multiple inputs on a single-input variant",
			graph: &ir.Graph{Workers: []ir.WorkerDef{
				{ClassName: "W", Variant: ir.VariantTaskWorker, InputTypes: []string{"A", "B"}},
			}},
			wantKind: ir.FaultMultipleInputs,
			wantNode: "W",
		},
		{
			name: "duplicate class name",
			graph: &ir.Graph{
				Tasks:   []ir.TaskDef{{ClassName: "X"}},
				Workers: []ir.WorkerDef{{ClassName: "X", Variant: ir.VariantTaskWorker}},
			},
			wantKind: ir.FaultPayload,
			wantNode: "X",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := SynthesizeGraph(testContext(), loadRegistry(t), tc.graph)
			require.Error(t, err)
			assert.Nil(t, res)
			fault, ok := ir.AsFault(err)
			require.True(t, ok, "expected a fault, got %v", err)
			assert.Equal(t, tc.wantKind, fault.Kind)
			assert.Equal(t, tc.wantNode, fault.NodeName)
		})
	}
}

func TestSynthesizeMultipleInputsAllowedForJoin(t *testing.T) {
	g := &ir.Graph{
		Workers: []ir.WorkerDef{
			{
				ClassName:  "Merger",
				Variant:    ir.VariantJoinedTaskWorker,
				ClassVars:  ir.ClassVars{JoinType: "InitialTaskWorker"},
				InputTypes: []string{"A", "B"},
			},
		},
	}
	res := synth(t, g)
	assert.Contains(t, res.Source, "class Merger(JoinedTaskWorker):")
}

func TestSynthesizeFromPayload(t *testing.T) {
	g := &ir.Graph{
		ModuleName: "payload_mod",
		Tasks:      []ir.TaskDef{{ClassName: "Seed", Fields: []ir.FieldDef{{Name: "n", Type: "integer", Required: true}}}},
		Workers: []ir.WorkerDef{
			{ClassName: "Step", Variant: ir.VariantTaskWorker, InputTypes: []string{"Seed"}},
		},
		Edges: []ir.Edge{},
	}
	payload, err := g.Payload()
	require.NoError(t, err)

	fromPayload, err := Synthesize(testContext(), loadRegistry(t), payload)
	require.NoError(t, err)
	direct := synth(t, g)
	assert.Equal(t, direct.Source, fromPayload.Source)
	assert.Equal(t, "payload_mod", fromPayload.ModuleName)
}

func TestSynthesizeDefaultModuleName(t *testing.T) {
	res := synth(t, &ir.Graph{})
	assert.Equal(t, "generated_plan", res.ModuleName)
	assert.Contains(t, res.Source, `graph = Graph(name="generated_plan")`)
	// Even an empty graph yields a runnable harness.
	assert.Contains(t, res.Source, "def run_pipeline():")
	assert.Contains(t, res.Source, `if __name__ == "__main__":`)
}

func TestSynthesizePassthroughPreserved(t *testing.T) {
	g := &ir.Graph{
		Workers: []ir.WorkerDef{
			{
				ClassName:            "Step",
				Variant:              ir.VariantTaskWorker,
				RawPassthroughSource: "\"\"\"Carries auxiliary state.\"\"\"\n\nretry_budget = 3",
			},
		},
		PassthroughImports: []string{"import os", "from celery import shared_task"},
	}

	src := synth(t, g).Source
	assert.Contains(t, src, "    \"\"\"Carries auxiliary state.\"\"\"\n")
	assert.Contains(t, src, "    retry_budget = 3\n")
	assert.Contains(t, src, "import os\n")
	assert.Contains(t, src, "from celery import shared_task\n")
	// Preserved imports never duplicate generated ones.
	assert.Equal(t, 1, strings.Count(src, "import json\n"))
}

func TestSynthesizeVariableNameCollisions(t *testing.T) {
	g := &ir.Graph{
		Workers: []ir.WorkerDef{
			{ClassName: "Step", Variant: ir.VariantTaskWorker, VariableName: "graph"},
			{ClassName: "StepTwo", Variant: ir.VariantTaskWorker, VariableName: "step"},
			{ClassName: "StepThree", Variant: ir.VariantTaskWorker, VariableName: "step"},
		},
	}

	src := synth(t, g).Source
	// "graph" is reserved for the graph object; the class name wins instead.
	assert.Contains(t, src, "step = Step()\n")
	assert.NotContains(t, src, "graph = Step()")
	assert.Contains(t, src, "step_two = StepTwo()\n")
	assert.Contains(t, src, "step_three = StepThree()\n")
}
