package equivalence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planweave/planweave/internal/ir"
)

const researchPipeline = `from textwrap import dedent
from typing import List, Optional

import os

from planai import Graph, InitialTaskWorker, JoinedTaskWorker, LLMTaskWorker, Task, TaskWorker, llm_from_config
from planai.patterns import create_planning_worker
from pydantic import Field


class Topic(Task):
    title: str
    focus: Optional[str] = Field(None, description="Narrowing hint.")


class Fragment(Task):
    text: str


class Summary(Task):
    text: str


class Research(LLMTaskWorker):
    output_types = [Fragment]
    llm_input_type = Topic
    prompt = dedent("""
        Research the topic.

        Return focused fragments.
    """).strip()

    def format_prompt(self, task: Topic) -> str:
        return self.prompt


class Collect(JoinedTaskWorker):
    output_types = [Summary]
    join_type = InitialTaskWorker

    def consume_work_joined(self, tasks: List[Fragment]):
        self.publish_work(Summary(text="joined"), input_task=tasks[0])


class Publish(TaskWorker):
    def consume_work(self, task: Summary):
        print(task.text)


def main():
    llm = llm_from_config(provider="openai", model_name="gpt-4o")
    graph = Graph(name="research")
    research = Research(llm=llm)
    collect = Collect()
    publish = Publish()
    planner = create_planning_worker(llm=llm)
    graph.add_workers(research, collect, publish, planner)
    graph.set_dependency(research, collect).next(publish)
    graph.set_entry(research)
    graph.run(initial_tasks=[(research, Topic(title="go"))])


if __name__ == "__main__":
    main()
`

func TestVerifyRoundTripResearchPipeline(t *testing.T) {
	ctx := testContext()
	reg := loadRegistry(t)

	rt, err := VerifyRoundTrip(ctx, reg, []byte(researchPipeline), "research")
	require.NoError(t, err)
	require.NotNil(t, rt)
	assert.True(t, rt.Equivalent, "round trip drifted:\n%s\n\ngenerated source:\n%s", rt.Diff, rt.Source)

	// Spot checks on the original analysis, so an accidentally empty graph
	// cannot pass as trivially equivalent.
	require.Len(t, rt.Original.Tasks, 3)
	require.Len(t, rt.Original.Workers, 4)
	require.Len(t, rt.Original.Edges, 2)
	require.Len(t, rt.Original.EntryEdges, 1)
	assert.Equal(t, `title="go"`, rt.Original.EntryEdges[0].InitArgs)

	planner := rt.Original.Worker("PlanningWorker")
	require.NotNil(t, planner)
	assert.Equal(t, "create_planning_worker", planner.FactoryFunction)
	assert.Equal(t, "llm=llm", planner.FactoryInvocation)

	reparsedPlanner := rt.Reparsed.Worker("PlanningWorker")
	require.NotNil(t, reparsedPlanner)
	assert.Equal(t, planner.FactoryInvocation, reparsedPlanner.FactoryInvocation,
		"factory invocation text must survive byte for byte")
}

func TestVerifyRoundTripIdempotent(t *testing.T) {
	ctx := testContext()
	reg := loadRegistry(t)

	first, err := VerifyRoundTrip(ctx, reg, []byte(researchPipeline), "research")
	require.NoError(t, err)
	require.True(t, first.Equivalent, first.Diff)

	// A second trip over the generated source must be equivalent too, and
	// must regenerate the same text.
	second, err := VerifyRoundTrip(ctx, reg, []byte(first.Source), "research")
	require.NoError(t, err)
	assert.True(t, second.Equivalent, second.Diff)
	assert.Equal(t, first.Source, second.Source, "synthesis must be stable on its own output")
}

func TestVerifyRoundTripSyntaxError(t *testing.T) {
	rt, err := VerifyRoundTrip(testContext(), loadRegistry(t), []byte("def broken(:\n"), "broken")
	require.Error(t, err)
	assert.Nil(t, rt)
	fault, ok := ir.AsFault(err)
	require.True(t, ok)
	assert.Equal(t, ir.FaultSyntax, fault.Kind)
}
