package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/planweave/planweave/internal/ir"
	"github.com/planweave/planweave/internal/testutil"
)

func TestWorkerParsing_LLMVariants(t *testing.T) {
	preamble := `
		class Question(Task):
			text: str


		class Answer(Task):
			text: str
	`

	testutil.RunWorkerParsingTests(t, []testutil.WorkerTestCase{
		{
			Name: "llm worker with single line prompt",
			Base: "LLMTaskWorker",
			Body: `
				output_types = [Answer]
				llm_input_type = Question
				prompt = "Answer in one sentence."
			`,
			Preamble: preamble,
			Validate: func(t *testing.T, w *ir.WorkerDef) {
				require.Equal(t, ir.VariantLLMTaskWorker, w.Variant)
				require.Equal(t, "Answer in one sentence.", w.ClassVars.Prompt)
				require.Equal(t, "Question", w.ClassVars.LLMInputType)
				require.Equal(t, []string{"Question"}, w.InputTypes,
					"llm_input_type drives input inference")
			},
		},
		{
			Name: "dedent strip prompt stores normalized text",
			Base: "LLMTaskWorker",
			Body: `
				llm_input_type = Question
				prompt = dedent("""
					Answer the question.
					Cite one source.
					""").strip()
			`,
			Preamble: preamble,
			Validate: func(t *testing.T, w *ir.WorkerDef) {
				require.Equal(t, "Answer the question.\nCite one source.", w.ClassVars.Prompt)
			},
		},
		{
			Name: "system prompt and flags",
			Base: "CachedLLMTaskWorker",
			Body: `
				llm_input_type = Question
				system_prompt = "You are terse."
				debug_mode = True
				use_xml = False
			`,
			Preamble: preamble,
			Validate: func(t *testing.T, w *ir.WorkerDef) {
				require.Equal(t, ir.VariantCachedLLMTaskWorker, w.Variant)
				require.Equal(t, "You are terse.", w.ClassVars.SystemPrompt)
				require.NotNil(t, w.ClassVars.DebugMode)
				require.True(t, *w.ClassVars.DebugMode)
				require.NotNil(t, w.ClassVars.UseXML)
				require.False(t, *w.ClassVars.UseXML)
			},
		},
		{
			Name: "absent flags stay unset",
			Base: "LLMTaskWorker",
			Body: `
				llm_input_type = Question
			`,
			Preamble: preamble,
			Validate: func(t *testing.T, w *ir.WorkerDef) {
				require.Nil(t, w.ClassVars.DebugMode)
				require.Nil(t, w.ClassVars.UseXML)
			},
		},
		{
			Name: "tools keep dotted references whole",
			Base: "LLMTaskWorker",
			Body: `
				llm_input_type = Question
				tools = [search.web_lookup, calculator]
			`,
			Preamble: preamble,
			Validate: func(t *testing.T, w *ir.WorkerDef) {
				require.Equal(t, []string{"search.web_lookup", "calculator"}, w.ClassVars.Tools)
			},
		},
		{
			Name: "llm output type",
			Base: "LLMTaskWorker",
			Body: `
				llm_input_type = Question
				llm_output_type = Answer
			`,
			Preamble: preamble,
			Validate: func(t *testing.T, w *ir.WorkerDef) {
				require.Equal(t, "Answer", w.ClassVars.LLMOutputType)
			},
		},
	})
}

func TestWorkerParsing_LLMBindingFromConstructor(t *testing.T) {
	_, graph := testutil.AnalyzeToGraph(t, `from planai import Graph, LLMTaskWorker, Task, llm_from_config


class Question(Task):
    text: str


class Oracle(LLMTaskWorker):
    llm_input_type = Question
    prompt = "Answer."


def main():
    graph = Graph(name="bind")
    oracle = Oracle(llm=llm_from_config(provider="openai", model_name="gpt-4o", max_tokens=2000))
    graph.add_workers(oracle)
    graph.set_entry(oracle)
    graph.run(initial_tasks=[(oracle, Question(text="hi"))])
`)

	oracle := graph.Worker("Oracle")
	require.NotNil(t, oracle)
	require.Empty(t, oracle.LLMConfigVar, "inline config binds no variable")
	require.Equal(t, map[string]ir.LLMArg{
		"provider":   {Value: "openai", IsLiteral: true},
		"model_name": {Value: "gpt-4o", IsLiteral: true},
		"max_tokens": {Value: "2000", IsLiteral: true},
	}, oracle.LLMConfigFromCode)
}

func TestWorkerParsing_LLMBindingSharedVariable(t *testing.T) {
	_, graph := testutil.AnalyzeToGraph(t, `from planai import Graph, LLMTaskWorker, Task, llm_from_config


class Question(Task):
    text: str


class Oracle(LLMTaskWorker):
    llm_input_type = Question
    prompt = "Answer."


class Critic(LLMTaskWorker):
    llm_input_type = Question
    prompt = "Criticize."


def main():
    llm = llm_from_config(provider="openai", host=make_host())
    graph = Graph(name="bind")
    oracle = Oracle(llm=llm)
    critic = Critic(llm=llm)
    graph.add_workers(oracle, critic)
`)

	oracle := graph.Worker("Oracle")
	require.NotNil(t, oracle)
	require.Equal(t, "llm", oracle.LLMConfigVar)
	require.Equal(t, map[string]ir.LLMArg{
		"provider": {Value: "openai", IsLiteral: true},
		"host":     {Value: "make_host()", IsLiteral: false},
	}, oracle.LLMConfigFromCode)

	critic := graph.Worker("Critic")
	require.NotNil(t, critic)
	require.Equal(t, "llm", critic.LLMConfigVar)
	require.Equal(t, oracle.LLMConfigFromCode, critic.LLMConfigFromCode,
		"both workers carry the shared variable's arguments")
}
