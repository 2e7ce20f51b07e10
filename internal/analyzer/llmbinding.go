package analyzer

import (
	"github.com/planweave/planweave/internal/ir"
	"github.com/planweave/planweave/internal/pyast"
	"github.com/planweave/planweave/internal/registry"
)

// decodeLLMArgs captures the keyword arguments of an llm_from_config call.
// Literal values (strings, numbers, booleans, None) are stored decoded;
// anything else keeps its verbatim expression text so synthesis can replay
// it unchanged.
func (a *analysis) decodeLLMArgs(call *pyast.Call) map[string]ir.LLMArg {
	if len(call.Kwargs) == 0 {
		return map[string]ir.LLMArg{}
	}
	args := make(map[string]ir.LLMArg, len(call.Kwargs))
	for name, value := range call.Kwargs {
		if text, _, ok := a.m.Constant(value); ok {
			args[name] = ir.LLMArg{Value: text, IsLiteral: true}
			continue
		}
		args[name] = ir.LLMArg{Value: a.m.Text(value), IsLiteral: false}
	}
	return args
}

// isLLMConfigCall reports whether the call constructs an LLM binding.
func isLLMConfigCall(call *pyast.Call) bool {
	return lastSegment(call.FuncPath) == registry.LLMConfigBuilderName
}

// attachLLM resolves the llm= keyword on a worker (or factory)
// instantiation. An inline llm_from_config call binds by value; a bare
// variable binds by name, pulling in the recorded config when the
// variable's assignment was seen earlier.
func (a *analysis) attachLLM(worker *ir.WorkerDef, call *pyast.Call) {
	value, ok := call.Kwarg("llm")
	if !ok {
		return
	}
	if value.Type() == "call" {
		if inner, ok := a.m.DecomposeCall(value); ok && isLLMConfigCall(inner) {
			worker.LLMConfigFromCode = a.decodeLLMArgs(inner)
			return
		}
	}
	if name, ok := a.m.Identifier(value); ok {
		worker.LLMConfigVar = name
		if cfg, seen := a.llmConfigs[name]; seen {
			worker.LLMConfigFromCode = cfg
		}
		return
	}
	a.logger.Warn("Unrecognized llm= binding shape, dropping.",
		"worker", worker.ClassName, "expr", a.m.Text(value))
}
