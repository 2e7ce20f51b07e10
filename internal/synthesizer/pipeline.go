package synthesizer

import (
	"strings"

	"github.com/planweave/planweave/internal/ir"
	"github.com/planweave/planweave/internal/pyast"
	"github.com/planweave/planweave/internal/registry"
	"github.com/planweave/planweave/internal/runproto"
)

// emitPipeline writes the run_pipeline function: graph construction,
// guarded worker instantiation, wiring and the run call, then the
// __main__ tail.
func (s *synthesis) emitPipeline(e *emitter) {
	s.addModuleImport(registry.FrameworkModule, registry.GraphConstructorName)

	e.blank()
	e.blank()
	e.put(0, "def run_pipeline():")
	e.put(1, registry.GraphVariableName+" = "+registry.GraphConstructorName+
		"(name="+pyast.Quote(s.moduleName())+")")

	s.emitLLMVars(e)
	s.emitInstantiations(e)
	s.emitWiring(e)
	s.emitRun(e)

	e.blank()
	e.blank()
	e.put(0, `if __name__ == "__main__":`)
	e.put(1, "run_pipeline()")
}

// emitLLMVars binds each shared LLM configuration variable once, before
// any worker references it. The first worker carrying the variable
// supplies the arguments.
func (s *synthesis) emitLLMVars(e *emitter) {
	emitted := map[string]bool{}
	for i := range s.g.Workers {
		w := &s.g.Workers[i]
		if w.LLMConfigVar == "" || emitted[w.LLMConfigVar] {
			continue
		}
		if !ir.ValidIdentifier(w.LLMConfigVar) {
			s.logger.Warn("LLM config variable is not an identifier; inlining the config.",
				"worker", w.ClassName, "variable", w.LLMConfigVar)
			continue
		}
		emitted[w.LLMConfigVar] = true
		e.put(1, w.LLMConfigVar+" = "+s.llmCall(w.ClassName, w.LLMConfigFromCode))
	}
}

func (s *synthesis) llmCall(worker string, args map[string]ir.LLMArg) string {
	s.addModuleImport(registry.FrameworkModule, registry.LLMConfigBuilderName)
	parts := make([]string, 0, len(args))
	for _, key := range sortedKeys(args) {
		if !ir.ValidIdentifier(key) {
			s.logger.Warn("Skipping LLM argument with an invalid keyword.",
				"worker", worker, "keyword", key)
			continue
		}
		parts = append(parts, key+"="+llmArgText(args[key]))
	}
	return registry.LLMConfigBuilderName + "(" + strings.Join(parts, ", ") + ")"
}

func llmArgText(arg ir.LLMArg) string {
	if !arg.IsLiteral || bareLiteral(arg.Value) {
		return arg.Value
	}
	return pyast.Quote(arg.Value)
}

// emitInstantiations constructs every worker inside its own error guard,
// so a failing constructor reports which node broke.
func (s *synthesis) emitInstantiations(e *emitter) {
	for i := range s.g.Workers {
		w := &s.g.Workers[i]
		e.put(1, "try:")
		e.put(2, s.vars[w.ClassName]+" = "+s.constructorCall(w))
		e.put(1, "except Exception as e:")
		e.putAll(2, runproto.PyFailureLines(w.ClassName))
	}
}

func (s *synthesis) constructorCall(w *ir.WorkerDef) string {
	if w.FactoryFunction != "" {
		s.trackFactory(w)
		return w.FactoryFunction + "(" + s.factoryArgs(w) + ")"
	}
	if w.LLMConfigVar != "" && ir.ValidIdentifier(w.LLMConfigVar) {
		return w.ClassName + "(llm=" + w.LLMConfigVar + ")"
	}
	if w.LLMConfigVar != "" || len(w.LLMConfigFromCode) > 0 {
		return w.ClassName + "(llm=" + s.llmCall(w.ClassName, w.LLMConfigFromCode) + ")"
	}
	return w.ClassName + "()"
}

// factoryArgs re-emits the recorded invocation verbatim; a payload-built
// node without one gets a canonical argument list instead.
func (s *synthesis) factoryArgs(w *ir.WorkerDef) string {
	if w.FactoryInvocation != "" {
		return w.FactoryInvocation
	}
	var parts []string
	def, ok := s.reg.Factory(w.FactoryFunction)
	if !ok || def.DefaultClassName != w.ClassName {
		parts = append(parts, "name="+pyast.Quote(w.ClassName))
	}
	if w.LLMConfigVar != "" && ir.ValidIdentifier(w.LLMConfigVar) {
		parts = append(parts, "llm="+w.LLMConfigVar)
	} else if len(w.LLMConfigFromCode) > 0 {
		parts = append(parts, "llm="+s.llmCall(w.ClassName, w.LLMConfigFromCode))
	}
	return strings.Join(parts, ", ")
}

func (s *synthesis) trackFactory(w *ir.WorkerDef) {
	def, ok := s.reg.Factory(w.FactoryFunction)
	if !ok {
		s.logger.Warn("Factory function is not registered; emitting the call without an import.",
			"factory", w.FactoryFunction, "worker", w.ClassName)
		return
	}
	s.addModuleImport(def.Module, def.Name)
}

func (s *synthesis) emitWiring(e *emitter) {
	if len(s.g.Workers) > 0 {
		names := make([]string, 0, len(s.g.Workers))
		for i := range s.g.Workers {
			names = append(names, s.vars[s.g.Workers[i].ClassName])
		}
		e.put(1, "graph.add_workers("+strings.Join(names, ", ")+")")
	}
	for _, edge := range s.g.Edges {
		e.put(1, "graph.set_dependency("+s.vars[edge.Source]+", "+s.vars[edge.Target]+")")
	}
	entry := s.entryWorkers()
	for i := range s.g.Workers {
		name := s.g.Workers[i].ClassName
		if entry[name] {
			e.put(1, "graph.set_entry("+s.vars[name]+")")
		}
	}
}

// entryWorkers is the union of workers flagged as entry points and
// workers targeted by an entry edge.
func (s *synthesis) entryWorkers() map[string]bool {
	entry := map[string]bool{}
	for i := range s.g.Workers {
		if s.g.Workers[i].EntryPoint {
			entry[s.g.Workers[i].ClassName] = true
		}
	}
	for _, ee := range s.g.EntryEdges {
		entry[ee.TargetWorker] = true
	}
	return entry
}

func (s *synthesis) emitRun(e *emitter) {
	tuples := s.runTuples()
	if len(tuples) == 0 {
		e.put(1, "initial_tasks = []")
	} else {
		e.put(1, "initial_tasks = [")
		for _, tuple := range tuples {
			e.put(2, tuple+",")
		}
		e.put(1, "]")
	}
	e.put(1, "try:")
	e.put(2, "graph.run(initial_tasks=initial_tasks)")
	e.putAll(2, runproto.PySuccessLines("Graph executed successfully."))
	e.put(1, "except Exception as e:")
	e.putAll(2, runproto.PyFailureLines(""))
}

// runTuples renders the initial-task pairs. A bare pair whose task type
// matches the worker's declared input is omitted; set_entry alone
// re-derives it.
func (s *synthesis) runTuples() []string {
	var out []string
	for _, ee := range s.g.EntryEdges {
		w := s.g.Worker(ee.TargetWorker)
		if w == nil {
			continue
		}
		if ee.InitArgs == "" && len(w.InputTypes) > 0 && w.InputTypes[0] == ee.SourceTask {
			continue
		}
		out = append(out, "("+s.vars[ee.TargetWorker]+", "+ee.SourceTask+"("+ee.InitArgs+"))")
	}
	return out
}
