package analyzer

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/planweave/planweave/internal/ir"
	"github.com/planweave/planweave/internal/pyast"
	"github.com/planweave/planweave/internal/registry"
)

// extractTopology locates the graph builder function and runs the two
// topology passes: variable bindings first, then dependency edges and
// entry points. A source with no builder keeps an empty topology; that is
// a soft degradation, not an error.
func (a *analysis) extractTopology() {
	for _, stmt := range pyast.FlattenStatements(a.m.Root()) {
		a.recordModuleAssignment(stmt)
	}

	builder := a.findBuilder()
	if builder == nil {
		a.logger.Debug("No graph builder function found, topology left empty.")
		return
	}
	a.logger.Debug("Found graph builder function.", "function", builder.Name)

	stmts := pyast.FlattenStatements(builder.Body)
	a.bindWorkers(stmts)
	a.extractCalls(stmts)
}

// recordModuleAssignment captures module-level llm_from_config assignments
// and plain value assignments so builder code can reference them. Builder
// scope assignments recorded later shadow these.
func (a *analysis) recordModuleAssignment(stmt *sitter.Node) {
	asn, ok := pyast.AsAssignment(stmt)
	if !ok || asn.Right == nil {
		return
	}
	name, ok := a.m.Identifier(asn.Left)
	if !ok {
		return
	}
	if call, ok := a.m.DecomposeCall(asn.Right); ok && isLLMConfigCall(call) {
		a.llmConfigs[name] = a.decodeLLMArgs(call)
		return
	}
	a.varExprs[name] = asn.Right
}

// findBuilder returns the first module-level function whose body assigns
// `graph = Graph(...)` and afterwards calls a recognized graph method.
// When several functions match, the first in source order wins.
func (a *analysis) findBuilder() *pyast.Function {
	for _, fn := range a.m.Functions() {
		assigned := false
		for _, stmt := range pyast.FlattenStatements(fn.Body) {
			if !assigned {
				assigned = a.isGraphAssignment(stmt)
				continue
			}
			if a.hasGraphMethodCall(stmt) {
				return fn
			}
		}
	}
	return nil
}

// isGraphAssignment matches the exact `graph = Graph(...)` shape. The
// constructor may be referenced through a dotted path.
func (a *analysis) isGraphAssignment(stmt *sitter.Node) bool {
	asn, ok := pyast.AsAssignment(stmt)
	if !ok || asn.Right == nil {
		return false
	}
	if name, ok := a.m.Identifier(asn.Left); !ok || name != registry.GraphVariableName {
		return false
	}
	call, ok := a.m.DecomposeCall(asn.Right)
	if !ok {
		return false
	}
	return lastSegment(call.FuncPath) == registry.GraphConstructorName
}

// hasGraphMethodCall reports whether stmt invokes one of the recognized
// graph methods on the graph variable, either as a bare call statement or
// on the right of an assignment.
func (a *analysis) hasGraphMethodCall(stmt *sitter.Node) bool {
	chain := a.statementChain(stmt)
	if len(chain) == 0 {
		return false
	}
	root := chain[0]
	return len(root.FuncPath) == 2 &&
		root.FuncPath[0] == registry.GraphVariableName &&
		registry.IsGraphMethod(root.FuncPath[1])
}

// bindWorkers is the first topology pass: it records every assignment in
// the builder body, binding worker variables to class names for direct
// instantiations, synthesizing WorkerDefs for factory calls, and keeping
// llm_from_config results and plain values for later lookup.
func (a *analysis) bindWorkers(stmts []*sitter.Node) {
	for _, stmt := range stmts {
		asn, ok := pyast.AsAssignment(stmt)
		if !ok || asn.Right == nil {
			continue
		}
		name, ok := a.m.Identifier(asn.Left)
		if !ok {
			continue
		}
		call, ok := a.m.DecomposeCall(asn.Right)
		if !ok {
			a.varExprs[name] = asn.Right
			continue
		}
		callee := lastSegment(call.FuncPath)
		factory, isFactory := a.reg.Factory(callee)
		switch {
		case isLLMConfigCall(call):
			a.llmConfigs[name] = a.decodeLLMArgs(call)
		case a.isWorkerClass(callee):
			a.bindInstance(name, callee, call)
		case isFactory:
			a.bindFactory(name, call, factory)
		default:
			a.varExprs[name] = asn.Right
		}
	}
}

func (a *analysis) isWorkerClass(name string) bool {
	info, ok := a.byName[name]
	return ok && info.kind == workerClass
}

// bindInstance records `var = WorkerClass(...)`. Repeated instantiation of
// the same class keeps the last variable name.
func (a *analysis) bindInstance(varName, className string, call *pyast.Call) {
	a.bindings[varName] = className
	worker := a.graph.Worker(className)
	if worker == nil {
		return
	}
	worker.VariableName = varName
	a.attachLLM(worker, call)
}

// bindFactory records `var = factory_fn(...)`, synthesizing a WorkerDef
// for the created node. The class name comes from an explicit name=
// keyword or the factory's configured default; the invocation argument
// text is preserved byte-for-byte.
func (a *analysis) bindFactory(varName string, call *pyast.Call, def *registry.FactoryDef) {
	className := def.DefaultClassName
	if value, ok := call.Kwarg("name"); ok {
		if text, ok := a.m.StringLiteral(value); ok && text != "" {
			className = text
		}
	}
	a.bindings[varName] = className

	if a.graph.Worker(className) == nil {
		a.graph.Workers = append(a.graph.Workers, ir.WorkerDef{
			ClassName: className,
			Variant:   def.Variant,
		})
	}
	worker := a.graph.Worker(className)
	worker.VariableName = varName
	worker.FactoryFunction = def.Name
	worker.FactoryInvocation = call.ArgsText
	if len(def.InputTypes) > 0 {
		worker.InputTypes = append([]string(nil), def.InputTypes...)
	}
	if len(def.OutputTypes) > 0 {
		worker.ClassVars.OutputTypes = append([]string(nil), def.OutputTypes...)
	}
	a.attachLLM(worker, call)
	a.logger.Debug("Bound factory worker.", "var", varName, "class", className, "factory", def.Name)
}

// extractCalls is the second topology pass: it walks the builder
// statements for graph method calls and turns them into edges and entry
// points.
func (a *analysis) extractCalls(stmts []*sitter.Node) {
	for _, stmt := range stmts {
		chain := a.statementChain(stmt)
		if len(chain) == 0 {
			continue
		}
		root := chain[0]
		if len(root.FuncPath) != 2 || root.FuncPath[0] != registry.GraphVariableName {
			continue
		}
		switch root.FuncPath[1] {
		case "set_dependency":
			a.extractChain(chain)
		case "set_entry":
			a.markEntries(root)
		case "run":
			a.extractRunEntries(root)
		}
	}
}

// statementChain decomposes stmt into its call chain when stmt is a bare
// call statement or an assignment whose right side is a call.
func (a *analysis) statementChain(stmt *sitter.Node) []*pyast.Call {
	if n, ok := pyast.AsCall(stmt); ok {
		return a.chainCalls(n)
	}
	if asn, ok := pyast.AsAssignment(stmt); ok && asn.Right != nil {
		return a.chainCalls(asn.Right)
	}
	return nil
}

// chainCalls flattens a chained call expression like f(a).next(b).next(c)
// into its calls in evaluation order, innermost first.
func (a *analysis) chainCalls(n *sitter.Node) []*pyast.Call {
	if n == nil || n.Type() != "call" {
		return nil
	}
	call, ok := a.m.DecomposeCall(n)
	if !ok {
		return nil
	}
	if call.Func.Type() == "attribute" {
		if object := call.Func.ChildByFieldName("object"); object != nil && object.Type() == "call" {
			inner := a.chainCalls(object)
			if inner == nil {
				return nil
			}
			return append(inner, call)
		}
	}
	return []*pyast.Call{call}
}

// chainMethod returns the attribute name a chained continuation call was
// invoked under.
func (a *analysis) chainMethod(call *pyast.Call) (string, bool) {
	if call.Func.Type() != "attribute" {
		return "", false
	}
	return a.m.Identifier(call.Func.ChildByFieldName("attribute"))
}

// extractChain replays a set_dependency chain left-to-right: the
// two-argument root yields one edge, each chained single-argument next()
// continues from the previous target. An unresolved variable or an
// unexpected method stops the walk at that point without raising.
func (a *analysis) extractChain(chain []*pyast.Call) {
	root := chain[0]
	if len(root.Args) != 2 {
		return
	}
	source, ok := a.resolveWorker(root.Args[0])
	if !ok {
		return
	}
	target, ok := a.resolveWorker(root.Args[1])
	if !ok {
		return
	}
	a.addEdge(source, target)

	prev := target
	for _, link := range chain[1:] {
		method, ok := a.chainMethod(link)
		if !ok || method != "next" || len(link.Args) != 1 {
			return
		}
		next, ok := a.resolveWorker(link.Args[0])
		if !ok {
			return
		}
		a.addEdge(prev, next)
		prev = next
	}
}

// resolveWorker maps a worker variable reference to its bound class name.
func (a *analysis) resolveWorker(n *sitter.Node) (string, bool) {
	name, ok := a.m.Identifier(n)
	if !ok {
		return "", false
	}
	className, ok := a.bindings[name]
	if !ok {
		a.logger.Debug("Variable does not resolve to a bound worker.", "var", name)
		return "", false
	}
	return className, true
}

func (a *analysis) addEdge(source, target string) {
	edge := ir.Edge{Source: source, Target: target}
	if worker := a.graph.Worker(target); worker != nil && len(worker.InputTypes) > 0 {
		edge.TargetInputType = worker.InputTypes[0]
	}
	a.graph.Edges = append(a.graph.Edges, edge)
}

// markEntries handles graph.set_entry(w, ...): each resolved worker
// becomes an entry point, and workers with a known input type also
// contribute an entry edge from that type.
func (a *analysis) markEntries(call *pyast.Call) {
	for _, arg := range call.Args {
		className, ok := a.resolveWorker(arg)
		if !ok {
			continue
		}
		worker := a.graph.Worker(className)
		if worker == nil {
			continue
		}
		worker.EntryPoint = true
		if len(worker.InputTypes) == 0 {
			a.logger.Warn("Entry worker has no inferred input type, skipping entry edge.",
				"worker", className)
			continue
		}
		a.addEntryEdge(ir.EntryEdge{SourceTask: worker.InputTypes[0], TargetWorker: className})
	}
}

// extractRunEntries reads graph.run(initial_tasks=[...]). The list may be
// inline or a variable assigned earlier; each element is a
// (workerVariable, TaskCtor(...)) pair whose constructor argument text is
// kept verbatim.
func (a *analysis) extractRunEntries(call *pyast.Call) {
	value, ok := call.Kwarg("initial_tasks")
	if !ok {
		return
	}
	list := a.resolveList(value)
	if list == nil {
		return
	}
	for _, elem := range pyast.NamedChildren(list) {
		if elem.Type() != "tuple" {
			continue
		}
		parts := pyast.NamedChildren(elem)
		if len(parts) != 2 {
			continue
		}
		className, ok := a.resolveWorker(parts[0])
		if !ok {
			continue
		}
		ctor, ok := a.m.DecomposeCall(parts[1])
		if !ok || len(ctor.FuncPath) == 0 {
			continue
		}
		if worker := a.graph.Worker(className); worker != nil {
			worker.EntryPoint = true
		}
		a.addEntryEdge(ir.EntryEdge{
			SourceTask:   lastSegment(ctor.FuncPath),
			TargetWorker: className,
			InitArgs:     ctor.ArgsText,
		})
	}
}

// resolveList accepts an inline list literal or a variable previously
// assigned one.
func (a *analysis) resolveList(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	if n.Type() == "list" {
		return n
	}
	if name, ok := a.m.Identifier(n); ok {
		if expr, ok := a.varExprs[name]; ok && expr.Type() == "list" {
			return expr
		}
	}
	return nil
}

// addEntryEdge appends e unless an entry for the same (sourceTask,
// targetWorker) pair exists. A duplicate can still contribute its
// constructor arguments when the first sighting had none.
func (a *analysis) addEntryEdge(e ir.EntryEdge) {
	for i := range a.graph.EntryEdges {
		prev := &a.graph.EntryEdges[i]
		if prev.SourceTask == e.SourceTask && prev.TargetWorker == e.TargetWorker {
			if prev.InitArgs == "" {
				prev.InitArgs = e.InitArgs
			}
			return
		}
	}
	a.graph.EntryEdges = append(a.graph.EntryEdges, e)
}
