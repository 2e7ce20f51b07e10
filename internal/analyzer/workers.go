package analyzer

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/planweave/planweave/internal/ir"
	"github.com/planweave/planweave/internal/pyast"
	"github.com/planweave/planweave/internal/registry"
)

// extractWorker builds a WorkerDef from a classified worker class. Body
// statements are split three ways: recognized class variables get
// value-specific decoding, recognized lifecycle hooks are captured as
// verbatim de-indented line slices, and everything else concatenates into
// the raw passthrough text.
func (a *analysis) extractWorker(info *classInfo) ir.WorkerDef {
	worker := ir.WorkerDef{
		ClassName: info.cls.Name,
		Variant:   info.variant,
		Methods:   map[string]string{},
	}
	hooks := map[string]*pyast.Function{}
	var passthrough []string

	for _, stmt := range pyast.NamedChildren(info.cls.Body) {
		if fn, ok := a.m.FunctionAt(stmt); ok && registry.IsMethodName(fn.Name) {
			worker.Methods[fn.Name] = strings.Join(pyast.DedentLines(a.m.LinesOf(stmt)), "\n")
			hooks[fn.Name] = fn
			continue
		}
		if asn, ok := pyast.AsAssignment(stmt); ok && asn.Right != nil {
			if key, ok := a.m.Identifier(asn.Left); ok && registry.IsClassVarKey(key) {
				if a.decodeClassVar(&worker.ClassVars, key, asn.Right) {
					continue
				}
				a.logger.Warn("Class variable value shape not recognized, keeping as passthrough.",
					"class", worker.ClassName, "key", key)
			}
		}
		passthrough = append(passthrough, strings.Join(pyast.DedentLines(a.m.LinesOf(stmt)), "\n"))
	}

	if len(worker.Methods) == 0 {
		worker.Methods = nil
	}
	worker.RawPassthroughSource = strings.Join(passthrough, "\n\n")
	worker.InputTypes = a.inferInputTypes(&worker, hooks)
	return worker
}

// decodeClassVar applies the value-specific decoding rules for one
// recognized class variable. It reports false when the value shape is not
// recognized, in which case the whole statement degrades to passthrough.
func (a *analysis) decodeClassVar(vars *ir.ClassVars, key string, value *sitter.Node) bool {
	switch key {
	case "output_types":
		names, ok := a.typeNameList(value)
		if ok {
			vars.OutputTypes = names
		}
		return ok
	case "input_types":
		names, ok := a.typeNameList(value)
		if ok {
			vars.InputTypes = names
		}
		return ok
	case "llm_input_type":
		name, ok := a.typeName(value)
		if ok {
			vars.LLMInputType = name
		}
		return ok
	case "llm_output_type":
		name, ok := a.typeName(value)
		if ok {
			vars.LLMOutputType = name
		}
		return ok
	case "join_type":
		name, ok := a.typeName(value)
		if ok {
			vars.JoinType = name
		}
		return ok
	case "prompt":
		text, ok := a.promptText(value)
		if ok {
			vars.Prompt = text
		}
		return ok
	case "system_prompt":
		text, ok := a.promptText(value)
		if ok {
			vars.SystemPrompt = text
		}
		return ok
	case "debug_mode":
		flag, ok := a.m.BoolLiteral(value)
		if ok {
			vars.DebugMode = &flag
		}
		return ok
	case "use_xml":
		flag, ok := a.m.BoolLiteral(value)
		if ok {
			vars.UseXML = &flag
		}
		return ok
	case "tools":
		names, ok := a.callableNameList(value)
		if ok {
			vars.Tools = names
		}
		return ok
	}
	return false
}

// typeName accepts a bare name, a dotted reference (final segment) or a
// quoted name.
func (a *analysis) typeName(n *sitter.Node) (string, bool) {
	if chain := a.m.AttributeChain(n); len(chain) > 0 {
		return lastSegment(chain), true
	}
	if text, ok := a.m.StringLiteral(n); ok && ir.ValidIdentifier(text) {
		return text, true
	}
	return "", false
}

// typeNameList accepts a list or tuple of type names.
func (a *analysis) typeNameList(n *sitter.Node) ([]string, bool) {
	if n == nil {
		return nil, false
	}
	if n.Type() != "list" && n.Type() != "tuple" {
		return nil, false
	}
	names := []string{}
	for _, elem := range pyast.NamedChildren(n) {
		name, ok := a.typeName(elem)
		if !ok {
			return nil, false
		}
		names = append(names, name)
	}
	return names, true
}

// callableNameList accepts a list or tuple of referenced callables.
func (a *analysis) callableNameList(n *sitter.Node) ([]string, bool) {
	if n == nil || (n.Type() != "list" && n.Type() != "tuple") {
		return nil, false
	}
	names := []string{}
	for _, elem := range pyast.NamedChildren(n) {
		chain := a.m.AttributeChain(elem)
		if len(chain) == 0 {
			return nil, false
		}
		names = append(names, strings.Join(chain, "."))
	}
	return names, true
}

// promptText unwraps the prompt encodings: a plain string, the
// dedent("...").strip() normalization pattern, or a bare dedent("...")
// call. The two-step pattern stores the dedented, stripped text; synthesis
// re-wraps it the same way.
func (a *analysis) promptText(n *sitter.Node) (string, bool) {
	if text, ok := a.m.StringLiteral(n); ok {
		return text, true
	}
	call, ok := a.m.DecomposeCall(n)
	if !ok {
		return "", false
	}

	// dedent("...").strip()
	if call.Func.Type() == "attribute" && len(call.Args) == 0 {
		method, _ := a.m.Identifier(call.Func.ChildByFieldName("attribute"))
		object := call.Func.ChildByFieldName("object")
		if method == "strip" && object != nil && object.Type() == "call" {
			if inner, ok := a.m.DecomposeCall(object); ok {
				if text, ok := a.dedentArgText(inner); ok {
					return strings.TrimSpace(text), true
				}
			}
		}
		return "", false
	}

	if text, ok := a.dedentArgText(call); ok {
		return text, true
	}
	return "", false
}

func (a *analysis) dedentArgText(call *pyast.Call) (string, bool) {
	if lastSegment(call.FuncPath) != registry.DedentCallName || len(call.Args) != 1 {
		return "", false
	}
	text, ok := a.m.StringLiteral(call.Args[0])
	if !ok {
		return "", false
	}
	return pyast.Dedent(text), true
}

// inferInputTypes applies the fixed precedence: the joined-consume
// element type for join workers, then the llm_input_type override for
// LLM-backed variants, then the single-item consume annotation. No match
// leaves the list absent; it is never defaulted.
func (a *analysis) inferInputTypes(worker *ir.WorkerDef, hooks map[string]*pyast.Function) []string {
	if worker.Variant.MergesInputs() {
		if fn, ok := hooks["consume_work_joined"]; ok {
			if ann := secondParamAnnotation(a.m, fn); ann != nil {
				if info := a.decodeAnnotation(ann); info.IsList && info.Name != "" {
					return []string{info.Name}
				}
			}
		}
	}
	if worker.Variant.LLMBacked() && worker.ClassVars.LLMInputType != "" {
		return []string{worker.ClassVars.LLMInputType}
	}
	if fn, ok := hooks["consume_work"]; ok {
		if ann := secondParamAnnotation(a.m, fn); ann != nil {
			if info := a.decodeAnnotation(ann); info.Name != "" {
				return []string{info.Name}
			}
		}
	}
	return nil
}

func secondParamAnnotation(m *pyast.Module, fn *pyast.Function) *sitter.Node {
	params := m.FunctionParams(fn.Node)
	if len(params) < 2 {
		return nil
	}
	return params[1].Annotation
}
