package registry

import "github.com/planweave/planweave/internal/ir"

// Fixed names of the target framework.
const (
	TaskBaseName         = "Task"
	GraphConstructorName = "Graph"
	GraphVariableName    = "graph"
	LLMConfigBuilderName = "llm_from_config"
	FieldCallName        = "Field"
	DedentCallName       = "dedent"
	FrameworkModule      = "planai"
)

// Annotation wrapper names recognized by the decoder.
const (
	OptionalWrapperName = "Optional"
	LiteralWrapperName  = "Literal"
)

// ListWrapperNames are the accepted list-annotation spellings. Synthesis
// always emits the first one.
var ListWrapperNames = []string{"List", "list"}

// IsListWrapper reports whether name spells the list annotation.
func IsListWrapper(name string) bool {
	for _, w := range ListWrapperNames {
		if name == w {
			return true
		}
	}
	return false
}

// VariantRule pairs a framework base-class name with the variant it implies.
type VariantRule struct {
	BaseName string
	Kind     ir.VariantKind
}

// VariantPriority is the fixed classification order: the first base name
// found in a class's resolved ancestor set decides its variant. The order
// is part of the framework contract and must not be rearranged. The chat
// variant is deliberately absent; it is only ever introduced by factory
// table entries and editor payloads.
var VariantPriority = []VariantRule{
	{BaseName: "CachedLLMTaskWorker", Kind: ir.VariantCachedLLMTaskWorker},
	{BaseName: "CachedTaskWorker", Kind: ir.VariantCachedTaskWorker},
	{BaseName: "LLMTaskWorker", Kind: ir.VariantLLMTaskWorker},
	{BaseName: "JoinedTaskWorker", Kind: ir.VariantJoinedTaskWorker},
	{BaseName: "SubGraphWorker", Kind: ir.VariantSubGraphWorker},
	{BaseName: "TaskWorker", Kind: ir.VariantTaskWorker},
}

// VariantForAncestors resolves an ancestor-name set to a worker variant
// using the fixed priority order.
func VariantForAncestors(names map[string]struct{}) (ir.VariantKind, bool) {
	for _, rule := range VariantPriority {
		if _, ok := names[rule.BaseName]; ok {
			return rule.Kind, true
		}
	}
	return "", false
}

// IsTaskAncestors reports whether the ancestor-name set contains the record
// base class.
func IsTaskAncestors(names map[string]struct{}) bool {
	_, ok := names[TaskBaseName]
	return ok
}

var variantBaseName = map[ir.VariantKind]string{
	ir.VariantTaskWorker:          "TaskWorker",
	ir.VariantCachedTaskWorker:    "CachedTaskWorker",
	ir.VariantLLMTaskWorker:       "LLMTaskWorker",
	ir.VariantCachedLLMTaskWorker: "CachedLLMTaskWorker",
	ir.VariantJoinedTaskWorker:    "JoinedTaskWorker",
	ir.VariantSubGraphWorker:      "SubGraphWorker",
	ir.VariantChatTaskWorker:      "ChatTaskWorker",
}

// WorkerBaseName returns the framework base class a variant synthesizes to.
func WorkerBaseName(kind ir.VariantKind) (string, bool) {
	name, ok := variantBaseName[kind]
	return name, ok
}

var primitiveFromAnnotation = map[string]string{
	"str":   "string",
	"int":   "integer",
	"float": "float",
	"bool":  "boolean",
}

var annotationFromPrimitive = map[string]string{
	"string":  "str",
	"integer": "int",
	"float":   "float",
	"boolean": "bool",
}

// PrimitiveFromAnnotation maps a source type name to its IR primitive.
func PrimitiveFromAnnotation(name string) (string, bool) {
	p, ok := primitiveFromAnnotation[name]
	return p, ok
}

// AnnotationFromPrimitive maps an IR primitive back to its source spelling.
func AnnotationFromPrimitive(name string) (string, bool) {
	a, ok := annotationFromPrimitive[name]
	return a, ok
}

// ClassVarKeys are the recognized worker class variables, in canonical
// emission order.
var ClassVarKeys = []string{
	"output_types",
	"input_types",
	"llm_input_type",
	"llm_output_type",
	"prompt",
	"system_prompt",
	"debug_mode",
	"use_xml",
	"join_type",
	"tools",
}

// IsClassVarKey reports whether name is a recognized class variable.
func IsClassVarKey(name string) bool {
	for _, key := range ClassVarKeys {
		if name == key {
			return true
		}
	}
	return false
}

// MethodNames are the recognized lifecycle hooks, in canonical emission
// order.
var MethodNames = []string{
	"consume_work",
	"consume_work_joined",
	"pre_process",
	"post_process",
	"format_prompt",
	"extra_validation",
	"extra_cache_key",
}

// IsMethodName reports whether name is a recognized lifecycle hook.
func IsMethodName(name string) bool {
	for _, method := range MethodNames {
		if name == method {
			return true
		}
	}
	return false
}

// GraphMethodNames are the wiring calls whose presence marks the
// graph-builder function.
var GraphMethodNames = []string{"add_workers", "set_dependency", "set_entry", "set_sink", "run"}

// IsGraphMethod reports whether name is one of the recognized wiring calls.
func IsGraphMethod(name string) bool {
	for _, method := range GraphMethodNames {
		if name == method {
			return true
		}
	}
	return false
}

// frameworkNames is every fixed name above that can appear in an import or
// base-class position without being a task reference.
var frameworkNames = func() map[string]struct{} {
	names := map[string]struct{}{
		TaskBaseName:         {},
		GraphConstructorName: {},
		LLMConfigBuilderName: {},
	}
	for _, base := range variantBaseName {
		names[base] = struct{}{}
	}
	return names
}()

// IsFrameworkName reports whether name belongs to the framework vocabulary
// rather than to user task/worker space.
func IsFrameworkName(name string) bool {
	_, ok := frameworkNames[name]
	return ok
}
