package ir

// VariantKind identifies which structural category of worker a class
// belongs to. The analyzer assigns it from the resolved ancestor-name set
// via a fixed priority order; it is never guessed from behavior.
type VariantKind string

const (
	VariantTaskWorker          VariantKind = "taskworker"
	VariantCachedTaskWorker    VariantKind = "cachedtaskworker"
	VariantLLMTaskWorker       VariantKind = "llmtaskworker"
	VariantCachedLLMTaskWorker VariantKind = "cachedllmtaskworker"
	VariantJoinedTaskWorker    VariantKind = "joinedtaskworker"
	VariantSubGraphWorker      VariantKind = "subgraphworker"
	VariantChatTaskWorker      VariantKind = "chattaskworker"
)

// KnownVariant reports whether v is one of the recognized worker variants.
func KnownVariant(v VariantKind) bool {
	switch v {
	case VariantTaskWorker, VariantCachedTaskWorker, VariantLLMTaskWorker,
		VariantCachedLLMTaskWorker, VariantJoinedTaskWorker,
		VariantSubGraphWorker, VariantChatTaskWorker:
		return true
	}
	return false
}

// LLMBacked reports whether workers of this variant route their input
// through an LLM and therefore honor the llm_input_type override.
func (v VariantKind) LLMBacked() bool {
	return v == VariantLLMTaskWorker || v == VariantCachedLLMTaskWorker || v == VariantChatTaskWorker
}

// MergesInputs reports whether the variant consumes batches of upstream
// tasks, making more than one declared input type legal.
func (v VariantKind) MergesInputs() bool {
	return v == VariantJoinedTaskWorker
}

// TaskDef is a typed data record definition flowing between workers.
type TaskDef struct {
	ClassName string     `json:"className"`
	Fields    []FieldDef `json:"fields"`
}

// FieldDef is one typed field of a task. Type holds a primitive name
// (string, integer, float, boolean), a task class reference, the marker
// "literal" when LiteralValues is set, or verbatim annotation text the
// decoder passed through.
type FieldDef struct {
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	IsList        bool     `json:"isList"`
	Required      bool     `json:"required"`
	Description   string   `json:"description,omitempty"`
	LiteralValues []string `json:"literalValues,omitempty"`
}

// TypeLiteral is the FieldDef.Type marker for literal-set fields.
const TypeLiteral = "literal"

// ClassVars is the fixed-key map of recognized worker class variables.
// Pointer booleans distinguish "unset" from "set to false"; that distinction
// survives the round trip.
type ClassVars struct {
	OutputTypes   []string `json:"output_types,omitempty"`
	InputTypes    []string `json:"input_types,omitempty"`
	LLMInputType  string   `json:"llm_input_type,omitempty"`
	LLMOutputType string   `json:"llm_output_type,omitempty"`
	Prompt        string   `json:"prompt,omitempty"`
	SystemPrompt  string   `json:"system_prompt,omitempty"`
	DebugMode     *bool    `json:"debug_mode,omitempty"`
	UseXML        *bool    `json:"use_xml,omitempty"`
	JoinType      string   `json:"join_type,omitempty"`
	Tools         []string `json:"tools,omitempty"`
}

// LLMArg is one decoded keyword argument of an LLM configuration-builder
// call. Constant arguments carry their value with IsLiteral set; anything
// else keeps its source text so synthesis can re-emit it unchanged.
type LLMArg struct {
	Value     string `json:"value"`
	IsLiteral bool   `json:"is_literal"`
}

// WorkerDef is a processing node definition.
type WorkerDef struct {
	ClassName    string      `json:"className"`
	VariableName string      `json:"variableName,omitempty"`
	Variant      VariantKind `json:"variantKind"`
	ClassVars    ClassVars   `json:"classVars"`

	// Methods maps recognized lifecycle-hook names to their exact source
	// slices, de-indented to def level. Bodies are opaque to equivalence.
	Methods map[string]string `json:"methods,omitempty"`

	// RawPassthroughSource collects every unrecognized class-body member,
	// de-indented, in source order, separated by blank lines.
	RawPassthroughSource string `json:"rawPassthroughSource,omitempty"`

	// InputTypes is absent, not empty, when inference found nothing.
	InputTypes []string `json:"inputTypes,omitempty"`

	EntryPoint bool `json:"entryPoint"`

	// FactoryFunction and FactoryInvocation are set when the worker was
	// created through a registered factory call; the invocation text is the
	// verbatim argument slice and must survive a round trip byte-for-byte.
	FactoryFunction   string `json:"factoryFunction,omitempty"`
	FactoryInvocation string `json:"factoryInvocation,omitempty"`

	// LLMConfigFromCode holds the decoded llm_from_config keyword arguments
	// when the instantiation passed one through llm=; LLMConfigVar names the
	// variable the config was bound to, when it was not inline. A worker
	// with no llm= keyword carries neither.
	LLMConfigFromCode map[string]LLMArg `json:"llmConfigFromCode,omitempty"`
	LLMConfigVar      string            `json:"llmConfigVar,omitempty"`
}

// Edge is one dependency between two workers, identified by class name.
type Edge struct {
	Source          string `json:"source"`
	Target          string `json:"target"`
	TargetInputType string `json:"targetInputType,omitempty"`
}

// EntryEdge designates a worker as a pipeline entry fed by SourceTask.
// InitArgs preserves the verbatim constructor argument text of the
// run-call's initial task, when one was present.
type EntryEdge struct {
	SourceTask   string `json:"sourceTask"`
	TargetWorker string `json:"targetWorker"`
	InitArgs     string `json:"initArgs,omitempty"`
}

// ImportedTaskRef records an external class admitted through the import
// allow-list. IsImplicit marks names that were referenced without an import
// statement and resolved through the allow-list alone.
type ImportedTaskRef struct {
	ModulePath string `json:"modulePath"`
	ClassName  string `json:"className"`
	IsImplicit bool   `json:"isImplicit"`
}

// Graph is the merged analyzer output for one source module.
type Graph struct {
	ModuleName         string            `json:"moduleName,omitempty"`
	Tasks              []TaskDef         `json:"tasks"`
	Workers            []WorkerDef       `json:"workers"`
	Edges              []Edge            `json:"edges"`
	EntryEdges         []EntryEdge       `json:"entryEdges"`
	ImportedTasks      []ImportedTaskRef `json:"importedTasks"`
	PassthroughImports []string          `json:"passthroughImports,omitempty"`
}

// Task returns the task definition named className, or nil.
func (g *Graph) Task(className string) *TaskDef {
	for i := range g.Tasks {
		if g.Tasks[i].ClassName == className {
			return &g.Tasks[i]
		}
	}
	return nil
}

// Worker returns the worker definition named className, or nil.
func (g *Graph) Worker(className string) *WorkerDef {
	for i := range g.Workers {
		if g.Workers[i].ClassName == className {
			return &g.Workers[i]
		}
	}
	return nil
}

// ImportedTask returns the imported-task reference named className, or nil.
func (g *Graph) ImportedTask(className string) *ImportedTaskRef {
	for i := range g.ImportedTasks {
		if g.ImportedTasks[i].ClassName == className {
			return &g.ImportedTasks[i]
		}
	}
	return nil
}

// ResolvesType reports whether className is declared as a task, a worker or
// an imported-task reference in this graph.
func (g *Graph) ResolvesType(className string) bool {
	return g.Task(className) != nil || g.Worker(className) != nil || g.ImportedTask(className) != nil
}
