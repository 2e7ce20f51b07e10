package synthesizer

import (
	"sort"
	"strings"

	"github.com/planweave/planweave/internal/ir"
	"github.com/planweave/planweave/internal/pyast"
	"github.com/planweave/planweave/internal/registry"
)

func (s *synthesis) emitTasks(e *emitter) {
	for i := range s.g.Tasks {
		e.blank()
		e.blank()
		s.emitTask(e, &s.g.Tasks[i])
	}
}

func (s *synthesis) emitTask(e *emitter, task *ir.TaskDef) {
	s.addModuleImport(registry.FrameworkModule, registry.TaskBaseName)
	e.put(0, "class "+task.ClassName+"("+registry.TaskBaseName+"):")
	if len(task.Fields) == 0 {
		e.put(1, "pass")
		return
	}
	for i := range task.Fields {
		e.put(1, s.fieldLine(&task.Fields[i]))
	}
}

func (s *synthesis) fieldLine(f *ir.FieldDef) string {
	line := f.Name + ": " + s.fieldAnnotation(f)
	switch {
	case !f.Required && f.Description != "":
		s.needs.field = true
		line += " = Field(None, description=" + pyast.Quote(f.Description) + ")"
	case !f.Required:
		s.needs.field = true
		line += " = Field(None)"
	case f.Description != "":
		s.needs.field = true
		line += " = Field(..., description=" + pyast.Quote(f.Description) + ")"
	}
	return line
}

func (s *synthesis) fieldAnnotation(f *ir.FieldDef) string {
	base := f.Type
	if f.Type == ir.TypeLiteral {
		s.needs.typing["Literal"] = true
		base = "Literal[" + strings.Join(literalElems(f.LiteralValues), ", ") + "]"
	} else if ann, ok := registry.AnnotationFromPrimitive(f.Type); ok {
		base = ann
	}
	if f.IsList {
		s.needs.typing["List"] = true
		base = "List[" + base + "]"
	}
	if !f.Required {
		s.needs.typing["Optional"] = true
		base = "Optional[" + base + "]"
	}
	return base
}

// literalElems renders literal-set members: numbers and the three keyword
// constants stay bare, everything else is quoted.
func literalElems(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if bareLiteral(v) {
			out = append(out, v)
		} else {
			out = append(out, pyast.Quote(v))
		}
	}
	return out
}

func (s *synthesis) emitWorkers(e *emitter) {
	for i := range s.g.Workers {
		w := &s.g.Workers[i]
		if w.FactoryFunction != "" {
			// Factory-built workers have no class of their own.
			continue
		}
		e.blank()
		e.blank()
		s.emitWorker(e, w)
	}
}

func (s *synthesis) emitWorker(e *emitter, w *ir.WorkerDef) {
	base, _ := registry.WorkerBaseName(w.Variant)
	s.addModuleImport(registry.FrameworkModule, base)
	e.put(0, "class "+w.ClassName+"("+base+"):")

	start := len(e.lines)
	s.emitClassVars(e, w)
	if w.RawPassthroughSource != "" {
		if len(e.lines) > start {
			e.blank()
		}
		e.putBlock(1, w.RawPassthroughSource)
	}
	for _, name := range methodOrder(w.Methods) {
		e.blank()
		s.emitMethod(e, w, name, w.Methods[name])
	}
	s.emitConsumeStub(e, w, start)
	if len(e.lines) == start {
		e.put(1, "pass")
	}
}

// emitClassVars writes the recognized class variables in canonical order.
func (s *synthesis) emitClassVars(e *emitter, w *ir.WorkerDef) {
	v := &w.ClassVars
	if names := s.typeNameList(w.ClassName, "output_types", v.OutputTypes); len(names) > 0 {
		e.put(1, "output_types = ["+strings.Join(names, ", ")+"]")
	}
	if names := s.typeNameList(w.ClassName, "input_types", v.InputTypes); len(names) > 0 {
		e.put(1, "input_types = ["+strings.Join(names, ", ")+"]")
	}
	if s.typeNameOK(w.ClassName, "llm_input_type", v.LLMInputType) {
		e.put(1, "llm_input_type = "+v.LLMInputType)
	}
	if s.typeNameOK(w.ClassName, "llm_output_type", v.LLMOutputType) {
		e.put(1, "llm_output_type = "+v.LLMOutputType)
	}
	if v.Prompt != "" {
		s.emitPromptVar(e, "prompt", v.Prompt)
	}
	if v.SystemPrompt != "" {
		s.emitPromptVar(e, "system_prompt", v.SystemPrompt)
	}
	if v.DebugMode != nil {
		e.put(1, "debug_mode = "+pyBool(*v.DebugMode))
	}
	if v.UseXML != nil {
		e.put(1, "use_xml = "+pyBool(*v.UseXML))
	}
	if s.typeNameOK(w.ClassName, "join_type", v.JoinType) {
		e.put(1, "join_type = "+v.JoinType)
	}
	if names := s.dottedNameList(w.ClassName, "tools", v.Tools); len(names) > 0 {
		e.put(1, "tools = ["+strings.Join(names, ", ")+"]")
	}
}

func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func (s *synthesis) typeNameOK(worker, key, name string) bool {
	if name == "" {
		return false
	}
	if !ir.ValidIdentifier(name) {
		s.logger.Warn("Skipping class variable with an invalid type name.",
			"worker", worker, "key", key, "name", name)
		return false
	}
	return true
}

func (s *synthesis) typeNameList(worker, key string, names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if s.typeNameOK(worker, key, name) {
			out = append(out, name)
		}
	}
	return out
}

func (s *synthesis) dottedNameList(worker, key string, names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name != "" && validDottedName(name) {
			out = append(out, name)
			continue
		}
		s.logger.Warn("Skipping class variable with an invalid callable name.",
			"worker", worker, "key", key, "name", name)
	}
	return out
}

func validDottedName(name string) bool {
	for _, segment := range strings.Split(name, ".") {
		if !ir.ValidIdentifier(segment) {
			return false
		}
	}
	return true
}

// emitPromptVar writes a prompt class variable. Multi-line text wraps in
// dedent("""...""").strip() so the stored text decodes back unchanged.
func (s *synthesis) emitPromptVar(e *emitter, key, text string) {
	if !strings.Contains(text, "\n") {
		e.put(1, key+" = "+pyast.Quote(text))
		return
	}
	s.needs.dedent = true
	e.put(1, key+` = dedent("""`)
	for _, line := range strings.Split(pyast.EscapeTripleBody(text), "\n") {
		if strings.TrimSpace(line) == "" {
			e.put(0, "")
			continue
		}
		e.put(2, line)
	}
	e.put(1, `""").strip()`)
}

// methodOrder yields recognized hook names in canonical order, then any
// remaining names sorted.
func methodOrder(methods map[string]string) []string {
	var out []string
	for _, name := range registry.MethodNames {
		if _, ok := methods[name]; ok {
			out = append(out, name)
		}
	}
	var rest []string
	for name := range methods {
		if !registry.IsMethodName(name) {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func (s *synthesis) emitMethod(e *emitter, w *ir.WorkerDef, name, source string) {
	trimmed := strings.TrimSpace(source)
	if strings.HasPrefix(trimmed, "def ") || strings.HasPrefix(trimmed, "async def ") ||
		strings.HasPrefix(trimmed, "@") {
		e.putBlock(1, source)
		return
	}
	// Bare body text: reconstruct the canonical hook signature around it.
	e.put(1, s.hookSignature(w, name))
	if trimmed == "" {
		e.put(2, "pass")
		return
	}
	e.putBlock(2, source)
}

func (s *synthesis) hookSignature(w *ir.WorkerDef, name string) string {
	input := ""
	if len(w.InputTypes) > 0 {
		input = w.InputTypes[0]
	}
	switch name {
	case "consume_work":
		if input != "" {
			return "def consume_work(self, task: " + input + "):"
		}
		return "def consume_work(self, task):"
	case "consume_work_joined":
		if input != "" {
			s.needs.typing["List"] = true
			return "def consume_work_joined(self, tasks: List[" + input + "]):"
		}
		return "def consume_work_joined(self, tasks):"
	case "pre_process", "post_process", "format_prompt", "extra_cache_key":
		return "def " + name + "(self, task):"
	case "extra_validation":
		return "def extra_validation(self, response, task):"
	}
	return "def " + name + "(self):"
}

// emitConsumeStub adds a typed consume hook when the variant requires one
// and no stored method provides it, so the emitted module stays runnable
// and re-analysis infers the same input type.
func (s *synthesis) emitConsumeStub(e *emitter, w *ir.WorkerDef, bodyStart int) {
	if w.Variant.LLMBacked() || w.Variant == ir.VariantSubGraphWorker {
		return
	}
	hook := "consume_work"
	if w.Variant.MergesInputs() {
		hook = "consume_work_joined"
	}
	if _, ok := w.Methods[hook]; ok {
		return
	}
	if len(e.lines) > bodyStart {
		e.blank()
	}
	e.put(1, s.hookSignature(w, hook))
	e.put(2, "pass")
}
