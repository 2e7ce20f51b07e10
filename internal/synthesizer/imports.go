package synthesizer

import "strings"

// emitHeader renders the import block. It runs after the class and
// pipeline sections so every registered need is known. Stdlib imports for
// the run protocol come first, then grouped framework imports, then
// preserved passthrough lines.
func (s *synthesis) emitHeader(e *emitter) {
	for i := range s.g.ImportedTasks {
		ref := &s.g.ImportedTasks[i]
		s.addModuleImport(ref.ModulePath, ref.ClassName)
	}

	var lines []string
	add := func(text string) { lines = append(lines, text) }

	add("# Generated by planweave. Structural edits may be overwritten.")
	add("")
	add("import json")
	add("import sys")
	add("import traceback")
	if s.needs.dedent {
		add("from textwrap import dedent")
	}
	if typing := s.typingNames(); len(typing) > 0 {
		add("from typing import " + strings.Join(typing, ", "))
	}
	add("")
	if s.needs.field {
		add("from pydantic import Field")
	}
	for _, line := range s.groupedImportLines() {
		add(line)
	}

	seen := make(map[string]bool, len(lines))
	for _, line := range lines {
		seen[strings.TrimSpace(line)] = true
	}
	for _, line := range s.g.PassthroughImports {
		key := strings.TrimSpace(line)
		if seen[key] {
			continue
		}
		seen[key] = true
		add(line)
	}
	e.putAll(0, lines)
}

func (s *synthesis) typingNames() []string {
	var out []string
	for _, name := range []string{"List", "Literal", "Optional"} {
		if s.needs.typing[name] {
			out = append(out, name)
		}
	}
	return out
}

func (s *synthesis) groupedImportLines() []string {
	var out []string
	for _, module := range sortedKeys(s.needs.modules) {
		names := sortedKeys(s.needs.modules[module])
		out = append(out, "from "+module+" import "+strings.Join(names, ", "))
	}
	return out
}
