package synthesizer

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/planweave/planweave/internal/ir"
)

const indentUnit = "    "

// emitter accumulates generated lines. Indentation is applied per line so
// stored multi-line fragments keep their relative shape.
type emitter struct {
	lines []string
}

func (e *emitter) put(level int, text string) {
	if text == "" {
		e.lines = append(e.lines, "")
		return
	}
	e.lines = append(e.lines, strings.Repeat(indentUnit, level)+text)
}

func (e *emitter) putAll(level int, texts []string) {
	for _, t := range texts {
		e.put(level, t)
	}
}

// putBlock emits a stored multi-line fragment, shifting every non-blank
// line right by level.
func (e *emitter) putBlock(level int, block string) {
	for _, line := range strings.Split(block, "\n") {
		if strings.TrimSpace(line) == "" {
			e.put(0, "")
			continue
		}
		e.put(level, line)
	}
}

func (e *emitter) blank() {
	e.lines = append(e.lines, "")
}

func (e *emitter) text() string {
	return strings.Join(e.lines, "\n") + "\n"
}

// reservedVarNames are identifiers the pipeline function binds itself.
var reservedVarNames = []string{"graph", "initial_tasks", "e"}

// workerVarNames assigns a distinct instance-variable name to every
// worker. Recorded variable names win when they are usable; the rest
// derive from the class name.
func workerVarNames(g *ir.Graph) map[string]string {
	used := map[string]bool{}
	for _, name := range reservedVarNames {
		used[name] = true
	}
	for i := range g.Workers {
		if v := g.Workers[i].LLMConfigVar; ir.ValidIdentifier(v) {
			used[v] = true
		}
	}
	names := make(map[string]string, len(g.Workers))
	for i := range g.Workers {
		w := &g.Workers[i]
		name := w.VariableName
		if !ir.ValidIdentifier(name) || used[name] {
			name = pyVarName(w.ClassName)
		}
		base := name
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		used[name] = true
		names[w.ClassName] = name
	}
	return names
}

// pyVarName derives a snake_case variable from a class name. Acronym runs
// stay together: PlanWorker becomes plan_worker, LLMStep llm_step.
func pyVarName(className string) string {
	var b strings.Builder
	runes := []rune(className)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			boundary := i > 0 &&
				(!unicode.IsUpper(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1])))
			if boundary {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	name := b.String()
	if !ir.ValidIdentifier(name) {
		name += "_worker"
	}
	return name
}
