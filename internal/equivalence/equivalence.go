package equivalence

import (
	"sort"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/planweave/planweave/internal/ir"
)

// Report is the outcome of one graph comparison. Diff is empty when the
// graphs are equivalent; otherwise it is a cmp rendering with the first
// graph on the minus side.
type Report struct {
	Equivalent bool
	Diff       string
}

// Compare checks two graphs for semantic equivalence.
func Compare(a, b *ir.Graph) Report {
	diff := cmp.Diff(viewOf(a), viewOf(b), cmpopts.EquateEmpty())
	return Report{Equivalent: diff == "", Diff: diff}
}

// graphView is the comparable projection of a graph. Slices are sorted so
// declaration order never decides equivalence.
type graphView struct {
	Tasks      []taskView
	Workers    []workerView
	Edges      []ir.Edge
	EntryPairs []entryPair
	Imports    []importRef
}

type taskView struct {
	ClassName string
	Fields    []ir.FieldDef
}

type workerView struct {
	ClassName         string
	Variant           ir.VariantKind
	ClassVars         classVarsView
	InputTypes        []string
	EntryPoint        bool
	FactoryFunction   string
	FactoryInvocation string
	LLMConfigVar      string
	LLMConfigFromCode map[string]ir.LLMArg
}

// classVarsView mirrors ir.ClassVars with prompt text normalized.
type classVarsView struct {
	OutputTypes   []string
	InputTypes    []string
	LLMInputType  string
	LLMOutputType string
	Prompt        string
	SystemPrompt  string
	DebugMode     *bool
	UseXML        *bool
	JoinType      string
	Tools         []string
}

// entryPair is an entry edge without its constructor arguments; those are
// carried text, not structure.
type entryPair struct {
	SourceTask   string
	TargetWorker string
}

type importRef struct {
	ModulePath string
	ClassName  string
}

func viewOf(g *ir.Graph) graphView {
	var v graphView

	for i := range g.Tasks {
		t := &g.Tasks[i]
		v.Tasks = append(v.Tasks, taskView{
			ClassName: t.ClassName,
			Fields:    append([]ir.FieldDef(nil), t.Fields...),
		})
	}
	sort.Slice(v.Tasks, func(i, j int) bool { return v.Tasks[i].ClassName < v.Tasks[j].ClassName })

	for i := range g.Workers {
		w := &g.Workers[i]
		v.Workers = append(v.Workers, workerView{
			ClassName:         w.ClassName,
			Variant:           w.Variant,
			ClassVars:         classVarsOf(&w.ClassVars),
			InputTypes:        append([]string(nil), w.InputTypes...),
			EntryPoint:        w.EntryPoint,
			FactoryFunction:   w.FactoryFunction,
			FactoryInvocation: normalizeText(w.FactoryInvocation),
			LLMConfigVar:      w.LLMConfigVar,
			LLMConfigFromCode: w.LLMConfigFromCode,
		})
	}
	sort.Slice(v.Workers, func(i, j int) bool { return v.Workers[i].ClassName < v.Workers[j].ClassName })

	v.Edges = append(v.Edges, g.Edges...)
	sort.Slice(v.Edges, func(i, j int) bool {
		if v.Edges[i].Source != v.Edges[j].Source {
			return v.Edges[i].Source < v.Edges[j].Source
		}
		if v.Edges[i].Target != v.Edges[j].Target {
			return v.Edges[i].Target < v.Edges[j].Target
		}
		return v.Edges[i].TargetInputType < v.Edges[j].TargetInputType
	})

	for _, ee := range g.EntryEdges {
		v.EntryPairs = append(v.EntryPairs, entryPair{SourceTask: ee.SourceTask, TargetWorker: ee.TargetWorker})
	}
	sort.Slice(v.EntryPairs, func(i, j int) bool {
		if v.EntryPairs[i].SourceTask != v.EntryPairs[j].SourceTask {
			return v.EntryPairs[i].SourceTask < v.EntryPairs[j].SourceTask
		}
		return v.EntryPairs[i].TargetWorker < v.EntryPairs[j].TargetWorker
	})

	for _, ref := range g.ImportedTasks {
		v.Imports = append(v.Imports, importRef{ModulePath: ref.ModulePath, ClassName: ref.ClassName})
	}
	sort.Slice(v.Imports, func(i, j int) bool {
		if v.Imports[i].ModulePath != v.Imports[j].ModulePath {
			return v.Imports[i].ModulePath < v.Imports[j].ModulePath
		}
		return v.Imports[i].ClassName < v.Imports[j].ClassName
	})

	return v
}

func classVarsOf(cv *ir.ClassVars) classVarsView {
	return classVarsView{
		OutputTypes:   cv.OutputTypes,
		InputTypes:    cv.InputTypes,
		LLMInputType:  cv.LLMInputType,
		LLMOutputType: cv.LLMOutputType,
		Prompt:        normalizeText(cv.Prompt),
		SystemPrompt:  normalizeText(cv.SystemPrompt),
		DebugMode:     cv.DebugMode,
		UseXML:        cv.UseXML,
		JoinType:      cv.JoinType,
		Tools:         cv.Tools,
	}
}

// normalizeText strips per-line trailing whitespace and outer blank
// space. The canonical format pass applies the same cleanup to generated
// source, so surviving differences are semantic.
func normalizeText(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
