package synthesizer

import (
	"context"
	"log/slog"
	"sort"

	"github.com/planweave/planweave/internal/ctxlog"
	"github.com/planweave/planweave/internal/ir"
	"github.com/planweave/planweave/internal/pyast"
	"github.com/planweave/planweave/internal/pyfmt"
	"github.com/planweave/planweave/internal/registry"
)

const defaultModuleName = "generated_plan"

// Result is a successful synthesis.
type Result struct {
	Source     string
	ModuleName string
}

// Synthesize decodes a graph payload and emits formatted Python source.
func Synthesize(ctx context.Context, reg *registry.Registry, payload *ir.GraphPayload) (*Result, error) {
	graph, err := payload.Decode()
	if err != nil {
		return nil, err
	}
	return SynthesizeGraph(ctx, reg, graph)
}

// SynthesizeGraph emits formatted Python source for an already decoded
// graph. Structural defects in the payload surface as faults; unresolved
// references degrade to warnings and the affected statement is dropped.
func SynthesizeGraph(ctx context.Context, reg *registry.Registry, g *ir.Graph) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	if fault := validate(g); fault != nil {
		logger.Warn("Refusing to synthesize an invalid graph.", "kind", fault.Kind, "error", fault.Message)
		return nil, fault
	}
	s := &synthesis{
		reg:    reg,
		logger: logger,
		g:      prune(logger, g),
		needs:  newImportNeeds(),
	}
	s.vars = workerVarNames(s.g)

	formatted, err := pyfmt.Format(ctx, s.emitModule())
	if err != nil {
		return nil, err
	}
	logger.Debug("Synthesis complete.",
		"module", s.moduleName(),
		"tasks", len(s.g.Tasks),
		"workers", len(s.g.Workers),
		"edges", len(s.g.Edges))
	return &Result{Source: formatted, ModuleName: s.moduleName()}, nil
}

// validate rejects graphs whose generated class or field names would not
// be legal Python, and structural contradictions the runtime could never
// execute.
func validate(g *ir.Graph) *ir.Fault {
	declared := map[string]bool{}
	for i := range g.Tasks {
		task := &g.Tasks[i]
		if fault := ir.CheckIdentifier(task.ClassName, "task class name"); fault != nil {
			return fault.WithNode(task.ClassName)
		}
		if declared[task.ClassName] {
			return ir.NewFault(ir.FaultPayload, "class %q is declared more than once",
				task.ClassName).WithNode(task.ClassName)
		}
		declared[task.ClassName] = true
		for j := range task.Fields {
			if fault := ir.CheckIdentifier(task.Fields[j].Name, "field name"); fault != nil {
				return fault.WithNode(task.ClassName)
			}
		}
	}
	for i := range g.Workers {
		w := &g.Workers[i]
		if fault := ir.CheckIdentifier(w.ClassName, "worker class name"); fault != nil {
			return fault.WithNode(w.ClassName)
		}
		if declared[w.ClassName] {
			return ir.NewFault(ir.FaultPayload, "class %q is declared more than once",
				w.ClassName).WithNode(w.ClassName)
		}
		declared[w.ClassName] = true
		if _, ok := registry.WorkerBaseName(w.Variant); !ok {
			return ir.NewFault(ir.FaultPayload, "worker %q has unknown variant %q",
				w.ClassName, w.Variant).WithNode(w.ClassName)
		}
		if len(w.InputTypes) > 1 && !w.Variant.MergesInputs() {
			return ir.NewFault(ir.FaultMultipleInputs,
				"worker %q declares %d input types but variant %q consumes a single type",
				w.ClassName, len(w.InputTypes), w.Variant).WithNode(w.ClassName)
		}
	}
	for i := range g.ImportedTasks {
		ref := &g.ImportedTasks[i]
		if fault := ir.CheckIdentifier(ref.ClassName, "imported class name"); fault != nil {
			return fault.WithNode(ref.ClassName)
		}
	}
	return nil
}

// prune returns a shallow copy of g with edges and entry edges whose
// endpoints do not resolve removed. The caller's graph is not mutated.
func prune(logger *slog.Logger, g *ir.Graph) *ir.Graph {
	clean := *g
	clean.Edges = nil
	for _, edge := range g.Edges {
		if g.Worker(edge.Source) == nil || g.Worker(edge.Target) == nil {
			logger.Warn("Dropping edge with an unresolved endpoint.",
				"source", edge.Source, "target", edge.Target)
			continue
		}
		clean.Edges = append(clean.Edges, edge)
	}
	clean.EntryEdges = nil
	for _, entry := range g.EntryEdges {
		if g.Worker(entry.TargetWorker) == nil {
			logger.Warn("Dropping entry edge with an unresolved worker.", "worker", entry.TargetWorker)
			continue
		}
		if !g.ResolvesType(entry.SourceTask) {
			logger.Warn("Dropping entry edge with an unresolved source task.",
				"task", entry.SourceTask, "worker", entry.TargetWorker)
			continue
		}
		clean.EntryEdges = append(clean.EntryEdges, entry)
	}
	return &clean
}

// synthesis carries the state of one emission run.
type synthesis struct {
	reg    *registry.Registry
	logger *slog.Logger
	g      *ir.Graph
	vars   map[string]string
	needs  *importNeeds
}

// importNeeds records which imports the emitted body requires. The
// header is rendered last, once the class and pipeline sections have
// registered everything they reference.
type importNeeds struct {
	dedent  bool
	field   bool
	typing  map[string]bool
	modules map[string]map[string]bool
}

func newImportNeeds() *importNeeds {
	return &importNeeds{
		typing:  map[string]bool{},
		modules: map[string]map[string]bool{},
	}
}

func (s *synthesis) addModuleImport(module, name string) {
	if s.needs.modules[module] == nil {
		s.needs.modules[module] = map[string]bool{}
	}
	s.needs.modules[module][name] = true
}

func (s *synthesis) moduleName() string {
	if s.g.ModuleName != "" {
		return s.g.ModuleName
	}
	return defaultModuleName
}

func (s *synthesis) emitModule() string {
	var classes emitter
	s.emitTasks(&classes)
	s.emitWorkers(&classes)

	var pipeline emitter
	s.emitPipeline(&pipeline)

	var out emitter
	s.emitHeader(&out)
	out.lines = append(out.lines, classes.lines...)
	out.lines = append(out.lines, pipeline.lines...)
	return out.text()
}

// bareLiteral reports whether a literal value renders without quoting.
func bareLiteral(value string) bool {
	if value == "True" || value == "False" || value == "None" {
		return true
	}
	return pyast.IsNumericLiteral(value)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
