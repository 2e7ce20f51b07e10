package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/planweave/planweave/internal/ctxlog"
	"github.com/planweave/planweave/internal/ir"
	"github.com/planweave/planweave/internal/pyast"
	"github.com/planweave/planweave/internal/registry"
)

// analysis carries the state of one AnalyzeSource run. It is built fresh
// per call; the package holds no mutable state between runs.
type analysis struct {
	m      *pyast.Module
	reg    *registry.Registry
	logger *slog.Logger
	graph  *ir.Graph

	classes []*classInfo
	byName  map[string]*classInfo

	// Builder-scope lookups: plain value assignments, worker variable
	// bindings, and recorded llm_from_config results.
	varExprs   map[string]*sitter.Node
	bindings   map[string]string
	llmConfigs map[string]map[string]ir.LLMArg
}

// AnalyzeFile reads path and analyzes its contents. The module name is the
// file's base name without extension.
func AnalyzeFile(ctx context.Context, reg *registry.Registry, path string) (*ir.Graph, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return AnalyzeSource(ctx, reg, src, name)
}

// AnalyzeSource runs the full pipeline over one module's source text:
// classification, task and worker extraction, topology, LLM bindings and
// import resolution. A syntax error aborts with an empty (but non-nil)
// graph and a syntax fault; extraction problems past the parse degrade
// per unit instead of failing the run.
func AnalyzeSource(ctx context.Context, reg *registry.Registry, src []byte, moduleName string) (*ir.Graph, error) {
	logger := ctxlog.FromContext(ctx)
	graph := emptyGraph(moduleName)

	m, err := pyast.Parse(ctx, src)
	if err != nil {
		var syn *pyast.SyntaxError
		if errors.As(err, &syn) {
			logger.Warn("Source does not parse.", "module", moduleName, "line", syn.Line, "column", syn.Column)
			fault := ir.NewFault(ir.FaultSyntax, "%s", syn.Error())
			fault.Line = syn.Line
			fault.Column = syn.Column
			return graph, fault
		}
		return graph, err
	}

	a := &analysis{
		m:          m,
		reg:        reg,
		logger:     logger,
		graph:      graph,
		byName:     map[string]*classInfo{},
		varExprs:   map[string]*sitter.Node{},
		bindings:   map[string]string{},
		llmConfigs: map[string]map[string]ir.LLMArg{},
	}

	a.classify()
	for _, info := range a.classes {
		switch info.kind {
		case taskClass:
			a.graph.Tasks = append(a.graph.Tasks, a.extractTask(info))
		case workerClass:
			a.graph.Workers = append(a.graph.Workers, a.extractWorker(info))
		}
	}
	a.extractTopology()
	a.extractImports()
	a.addImplicitImports()

	logger.Debug("Analysis complete.",
		"module", moduleName,
		"tasks", len(graph.Tasks),
		"workers", len(graph.Workers),
		"edges", len(graph.Edges))
	return graph, nil
}

// emptyGraph allocates a graph whose collections are non-nil, so a syntax
// failure still serializes with empty arrays rather than nulls.
func emptyGraph(moduleName string) *ir.Graph {
	return &ir.Graph{
		ModuleName:    moduleName,
		Tasks:         []ir.TaskDef{},
		Workers:       []ir.WorkerDef{},
		Edges:         []ir.Edge{},
		EntryEdges:    []ir.EntryEdge{},
		ImportedTasks: []ir.ImportedTaskRef{},
	}
}
