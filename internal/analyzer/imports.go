package analyzer

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/planweave/planweave/internal/ir"
	"github.com/planweave/planweave/internal/pyast"
	"github.com/planweave/planweave/internal/registry"
)

// extractImports scans module-level import statements. Allow-listed
// class imports become ImportedTaskRefs; everything else is kept as
// verbatim passthrough text so synthesis can replay it unchanged.
func (a *analysis) extractImports() {
	for _, stmt := range pyast.NamedChildren(a.m.Root()) {
		switch stmt.Type() {
		case "import_statement":
			a.extractPlainImport(stmt)
		case "import_from_statement":
			a.extractFromImport(stmt)
		}
	}
}

// extractPlainImport handles `import x` forms. A statement importing only
// allowed framework modules is dropped (the synthesized header recreates
// those); aliases and unknown modules pass through.
func (a *analysis) extractPlainImport(stmt *sitter.Node) {
	for _, child := range pyast.NamedChildren(stmt) {
		if child.Type() != "dotted_name" || !a.isAllowedModule(a.m.Text(child)) {
			a.passthroughImport(stmt)
			return
		}
	}
}

// extractFromImport handles `from mod import ...`. Allow-listed names
// become task references, framework and factory names are recognized
// without one, and a single unallowed or aliased name degrades the whole
// statement to passthrough while keeping any references already made.
func (a *analysis) extractFromImport(stmt *sitter.Node) {
	moduleNode := stmt.ChildByFieldName("module_name")
	if moduleNode == nil || moduleNode.Type() != "dotted_name" {
		a.passthroughImport(stmt)
		return
	}
	module := a.m.Text(moduleNode)
	if !a.isAllowedModule(module) {
		a.passthroughImport(stmt)
		return
	}

	keep := false
	for _, child := range pyast.NamedChildren(stmt) {
		if child.StartByte() == moduleNode.StartByte() && child.EndByte() == moduleNode.EndByte() {
			continue
		}
		if child.Type() != "dotted_name" {
			// Aliased and wildcard imports stay verbatim.
			keep = true
			continue
		}
		name := a.m.Text(child)
		if !a.reg.IsAllowed(module, name) {
			a.logger.Warn("Imported name is not on the allow list, keeping statement as passthrough.",
				"module", module, "name", name)
			keep = true
			continue
		}
		a.addExplicitRef(module, name)
	}
	if keep {
		a.passthroughImport(stmt)
	}
}

func (a *analysis) isAllowedModule(module string) bool {
	for _, m := range a.reg.AllowedModules() {
		if m == module {
			return true
		}
	}
	return false
}

// addExplicitRef records an allow-listed import. Framework vocabulary and
// factory functions are recognized but are not task references.
func (a *analysis) addExplicitRef(module, name string) {
	if registry.IsFrameworkName(name) {
		return
	}
	if _, ok := a.reg.Factory(name); ok {
		return
	}
	a.addImportedRef(ir.ImportedTaskRef{ModulePath: module, ClassName: name})
}

// addImportedRef appends ref unless the class is already referenced. An
// explicit sighting upgrades an earlier implicit one.
func (a *analysis) addImportedRef(ref ir.ImportedTaskRef) {
	for i := range a.graph.ImportedTasks {
		prev := &a.graph.ImportedTasks[i]
		if prev.ClassName == ref.ClassName {
			if !ref.IsImplicit {
				prev.IsImplicit = false
			}
			return
		}
	}
	a.graph.ImportedTasks = append(a.graph.ImportedTasks, ref)
}

func (a *analysis) passthroughImport(stmt *sitter.Node) {
	line := strings.Join(a.m.LinesOf(stmt), "\n")
	for _, prev := range a.graph.PassthroughImports {
		if prev == line {
			return
		}
	}
	a.graph.PassthroughImports = append(a.graph.PassthroughImports, line)
}

// addImplicitImports scans the extracted graph for type names that are
// neither declared locally nor explicitly imported, resolving them
// against the allow list. Names that resolve nowhere only warn; partial
// graphs stay useful.
func (a *analysis) addImplicitImports() {
	for _, name := range a.referencedTypeNames() {
		if a.typeKnownLocally(name) {
			continue
		}
		module, ok := a.reg.TaskImportModule(name)
		if !ok {
			a.logger.Warn("Type reference resolves to neither a local class nor an allowed import.",
				"type", name)
			continue
		}
		a.addImportedRef(ir.ImportedTaskRef{ModulePath: module, ClassName: name, IsImplicit: true})
	}
}

// referencedTypeNames lists every class-like type name the graph mentions,
// in first-mention order. Primitive type names, the literal marker and
// non-identifier passthrough annotations are skipped.
func (a *analysis) referencedTypeNames() []string {
	var names []string
	seen := map[string]struct{}{}
	add := func(name string) {
		if name == "" || name == ir.TypeLiteral {
			return
		}
		if _, isPrimitive := registry.AnnotationFromPrimitive(name); isPrimitive {
			return
		}
		if !ir.ValidIdentifier(name) {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	for _, task := range a.graph.Tasks {
		for _, field := range task.Fields {
			add(field.Type)
		}
	}
	for _, worker := range a.graph.Workers {
		for _, n := range worker.ClassVars.OutputTypes {
			add(n)
		}
		for _, n := range worker.ClassVars.InputTypes {
			add(n)
		}
		add(worker.ClassVars.LLMInputType)
		add(worker.ClassVars.LLMOutputType)
		add(worker.ClassVars.JoinType)
		for _, n := range worker.InputTypes {
			add(n)
		}
	}
	for _, entry := range a.graph.EntryEdges {
		add(entry.SourceTask)
	}
	return names
}

// typeKnownLocally reports whether name is declared in the analyzed
// module or already imported.
func (a *analysis) typeKnownLocally(name string) bool {
	if _, ok := a.byName[name]; ok {
		return true
	}
	return a.graph.ImportedTask(name) != nil
}
