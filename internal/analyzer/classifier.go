package analyzer

import (
	"github.com/planweave/planweave/internal/ir"
	"github.com/planweave/planweave/internal/pyast"
	"github.com/planweave/planweave/internal/registry"
)

type classKind int

const (
	otherClass classKind = iota
	taskClass
	workerClass
)

// classInfo pairs a parsed class with its classification.
type classInfo struct {
	cls     *pyast.Class
	kind    classKind
	variant ir.VariantKind
}

// classify walks every module-level class once, resolves its transitive
// ancestor set over locally declared classes, and tags it as task, worker
// or neither. Worker classification is checked first so a pathological
// class inheriting both vocabularies lands on the worker side.
func (a *analysis) classify() {
	defs := map[string]*pyast.Class{}
	for _, cls := range a.m.Classes() {
		defs[cls.Name] = cls
	}

	for _, cls := range a.m.Classes() {
		closure := map[string]struct{}{}
		visited := map[string]struct{}{cls.Name: {}}
		collectAncestors(cls, defs, closure, visited)

		info := &classInfo{cls: cls}
		if kind, ok := registry.VariantForAncestors(closure); ok {
			info.kind = workerClass
			info.variant = kind
		} else if registry.IsTaskAncestors(closure) {
			info.kind = taskClass
		}

		a.classes = append(a.classes, info)
		a.byName[cls.Name] = info
	}

	a.logger.Debug("Classifier resolved module classes.",
		"classes", len(a.classes))
}

// collectAncestors accumulates every base-class name reachable through
// locally declared classes. Imported bases are opaque leaves but their
// names still count. The visited set terminates inheritance cycles.
func collectAncestors(cls *pyast.Class, defs map[string]*pyast.Class, closure, visited map[string]struct{}) {
	for _, base := range cls.Bases {
		closure[base] = struct{}{}
		if _, seen := visited[base]; seen {
			continue
		}
		visited[base] = struct{}{}
		if local, ok := defs[base]; ok {
			collectAncestors(local, defs, closure, visited)
		}
	}
}
