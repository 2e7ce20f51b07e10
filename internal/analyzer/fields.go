package analyzer

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/planweave/planweave/internal/ir"
	"github.com/planweave/planweave/internal/pyast"
	"github.com/planweave/planweave/internal/registry"
)

// extractTask builds a TaskDef from a classified task class. Only
// annotated field statements are modeled; docstrings and any other body
// statements are dropped.
func (a *analysis) extractTask(info *classInfo) ir.TaskDef {
	task := ir.TaskDef{ClassName: info.cls.Name, Fields: []ir.FieldDef{}}

	for _, stmt := range pyast.NamedChildren(info.cls.Body) {
		asn, ok := pyast.AsAssignment(stmt)
		if !ok || asn.Type == nil {
			continue
		}
		name, ok := a.m.Identifier(asn.Left)
		if !ok {
			continue
		}
		if !ir.ValidIdentifier(name) {
			a.logger.Warn("Skipping field with invalid identifier.",
				"class", task.ClassName, "field", name)
			continue
		}

		info := a.decodeAnnotation(asn.Type)
		field := ir.FieldDef{
			Name:          name,
			Type:          info.Name,
			IsList:        info.IsList,
			Required:      !info.IsOptional,
			LiteralValues: info.LiteralValues,
		}
		a.decodeFieldDefault(&field, asn.Right)
		task.Fields = append(task.Fields, field)
	}
	return task
}

// decodeFieldDefault reads the field-declaration value: a Field(...) call
// contributes the description keyword and the explicit-None required
// marker; a direct None default marks the field not required the same way.
func (a *analysis) decodeFieldDefault(field *ir.FieldDef, right *sitter.Node) {
	if right == nil {
		return
	}
	if pyast.IsNone(right) {
		field.Required = false
		return
	}
	call, ok := a.m.DecomposeCall(right)
	if !ok || lastSegment(call.FuncPath) != registry.FieldCallName {
		return
	}
	if len(call.Args) > 0 && pyast.IsNone(call.Args[0]) {
		field.Required = false
	}
	if desc, ok := call.Kwarg("description"); ok {
		if text, ok := a.m.StringLiteral(desc); ok {
			field.Description = text
		}
	}
}
