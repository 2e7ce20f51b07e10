package pyast

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// NamedChildren returns the named children of n with comments dropped.
func NamedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	count := int(n.NamedChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)
		if child == nil || child.Type() == "comment" {
			continue
		}
		out = append(out, child)
	}
	return out
}

// FlattenStatements returns the statements of a block in source order,
// inlining the bodies of try statements (including handler, else and
// finally blocks) so declarations inside them stay visible.
func FlattenStatements(block *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for _, stmt := range NamedChildren(block) {
		if stmt.Type() != "try_statement" {
			out = append(out, stmt)
			continue
		}
		if body := stmt.ChildByFieldName("body"); body != nil {
			out = append(out, FlattenStatements(body)...)
		}
		for _, clause := range NamedChildren(stmt) {
			switch clause.Type() {
			case "except_clause", "else_clause", "finally_clause":
				for _, part := range NamedChildren(clause) {
					if part.Type() == "block" {
						out = append(out, FlattenStatements(part)...)
					}
				}
			}
		}
	}
	return out
}

// Identifier returns n's text when n is a bare identifier.
func (m *Module) Identifier(n *sitter.Node) (string, bool) {
	if n == nil || n.Type() != "identifier" {
		return "", false
	}
	return m.Text(n), true
}

// AttributeChain flattens a dotted expression like a.b.c into its segments.
// It returns nil when any link is not an identifier or attribute access.
func (m *Module) AttributeChain(n *sitter.Node) []string {
	switch {
	case n == nil:
		return nil
	case n.Type() == "identifier":
		return []string{m.Text(n)}
	case n.Type() == "attribute":
		object := m.AttributeChain(n.ChildByFieldName("object"))
		if object == nil {
			return nil
		}
		attr, ok := m.Identifier(n.ChildByFieldName("attribute"))
		if !ok {
			return nil
		}
		return append(object, attr)
	}
	return nil
}

// Assignment describes `left = right`, optionally annotated.
type Assignment struct {
	Node  *sitter.Node
	Left  *sitter.Node
	Type  *sitter.Node // annotation expression, nil when absent
	Right *sitter.Node // nil for a bare annotation
}

// AsAssignment unwraps an expression_statement holding an assignment.
func AsAssignment(stmt *sitter.Node) (*Assignment, bool) {
	n := stmt
	if n != nil && n.Type() == "expression_statement" {
		children := NamedChildren(n)
		if len(children) != 1 {
			return nil, false
		}
		n = children[0]
	}
	if n == nil || n.Type() != "assignment" {
		return nil, false
	}
	return &Assignment{
		Node:  n,
		Left:  n.ChildByFieldName("left"),
		Type:  unwrapTypeNode(n.ChildByFieldName("type")),
		Right: n.ChildByFieldName("right"),
	}, true
}

// unwrapTypeNode strips the grammar's `type` wrapper around annotation
// expressions.
func unwrapTypeNode(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	if n.Type() == "type" {
		if children := NamedChildren(n); len(children) == 1 {
			return children[0]
		}
	}
	return n
}

// Subscript splits `value[e1, e2, ...]` into its value and elements.
func Subscript(n *sitter.Node) (value *sitter.Node, elems []*sitter.Node, ok bool) {
	if n == nil || n.Type() != "subscript" {
		return nil, nil, false
	}
	value = n.ChildByFieldName("value")
	if value == nil {
		return nil, nil, false
	}
	for _, child := range NamedChildren(n) {
		if child.StartByte() == value.StartByte() && child.EndByte() == value.EndByte() {
			continue
		}
		elems = append(elems, child)
	}
	return value, elems, true
}

// Param is one function parameter.
type Param struct {
	Name       string
	Annotation *sitter.Node // nil when untyped
}

// FunctionParams returns the parameters of a function_definition in
// declaration order, ignoring splat and separator markers.
func (m *Module) FunctionParams(fn *sitter.Node) []Param {
	params := fn.ChildByFieldName("parameters")
	if params == nil {
		return nil
	}
	var out []Param
	for _, p := range NamedChildren(params) {
		switch p.Type() {
		case "identifier":
			out = append(out, Param{Name: m.Text(p)})
		case "typed_parameter":
			var name string
			if children := NamedChildren(p); len(children) > 0 {
				name, _ = m.Identifier(children[0])
			}
			if name == "" {
				continue
			}
			out = append(out, Param{Name: name, Annotation: unwrapTypeNode(p.ChildByFieldName("type"))})
		case "default_parameter":
			if name, ok := m.Identifier(p.ChildByFieldName("name")); ok {
				out = append(out, Param{Name: name})
			}
		case "typed_default_parameter":
			if name, ok := m.Identifier(p.ChildByFieldName("name")); ok {
				out = append(out, Param{Name: name, Annotation: unwrapTypeNode(p.ChildByFieldName("type"))})
			}
		}
	}
	return out
}

// Class describes a class_definition.
type Class struct {
	Node  *sitter.Node
	Name  string
	Bases []string
	Body  *sitter.Node
}

// Function describes a function_definition.
type Function struct {
	Node *sitter.Node
	Name string
	Body *sitter.Node
}

// unwrapDecorated returns the wrapped definition of a decorated_definition,
// or n unchanged.
func unwrapDecorated(n *sitter.Node) *sitter.Node {
	if n != nil && n.Type() == "decorated_definition" {
		if def := n.ChildByFieldName("definition"); def != nil {
			return def
		}
	}
	return n
}

// ClassAt decomposes n (possibly decorated) as a class definition. Base
// names keep only the final segment of dotted references; keyword
// arguments in the base list are skipped.
func (m *Module) ClassAt(n *sitter.Node) (*Class, bool) {
	n = unwrapDecorated(n)
	if n == nil || n.Type() != "class_definition" {
		return nil, false
	}
	name, ok := m.Identifier(n.ChildByFieldName("name"))
	if !ok {
		return nil, false
	}
	cls := &Class{Node: n, Name: name, Body: n.ChildByFieldName("body")}
	if supers := n.ChildByFieldName("superclasses"); supers != nil {
		for _, arg := range NamedChildren(supers) {
			if arg.Type() == "keyword_argument" {
				continue
			}
			if chain := m.AttributeChain(arg); len(chain) > 0 {
				cls.Bases = append(cls.Bases, chain[len(chain)-1])
			}
		}
	}
	return cls, true
}

// FunctionAt decomposes n (possibly decorated) as a function definition.
func (m *Module) FunctionAt(n *sitter.Node) (*Function, bool) {
	n = unwrapDecorated(n)
	if n == nil || n.Type() != "function_definition" {
		return nil, false
	}
	name, ok := m.Identifier(n.ChildByFieldName("name"))
	if !ok {
		return nil, false
	}
	return &Function{Node: n, Name: name, Body: n.ChildByFieldName("body")}, true
}

// Classes returns every module-level class definition in source order.
func (m *Module) Classes() []*Class {
	var out []*Class
	for _, n := range NamedChildren(m.root) {
		if cls, ok := m.ClassAt(n); ok {
			out = append(out, cls)
		}
	}
	return out
}

// Functions returns every module-level function definition in source order.
func (m *Module) Functions() []*Function {
	var out []*Function
	for _, n := range NamedChildren(m.root) {
		if fn, ok := m.FunctionAt(n); ok {
			out = append(out, fn)
		}
	}
	return out
}

// DocstringText returns the docstring value when stmt is a bare string
// expression statement.
func (m *Module) DocstringText(stmt *sitter.Node) (string, bool) {
	if stmt == nil || stmt.Type() != "expression_statement" {
		return "", false
	}
	children := NamedChildren(stmt)
	if len(children) != 1 {
		return "", false
	}
	return m.StringLiteral(children[0])
}

// dottedName joins an attribute chain back into source form.
func dottedName(chain []string) string {
	return strings.Join(chain, ".")
}
