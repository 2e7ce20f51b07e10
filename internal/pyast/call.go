package pyast

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Call is one decomposed call expression.
type Call struct {
	Node *sitter.Node
	Func *sitter.Node

	// FuncPath is the flattened dotted callee, nil when the callee is not
	// an identifier/attribute chain; FuncName is its joined form.
	FuncPath []string
	FuncName string

	Args    []*sitter.Node
	Kwargs  map[string]*sitter.Node
	KwOrder []string

	// ArgsText is the verbatim source between the call's parentheses.
	ArgsText string
}

// AsCall unwraps stmt into its call node: a call expression itself, or an
// expression_statement wrapping exactly one call.
func AsCall(stmt *sitter.Node) (*sitter.Node, bool) {
	n := stmt
	if n != nil && n.Type() == "expression_statement" {
		children := NamedChildren(n)
		if len(children) != 1 {
			return nil, false
		}
		n = children[0]
	}
	if n == nil || n.Type() != "call" {
		return nil, false
	}
	return n, true
}

// DecomposeCall splits a call node into callee, positional arguments and
// keyword arguments.
func (m *Module) DecomposeCall(n *sitter.Node) (*Call, bool) {
	if n == nil || n.Type() != "call" {
		return nil, false
	}
	call := &Call{
		Node:   n,
		Func:   n.ChildByFieldName("function"),
		Kwargs: map[string]*sitter.Node{},
	}
	if call.Func == nil {
		return nil, false
	}
	if chain := m.AttributeChain(call.Func); chain != nil {
		call.FuncPath = chain
		call.FuncName = dottedName(chain)
	}

	args := n.ChildByFieldName("arguments")
	if args != nil {
		call.ArgsText = innerText(m.Text(args))
		for _, arg := range NamedChildren(args) {
			if arg.Type() != "keyword_argument" {
				call.Args = append(call.Args, arg)
				continue
			}
			name, ok := m.Identifier(arg.ChildByFieldName("name"))
			if !ok {
				continue
			}
			if _, seen := call.Kwargs[name]; !seen {
				call.KwOrder = append(call.KwOrder, name)
			}
			call.Kwargs[name] = arg.ChildByFieldName("value")
		}
	}
	return call, true
}

// Kwarg returns the value expression of the named keyword argument.
func (c *Call) Kwarg(name string) (*sitter.Node, bool) {
	n, ok := c.Kwargs[name]
	return n, ok
}

// innerText strips the enclosing parentheses from an argument_list slice,
// preserving everything between them byte-for-byte.
func innerText(text string) string {
	if len(text) >= 2 && text[0] == '(' && text[len(text)-1] == ')' {
		return text[1 : len(text)-1]
	}
	return text
}
