package pyast

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// SyntaxError describes the first parse error found in a source text.
// Line and Column are 1-based.
type SyntaxError struct {
	Line    int
	Column  int
	Snippet string
}

func (e *SyntaxError) Error() string {
	if e.Snippet != "" {
		return fmt.Sprintf("syntax error at line %d, column %d: near %q", e.Line, e.Column, e.Snippet)
	}
	return fmt.Sprintf("syntax error at line %d, column %d", e.Line, e.Column)
}

// Module is one parsed source module. It keeps the source text alongside
// the tree so node content can be sliced verbatim.
type Module struct {
	tree  *sitter.Tree
	root  *sitter.Node
	src   []byte
	lines []string
}

// Parse parses src as a Python module. A grammar error anywhere in the
// tree is returned as *SyntaxError pointing at the first offending node.
func Parse(ctx context.Context, src []byte) (*Module, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parsing source: %w", err)
	}

	root := tree.RootNode()
	if bad := firstErrorNode(root); bad != nil {
		point := bad.StartPoint()
		return nil, &SyntaxError{
			Line:    int(point.Row) + 1,
			Column:  int(point.Column) + 1,
			Snippet: errorSnippet(bad, src),
		}
	}

	return &Module{
		tree:  tree,
		root:  root,
		src:   src,
		lines: strings.Split(string(src), "\n"),
	}, nil
}

// firstErrorNode finds the shallowest, earliest ERROR or missing node.
func firstErrorNode(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if bad := firstErrorNode(n.Child(i)); bad != nil {
			return bad
		}
	}
	return nil
}

func errorSnippet(n *sitter.Node, src []byte) string {
	text := n.Content(src)
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	const max = 40
	if len(text) > max {
		text = text[:max]
	}
	return strings.TrimSpace(text)
}

// Root returns the module node.
func (m *Module) Root() *sitter.Node { return m.root }

// Source returns the raw source text the module was parsed from.
func (m *Module) Source() []byte { return m.src }

// Text returns the verbatim source slice covered by n.
func (m *Module) Text(n *sitter.Node) string { return n.Content(m.src) }

// LineRange returns the 1-based inclusive line range covered by n.
func LineRange(n *sitter.Node) (start, end int) {
	start = int(n.StartPoint().Row) + 1
	endPoint := n.EndPoint()
	end = int(endPoint.Row) + 1
	// A node ending exactly at a line start does not occupy that line.
	if endPoint.Column == 0 && end > start {
		end--
	}
	return start, end
}

// LinesOf returns the full source lines spanned by n, verbatim.
func (m *Module) LinesOf(n *sitter.Node) []string {
	start, end := LineRange(n)
	if start < 1 || end > len(m.lines) {
		return nil
	}
	out := make([]string, end-start+1)
	copy(out, m.lines[start-1:end])
	return out
}
