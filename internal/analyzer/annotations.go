package analyzer

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/planweave/planweave/internal/ir"
	"github.com/planweave/planweave/internal/pyast"
	"github.com/planweave/planweave/internal/registry"
)

// TypeInfo is the canonical descriptor of one type annotation. It is the
// shared output shape of field extraction and input-type inference.
type TypeInfo struct {
	Name          string
	IsList        bool
	IsOptional    bool
	LiteralValues []string
}

// decodeAnnotation converts one annotation expression into its canonical
// descriptor. Recognition order: optional wrapper, list wrapper (either
// spelling, including a list around an optional), literal set, bare name
// (primitive map first), then verbatim fallback for any other shape.
func (a *analysis) decodeAnnotation(n *sitter.Node) TypeInfo {
	if n == nil {
		return TypeInfo{}
	}

	if value, elems, ok := pyast.Subscript(n); ok {
		name := lastSegment(a.m.AttributeChain(value))
		switch {
		case name == registry.OptionalWrapperName && len(elems) == 1:
			info := a.decodeAnnotation(elems[0])
			info.IsOptional = true
			return info
		case registry.IsListWrapper(name) && len(elems) == 1:
			info := a.decodeAnnotation(elems[0])
			info.IsList = true
			return info
		case name == registry.LiteralWrapperName:
			return TypeInfo{Name: ir.TypeLiteral, LiteralValues: a.literalValues(n, elems)}
		}
		return TypeInfo{Name: a.m.Text(n)}
	}

	if name, ok := a.m.Identifier(n); ok {
		if primitive, ok := registry.PrimitiveFromAnnotation(name); ok {
			return TypeInfo{Name: primitive}
		}
		return TypeInfo{Name: name}
	}

	// Quoted forward references decode like the bare name they quote.
	if text, ok := a.m.StringLiteral(n); ok && ir.ValidIdentifier(text) {
		if primitive, ok := registry.PrimitiveFromAnnotation(text); ok {
			return TypeInfo{Name: primitive}
		}
		return TypeInfo{Name: text}
	}

	return TypeInfo{Name: a.m.Text(n)}
}

// literalValues collects the constant elements of a literal-set
// annotation. Elements that the structural decoding cannot classify fall
// back to token scraping of their unparsed text; a grammar version that
// exposes no elements at all scrapes the whole annotation. Keeping that
// tolerance is deliberate.
func (a *analysis) literalValues(whole *sitter.Node, elems []*sitter.Node) []string {
	if len(elems) == 0 {
		return pyast.ScrapeConstants(a.m.Text(whole))
	}
	var out []string
	for _, elem := range elems {
		if value, _, ok := a.m.Constant(elem); ok {
			out = append(out, value)
			continue
		}
		if scraped := pyast.ScrapeConstants(a.m.Text(elem)); len(scraped) > 0 {
			out = append(out, scraped...)
			continue
		}
		out = append(out, a.m.Text(elem))
	}
	return out
}

// lastSegment returns the final segment of a dotted chain, or "".
func lastSegment(chain []string) string {
	if len(chain) == 0 {
		return ""
	}
	return chain[len(chain)-1]
}
