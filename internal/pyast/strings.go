package pyast

import (
	"regexp"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// StringLiteral decodes a string node to its value, resolving escape
// sequences. Concatenated adjacent literals are joined. Decoding fails for
// non-strings and for literals with interpolated parts.
func (m *Module) StringLiteral(n *sitter.Node) (string, bool) {
	if n == nil {
		return "", false
	}
	if n.Type() == "concatenated_string" {
		var b strings.Builder
		for _, part := range NamedChildren(n) {
			value, ok := m.StringLiteral(part)
			if !ok {
				return "", false
			}
			b.WriteString(value)
		}
		return b.String(), true
	}
	if n.Type() != "string" {
		return "", false
	}

	// Raw literals keep their backslashes regardless of how the grammar
	// split the content, so decode them from the full text.
	if full := m.Text(n); hasRawPrefix(full) {
		return decodeOpaqueString(full)
	}

	// Current grammars expose the literal's parts as named children.
	var b strings.Builder
	found := false
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "string_content":
			b.WriteString(m.Text(child))
			found = true
		case "escape_sequence":
			b.WriteString(Unescape(m.Text(child)))
			found = true
		case "interpolation":
			return "", false
		}
	}
	if found {
		return b.String(), true
	}

	// Older grammars keep the literal opaque; this also covers the empty
	// string, which has no content children in any version.
	return decodeOpaqueString(m.Text(n))
}

func hasRawPrefix(text string) bool {
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case 'r', 'R':
			return true
		case 'b', 'B', 'u', 'U', 'f', 'F':
		default:
			return false
		}
	}
	return false
}

func decodeOpaqueString(text string) (string, bool) {
	raw := false
	i := 0
prefix:
	for i < len(text) {
		switch text[i] {
		case 'r', 'R':
			raw = true
			i++
		case 'b', 'B', 'u', 'U', 'f', 'F':
			i++
		default:
			break prefix
		}
	}
	rest := text[i:]

	var inner string
	switch {
	case len(rest) >= 6 && strings.HasPrefix(rest, `"""`) && strings.HasSuffix(rest, `"""`):
		inner = rest[3 : len(rest)-3]
	case len(rest) >= 6 && strings.HasPrefix(rest, "'''") && strings.HasSuffix(rest, "'''"):
		inner = rest[3 : len(rest)-3]
	case len(rest) >= 2 && rest[0] == '"' && rest[len(rest)-1] == '"':
		inner = rest[1 : len(rest)-1]
	case len(rest) >= 2 && rest[0] == '\'' && rest[len(rest)-1] == '\'':
		inner = rest[1 : len(rest)-1]
	default:
		return "", false
	}
	if raw {
		return inner, true
	}
	return Unescape(inner), true
}

// Constant classifies simple literal expressions. Strings come back
// decoded; numbers and the named constants keep their verbatim text.
func (m *Module) Constant(n *sitter.Node) (value string, isString bool, ok bool) {
	if n == nil {
		return "", false, false
	}
	switch n.Type() {
	case "string", "concatenated_string":
		v, ok := m.StringLiteral(n)
		return v, true, ok
	case "integer", "float", "true", "false", "none":
		return m.Text(n), false, true
	case "unary_operator":
		// Negative numbers parse as a unary minus over a number.
		if arg := n.ChildByFieldName("argument"); arg != nil {
			if t := arg.Type(); t == "integer" || t == "float" {
				return m.Text(n), false, true
			}
		}
	}
	return "", false, false
}

// BoolLiteral decodes a true/false node.
func (m *Module) BoolLiteral(n *sitter.Node) (bool, bool) {
	if n == nil {
		return false, false
	}
	switch n.Type() {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// IsNone reports whether n is the None literal.
func IsNone(n *sitter.Node) bool {
	return n != nil && n.Type() == "none"
}

// Unescape resolves the common backslash escapes of a quoted literal.
// Unknown escapes are kept verbatim.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\':
			b.WriteByte('\\')
		case '\'':
			b.WriteByte('\'')
		case '"':
			b.WriteByte('"')
		case '\n':
			// line continuation swallows the newline
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// Quote renders s as a double-quoted single-line literal.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// EscapeTripleBody escapes s for embedding between triple double-quotes.
func EscapeTripleBody(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"""`, `\"\"\"`)
	return s
}

// IsNumericLiteral reports whether text is a bare numeric literal.
func IsNumericLiteral(text string) bool {
	if text == "" {
		return false
	}
	switch text[0] {
	case '-', '+', '.':
	default:
		if text[0] < '0' || text[0] > '9' {
			return false
		}
	}
	if _, err := strconv.ParseInt(text, 10, 64); err == nil {
		return true
	}
	_, err := strconv.ParseFloat(text, 64)
	return err == nil
}

var constantTokenRegex = regexp.MustCompile(`"([^"]*)"|'([^']*)'|-?\d+(?:\.\d+)?`)

// ScrapeConstants extracts quoted-string and bare-numeric tokens from raw
// annotation text. This is the tolerance fallback for literal sets whose
// structure differs across grammar versions.
func ScrapeConstants(text string) []string {
	var out []string
	for _, match := range constantTokenRegex.FindAllStringSubmatch(text, -1) {
		switch {
		case match[1] != "":
			out = append(out, match[1])
		case match[2] != "":
			out = append(out, match[2])
		case match[1] == "" && match[2] == "" && (strings.HasPrefix(match[0], `"`) || strings.HasPrefix(match[0], `'`)):
			// empty quoted string
			out = append(out, "")
		default:
			out = append(out, match[0])
		}
	}
	return out
}
