package pyfmt

import (
	"context"
	"errors"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/planweave/planweave/internal/ir"
	"github.com/planweave/planweave/internal/pyast"
)

const indentUnit = "    "

// Format normalizes src. Both the input and the normalized output must
// parse; a failure on either side returns a format fault that carries the
// original text verbatim.
func Format(ctx context.Context, src string) (string, error) {
	unified := normalizeNewlines(src)

	m, err := pyast.Parse(ctx, []byte(unified))
	if err != nil {
		return "", formatFault(err, src)
	}

	lines := strings.Split(unified, "\n")
	guard := newStringGuard(m, lines)

	for i := range lines {
		if !guard.endsInString(i) {
			lines[i] = strings.TrimRight(lines[i], " \t")
		}
		if !guard.startsInString(i) {
			lines[i] = expandLeadingTabs(lines[i])
		}
	}

	rebuilt := rebuildLines(lines, guard, topLevelDefRows(m))
	text := strings.TrimRight(strings.Join(rebuilt, "\n"), "\n") + "\n"

	if _, err := pyast.Parse(ctx, []byte(text)); err != nil {
		return "", formatFault(err, src)
	}
	return text, nil
}

func normalizeNewlines(src string) string {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	return strings.ReplaceAll(src, "\r", "\n")
}

func formatFault(err error, raw string) *ir.Fault {
	fault := ir.NewFault(ir.FaultFormat, "formatting rejected the source: %v", err)
	fault.Raw = raw
	var syn *pyast.SyntaxError
	if errors.As(err, &syn) {
		fault.Line = syn.Line
		fault.Column = syn.Column
	}
	return fault
}

// stringGuard marks, per line, whether the line starts or ends inside a
// string literal. Guarded regions are exempt from whitespace edits.
type stringGuard struct {
	startsIn []bool
	endsIn   []bool
}

func newStringGuard(m *pyast.Module, lines []string) *stringGuard {
	var ranges [][2]uint32
	collectStringRanges(m.Root(), &ranges)
	sort.Slice(ranges, func(i, j int) bool { return ranges[i][0] < ranges[j][0] })

	inside := func(offset uint32) bool {
		for _, r := range ranges {
			if r[0] >= offset {
				break
			}
			if offset < r[1] {
				return true
			}
		}
		return false
	}

	g := &stringGuard{
		startsIn: make([]bool, len(lines)),
		endsIn:   make([]bool, len(lines)),
	}
	offset := uint32(0)
	for i, line := range lines {
		g.startsIn[i] = inside(offset)
		g.endsIn[i] = inside(offset + uint32(len(line)))
		offset += uint32(len(line)) + 1
	}
	return g
}

func (g *stringGuard) startsInString(i int) bool { return g.startsIn[i] }
func (g *stringGuard) endsInString(i int) bool   { return g.endsIn[i] }

func collectStringRanges(n *sitter.Node, out *[][2]uint32) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "string", "concatenated_string":
		*out = append(*out, [2]uint32{n.StartByte(), n.EndByte()})
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		collectStringRanges(n.Child(i), out)
	}
}

func expandLeadingTabs(line string) string {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	lead := line[:i]
	if !strings.Contains(lead, "\t") {
		return line
	}
	return strings.ReplaceAll(lead, "\t", indentUnit) + line[i:]
}

// topLevelDefRows collects the starting rows of module-level definitions,
// decorators included.
func topLevelDefRows(m *pyast.Module) map[int]struct{} {
	rows := map[int]struct{}{}
	for _, n := range pyast.NamedChildren(m.Root()) {
		switch n.Type() {
		case "function_definition", "class_definition", "decorated_definition":
			rows[int(n.StartPoint().Row)] = struct{}{}
		}
	}
	return rows
}

// rebuildLines replays the lines with blank-run normalization: leading
// blanks dropped, runs capped at two, and exactly two blanks before each
// top-level definition. Blank lines inside string literals are content
// and pass through untouched.
func rebuildLines(lines []string, guard *stringGuard, defRows map[int]struct{}) []string {
	var out []string
	pending := 0
	for i, line := range lines {
		if line == "" && !guard.startsInString(i) {
			pending++
			continue
		}
		target := pending
		_, isDef := defRows[i]
		switch {
		case len(out) == 0:
			target = 0
		case isDef && !isCommentLine(out[len(out)-1]):
			target = 2
		case pending > 2:
			target = 2
		}
		for ; target > 0; target-- {
			out = append(out, "")
		}
		out = append(out, line)
		pending = 0
	}
	return out
}

func isCommentLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "#")
}
