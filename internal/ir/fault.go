package ir

import (
	"errors"
	"fmt"
)

// FaultKind classifies a transduction failure.
type FaultKind string

const (
	// FaultSyntax: unparsable source. The analyzer aborts and returns an
	// empty graph alongside the descriptor.
	FaultSyntax FaultKind = "source_syntax_error"

	// FaultInvalidIdentifier: a declared or generated class/field name is
	// not identifier-valid. Never silently renamed.
	FaultInvalidIdentifier FaultKind = "invalid_identifier"

	// FaultUnresolvedType: an edge or field references an unknown class
	// name. Extraction degrades by omitting the unit; this kind appears in
	// warnings, not in hard failures.
	FaultUnresolvedType FaultKind = "unresolved_type_reference"

	// FaultMultipleInputs: a worker whose variant cannot merge inputs was
	// given more than one input type.
	FaultMultipleInputs FaultKind = "multiple_input_types"

	// FaultFormat: the post-synthesis formatting pass rejected the text.
	// Raw carries the unformatted source.
	FaultFormat FaultKind = "format_error"

	// FaultPayload: the synthesizer payload is malformed (unknown node
	// tag, undecodable data, missing required payload fields).
	FaultPayload FaultKind = "invalid_payload"
)

// Fault is the structured error descriptor every transduction failure is
// reported through. It serializes to the editor-facing error shape.
type Fault struct {
	Kind     FaultKind `json:"kind"`
	Message  string    `json:"message"`
	NodeName string    `json:"nodeName,omitempty"`
	Path     string    `json:"path,omitempty"`
	Line     int       `json:"line,omitempty"`
	Column   int       `json:"column,omitempty"`
	Raw      string    `json:"raw,omitempty"`
}

func (f *Fault) Error() string {
	msg := fmt.Sprintf("%s: %s", f.Kind, f.Message)
	if f.NodeName != "" {
		msg += fmt.Sprintf(" (node %q)", f.NodeName)
	}
	switch {
	case f.Path != "" && f.Line > 0:
		msg += fmt.Sprintf(" at %s:%d", f.Path, f.Line)
	case f.Line > 0:
		msg += fmt.Sprintf(" at line %d", f.Line)
	case f.Path != "":
		msg += fmt.Sprintf(" at %s", f.Path)
	}
	return msg
}

// NewFault builds a Fault with a formatted message.
func NewFault(kind FaultKind, format string, args ...any) *Fault {
	return &Fault{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithNode returns f with its NodeName set.
func (f *Fault) WithNode(name string) *Fault {
	f.NodeName = name
	return f
}

// AsFault unwraps err into a *Fault if one is in its chain.
func AsFault(err error) (*Fault, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
