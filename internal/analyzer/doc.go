// Package analyzer is the source-to-IR half of the transducer. It parses
// one pipeline module and runs four extraction passes over it: class
// classification (transitive local base-class closure → task / worker
// variant), record and worker detail extraction, topology extraction
// (graph-builder location, variable bindings, edges, entry points) and
// LLM-binding association. The merged result is an ir.Graph.
//
// Extraction is best-effort below the statement level: a unit that cannot
// be decoded degrades to passthrough text or is skipped with a logged
// warning. Only unparsable source aborts the analysis, and even that
// returns an empty graph alongside the fault rather than panicking
// upward.
package analyzer
