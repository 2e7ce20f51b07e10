// internal/ir/doc.go

/*
Package ir defines the intermediate representation shared by the analyzer
and the synthesizer: task and worker definitions, dependency edges, entry
edges and imported-task references, plus the node/edge payload shape the
editor exchanges and the Fault error type every transduction failure is
reported through.

The IR is constructed fresh per analysis and holds no cross-call state.
All types are plain data; nothing in this package touches the parser.
*/
package ir
