// internal/pyast/doc.go

/*
Package pyast wraps the tree-sitter Python grammar behind the small set of
syntax shapes the transducer actually reads: module-level classes and
functions, assignments, annotations, calls and string literals, plus the
verbatim line-slice and dedent helpers the extractors capture source with.

Callers never touch raw tree-sitter nodes for decoding; every structural
question ("is this an assignment", "what are this call's keywords") has a
helper here, so grammar-version drift stays contained in one package.
*/
package pyast
