/*
Package pyfmt applies the canonical formatting pass to synthesized Python
source.

The pass is a conservative normalizer: it unifies line endings, expands
leading tabs, strips trailing whitespace, squeezes long blank runs,
enforces two blank lines before top-level definitions and guarantees a
single trailing newline. String literal interiors are never touched; the
guard ranges come from the parsed tree. The formatted text must re-parse,
otherwise the pass fails with a format fault carrying the raw text.
*/
package pyfmt
