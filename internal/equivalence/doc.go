/*
Package equivalence checks that analysis and synthesis agree: a source
module, its graph, the regenerated source and that source's graph must
describe the same pipeline.

Comparison covers everything the graph surfaces as structure: classes,
fields, class variables, wiring, entries and imported references. Opaque
carriers are excluded: method bodies and passthrough text may shift
indentation in transit, variable and module names are presentation, and
prompt text is compared modulo trailing whitespace because the canonical
format pass strips it from generated source.
*/
package equivalence
