/*
Package synthesizer converts an IR-shaped graph payload into runnable
Python source.

Emission mirrors the analyzer's field encodings in reverse: task classes,
worker classes with canonically ordered class variables, and a
run_pipeline function that instantiates workers inside structured
error-reporting guards, wires the graph and runs it. The assembled text
goes through one canonical formatting pass. The result is tri-state: a
complete source module or a fault, never a partial success.
*/
package synthesizer
