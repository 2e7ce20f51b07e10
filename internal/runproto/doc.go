/*
Package runproto defines the embedded runtime marker protocol of generated
modules.

Generated Python reports its outcome on stdout as a delimiter-marked,
single-line JSON block. The synthesizer emits the Python side from the
templates here; Scan reads the Go side. Arbitrary user prints may surround
a block and are ignored; a marker only counts when it is the entire
trimmed line.
*/
package runproto
