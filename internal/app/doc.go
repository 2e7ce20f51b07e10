// Package app wires the transducer together. It owns the App struct, its
// configuration, and the mode dispatch that turns one input stream into
// one output stream, independent of any particular entrypoint.
package app
