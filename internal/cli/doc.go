// Package cli turns command-line arguments into an app.Config. It owns
// mode selection, flag parsing and validation, and the exit codes the
// process reports back to the shell.
package cli
