// Package registry holds the read-only configuration tables the transducer
// consults: the fixed classification vocabulary of the target framework
// (variant priority order, primitive type map, recognized class-variable and
// hook names) and the manifest-loaded tables (factory helpers, import
// allow-list).
//
// The fixed vocabulary lives in code. Factories and the allow-list are HCL
// manifests: built-in defaults are embedded in the binary and optional user
// manifest directories are merged in at load time. A Registry is immutable
// once Load returns, so analyzers and synthesizers on different goroutines
// can share one instance.
package registry
