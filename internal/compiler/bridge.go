// Package compiler implements the Compiler Bridge: the one boundary where
// the runtime crosses into the tile-language compiler's own toolchain
// (spec §4.5). It never classifies arguments or understands a backend; it
// only maps (path, name) to a static signature, and (path, name,
// dyn_signature, warps, stages, device) to a compiled artifact directory.
//
// Signature classes are exchanged as plain tags ("non_constexpr",
// "specialized", "constexpr") rather than internal/jit's ArgClass type:
// the bridge is upstream of the classifier in the dependency graph, so it
// cannot import the package that consumes its output. internal/jit
// converts tags to ArgClass at the boundary.
package compiler

import "errors"

// ErrCompile is the bridge's own error domain; internal/jit wraps it with
// its own ErrCompiler sentinel so callers can errors.Is against either.
var ErrCompile = errors.New("compiler: operation failed")

// Bridge is implemented once against a real external toolchain
// (external.go) and once as a test/demo fake that never shells out
// (sim.go).
type Bridge interface {
	// ExtractStaticSignature returns the ordered class-tag list for the
	// entry point at (path, name). Pure and called once per entry point
	// (the JIT Entry Point caches the result). Each tag is one of
	// "non_constexpr", "specialized", "constexpr".
	ExtractStaticSignature(path, name string) (classTags []string, err error)

	// Compile returns the path to a directory holding the compiled
	// artifact for (path, name, dynSignature, warps, stages, device).
	// The result must be content-addressed: repeated calls with the same
	// tuple return the same directory without recompiling.
	Compile(path, name, dynSignature string, warps, stages, deviceIndex int) (artifactDir string, err error)
}
