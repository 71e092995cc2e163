// Package wasmmerge merges independent WebAssembly core modules into one,
// resolving imports against exports of the other input modules wherever possible and
// leaving only what cannot be resolved internally as imports of the result.
//
// # Architecture Overview
//
//	wasm/              Binary decode/encode, the AST the rest of the package operates on
//	wat/                WAT text format to WASM binary compiler, used to build test fixtures
//	errs/               Structured error taxonomy (Phase + Kind) raised at the merge boundary
//	internal/ident/     Old-module/new-output identifier types, one per kind
//	internal/depgraph/  Per-kind dependency graph: imports, exports, locals, cycle detection
//	internal/typecheck/ Import/export type-consistency check over a linked graph
//	internal/reduce/    Reduction to canonical sources; which imports/exports survive
//	internal/clash/     Cross-kind export name clash detection and renaming
//	internal/rewrite/   Identifier allocation and instruction translation into one module
//	merge/              Public entry point: Options and Merge(inputs, opts)
//	cmd/wasmmerge/      CLI: reads named wasm/wat files, merges, writes the result
//
// # Quick Start
//
//	out, err := merge.Merge([]merge.Named{
//	    {Name: "a", Bytes: aWasm},
//	    {Name: "b", Bytes: bWasm},
//	}, merge.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("merged.wasm", out, 0644)
//
// # Pipeline
//
// Merge runs every input through build (classify imports/locals/exports per
// kind into four dependency graphs: function, table, memory, global), link
// (resolve each import against the export it names), typecheck (reject or
// drop edges whose types disagree, per TypeMismatchPolicy), reduce (collapse
// chains of re-exports to their ultimate source, per ResolvedExportPolicy and
// KeepExport), clash detection (rename or signal on a shared export name
// across kinds, per ClashPolicy and RenameStrategy), and rewrite (allocate
// fresh identifiers for every surviving import and local, and translate every
// instruction, global initializer, element, and data segment that refers to
// them).
//
// # What this package does not do
//
// No optimization, inlining, or dead-code elimination: every local function,
// table, memory, and global of every input is copied into the result, even
// when nothing references it. No Component Model support — a module whose preamble
// reports a Component version, or whose function count disagrees with its
// code count, is rejected before merging. No debug-info merging. Mismatched
// import shapes are reported or renamed per policy, never reconciled.
package wasmmerge
