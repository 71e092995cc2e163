// Package reduce implements the Reducer: given a linked, type-checked
// Graph, it computes the reduction source of every node, and from that the
// final sets of surviving imports and exports.
package reduce

import (
	"github.com/aaronmunsters/wasm-merge/internal/depgraph"
	"github.com/aaronmunsters/wasm-merge/internal/ident"
)

// SourceKind distinguishes the two things a reduction can ground out at.
type SourceKind int

const (
	// FromLocal means the reduction walk terminated at a Local — a
	// definition inside some input module.
	FromLocal SourceKind = iota
	// FromImport means the reduction walk terminated at an Import with
	// no outgoing edge — an unresolvable external, i.e. a surviving
	// import.
	FromImport
)

// Source is the canonical originator a graph node reduces to.
type Source[T any] struct {
	Kind   SourceKind
	Local  *depgraph.Local[T]
	Import *depgraph.Import[T]
}

// ID returns the old identifier of the source node.
func (s Source[T]) ID() ident.OldID {
	if s.Kind == FromLocal {
		return s.Local.ID
	}
	return s.Import.ID
}

// ExportPolicy controls whether a fully-internalized export (one whose
// reduction source leaves no external trace) survives anyway.
type ExportPolicy int

const (
	// Remove keeps only externally-observable exports (in-degree zero),
	// plus anything on the keep-list.
	Remove ExportPolicy = iota
	// Keep retains every export regardless of in-degree.
	Keep
)

// Result is the output of a full reduction pass over one kind's graph.
type Result[T any] struct {
	ImportSource map[ident.OldID]Source[T]
	ExportSource map[depgraph.ExportKey]Source[T]

	SurvivingImports []*depgraph.Import[T]
	SurvivingExports []*depgraph.Export[T]
}

// Reduce computes the reduction source for every Import and Export in g,
// then derives the surviving sets. keep lists (module, name) pairs that
// must survive as exports regardless of in-degree.
func Reduce[T any](g *depgraph.Graph[T], policy ExportPolicy, keep map[depgraph.ExportKey]bool) Result[T] {
	r := Result[T]{
		ImportSource: make(map[ident.OldID]Source[T]),
		ExportSource: make(map[depgraph.ExportKey]Source[T]),
	}

	for _, imp := range g.Imports() {
		r.ImportSource[imp.ID] = reduceImport(g, imp, r.ImportSource, r.ExportSource)
		if !imp.HasEdge() {
			r.SurvivingImports = append(r.SurvivingImports, imp)
		}
	}

	incoming := make(map[depgraph.ExportKey]int)
	for _, imp := range g.Imports() {
		if imp.HasEdge() {
			exp, _ := g.LinkedExport(imp)
			incoming[depgraph.ExportKey{Module: exp.Module, Name: exp.Name}]++
		}
	}

	for _, exp := range g.AllExports() {
		key := depgraph.ExportKey{Module: exp.Module, Name: exp.Name}
		if _, ok := r.ExportSource[key]; !ok {
			r.ExportSource[key] = reduceExport(g, exp, r.ImportSource, r.ExportSource)
		}
		survives := incoming[key] == 0
		if policy == Keep {
			survives = true
		}
		if keep[key] {
			survives = true
		}
		if survives {
			r.SurvivingExports = append(r.SurvivingExports, exp)
		}
	}

	return r
}

// reduceImport follows an Import's outgoing edge (if any) to its source,
// memoizing as it goes. Termination is guaranteed because the graph is
// acyclic (Link already rejected any cycle) and out-degree is at most 1.
func reduceImport[T any](g *depgraph.Graph[T], imp *depgraph.Import[T], importMemo map[ident.OldID]Source[T], exportMemo map[depgraph.ExportKey]Source[T]) Source[T] {
	if s, ok := importMemo[imp.ID]; ok {
		return s
	}
	var s Source[T]
	if !imp.HasEdge() {
		s = Source[T]{Kind: FromImport, Import: imp}
	} else {
		exp, _ := g.LinkedExport(imp)
		key := depgraph.ExportKey{Module: exp.Module, Name: exp.Name}
		s = reduceExport(g, exp, importMemo, exportMemo)
		exportMemo[key] = s
	}
	importMemo[imp.ID] = s
	return s
}

// reduceExport follows an Export's Exports edge to its target — a Local
// (terminal) or an Import (continue the walk).
func reduceExport[T any](g *depgraph.Graph[T], exp *depgraph.Export[T], importMemo map[ident.OldID]Source[T], exportMemo map[depgraph.ExportKey]Source[T]) Source[T] {
	key := depgraph.ExportKey{Module: exp.Module, Name: exp.Name}
	if s, ok := exportMemo[key]; ok {
		return s
	}
	targetImp, targetLoc := g.Target(exp.Target)
	var s Source[T]
	if targetLoc != nil {
		s = Source[T]{Kind: FromLocal, Local: targetLoc}
	} else {
		s = reduceImport(g, targetImp, importMemo, exportMemo)
	}
	exportMemo[key] = s
	return s
}
