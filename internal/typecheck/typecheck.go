// Package typecheck implements the Type Checker: it walks every Imports
// edge in a linked Graph and compares the import's type descriptor against
// the export's, applying the configured policy to disagreements.
package typecheck

import (
	"github.com/aaronmunsters/wasm-merge/errs"
	"github.com/aaronmunsters/wasm-merge/internal/depgraph"
)

// Policy controls what happens when a linked import disagrees in type
// with the export it points to.
type Policy int

const (
	// Signal aborts the merge with a TypeMismatch error on the first
	// disagreement found.
	Signal Policy = iota
	// Ignore removes the disagreeing edge; the import becomes a
	// surviving import in the Reducer.
	Ignore
)

// Equatable is satisfied by every kind-specific type descriptor
// (depgraph.FuncSig, TableSig, MemorySig, GlobalSig).
type Equatable[T any] interface {
	Equal(T) bool
}

// Check walks every Import with a live outgoing edge and compares its
// type against its linked export's type.
func Check[T Equatable[T]](g *depgraph.Graph[T], policy Policy) error {
	for _, imp := range g.Imports() {
		exp, ok := g.LinkedExport(imp)
		if !ok {
			continue
		}
		if imp.Type.Equal(exp.Type) {
			continue
		}
		switch policy {
		case Signal:
			return errs.TypeMismatch(string(imp.ExportedName), string(imp.ImportingModule), string(exp.Name), string(exp.Module))
		case Ignore:
			g.BreakEdge(imp)
		}
	}
	return nil
}
