// Package modindex provides the per-kind arena view of a parsed module:
// which position in Module.Imports belongs to which kind, and accessors
// for a kind's local (non-imported) entities. The Graph Builder and the
// Rewriter both need this same view — the builder to assign within-module
// indices consistently with the WASM index-space convention (imports of a
// kind precede that kind's locals), the rewriter to pull the original
// payload back out by that same index.
package modindex

import (
	"github.com/aaronmunsters/wasm-merge/internal/ident"
	"github.com/aaronmunsters/wasm-merge/wasm"
)

// Index precomputes, for one parsed module, the positions in Module.Imports
// that belong to each kind, in within-kind order — exactly the order the
// WASM binary format assigns within-module indices.
type Index struct {
	Name ident.Module
	Mod  *wasm.Module

	funcImports   []int
	tableImports  []int
	memImports    []int
	globalImports []int

	// ElemBase/DataBase/TagBase are running totals filled in during
	// segment copying (rewrite.copySegments): the output index of this
	// module's first element/data/tag entry, used to translate
	// elem/data/tag operands in instructions. Tags sit outside every
	// Kind's graph, exactly like elements and data: no import, export,
	// or reduction semantics apply, they are always copied 1:1.
	ElemBase int
	DataBase int
	TagBase  int
}

// Build scans mod.Imports once and classifies each by kind.
func Build(name ident.Module, mod *wasm.Module) *Index {
	ix := &Index{Name: name, Mod: mod}
	for i, imp := range mod.Imports {
		switch imp.Desc.Kind {
		case wasm.KindFunc:
			ix.funcImports = append(ix.funcImports, i)
		case wasm.KindTable:
			ix.tableImports = append(ix.tableImports, i)
		case wasm.KindMemory:
			ix.memImports = append(ix.memImports, i)
		case wasm.KindGlobal:
			ix.globalImports = append(ix.globalImports, i)
		}
	}
	return ix
}

func (ix *Index) NumFuncImports() int   { return len(ix.funcImports) }
func (ix *Index) NumTableImports() int  { return len(ix.tableImports) }
func (ix *Index) NumMemImports() int    { return len(ix.memImports) }
func (ix *Index) NumGlobalImports() int { return len(ix.globalImports) }

func (ix *Index) FuncImport(i int) *wasm.Import   { return &ix.Mod.Imports[ix.funcImports[i]] }
func (ix *Index) TableImport(i int) *wasm.Import  { return &ix.Mod.Imports[ix.tableImports[i]] }
func (ix *Index) MemImport(i int) *wasm.Import    { return &ix.Mod.Imports[ix.memImports[i]] }
func (ix *Index) GlobalImport(i int) *wasm.Import { return &ix.Mod.Imports[ix.globalImports[i]] }

func (ix *Index) NumFuncLocals() int   { return len(ix.Mod.Funcs) }
func (ix *Index) NumTableLocals() int  { return len(ix.Mod.Tables) }
func (ix *Index) NumMemLocals() int    { return len(ix.Mod.Memories) }
func (ix *Index) NumGlobalLocals() int { return len(ix.Mod.Globals) }

func (ix *Index) FuncLocalType(i int) uint32      { return ix.Mod.Funcs[i] }
func (ix *Index) FuncLocalBody(i int) *wasm.FuncBody { return &ix.Mod.Code[i] }
func (ix *Index) TableLocal(i int) *wasm.TableType   { return &ix.Mod.Tables[i] }
func (ix *Index) MemLocal(i int) *wasm.MemoryType    { return &ix.Mod.Memories[i] }
func (ix *Index) GlobalLocal(i int) *wasm.Global     { return &ix.Mod.Globals[i] }
