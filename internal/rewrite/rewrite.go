// Package rewrite implements the Rewriter: given the linked, reduced
// graphs for all four kinds, it allocates the output module's per-kind
// arenas, translates every operand that carries an old-space index, and
// emits the final merged module.
//
// Allocation happens in two passes, the same idiom the input binary
// itself uses for forward references (a global's init expression may
// ref.func a function declared later in the same section): first every
// node gets its new id reserved — surviving imports, then every local of
// every input module, shape only, no operand translation — then a second
// pass fills in the payload that depends on the now-complete mapping
// (global init bytes, element/data segments, function bodies).
package rewrite

import (
	"github.com/aaronmunsters/wasm-merge/internal/clash"
	"github.com/aaronmunsters/wasm-merge/internal/depgraph"
	"github.com/aaronmunsters/wasm-merge/internal/ident"
	"github.com/aaronmunsters/wasm-merge/internal/modindex"
	"github.com/aaronmunsters/wasm-merge/internal/reduce"
	"github.com/aaronmunsters/wasm-merge/wasm"
)

// Input pairs a parsed module with the name it was merged under.
type Input struct {
	Name   ident.Module
	Module *wasm.Module
}

// Graphs bundles the four kind-specific dependency graphs built for one
// merge.
type Graphs struct {
	Func   *depgraph.Graph[depgraph.FuncSig]
	Table  *depgraph.Graph[depgraph.TableSig]
	Memory *depgraph.Graph[depgraph.MemorySig]
	Global *depgraph.Graph[depgraph.GlobalSig]
}

// Reductions bundles the four kind-specific reduction results.
type Reductions struct {
	Func   reduce.Result[depgraph.FuncSig]
	Table  reduce.Result[depgraph.TableSig]
	Memory reduce.Result[depgraph.MemorySig]
	Global reduce.Result[depgraph.GlobalSig]
}

// mapping carries the old-id -> new-id translation for every kind, built
// up across the allocation passes below.
type mapping struct {
	fn, tbl, mem, glb map[ident.OldID]ident.NewID
}

func newMapping() *mapping {
	return &mapping{
		fn:  make(map[ident.OldID]ident.NewID),
		tbl: make(map[ident.OldID]ident.NewID),
		mem: make(map[ident.OldID]ident.NewID),
		glb: make(map[ident.OldID]ident.NewID),
	}
}

// Merge produces the output module. indices must hold one modindex.Index
// per input, built with the same Name. names carries the clash
// resolution's emitted name for any occurrence the clash detector
// renamed; an occurrence absent from names keeps its original name.
func Merge(inputs []Input, indices map[ident.Module]*modindex.Index, graphs Graphs, reductions Reductions, names map[clash.Occurrence]string) *wasm.Module {
	out := &wasm.Module{}
	mp := newMapping()

	allocateFuncImports(out, indices, reductions.Func.SurvivingImports, mp.fn)
	allocateTableImports(out, indices, reductions.Table.SurvivingImports, mp.tbl)
	allocateMemImports(out, indices, reductions.Memory.SurvivingImports, mp.mem)
	allocateGlobalImports(out, indices, reductions.Global.SurvivingImports, mp.glb)

	allocateFuncLocals(out, inputs, indices, mp.fn)
	allocateTableLocals(out, inputs, indices, mp.tbl)
	allocateMemLocals(out, inputs, indices, mp.mem)
	allocateGlobalLocalShells(out, inputs, indices, mp.glb)

	populateResolved(graphs.Func, reductions.Func, mp.fn)
	populateResolved(graphs.Table, reductions.Table, mp.tbl)
	populateResolved(graphs.Memory, reductions.Memory, mp.mem)
	populateResolved(graphs.Global, reductions.Global, mp.glb)

	fillGlobalInits(out, inputs, indices, mp)
	copySegments(out, inputs, indices, mp)
	copyFunctionBodies(out, inputs, indices, mp)

	emitExports(out, ident.Function, reductions.Func.SurvivingExports, mp.fn, names, wasm.KindFunc)
	emitExports(out, ident.Table, reductions.Table.SurvivingExports, mp.tbl, names, wasm.KindTable)
	emitExports(out, ident.Memory, reductions.Memory.SurvivingExports, mp.mem, names, wasm.KindMemory)
	emitExports(out, ident.Global, reductions.Global.SurvivingExports, mp.glb, names, wasm.KindGlobal)

	synthesizeStart(out, inputs, mp)
	attachMetadata(out, inputs)

	return out
}

// populateResolved fills in the mapping entry for every import whose
// Imports edge survived reduction (i.e. it was resolved away rather than
// kept): its new id is simply the new id already assigned to its
// reduction source, which by this point — every surviving import and
// every local already allocated — is guaranteed present.
func populateResolved[T any](g *depgraph.Graph[T], r reduce.Result[T], mp map[ident.OldID]ident.NewID) {
	for _, imp := range g.Imports() {
		if !imp.HasEdge() {
			continue // surviving import, already mapped in the allocation pass
		}
		src := r.ImportSource[imp.ID]
		mp[imp.ID] = mp[src.ID()]
	}
}

func allocateFuncImports(out *wasm.Module, indices map[ident.Module]*modindex.Index, surviving []*depgraph.Import[depgraph.FuncSig], mp map[ident.OldID]ident.NewID) {
	for _, imp := range surviving {
		ix := indices[imp.ImportingModule]
		original := ix.FuncImport(int(imp.ID.Index))
		newType := out.AddType(ix.Mod.Types[original.Desc.TypeIdx])
		out.Imports = append(out.Imports, wasm.Import{
			Module: string(imp.ExportingModule),
			Name:   string(imp.ExportedName),
			Desc:   wasm.ImportDesc{Kind: wasm.KindFunc, TypeIdx: newType},
		})
		mp[imp.ID] = ident.NewID(out.NumImportedFuncs() - 1)
	}
}

func allocateTableImports(out *wasm.Module, indices map[ident.Module]*modindex.Index, surviving []*depgraph.Import[depgraph.TableSig], mp map[ident.OldID]ident.NewID) {
	for _, imp := range surviving {
		ix := indices[imp.ImportingModule]
		original := ix.TableImport(int(imp.ID.Index))
		out.Imports = append(out.Imports, wasm.Import{
			Module: string(imp.ExportingModule),
			Name:   string(imp.ExportedName),
			Desc:   wasm.ImportDesc{Kind: wasm.KindTable, Table: original.Desc.Table},
		})
		mp[imp.ID] = ident.NewID(out.NumImportedTables() - 1)
	}
}

func allocateMemImports(out *wasm.Module, indices map[ident.Module]*modindex.Index, surviving []*depgraph.Import[depgraph.MemorySig], mp map[ident.OldID]ident.NewID) {
	for _, imp := range surviving {
		ix := indices[imp.ImportingModule]
		original := ix.MemImport(int(imp.ID.Index))
		out.Imports = append(out.Imports, wasm.Import{
			Module: string(imp.ExportingModule),
			Name:   string(imp.ExportedName),
			Desc:   wasm.ImportDesc{Kind: wasm.KindMemory, Memory: original.Desc.Memory},
		})
		mp[imp.ID] = ident.NewID(out.NumImportedMemories() - 1)
	}
}

func allocateGlobalImports(out *wasm.Module, indices map[ident.Module]*modindex.Index, surviving []*depgraph.Import[depgraph.GlobalSig], mp map[ident.OldID]ident.NewID) {
	for _, imp := range surviving {
		ix := indices[imp.ImportingModule]
		original := ix.GlobalImport(int(imp.ID.Index))
		out.Imports = append(out.Imports, wasm.Import{
			Module: string(imp.ExportingModule),
			Name:   string(imp.ExportedName),
			Desc:   wasm.ImportDesc{Kind: wasm.KindGlobal, Global: original.Desc.Global},
		})
		mp[imp.ID] = ident.NewID(out.NumImportedGlobals() - 1)
	}
}

// allocateFuncLocals materializes every function defined in every input
// module, unconditionally. Every Local trivially reduces to itself, so
// the reduction-source criterion never excludes a local function —
// copying them all is the only behavior-preserving choice, since a local
// may still be called indirectly (table, ref.func) even with no surviving
// export naming it. Code is left empty here; copyFunctionBodies fills it
// once every kind's mapping is complete.
func allocateFuncLocals(out *wasm.Module, inputs []Input, indices map[ident.Module]*modindex.Index, mp map[ident.OldID]ident.NewID) {
	for _, in := range inputs {
		ix := indices[in.Name]
		for i := 0; i < ix.NumFuncLocals(); i++ {
			newType := out.AddType(ix.Mod.Types[ix.FuncLocalType(i)])
			out.Funcs = append(out.Funcs, newType)
			out.Code = append(out.Code, wasm.FuncBody{})
			old := ident.OldID{Module: in.Name, Index: uint32(ix.NumFuncImports() + i)}
			mp[old] = ident.NewID(out.NumImportedFuncs() + len(out.Funcs) - 1)
		}
	}
}

func allocateTableLocals(out *wasm.Module, inputs []Input, indices map[ident.Module]*modindex.Index, mp map[ident.OldID]ident.NewID) {
	for _, in := range inputs {
		ix := indices[in.Name]
		for i := 0; i < ix.NumTableLocals(); i++ {
			out.Tables = append(out.Tables, *ix.TableLocal(i))
			old := ident.OldID{Module: in.Name, Index: uint32(ix.NumTableImports() + i)}
			mp[old] = ident.NewID(out.NumImportedTables() + len(out.Tables) - 1)
		}
	}
}

func allocateMemLocals(out *wasm.Module, inputs []Input, indices map[ident.Module]*modindex.Index, mp map[ident.OldID]ident.NewID) {
	for _, in := range inputs {
		ix := indices[in.Name]
		for i := 0; i < ix.NumMemLocals(); i++ {
			out.Memories = append(out.Memories, *ix.MemLocal(i))
			old := ident.OldID{Module: in.Name, Index: uint32(ix.NumMemImports() + i)}
			mp[old] = ident.NewID(out.NumImportedMemories() + len(out.Memories) - 1)
		}
	}
}

// allocateGlobalLocalShells reserves a new id and the global's type for
// every local global, with Init left as the original (untranslated)
// bytes. fillGlobalInits retranslates Init once every kind's mapping —
// including every global's own new id, reserved right here — is
// complete, which a global's init expression may need (ref.func and
// global.get can both reach forward within the combined index space).
func allocateGlobalLocalShells(out *wasm.Module, inputs []Input, indices map[ident.Module]*modindex.Index, mp map[ident.OldID]ident.NewID) {
	for _, in := range inputs {
		ix := indices[in.Name]
		for i := 0; i < ix.NumGlobalLocals(); i++ {
			g := ix.GlobalLocal(i)
			out.Globals = append(out.Globals, wasm.Global{Type: g.Type, Init: g.Init})
			old := ident.OldID{Module: in.Name, Index: uint32(ix.NumGlobalImports() + i)}
			mp[old] = ident.NewID(out.NumImportedGlobals() + len(out.Globals) - 1)
		}
	}
}

// fillGlobalInits retranslates every local global's Init expression now
// that mp is complete for every kind.
func fillGlobalInits(out *wasm.Module, inputs []Input, indices map[ident.Module]*modindex.Index, mp *mapping) {
	for _, in := range inputs {
		ix := indices[in.Name]
		c := &ctx{module: in.Name, ix: ix, mp: mp, out: out}
		for i := 0; i < ix.NumGlobalLocals(); i++ {
			outIdx := mp.glb[ident.OldID{Module: in.Name, Index: uint32(ix.NumGlobalImports() + i)}]
			out.Globals[int(outIdx)-out.NumImportedGlobals()].Init = c.translateExpr(ix.GlobalLocal(i).Init)
		}
	}
}

// emitExports appends a wasm.Export for every surviving export of one
// kind. names carries any clash-resolved rename; absent entries keep
// their original export name.
func emitExports[T any](out *wasm.Module, kind ident.Kind, exports []*depgraph.Export[T], mp map[ident.OldID]ident.NewID, names map[clash.Occurrence]string, kindByte byte) {
	for _, exp := range exports {
		name := string(exp.Name)
		if renamed, ok := names[clash.Occurrence{Kind: kind, Module: exp.Module, Name: exp.Name}]; ok {
			name = renamed
		}
		out.Exports = append(out.Exports, wasm.Export{
			Name: name,
			Kind: kindByte,
			Idx:  uint32(mp[exp.Target]),
		})
	}
}

// synthesizeStart combines every input module's start function, in input
// order, into a single start function on the output. A single surviving
// start function is reused directly rather than wrapped.
func synthesizeStart(out *wasm.Module, inputs []Input, mp *mapping) {
	var starts []ident.NewID
	for _, in := range inputs {
		if in.Module.Start == nil {
			continue
		}
		old := ident.OldID{Module: in.Name, Index: *in.Module.Start}
		starts = append(starts, mp.fn[old])
	}
	switch len(starts) {
	case 0:
		return
	case 1:
		idx := uint32(starts[0])
		out.Start = &idx
	default:
		instrs := make([]wasm.Instruction, 0, len(starts)+1)
		for _, s := range starts {
			instrs = append(instrs, wasm.Instruction{Opcode: wasm.OpCall, Imm: wasm.CallImm{FuncIdx: uint32(s)}})
		}
		instrs = append(instrs, wasm.Instruction{Opcode: wasm.OpEnd})
		typeIdx := out.AddType(wasm.FuncType{})
		out.Funcs = append(out.Funcs, typeIdx)
		out.Code = append(out.Code, wasm.FuncBody{Code: wasm.EncodeInstructions(instrs)})
		newIdx := uint32(out.NumImportedFuncs() + len(out.Funcs) - 1)
		out.Start = &newIdx
	}
}

// attachMetadata synthesizes a producers custom section and a module-name
// subsection identifying the merge's inputs. It does not attempt to
// preserve every input's own custom sections — DWARF and other
// tool-specific sections rarely survive reindexing meaningfully and are
// dropped, matching the behavior-preservation property's scope (callable
// surface, not debug metadata).
func attachMetadata(out *wasm.Module, inputs []Input) {
	var qualified []string
	for _, in := range inputs {
		if internal, ok := internalModuleName(in.Module); ok {
			qualified = append(qualified, string(in.Name)+"::"+internal)
		}
	}
	out.CustomSections = append(out.CustomSections,
		wasm.CustomSection{Name: "producers", Data: encodeProducers()},
		wasm.CustomSection{Name: "name", Data: encodeNameSection(joinNames(qualified))},
	)
}

// joinNames implements the module-name synthesis rule: the concatenation
// of "{input_module}::{internal_name}" for each input that had an
// internal name, joined by "-". An input with no "name" section simply
// contributes nothing.
func joinNames(qualified []string) string {
	out := ""
	for i, n := range qualified {
		if i > 0 {
			out += "-"
		}
		out += n
	}
	return out
}
