package merge

import (
	"encoding/binary"

	"github.com/aaronmunsters/wasm-merge/errs"
	"github.com/aaronmunsters/wasm-merge/internal/depgraph"
	"github.com/aaronmunsters/wasm-merge/internal/ident"
	"github.com/aaronmunsters/wasm-merge/internal/modindex"
	"github.com/aaronmunsters/wasm-merge/wasm"
)

// graphs bundles the four kind-specific graphs under construction across
// every input module.
type graphs struct {
	fn  *depgraph.Graph[depgraph.FuncSig]
	tbl *depgraph.Graph[depgraph.TableSig]
	mem *depgraph.Graph[depgraph.MemorySig]
	glb *depgraph.Graph[depgraph.GlobalSig]
}

func newGraphs() *graphs {
	return &graphs{
		fn:  depgraph.New[depgraph.FuncSig](ident.Function),
		tbl: depgraph.New[depgraph.TableSig](ident.Table),
		mem: depgraph.New[depgraph.MemorySig](ident.Memory),
		glb: depgraph.New[depgraph.GlobalSig](ident.Global),
	}
}

// isComponentPreamble reports whether data carries a Component Model
// binary's version field (>1) rather than a core module's (1). Grounded
// on the teacher's component.IsComponent preamble check; the merger
// itself never parses components, it only needs to recognize and reject
// one early.
func isComponentPreamble(data []byte) bool {
	if len(data) < 8 {
		return false
	}
	if data[0] != 0x00 || data[1] != 0x61 || data[2] != 0x73 || data[3] != 0x6D {
		return false
	}
	return binary.LittleEndian.Uint32(data[4:8]) > 1
}

// buildModule registers every import, local, and export of one parsed
// module into the four graphs, classified by kind via its modindex.Index.
// A Funcs/Code count mismatch — a function declared without a body — is
// the Core Module shape a Component Model toolchain artifact leaves
// behind; it is rejected the same as a Component preamble.
func buildModule(g *graphs, name ident.Module, mod *wasm.Module) (*modindex.Index, error) {
	if len(mod.Funcs) != len(mod.Code) {
		return nil, errs.UnsupportedComponentModel(string(name))
	}

	ix := modindex.Build(name, mod)

	for i := 0; i < ix.NumFuncImports(); i++ {
		imp := ix.FuncImport(i)
		sig := funcSig(mod, imp.Desc.TypeIdx)
		g.fn.AddImport(name, ident.Module(imp.Module), uint32(i), ident.ExportName(imp.Name), sig)
	}
	for i := 0; i < ix.NumTableImports(); i++ {
		imp := ix.TableImport(i)
		g.tbl.AddImport(name, ident.Module(imp.Module), uint32(i), ident.ExportName(imp.Name), tableSig(imp.Desc.Table))
	}
	for i := 0; i < ix.NumMemImports(); i++ {
		imp := ix.MemImport(i)
		g.mem.AddImport(name, ident.Module(imp.Module), uint32(i), ident.ExportName(imp.Name), depgraph.MemorySig{})
	}
	for i := 0; i < ix.NumGlobalImports(); i++ {
		imp := ix.GlobalImport(i)
		g.glb.AddImport(name, ident.Module(imp.Module), uint32(i), ident.ExportName(imp.Name), globalSig(imp.Desc.Global))
	}

	for i := 0; i < ix.NumFuncLocals(); i++ {
		sig := funcSig(mod, ix.FuncLocalType(i))
		g.fn.AddLocal(name, uint32(ix.NumFuncImports()+i), sig)
	}
	for i := 0; i < ix.NumTableLocals(); i++ {
		g.tbl.AddLocal(name, uint32(ix.NumTableImports()+i), tableSig(ix.TableLocal(i)))
	}
	for i := 0; i < ix.NumMemLocals(); i++ {
		g.mem.AddLocal(name, uint32(ix.NumMemImports()+i), depgraph.MemorySig{})
	}
	for i := 0; i < ix.NumGlobalLocals(); i++ {
		gl := ix.GlobalLocal(i)
		g.glb.AddLocal(name, uint32(ix.NumGlobalImports()+i), depgraph.GlobalSig{ValType: gl.Type.ValType, Mutable: gl.Type.Mutable})
	}

	for _, exp := range mod.Exports {
		switch exp.Kind {
		case wasm.KindFunc:
			g.fn.AddExport(name, ident.ExportName(exp.Name), exp.Idx, funcSigByIdx(mod, ix, int(exp.Idx)))
		case wasm.KindTable:
			g.tbl.AddExport(name, ident.ExportName(exp.Name), exp.Idx, tableSigByIdx(mod, ix, int(exp.Idx)))
		case wasm.KindMemory:
			g.mem.AddExport(name, ident.ExportName(exp.Name), exp.Idx, depgraph.MemorySig{})
		case wasm.KindGlobal:
			g.glb.AddExport(name, ident.ExportName(exp.Name), exp.Idx, globalSigByIdx(mod, ix, int(exp.Idx)))
		}
	}

	return ix, nil
}

func funcSig(mod *wasm.Module, typeIdx uint32) depgraph.FuncSig {
	ft := mod.Types[typeIdx]
	return depgraph.FuncSig{Params: ft.Params, Results: ft.Results}
}

// funcSigByIdx resolves the signature of a function referenced by its
// module-wide (import-space-inclusive) index, as export entries use.
func funcSigByIdx(mod *wasm.Module, ix *modindex.Index, idx int) depgraph.FuncSig {
	if idx < ix.NumFuncImports() {
		return funcSig(mod, ix.FuncImport(idx).Desc.TypeIdx)
	}
	return funcSig(mod, ix.FuncLocalType(idx-ix.NumFuncImports()))
}

func tableSig(t *wasm.TableType) depgraph.TableSig {
	if t == nil {
		return depgraph.TableSig{}
	}
	return depgraph.TableSig{ElemType: wasm.ValType(t.ElemType)}
}

func tableSigByIdx(mod *wasm.Module, ix *modindex.Index, idx int) depgraph.TableSig {
	if idx < ix.NumTableImports() {
		return tableSig(ix.TableImport(idx).Desc.Table)
	}
	return tableSig(ix.TableLocal(idx - ix.NumTableImports()))
}

func globalSig(g *wasm.GlobalType) depgraph.GlobalSig {
	if g == nil {
		return depgraph.GlobalSig{}
	}
	return depgraph.GlobalSig{ValType: g.ValType, Mutable: g.Mutable}
}

func globalSigByIdx(mod *wasm.Module, ix *modindex.Index, idx int) depgraph.GlobalSig {
	if idx < ix.NumGlobalImports() {
		return globalSig(ix.GlobalImport(idx).Desc.Global)
	}
	return globalSig(&ix.GlobalLocal(idx - ix.NumGlobalImports()).Type)
}
