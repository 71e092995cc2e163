package rewrite

import (
	"github.com/aaronmunsters/wasm-merge/internal/ident"
	"github.com/aaronmunsters/wasm-merge/internal/modindex"
	"github.com/aaronmunsters/wasm-merge/wasm"
)

// copySegments copies every input module's element, data, and tag
// entries into the output 1:1 — none of the three belong to any Kind's
// dependency graph, so nothing about them is ever reduced or renamed,
// only their operands (offset expressions, function indices, table and
// memory targets) need translating. ElemBase/DataBase/TagBase on each
// module's Index are set here, immediately before the entries they
// describe are appended, so copyFunctionBodies can translate bulk-memory
// operands against them afterwards.
func copySegments(out *wasm.Module, inputs []Input, indices map[ident.Module]*modindex.Index, mp *mapping) {
	for _, in := range inputs {
		ix := indices[in.Name]
		ix.ElemBase = len(out.Elements)
		ix.DataBase = len(out.Data)
		ix.TagBase = len(out.Tags)

		c := &ctx{module: in.Name, ix: ix, mp: mp, out: out}
		for _, elem := range ix.Mod.Elements {
			out.Elements = append(out.Elements, c.translateElement(elem))
		}
		for _, seg := range ix.Mod.Data {
			out.Data = append(out.Data, c.translateData(seg))
		}
		out.Tags = append(out.Tags, ix.Mod.Tags...)
	}
	if len(out.Data) > 0 {
		n := uint32(len(out.Data))
		out.DataCount = &n
	}
}

// translateElement remaps an element segment's table target and
// contents. Active segments with the implicit table-0 encoding (flags 0
// or 4) are re-flagged to the explicit-table-index form (2 or 6) when
// their table no longer lands at output index 0 after merging — the
// implicit form can only ever mean physical table 0.
func (c *ctx) translateElement(elem wasm.Element) wasm.Element {
	out := elem
	active := elem.Flags&0x01 == 0
	usesExprs := elem.Flags&0x04 != 0

	if active {
		tableIdx := elem.TableIdx
		if elem.Flags&0x02 == 0 {
			tableIdx = 0
		}
		newTable := uint32(c.mp.tbl[c.old(tableIdx)])
		out.TableIdx = newTable
		out.Offset = c.translateExpr(elem.Offset)
		switch {
		case usesExprs && newTable == 0:
			out.Flags = 4
		case usesExprs:
			out.Flags = 6
		case newTable == 0:
			out.Flags = 0
		default:
			out.Flags = 2
		}
	}

	if usesExprs {
		exprs := make([][]byte, len(elem.Exprs))
		for i, e := range elem.Exprs {
			exprs[i] = c.translateExpr(e)
		}
		out.Exprs = exprs
	} else {
		idxs := make([]uint32, len(elem.FuncIdxs))
		for i, f := range elem.FuncIdxs {
			idxs[i] = uint32(c.mp.fn[c.old(f)])
		}
		out.FuncIdxs = idxs
	}

	if elem.RefType != nil {
		rt := *elem.RefType
		rt.HeapType = c.translateHeapType(rt.HeapType)
		out.RefType = &rt
	}
	return out
}

// translateData remaps a data segment's memory target and offset
// expression, with the same implicit-to-explicit re-flagging as
// translateElement.
func (c *ctx) translateData(seg wasm.DataSegment) wasm.DataSegment {
	out := seg
	if seg.Flags == 1 {
		return out // passive: no memory target to translate
	}
	memIdx := seg.MemIdx
	if seg.Flags == 0 {
		memIdx = 0
	}
	newMem := uint32(c.mp.mem[c.old(memIdx)])
	out.MemIdx = newMem
	out.Offset = c.translateExpr(seg.Offset)
	if newMem == 0 {
		out.Flags = 0
	} else {
		out.Flags = 2
	}
	return out
}

// copyFunctionBodies fills in the Code placeholder every local function
// was given during allocateFuncLocals, translating each body's operands
// now that every kind's mapping, plus every module's element/data/tag
// base offsets, are final.
func copyFunctionBodies(out *wasm.Module, inputs []Input, indices map[ident.Module]*modindex.Index, mp *mapping) {
	for _, in := range inputs {
		ix := indices[in.Name]
		c := &ctx{module: in.Name, ix: ix, mp: mp, out: out}
		for i := 0; i < ix.NumFuncLocals(); i++ {
			outIdx := mp.fn[ident.OldID{Module: in.Name, Index: uint32(ix.NumFuncImports() + i)}]
			body := ix.FuncLocalBody(i)
			out.Code[int(outIdx)-out.NumImportedFuncs()] = wasm.FuncBody{
				Locals: body.Locals,
				Code:   c.translateExpr(body.Code),
			}
		}
	}
}
