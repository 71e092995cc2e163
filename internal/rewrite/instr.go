package rewrite

import (
	"github.com/aaronmunsters/wasm-merge/internal/ident"
	"github.com/aaronmunsters/wasm-merge/internal/modindex"
	"github.com/aaronmunsters/wasm-merge/wasm"
)

// ctx carries everything operand translation needs for one input
// module's instruction stream: which module it came from (to build old
// ids), that module's arena view, the complete cross-kind mapping, and
// the output module being built (new types are interned into it via
// AddType as they're encountered).
type ctx struct {
	module ident.Module
	ix     *modindex.Index
	mp     *mapping
	out    *wasm.Module
}

func (c *ctx) old(idx uint32) ident.OldID {
	return ident.OldID{Module: c.module, Index: idx}
}

// translateExpr decodes a raw init-expression (or function body), by
// operand, and re-encodes it. Labels (br/br_if/br_table) and local
// indices (local.get/set/tee) need no translation: the flat instruction
// encoding addresses labels by relative nesting depth, unaffected by
// merging, and a function's locals are copied into the output in the
// same order they had on input, so local indices are carried over
// unchanged too.
func (c *ctx) translateExpr(code []byte) []byte {
	instrs, err := wasm.DecodeInstructions(code)
	if err != nil {
		// Re-decoding bytes this same package's Decode already accepted
		// once cannot fail; fall back to a verbatim copy rather than
		// propagate an error that can't happen.
		return append([]byte(nil), code...)
	}
	return wasm.EncodeInstructions(c.translateInstrs(instrs))
}

func (c *ctx) translateInstrs(instrs []wasm.Instruction) []wasm.Instruction {
	out := make([]wasm.Instruction, len(instrs))
	for i, instr := range instrs {
		out[i] = c.translateInstr(instr)
	}
	return out
}

func (c *ctx) translateInstr(instr wasm.Instruction) wasm.Instruction {
	switch imm := instr.Imm.(type) {
	case wasm.BlockImm:
		instr.Imm = wasm.BlockImm{Type: c.translateBlockType(imm.Type)}
	case wasm.TryTableImm:
		instr.Imm = wasm.TryTableImm{BlockType: c.translateBlockType(imm.BlockType), Catches: c.translateCatches(imm.Catches)}
	case wasm.CallImm:
		instr.Imm = wasm.CallImm{FuncIdx: uint32(c.mp.fn[c.old(imm.FuncIdx)])}
	case wasm.RefFuncImm:
		instr.Imm = wasm.RefFuncImm{FuncIdx: uint32(c.mp.fn[c.old(imm.FuncIdx)])}
	case wasm.CallIndirectImm:
		instr.Imm = wasm.CallIndirectImm{
			TypeIdx:  c.out.AddType(c.ix.Mod.Types[imm.TypeIdx]),
			TableIdx: uint32(c.mp.tbl[c.old(imm.TableIdx)]),
		}
	case wasm.CallRefImm:
		instr.Imm = wasm.CallRefImm{TypeIdx: c.out.AddType(c.ix.Mod.Types[imm.TypeIdx])}
	case wasm.TableImm:
		instr.Imm = wasm.TableImm{TableIdx: uint32(c.mp.tbl[c.old(imm.TableIdx)])}
	case wasm.GlobalImm:
		instr.Imm = wasm.GlobalImm{GlobalIdx: uint32(c.mp.glb[c.old(imm.GlobalIdx)])}
	case wasm.MemoryImm:
		instr.Imm = wasm.MemoryImm{Offset: imm.Offset, Align: imm.Align, MemIdx: uint32(c.mp.mem[c.old(imm.MemIdx)])}
	case wasm.MemoryIdxImm:
		instr.Imm = wasm.MemoryIdxImm{MemIdx: uint32(c.mp.mem[c.old(imm.MemIdx)])}
	case wasm.RefNullImm:
		instr.Imm = wasm.RefNullImm{HeapType: c.translateHeapType(imm.HeapType)}
	case wasm.SelectTypeImm:
		instr.Imm = imm // value types only, no index to translate
	case wasm.SIMDImm:
		instr.Imm = c.translateSIMD(imm)
	case wasm.AtomicImm:
		instr.Imm = c.translateAtomic(imm)
	case wasm.GCImm:
		instr.Imm = c.translateGC(imm)
	case wasm.MiscImm:
		instr.Imm = c.translateMisc(imm)
	case wasm.ThrowImm:
		instr.Imm = wasm.ThrowImm{TagIdx: imm.TagIdx + uint32(c.ix.TagBase)}
	// BranchImm, BrTableImm (labels), LocalImm (locals), I32Imm, I64Imm,
	// F32Imm, F64Imm, and opcodes carrying no Imm at all: copied as-is.
	default:
	}
	return instr
}

func (c *ctx) translateBlockType(t int32) int32 {
	if t < 0 {
		return t // void or a value type, encoded negative, no translation
	}
	return int32(c.out.AddType(c.ix.Mod.Types[t]))
}

// translateHeapType remaps a concrete type index (typed function
// references); abstract heap types (funcref, externref, ...) are negative
// and pass through unchanged.
func (c *ctx) translateHeapType(h int64) int64 {
	if h < 0 {
		return h
	}
	return int64(c.out.AddType(c.ix.Mod.Types[h]))
}

func (c *ctx) translateCatches(catches []wasm.CatchClause) []wasm.CatchClause {
	out := make([]wasm.CatchClause, len(catches))
	for i, cc := range catches {
		out[i] = cc
		if cc.Kind == 0 || cc.Kind == 1 {
			out[i].TagIdx = cc.TagIdx + uint32(c.ix.TagBase)
		}
	}
	return out
}

func (c *ctx) translateSIMD(imm wasm.SIMDImm) wasm.SIMDImm {
	if imm.MemArg != nil {
		translated := wasm.MemoryImm{Offset: imm.MemArg.Offset, Align: imm.MemArg.Align, MemIdx: uint32(c.mp.mem[c.old(imm.MemArg.MemIdx)])}
		imm.MemArg = &translated
	}
	return imm
}

func (c *ctx) translateAtomic(imm wasm.AtomicImm) wasm.AtomicImm {
	if imm.MemArg != nil {
		translated := wasm.MemoryImm{Offset: imm.MemArg.Offset, Align: imm.MemArg.Align, MemIdx: uint32(c.mp.mem[c.old(imm.MemArg.MemIdx)])}
		imm.MemArg = &translated
	}
	return imm
}

// translateGC translates the data/element base offsets a GC instruction
// may carry (array.new_data, array.init_elem, ...). TypeIdx/HeapType
// translation is intentionally not attempted: m.Types only holds the
// func-kind subset of the flat type index space, misaligned with it as
// soon as a module declares any struct or array type, so a merge of
// modules using the function-references/GC proposal's own type indices
// is out of scope.
func (c *ctx) translateGC(imm wasm.GCImm) wasm.GCImm {
	out := imm
	out.DataIdx = imm.DataIdx + uint32(c.ix.DataBase)
	out.ElemIdx = imm.ElemIdx + uint32(c.ix.ElemBase)
	return out
}

func (c *ctx) translateMisc(imm wasm.MiscImm) wasm.MiscImm {
	switch imm.SubOpcode {
	case wasm.MiscTableInit:
		elemIdx, tableIdx := imm.Operands[0], imm.Operands[1]
		return wasm.MiscImm{SubOpcode: imm.SubOpcode, Operands: []uint32{
			elemIdx + uint32(c.ix.ElemBase), uint32(c.mp.tbl[c.old(tableIdx)]),
		}}
	case wasm.MiscElemDrop:
		return wasm.MiscImm{SubOpcode: imm.SubOpcode, Operands: []uint32{imm.Operands[0] + uint32(c.ix.ElemBase)}}
	case wasm.MiscTableCopy:
		dst, src := imm.Operands[0], imm.Operands[1]
		return wasm.MiscImm{SubOpcode: imm.SubOpcode, Operands: []uint32{
			uint32(c.mp.tbl[c.old(dst)]), uint32(c.mp.tbl[c.old(src)]),
		}}
	case wasm.MiscTableGrow, wasm.MiscTableSize, wasm.MiscTableFill:
		return wasm.MiscImm{SubOpcode: imm.SubOpcode, Operands: []uint32{uint32(c.mp.tbl[c.old(imm.Operands[0])])}}
	case wasm.MiscMemoryInit:
		dataIdx, memIdx := imm.Operands[0], imm.Operands[1]
		return wasm.MiscImm{SubOpcode: imm.SubOpcode, Operands: []uint32{
			dataIdx + uint32(c.ix.DataBase), uint32(c.mp.mem[c.old(memIdx)]),
		}}
	case wasm.MiscDataDrop:
		return wasm.MiscImm{SubOpcode: imm.SubOpcode, Operands: []uint32{imm.Operands[0] + uint32(c.ix.DataBase)}}
	case wasm.MiscMemoryCopy:
		dst, src := imm.Operands[0], imm.Operands[1]
		return wasm.MiscImm{SubOpcode: imm.SubOpcode, Operands: []uint32{
			uint32(c.mp.mem[c.old(dst)]), uint32(c.mp.mem[c.old(src)]),
		}}
	case wasm.MiscMemoryFill, wasm.MiscMemoryDiscard:
		return wasm.MiscImm{SubOpcode: imm.SubOpcode, Operands: []uint32{uint32(c.mp.mem[c.old(imm.Operands[0])])}}
	default:
		return imm // saturating truncations: no operands
	}
}
