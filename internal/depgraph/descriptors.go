package depgraph

import "github.com/aaronmunsters/wasm-merge/wasm"

// FuncSig is the Function kind's type descriptor: parameter and result
// value types.
type FuncSig struct {
	Params  []wasm.ValType
	Results []wasm.ValType
}

func (a FuncSig) Equal(b FuncSig) bool {
	return valTypesEqual(a.Params, b.Params) && valTypesEqual(a.Results, b.Results)
}

func valTypesEqual(a, b []wasm.ValType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TableSig is the Table kind's type descriptor: element reference type.
// Limits are not part of the descriptor — spec.md §1 Non-goals declares
// mismatched table shapes undefined, and limits never participate in
// type-checking, only element type does.
type TableSig struct {
	ElemType wasm.ValType
}

func (a TableSig) Equal(b TableSig) bool { return a.ElemType == b.ElemType }

// MemorySig is the Memory kind's type descriptor: unit. Memories carry no
// cross-module type refinement per spec.md §3.
type MemorySig struct{}

func (MemorySig) Equal(MemorySig) bool { return true }

// GlobalSig is the Global kind's type descriptor: value type, mutability,
// and shared flag.
type GlobalSig struct {
	ValType wasm.ValType
	Mutable bool
	Shared  bool
}

func (a GlobalSig) Equal(b GlobalSig) bool {
	return a.ValType == b.ValType && a.Mutable == b.Mutable && a.Shared == b.Shared
}
