// Package wasm is the binary decode/encode layer the rest of this
// repository treats as a fixed external contract: a core WebAssembly
// module in, an AST out, and back again.
//
// It targets the WebAssembly 2.0 core spec plus the proposals modules in
// the wild commonly already use ahead of standardization.
//
// # Coverage
//
//	Core (2.0):
//	  - i32/i64/f32/f64 value types
//	  - functions, tables, memories, globals, tags
//	  - control flow, calls, local/global access
//	  - memory and table instructions
//	  - import/export of every definition kind
//
//	Proposals:
//	  - GC: struct/array/rec types, typed references, heap types
//	  - exception handling: tags, try/catch, throw
//	  - tail calls: return_call, return_call_indirect
//	  - SIMD: v128 and its instruction family
//	  - threads: atomics, shared memory
//	  - bulk memory: memory.copy/fill, data.drop
//	  - reference types: funcref, externref, ref.null/is_null
//	  - multi-memory, memory64
//
// # Parsing and encoding
//
//	mod, err := wasm.ParseModule(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out := mod.Encode()
//
// ParseModuleValidate additionally runs Module.Validate before returning,
// for callers that want structural well-formedness checked up front
// rather than as a separate step.
//
// Parsing and re-encoding a module is semantics-preserving: the decoded
// AST carries everything Encode needs to reproduce an equivalent binary,
// though not necessarily byte-identical (canonical section ordering and
// custom-section placement are normalized).
//
// # Module shape
//
//	mod.Types      []FuncType    function signatures (plain, non-GC form)
//	mod.TypeDefs    []TypeDef    full type definitions once any GC type is present
//	mod.Funcs      []uint32      each local function's type index
//	mod.Tables     []TableType
//	mod.Memories   []MemoryType
//	mod.Globals    []Global
//	mod.Tags       []TagType
//	mod.Imports    []Import
//	mod.Exports    []Export
//	mod.Code       []FuncBody
//	mod.Data       []DataSegment
//	mod.Elements   []Element
//
// # Instructions
//
// Function bodies and constant expressions stay as raw bytes inside
// FuncBody/init-expr fields until a caller asks for the decoded form:
//
//	instrs, err := wasm.DecodeInstructions(body.Code)
//	body.Code = wasm.EncodeInstructions(instrs)
//
// DecodeInstructions produces a flat slice with branch targets already
// expressed as relative depths rather than a nested block tree, which is
// what internal/rewrite needs to translate operand indices without first
// reconstructing structured control flow.
//
// # Validation
//
// Module.Validate checks structural well-formedness only — every index
// a module refers to (type, function, table, memory, global, tag) is in
// bounds, export targets exist, a declared start function's signature is
// nullary, limits are internally consistent. It does not type-check
// instruction sequences or verify stack effects; that is out of scope
// for an AST-level package with no interest in executing anything.
//
// # LEB128
//
//	u, err := wasm.ReadLEB128u(bytes.NewReader(data))
//	s, err := wasm.ReadLEB128s(bytes.NewReader(data))
package wasm
