// Package ident defines the identifier vocabulary shared by every stage of
// the merger core: module names, the four entity kinds, and the old
// (input-space) vs. new (output-space) identifiers that must never be
// confused with one another.
package ident

import "fmt"

// Kind partitions the dependency universe. The four kinds are resolved
// independently; only clash detection ever looks across them.
type Kind uint8

const (
	Function Kind = iota
	Table
	Memory
	Global
)

func (k Kind) String() string {
	switch k {
	case Function:
		return "function"
	case Table:
		return "table"
	case Memory:
		return "memory"
	case Global:
		return "global"
	default:
		return "unknown"
	}
}

// Kinds lists the four kinds in a fixed, stable order, used wherever a
// deterministic per-kind pass is required (clash projection, logging).
var Kinds = [4]Kind{Function, Table, Memory, Global}

// Module is an input module's name. Insertion order of the input list
// (not the string value) defines output ordering; Module is only an
// identity, never a sort key.
type Module string

// OldID identifies an entity in one input module's per-kind arena: the
// module it came from, plus its within-module index. It is the only
// input-space identifier type; nothing in the output identifier space is
// ever representable as an OldID, by construction of the type system.
type OldID struct {
	Module Module
	Index  uint32
}

func (o OldID) String() string {
	return fmt.Sprintf("%s#%d", o.Module, o.Index)
}

// NewID identifies an entity in the output module's per-kind arena. It
// carries no module — the output has exactly one module. NewID and OldID
// are distinct Go types (a struct and a named integer) precisely so the
// compiler rejects any attempt to use one where the other is expected;
// per spec this is a correctness decision, not an ergonomic one.
type NewID uint32

// ExportName is the name by which an entity is exported. It is not an
// identifier on its own — two exports of different kinds may legally
// share a name — but it keys the per-module, per-kind export lookup used
// by the linker.
type ExportName string
