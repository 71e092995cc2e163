package merge

import (
	"github.com/aaronmunsters/wasm-merge/internal/clash"
	"github.com/aaronmunsters/wasm-merge/internal/depgraph"
	"github.com/aaronmunsters/wasm-merge/internal/ident"
	"github.com/aaronmunsters/wasm-merge/internal/reduce"
	"github.com/aaronmunsters/wasm-merge/internal/typecheck"
)

// ClashPolicy controls what happens when two or more surviving exports,
// across any kind, produce the same name.
type ClashPolicy = clash.Policy

const (
	ClashSignal = clash.Signal
	ClashRename = clash.Rename
)

// TypeMismatchPolicy controls what happens when a linked import disagrees
// in type with the export it points to.
type TypeMismatchPolicy = typecheck.Policy

const (
	TypeMismatchSignal = typecheck.Signal
	TypeMismatchIgnore = typecheck.Ignore
)

// ResolvedExportPolicy controls whether an export whose reduction source
// leaves no externally-observable trace still survives.
type ResolvedExportPolicy = reduce.ExportPolicy

const (
	ResolvedExportsRemove = reduce.Remove
	ResolvedExportsKeep   = reduce.Keep
)

// RenameStrategy produces the emitted name for a clashing export.
type RenameStrategy = clash.Strategy

// KeepExport names one (kind, module, export name) pair that must survive
// reduction regardless of in-degree.
type KeepExport struct {
	Kind   ident.Kind
	Module string
	Name   string
}

// Options is the merger's entire public configuration surface — exactly
// the fields spec.md §6 enumerates, no more, no fewer.
type Options struct {
	ClashPolicy          ClashPolicy
	RenameStrategy       RenameStrategy
	TypeMismatchPolicy   TypeMismatchPolicy
	ResolvedExportPolicy ResolvedExportPolicy
	KeepExport           []KeepExport
}

func (o Options) keepSetFor(kind ident.Kind) map[depgraph.ExportKey]bool {
	keep := make(map[depgraph.ExportKey]bool)
	for _, k := range o.KeepExport {
		if k.Kind == kind {
			keep[depgraph.ExportKey{Module: ident.Module(k.Module), Name: ident.ExportName(k.Name)}] = true
		}
	}
	return keep
}
