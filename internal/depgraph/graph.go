// Package depgraph implements the multi-kind dependency graph: the Graph
// Builder and the Linker. A Graph[T] is instantiated once per Kind, with T
// the kind-specific type descriptor (FuncSig, TableSig, MemorySig, or
// GlobalSig — see descriptors.go). Keeping the four kinds as separate
// generic instantiations, rather than one graph with a sum-typed
// descriptor, lets each carry its own type-checking rules without a
// type-switch at every edge.
package depgraph

import (
	"fmt"

	"github.com/aaronmunsters/wasm-merge/internal/ident"
)

// Import is a node representing an entity imported by module ImportingModule
// from module ExportingModule under ExportedName.
type Import[T any] struct {
	ID              ident.OldID
	ExportingModule ident.Module
	ImportingModule ident.Module
	ExportedName    ident.ExportName
	Type            T

	linked  ExportKey
	hasEdge bool // true once Link() finds a matching export
}

// Local is a node representing an entity defined inside a module, not
// imported.
type Local[T any] struct {
	ID   ident.OldID
	Type T
}

// Export is a node representing an exported name. Target is the
// within-module index the export refers to — the source of the Exports
// edge, always resolvable by construction for well-formed input.
type Export[T any] struct {
	Module ident.Module
	Name   ident.ExportName
	Target ident.OldID
	Type   T
}

// ExportKey identifies an Export node by (module, exported name) — the
// lookup key the Linker uses to match an Import to its Export.
type ExportKey struct {
	Module ident.Module
	Name   ident.ExportName
}

// Graph holds every node of one Kind across every input module.
type Graph[T any] struct {
	Kind ident.Kind

	imports map[ident.OldID]*Import[T]
	locals  map[ident.OldID]*Local[T]
	exports map[ExportKey]*Export[T]

	importOrder []ident.OldID
	exportOrder []ExportKey

	modules []ident.Module
	seen    map[ident.Module]bool
}

// New creates an empty graph for the given kind.
func New[T any](kind ident.Kind) *Graph[T] {
	return &Graph[T]{
		Kind:    kind,
		imports: make(map[ident.OldID]*Import[T]),
		locals:  make(map[ident.OldID]*Local[T]),
		exports: make(map[ExportKey]*Export[T]),
		seen:    make(map[ident.Module]bool),
	}
}

func (g *Graph[T]) touchModule(m ident.Module) {
	if !g.seen[m] {
		g.seen[m] = true
		g.modules = append(g.modules, m)
	}
}

// AddImport registers an Import node. index is the within-module index in
// the importing module's per-kind arena.
func (g *Graph[T]) AddImport(importingModule, exportingModule ident.Module, index uint32, name ident.ExportName, ty T) *Import[T] {
	g.touchModule(importingModule)
	id := ident.OldID{Module: importingModule, Index: index}
	imp := &Import[T]{
		ID:              id,
		ExportingModule: exportingModule,
		ImportingModule: importingModule,
		ExportedName:    name,
		Type:            ty,
	}
	g.imports[id] = imp
	g.importOrder = append(g.importOrder, id)
	return imp
}

// AddLocal registers a Local node.
func (g *Graph[T]) AddLocal(module ident.Module, index uint32, ty T) *Local[T] {
	g.touchModule(module)
	id := ident.OldID{Module: module, Index: index}
	loc := &Local[T]{ID: id, Type: ty}
	g.locals[id] = loc
	return loc
}

// AddExport registers an Export node. target is the within-module index
// (of an Import or a Local already registered in the same module) that
// the export names.
func (g *Graph[T]) AddExport(module ident.Module, name ident.ExportName, target uint32, ty T) *Export[T] {
	g.touchModule(module)
	k := ExportKey{Module: module, Name: name}
	exp := &Export[T]{
		Module: module,
		Name:   name,
		Target: ident.OldID{Module: module, Index: target},
		Type:   ty,
	}
	g.exports[k] = exp
	g.exportOrder = append(g.exportOrder, k)
	return exp
}

// Import looks up an Import node by old id.
func (g *Graph[T]) Import(id ident.OldID) (*Import[T], bool) {
	imp, ok := g.imports[id]
	return imp, ok
}

// Local looks up a Local node by old id.
func (g *Graph[T]) Local(id ident.OldID) (*Local[T], bool) {
	loc, ok := g.locals[id]
	return loc, ok
}

// Target resolves the (Import|Local) node registered at id — the node an
// Exports edge or a reduction walk lands on.
func (g *Graph[T]) Target(id ident.OldID) (imp *Import[T], loc *Local[T]) {
	if i, ok := g.imports[id]; ok {
		return i, nil
	}
	return nil, g.locals[id]
}

// Export returns the Export node registered at (module, name), if any.
func (g *Graph[T]) Export(module ident.Module, name ident.ExportName) (*Export[T], bool) {
	exp, ok := g.exports[ExportKey{Module: module, Name: name}]
	return exp, ok
}

// Modules returns input modules in the order their first node was added.
func (g *Graph[T]) Modules() []ident.Module { return g.modules }

// Imports returns every Import node in registration order.
func (g *Graph[T]) Imports() []*Import[T] {
	out := make([]*Import[T], len(g.importOrder))
	for i, id := range g.importOrder {
		out[i] = g.imports[id]
	}
	return out
}

// AllExports returns every Export node in registration order.
func (g *Graph[T]) AllExports() []*Export[T] {
	out := make([]*Export[T], len(g.exportOrder))
	for i, k := range g.exportOrder {
		out[i] = g.exports[k]
	}
	return out
}

// CycleError reports an unresolvable cycle of re-exports found while
// linking. Path is a human-readable chain of the nodes involved.
type CycleError struct {
	Path string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("import cycle: %s", e.Path)
}

// Link connects every Import to its matching Export by (exporting_module,
// exported_name), then rejects the graph if the combined Imports/Exports
// edges contain a cycle. On failure the error is always a *CycleError.
func (g *Graph[T]) Link() error {
	for _, id := range g.importOrder {
		imp := g.imports[id]
		k := ExportKey{Module: imp.ExportingModule, Name: imp.ExportedName}
		if _, ok := g.exports[k]; ok {
			imp.linked = k
			imp.hasEdge = true
		}
	}
	if cycle, ok := g.findCycle(); ok {
		return &CycleError{Path: cycle}
	}
	return nil
}

// LinkedExport returns the Export node an Import was linked to, if it has
// a live outgoing edge (not yet broken by the type checker).
func (g *Graph[T]) LinkedExport(imp *Import[T]) (*Export[T], bool) {
	if !imp.hasEdge {
		return nil, false
	}
	return g.exports[imp.linked], true
}

// BreakEdge removes a linked Import's outgoing edge — used by the type
// checker under the Ignore policy. The import becomes a surviving import.
func (g *Graph[T]) BreakEdge(imp *Import[T]) {
	imp.hasEdge = false
	imp.linked = ExportKey{}
}

// HasEdge reports whether imp still has a live outgoing Imports edge.
func (imp *Import[T]) HasEdge() bool { return imp.hasEdge }

// graphNode is a node identity in the combined Import/Export functional
// graph used for cycle detection and the reduction walk: out-degree ≤ 1
// everywhere, so both problems reduce to following a chain of "next"
// pointers until a terminal (Local, or an Import with no edge) is hit.
type graphNode struct {
	isExport bool
	imp      ident.OldID
	exp      ExportKey
}

func (g *Graph[T]) next(n graphNode) (graphNode, bool) {
	if !n.isExport {
		imp := g.imports[n.imp]
		if !imp.hasEdge {
			return graphNode{}, false
		}
		return graphNode{isExport: true, exp: imp.linked}, true
	}
	exp := g.exports[n.exp]
	if _, ok := g.imports[exp.Target]; ok {
		return graphNode{isExport: false, imp: exp.Target}, true
	}
	return graphNode{}, false // target is a Local: terminal
}

func (g *Graph[T]) describe(n graphNode) string {
	if !n.isExport {
		imp := g.imports[n.imp]
		return fmt.Sprintf("%s imports %s.%s", imp.ImportingModule, imp.ExportingModule, imp.ExportedName)
	}
	exp := g.exports[n.exp]
	return fmt.Sprintf("%s exports %s", exp.Module, exp.Name)
}

// findCycle walks the functional graph from every Import node. Because
// out-degree is at most 1, a cycle is exactly a chain that revisits a node
// it has already placed on the current walk.
func (g *Graph[T]) findCycle() (string, bool) {
	resolved := make(map[graphNode]bool)

	for _, id := range g.importOrder {
		start := graphNode{isExport: false, imp: id}
		if resolved[start] {
			continue
		}
		var path []string
		onChain := make(map[graphNode]int)
		cur := start
		for {
			if resolved[cur] {
				break
			}
			if idx, seen := onChain[cur]; seen {
				cyclePath := path[idx:]
				return fmt.Sprintf("%s -> %s", joinArrow(cyclePath), g.describe(cur)), true
			}
			onChain[cur] = len(path)
			path = append(path, g.describe(cur))
			nxt, ok := g.next(cur)
			if !ok {
				break
			}
			cur = nxt
		}
		for k := range onChain {
			resolved[k] = true
		}
	}
	return "", false
}

func joinArrow(parts []string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += " -> " + p
	}
	return out
}
