// Package clash implements the Clash Detector: it projects surviving
// exports from all four kinds into a single (name -> occurrences) table
// and applies the configured clash policy.
package clash

import (
	"sort"

	"github.com/aaronmunsters/wasm-merge/errs"
	"github.com/aaronmunsters/wasm-merge/internal/ident"
)

// Policy controls what happens when two or more surviving exports share a
// name.
type Policy int

const (
	// Signal aborts the merge with an ExportNameClash error.
	Signal Policy = iota
	// Rename applies a per-kind renaming function to every clashing
	// export.
	Rename
)

// Strategy produces the emitted name for a clashing export. The default,
// grounded on spec.md §4.5, is "{module}:{name}".
type Strategy func(kind ident.Kind, module ident.Module, name ident.ExportName) string

// Default is the "{module}:{name}" renaming strategy.
func Default(_ ident.Kind, module ident.Module, name ident.ExportName) string {
	return string(module) + ":" + string(name)
}

// Occurrence is one surviving export that contributed a name to the
// cross-kind projection.
type Occurrence struct {
	Kind   ident.Kind
	Module ident.Module
	Name   ident.ExportName
}

// Resolution is the outcome for one occurrence: the name it should be
// emitted under.
type Resolution struct {
	Occurrence
	EmittedName string
}

// Resolve detects clashes among occurrences (grouped by Name across all
// kinds) and applies policy. On Signal, the first clash (by occurrence
// order) aborts with ExportNameClash. On Rename, every occurrence whose
// name clashes is renamed via strategy; others pass through unchanged.
func Resolve(occurrences []Occurrence, policy Policy, strategy Strategy) ([]Resolution, error) {
	if strategy == nil {
		strategy = Default
	}

	byName := make(map[ident.ExportName][]Occurrence)
	var order []ident.ExportName
	for _, o := range occurrences {
		if _, ok := byName[o.Name]; !ok {
			order = append(order, o.Name)
		}
		byName[o.Name] = append(byName[o.Name], o)
	}

	out := make([]Resolution, 0, len(occurrences))
	for _, name := range order {
		group := byName[name]
		if len(group) < 2 {
			out = append(out, Resolution{Occurrence: group[0], EmittedName: string(name)})
			continue
		}
		if policy == Signal {
			modules := make([]string, len(group))
			for i, o := range group {
				modules[i] = string(o.Module)
			}
			sort.Strings(modules)
			return nil, errs.ExportNameClash(string(name), modules)
		}
		for _, o := range group {
			out = append(out, Resolution{Occurrence: o, EmittedName: strategy(o.Kind, o.Module, o.Name)})
		}
	}
	return out, nil
}
