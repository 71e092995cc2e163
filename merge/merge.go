// Package merge is the public orchestrator: it drives every input module
// through the full pipeline — build, link, type-check, reduce, detect
// clashes, rewrite — and emits a single merged WebAssembly binary.
package merge

import (
	"sync"

	"go.uber.org/zap"

	"github.com/aaronmunsters/wasm-merge/errs"
	"github.com/aaronmunsters/wasm-merge/internal/clash"
	"github.com/aaronmunsters/wasm-merge/internal/depgraph"
	"github.com/aaronmunsters/wasm-merge/internal/ident"
	"github.com/aaronmunsters/wasm-merge/internal/modindex"
	"github.com/aaronmunsters/wasm-merge/internal/reduce"
	"github.com/aaronmunsters/wasm-merge/internal/rewrite"
	"github.com/aaronmunsters/wasm-merge/internal/typecheck"
	"github.com/aaronmunsters/wasm-merge/wasm"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the merge package's logger instance, a no-op by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the merge package's logger. Call before Merge.
func SetLogger(l *zap.Logger) {
	logger = l
}

// Named is one input to a merge: a module name and its WebAssembly
// binary. Input list order is significant — it fixes the order of
// surviving imports/exports, multi-memory/data layout, and the start
// function concatenation.
type Named struct {
	Name  string
	Bytes []byte
}

// Merge parses every input, runs the full pipeline, and returns the
// merged binary.
func Merge(inputs []Named, opts Options) ([]byte, error) {
	_, out, err := Analyze(inputs, opts)
	return out, err
}

// ReportImport describes one import that survives into the merged module
// because nothing internal to the input set resolved it.
type ReportImport struct {
	Kind   ident.Kind
	Module string
	Name   string
}

// ReportExport describes one export that survives into the merged module:
// where it is declared, the name it is emitted under (only different from
// Module:Name when the clash policy renamed it), and Source — the local
// definition or unresolved import its reduction chain ultimately grounds
// out at, per internal/reduce.
type ReportExport struct {
	Kind        ident.Kind
	Module      string
	Name        string
	EmittedName string
	Source      string
}

// Report surfaces the pipeline's intermediate decisions — what the four
// dependency graphs resolved, what survives, and how clashes were
// resolved — for display ahead of writing the merged binary.
type Report struct {
	SurvivingImports []ReportImport
	SurvivingExports []ReportExport
}

// Analyze runs the same pipeline as Merge but also returns a Report
// describing surviving imports/exports and clash resolutions, so a caller
// (the CLI's interactive preview) can show the merge decision before
// committing to it.
func Analyze(inputs []Named, opts Options) (Report, []byte, error) {
	log := Logger()
	g := newGraphs()

	var rewriteInputs []rewrite.Input
	indices := make(map[ident.Module]*modindex.Index, len(inputs))

	for _, in := range inputs {
		name := ident.Module(in.Name)
		if isComponentPreamble(in.Bytes) {
			return Report{}, nil, errs.UnsupportedComponentModel(in.Name)
		}
		mod, err := wasm.ParseModule(in.Bytes)
		if err != nil {
			return Report{}, nil, errs.Parse(in.Name, err)
		}
		if err := mod.Validate(); err != nil {
			return Report{}, nil, errs.Parse(in.Name, err)
		}
		ix, err := buildModule(g, name, mod)
		if err != nil {
			return Report{}, nil, err
		}
		indices[name] = ix
		rewriteInputs = append(rewriteInputs, rewrite.Input{Name: name, Module: mod})
	}
	log.Debug("build complete", zap.Int("modules", len(inputs)))

	if err := linkAll(g); err != nil {
		return Report{}, nil, err
	}
	log.Debug("link complete")

	if err := typecheckAll(g, opts.TypeMismatchPolicy); err != nil {
		return Report{}, nil, err
	}
	log.Debug("typecheck complete", zap.Any("policy", opts.TypeMismatchPolicy))

	reductions := reduceAll(g, opts)
	log.Debug("reduce complete",
		zap.Int("surviving_funcs", len(reductions.Func.SurvivingImports)),
		zap.Int("surviving_exports", len(reductions.Func.SurvivingExports)+
			len(reductions.Table.SurvivingExports)+
			len(reductions.Memory.SurvivingExports)+
			len(reductions.Global.SurvivingExports)))

	names, err := resolveClashes(reductions, opts)
	if err != nil {
		return Report{}, nil, err
	}
	log.Debug("clash detection complete", zap.Int("renamed", len(names)))

	out := rewrite.Merge(rewriteInputs, indices, rewrite.Graphs{
		Func:   g.fn,
		Table:  g.tbl,
		Memory: g.mem,
		Global: g.glb,
	}, reductions, names)
	log.Debug("rewrite complete",
		zap.Int("funcs", len(out.Funcs)),
		zap.Int("exports", len(out.Exports)))

	return buildReport(reductions, names), out.Encode(), nil
}

// buildReport projects the four kinds' surviving imports/exports, plus the
// clash-resolved emitted name of each export, into one flat Report.
func buildReport(r rewrite.Reductions, names map[clash.Occurrence]string) Report {
	var rep Report

	for _, imp := range r.Func.SurvivingImports {
		rep.SurvivingImports = append(rep.SurvivingImports, ReportImport{ident.Function, string(imp.ExportingModule), string(imp.ExportedName)})
	}
	for _, imp := range r.Table.SurvivingImports {
		rep.SurvivingImports = append(rep.SurvivingImports, ReportImport{ident.Table, string(imp.ExportingModule), string(imp.ExportedName)})
	}
	for _, imp := range r.Memory.SurvivingImports {
		rep.SurvivingImports = append(rep.SurvivingImports, ReportImport{ident.Memory, string(imp.ExportingModule), string(imp.ExportedName)})
	}
	for _, imp := range r.Global.SurvivingImports {
		rep.SurvivingImports = append(rep.SurvivingImports, ReportImport{ident.Global, string(imp.ExportingModule), string(imp.ExportedName)})
	}

	appendExports(&rep, ident.Function, r.Func.SurvivingExports, r.Func.ExportSource, names)
	appendExportsTable(&rep, r.Table.SurvivingExports, r.Table.ExportSource, names)
	appendExportsMemory(&rep, r.Memory.SurvivingExports, r.Memory.ExportSource, names)
	appendExportsGlobal(&rep, r.Global.SurvivingExports, r.Global.ExportSource, names)

	return rep
}

func sourceLabel[T any](src reduce.Source[T]) string {
	if src.Kind == reduce.FromImport {
		return "import " + string(src.Import.ExportingModule) + "." + string(src.Import.ExportedName)
	}
	return "local " + src.Local.ID.String()
}

func appendExports(rep *Report, kind ident.Kind, exports []*depgraph.Export[depgraph.FuncSig], sources map[depgraph.ExportKey]reduce.Source[depgraph.FuncSig], names map[clash.Occurrence]string) {
	for _, e := range exports {
		key := depgraph.ExportKey{Module: e.Module, Name: e.Name}
		occ := clash.Occurrence{Kind: kind, Module: e.Module, Name: e.Name}
		emitted := names[occ]
		if emitted == "" {
			emitted = string(e.Name)
		}
		rep.SurvivingExports = append(rep.SurvivingExports, ReportExport{kind, string(e.Module), string(e.Name), emitted, sourceLabel(sources[key])})
	}
}

func appendExportsTable(rep *Report, exports []*depgraph.Export[depgraph.TableSig], sources map[depgraph.ExportKey]reduce.Source[depgraph.TableSig], names map[clash.Occurrence]string) {
	for _, e := range exports {
		key := depgraph.ExportKey{Module: e.Module, Name: e.Name}
		occ := clash.Occurrence{Kind: ident.Table, Module: e.Module, Name: e.Name}
		emitted := names[occ]
		if emitted == "" {
			emitted = string(e.Name)
		}
		rep.SurvivingExports = append(rep.SurvivingExports, ReportExport{ident.Table, string(e.Module), string(e.Name), emitted, sourceLabel(sources[key])})
	}
}

func appendExportsMemory(rep *Report, exports []*depgraph.Export[depgraph.MemorySig], sources map[depgraph.ExportKey]reduce.Source[depgraph.MemorySig], names map[clash.Occurrence]string) {
	for _, e := range exports {
		key := depgraph.ExportKey{Module: e.Module, Name: e.Name}
		occ := clash.Occurrence{Kind: ident.Memory, Module: e.Module, Name: e.Name}
		emitted := names[occ]
		if emitted == "" {
			emitted = string(e.Name)
		}
		rep.SurvivingExports = append(rep.SurvivingExports, ReportExport{ident.Memory, string(e.Module), string(e.Name), emitted, sourceLabel(sources[key])})
	}
}

func appendExportsGlobal(rep *Report, exports []*depgraph.Export[depgraph.GlobalSig], sources map[depgraph.ExportKey]reduce.Source[depgraph.GlobalSig], names map[clash.Occurrence]string) {
	for _, e := range exports {
		key := depgraph.ExportKey{Module: e.Module, Name: e.Name}
		occ := clash.Occurrence{Kind: ident.Global, Module: e.Module, Name: e.Name}
		emitted := names[occ]
		if emitted == "" {
			emitted = string(e.Name)
		}
		rep.SurvivingExports = append(rep.SurvivingExports, ReportExport{ident.Global, string(e.Module), string(e.Name), emitted, sourceLabel(sources[key])})
	}
}

func linkAll(g *graphs) error {
	if err := g.fn.Link(); err != nil {
		return wrapCycle(err)
	}
	if err := g.tbl.Link(); err != nil {
		return wrapCycle(err)
	}
	if err := g.mem.Link(); err != nil {
		return wrapCycle(err)
	}
	if err := g.glb.Link(); err != nil {
		return wrapCycle(err)
	}
	return nil
}

func wrapCycle(err error) error {
	if ce, ok := err.(*depgraph.CycleError); ok {
		return errs.ImportCycle(ce.Path)
	}
	return err
}

func typecheckAll(g *graphs, policy typecheck.Policy) error {
	if err := typecheck.Check(g.fn, policy); err != nil {
		return err
	}
	if err := typecheck.Check(g.tbl, policy); err != nil {
		return err
	}
	if err := typecheck.Check(g.mem, policy); err != nil {
		return err
	}
	if err := typecheck.Check(g.glb, policy); err != nil {
		return err
	}
	return nil
}

func reduceAll(g *graphs, opts Options) rewrite.Reductions {
	return rewrite.Reductions{
		Func:   reduce.Reduce(g.fn, opts.ResolvedExportPolicy, opts.keepSetFor(ident.Function)),
		Table:  reduce.Reduce(g.tbl, opts.ResolvedExportPolicy, opts.keepSetFor(ident.Table)),
		Memory: reduce.Reduce(g.mem, opts.ResolvedExportPolicy, opts.keepSetFor(ident.Memory)),
		Global: reduce.Reduce(g.glb, opts.ResolvedExportPolicy, opts.keepSetFor(ident.Global)),
	}
}

// resolveClashes projects every surviving export of every kind into one
// cross-kind occurrence list and applies the clash policy.
func resolveClashes(r rewrite.Reductions, opts Options) (map[clash.Occurrence]string, error) {
	var occurrences []clash.Occurrence
	for _, e := range r.Func.SurvivingExports {
		occurrences = append(occurrences, clash.Occurrence{Kind: ident.Function, Module: e.Module, Name: e.Name})
	}
	for _, e := range r.Table.SurvivingExports {
		occurrences = append(occurrences, clash.Occurrence{Kind: ident.Table, Module: e.Module, Name: e.Name})
	}
	for _, e := range r.Memory.SurvivingExports {
		occurrences = append(occurrences, clash.Occurrence{Kind: ident.Memory, Module: e.Module, Name: e.Name})
	}
	for _, e := range r.Global.SurvivingExports {
		occurrences = append(occurrences, clash.Occurrence{Kind: ident.Global, Module: e.Module, Name: e.Name})
	}

	resolutions, err := clash.Resolve(occurrences, opts.ClashPolicy, opts.RenameStrategy)
	if err != nil {
		return nil, err
	}
	names := make(map[clash.Occurrence]string, len(resolutions))
	for _, r := range resolutions {
		names[r.Occurrence] = r.EmittedName
	}
	return names, nil
}
