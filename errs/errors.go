package errs

import (
	"fmt"
	"strings"
)

// Phase indicates which pipeline stage raised the error.
type Phase string

const (
	PhaseParse     Phase = "parse"     // buffer-to-AST decoding of an input module
	PhaseBuild     Phase = "build"     // graph builder's first pass
	PhaseLink      Phase = "link"      // Import->Export / Export->(Import|Local) linking
	PhaseTypeCheck Phase = "typecheck" // import/export type consistency
	PhaseReduce    Phase = "reduce"    // reduction to canonical sources
	PhaseClash     Phase = "clash"     // cross-kind export name clash detection
	PhaseRewrite   Phase = "rewrite"   // merge/rewrite into the output module
)

// Kind categorizes the error. These are the five kinds the core boundary
// exposes; no others are raised by this package.
type Kind string

const (
	KindParse                     Kind = "parse"
	KindUnsupportedComponentModel Kind = "unsupported_component_model"
	KindImportCycle               Kind = "import_cycle"
	KindTypeMismatch              Kind = "type_mismatch"
	KindExportNameClash           Kind = "export_name_clash"
)

// Error is the structured error type raised by the merger core.
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Module string
	Name   string
	Detail string
}

func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Module != "" {
		b.WriteString(" in module ")
		b.WriteString(e.Module)
	}

	if e.Name != "" {
		b.WriteString(" (")
		b.WriteString(e.Name)
		b.WriteByte(')')
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same Phase and Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Phase == t.Phase && e.Kind == t.Kind
}

// Builder provides structured error construction.
type Builder struct {
	err Error
}

// New creates a new error builder for the given phase and kind.
func New(phase Phase, kind Kind) *Builder {
	return &Builder{err: Error{Phase: phase, Kind: kind}}
}

// Module sets the module the error pertains to.
func (b *Builder) Module(name string) *Builder {
	b.err.Module = name
	return b
}

// Name sets the entity name (an exported or imported name) the error pertains to.
func (b *Builder) Name(name string) *Builder {
	b.err.Name = name
	return b
}

// Cause sets the underlying error.
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message.
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error.
func (b *Builder) Build() *Error {
	return &b.err
}

// Parse creates a buffer-to-AST decode failure.
func Parse(module string, cause error) *Error {
	return New(PhaseParse, KindParse).Module(module).Cause(cause).Build()
}

// UnsupportedComponentModel creates an error for an input containing an
// uninitialized function (a Component Model artifact).
func UnsupportedComponentModel(module string) *Error {
	return New(PhaseBuild, KindUnsupportedComponentModel).Module(module).
		Detail("module contains an uninitialized function; the Component Model is not supported").
		Build()
}

// ImportCycle creates an error reporting an unresolvable cycle of re-exports.
func ImportCycle(cyclePath string) *Error {
	return New(PhaseLink, KindImportCycle).Detail("%s", cyclePath).Build()
}

// TypeMismatch creates an error reporting a type disagreement between a
// linked import and its export.
func TypeMismatch(importName, importingModule, exportName, exportingModule string) *Error {
	return New(PhaseTypeCheck, KindTypeMismatch).
		Module(importingModule).
		Name(importName).
		Detail("imports %s.%s with a type that disagrees with its definition", exportingModule, exportName).
		Build()
}

// ExportNameClash creates an error reporting two or more surviving exports
// that produce the same name in the output.
func ExportNameClash(name string, modules []string) *Error {
	return New(PhaseClash, KindExportNameClash).
		Name(name).
		Detail("produced by modules: %s", strings.Join(modules, ", ")).
		Build()
}
