// Package errs provides the structured error taxonomy for the merger core.
//
// Errors are categorized by Phase (which pipeline stage raised them) and Kind
// (one of the five error kinds the core boundary exposes). The Error type
// carries enough context — the offending module, name, and an optional cause
// chain — to report a failure without the caller re-deriving it.
//
// Use the Builder for structured construction:
//
//	err := errs.New(errs.PhaseLink, errs.KindImportCycle).
//		Module("b").
//		Detail("b.b -> a.a -> b.b").
//		Build()
//
// Or the convenience constructors for the common cases:
//
//	err := errs.ImportCycle(path)
//	err := errs.TypeMismatch("mul", "b", "mul", "a")
//
// All errors implement the standard error interface and support errors.Is.
package errs
