package errs

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseTypeCheck,
				Kind:   KindTypeMismatch,
				Module: "b",
				Name:   "mul",
				Detail: "expected ()->i32, got ()->i64",
			},
			contains: []string{"[typecheck]", "type_mismatch", "module b", "mul", "expected ()->i32, got ()->i64"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseLink,
				Kind:  KindImportCycle,
			},
			contains: []string{"[link]", "import_cycle"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseParse,
				Kind:   KindParse,
				Module: "a",
				Cause:  errors.New("unexpected end of section"),
			},
			contains: []string{"[parse]", "module a", "caused by", "unexpected end of section"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{Phase: PhaseParse, Kind: KindParse, Cause: cause}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{Phase: PhaseTypeCheck, Kind: KindTypeMismatch, Name: "f"}

	if !err.Is(&Error{Phase: PhaseTypeCheck, Kind: KindTypeMismatch}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseLink, Kind: KindTypeMismatch}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseTypeCheck, Kind: KindImportCycle}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseTypeCheck, Kind: KindTypeMismatch}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseRewrite, KindUnsupportedComponentModel).
		Module("guest").
		Name("$func7").
		Cause(cause).
		Detail("expected %s, got %s", "defined function", "uninitialized function").
		Build()

	if err.Phase != PhaseRewrite {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseRewrite)
	}
	if err.Kind != KindUnsupportedComponentModel {
		t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupportedComponentModel)
	}
	if err.Module != "guest" {
		t.Errorf("Module = %v, want guest", err.Module)
	}
	if err.Name != "$func7" {
		t.Errorf("Name = %v, want $func7", err.Name)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected defined function, got uninitialized function" {
		t.Errorf("Detail = %v, unexpected", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("Parse", func(t *testing.T) {
		cause := errors.New("bad magic number")
		err := Parse("a", cause)
		if err.Kind != KindParse || err.Phase != PhaseParse {
			t.Errorf("got Phase=%v Kind=%v", err.Phase, err.Kind)
		}
		if !errors.Is(err.Cause, cause) {
			t.Errorf("Cause = %v, want %v", err.Cause, cause)
		}
	})

	t.Run("UnsupportedComponentModel", func(t *testing.T) {
		err := UnsupportedComponentModel("guest")
		if err.Kind != KindUnsupportedComponentModel {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupportedComponentModel)
		}
		if err.Module != "guest" {
			t.Errorf("Module = %v, want guest", err.Module)
		}
	})

	t.Run("ImportCycle", func(t *testing.T) {
		err := ImportCycle("a.a -> b.b -> a.a")
		if err.Kind != KindImportCycle {
			t.Errorf("Kind = %v, want %v", err.Kind, KindImportCycle)
		}
		if !strings.Contains(err.Detail, "a.a -> b.b -> a.a") {
			t.Errorf("Detail = %v, should contain the cycle path", err.Detail)
		}
	})

	t.Run("TypeMismatch", func(t *testing.T) {
		err := TypeMismatch("f", "b", "f", "a")
		if err.Kind != KindTypeMismatch {
			t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
		}
		if err.Module != "b" || err.Name != "f" {
			t.Errorf("Module=%v Name=%v", err.Module, err.Name)
		}
	})

	t.Run("ExportNameClash", func(t *testing.T) {
		err := ExportNameClash("f", []string{"a", "b"})
		if err.Kind != KindExportNameClash {
			t.Errorf("Kind = %v, want %v", err.Kind, KindExportNameClash)
		}
		if err.Name != "f" {
			t.Errorf("Name = %v, want f", err.Name)
		}
		if !strings.Contains(err.Detail, "a, b") {
			t.Errorf("Detail = %v, should list both modules", err.Detail)
		}
	})
}
