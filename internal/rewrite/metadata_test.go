package rewrite

import (
	"testing"

	"github.com/aaronmunsters/wasm-merge/internal/ident"
	"github.com/aaronmunsters/wasm-merge/wasm"
)

func TestInternalModuleName(t *testing.T) {
	mod := &wasm.Module{
		CustomSections: []wasm.CustomSection{
			{Name: "name", Data: encodeNameSection("widget")},
		},
	}
	name, ok := internalModuleName(mod)
	if !ok || name != "widget" {
		t.Fatalf("internalModuleName = %q, %v; want %q, true", name, ok, "widget")
	}
}

func TestInternalModuleName_Absent(t *testing.T) {
	mod := &wasm.Module{}
	if _, ok := internalModuleName(mod); ok {
		t.Fatalf("expected no internal name on a module with no name section")
	}
}

func TestAttachMetadata_QualifiedNames(t *testing.T) {
	withName := &wasm.Module{
		CustomSections: []wasm.CustomSection{
			{Name: "name", Data: encodeNameSection("widget")},
		},
	}
	withoutName := &wasm.Module{}

	out := &wasm.Module{}
	attachMetadata(out, []Input{
		{Name: ident.Module("a"), Module: withName},
		{Name: ident.Module("b"), Module: withoutName},
	})

	var nameSection *wasm.CustomSection
	for i := range out.CustomSections {
		if out.CustomSections[i].Name == "name" {
			nameSection = &out.CustomSections[i]
		}
	}
	if nameSection == nil {
		t.Fatal("expected a name custom section")
	}
	got, ok := internalModuleName(out)
	if !ok || got != "a::widget" {
		t.Fatalf("module name = %q, %v; want %q, true (b contributes nothing, no trailing '-')", got, ok, "a::widget")
	}
}
