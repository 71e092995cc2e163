package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/aaronmunsters/wasm-merge/internal/ident"
	"github.com/aaronmunsters/wasm-merge/merge"
	"github.com/aaronmunsters/wasm-merge/wat"
)

func main() {
	var (
		in             = flag.String("in", "", "Comma-separated name=path pairs (path may be .wasm or .wat)")
		out            = flag.String("out", "merged.wasm", "Output path for the merged binary")
		clashPolicy    = flag.String("clash", "signal", "Export name clash policy: signal|rename")
		typeMismatch   = flag.String("typemismatch", "signal", "Import/export type mismatch policy: signal|ignore")
		resolvedExport = flag.String("resolved-exports", "remove", "Resolved-export survival policy: remove|keep")
		keep           = flag.String("keep", "", "Comma-separated kind:module:name exports to force-keep")
		interactive    = flag.Bool("i", false, "Interactive preview before writing output (default: auto on a TTY)")
	)
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "Usage: wasmmerge -in name1=path1.wasm,name2=path2.wat -out merged.wasm")
		fmt.Fprintln(os.Stderr, "       wasmmerge -in a=a.wasm,b=b.wasm -i  (interactive preview)")
		os.Exit(1)
	}

	inputs, err := loadInputs(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	opts, err := buildOptions(*clashPolicy, *typeMismatch, *resolvedExport, *keep)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if wantsInteractive(*interactive) {
		if err := runInteractive(inputs, opts, *out); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := mergeAndWrite(inputs, opts, *out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s\n", *out)
}

// wantsInteractive honors an explicit -i, and otherwise falls back to
// whether stdout is a terminal, so piping output never launches a TUI.
func wantsInteractive(explicit bool) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "i" {
			set = true
		}
	})
	if set {
		return explicit
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// loadInputs parses "name=path,name=path" into merge.Named, compiling any
// .wat path through wat.Compile first.
func loadInputs(spec string) ([]merge.Named, error) {
	var inputs []merge.Named
	for _, pair := range strings.Split(spec, ",") {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed -in entry %q, want name=path", pair)
		}
		name, path := parts[0], parts[1]
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		bytes := raw
		if strings.HasSuffix(path, ".wat") {
			bytes, err = wat.Compile(string(raw))
			if err != nil {
				return nil, fmt.Errorf("compile %s: %w", path, err)
			}
		}
		inputs = append(inputs, merge.Named{Name: name, Bytes: bytes})
	}
	return inputs, nil
}

func buildOptions(clashStr, typeMismatchStr, resolvedStr, keepStr string) (merge.Options, error) {
	var opts merge.Options

	switch clashStr {
	case "signal":
		opts.ClashPolicy = merge.ClashSignal
	case "rename":
		opts.ClashPolicy = merge.ClashRename
	default:
		return opts, fmt.Errorf("unknown -clash policy %q", clashStr)
	}

	switch typeMismatchStr {
	case "signal":
		opts.TypeMismatchPolicy = merge.TypeMismatchSignal
	case "ignore":
		opts.TypeMismatchPolicy = merge.TypeMismatchIgnore
	default:
		return opts, fmt.Errorf("unknown -typemismatch policy %q", typeMismatchStr)
	}

	switch resolvedStr {
	case "remove":
		opts.ResolvedExportPolicy = merge.ResolvedExportsRemove
	case "keep":
		opts.ResolvedExportPolicy = merge.ResolvedExportsKeep
	default:
		return opts, fmt.Errorf("unknown -resolved-exports policy %q", resolvedStr)
	}

	if keepStr != "" {
		for _, entry := range strings.Split(keepStr, ",") {
			parts := strings.SplitN(entry, ":", 3)
			if len(parts) != 3 {
				return opts, fmt.Errorf("malformed -keep entry %q, want kind:module:name", entry)
			}
			kind, err := parseKind(parts[0])
			if err != nil {
				return opts, err
			}
			opts.KeepExport = append(opts.KeepExport, merge.KeepExport{Kind: kind, Module: parts[1], Name: parts[2]})
		}
	}

	return opts, nil
}

func parseKind(s string) (ident.Kind, error) {
	switch s {
	case "func", "function":
		return ident.Function, nil
	case "table":
		return ident.Table, nil
	case "memory", "mem":
		return ident.Memory, nil
	case "global":
		return ident.Global, nil
	default:
		return 0, fmt.Errorf("unknown export kind %q", s)
	}
}

func mergeAndWrite(inputs []merge.Named, opts merge.Options, out string) error {
	output, err := merge.Merge(inputs, opts)
	if err != nil {
		return err
	}
	return os.WriteFile(out, output, 0644)
}
