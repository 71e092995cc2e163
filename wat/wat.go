package wat

import (
	"github.com/aaronmunsters/wasm-merge/wat/internal/encoder"
	"github.com/aaronmunsters/wasm-merge/wat/internal/parser"
	"github.com/aaronmunsters/wasm-merge/wat/internal/token"
)

// Compile runs the tokenizer, recursive-descent parser, and binary encoder
// in sequence, turning one WAT source string into a ready-to-merge module.
// It is the only entry point cmd/wasmmerge's -wat input path and the test
// fixtures in merge/ need from this package.
func Compile(source string) ([]byte, error) {
	tokens := token.Tokenize(source)
	p := parser.New(tokens)
	mod, err := p.Parse()
	if err != nil {
		return nil, err
	}
	return encoder.Encode(mod), nil
}
