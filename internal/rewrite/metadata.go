package rewrite

import (
	"bytes"

	"github.com/aaronmunsters/wasm-merge/wasm"
)

// encodeProducers builds a minimal "producers" custom section payload
// (one field, one value) identifying this tool as a contributor,
// alongside whatever producers metadata survived from the inputs'
// untouched custom sections — which this package does not attempt to
// merge, so this is the only producers entry the output carries.
func encodeProducers() []byte {
	var buf bytes.Buffer
	writeU32(&buf, 1) // field count
	writeName(&buf, "processed-by")
	writeU32(&buf, 1) // value count
	writeName(&buf, "wasm-merge")
	writeName(&buf, "0.1.0")
	return buf.Bytes()
}

// encodeNameSection builds a "name" custom section with only the module
// name subsection (id 0) populated, identifying the merge's inputs.
func encodeNameSection(moduleName string) []byte {
	var buf bytes.Buffer
	buf.WriteByte(0) // subsection id: module name
	var sub bytes.Buffer
	writeName(&sub, moduleName)
	writeU32(&buf, uint32(sub.Len()))
	buf.Write(sub.Bytes())
	return buf.Bytes()
}

func writeU32(buf *bytes.Buffer, v uint32) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		buf.WriteByte(b)
		if v == 0 {
			return
		}
	}
}

func writeName(buf *bytes.Buffer, s string) {
	writeU32(buf, uint32(len(s)))
	buf.WriteString(s)
}

// internalModuleName looks up mod's own "name" custom section and decodes
// subsection 0 (the module name), returning ("", false) if the input never
// carried one. wasm.Module keeps custom sections as opaque payloads, so
// this is the only place that peeks inside the "name" section's format.
func internalModuleName(mod *wasm.Module) (string, bool) {
	for _, cs := range mod.CustomSections {
		if cs.Name != "name" {
			continue
		}
		data := cs.Data
		for len(data) > 0 {
			id := data[0]
			data = data[1:]
			size, n, ok := readU32(data)
			if !ok || n > len(data) {
				return "", false
			}
			data = data[n:]
			if int(size) > len(data) {
				return "", false
			}
			sub := data[:size]
			data = data[size:]
			if id == 0 {
				name, _, ok := readName(sub)
				return name, ok
			}
		}
	}
	return "", false
}

func readU32(data []byte) (uint32, int, bool) {
	var result uint32
	var shift uint
	for i, b := range data {
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, i + 1, true
		}
		shift += 7
		if shift >= 32 {
			return 0, 0, false
		}
	}
	return 0, 0, false
}

func readName(data []byte) (string, int, bool) {
	size, n, ok := readU32(data)
	if !ok || n+int(size) > len(data) {
		return "", 0, false
	}
	return string(data[n : n+int(size)]), n + int(size), true
}
