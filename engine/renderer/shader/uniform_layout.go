package shader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
)

// typeLayout is the byte size and alignment of a host-shareable WGSL type.
type typeLayout struct {
	size  uint64
	align uint64
}

var scalarSizes = map[string]uint64{
	"bool": 4,
	"f16":  2,
	"f32":  4,
	"f64":  8,
	"i32":  4,
	"u32":  4,
}

// shorthandScalars maps the suffix of predeclared aliases such as vec3f or
// mat4x4h to their scalar type.
var shorthandScalars = map[byte]string{
	'f': "f32",
	'h': "f16",
	'i': "i32",
	'u': "u32",
}

func alignUp(value, align uint64) uint64 {
	if align == 0 {
		return value
	}
	return (value + align - 1) &^ (align - 1)
}

// splitGeneric splits "array<Light, 4>" into "array" and "Light, 4". Types
// without a parameter list return an empty param.
func splitGeneric(typeName string) (base, param string) {
	open := strings.IndexByte(typeName, '<')
	if open < 0 || !strings.HasSuffix(typeName, ">") {
		return typeName, ""
	}
	return strings.TrimSpace(typeName[:open]), strings.TrimSpace(typeName[open+1 : len(typeName)-1])
}

// canonicalType expands predeclared aliases, so "vec3f" becomes "vec3<f32>".
// Other names are returned unchanged.
func canonicalType(typeName string) string {
	typeName = strings.TrimSpace(typeName)
	base, param := splitGeneric(typeName)
	if param != "" || len(base) < 5 {
		return typeName
	}
	scalar, ok := shorthandScalars[base[len(base)-1]]
	if !ok {
		return typeName
	}
	shape := base[:len(base)-1]
	if isVecShape(shape) || isMatShape(shape) {
		return shape + "<" + scalar + ">"
	}
	return typeName
}

func isVecShape(s string) bool {
	return len(s) == 4 && strings.HasPrefix(s, "vec") && s[3] >= '2' && s[3] <= '4'
}

func isMatShape(s string) bool {
	return len(s) == 6 && strings.HasPrefix(s, "mat") && s[4] == 'x' &&
		s[3] >= '2' && s[3] <= '4' && s[5] >= '2' && s[5] <= '4'
}

func vecLayout(n int, scalar uint64) typeLayout {
	size := uint64(n) * scalar
	if n == 3 {
		return typeLayout{size: size, align: 4 * scalar}
	}
	return typeLayout{size: size, align: size}
}

// builtinLayout computes the layout of a scalar, vector, matrix or atomic type
// following the WGSL alignment and size table. Matrices are arrays of column
// vectors.
func builtinLayout(typeName string) (typeLayout, bool) {
	typeName = canonicalType(typeName)
	if size, ok := scalarSizes[typeName]; ok {
		return typeLayout{size: size, align: size}, true
	}

	base, param := splitGeneric(typeName)
	if base == "atomic" {
		return builtinLayout(param)
	}
	scalar, ok := scalarSizes[param]
	if !ok {
		return typeLayout{}, false
	}
	switch {
	case isVecShape(base):
		return vecLayout(int(base[3]-'0'), scalar), true
	case isMatShape(base):
		col := vecLayout(int(base[5]-'0'), scalar)
		stride := alignUp(col.size, col.align)
		return typeLayout{size: uint64(base[3]-'0') * stride, align: col.align}, true
	}
	return typeLayout{}, false
}

// parseArrayType splits array<T, N> into its element type and count.
// Runtime-sized arrays report a count of zero.
func parseArrayType(typeName string) (elem string, count int, ok bool) {
	base, param := splitGeneric(typeName)
	if base != "array" || param == "" {
		return "", 0, false
	}
	parts := splitTopLevel(param)
	elem = strings.TrimSpace(parts[0])
	switch len(parts) {
	case 1:
		return elem, 0, true
	case 2:
		n, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil || n <= 0 {
			return "", 0, false
		}
		return elem, n, true
	}
	return "", 0, false
}

// splitTopLevel splits s at commas that are not nested inside angle brackets,
// so the comma of array<Light, 4> does not end a struct member.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// typeTable resolves the layouts of builtin types and of the structs declared
// in one WGSL source. Struct layouts are memoized.
type typeTable struct {
	structs map[string]parsedStruct
	layouts map[string]typeLayout
}

func newTypeTable(structs []parsedStruct) *typeTable {
	t := &typeTable{
		structs: make(map[string]parsedStruct, len(structs)),
		layouts: make(map[string]typeLayout, len(structs)),
	}
	for _, ps := range structs {
		t.structs[ps.name] = ps
	}
	return t
}

func (t *typeTable) layout(typeName string) (typeLayout, bool) {
	return t.resolve(strings.TrimSpace(typeName), map[string]bool{})
}

func (t *typeTable) resolve(typeName string, visiting map[string]bool) (typeLayout, bool) {
	if l, ok := builtinLayout(typeName); ok {
		return l, true
	}
	if l, ok := t.layouts[typeName]; ok {
		return l, true
	}

	if elem, count, ok := parseArrayType(typeName); ok {
		el, ok := t.resolve(elem, visiting)
		if !ok {
			return typeLayout{}, false
		}
		stride := alignUp(el.size, el.align)
		if count == 0 {
			return typeLayout{size: stride, align: el.align}, true
		}
		return typeLayout{size: uint64(count) * stride, align: el.align}, true
	}

	ps, ok := t.structs[typeName]
	if !ok || visiting[typeName] {
		return typeLayout{}, false
	}
	visiting[typeName] = true
	var offset uint64
	align := uint64(1)
	for _, f := range ps.fields {
		if f.isBuiltin {
			continue
		}
		fl, ok := t.resolve(f.typeName, visiting)
		if !ok {
			return typeLayout{}, false
		}
		offset = alignUp(offset, fl.align) + fl.size
		align = max(align, fl.align)
	}
	l := typeLayout{size: alignUp(offset, align), align: align}
	t.layouts[typeName] = l
	return l, true
}

// flatten appends the leaf uniforms of a typeName value placed at base.
// Struct members are joined with "." and fixed-size array elements with "[i]".
// Runtime-sized arrays are not expanded.
func (t *typeTable) flatten(prefix, typeName string, base uint64, out []renderer.UniformField) []renderer.UniformField {
	if ps, ok := t.structs[typeName]; ok {
		var offset uint64
		for _, f := range ps.fields {
			if f.isBuiltin {
				continue
			}
			fl, ok := t.layout(f.typeName)
			if !ok {
				return out
			}
			offset = alignUp(offset, fl.align)
			out = t.flatten(memberName(prefix, f.name), f.typeName, base+offset, out)
			offset += fl.size
		}
		return out
	}

	if elem, count, ok := parseArrayType(typeName); ok {
		el, ok := t.layout(elem)
		if !ok {
			return out
		}
		stride := alignUp(el.size, el.align)
		for i := range count {
			out = t.flatten(fmt.Sprintf("%s[%d]", prefix, i), elem, base+uint64(i)*stride, out)
		}
		return out
	}

	l, ok := t.layout(typeName)
	if !ok {
		return out
	}
	return append(out, renderer.UniformField{Name: prefix, Type: typeName, Offset: base, Size: l.size})
}

// memberName drops a trailing underscore so reserved words such as type can be
// declared as type_.
func memberName(prefix, name string) string {
	name = strings.TrimSuffix(name, "_")
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
