package shader

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
)

// vertexFormats maps canonical WGSL types to the vertex format an attribute of
// that type is read with.
var vertexFormats = map[string]wgpu.VertexFormat{
	"f32":       wgpu.VertexFormatFloat32,
	"vec2<f32>": wgpu.VertexFormatFloat32x2,
	"vec3<f32>": wgpu.VertexFormatFloat32x3,
	"vec4<f32>": wgpu.VertexFormatFloat32x4,
	"i32":       wgpu.VertexFormatSint32,
	"vec2<i32>": wgpu.VertexFormatSint32x2,
	"vec3<i32>": wgpu.VertexFormatSint32x3,
	"vec4<i32>": wgpu.VertexFormatSint32x4,
	"u32":       wgpu.VertexFormatUint32,
	"vec2<u32>": wgpu.VertexFormatUint32x2,
	"vec3<u32>": wgpu.VertexFormatUint32x3,
	"vec4<u32>": wgpu.VertexFormatUint32x4,
	"vec2<f16>": wgpu.VertexFormatFloat16x2,
	"vec4<f16>": wgpu.VertexFormatFloat16x4,
}

var (
	// structBlockRegex matches struct declarations and captures the name and body
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// memberRegex captures the attributes, name and type of one struct member
	memberRegex = regexp.MustCompile(`^((?:@\w+(?:\([^)]*\))?\s*)*)(\w+)\s*:\s*(.+)$`)

	// locationRegex matches @location(N) attributes
	locationRegex = regexp.MustCompile(`@location\(\s*(\d+)\s*\)`)

	vertexEntryRegex   = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// uniformDeclRegex captures group, binding, variable name and type from
	// declarations like: @group(0) @binding(0) var<uniform> params: Params;
	uniformDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var<\s*uniform\s*>\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// parsedField is one member of a WGSL struct. location is -1 without a
// @location attribute.
type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

type parsedStruct struct {
	name   string
	fields []parsedField
}

// vertexInput reports whether ps is a pure vertex input: at least one
// @location member and no @builtin members, which excludes stage outputs
// carrying @builtin(position).
func (ps parsedStruct) vertexInput() bool {
	located := false
	for _, f := range ps.fields {
		if f.isBuiltin {
			return false
		}
		located = located || f.location >= 0
	}
	return located
}

// stripComments removes line comments and nested block comments from WGSL
// source. Newlines are kept so line numbers survive.
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		c := source[i]
		var next byte
		if i+1 < len(source) {
			next = source[i+1]
		}
		switch {
		case c == '/' && next == '*':
			depth++
			i++
		case c == '*' && next == '/' && depth > 0:
			depth--
			i++
		case depth > 0:
			if c == '\n' {
				sb.WriteByte(c)
			}
		case c == '/' && next == '/':
			for i < len(source) && source[i] != '\n' {
				i++
			}
			if i < len(source) {
				sb.WriteByte('\n')
			}
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// parseVertexLayouts builds the layout of vertex buffer slot 0 from the first
// vertex input struct whose members all map to a vertex format. Attributes are
// tightly packed in declaration order.
//
// Parameters:
//   - source: WGSL source
//
// Returns:
//   - []wgpu.VertexBufferLayout: a single layout, or nil
func parseVertexLayouts(source string) []wgpu.VertexBufferLayout {
	for _, ps := range parseStructBlocks(stripComments(source)) {
		if !ps.vertexInput() {
			continue
		}
		if layout, ok := vertexBufferLayout(ps); ok {
			return []wgpu.VertexBufferLayout{layout}
		}
	}
	return nil
}

func vertexBufferLayout(ps parsedStruct) (wgpu.VertexBufferLayout, bool) {
	layout := wgpu.VertexBufferLayout{StepMode: wgpu.VertexStepModeVertex}
	for _, f := range ps.fields {
		typeName := canonicalType(f.typeName)
		format, ok := vertexFormats[typeName]
		if !ok {
			return wgpu.VertexBufferLayout{}, false
		}
		size, _ := builtinLayout(typeName)
		layout.Attributes = append(layout.Attributes, wgpu.VertexAttribute{
			Format:         format,
			Offset:         layout.ArrayStride,
			ShaderLocation: uint32(f.location),
		})
		layout.ArrayStride += size.size
	}
	return layout, true
}

// parseEntryPoints extracts the @vertex and @fragment entry point names. A
// missing stage yields an empty string.
func parseEntryPoints(source string) (vertex, fragment string) {
	cleaned := stripComments(source)
	if m := vertexEntryRegex.FindStringSubmatch(cleaned); m != nil {
		vertex = m[1]
	}
	if m := fragmentEntryRegex.FindStringSubmatch(cleaned); m != nil {
		fragment = m[1]
	}
	return vertex, fragment
}

// parameterBlock is the reflected uniform block bound at @group(0) @binding(0).
type parameterBlock struct {
	varName string
	fields  []renderer.UniformField
	size    uint64
}

// parseParameterBlock reflects the var<uniform> bound at @group(0) @binding(0)
// into flattened leaf uniforms sorted by offset. When the bound type is a
// struct its members become top-level names ("model", "LIGHTS[0].ambient");
// otherwise the variable itself is the only uniform. Other bindings are not
// reflected.
//
// Parameters:
//   - source: WGSL source
//
// Returns:
//   - parameterBlock: the reflected block
//   - bool: false if the source declares no resolvable parameter block
func parseParameterBlock(source string) (parameterBlock, bool) {
	cleaned := stripComments(source)
	types := newTypeTable(parseStructBlocks(cleaned))

	for _, m := range uniformDeclRegex.FindAllStringSubmatch(cleaned, -1) {
		if m[1] != "0" || m[2] != "0" {
			continue
		}
		varName, typeName := m[3], strings.TrimSpace(m[4])
		layout, ok := types.layout(typeName)
		if !ok {
			return parameterBlock{}, false
		}

		prefix := varName
		if _, isStruct := types.structs[typeName]; isStruct {
			prefix = ""
		}
		fields := types.flatten(prefix, typeName, 0, nil)
		sort.SliceStable(fields, func(i, j int) bool {
			return fields[i].Offset < fields[j].Offset
		})
		return parameterBlock{
			varName: varName,
			fields:  fields,
			size:    alignUp(layout.size, 16),
		}, true
	}
	return parameterBlock{}, false
}

// parseStructBlocks parses every struct declaration in comment-free source.
func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))
	for _, m := range matches {
		structs = append(structs, parsedStruct{name: m[1], fields: parseStructFields(m[2])})
	}
	return structs
}

func parseStructFields(body string) []parsedField {
	members := splitTopLevel(body)
	fields := make([]parsedField, 0, len(members))
	for _, member := range members {
		m := memberRegex.FindStringSubmatch(strings.TrimSpace(member))
		if m == nil {
			continue
		}
		attrs := m[1]
		f := parsedField{
			name:      m[2],
			typeName:  strings.TrimSpace(m[3]),
			location:  -1,
			isBuiltin: strings.Contains(attrs, "@builtin"),
		}
		if lm := locationRegex.FindStringSubmatch(attrs); lm != nil {
			f.location, _ = strconv.Atoi(lm[1])
		}
		fields = append(fields, f)
	}
	return fields
}
