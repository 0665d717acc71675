package shader

import (
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pointLightWGSL = `struct PointLight {
    position: vec3<f32>,
    type_: i32,
    diffuse: vec3<f32>,
};`

const litWGSL = `struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) normal: vec3<f32>,
};

struct VertexOutput {
    @builtin(position) clip: vec4<f32>,
    @location(0) normal: vec3<f32>,
};

//@oxy:include point_light

struct Params {
    model: mat4x4<f32>,
    brightness: f32,
    NUM_LIGHTS: i32,
    LIGHTS: array<PointLight, 2>,
};

@group(0) @binding(0) var<uniform> params: Params;

@vertex
fn vs_main(v: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.clip = params.model * vec4<f32>(v.position, 1.0);
    out.normal = v.normal;
    return out;
}

@fragment
fn fs_main(v: VertexOutput) -> @location(0) vec4<f32> {
    return vec4<f32>(v.normal * params.brightness, 1.0);
}
`

func newLit(t *testing.T, rec *renderer.Recorder, options ...ShaderBuilderOption) Shader {
	t.Helper()
	opts := append([]ShaderBuilderOption{
		WithSource(litWGSL),
		WithInclude("point_light", pointLightWGSL),
	}, options...)
	s, err := NewShader(rec, "lit", opts...)
	require.NoError(t, err)
	return s
}

func TestNewShaderReflectsParameterBlock(t *testing.T) {
	rec := renderer.NewRecorder()
	s := newLit(t, rec)

	assert.Equal(t, 1, s.Passes())
	assert.Equal(t, map[string]string{
		"model":              "mat4x4<f32>",
		"brightness":         "f32",
		"NUM_LIGHTS":         "i32",
		"LIGHTS[0].position": "vec3<f32>",
		"LIGHTS[0].type":     "i32",
		"LIGHTS[0].diffuse":  "vec3<f32>",
		"LIGHTS[1].position": "vec3<f32>",
		"LIGHTS[1].type":     "i32",
		"LIGHTS[1].diffuse":  "vec3<f32>",
	}, s.Parameters())

	desc, ok := rec.Program(s.Program(0))
	require.True(t, ok)
	assert.Equal(t, uint64(144), desc.BlockSize)

	offsets := make(map[string]uint64)
	for _, u := range desc.Uniforms {
		offsets[u.Name] = u.Offset
	}
	assert.Equal(t, uint64(0), offsets["model"])
	assert.Equal(t, uint64(64), offsets["brightness"])
	assert.Equal(t, uint64(68), offsets["NUM_LIGHTS"])
	assert.Equal(t, uint64(80), offsets["LIGHTS[0].position"])
	assert.Equal(t, uint64(92), offsets["LIGHTS[0].type"])
	assert.Equal(t, uint64(112), offsets["LIGHTS[1].position"])
	assert.Equal(t, uint64(128), offsets["LIGHTS[1].diffuse"])
}

func TestNewShaderEntryPointsAndVertexLayout(t *testing.T) {
	rec := renderer.NewRecorder()
	s := newLit(t, rec)

	desc, ok := rec.Program(s.Program(0))
	require.True(t, ok)
	assert.Equal(t, "vs_main", desc.VertexEntry)
	assert.Equal(t, "fs_main", desc.FragmentEntry)
	assert.Equal(t, "lit#0", desc.Label)
	require.Len(t, desc.VertexLayouts, 1)
	assert.Equal(t, uint64(24), desc.VertexLayouts[0].ArrayStride)
	assert.Len(t, desc.VertexLayouts[0].Attributes, 2)
	assert.Contains(t, s.Source(0), "struct PointLight")
	assert.NotContains(t, s.Source(0), "@oxy:")
}

func TestLocationPerPass(t *testing.T) {
	rec := renderer.NewRecorder()
	s := newLit(t, rec, WithSource(litWGSL))

	assert.Equal(t, 2, s.Passes())
	assert.NotEqual(t, s.Program(0), s.Program(1))
	assert.NotEqual(t, renderer.NoLocation, s.Location(1, "brightness"))
	assert.Equal(t, renderer.NoLocation, s.Location(0, "missing"))
	assert.Equal(t, renderer.NoLocation, s.Location(2, "brightness"))
	assert.Equal(t, renderer.ProgramID(0), s.Program(-1))
	assert.Empty(t, s.Source(5))
}

func TestUsePassOutOfRange(t *testing.T) {
	rec := renderer.NewRecorder()
	s := newLit(t, rec)

	require.NoError(t, s.Use(0))
	assert.ErrorIs(t, s.Use(1), ErrPassOutOfRange)
	assert.ErrorIs(t, s.Use(-1), ErrPassOutOfRange)

	uses := rec.CallsOf("UseProgram")
	require.Len(t, uses, 1)
	assert.Equal(t, s.Program(0), uses[0].Program)
}

func TestRegisteredInclude(t *testing.T) {
	RegisterInclude("test_point_light", pointLightWGSL)
	src := `//@oxy:include test_point_light
//@oxy:include test_point_light
struct Params { tint: vec4<f32>, };
@group(0) @binding(0) var<uniform> params: Params;
@vertex fn vs() -> @builtin(position) vec4<f32> { return params.tint; }
@fragment fn fs() -> @location(0) vec4<f32> { return params.tint; }
`
	rec := renderer.NewRecorder()
	s, err := NewShader(rec, "inc", WithSource(src))
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(s.Source(0), "struct PointLight"))
	assert.Len(t, s.Declarations(), 2)
	assert.Equal(t, map[string]string{"tint": "vec4<f32>"}, s.Parameters())
}

func TestNewShaderErrors(t *testing.T) {
	rec := renderer.NewRecorder()

	_, err := NewShader(rec, "empty")
	assert.ErrorIs(t, err, ErrInvalidSource)

	_, err = NewShader(rec, "unknown", WithSource("//@oxy:include nope\n"))
	assert.ErrorIs(t, err, ErrInvalidSource)

	_, err = NewShader(rec, "noentry", WithSource("struct A { x: f32, };"))
	assert.ErrorIs(t, err, ErrInvalidSource)

	_, err = NewShader(rec, "missing", WithSourceFromPath("testdata/does-not-exist.wgsl"))
	assert.Error(t, err)

	_, err = NewShader(rec, "broken", WithValidation(true), WithSource("@vertex fn vs( -> {"))
	assert.ErrorIs(t, err, ErrInvalidSource)

	assert.Empty(t, rec.CallsOf("CreateProgram"))
}

func TestParseAnnotation(t *testing.T) {
	a, err := parseAnnotation("  //@oxy:include light", 3)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, AnnotationTypeInclude, a.Type)
	assert.Equal(t, []string{"light"}, a.Args)
	assert.Equal(t, 3, a.Line)

	a, err = parseAnnotation("// plain comment", 1)
	assert.NoError(t, err)
	assert.Nil(t, a)

	_, err = parseAnnotation("//@oxy:include", 1)
	assert.Error(t, err)

	_, err = parseAnnotation("//@oxy:group 0", 1)
	assert.Error(t, err)
}

func TestNewStatic(t *testing.T) {
	rec := renderer.NewRecorder()
	s, err := NewStatic(rec, "flat", 2, map[string]string{
		"tint":       "vec3<f32>",
		"brightness": "float",
		"count":      "i32",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, s.Passes())
	assert.Equal(t, renderer.ProgramID(2), s.Program(1))
	assert.Equal(t, renderer.Location(0), s.Location(0, "brightness"))
	assert.Equal(t, renderer.Location(2), s.Location(1, "tint"))

	desc, ok := rec.Program(s.Program(0))
	require.True(t, ok)
	assert.Equal(t, uint64(16), desc.Uniforms[1].Offset)
	assert.Equal(t, uint64(32), desc.Uniforms[2].Offset)
	assert.Equal(t, uint64(48), desc.BlockSize)

	_, err = NewStatic(rec, "none", 0, nil)
	assert.ErrorIs(t, err, ErrInvalidSource)
}
