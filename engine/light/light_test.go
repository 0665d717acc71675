package light

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/engine/entity"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-scene/engine/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const litWGSL = `//@oxy:include light

struct Params {
    NUM_LIGHTS: i32,
    LIGHTS: array<Light, 2>,
};

@group(0) @binding(0) var<uniform> params: Params;

@vertex
fn vs_main(@location(0) position: vec3<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(position, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(params.LIGHTS[0].diffuse, 1.0);
}
`

// spy records every parameter name written through it.
type spy struct {
	material.Material
	written []string
}

func (s *spy) SetData(name string, v material.Value) error {
	s.written = append(s.written, name)
	return s.Material.SetData(name, v)
}

func newMaterial(t *testing.T) *spy {
	t.Helper()
	s, err := shader.NewShader(renderer.NewRecorder(), "lit", shader.WithSource(litWGSL))
	require.NoError(t, err)
	m, err := material.NewMaterial(s)
	require.NoError(t, err)
	return &spy{Material: m}
}

func attach(t *testing.T, l Light, pos ...float32) {
	t.Helper()
	caps := []entity.Capability{l}
	if len(pos) == 3 {
		caps = append(caps, transform.NewTransform(transform.WithPosition(pos[0], pos[1], pos[2])))
	}
	entity.New("light", entity.WithCapabilities(caps...))
}

func TestLightIncludeReflectsEveryField(t *testing.T) {
	m := newMaterial(t)
	params := m.Shader().Parameters()
	for _, f := range []string{FieldPosition, FieldType, FieldDirection, FieldConstant, FieldLinear,
		FieldQuadratic, FieldAmbient, FieldDiffuse, FieldSpecular, FieldCutOff, FieldOuterCutOff} {
		assert.Contains(t, params, UniformName(1, f))
	}
	assert.Equal(t, "i32", params[UniformName(0, FieldType)])
	assert.Equal(t, "LIGHTS[1].diffuse", UniformName(1, FieldDiffuse))
}

func TestPointLightWriteSet(t *testing.T) {
	m := newMaterial(t)
	l := NewLight(LightTypePoint, WithAttenuation(1, 0.5, 0.25), WithDiffuse(1, 0, 0))
	attach(t, l, 1, 2, 3)

	require.NoError(t, l.Apply(m, 0, 1))

	assert.ElementsMatch(t, []string{
		"LIGHTS[1].ambient", "LIGHTS[1].diffuse", "LIGHTS[1].specular", "LIGHTS[1].type",
		"LIGHTS[1].position", "LIGHTS[1].constant", "LIGHTS[1].linear", "LIGHTS[1].quadratic",
	}, m.written)
	assert.NotContains(t, m.written, "LIGHTS[1].direction")

	v, _ := m.GetData("LIGHTS[1].position")
	assert.Equal(t, material.Vec3Value{1, 2, 3}, v)
	v, _ = m.GetData("LIGHTS[1].linear")
	assert.Equal(t, material.FloatValue(0.5), v)
	v, _ = m.GetData("LIGHTS[1].type")
	assert.Equal(t, material.IntValue(LightTypePoint), v)
	v, _ = m.GetData("LIGHTS[1].direction")
	assert.Equal(t, material.Vec3Value{}, v)
}

func TestPointLightWithoutTransformSkipsPosition(t *testing.T) {
	m := newMaterial(t)
	l := NewLight(LightTypePoint)
	attach(t, l)

	require.NoError(t, l.Apply(m, 0, 0))
	assert.NotContains(t, m.written, "LIGHTS[0].position")
	assert.Contains(t, m.written, "LIGHTS[0].quadratic")
}

func TestDirectionalLightWriteSet(t *testing.T) {
	m := newMaterial(t)
	l := NewLight(LightTypeDirectional, WithDirection(0, -2, 0))
	attach(t, l, 5, 5, 5)

	require.NoError(t, l.Apply(m, 0, 0))

	assert.ElementsMatch(t, []string{
		"LIGHTS[0].ambient", "LIGHTS[0].diffuse", "LIGHTS[0].specular", "LIGHTS[0].type",
		"LIGHTS[0].direction",
	}, m.written)
	v, _ := m.GetData("LIGHTS[0].direction")
	assert.Equal(t, material.Vec3Value{0, -1, 0}, v)
}

func TestSpotLightWritesConeCosines(t *testing.T) {
	m := newMaterial(t)
	l := NewLight(LightTypeSpot, WithSpotCone(30, 60))
	attach(t, l, 0, 4, 0)

	require.NoError(t, l.Apply(m, 0, 0))

	assert.Contains(t, m.written, "LIGHTS[0].position")
	assert.Contains(t, m.written, "LIGHTS[0].direction")
	assert.NotContains(t, m.written, "LIGHTS[0].constant")
	v, _ := m.GetData("LIGHTS[0].cutOff")
	assert.InDelta(t, math.Sqrt(3)/2, float64(v.(material.FloatValue)), 1e-5)
	v, _ = m.GetData("LIGHTS[0].outerCutOff")
	assert.InDelta(t, 0.5, float64(v.(material.FloatValue)), 1e-5)
}

func TestApplyToleratesMissingAndPropagatesMismatch(t *testing.T) {
	rec := renderer.NewRecorder()
	partial, err := shader.NewStatic(rec, "partial", 1, map[string]string{"LIGHTS[0].diffuse": "vec3<f32>"})
	require.NoError(t, err)
	m, err := material.NewMaterial(partial)
	require.NoError(t, err)
	assert.NoError(t, NewLight(LightTypePoint).Apply(m, 0, 0))

	wrong, err := shader.NewStatic(rec, "wrong", 1, map[string]string{"LIGHTS[0].type": "f32"})
	require.NoError(t, err)
	m, err = material.NewMaterial(wrong)
	require.NoError(t, err)
	assert.ErrorIs(t, NewLight(LightTypePoint).Apply(m, 0, 0), material.ErrParameterTypeMismatch)
}
