package material

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newStatic(t *testing.T, rec *renderer.Recorder, passes int, params map[string]string) shader.Shader {
	t.Helper()
	s, err := shader.NewStatic(rec, "test", passes, params)
	require.NoError(t, err)
	return s
}

func TestParseParamKind(t *testing.T) {
	tests := map[string]ParamKind{
		"bool":        ParamBool,
		"i32":         ParamInt,
		"int":         ParamInt,
		"u32":         ParamUint,
		"f32":         ParamFloat,
		"float":       ParamFloat,
		"double":      ParamDouble,
		"vec2f":       ParamVec2,
		"vec3< f32 >": ParamVec3,
		"vec4":        ParamVec4,
		"mat4x4<f32>": ParamUnsupported,
		"sampler2D":   ParamUnsupported,
	}
	for declared, want := range tests {
		assert.Equal(t, want, ParseParamKind(declared), declared)
	}
}

func TestSetShaderZeroInitializesSlots(t *testing.T) {
	rec := renderer.NewRecorder()
	m, err := NewMaterial(newStatic(t, rec, 1, map[string]string{
		"brightness": "f32",
		"lit":        "bool",
		"tint":       "vec3<f32>",
		"model":      "mat4x4<f32>",
	}))
	require.NoError(t, err)

	slots := m.Slots()
	require.Len(t, slots, 4)
	assert.Equal(t, []string{"brightness", "lit", "model", "tint"},
		[]string{slots[0].Name, slots[1].Name, slots[2].Name, slots[3].Name})
	assert.Equal(t, FloatValue(0), slots[0].Value)
	assert.Equal(t, BoolValue(false), slots[1].Value)
	assert.Equal(t, ParamUnsupported, slots[2].Declared)
	assert.Nil(t, slots[2].Value)
	assert.Equal(t, Vec3Value{}, slots[3].Value)
}

func TestSetDataBrightness(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	rec := renderer.NewRecorder()
	m, err := NewMaterial(newStatic(t, rec, 1, map[string]string{"brightness": "float"}), WithLogger(zap.New(core)))
	require.NoError(t, err)

	require.NoError(t, m.SetData("brightness", FloatValue(0.5)))
	v, ok := m.GetData("brightness")
	require.True(t, ok)
	assert.Equal(t, FloatValue(0.5), v)

	err = m.SetData("brightness", IntValue(1))
	assert.ErrorIs(t, err, ErrParameterTypeMismatch)
	var mismatch *TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, ParamFloat, mismatch.Declared)
	assert.Equal(t, ParamInt, mismatch.Got)
	assert.Equal(t, 1, logs.FilterMessage("material parameter type mismatch").Len())

	v, _ = m.GetData("brightness")
	assert.Equal(t, FloatValue(0.5), v)
}

func TestSetDataUnknownAndUnsupported(t *testing.T) {
	rec := renderer.NewRecorder()
	m, err := NewMaterial(newStatic(t, rec, 1, map[string]string{"model": "mat4x4<f32>"}))
	require.NoError(t, err)

	assert.ErrorIs(t, m.SetData("missing", FloatValue(1)), ErrUnknownParameter)
	assert.ErrorIs(t, m.SetData("model", Vec4Value{}), ErrParameterTypeMismatch)
	assert.ErrorIs(t, m.SetData("model", nil), ErrParameterTypeMismatch)
	_, ok := m.GetData("model")
	assert.False(t, ok)
}

func TestStrictPanicsOnMismatch(t *testing.T) {
	rec := renderer.NewRecorder()
	m, err := NewMaterial(newStatic(t, rec, 1, map[string]string{"count": "i32"}), WithStrict(true))
	require.NoError(t, err)

	assert.Panics(t, func() { _ = m.SetData("count", UintValue(3)) })
	assert.NotPanics(t, func() { _ = m.SetData("count", IntValue(3)) })
}

func TestWithData(t *testing.T) {
	rec := renderer.NewRecorder()
	m, err := NewMaterial(newStatic(t, rec, 1, map[string]string{"tint": "vec4"}),
		WithName("red"),
		WithData("tint", Vec4Value{1, 0, 0, 1}),
	)
	require.NoError(t, err)
	assert.Equal(t, "red", m.Name())
	v, _ := m.GetData("tint")
	assert.Equal(t, Vec4Value{1, 0, 0, 1}, v)

	_, err = NewMaterial(newStatic(t, rec, 1, map[string]string{"tint": "vec4"}), WithData("tint", FloatValue(1)))
	assert.ErrorIs(t, err, ErrParameterTypeMismatch)
}

func TestSetShaderRebuildsSlots(t *testing.T) {
	rec := renderer.NewRecorder()
	m, err := NewMaterial(newStatic(t, rec, 1, map[string]string{"a": "f32"}))
	require.NoError(t, err)
	require.NoError(t, m.SetData("a", FloatValue(2)))

	m.SetShader(newStatic(t, rec, 1, map[string]string{"a": "f32", "b": "u32"}))
	v, _ := m.GetData("a")
	assert.Equal(t, FloatValue(0), v)
	assert.Len(t, m.Slots(), 2)

	m.SetShader(nil)
	assert.Empty(t, m.Slots())
	assert.ErrorIs(t, m.Apply(0), ErrNoShader)
}

func TestApplyPushesByKind(t *testing.T) {
	rec := renderer.NewRecorder()
	s := newStatic(t, rec, 2, map[string]string{
		"lit":        "bool",
		"count":      "i32",
		"mask":       "u32",
		"brightness": "f32",
		"exposure":   "f64",
		"uv":         "vec2<f32>",
		"tint":       "vec3<f32>",
		"color":      "vec4<f32>",
		"model":      "mat4x4<f32>",
	})
	m, err := NewMaterial(s)
	require.NoError(t, err)
	require.NoError(t, m.SetData("brightness", FloatValue(0.5)))
	require.NoError(t, m.SetData("tint", Vec3Value{1, 2, 3}))
	require.NoError(t, m.SetData("exposure", DoubleValue(1.5)))

	require.NoError(t, m.Apply(1))

	uses := rec.CallsOf("UseProgram")
	require.Len(t, uses, 1)
	assert.Equal(t, s.Program(1), uses[0].Program)

	for op, n := range map[string]int{
		"SetBool": 1, "SetInt": 1, "SetUint": 1, "SetFloat": 1,
		"SetDouble": 1, "SetVec2": 1, "SetVec3": 1, "SetVec4": 1,
		"SetMat4": 0,
	} {
		assert.Len(t, rec.CallsOf(op), n, op)
	}

	v, ok := rec.Value(s.Program(1), "brightness")
	require.True(t, ok)
	assert.Equal(t, float32(0.5), v)
	v, _ = rec.Value(s.Program(1), "tint")
	assert.Equal(t, [3]float32{1, 2, 3}, v)
	v, _ = rec.Value(s.Program(1), "exposure")
	assert.Equal(t, 1.5, v)
	assert.NotContains(t, rec.Names(s.Program(1)), "model")

	assert.ErrorIs(t, m.Apply(2), ErrPassOutOfRange)
}
