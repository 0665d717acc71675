package transform

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/entity"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionTracksMutation(t *testing.T) {
	tr := NewTransform()
	v := tr.Version()
	assert.False(t, tr.MovedSince(v))

	tr.SetPosition(1, 2, 3)
	assert.True(t, tr.MovedSince(v))

	v = tr.Version()
	tr.SetScale(2, 2, 2)
	assert.True(t, tr.MovedSince(v))
}

func TestModelMatrixTranslation(t *testing.T) {
	tr := NewTransform(WithPosition(4, 5, 6), WithScale(2, 3, 4))
	m := tr.ModelMatrix()

	assert.Equal(t, float32(4), m[12])
	assert.Equal(t, float32(5), m[13])
	assert.Equal(t, float32(6), m[14])
	assert.InDelta(t, 2, m[0], 1e-6)
	assert.InDelta(t, 3, m[5], 1e-6)
	assert.InDelta(t, 4, m[10], 1e-6)

	tr.SetPosition(0, 0, 0)
	assert.Equal(t, float32(0), tr.ModelMatrix()[12])
}

func TestUpdateAppliesRotationSpeed(t *testing.T) {
	tr := NewTransform(WithRotationSpeed(0, math.Pi/2, 0))
	sc := scene.NewScene("spin", scene.WithEntities(
		entity.New("spinner", entity.WithCapabilities(tr)),
	))
	v := tr.Version()

	sc.Update(1)

	require.True(t, tr.MovedSince(v))
	x := common.QuatRotate(tr.Rotation(), [3]float32{1, 0, 0})
	assert.InDelta(t, 0, x[0], 1e-5)
	assert.InDelta(t, -1, x[2], 1e-5)
}

func TestUpdateWithoutSpeedKeepsVersion(t *testing.T) {
	tr := NewTransform()
	v := tr.Version()
	tr.Update(nil, 1)
	assert.False(t, tr.MovedSince(v))
}

func TestOf(t *testing.T) {
	tr := NewTransform()
	e := entity.New("holder", entity.WithCapabilities(tr))

	got, ok := Of(e)
	require.True(t, ok)
	assert.Same(t, tr, got)

	_, ok = Of(entity.New("empty"))
	assert.False(t, ok)
}
