package mesh

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStaticMeshNonIndexed(t *testing.T) {
	rec := renderer.NewRecorder()
	m, err := NewStaticMesh(rec, []Vertex{
		{Position: [3]float32{0, 1, 0}},
		{Position: [3]float32{-1, -1, 0}},
		{Position: [3]float32{1, -1, 0}},
	}, WithName("tri"))
	require.NoError(t, err)

	assert.Equal(t, "tri", m.Name())
	assert.Equal(t, 3, m.VertexCount())
	assert.Equal(t, 0, m.IndexCount())
	assert.Equal(t, renderer.VertexArrayID(1), m.VertexArray())
	assert.InDelta(t, math.Sqrt2, m.BoundingRadius(), 1e-5)
	assert.Len(t, rec.CallsOf("CreateVertexArray"), 1)
}

func TestNewStaticMeshErrors(t *testing.T) {
	rec := renderer.NewRecorder()

	_, err := NewStaticMesh(rec, nil)
	assert.ErrorIs(t, err, ErrEmptyMesh)

	_, err = NewStaticMesh(rec, []Vertex{{}}, WithIndices([]uint32{0, 1, 0}))
	assert.Error(t, err)
	assert.Empty(t, rec.CallsOf("CreateVertexArray"))
}

func TestCubeGeometry(t *testing.T) {
	vertices, indices := CubeGeometry(2)
	require.Len(t, vertices, 24)
	require.Len(t, indices, 36)

	for i := 0; i < len(indices); i += 3 {
		a := vertices[indices[i]]
		b := vertices[indices[i+1]]
		c := vertices[indices[i+2]]
		n := common.Cross3(common.Sub3(b.Position, a.Position), common.Sub3(c.Position, a.Position))
		assert.Greater(t, common.Dot3(n, a.Normal), float32(0), "triangle %d faces inward", i/3)
		for _, v := range []Vertex{a, b, c} {
			assert.InDelta(t, 1, common.Dot3(v.Position, v.Normal), 1e-5)
		}
	}

	rec := renderer.NewRecorder()
	m, err := NewCube(rec, 2)
	require.NoError(t, err)
	assert.Equal(t, 36, m.IndexCount())
	assert.InDelta(t, math.Sqrt(3), m.BoundingRadius(), 1e-5)
}
