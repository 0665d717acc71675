package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const eps = 1e-5

func assertVec3(t *testing.T, want, got [3]float32) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], eps, "component %d", i)
	}
}

func TestMul4Identity(t *testing.T) {
	var id, out [16]float32
	Identity(id[:])
	m := [16]float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	Mul4(out[:], id[:], m[:])
	assert.Equal(t, m, out)
}

func TestOrthographicMapsBoxCorners(t *testing.T) {
	var m [16]float32
	Orthographic(m[:], -2, 2, -1, 1, 0.5, 10)

	// x = 2 maps to +1, y = -1 maps to -1, z = -near maps to depth 0.
	x := m[0]*2 + m[12]
	y := m[5]*-1 + m[13]
	zNear := m[10]*-0.5 + m[14]
	zFar := m[10]*-10 + m[14]
	assert.InDelta(t, 1, x, eps)
	assert.InDelta(t, -1, y, eps)
	assert.InDelta(t, 0, zNear, eps)
	assert.InDelta(t, 1, zFar, eps)
}

func TestQuatFromBasisBranches(t *testing.T) {
	tests := []struct {
		name string
		q    [4]float32
	}{
		{"identity", QuatIdentity()},
		{"x 180", QuatFromAxisAngle([3]float32{1, 0, 0}, math.Pi)},
		{"y 180", QuatFromAxisAngle([3]float32{0, 1, 0}, math.Pi)},
		{"z 180", QuatFromAxisAngle([3]float32{0, 0, 1}, math.Pi)},
		{"yaw pitch roll", QuatFromEuler(0.3, -1.1, 2.0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			right := QuatRotate(tt.q, [3]float32{1, 0, 0})
			up := QuatRotate(tt.q, [3]float32{0, 1, 0})
			forward := QuatRotate(tt.q, [3]float32{0, 0, 1})

			got := QuatFromBasis(right, up, forward)

			// q and -q describe the same rotation; compare the rotated axes.
			assertVec3(t, right, QuatRotate(got, [3]float32{1, 0, 0}))
			assertVec3(t, up, QuatRotate(got, [3]float32{0, 1, 0}))
			assertVec3(t, forward, QuatRotate(got, [3]float32{0, 0, 1}))
		})
	}
}

func TestBuildModelMatrixMatchesQuatRotate(t *testing.T) {
	q := QuatFromEuler(0.4, 0.7, -0.2)
	var m [16]float32
	BuildModelMatrix(m[:], [3]float32{1, 2, 3}, q, [3]float32{2, 2, 2})

	v := [3]float32{0.5, -1, 2}
	rotated := QuatRotate(q, [3]float32{v[0] * 2, v[1] * 2, v[2] * 2})
	got := [3]float32{
		m[0]*v[0] + m[4]*v[1] + m[8]*v[2] + m[12],
		m[1]*v[0] + m[5]*v[1] + m[9]*v[2] + m[13],
		m[2]*v[0] + m[6]*v[1] + m[10]*v[2] + m[14],
	}
	assertVec3(t, [3]float32{rotated[0] + 1, rotated[1] + 2, rotated[2] + 3}, got)
}

func TestNormalMatrixNonUniformScale(t *testing.T) {
	var m [16]float32
	BuildModelMatrix(m[:], [3]float32{}, QuatIdentity(), [3]float32{2, 4, 8})

	n, ok := NormalMatrix(m)
	assert.True(t, ok)
	assert.InDelta(t, 0.5, n[0], eps)
	assert.InDelta(t, 0.25, n[4], eps)
	assert.InDelta(t, 0.125, n[8], eps)
}

func TestNormalMatrixSingular(t *testing.T) {
	var m [16]float32
	BuildModelMatrix(m[:], [3]float32{}, QuatIdentity(), [3]float32{0, 1, 1})

	n, ok := NormalMatrix(m)
	assert.False(t, ok)
	assert.Equal(t, Identity3(), n)
}

func TestViewFromBasisMovesEyeToOrigin(t *testing.T) {
	var v [16]float32
	eye := [3]float32{3, -2, 5}
	ViewFromBasis(v[:], [3]float32{1, 0, 0}, [3]float32{0, 1, 0}, [3]float32{0, 0, 1}, eye)

	got := [3]float32{
		v[0]*eye[0] + v[4]*eye[1] + v[8]*eye[2] + v[12],
		v[1]*eye[0] + v[5]*eye[1] + v[9]*eye[2] + v[13],
		v[2]*eye[0] + v[6]*eye[1] + v[10]*eye[2] + v[14],
	}
	assertVec3(t, [3]float32{}, got)
}

func TestNormalize3Zero(t *testing.T) {
	assert.Equal(t, [3]float32{}, Normalize3([3]float32{}))
	assertVec3(t, [3]float32{0, 1, 0}, Normalize3([3]float32{0, 7, 0}))
}
