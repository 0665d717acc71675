package common

import (
	"math"
	"unsafe"
)

// Identity resets a 4x4 matrix (flat slice) to the identity matrix.
// The matrix is stored in column-major order.
//
// Parameters:
//   - m: destination slice (must be at least 16 elements)
func Identity(m []float32) {
	for i := range m {
		m[i] = 0
	}
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
}

// Identity3 returns the 3x3 identity matrix in column-major order.
//
// Returns:
//   - [9]float32: the identity matrix
func Identity3() [9]float32 {
	return [9]float32{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// Mul4 multiplies two 4x4 matrices and stores the result in out.
// All matrices are stored in column-major order (OpenGL/WebGPU convention).
// Result: out = a * b
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - a: left-hand matrix (16 elements)
//   - b: right-hand matrix (16 elements)
func Mul4(out, a, b []float32) {
	var buf [16]float32
	for i := 0; i < 4; i++ { // column of B
		for j := 0; j < 4; j++ { // row of A
			sum := float32(0)
			for k := 0; k < 4; k++ {
				sum += a[k*4+j] * b[i*4+k]
			}
			buf[i*4+j] = sum
		}
	}
	copy(out, buf[:])
}

// Perspective creates a perspective projection matrix.
// Uses the WebGPU clip space depth range [0, 1].
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
func Perspective(out []float32, fovY, aspect, near, far float32) {
	f := 1.0 / float32(math.Tan(float64(fovY)/2.0))
	Identity(out)

	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	out[15] = 0.0
}

// Orthographic creates an orthographic projection matrix mapping the given box
// to the WebGPU clip volume (depth range [0, 1]).
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - left, right: horizontal extents of the view volume
//   - bottom, top: vertical extents of the view volume
//   - near, far: depth extents of the view volume
func Orthographic(out []float32, left, right, bottom, top, near, far float32) {
	Identity(out)

	out[0] = 2 / (right - left)
	out[5] = 2 / (top - bottom)
	out[10] = 1 / (near - far)
	out[12] = -(right + left) / (right - left)
	out[13] = -(top + bottom) / (top - bottom)
	out[14] = near / (near - far)
}

// Radians converts an angle in degrees to radians.
func Radians(deg float32) float32 {
	return deg * (math.Pi / 180.0)
}

// Dot3 returns the dot product of two 3-component vectors.
func Dot3(a, b [3]float32) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// Cross3 returns the cross product a x b.
func Cross3(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Sub3 returns a - b.
func Sub3(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// Length3 returns the Euclidean length of v.
func Length3(v [3]float32) float32 {
	return float32(math.Sqrt(float64(Dot3(v, v))))
}

// Normalize3 returns v scaled to unit length. A zero vector is returned unchanged.
//
// Parameters:
//   - v: the vector to normalize
//
// Returns:
//   - [3]float32: the normalized vector, or the zero vector if v has zero length
func Normalize3(v [3]float32) [3]float32 {
	length := Length3(v)
	if length == 0 {
		return [3]float32{}
	}
	inv := 1.0 / length
	return [3]float32{v[0] * inv, v[1] * inv, v[2] * inv}
}

// QuatIdentity returns the identity rotation as (x, y, z, w).
func QuatIdentity() [4]float32 {
	return [4]float32{0, 0, 0, 1}
}

// QuatNormalize returns q scaled to unit length. A zero quaternion yields the identity.
func QuatNormalize(q [4]float32) [4]float32 {
	l := float32(math.Sqrt(float64(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])))
	if l == 0 {
		return QuatIdentity()
	}
	inv := 1 / l
	return [4]float32{q[0] * inv, q[1] * inv, q[2] * inv, q[3] * inv}
}

// QuatMul returns the Hamilton product a * b (apply b first, then a).
func QuatMul(a, b [4]float32) [4]float32 {
	return [4]float32{
		a[3]*b[0] + a[0]*b[3] + a[1]*b[2] - a[2]*b[1],
		a[3]*b[1] - a[0]*b[2] + a[1]*b[3] + a[2]*b[0],
		a[3]*b[2] + a[0]*b[1] - a[1]*b[0] + a[2]*b[3],
		a[3]*b[3] - a[0]*b[0] - a[1]*b[1] - a[2]*b[2],
	}
}

// QuatFromAxisAngle builds a rotation of angle radians around a unit axis.
func QuatFromAxisAngle(axis [3]float32, angle float32) [4]float32 {
	s := float32(math.Sin(float64(angle) / 2))
	c := float32(math.Cos(float64(angle) / 2))
	return [4]float32{axis[0] * s, axis[1] * s, axis[2] * s, c}
}

// QuatFromEuler builds a rotation from Euler angles in radians using the
// Y * X * Z (yaw-pitch-roll) order.
//
// Parameters:
//   - rx, ry, rz: rotation angles around each axis in radians
//
// Returns:
//   - [4]float32: the rotation as (x, y, z, w)
func QuatFromEuler(rx, ry, rz float32) [4]float32 {
	qx := QuatFromAxisAngle([3]float32{1, 0, 0}, rx)
	qy := QuatFromAxisAngle([3]float32{0, 1, 0}, ry)
	qz := QuatFromAxisAngle([3]float32{0, 0, 1}, rz)
	return QuatMul(QuatMul(qy, qx), qz)
}

// QuatRotate rotates vector v by the unit quaternion q.
func QuatRotate(q [4]float32, v [3]float32) [3]float32 {
	u := [3]float32{q[0], q[1], q[2]}
	w := q[3]
	uv := Cross3(u, v)
	uuv := Cross3(u, uv)
	return [3]float32{
		v[0] + 2*(w*uv[0]+uuv[0]),
		v[1] + 2*(w*uv[1]+uuv[1]),
		v[2] + 2*(w*uv[2]+uuv[2]),
	}
}

// QuatFromBasis converts an orthonormal basis (the columns of a rotation
// matrix) into a unit quaternion. The branch is chosen by the largest of the
// trace and the three diagonal terms so the square root argument stays well
// away from zero near 180 degree rotations.
//
// Parameters:
//   - right: the basis X axis (first matrix column)
//   - up: the basis Y axis (second matrix column)
//   - forward: the basis Z axis (third matrix column)
//
// Returns:
//   - [4]float32: the rotation as (x, y, z, w)
func QuatFromBasis(right, up, forward [3]float32) [4]float32 {
	m00, m01, m02 := right[0], up[0], forward[0]
	m10, m11, m12 := right[1], up[1], forward[1]
	m20, m21, m22 := right[2], up[2], forward[2]

	var q [4]float32
	trace := m00 + m11 + m22
	switch {
	case trace > 0:
		s := 0.5 / float32(math.Sqrt(float64(trace+1)))
		q[3] = 0.25 / s
		q[0] = (m21 - m12) * s
		q[1] = (m02 - m20) * s
		q[2] = (m10 - m01) * s
	case m00 > m11 && m00 > m22:
		s := 2 * float32(math.Sqrt(float64(1+m00-m11-m22)))
		q[3] = (m21 - m12) / s
		q[0] = 0.25 * s
		q[1] = (m01 + m10) / s
		q[2] = (m02 + m20) / s
	case m11 > m22:
		s := 2 * float32(math.Sqrt(float64(1+m11-m00-m22)))
		q[3] = (m02 - m20) / s
		q[0] = (m01 + m10) / s
		q[1] = 0.25 * s
		q[2] = (m12 + m21) / s
	default:
		s := 2 * float32(math.Sqrt(float64(1+m22-m00-m11)))
		q[3] = (m10 - m01) / s
		q[0] = (m02 + m20) / s
		q[1] = (m12 + m21) / s
		q[2] = 0.25 * s
	}
	return QuatNormalize(q)
}

// BuildModelMatrix constructs a 4x4 column-major model matrix from a
// translation, a unit quaternion rotation and a per-axis scale (T * R * S).
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - pos: translation in world space
//   - rot: rotation as (x, y, z, w)
//   - scale: scale factors along each axis
func BuildModelMatrix(out []float32, pos [3]float32, rot [4]float32, scale [3]float32) {
	x, y, z, w := rot[0], rot[1], rot[2], rot[3]
	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	out[0] = (1 - 2*(yy+zz)) * scale[0]
	out[1] = 2 * (xy + wz) * scale[0]
	out[2] = 2 * (xz - wy) * scale[0]
	out[3] = 0

	out[4] = 2 * (xy - wz) * scale[1]
	out[5] = (1 - 2*(xx+zz)) * scale[1]
	out[6] = 2 * (yz + wx) * scale[1]
	out[7] = 0

	out[8] = 2 * (xz + wy) * scale[2]
	out[9] = 2 * (yz - wx) * scale[2]
	out[10] = (1 - 2*(xx+yy)) * scale[2]
	out[11] = 0

	out[12] = pos[0]
	out[13] = pos[1]
	out[14] = pos[2]
	out[15] = 1
}

// ViewFromBasis builds a world-to-view matrix from a camera's orthonormal
// basis and world position. The basis vectors become the matrix rows and the
// translation is the negated projection of the eye onto each axis.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - right, up, forward: the camera basis (forward points away from the view direction)
//   - eye: the camera position in world space
func ViewFromBasis(out []float32, right, up, forward, eye [3]float32) {
	out[0], out[4], out[8], out[12] = right[0], right[1], right[2], -Dot3(right, eye)
	out[1], out[5], out[9], out[13] = up[0], up[1], up[2], -Dot3(up, eye)
	out[2], out[6], out[10], out[14] = forward[0], forward[1], forward[2], -Dot3(forward, eye)
	out[3], out[7], out[11], out[15] = 0, 0, 0, 1
}

// NormalMatrix computes the inverse-transpose of the upper-left 3x3 of a
// column-major model matrix. If that block is singular the identity is
// returned together with false.
//
// Parameters:
//   - model: the 4x4 model matrix
//
// Returns:
//   - [9]float32: the 3x3 normal matrix (column-major)
//   - bool: false if the upper 3x3 block could not be inverted
func NormalMatrix(model [16]float32) ([9]float32, bool) {
	a, b, c := model[0], model[4], model[8]
	d, e, f := model[1], model[5], model[9]
	g, h, i := model[2], model[6], model[10]

	// cofactors of the row-major view [a b c; d e f; g h i]
	A := e*i - f*h
	B := -(d*i - f*g)
	C := d*h - e*g
	D := -(b*i - c*h)
	E := a*i - c*g
	F := -(a*h - b*g)
	G := b*f - c*e
	H := -(a*f - c*d)
	I := a*e - b*d

	det := a*A + b*B + c*C
	if det == 0 {
		return Identity3(), false
	}
	inv := 1 / det

	// inverse = adj / det where adj = cofactor^T; the transpose of the inverse
	// is therefore cofactor / det. Stored column-major.
	return [9]float32{
		A * inv, D * inv, G * inv,
		B * inv, E * inv, H * inv,
		C * inv, F * inv, I * inv,
	}, true
}
