package transform

import "github.com/Carmen-Shannon/oxy-scene/common"

// TransformBuilderOption is a functional option for configuring a Transform during construction.
type TransformBuilderOption func(*transform)

// WithPosition sets the initial position.
//
// Parameters:
//   - x, y, z: position components
//
// Returns:
//   - TransformBuilderOption: option function to apply
func WithPosition(x, y, z float32) TransformBuilderOption {
	return func(t *transform) {
		t.position = [3]float32{x, y, z}
	}
}

// WithRotation sets the initial rotation quaternion (normalized on apply).
//
// Parameters:
//   - q: rotation quaternion (x, y, z, w)
//
// Returns:
//   - TransformBuilderOption: option function to apply
func WithRotation(q [4]float32) TransformBuilderOption {
	return func(t *transform) {
		t.rotation = common.QuatNormalize(q)
	}
}

// WithRotationEuler sets the initial rotation from Euler angles in radians.
//
// Parameters:
//   - rx, ry, rz: rotation about X, Y and Z
//
// Returns:
//   - TransformBuilderOption: option function to apply
func WithRotationEuler(rx, ry, rz float32) TransformBuilderOption {
	return func(t *transform) {
		t.rotation = common.QuatFromEuler(rx, ry, rz)
	}
}

// WithScale sets the initial per-axis scale.
//
// Parameters:
//   - sx, sy, sz: scale factors
//
// Returns:
//   - TransformBuilderOption: option function to apply
func WithScale(sx, sy, sz float32) TransformBuilderOption {
	return func(t *transform) {
		t.scale = [3]float32{sx, sy, sz}
	}
}

// WithRotationSpeed sets the angular velocity in radians per second.
//
// Parameters:
//   - rx, ry, rz: rotation speed about X, Y and Z
//
// Returns:
//   - TransformBuilderOption: option function to apply
func WithRotationSpeed(rx, ry, rz float32) TransformBuilderOption {
	return func(t *transform) {
		t.rotationSpeed = [3]float32{rx, ry, rz}
	}
}
