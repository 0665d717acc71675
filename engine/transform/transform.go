package transform

import (
	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/entity"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
)

type transform struct {
	entity.Base

	position      [3]float32
	rotation      [4]float32
	scale         [3]float32
	rotationSpeed [3]float32
	version       uint64

	modelVersion uint64
	model        [16]float32
}

// Transform defines the spatial placement capability of an entity: position,
// rotation quaternion and per-axis scale. Every mutation bumps a version
// counter so consumers can detect movement without a shared dirty flag.
type Transform interface {
	entity.Capability
	scene.Updater

	// Position returns the world-space position.
	//
	// Returns:
	//   - [3]float32: position (x, y, z)
	Position() [3]float32

	// Rotation returns the orientation as a unit quaternion (x, y, z, w).
	//
	// Returns:
	//   - [4]float32: rotation quaternion
	Rotation() [4]float32

	// Scale returns the per-axis scale factors.
	//
	// Returns:
	//   - [3]float32: scale (x, y, z)
	Scale() [3]float32

	// RotationSpeed returns the Euler angular velocity in radians per second
	// applied on every Update.
	//
	// Returns:
	//   - [3]float32: rotation speed (rx, ry, rz)
	RotationSpeed() [3]float32

	// SetPosition sets the world-space position.
	//
	// Parameters:
	//   - x, y, z: new position components
	SetPosition(x, y, z float32)

	// SetRotation sets the orientation quaternion. The value is normalized.
	//
	// Parameters:
	//   - q: rotation quaternion (x, y, z, w)
	SetRotation(q [4]float32)

	// SetRotationEuler sets the orientation from Euler angles in radians.
	//
	// Parameters:
	//   - rx, ry, rz: rotation about X, Y and Z
	SetRotationEuler(rx, ry, rz float32)

	// SetScale sets the per-axis scale factors.
	//
	// Parameters:
	//   - sx, sy, sz: new scale factors
	SetScale(sx, sy, sz float32)

	// SetRotationSpeed sets the Euler angular velocity in radians per second.
	//
	// Parameters:
	//   - rx, ry, rz: rotation speed about X, Y and Z
	SetRotationSpeed(rx, ry, rz float32)

	// Version returns the mutation counter. It increases on every change.
	//
	// Returns:
	//   - uint64: current version
	Version() uint64

	// MovedSince reports whether the transform changed after the given version
	// was observed.
	//
	// Parameters:
	//   - v: a version previously returned by Version
	//
	// Returns:
	//   - bool: true if the transform changed since v
	MovedSince(v uint64) bool

	// ModelMatrix returns the column-major model matrix (translate * rotate * scale).
	//
	// Returns:
	//   - [16]float32: model matrix
	ModelMatrix() [16]float32
}

var _ Transform = &transform{}

// NewTransform creates a Transform at the origin with identity rotation and
// unit scale, then applies the options.
//
// Parameters:
//   - options: functional options to configure the transform
//
// Returns:
//   - Transform: the newly created transform
func NewTransform(options ...TransformBuilderOption) Transform {
	t := &transform{
		rotation: common.QuatIdentity(),
		scale:    [3]float32{1, 1, 1},
		version:  1,
	}
	for _, option := range options {
		option(t)
	}
	return t
}

// Of returns the Transform attached to e, if any.
//
// Parameters:
//   - e: the entity to inspect (may be nil)
//
// Returns:
//   - Transform: the attached transform or nil
//   - bool: true if found
func Of(e *entity.Entity) (Transform, bool) {
	return entity.Find[Transform](e, entity.KindTransform)
}

func (t *transform) Kind() entity.Kind {
	return entity.KindTransform
}

func (t *transform) Position() [3]float32 {
	return t.position
}

func (t *transform) Rotation() [4]float32 {
	return t.rotation
}

func (t *transform) Scale() [3]float32 {
	return t.scale
}

func (t *transform) RotationSpeed() [3]float32 {
	return t.rotationSpeed
}

func (t *transform) SetPosition(x, y, z float32) {
	t.position = [3]float32{x, y, z}
	t.version++
}

func (t *transform) SetRotation(q [4]float32) {
	t.rotation = common.QuatNormalize(q)
	t.version++
}

func (t *transform) SetRotationEuler(rx, ry, rz float32) {
	t.rotation = common.QuatFromEuler(rx, ry, rz)
	t.version++
}

func (t *transform) SetScale(sx, sy, sz float32) {
	t.scale = [3]float32{sx, sy, sz}
	t.version++
}

func (t *transform) SetRotationSpeed(rx, ry, rz float32) {
	t.rotationSpeed = [3]float32{rx, ry, rz}
}

func (t *transform) Version() uint64 {
	return t.version
}

func (t *transform) MovedSince(v uint64) bool {
	return t.version != v
}

func (t *transform) ModelMatrix() [16]float32 {
	if t.modelVersion != t.version {
		common.BuildModelMatrix(t.model[:], t.position, t.rotation, t.scale)
		t.modelVersion = t.version
	}
	return t.model
}

func (t *transform) Update(_ scene.Scene, dt float32) {
	s := t.rotationSpeed
	if s == [3]float32{} || dt == 0 {
		return
	}
	step := common.QuatFromEuler(s[0]*dt, s[1]*dt, s[2]*dt)
	t.rotation = common.QuatNormalize(common.QuatMul(t.rotation, step))
	t.version++
}
