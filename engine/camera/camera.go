package camera

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/entity"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/Carmen-Shannon/oxy-scene/engine/transform"
)

var (
	// ErrNoTransform is returned by LookAt when the owning entity has no transform.
	ErrNoTransform = errors.New("camera: owner has no transform")

	// ErrDegenerateLookAt is returned by LookAt when the target coincides with the
	// eye or the view direction is parallel to the world up vector.
	ErrDegenerateLookAt = errors.New("camera: degenerate look-at basis")
)

// Projection identifies how the projection matrix was built.
type Projection int

const (
	ProjectionPerspective Projection = iota
	ProjectionOrthographic
)

// Viewport is the drawable surface the perspective aspect ratio is read from.
type Viewport interface {
	Width() int
	Height() int
}

var (
	axisX = [3]float32{1, 0, 0}
	axisY = [3]float32{0, 1, 0}
	axisZ = [3]float32{0, 0, 1}
)

type camera struct {
	entity.Base

	viewport   Viewport
	projection Projection

	fov    float32 // degrees
	aspect float32
	near   float32
	far    float32

	left, right, bottom, top float32

	forward [3]float32
	up      [3]float32
	side    [3]float32

	viewMatrix       [16]float32
	projectionMatrix [16]float32
	seenVersion      uint64
}

// Camera is the viewpoint capability. It caches a view matrix derived from the
// owning entity's transform and a projection matrix set explicitly through
// SetPerspective, SetPerspectiveAspect or SetOrthographic.
//
// Forward follows the look-at convention: it points from the target back
// towards the eye, so the camera looks down -Forward.
type Camera interface {
	entity.Capability
	scene.Updater

	// SetPerspective rebuilds the projection as a perspective projection whose
	// aspect ratio is read from the viewport. Without a viewport, or with a zero
	// height, the aspect ratio is 1. The view matrix is untouched.
	//
	// Parameters:
	//   - fovDeg: vertical field of view in degrees
	//   - near, far: clipping plane distances
	SetPerspective(fovDeg, near, far float32)

	// SetPerspectiveAspect rebuilds the projection as a perspective projection
	// with an explicit aspect ratio. The view matrix is untouched.
	//
	// Parameters:
	//   - fovDeg: vertical field of view in degrees
	//   - aspect: width / height
	//   - near, far: clipping plane distances
	SetPerspectiveAspect(fovDeg, aspect, near, far float32)

	// SetOrthographic rebuilds the projection as an orthographic projection.
	// The view matrix is untouched.
	//
	// Parameters:
	//   - left, right, bottom, top: extents of the view volume
	//   - near, far: depth extents of the view volume
	SetOrthographic(left, right, bottom, top, near, far float32)

	// LookAt orients the owning entity's transform so the camera looks at target,
	// then rebuilds the view matrix. This writes the transform's rotation.
	//
	// Parameters:
	//   - target: the world-space point to look at
	//   - worldUp: the world up direction, usually (0, 1, 0)
	//
	// Returns:
	//   - error: ErrNoTransform without a transform, ErrDegenerateLookAt for an unusable basis
	LookAt(target, worldUp [3]float32) error

	// SetViewport sets the viewport SetPerspective reads its aspect ratio from.
	//
	// Parameters:
	//   - v: the viewport, may be nil
	SetViewport(v Viewport)

	// ViewMatrix returns the cached column-major view matrix.
	ViewMatrix() [16]float32

	// ProjectionMatrix returns the cached column-major projection matrix.
	ProjectionMatrix() [16]float32

	// Position returns the owning transform's position, or the origin without one.
	Position() [3]float32

	// Forward returns the unit vector pointing from the view target back to the eye.
	Forward() [3]float32

	// Up returns the camera's unit up vector.
	Up() [3]float32

	// Right returns the camera's unit right vector.
	Right() [3]float32

	// Projection returns the kind of the current projection.
	Projection() Projection

	// Fov returns the perspective field of view in degrees.
	Fov() float32

	// Aspect returns the aspect ratio used by the last perspective projection.
	Aspect() float32

	// Near returns the near clipping distance.
	Near() float32

	// Far returns the far clipping distance.
	Far() float32
}

var _ Camera = &camera{}

// NewCamera creates a Camera with a 45 degree perspective projection, near 0.1
// and far 100, then applies the options.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &camera{
		forward: axisZ,
		up:      axisY,
		side:    axisX,
	}
	common.Identity(c.viewMatrix[:])
	c.SetPerspective(45, 0.1, 100)
	for _, option := range options {
		option(c)
	}
	return c
}

// Of returns the Camera attached to e, if any.
//
// Parameters:
//   - e: the entity to inspect (may be nil)
//
// Returns:
//   - Camera: the attached camera or nil
//   - bool: true if found
func Of(e *entity.Entity) (Camera, bool) {
	return entity.Find[Camera](e, entity.KindCamera)
}

func (c *camera) Kind() entity.Kind {
	return entity.KindCamera
}

func (c *camera) SetViewport(v Viewport) {
	c.viewport = v
}

func (c *camera) viewportAspect() float32 {
	if c.viewport == nil || c.viewport.Height() == 0 {
		return 1
	}
	return float32(c.viewport.Width()) / float32(c.viewport.Height())
}

func (c *camera) SetPerspective(fovDeg, near, far float32) {
	c.SetPerspectiveAspect(fovDeg, c.viewportAspect(), near, far)
}

func (c *camera) SetPerspectiveAspect(fovDeg, aspect, near, far float32) {
	c.projection = ProjectionPerspective
	c.fov, c.aspect, c.near, c.far = fovDeg, aspect, near, far
	common.Perspective(c.projectionMatrix[:], common.Radians(fovDeg), aspect, near, far)
}

func (c *camera) SetOrthographic(left, right, bottom, top, near, far float32) {
	c.projection = ProjectionOrthographic
	c.left, c.right, c.bottom, c.top = left, right, bottom, top
	c.near, c.far = near, far
	common.Orthographic(c.projectionMatrix[:], left, right, bottom, top, near, far)
}

func (c *camera) LookAt(target, worldUp [3]float32) error {
	t, ok := transform.Of(c.Owner())
	if !ok {
		return ErrNoTransform
	}

	eye := t.Position()
	forward := common.Normalize3(common.Sub3(eye, target))
	side := common.Normalize3(common.Cross3(worldUp, forward))
	if forward == [3]float32{} || side == [3]float32{} {
		return ErrDegenerateLookAt
	}
	up := common.Cross3(forward, side)

	t.SetRotation(common.QuatFromBasis(side, up, forward))
	c.forward, c.up, c.side = forward, up, side
	common.ViewFromBasis(c.viewMatrix[:], side, up, forward, eye)
	c.seenVersion = t.Version()
	return nil
}

func (c *camera) Update(_ scene.Scene, _ float32) {
	t, ok := transform.Of(c.Owner())
	if !ok || !t.MovedSince(c.seenVersion) {
		return
	}
	q := t.Rotation()
	c.side = common.QuatRotate(q, axisX)
	c.up = common.QuatRotate(q, axisY)
	c.forward = common.QuatRotate(q, axisZ)
	common.ViewFromBasis(c.viewMatrix[:], c.side, c.up, c.forward, t.Position())
	c.seenVersion = t.Version()
}

func (c *camera) ViewMatrix() [16]float32 {
	return c.viewMatrix
}

func (c *camera) ProjectionMatrix() [16]float32 {
	return c.projectionMatrix
}

func (c *camera) Position() [3]float32 {
	if t, ok := transform.Of(c.Owner()); ok {
		return t.Position()
	}
	return [3]float32{}
}

func (c *camera) Forward() [3]float32 {
	return c.forward
}

func (c *camera) Up() [3]float32 {
	return c.up
}

func (c *camera) Right() [3]float32 {
	return c.side
}

func (c *camera) Projection() Projection {
	return c.projection
}

func (c *camera) Fov() float32 {
	return c.fov
}

func (c *camera) Aspect() float32 {
	return c.aspect
}

func (c *camera) Near() float32 {
	return c.near
}

func (c *camera) Far() float32 {
	return c.far
}
