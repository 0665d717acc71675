package camera

// CameraBuilderOption is a functional option for configuring a Camera during construction.
// Options apply in order, so WithViewport must precede WithPerspective for the
// viewport's aspect ratio to be used.
type CameraBuilderOption func(*camera)

// WithViewport sets the viewport the perspective aspect ratio is read from and
// rebuilds the current perspective projection with it.
//
// Parameters:
//   - v: the viewport
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's viewport
func WithViewport(v Viewport) CameraBuilderOption {
	return func(c *camera) {
		c.viewport = v
		if c.projection == ProjectionPerspective {
			c.SetPerspective(c.fov, c.near, c.far)
		}
	}
}

// WithPerspective sets a perspective projection with the viewport's aspect ratio.
//
// Parameters:
//   - fovDeg: vertical field of view in degrees
//   - near, far: clipping plane distances
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's projection
func WithPerspective(fovDeg, near, far float32) CameraBuilderOption {
	return func(c *camera) {
		c.SetPerspective(fovDeg, near, far)
	}
}

// WithPerspectiveAspect sets a perspective projection with an explicit aspect ratio.
//
// Parameters:
//   - fovDeg: vertical field of view in degrees
//   - aspect: width / height
//   - near, far: clipping plane distances
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's projection
func WithPerspectiveAspect(fovDeg, aspect, near, far float32) CameraBuilderOption {
	return func(c *camera) {
		c.SetPerspectiveAspect(fovDeg, aspect, near, far)
	}
}

// WithOrthographic sets an orthographic projection.
//
// Parameters:
//   - left, right, bottom, top: extents of the view volume
//   - near, far: depth extents of the view volume
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's projection
func WithOrthographic(left, right, bottom, top, near, far float32) CameraBuilderOption {
	return func(c *camera) {
		c.SetOrthographic(left, right, bottom, top, near, far)
	}
}
