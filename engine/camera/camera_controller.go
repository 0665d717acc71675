package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/entity"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/Carmen-Shannon/oxy-scene/engine/transform"
)

// KindOrbitController marks the orbit controller capability.
var KindOrbitController = entity.NewKind("OrbitController")

var worldUp = [3]float32{0, 1, 0}

// orbitController is the implementation of OrbitController. Orbit methods modify
// spherical coordinates around the target; planar methods translate both the
// target and the eye along the camera's local axes.
type orbitController struct {
	entity.Base

	mu *sync.Mutex

	target [3]float32

	// Spherical coordinates (offset from target)
	radius    float32
	azimuth   float32 // Horizontal angle around Y axis
	elevation float32 // Vertical angle from horizontal plane

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	orbitSpeed float32
	zoomSpeed  float32
	panSpeed   float32
	autoOrbit  float32 // radians per second

	dirty bool
}

// OrbitController is a capability that places its entity on a sphere around a
// target and aims the entity's camera at it on every Update. Its mutators may be
// called from input callbacks on other goroutines; the placement itself is only
// written to the transform during Update.
type OrbitController interface {
	entity.Capability
	scene.Updater

	// Position returns the eye position implied by the spherical coordinates.
	//
	// Returns:
	//   - [3]float32: the eye position
	Position() [3]float32

	// Target returns the orbit pivot.
	//
	// Returns:
	//   - [3]float32: the pivot
	Target() [3]float32

	// SetTarget moves the orbit pivot.
	//
	// Parameters:
	//   - x, y, z: the new pivot
	SetTarget(x, y, z float32)

	// Radius returns the distance from the pivot.
	Radius() float32

	// SetRadius sets the distance from the pivot, clamped to the radius bounds.
	//
	// Parameters:
	//   - radius: the new distance
	SetRadius(radius float32)

	// Azimuth returns the horizontal angle around the Y axis in radians.
	Azimuth() float32

	// SetAzimuth sets the horizontal angle around the Y axis.
	//
	// Parameters:
	//   - azimuth: angle in radians, 0 looks down -Z from +Z
	SetAzimuth(azimuth float32)

	// Elevation returns the vertical angle from the horizontal plane in radians.
	Elevation() float32

	// SetElevation sets the vertical angle, clamped to the elevation bounds.
	//
	// Parameters:
	//   - elevation: angle in radians
	SetElevation(elevation float32)

	// SetAutoOrbit sets a continuous azimuth rotation applied on every Update.
	//
	// Parameters:
	//   - speed: radians per second, 0 to stop
	SetAutoOrbit(speed float32)

	// OrbitLeft decreases the azimuth by the orbit speed.
	OrbitLeft()

	// OrbitRight increases the azimuth by the orbit speed.
	OrbitRight()

	// OrbitUp increases the elevation by the orbit speed.
	OrbitUp()

	// OrbitDown decreases the elevation by the orbit speed.
	OrbitDown()

	// Zoom moves towards the pivot by delta times the zoom speed.
	//
	// Parameters:
	//   - delta: positive zooms in, negative zooms out
	Zoom(delta float32)

	// PanRight translates pivot and eye along the camera's right axis.
	//
	// Parameters:
	//   - delta: distance in pan speed units
	PanRight(delta float32)

	// PanUp translates pivot and eye along the camera's up axis.
	//
	// Parameters:
	//   - delta: distance in pan speed units
	PanUp(delta float32)

	// PanForward translates pivot and eye along the view direction.
	//
	// Parameters:
	//   - delta: distance in pan speed units
	PanForward(delta float32)
}

var _ OrbitController = &orbitController{}

// NewOrbitController creates an orbit controller 10 units from the origin at a
// 30 degree elevation, then applies the options.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - OrbitController: the newly created controller
func NewOrbitController(options ...OrbitControllerOption) OrbitController {
	oc := &orbitController{
		mu: &sync.Mutex{},

		radius:    10.0,
		elevation: float32(math.Pi / 6),

		minRadius:    0.5,
		maxRadius:    1000.0,
		minElevation: -float32(math.Pi/2 - 0.1),
		maxElevation: float32(math.Pi/2 - 0.1),

		orbitSpeed: 0.03,
		zoomSpeed:  1.0,
		panSpeed:   1.0,

		dirty: true,
	}
	for _, option := range options {
		option(oc)
	}
	oc.radius = common.Clamp(oc.radius, oc.minRadius, oc.maxRadius)
	oc.elevation = common.Clamp(oc.elevation, oc.minElevation, oc.maxElevation)
	return oc
}

func (oc *orbitController) Kind() entity.Kind {
	return KindOrbitController
}

// position computes the eye from spherical coordinates. Caller must hold the mutex.
func (oc *orbitController) position() [3]float32 {
	cosElev := float32(math.Cos(float64(oc.elevation)))
	sinElev := float32(math.Sin(float64(oc.elevation)))
	cosAzim := float32(math.Cos(float64(oc.azimuth)))
	sinAzim := float32(math.Sin(float64(oc.azimuth)))
	return [3]float32{
		oc.target[0] + oc.radius*cosElev*sinAzim,
		oc.target[1] + oc.radius*sinElev,
		oc.target[2] + oc.radius*cosElev*cosAzim,
	}
}

// pan translates the target along axis. Caller must hold the mutex.
func (oc *orbitController) pan(axis [3]float32, delta float32) {
	offset := delta * oc.panSpeed
	for i := range oc.target {
		oc.target[i] += axis[i] * offset
	}
	oc.dirty = true
}

// localAxes returns right, up and view direction consistent with Camera.LookAt.
// Caller must hold the mutex.
func (oc *orbitController) localAxes() (right, up, view [3]float32) {
	back := common.Normalize3(common.Sub3(oc.position(), oc.target))
	right = common.Normalize3(common.Cross3(worldUp, back))
	up = common.Cross3(back, right)
	view = [3]float32{-back[0], -back[1], -back[2]}
	return right, up, view
}

func (oc *orbitController) Update(_ scene.Scene, dt float32) {
	oc.mu.Lock()
	if oc.autoOrbit != 0 && dt != 0 {
		oc.azimuth += oc.autoOrbit * dt
		oc.dirty = true
	}
	if !oc.dirty {
		oc.mu.Unlock()
		return
	}
	eye, target := oc.position(), oc.target
	oc.mu.Unlock()

	owner := oc.Owner()
	t, ok := transform.Of(owner)
	if !ok {
		return
	}
	t.SetPosition(eye[0], eye[1], eye[2])
	if cam, ok := Of(owner); ok {
		if err := cam.LookAt(target, worldUp); err != nil {
			return
		}
	}

	oc.mu.Lock()
	oc.dirty = false
	oc.mu.Unlock()
}

func (oc *orbitController) Position() [3]float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.position()
}

func (oc *orbitController) Target() [3]float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.target
}

func (oc *orbitController) SetTarget(x, y, z float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.target = [3]float32{x, y, z}
	oc.dirty = true
}

func (oc *orbitController) Radius() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.radius
}

func (oc *orbitController) SetRadius(radius float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.radius = common.Clamp(radius, oc.minRadius, oc.maxRadius)
	oc.dirty = true
}

func (oc *orbitController) Azimuth() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.azimuth
}

func (oc *orbitController) SetAzimuth(azimuth float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.azimuth = azimuth
	oc.dirty = true
}

func (oc *orbitController) Elevation() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.elevation
}

func (oc *orbitController) SetElevation(elevation float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.elevation = common.Clamp(elevation, oc.minElevation, oc.maxElevation)
	oc.dirty = true
}

func (oc *orbitController) SetAutoOrbit(speed float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.autoOrbit = speed
}

func (oc *orbitController) OrbitLeft() {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.azimuth -= oc.orbitSpeed
	oc.dirty = true
}

func (oc *orbitController) OrbitRight() {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.azimuth += oc.orbitSpeed
	oc.dirty = true
}

func (oc *orbitController) OrbitUp() {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.elevation = common.Clamp(oc.elevation+oc.orbitSpeed, oc.minElevation, oc.maxElevation)
	oc.dirty = true
}

func (oc *orbitController) OrbitDown() {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.elevation = common.Clamp(oc.elevation-oc.orbitSpeed, oc.minElevation, oc.maxElevation)
	oc.dirty = true
}

func (oc *orbitController) Zoom(delta float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.radius = common.Clamp(oc.radius-delta*oc.zoomSpeed, oc.minRadius, oc.maxRadius)
	oc.dirty = true
}

func (oc *orbitController) PanRight(delta float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	right, _, _ := oc.localAxes()
	oc.pan(right, delta)
}

func (oc *orbitController) PanUp(delta float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	_, up, _ := oc.localAxes()
	oc.pan(up, delta)
}

func (oc *orbitController) PanForward(delta float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	_, _, view := oc.localAxes()
	oc.pan(view, delta)
}
