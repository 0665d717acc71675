package light

import (
	"errors"
	"math"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/entity"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-scene/engine/transform"
)

// LightType identifies the kind of light source. The values match the LIGHT_*
// constants in GPULightSource.
type LightType int

const (
	// LightTypeDirectional represents a light with parallel rays and no position, like the sun.
	LightTypeDirectional LightType = iota

	// LightTypePoint represents an omnidirectional light attenuated with distance.
	LightTypePoint

	// LightTypeSpot represents a cone-shaped light with a position and direction.
	LightTypeSpot
)

func (t LightType) String() string {
	switch t {
	case LightTypeDirectional:
		return "directional"
	case LightTypePoint:
		return "point"
	case LightTypeSpot:
		return "spot"
	default:
		return "unknown"
	}
}

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	entity.Base

	lightType LightType
	ambient   [3]float32
	diffuse   [3]float32
	specular  [3]float32

	// point
	constant  float32
	linear    float32
	quadratic float32

	// directional and spot
	direction [3]float32

	// spot, half-angles in degrees
	innerCone float32
	outerCone float32
}

// Light is the illumination capability. Exactly one group of kind-specific
// fields is active, selected by Type; the others are kept but never written to
// a material.
type Light interface {
	entity.Capability

	// Type retrieves the kind of light source.
	//
	// Returns:
	//   - LightType: the light type (directional, point, or spot)
	Type() LightType

	// SetType changes the kind of light source.
	//
	// Parameters:
	//   - t: the new light type
	SetType(t LightType)

	// Ambient retrieves the ambient colour.
	Ambient() [3]float32

	// Diffuse retrieves the diffuse colour.
	Diffuse() [3]float32

	// Specular retrieves the specular colour.
	Specular() [3]float32

	// SetAmbient sets the ambient colour.
	//
	// Parameters:
	//   - r, g, b: the colour components
	SetAmbient(r, g, b float32)

	// SetDiffuse sets the diffuse colour.
	//
	// Parameters:
	//   - r, g, b: the colour components
	SetDiffuse(r, g, b float32)

	// SetSpecular sets the specular colour.
	//
	// Parameters:
	//   - r, g, b: the colour components
	SetSpecular(r, g, b float32)

	// Attenuation retrieves the point light attenuation coefficients.
	//
	// Returns:
	//   - constant, linear, quadratic: the coefficients
	Attenuation() (constant, linear, quadratic float32)

	// SetAttenuation sets the point light attenuation coefficients.
	//
	// Parameters:
	//   - constant, linear, quadratic: the coefficients
	SetAttenuation(constant, linear, quadratic float32)

	// Direction retrieves the normalized direction of a directional or spot light.
	Direction() [3]float32

	// SetDirection sets the direction. The vector is normalized before storing.
	//
	// Parameters:
	//   - x, y, z: the direction components
	SetDirection(x, y, z float32)

	// SpotCone retrieves the spot light cone half-angles in degrees.
	//
	// Returns:
	//   - inner, outer: the half-angles
	SpotCone() (inner, outer float32)

	// SetSpotCone sets the spot light cone half-angles in degrees.
	//
	// Parameters:
	//   - inner: the full-intensity half-angle
	//   - outer: the falloff half-angle
	SetSpotCone(inner, outer float32)

	// Apply writes the light into mat as element index of the LIGHTS array.
	// Ambient, diffuse, specular and type are always written. Then a point light
	// writes position (when its entity has a transform) and attenuation, a
	// directional light writes direction, and a spot light writes position,
	// direction and the cosines of its cone half-angles. Names the shader does not
	// declare are skipped.
	//
	// Parameters:
	//   - mat: the material to write into
	//   - pass: the shader pass being rendered
	//   - index: the light's index in the LIGHTS array
	//
	// Returns:
	//   - error: the first *material.TypeMismatchError, if any
	Apply(mat material.Material, pass, index int) error
}

var _ Light = &lightImpl{}

// NewLight creates a new Light of the given type with dim white ambient, white
// diffuse and specular, a downward direction, attenuation reaching about 50
// units and a 12.5/17.5 degree spot cone.
//
// Parameters:
//   - lightType: the kind of light source
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType: lightType,
		ambient:   [3]float32{0.1, 0.1, 0.1},
		diffuse:   [3]float32{1, 1, 1},
		specular:  [3]float32{1, 1, 1},
		constant:  1.0,
		linear:    0.09,
		quadratic: 0.032,
		direction: [3]float32{0, -1, 0},
		innerCone: 12.5,
		outerCone: 17.5,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Of returns the Light attached to e, if any.
//
// Parameters:
//   - e: the entity to inspect (may be nil)
//
// Returns:
//   - Light: the attached light or nil
//   - bool: true if found
func Of(e *entity.Entity) (Light, bool) {
	return entity.Find[Light](e, entity.KindLight)
}

func (l *lightImpl) Kind() entity.Kind {
	return entity.KindLight
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) SetType(t LightType) {
	l.lightType = t
}

func (l *lightImpl) Ambient() [3]float32 {
	return l.ambient
}

func (l *lightImpl) Diffuse() [3]float32 {
	return l.diffuse
}

func (l *lightImpl) Specular() [3]float32 {
	return l.specular
}

func (l *lightImpl) SetAmbient(r, g, b float32) {
	l.ambient = [3]float32{r, g, b}
}

func (l *lightImpl) SetDiffuse(r, g, b float32) {
	l.diffuse = [3]float32{r, g, b}
}

func (l *lightImpl) SetSpecular(r, g, b float32) {
	l.specular = [3]float32{r, g, b}
}

func (l *lightImpl) Attenuation() (constant, linear, quadratic float32) {
	return l.constant, l.linear, l.quadratic
}

func (l *lightImpl) SetAttenuation(constant, linear, quadratic float32) {
	l.constant, l.linear, l.quadratic = constant, linear, quadratic
}

func (l *lightImpl) Direction() [3]float32 {
	return l.direction
}

func (l *lightImpl) SetDirection(x, y, z float32) {
	l.direction = common.Normalize3([3]float32{x, y, z})
}

func (l *lightImpl) SpotCone() (inner, outer float32) {
	return l.innerCone, l.outerCone
}

func (l *lightImpl) SetSpotCone(inner, outer float32) {
	l.innerCone, l.outerCone = inner, outer
}

func (l *lightImpl) Apply(mat material.Material, _, index int) error {
	w := writer{mat: mat, index: index}
	w.set(FieldAmbient, material.Vec3Value(l.ambient))
	w.set(FieldDiffuse, material.Vec3Value(l.diffuse))
	w.set(FieldSpecular, material.Vec3Value(l.specular))
	w.set(FieldType, material.IntValue(l.lightType))

	switch l.lightType {
	case LightTypePoint:
		l.writePosition(&w)
		w.set(FieldConstant, material.FloatValue(l.constant))
		w.set(FieldLinear, material.FloatValue(l.linear))
		w.set(FieldQuadratic, material.FloatValue(l.quadratic))
	case LightTypeDirectional:
		w.set(FieldDirection, material.Vec3Value(l.direction))
	case LightTypeSpot:
		l.writePosition(&w)
		w.set(FieldDirection, material.Vec3Value(l.direction))
		w.set(FieldCutOff, material.FloatValue(cosDeg(l.innerCone)))
		w.set(FieldOuterCutOff, material.FloatValue(cosDeg(l.outerCone)))
	}
	return w.err
}

func (l *lightImpl) writePosition(w *writer) {
	if t, ok := transform.Of(l.Owner()); ok {
		w.set(FieldPosition, material.Vec3Value(t.Position()))
	}
}

func cosDeg(deg float32) float32 {
	return float32(math.Cos(float64(common.Radians(deg))))
}

// writer writes the fields of one LIGHTS element, stopping at the first type mismatch.
type writer struct {
	mat   material.Material
	index int
	err   error
}

func (w *writer) set(field string, v material.Value) {
	if w.err != nil {
		return
	}
	err := w.mat.SetData(UniformName(w.index, field), v)
	if err != nil && !errors.Is(err, material.ErrUnknownParameter) {
		w.err = err
	}
}
