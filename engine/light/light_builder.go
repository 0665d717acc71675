package light

import "github.com/Carmen-Shannon/oxy-scene/common"

// LightBuilderOption is a function that configures a Light instance during construction.
type LightBuilderOption func(*lightImpl)

// WithDirection is an option builder that sets the direction of the light.
// The direction is normalized before storing.
//
// Parameters:
//   - x: the x direction component
//   - y: the y direction component
//   - z: the z direction component
//
// Returns:
//   - LightBuilderOption: a function that applies the direction option to a lightImpl
func WithDirection(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.direction = common.Normalize3([3]float32{x, y, z})
	}
}

// WithAmbient is an option builder that sets the ambient colour.
//
// Parameters:
//   - r, g, b: the colour components
//
// Returns:
//   - LightBuilderOption: a function that applies the ambient option to a lightImpl
func WithAmbient(r, g, b float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.ambient = [3]float32{r, g, b}
	}
}

// WithDiffuse is an option builder that sets the diffuse colour.
//
// Parameters:
//   - r, g, b: the colour components
//
// Returns:
//   - LightBuilderOption: a function that applies the diffuse option to a lightImpl
func WithDiffuse(r, g, b float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.diffuse = [3]float32{r, g, b}
	}
}

// WithSpecular is an option builder that sets the specular colour.
//
// Parameters:
//   - r, g, b: the colour components
//
// Returns:
//   - LightBuilderOption: a function that applies the specular option to a lightImpl
func WithSpecular(r, g, b float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.specular = [3]float32{r, g, b}
	}
}

// WithColor is an option builder that sets diffuse and specular to the same colour
// and ambient to a tenth of it.
//
// Parameters:
//   - r, g, b: the colour components
//
// Returns:
//   - LightBuilderOption: a function that applies the color option to a lightImpl
func WithColor(r, g, b float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.diffuse = [3]float32{r, g, b}
		l.specular = [3]float32{r, g, b}
		l.ambient = [3]float32{r * 0.1, g * 0.1, b * 0.1}
	}
}

// WithAttenuation is an option builder that sets the point light attenuation
// coefficients: intensity falls off as 1 / (constant + linear*d + quadratic*d²).
//
// Parameters:
//   - constant, linear, quadratic: the coefficients
//
// Returns:
//   - LightBuilderOption: a function that applies the attenuation option to a lightImpl
func WithAttenuation(constant, linear, quadratic float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.constant, l.linear, l.quadratic = constant, linear, quadratic
	}
}

// WithSpotCone is an option builder that sets the inner and outer cone
// half-angles for a spot light.
//
// Parameters:
//   - innerDeg: the inner cone half-angle in degrees (full intensity)
//   - outerDeg: the outer cone half-angle in degrees (falloff boundary)
//
// Returns:
//   - LightBuilderOption: a function that applies the spot cone option to a lightImpl
func WithSpotCone(innerDeg, outerDeg float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.innerCone, l.outerCone = innerDeg, outerDeg
	}
}
