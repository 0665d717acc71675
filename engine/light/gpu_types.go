package light

import (
	_ "embed"
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/shader"
)

// IncludeName is the name shaders pass to //@oxy:include to declare the Light struct.
const IncludeName = "light"

// CountName is the uniform holding the number of lights written this frame.
const CountName = "NUM_LIGHTS"

// ArrayName is the uniform array the lights are written into.
const ArrayName = "LIGHTS"

// GPULightSource is the canonical WGSL definition of the Light struct and the
// LIGHT_* type constants. Shaders declare the array themselves, e.g.
// LIGHTS: array<Light, 8>, inside their parameter block.
// Size: 96 bytes per Light (WGSL uniform layout).
//
//go:embed assets/light.wgsl
var GPULightSource string

// Field names of a Light element, as reflected from GPULightSource.
const (
	FieldPosition    = "position"
	FieldType        = "type"
	FieldDirection   = "direction"
	FieldConstant    = "constant"
	FieldLinear      = "linear"
	FieldQuadratic   = "quadratic"
	FieldAmbient     = "ambient"
	FieldDiffuse     = "diffuse"
	FieldSpecular    = "specular"
	FieldCutOff      = "cutOff"
	FieldOuterCutOff = "outerCutOff"
)

func init() {
	shader.RegisterInclude(IncludeName, GPULightSource)
}

// UniformName returns the flattened uniform name of one field of the light at index,
// e.g. UniformName(1, FieldDiffuse) is "LIGHTS[1].diffuse".
//
// Parameters:
//   - index: the light's index in the array
//   - field: the Light field name
//
// Returns:
//   - string: the uniform name
func UniformName(index int, field string) string {
	return fmt.Sprintf("%s[%d].%s", ArrayName, index, field)
}
