package shader

import (
	"fmt"
	"maps"
	"slices"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
)

// NewStatic creates a Shader from a declared parameter set instead of WGSL
// source. Every pass gets a program whose uniforms are the parameters sorted by
// name and packed with WGSL layout rules. Types outside WGSL (GLSL-style names
// such as "float") occupy 16 bytes.
//
// Static shaders carry no source, so they are meant for devices that do not
// compile WGSL, such as renderer.Recorder.
//
// Parameters:
//   - device: the device programs are created on
//   - key: a unique identifier for the shader
//   - passes: the number of passes, at least one
//   - params: declared parameter name to declared type string
//
// Returns:
//   - Shader: the shader
//   - error: ErrInvalidSource if passes is below one, or the device's error
func NewStatic(device renderer.Device, key string, passes int, params map[string]string) (Shader, error) {
	if passes < 1 {
		return nil, fmt.Errorf("%w: %s needs at least one pass", ErrInvalidSource, key)
	}

	var fields []renderer.UniformField
	offset := uint64(0)
	for _, name := range slices.Sorted(maps.Keys(params)) {
		typeName := params[name]
		layout, ok := builtinLayout(typeName)
		if !ok {
			layout = typeLayout{size: 16, align: 16}
		}
		offset = alignUp(offset, layout.align)
		fields = append(fields, renderer.UniformField{
			Name:   name,
			Type:   typeName,
			Offset: offset,
			Size:   layout.size,
		})
		offset += layout.size
	}

	s := &shader{
		key:        key,
		device:     device,
		logger:     common.Logger(),
		parameters: maps.Clone(params),
		pp:         NewPreProcessor(nil),
	}
	if s.parameters == nil {
		s.parameters = make(map[string]string)
	}
	for i := 0; i < passes; i++ {
		desc := renderer.ProgramDesc{
			Label:     fmt.Sprintf("%s#%d", key, i),
			Uniforms:  slices.Clone(fields),
			BlockSize: alignUp(offset, 16),
		}
		program, err := device.CreateProgram(desc)
		if err != nil {
			return nil, fmt.Errorf("shader: %s pass %d: %w", key, i, err)
		}
		s.passes = append(s.passes, pass{desc: desc, program: program})
	}
	return s, nil
}
