package shader

import (
	"fmt"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// ShaderBuilderOption is a functional option for configuring a Shader during construction.
type ShaderBuilderOption func(*shader)

// WithSource appends a pass compiled from WGSL source. Passes are numbered in
// the order they are added.
//
// Parameters:
//   - source: the raw WGSL source of the pass
//
// Returns:
//   - ShaderBuilderOption: a function that appends the pass
func WithSource(source string) ShaderBuilderOption {
	return func(s *shader) {
		s.sources = append(s.sources, source)
	}
}

// WithSourceFromPath appends a pass compiled from the WGSL file at path.
// A read failure is reported by NewShader.
//
// Parameters:
//   - path: the file path to read WGSL source from
//
// Returns:
//   - ShaderBuilderOption: a function that appends the pass
func WithSourceFromPath(path string) ShaderBuilderOption {
	return func(s *shader) {
		data, err := os.ReadFile(path)
		if err != nil {
			if s.err == nil {
				s.err = fmt.Errorf("shader: failed to read source file %q: %w", path, err)
			}
			return
		}
		s.sources = append(s.sources, string(data))
	}
}

// WithInclude makes WGSL source available to this shader's //@oxy:include
// annotations under name, taking precedence over RegisterInclude.
//
// Parameters:
//   - name: the include name
//   - source: the WGSL source to inject
//
// Returns:
//   - ShaderBuilderOption: a function that registers the include
func WithInclude(name, source string) ShaderBuilderOption {
	return func(s *shader) {
		s.includes[name] = source
	}
}

// WithCullMode sets the face culling of every pass. Defaults to back-face culling.
//
// Parameters:
//   - mode: the cull mode
//
// Returns:
//   - ShaderBuilderOption: a function that sets the cull mode
func WithCullMode(mode wgpu.CullMode) ShaderBuilderOption {
	return func(s *shader) {
		s.cullMode = mode
	}
}

// WithAlphaBlend enables standard alpha blending on every pass.
//
// Parameters:
//   - enabled: true to blend
//
// Returns:
//   - ShaderBuilderOption: a function that sets alpha blending
func WithAlphaBlend(enabled bool) ShaderBuilderOption {
	return func(s *shader) {
		s.alphaBlend = enabled
	}
}

// WithDepthWrite controls depth writes on every pass. Defaults to true.
//
// Parameters:
//   - enabled: false to disable depth writes
//
// Returns:
//   - ShaderBuilderOption: a function that sets depth writes
func WithDepthWrite(enabled bool) ShaderBuilderOption {
	return func(s *shader) {
		s.depthWrite = enabled
	}
}

// WithValidation compiles every pre-processed pass with naga before reflection,
// so WGSL errors surface from NewShader instead of the device.
//
// Parameters:
//   - enabled: true to validate
//
// Returns:
//   - ShaderBuilderOption: a function that sets validation
func WithValidation(enabled bool) ShaderBuilderOption {
	return func(s *shader) {
		s.validate = enabled
	}
}

// WithLogger sets the logger used for compile diagnostics.
//
// Parameters:
//   - l: the logger, nil keeps the shared logger
//
// Returns:
//   - ShaderBuilderOption: a function that sets the logger
func WithLogger(l *zap.Logger) ShaderBuilderOption {
	return func(s *shader) {
		if l != nil {
			s.logger = l
		}
	}
}
