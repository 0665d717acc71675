package shader

import (
	"errors"
	"fmt"
	"maps"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/naga"
	"go.uber.org/zap"
)

var (
	// ErrPassOutOfRange is returned when a pass index is negative or not below Passes().
	ErrPassOutOfRange = errors.New("shader: pass index out of range")

	// ErrInvalidSource is returned when a pass source cannot be pre-processed,
	// validated or reflected.
	ErrInvalidSource = errors.New("shader: invalid source")
)

// pass holds one compiled pass of a shader.
type pass struct {
	source  string
	desc    renderer.ProgramDesc
	program renderer.ProgramID
}

// shader is the implementation of the Shader interface.
// It holds one compiled program per pass and the reflected parameter set.
type shader struct {
	key    string
	device renderer.Device
	logger *zap.Logger

	sources    []string
	includes   map[string]string
	cullMode   wgpu.CullMode
	alphaBlend bool
	depthWrite bool
	validate   bool
	err        error

	passes     []pass
	parameters map[string]string
	pp         PreProcessor
}

// Shader is a multi-pass shader program. Each pass is compiled into its own
// device program; the parameter reflection is the union of every pass's
// parameter block.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Passes returns the number of passes.
	//
	// Returns:
	//   - int: the pass count
	Passes() int

	// Program returns the compiled program handle of a pass.
	//
	// Parameters:
	//   - pass: the pass index
	//
	// Returns:
	//   - renderer.ProgramID: the program handle, or zero if pass is out of range
	Program(pass int) renderer.ProgramID

	// Use activates the program of a pass on the device.
	//
	// Parameters:
	//   - pass: the pass index
	//
	// Returns:
	//   - error: ErrPassOutOfRange if pass is out of range
	Use(pass int) error

	// Parameters returns the declared parameter reflection: flattened uniform name
	// to declared type string (e.g. "brightness" -> "f32", "LIGHTS[0].diffuse" -> "vec3<f32>").
	// When passes disagree on a name's type the first pass wins.
	//
	// Returns:
	//   - map[string]string: a copy of the reflection map
	Parameters() map[string]string

	// Location resolves a uniform name within a pass.
	//
	// Parameters:
	//   - pass: the pass index
	//   - name: the flattened uniform name
	//
	// Returns:
	//   - renderer.Location: the location, or renderer.NoLocation if the pass does not declare name
	Location(pass int, name string) renderer.Location

	// Device returns the device the passes were compiled on.
	//
	// Returns:
	//   - renderer.Device: the owning device
	Device() renderer.Device

	// Source returns the pre-processed WGSL source of a pass.
	//
	// Parameters:
	//   - pass: the pass index
	//
	// Returns:
	//   - string: the source, or an empty string if pass is out of range
	Source(pass int) string

	// Declarations returns the annotations the pre-processor handled for the last pass compiled.
	//
	// Returns:
	//   - []Annotation: the handled annotations
	Declarations() []Annotation
}

var _ Shader = &shader{}

// NewShader pre-processes, optionally validates and reflects every pass source
// supplied through the options, then compiles one program per pass on device.
//
// Parameters:
//   - device: the device programs are compiled on
//   - key: a unique identifier for the shader, used as the program label
//   - options: functional options; at least one WithSource or WithSourceFromPath is required
//
// Returns:
//   - Shader: the compiled shader
//   - error: ErrInvalidSource wrapped with detail, or the device's compile error
func NewShader(device renderer.Device, key string, options ...ShaderBuilderOption) (Shader, error) {
	s := &shader{
		key:        key,
		device:     device,
		logger:     common.Logger(),
		includes:   make(map[string]string),
		cullMode:   wgpu.CullModeBack,
		depthWrite: true,
		parameters: make(map[string]string),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.err != nil {
		return nil, s.err
	}
	if len(s.sources) == 0 {
		return nil, fmt.Errorf("%w: %s has no pass sources", ErrInvalidSource, key)
	}
	s.pp = NewPreProcessor(s.includes)

	for i, src := range s.sources {
		p, err := s.compilePass(i, src)
		if err != nil {
			return nil, err
		}
		s.passes = append(s.passes, p)
		for _, u := range p.desc.Uniforms {
			prev, ok := s.parameters[u.Name]
			if !ok {
				s.parameters[u.Name] = u.Type
				continue
			}
			if prev != u.Type {
				s.logger.Warn("shader parameter declared with conflicting types",
					zap.String("shader", key),
					zap.String("parameter", u.Name),
					zap.String("kept", prev),
					zap.String("ignored", u.Type),
					zap.Int("pass", i),
				)
			}
		}
	}

	s.logger.Debug("shader compiled",
		zap.String("shader", key),
		zap.Int("passes", len(s.passes)),
		zap.Int("parameters", len(s.parameters)),
	)
	return s, nil
}

func (s *shader) compilePass(index int, raw string) (pass, error) {
	source, err := s.pp.Process(raw)
	if err != nil {
		return pass{}, fmt.Errorf("%w: %s pass %d: %v", ErrInvalidSource, s.key, index, err)
	}
	if s.validate {
		if _, err := naga.Compile(source); err != nil {
			return pass{}, fmt.Errorf("%w: %s pass %d: %v", ErrInvalidSource, s.key, index, err)
		}
	}

	vertex, fragment := parseEntryPoints(source)
	if vertex == "" || fragment == "" {
		return pass{}, fmt.Errorf("%w: %s pass %d: missing @vertex or @fragment entry point", ErrInvalidSource, s.key, index)
	}
	block, _ := parseParameterBlock(source)

	desc := renderer.ProgramDesc{
		Label:         fmt.Sprintf("%s#%d", s.key, index),
		Source:        source,
		VertexEntry:   vertex,
		FragmentEntry: fragment,
		VertexLayouts: parseVertexLayouts(source),
		Uniforms:      block.fields,
		BlockSize:     block.size,
		CullMode:      s.cullMode,
		DepthWriteOff: !s.depthWrite,
		AlphaBlend:    s.alphaBlend,
	}
	program, err := s.device.CreateProgram(desc)
	if err != nil {
		return pass{}, fmt.Errorf("shader: %s pass %d: %w", s.key, index, err)
	}
	return pass{source: source, desc: desc, program: program}, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Passes() int {
	return len(s.passes)
}

func (s *shader) Program(pass int) renderer.ProgramID {
	if pass < 0 || pass >= len(s.passes) {
		return 0
	}
	return s.passes[pass].program
}

func (s *shader) Use(pass int) error {
	if pass < 0 || pass >= len(s.passes) {
		return fmt.Errorf("%w: %d of %d", ErrPassOutOfRange, pass, len(s.passes))
	}
	s.device.UseProgram(s.passes[pass].program)
	return nil
}

func (s *shader) Parameters() map[string]string {
	return maps.Clone(s.parameters)
}

func (s *shader) Location(pass int, name string) renderer.Location {
	if pass < 0 || pass >= len(s.passes) {
		return renderer.NoLocation
	}
	return s.passes[pass].desc.Location(name)
}

func (s *shader) Device() renderer.Device {
	return s.device
}

func (s *shader) Source(pass int) string {
	if pass < 0 || pass >= len(s.passes) {
		return ""
	}
	return s.passes[pass].source
}

func (s *shader) Declarations() []Annotation {
	return s.pp.Declarations()
}
