package renderer

import (
	"errors"

	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrNoFrame is returned when a draw is issued outside BeginFrame/EndFrame.
	ErrNoFrame = errors.New("renderer: no frame in progress")

	// ErrNoProgram is returned when a draw is issued with no active program.
	ErrNoProgram = errors.New("renderer: no active program")

	// ErrNoVertexArray is returned when a draw is issued with no bound vertex array.
	ErrNoVertexArray = errors.New("renderer: no vertex array bound")

	// ErrUnknownProgram is returned when a program handle was not created by the device.
	ErrUnknownProgram = errors.New("renderer: unknown program")

	// ErrUniformRingFull is returned when a frame pushes more uniform data than
	// the uniform ring can hold.
	ErrUniformRingFull = errors.New("renderer: uniform ring exhausted")
)

// ProgramID is an opaque handle to a compiled shader program. Zero is never a
// valid program.
type ProgramID uint32

// VertexArrayID is an opaque handle to uploaded vertex (and optional index)
// data. Zero is never a valid vertex array.
type VertexArrayID uint32

// Location addresses one uniform within a program. It is the index of the
// uniform in the program's ProgramDesc.Uniforms.
type Location int32

// NoLocation marks a uniform the program does not declare. Pushes to it are
// ignored by every Device.
const NoLocation Location = -1

// UniformField describes one flattened uniform inside a program's parameter
// block, for example "model" or "LIGHTS[1].diffuse".
type UniformField struct {
	// Name is the flattened uniform name.
	Name string

	// Type is the declared WGSL type, e.g. "vec3<f32>".
	Type string

	// Offset is the byte offset within the parameter block.
	Offset uint64

	// Size is the byte size of the uniform.
	Size uint64
}

// ProgramDesc describes a program to compile. Uniforms lists the flattened
// parameter block at @group(0) @binding(0); BlockSize is its total byte size.
type ProgramDesc struct {
	Label         string
	Source        string
	VertexEntry   string
	FragmentEntry string
	VertexLayouts []wgpu.VertexBufferLayout
	Uniforms      []UniformField
	BlockSize     uint64
	CullMode      wgpu.CullMode
	DepthWriteOff bool
	DepthTestOff  bool
	AlphaBlend    bool
}

// Location returns the location of the named uniform, or NoLocation.
//
// Parameters:
//   - name: the flattened uniform name
//
// Returns:
//   - Location: the uniform location or NoLocation
func (d ProgramDesc) Location(name string) Location {
	for i, u := range d.Uniforms {
		if u.Name == name {
			return Location(i)
		}
	}
	return NoLocation
}

// VertexArrayDesc describes mesh data to upload. Indices are optional; when
// present they are uint32 triangle-list indices.
type VertexArrayDesc struct {
	Label    string
	Vertices []byte
	Stride   uint64
	Indices  []uint32
}

// Device is the program-targeted uniform and draw surface the scene core
// renders through. Uniform pushes name the program explicitly, so they do not
// depend on which program is active. Draws use the active program and the
// bound vertex array.
//
// A Device is driven from the frame loop's thread only.
type Device interface {
	// CreateProgram compiles a program and returns its handle.
	//
	// Parameters:
	//   - desc: the program description
	//
	// Returns:
	//   - ProgramID: the new program handle
	//   - error: an error if compilation or pipeline creation fails
	CreateProgram(desc ProgramDesc) (ProgramID, error)

	// CreateVertexArray uploads mesh data and returns its handle.
	//
	// Parameters:
	//   - desc: the vertex data description
	//
	// Returns:
	//   - VertexArrayID: the new vertex array handle
	//   - error: an error if buffer creation fails
	CreateVertexArray(desc VertexArrayDesc) (VertexArrayID, error)

	// UseProgram makes p the program subsequent draws use.
	//
	// Parameters:
	//   - p: the program to activate
	UseProgram(p ProgramID)

	// SetBool pushes a boolean uniform.
	SetBool(p ProgramID, loc Location, v bool)

	// SetInt pushes a signed 32-bit integer uniform.
	SetInt(p ProgramID, loc Location, v int32)

	// SetUint pushes an unsigned 32-bit integer uniform.
	SetUint(p ProgramID, loc Location, v uint32)

	// SetFloat pushes a 32-bit float uniform.
	SetFloat(p ProgramID, loc Location, v float32)

	// SetDouble pushes a 64-bit float uniform.
	SetDouble(p ProgramID, loc Location, v float64)

	// SetVec2 pushes a two component float vector.
	SetVec2(p ProgramID, loc Location, v [2]float32)

	// SetVec3 pushes a three component float vector.
	SetVec3(p ProgramID, loc Location, v [3]float32)

	// SetVec4 pushes a four component float vector.
	SetVec4(p ProgramID, loc Location, v [4]float32)

	// SetMat3 pushes a column-major 3x3 matrix.
	SetMat3(p ProgramID, loc Location, m [9]float32)

	// SetMat4 pushes a column-major 4x4 matrix.
	SetMat4(p ProgramID, loc Location, m [16]float32)

	// BindVertexArray binds the vertex array subsequent draws read from.
	//
	// Parameters:
	//   - va: the vertex array to bind
	BindVertexArray(va VertexArrayID)

	// DrawArrays draws count vertices from the bound vertex array.
	//
	// Parameters:
	//   - count: the number of vertices
	//
	// Returns:
	//   - error: ErrNoFrame, ErrNoProgram or ErrNoVertexArray when the draw cannot be issued
	DrawArrays(count int) error

	// DrawElements draws count indices from the bound vertex array.
	//
	// Parameters:
	//   - count: the number of indices
	//
	// Returns:
	//   - error: ErrNoFrame, ErrNoProgram or ErrNoVertexArray when the draw cannot be issued
	DrawElements(count int) error

	// SetWireframe switches subsequent draws between filled and line rasterization.
	//
	// Parameters:
	//   - enabled: true for wireframe
	SetWireframe(enabled bool)

	// Wireframe reports whether draws are currently rasterized as lines.
	Wireframe() bool
}

// Renderer is a Device that also owns a presentable surface and frame lifecycle.
type Renderer interface {
	Device

	// BeginFrame acquires the next surface texture and starts the frame's render
	// pass, clearing it to clear.
	//
	// Parameters:
	//   - clear: the clear colour (r, g, b, a)
	//
	// Returns:
	//   - error: an error if the surface texture could not be acquired
	BeginFrame(clear [4]float32) error

	// EndFrame ends the render pass and submits the frame's commands.
	//
	// Returns:
	//   - error: an error if command submission fails
	EndFrame() error

	// Present displays the submitted frame.
	Present()

	// Resize reconfigures the surface for a new drawable size.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// Release frees every GPU resource owned by the renderer.
	Release()
}
