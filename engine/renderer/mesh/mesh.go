package mesh

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
)

// ErrEmptyMesh is returned when a mesh is created without vertices.
var ErrEmptyMesh = errors.New("mesh: no vertices")

// Vertex is the interleaved vertex layout of a StaticMesh: position then normal,
// 24 bytes, matching a WGSL vertex input of two vec3<f32> at locations 0 and 1.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
}

// vertexStride is the byte size of one Vertex.
const vertexStride = 24

// staticMesh is the implementation of the Mesh interface.
type staticMesh struct {
	name           string
	vertexArray    renderer.VertexArrayID
	vertexCount    int
	indexCount     int
	boundingRadius float32

	vertices []Vertex
	indices  []uint32
}

// Mesh is uploaded geometry a draw reads from. A Mesh is shared by reference;
// renderers never own it.
type Mesh interface {
	// Name retrieves the mesh identifier.
	//
	// Returns:
	//   - string: the name of the mesh
	Name() string

	// VertexArray returns the device handle to bind before drawing.
	//
	// Returns:
	//   - renderer.VertexArrayID: the vertex array handle
	VertexArray() renderer.VertexArrayID

	// VertexCount returns the number of vertices.
	//
	// Returns:
	//   - int: the vertex count
	VertexCount() int

	// IndexCount returns the number of indices, zero for non-indexed meshes.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// BoundingRadius returns the distance from the origin to the farthest vertex.
	//
	// Returns:
	//   - float32: the bounding sphere radius
	BoundingRadius() float32
}

var _ Mesh = &staticMesh{}

// NewStaticMesh uploads vertices, plus any indices set through WithIndices, to device.
//
// Parameters:
//   - device: the device to upload to
//   - vertices: the vertex data
//   - options: variadic list of MeshBuilderOption functions to configure the mesh
//
// Returns:
//   - Mesh: the uploaded mesh
//   - error: ErrEmptyMesh, an out-of-range index, or the device's upload error
func NewStaticMesh(device renderer.Device, vertices []Vertex, options ...MeshBuilderOption) (Mesh, error) {
	m := &staticMesh{vertices: vertices}
	for _, opt := range options {
		opt(m)
	}
	if len(vertices) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyMesh, m.name)
	}
	for i, idx := range m.indices {
		if int(idx) >= len(vertices) {
			return nil, fmt.Errorf("mesh: %s index %d references vertex %d of %d", m.name, i, idx, len(vertices))
		}
	}

	for _, v := range vertices {
		if r := common.Length3(v.Position); r > m.boundingRadius {
			m.boundingRadius = r
		}
	}

	va, err := device.CreateVertexArray(renderer.VertexArrayDesc{
		Label:    m.name,
		Vertices: common.SliceToBytes(vertices),
		Stride:   vertexStride,
		Indices:  m.indices,
	})
	if err != nil {
		return nil, fmt.Errorf("mesh: %s: %w", m.name, err)
	}
	m.vertexArray = va
	m.vertexCount = len(vertices)
	m.indexCount = len(m.indices)
	m.vertices, m.indices = nil, nil
	return m, nil
}

func (m *staticMesh) Name() string {
	return m.name
}

func (m *staticMesh) VertexArray() renderer.VertexArrayID {
	return m.vertexArray
}

func (m *staticMesh) VertexCount() int {
	return m.vertexCount
}

func (m *staticMesh) IndexCount() int {
	return m.indexCount
}

func (m *staticMesh) BoundingRadius() float32 {
	return m.boundingRadius
}
