package mesh

import "github.com/Carmen-Shannon/oxy-scene/engine/renderer"

// cubeFaces lists each face's outward normal with the two in-plane axes whose
// cross product equals the normal, so the generated winding is counter-clockwise.
var cubeFaces = [6][3][3]float32{
	{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
	{{0, 0, -1}, {-1, 0, 0}, {0, 1, 0}},
	{{1, 0, 0}, {0, 0, -1}, {0, 1, 0}},
	{{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
	{{0, 1, 0}, {1, 0, 0}, {0, 0, -1}},
	{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},
}

// CubeGeometry returns the 24 vertices and 36 indices of an axis-aligned cube
// centred on the origin with the given edge length.
//
// Parameters:
//   - size: the edge length
//
// Returns:
//   - []Vertex: four vertices per face
//   - []uint32: two counter-clockwise triangles per face
func CubeGeometry(size float32) ([]Vertex, []uint32) {
	h := size / 2
	vertices := make([]Vertex, 0, 24)
	indices := make([]uint32, 0, 36)
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	for _, face := range cubeFaces {
		n, u, v := face[0], face[1], face[2]
		base := uint32(len(vertices))
		for _, c := range corners {
			var p [3]float32
			for i := range p {
				p[i] = (n[i] + c[0]*u[i] + c[1]*v[i]) * h
			}
			vertices = append(vertices, Vertex{Position: p, Normal: n})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return vertices, indices
}

// NewCube uploads an indexed cube of the given edge length.
//
// Parameters:
//   - device: the device to upload to
//   - size: the edge length
//
// Returns:
//   - Mesh: the uploaded cube
//   - error: the device's upload error
func NewCube(device renderer.Device, size float32) (Mesh, error) {
	vertices, indices := CubeGeometry(size)
	return NewStaticMesh(device, vertices, WithName("cube"), WithIndices(indices))
}
