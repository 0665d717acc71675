package mesh

// MeshBuilderOption is a function that configures a mesh during construction.
type MeshBuilderOption func(*staticMesh)

// WithName sets the mesh identifier, also used as the device label.
//
// Parameters:
//   - name: the mesh name
//
// Returns:
//   - MeshBuilderOption: a function that sets the name
func WithName(name string) MeshBuilderOption {
	return func(m *staticMesh) {
		m.name = name
	}
}

// WithIndices makes the mesh indexed with triangle-list indices.
//
// Parameters:
//   - indices: the triangle indices
//
// Returns:
//   - MeshBuilderOption: a function that sets the indices
func WithIndices(indices []uint32) MeshBuilderOption {
	return func(m *staticMesh) {
		m.indices = indices
	}
}
