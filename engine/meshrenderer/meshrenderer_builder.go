package meshrenderer

// MeshRendererBuilderOption is a functional option for configuring a MeshRenderer during construction.
type MeshRendererBuilderOption func(*meshRenderer)

// WithWireframe starts the renderer in wireframe mode.
//
// Parameters:
//   - enabled: true for wireframe
//
// Returns:
//   - MeshRendererBuilderOption: option function to apply
func WithWireframe(enabled bool) MeshRendererBuilderOption {
	return func(mr *meshRenderer) {
		mr.wireframe = enabled
	}
}
