package meshrenderer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/Carmen-Shannon/oxy-scene/engine/entity"
	"github.com/Carmen-Shannon/oxy-scene/engine/light"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/mesh"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/Carmen-Shannon/oxy-scene/engine/transform"
)

// Uniform names the renderer writes every pass.
const (
	ModelName        = "model"
	NormalMatrixName = "normalMatrix"
	ViewName         = "view"
	ProjectionName   = "projection"
	ViewPosName      = "viewPos"
)

var (
	// ErrNoMesh is returned by Render when no mesh is set.
	ErrNoMesh = errors.New("meshrenderer: no mesh")

	// ErrNoMaterial is returned by Render when no material, or a material without a shader, is set.
	ErrNoMaterial = errors.New("meshrenderer: no material")
)

type meshRenderer struct {
	entity.Base

	mesh      mesh.Mesh
	material  material.Material
	wireframe bool
}

// MeshRenderer is the draw capability. Each Render gathers the owner's
// transform, the scene's active viewpoint and every light, writes them into its
// material and draws its mesh once per shader pass.
type MeshRenderer interface {
	entity.Capability
	scene.Renderable

	// Mesh returns the drawn mesh. The mesh is shared, not owned.
	//
	// Returns:
	//   - mesh.Mesh: the mesh, or nil
	Mesh() mesh.Mesh

	// SetMesh replaces the drawn mesh.
	//
	// Parameters:
	//   - m: the mesh
	SetMesh(m mesh.Mesh)

	// Material returns the renderer's material.
	//
	// Returns:
	//   - material.Material: the material, or nil
	Material() material.Material

	// SetMaterial replaces the renderer's material.
	//
	// Parameters:
	//   - m: the material
	SetMaterial(m material.Material)

	// Wireframe reports whether this renderer draws with line rasterization.
	Wireframe() bool

	// SetWireframe switches this renderer between filled and line rasterization.
	// Other renderers are unaffected.
	//
	// Parameters:
	//   - enabled: true for wireframe
	SetWireframe(enabled bool)
}

var _ MeshRenderer = &meshRenderer{}

// NewMeshRenderer creates a MeshRenderer drawing m with mat.
//
// Parameters:
//   - m: the mesh to draw
//   - mat: the material owned by this renderer
//   - options: functional options to configure the renderer
//
// Returns:
//   - MeshRenderer: the new renderer
func NewMeshRenderer(m mesh.Mesh, mat material.Material, options ...MeshRendererBuilderOption) MeshRenderer {
	mr := &meshRenderer{
		mesh:     m,
		material: mat,
	}
	for _, opt := range options {
		opt(mr)
	}
	return mr
}

// Of returns the MeshRenderer attached to e, if any.
//
// Parameters:
//   - e: the entity to inspect (may be nil)
//
// Returns:
//   - MeshRenderer: the attached renderer or nil
//   - bool: true if found
func Of(e *entity.Entity) (MeshRenderer, bool) {
	return entity.Find[MeshRenderer](e, entity.KindMeshRenderer)
}

func (mr *meshRenderer) Kind() entity.Kind {
	return entity.KindMeshRenderer
}

func (mr *meshRenderer) Mesh() mesh.Mesh {
	return mr.mesh
}

func (mr *meshRenderer) SetMesh(m mesh.Mesh) {
	mr.mesh = m
}

func (mr *meshRenderer) Material() material.Material {
	return mr.material
}

func (mr *meshRenderer) SetMaterial(m material.Material) {
	mr.material = m
}

func (mr *meshRenderer) Wireframe() bool {
	return mr.wireframe
}

func (mr *meshRenderer) SetWireframe(enabled bool) {
	mr.wireframe = enabled
}

func (mr *meshRenderer) Render(sc scene.Scene) error {
	if mr.mesh == nil {
		return ErrNoMesh
	}
	if mr.material == nil || mr.material.Shader() == nil {
		return ErrNoMaterial
	}
	sh := mr.material.Shader()
	for pass := 0; pass < sh.Passes(); pass++ {
		if err := mr.renderPass(sc, sh, pass); err != nil {
			return fmt.Errorf("meshrenderer: pass %d: %w", pass, err)
		}
	}
	return nil
}

func (mr *meshRenderer) renderPass(sc scene.Scene, sh shader.Shader, pass int) error {
	d := sh.Device()
	program := sh.Program(pass)
	owner := mr.Owner()

	if t, ok := transform.Of(owner); ok {
		d.SetMat4(program, sh.Location(pass, ModelName), t.ModelMatrix())
		d.SetMat3(program, sh.Location(pass, NormalMatrixName), normalMatrix(t))
	}

	if cam, ok := camera.Of(sc.ActiveViewpoint()); ok {
		d.SetMat4(program, sh.Location(pass, ViewName), cam.ViewMatrix())
		d.SetMat4(program, sh.Location(pass, ProjectionName), cam.ProjectionMatrix())
		if err := mr.setOptional(ViewPosName, material.Vec3Value(cam.Position())); err != nil {
			return err
		}
	}

	lights := sc.FindEntitiesWithCapability(entity.KindLight)
	if err := mr.setOptional(light.CountName, material.IntValue(len(lights))); err != nil {
		return err
	}
	for i, e := range lights {
		l, ok := light.Of(e)
		if !ok {
			continue
		}
		if err := l.Apply(mr.material, pass, i); err != nil {
			return err
		}
	}

	if err := mr.material.Apply(pass); err != nil {
		return err
	}

	d.BindVertexArray(mr.mesh.VertexArray())
	prev := d.Wireframe()
	if prev != mr.wireframe {
		d.SetWireframe(mr.wireframe)
		defer d.SetWireframe(prev)
	}
	if n := mr.mesh.IndexCount(); n > 0 {
		return d.DrawElements(n)
	}
	return d.DrawArrays(mr.mesh.VertexCount())
}

// setOptional writes a parameter the shader may not declare.
func (mr *meshRenderer) setOptional(name string, v material.Value) error {
	err := mr.material.SetData(name, v)
	if errors.Is(err, material.ErrUnknownParameter) {
		return nil
	}
	return err
}

// normalMatrix returns identity for uniform scale and the inverse-transpose of
// the model's upper 3x3 otherwise. Uniformity is decided by the sx/sy and sy/sz
// ratios both being exactly 1, so near-uniform scales take the full path.
func normalMatrix(t transform.Transform) [9]float32 {
	s := t.Scale()
	if s[0]/s[1] == 1 && s[1]/s[2] == 1 {
		return common.Identity3()
	}
	n, _ := common.NormalMatrix(t.ModelMatrix())
	return n
}
