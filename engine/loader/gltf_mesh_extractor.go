package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/mesh"
)

// Part is one triangle primitive of an imported asset, already transformed
// into asset space.
type Part struct {
	Name      string
	Vertices  []mesh.Vertex
	Indices   []uint32
	BaseColor [4]float32
}

// extractParts walks the default scene and returns one Part per triangle
// primitive with every node transform applied. Documents without nodes yield
// each mesh untransformed.
func extractParts(p *gltfParser) ([]Part, error) {
	doc := p.document
	var identity [16]float32
	common.Identity(identity[:])

	if len(doc.Nodes) == 0 {
		var parts []Part
		for i := range doc.Meshes {
			got, err := extractMesh(p, i, identity)
			if err != nil {
				return nil, err
			}
			parts = append(parts, got...)
		}
		return parts, nil
	}

	var parts []Part
	var walk func(node int, parent [16]float32, depth int) error
	walk = func(node int, parent [16]float32, depth int) error {
		if node < 0 || node >= len(doc.Nodes) {
			return fmt.Errorf("node %d out of range", node)
		}
		if depth > len(doc.Nodes) {
			return fmt.Errorf("node %d: cyclic hierarchy", node)
		}
		n := &doc.Nodes[node]
		local := nodeMatrix(n)
		var world [16]float32
		common.Mul4(world[:], parent[:], local[:])

		if n.Mesh != nil {
			got, err := extractMesh(p, *n.Mesh, world)
			if err != nil {
				return fmt.Errorf("node %d: %w", node, err)
			}
			parts = append(parts, got...)
		}
		for _, child := range n.Children {
			if err := walk(child, world, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	for _, root := range sceneRoots(doc) {
		if err := walk(root, identity, 0); err != nil {
			return nil, err
		}
	}
	return parts, nil
}

// sceneRoots returns the root nodes of the default scene, or of scene 0, or
// every node no other node lists as a child.
func sceneRoots(doc *gltfDocument) []int {
	if len(doc.Scenes) > 0 {
		s := 0
		if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
			s = *doc.Scene
		}
		return doc.Scenes[s].Nodes
	}
	child := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(child) {
				child[c] = true
			}
		}
	}
	var roots []int
	for i, isChild := range child {
		if !isChild {
			roots = append(roots, i)
		}
	}
	return roots
}

func nodeMatrix(n *gltfNode) [16]float32 {
	if n.Matrix != nil {
		return *n.Matrix
	}
	pos := [3]float32{}
	rot := common.QuatIdentity()
	scale := [3]float32{1, 1, 1}
	if n.Translation != nil {
		pos = *n.Translation
	}
	if n.Rotation != nil {
		rot = *n.Rotation
	}
	if n.Scale != nil {
		scale = *n.Scale
	}
	var m [16]float32
	common.BuildModelMatrix(m[:], pos, rot, scale)
	return m
}

func extractMesh(p *gltfParser, index int, world [16]float32) ([]Part, error) {
	doc := p.document
	if index < 0 || index >= len(doc.Meshes) {
		return nil, fmt.Errorf("mesh %d out of range", index)
	}
	m := &doc.Meshes[index]
	normalMatrix, _ := common.NormalMatrix(world)

	var parts []Part
	for i := range m.Primitives {
		prim := &m.Primitives[i]
		if prim.Mode != nil && *prim.Mode != gltfPrimitiveModeTriangles {
			continue
		}
		part, err := extractPrimitive(p, prim)
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d: %w", index, i, err)
		}
		part.Name = m.Name
		if len(m.Primitives) > 1 {
			part.Name = fmt.Sprintf("%s#%d", m.Name, i)
		}
		for v := range part.Vertices {
			part.Vertices[v].Position = transformPoint(world, part.Vertices[v].Position)
			part.Vertices[v].Normal = common.Normalize3(transformNormal(normalMatrix, part.Vertices[v].Normal))
		}
		parts = append(parts, part)
	}
	return parts, nil
}

func extractPrimitive(p *gltfParser, prim *gltfPrimitive) (Part, error) {
	posIndex, ok := prim.Attributes["POSITION"]
	if !ok {
		return Part{}, fmt.Errorf("primitive has no POSITION attribute")
	}
	positions, err := p.readVec3(posIndex)
	if err != nil {
		return Part{}, err
	}

	part := Part{
		Vertices:  make([]mesh.Vertex, len(positions)),
		BaseColor: [4]float32{1, 1, 1, 1},
	}
	for i, pos := range positions {
		part.Vertices[i].Position = pos
	}

	if prim.Indices != nil {
		if part.Indices, err = p.readIndices(*prim.Indices); err != nil {
			return Part{}, err
		}
	}

	if nIndex, ok := prim.Attributes["NORMAL"]; ok {
		normals, err := p.readVec3(nIndex)
		if err != nil {
			return Part{}, err
		}
		if len(normals) != len(positions) {
			return Part{}, fmt.Errorf("NORMAL count %d does not match POSITION count %d", len(normals), len(positions))
		}
		for i, n := range normals {
			part.Vertices[i].Normal = n
		}
	} else {
		smoothNormals(part.Vertices, part.Indices)
	}

	if prim.Material != nil && *prim.Material >= 0 && *prim.Material < len(p.document.Materials) {
		pbr := p.document.Materials[*prim.Material].PbrMetallicRoughness
		if pbr != nil && pbr.BaseColorFactor != nil {
			part.BaseColor = *pbr.BaseColorFactor
		}
	}
	return part, nil
}

// smoothNormals averages the face normals around each vertex.
func smoothNormals(vertices []mesh.Vertex, indices []uint32) {
	tri := func(a, b, c uint32) {
		if int(a) >= len(vertices) || int(b) >= len(vertices) || int(c) >= len(vertices) {
			return
		}
		pa, pb, pc := vertices[a].Position, vertices[b].Position, vertices[c].Position
		n := common.Cross3(common.Sub3(pb, pa), common.Sub3(pc, pa))
		for _, i := range [3]uint32{a, b, c} {
			for k := range 3 {
				vertices[i].Normal[k] += n[k]
			}
		}
	}
	if len(indices) > 0 {
		for i := 0; i+2 < len(indices); i += 3 {
			tri(indices[i], indices[i+1], indices[i+2])
		}
	} else {
		for i := 0; i+2 < len(vertices); i += 3 {
			tri(uint32(i), uint32(i+1), uint32(i+2))
		}
	}
	for i := range vertices {
		vertices[i].Normal = common.Normalize3(vertices[i].Normal)
	}
}

func transformPoint(m [16]float32, p [3]float32) [3]float32 {
	return [3]float32{
		m[0]*p[0] + m[4]*p[1] + m[8]*p[2] + m[12],
		m[1]*p[0] + m[5]*p[1] + m[9]*p[2] + m[13],
		m[2]*p[0] + m[6]*p[1] + m[10]*p[2] + m[14],
	}
}

func transformNormal(n [9]float32, v [3]float32) [3]float32 {
	return [3]float32{
		n[0]*v[0] + n[3]*v[1] + n[6]*v[2],
		n[1]*v[0] + n[4]*v[1] + n[7]*v[2],
		n[2]*v[0] + n[5]*v[1] + n[8]*v[2],
	}
}
