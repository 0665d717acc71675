package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const triangleJSON = `{
  "asset": {"version": "2.0"},
  "scene": 0,
  "scenes": [{"nodes": [0]}],
  "nodes": [{"mesh": 0, "translation": [1, 0, 0]}],
  "meshes": [{"name": "tri", "primitives": [{"attributes": {"POSITION": 0}, "indices": 1, "material": 0}]}],
  "materials": [{"pbrMetallicRoughness": {"baseColorFactor": [1, 0, 0, 1]}}],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
    {"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
  ],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 36},
    {"buffer": 0, "byteOffset": 36, "byteLength": 6}
  ],
  "buffers": [{"byteLength": 44%s}]
}`

// triangleBin holds a CCW triangle in the XY plane followed by uint16 indices.
func triangleBin() []byte {
	var buf bytes.Buffer
	for _, f := range []float32{0, 0, 0, 1, 0, 0, 0, 1, 0} {
		_ = binary.Write(&buf, binary.LittleEndian, math.Float32bits(f))
	}
	for _, i := range []uint16{0, 1, 2, 0} {
		_ = binary.Write(&buf, binary.LittleEndian, i)
	}
	return buf.Bytes()
}

func pad4(b []byte, fill byte) []byte {
	for len(b)%4 != 0 {
		b = append(b, fill)
	}
	return b
}

func buildGLB(jsonDoc string, bin []byte) []byte {
	js := pad4([]byte(jsonDoc), ' ')
	bin = pad4(bin, 0)
	var buf bytes.Buffer
	total := uint32(12 + 8 + len(js) + 8 + len(bin))
	_ = binary.Write(&buf, binary.LittleEndian, gltfGLBHeader{Magic: gltfGLBMagic, Version: gltfGLBVersion, Length: total})
	_ = binary.Write(&buf, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(js)), ChunkType: gltfGLBChunkJSON})
	buf.Write(js)
	_ = binary.Write(&buf, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(bin)), ChunkType: gltfGLBChunkBIN})
	buf.Write(bin)
	return buf.Bytes()
}

func assertVec3(t *testing.T, want, got [3]float32) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-5, "component %d", i)
	}
}

func TestExtractGLBAppliesNodeTranslation(t *testing.T) {
	p, err := parseGLTFBytes(buildGLB(fmt.Sprintf(triangleJSON, ""), triangleBin()), true, "")
	require.NoError(t, err)

	parts, err := extractParts(p)
	require.NoError(t, err)
	require.Len(t, parts, 1)

	part := parts[0]
	assert.Equal(t, "tri", part.Name)
	assert.Equal(t, []uint32{0, 1, 2}, part.Indices)
	assert.Equal(t, [4]float32{1, 0, 0, 1}, part.BaseColor)
	assertVec3(t, [3]float32{1, 0, 0}, part.Vertices[0].Position)
	assertVec3(t, [3]float32{2, 0, 0}, part.Vertices[1].Position)
	for _, v := range part.Vertices {
		assertVec3(t, [3]float32{0, 0, 1}, v.Normal)
	}
}

func TestExtractNodeHierarchyFromDataURI(t *testing.T) {
	uri := `, "uri": "data:application/octet-stream;base64,` + base64.StdEncoding.EncodeToString(triangleBin()) + `"`
	doc := fmt.Sprintf(triangleJSON, uri)
	// parent node scales its child by 2; no scenes, so roots are inferred
	doc = strings.Replace(doc, `"scene": 0,
  "scenes": [{"nodes": [0]}],
  "nodes": [{"mesh": 0, "translation": [1, 0, 0]}],`, `"nodes": [{"children": [1], "scale": [2, 2, 2]}, {"mesh": 0, "translation": [0, 1, 0]}],`, 1)

	p, err := parseGLTFBytes([]byte(doc), false, "")
	require.NoError(t, err)
	parts, err := extractParts(p)
	require.NoError(t, err)
	require.Len(t, parts, 1)

	assertVec3(t, [3]float32{0, 2, 0}, parts[0].Vertices[0].Position)
	assertVec3(t, [3]float32{2, 2, 0}, parts[0].Vertices[1].Position)
	assertVec3(t, [3]float32{0, 0, 1}, parts[0].Vertices[2].Normal)
}

func TestParseErrors(t *testing.T) {
	glb := buildGLB(fmt.Sprintf(triangleJSON, ""), triangleBin())

	bad := append([]byte{}, glb...)
	bad[0] = 'x'
	_, err := parseGLTFBytes(bad, true, "")
	assert.ErrorIs(t, err, errInvalidGLBMagic)

	_, err = parseGLTFBytes([]byte(`{"asset": {"version": "1.0"}}`), false, "")
	assert.ErrorIs(t, err, errInvalidGLTFVersion)

	_, err = parseGLTFBytes([]byte(fmt.Sprintf(triangleJSON, "")), false, "")
	assert.Error(t, err, "buffer without URI outside a GLB")
}

func TestLoaderUploadsAndCaches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.glb")
	require.NoError(t, os.WriteFile(path, buildGLB(fmt.Sprintf(triangleJSON, ""), triangleBin()), 0o644))

	rec := renderer.NewRecorder()
	l := NewLoader(rec)

	m, err := l.Load(path)
	require.NoError(t, err)
	require.Len(t, m.Meshes, 1)
	assert.Equal(t, 3, m.Meshes[0].IndexCount())
	assert.Equal(t, 3, m.Meshes[0].VertexCount())
	assert.Equal(t, [4]float32{1, 0, 0, 1}, m.Colors[0])

	again, err := l.Load(path)
	require.NoError(t, err)
	assert.Same(t, m, again)
	assert.Len(t, rec.CallsOf("CreateVertexArray"), 1)
	assert.Len(t, l.Models(), 1)

	_, err = l.Load(filepath.Join(t.TempDir(), "tri.obj"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadReader(t *testing.T) {
	l := NewLoader(renderer.NewRecorder())
	m, err := l.LoadReader("embedded", bytes.NewReader(buildGLB(fmt.Sprintf(triangleJSON, ""), triangleBin())), true)
	require.NoError(t, err)
	assert.Same(t, m, l.Get("embedded"))
	assert.Nil(t, l.Get("missing"))
}

func TestExtractRejectsMalformedAccessors(t *testing.T) {
	uri := `, "uri": "data:application/octet-stream;base64,` + base64.StdEncoding.EncodeToString(triangleBin()) + `"`
	valid := fmt.Sprintf(triangleJSON, uri)

	tests := []struct {
		name    string
		old     string
		new     string
		wantErr error
	}{
		{"negative bufferView", `{"bufferView": 0,`, `{"bufferView": -1,`, nil},
		{"negative count", `"count": 3, "type": "VEC3"`, `"count": -3, "type": "VEC3"`, errInvalidAccessor},
		{"huge count", `"count": 3, "type": "VEC3"`, `"count": 4611686018427387904, "type": "VEC3"`, errBufferSizeMismatch},
		{"negative accessor offset", `"count": 3, "type": "VEC3"`, `"count": 3, "byteOffset": -4, "type": "VEC3"`, errInvalidAccessor},
		{"negative view offset", `"byteOffset": 0, "byteLength": 36`, `"byteOffset": -8, "byteLength": 36`, errInvalidAccessor},
		{"negative view stride", `"byteOffset": 0, "byteLength": 36`, `"byteOffset": 0, "byteLength": 36, "byteStride": -12`, errInvalidAccessor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := strings.Replace(valid, tt.old, tt.new, 1)
			require.NotEqual(t, valid, doc)

			p, err := parseGLTFBytes([]byte(doc), false, "")
			require.NoError(t, err)
			require.NotPanics(t, func() {
				_, err = extractParts(p)
			})
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestExtractIgnoresOutOfRangeMaterialAndScene(t *testing.T) {
	uri := `, "uri": "data:application/octet-stream;base64,` + base64.StdEncoding.EncodeToString(triangleBin()) + `"`
	doc := fmt.Sprintf(triangleJSON, uri)
	doc = strings.Replace(doc, `"material": 0`, `"material": -1`, 1)
	doc = strings.Replace(doc, `"scene": 0`, `"scene": -1`, 1)

	p, err := parseGLTFBytes([]byte(doc), false, "")
	require.NoError(t, err)
	var parts []Part
	require.NotPanics(t, func() {
		parts, err = extractParts(p)
	})
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.NotEqual(t, [4]float32{1, 0, 0, 1}, parts[0].BaseColor)
}

func TestSplitGLBRejectsOversizedChunk(t *testing.T) {
	glb := buildGLB(fmt.Sprintf(triangleJSON, ""), triangleBin())
	// JSON chunk length sits right after the 12 byte header.
	binary.LittleEndian.PutUint32(glb[12:], 0xFFFFFFF0)

	_, err := parseGLTFBytes(glb, true, "")
	assert.ErrorIs(t, err, errInvalidChunk)
}
