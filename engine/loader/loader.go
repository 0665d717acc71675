package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/mesh"
	"go.uber.org/zap"
)

// ErrUnsupportedFormat is returned for a file extension no importer handles.
var ErrUnsupportedFormat = errors.New("loader: unsupported model format")

// Model is an imported asset: one uploaded mesh per triangle primitive, with
// the primitive's base colour.
type Model struct {
	Name   string
	Meshes []mesh.Mesh
	Colors [][4]float32
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu     sync.RWMutex
	device renderer.Device
	cache  map[string]*Model
	logger *zap.Logger
}

// Loader imports glTF and GLB files into static meshes on a device and caches
// the result by name.
type Loader interface {
	// Load imports a .gltf or .glb file, returning the cached model when the path
	// was loaded before.
	//
	// Parameters:
	//   - path: the model file
	//
	// Returns:
	//   - *Model: the imported model
	//   - error: ErrUnsupportedFormat, or a parse or upload error
	Load(path string) (*Model, error)

	// LoadReader imports a model from r and caches it under name.
	//
	// Parameters:
	//   - name: the cache key
	//   - r: the model data
	//   - isGLB: true for binary GLB data
	//
	// Returns:
	//   - *Model: the imported model
	//   - error: a parse or upload error
	LoadReader(name string, r io.Reader, isGLB bool) (*Model, error)

	// Get retrieves a cached model by name, or nil.
	Get(name string) *Model

	// Models returns a copy of the cache.
	Models() map[string]*Model
}

var _ Loader = &loader{}

// NewLoader creates a Loader that uploads meshes to device.
//
// Parameters:
//   - device: the device meshes are uploaded to
//   - options: functional options to configure the loader
//
// Returns:
//   - Loader: the new loader
func NewLoader(device renderer.Device, options ...LoaderBuilderOption) Loader {
	l := &loader{
		device: device,
		cache:  make(map[string]*Model),
		logger: common.Logger(),
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

func (l *loader) Load(path string) (*Model, error) {
	if m := l.Get(path); m != nil {
		return m, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	p, err := parseGLTFFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: %s: %w", path, err)
	}
	return l.build(path, p)
}

func (l *loader) LoadReader(name string, r io.Reader, isGLB bool) (*Model, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("loader: %s: %w", name, err)
	}
	p, err := parseGLTFBytes(buf.Bytes(), isGLB, "")
	if err != nil {
		return nil, fmt.Errorf("loader: %s: %w", name, err)
	}
	return l.build(name, p)
}

func (l *loader) build(name string, p *gltfParser) (*Model, error) {
	parts, err := extractParts(p)
	if err != nil {
		return nil, fmt.Errorf("loader: %s: %w", name, err)
	}

	m := &Model{Name: name}
	for i, part := range parts {
		label := part.Name
		if label == "" {
			label = fmt.Sprintf("%s#%d", filepath.Base(name), i)
		}
		options := []mesh.MeshBuilderOption{mesh.WithName(label)}
		if len(part.Indices) > 0 {
			options = append(options, mesh.WithIndices(part.Indices))
		}
		uploaded, err := mesh.NewStaticMesh(l.device, part.Vertices, options...)
		if err != nil {
			return nil, fmt.Errorf("loader: %s: %s: %w", name, label, err)
		}
		m.Meshes = append(m.Meshes, uploaded)
		m.Colors = append(m.Colors, part.BaseColor)
	}

	l.mu.Lock()
	l.cache[name] = m
	l.mu.Unlock()
	l.logger.Debug("model loaded", zap.String("model", name), zap.Int("meshes", len(m.Meshes)))
	return m, nil
}

func (l *loader) Get(name string) *Model {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cache[name]
}

func (l *loader) Models() map[string]*Model {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return maps.Clone(l.cache)
}
