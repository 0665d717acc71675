package entity

import (
	"strconv"
	"sync"
)

// Kind identifies a capability type. It is the uniqueness key within an Entity
// and the query key used by the scene registry.
type Kind uint32

const (
	// KindInvalid is the zero Kind and is never attached to an entity.
	KindInvalid Kind = iota

	// KindTransform marks the spatial transform capability.
	KindTransform

	// KindCamera marks the viewpoint capability.
	KindCamera

	// KindLight marks the illumination capability.
	KindLight

	// KindMeshRenderer marks the draw orchestrator capability.
	KindMeshRenderer

	kindBuiltinCount
)

var (
	kindMu    sync.Mutex
	kindNames = map[Kind]string{
		KindInvalid:      "Invalid",
		KindTransform:    "Transform",
		KindCamera:       "Camera",
		KindLight:        "Light",
		KindMeshRenderer: "MeshRenderer",
	}
	nextKind = kindBuiltinCount
)

// NewKind allocates a new capability Kind for an application-defined
// capability. Call it once per capability type, typically from a package-level
// var, and reuse the result.
//
// Parameters:
//   - name: a human readable name returned by Kind.String
//
// Returns:
//   - Kind: the newly allocated kind
func NewKind(name string) Kind {
	kindMu.Lock()
	defer kindMu.Unlock()
	k := nextKind
	nextKind++
	kindNames[k] = name
	return k
}

// String returns the registered name of the kind.
func (k Kind) String() string {
	kindMu.Lock()
	defer kindMu.Unlock()
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Kind(" + strconv.FormatUint(uint64(k), 10) + ")"
}
