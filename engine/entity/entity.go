package entity

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"go.uber.org/zap"
)

var (
	// ErrDuplicateCapability is returned when a capability of an already
	// attached Kind is added to an Entity.
	ErrDuplicateCapability = errors.New("entity: duplicate capability kind")

	// ErrCapabilityOwned is returned when a capability that is already attached
	// to a live entity is added again.
	ErrCapabilityOwned = errors.New("entity: capability already has an owner")

	// ErrNilCapability is returned when a nil capability is added.
	ErrNilCapability = errors.New("entity: nil capability")
)

// Entity is a named, ordered collection of capabilities with at most one
// capability per Kind. The entity owns its capabilities; each capability holds
// a weak back-reference to the entity.
//
// Entities are not safe for concurrent use.
type Entity struct {
	name       string
	enabled    bool
	generation uint32
	units      []Capability
	logger     *zap.Logger
}

// New creates an enabled Entity with the given name and options applied.
// Capabilities passed through WithCapabilities are attached in order; rejected
// ones are logged and skipped.
//
// Parameters:
//   - name: the entity name, unique within a scene
//   - options: functional options to configure the entity
//
// Returns:
//   - *Entity: the newly created entity
func New(name string, options ...EntityBuilderOption) *Entity {
	e := &Entity{
		name:    name,
		enabled: true,
		units:   make([]Capability, 0, 4),
		logger:  common.Logger(),
	}
	var pending []Capability
	for _, option := range options {
		pending = option(e, pending)
	}
	for _, c := range pending {
		_ = e.AddCapability(c)
	}
	return e
}

// Name returns the entity's name.
func (e *Entity) Name() string {
	return e.name
}

// Enabled returns whether the entity is enabled.
func (e *Entity) Enabled() bool {
	return e.enabled
}

// SetEnabled sets the entity-level enabled flag. Capability flags are left alone.
func (e *Entity) SetEnabled(enabled bool) {
	e.enabled = enabled
}

// Toggle flips the entity-level enabled flag and returns the new value.
//
// Returns:
//   - bool: the enabled state after toggling
func (e *Entity) Toggle() bool {
	e.enabled = !e.enabled
	return e.enabled
}

// AddCapability attaches c to the entity and sets its owner back-reference.
// A capability whose Kind is already present is rejected with
// ErrDuplicateCapability; the existing capability is left untouched. Rejected
// adds are logged and never mutate the entity.
//
// Parameters:
//   - c: an unattached capability
//
// Returns:
//   - error: ErrNilCapability, ErrCapabilityOwned or ErrDuplicateCapability on rejection
func (e *Entity) AddCapability(c Capability) error {
	if isNil(c) {
		e.logger.Warn("rejected nil capability", zap.String("entity", e.name))
		return ErrNilCapability
	}
	if c.base().attached() {
		e.logger.Warn("rejected capability with an existing owner",
			zap.String("entity", e.name),
			zap.Stringer("kind", c.Kind()),
			zap.String("owner", c.Owner().Name()),
		)
		return fmt.Errorf("%w: %s on %q", ErrCapabilityOwned, c.Kind(), c.Owner().Name())
	}
	if _, ok := e.FindCapability(c.Kind()); ok {
		e.logger.Warn("rejected duplicate capability",
			zap.String("entity", e.name),
			zap.Stringer("kind", c.Kind()),
		)
		return fmt.Errorf("%w: %s on %q", ErrDuplicateCapability, c.Kind(), e.name)
	}
	e.units = append(e.units, c)
	c.base().bind(e)
	return nil
}

// isNil also catches a nil pointer stored in a non-nil interface.
func isNil(c Capability) bool {
	if c == nil {
		return true
	}
	v := reflect.ValueOf(c)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// FindCapability returns the capability of the given kind, if attached.
//
// Parameters:
//   - kind: the capability kind to look up
//
// Returns:
//   - Capability: the matching capability or nil
//   - bool: true if found
func (e *Entity) FindCapability(kind Kind) (Capability, bool) {
	for _, c := range e.units {
		if c.Kind() == kind {
			return c, true
		}
	}
	return nil, false
}

// HasCapability reports whether a capability of the given kind is attached.
func (e *Entity) HasCapability(kind Kind) bool {
	_, ok := e.FindCapability(kind)
	return ok
}

// RemoveCapability detaches the capability of the given kind, clearing its
// owner back-reference. Attach order of the remaining capabilities is kept.
//
// Parameters:
//   - kind: the capability kind to detach
//
// Returns:
//   - bool: true if a capability was removed
func (e *Entity) RemoveCapability(kind Kind) bool {
	for i, c := range e.units {
		if c.Kind() != kind {
			continue
		}
		e.units = append(e.units[:i], e.units[i+1:]...)
		c.base().bind(nil)
		return true
	}
	return false
}

// Capabilities returns a copy of the attached capabilities in attach order.
func (e *Entity) Capabilities() []Capability {
	out := make([]Capability, len(e.units))
	copy(out, e.units)
	return out
}

// Destroy invalidates every back-reference held by the entity's capabilities.
// After Destroy, Owner on those capabilities returns nil. The capabilities
// stay in the entity so the caller can still inspect or release them.
func (e *Entity) Destroy() {
	e.generation++
}

// Find returns the capability of the given kind as the concrete type T.
//
// Parameters:
//   - e: the entity to search (may be nil)
//   - kind: the capability kind to look up
//
// Returns:
//   - T: the capability, or the zero value if absent or of a different type
//   - bool: true if found with the requested type
func Find[T Capability](e *Entity, kind Kind) (T, bool) {
	var zero T
	if e == nil {
		return zero, false
	}
	c, ok := e.FindCapability(kind)
	if !ok {
		return zero, false
	}
	t, ok := c.(T)
	return t, ok
}
