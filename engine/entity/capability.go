package entity

// Capability is a single behavior attachable to an Entity, such as a camera,
// a light or a mesh renderer. Every capability reports a stable Kind and an
// Entity holds at most one capability per Kind.
//
// Implementations embed Base, which provides the owner back-reference and the
// capability-level enabled flag.
type Capability interface {
	// Kind returns the capability's kind tag.
	//
	// Returns:
	//   - Kind: the kind tag
	Kind() Kind

	// Owner returns the Entity this capability is attached to. Returns nil when
	// the capability is unattached or the owning entity has been destroyed.
	//
	// Returns:
	//   - *Entity: the owning entity or nil
	Owner() *Entity

	// Enabled returns whether the capability itself is enabled. This flag is
	// independent from the owning entity's enabled flag.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// SetEnabled enables or disables the capability.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	base() *Base
}

// Base carries the state shared by every capability. The owner link is weak:
// it records the owner's generation at attach time and resolves to nil once the
// owner is destroyed.
type Base struct {
	owner      *Entity
	generation uint32
	disabled   bool
}

// Owner returns the owning entity, or nil if unattached or stale.
func (b *Base) Owner() *Entity {
	if b.owner == nil || b.owner.generation != b.generation {
		return nil
	}
	return b.owner
}

// Enabled returns whether the capability is enabled. Capabilities start enabled.
func (b *Base) Enabled() bool {
	return !b.disabled
}

// SetEnabled enables or disables the capability.
func (b *Base) SetEnabled(enabled bool) {
	b.disabled = !enabled
}

func (b *Base) base() *Base {
	return b
}

func (b *Base) attached() bool {
	return b.Owner() != nil
}

func (b *Base) bind(e *Entity) {
	b.owner = e
	if e != nil {
		b.generation = e.generation
	}
}
