package scene

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/entity"
	"go.uber.org/zap"
)

var (
	// ErrDuplicateEntityName is returned when an entity whose name is already
	// registered is added to a Scene.
	ErrDuplicateEntityName = errors.New("scene: duplicate entity name")

	// ErrNilEntity is returned when a nil entity is passed to a Scene.
	ErrNilEntity = errors.New("scene: nil entity")
)

// Updater is implemented by capabilities that advance state once per frame.
type Updater interface {
	// Update advances the capability by dt seconds.
	//
	// Parameters:
	//   - sc: the scene driving the update
	//   - dt: elapsed time since the last frame in seconds
	Update(sc Scene, dt float32)
}

// Renderable is implemented by capabilities that submit draw work.
type Renderable interface {
	// Render submits the capability's draw work for the current frame.
	//
	// Parameters:
	//   - sc: the scene being rendered
	//
	// Returns:
	//   - error: the first error encountered while rendering
	Render(sc Scene) error
}

type scene struct {
	name            string
	entities        []*entity.Entity
	background      [4]float32
	activeViewpoint *entity.Entity
	logger          *zap.Logger
}

// Scene is the registry of entities taking part in a frame. It does not own
// the entities it holds; their lifetime is the caller's responsibility.
// Registration order is preserved and is the order every query returns.
//
// A Scene is not safe for concurrent use. The frame loop is the single writer;
// timer callbacks that touch a scene must serialize with it themselves.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// AddEntity registers an entity. An entity whose name is already registered
	// is rejected and the registry is left unchanged.
	//
	// Parameters:
	//   - e: the entity to register
	//
	// Returns:
	//   - error: ErrNilEntity or ErrDuplicateEntityName on rejection
	AddEntity(e *entity.Entity) error

	// RemoveEntity unregisters the entity with the given name. If it was the
	// active viewpoint, the active viewpoint is cleared.
	//
	// Parameters:
	//   - name: the entity name
	//
	// Returns:
	//   - bool: true if an entity was removed
	RemoveEntity(name string) bool

	// SetActiveViewpoint replaces the active viewpoint. The entity does not
	// need to be registered.
	//
	// Parameters:
	//   - e: the new active viewpoint
	//
	// Returns:
	//   - error: ErrNilEntity if e is nil
	SetActiveViewpoint(e *entity.Entity) error

	// ActiveViewpoint returns the active viewpoint entity, or nil if none is set.
	ActiveViewpoint() *entity.Entity

	// FindEntities returns every registered entity whose name equals name.
	//
	// Parameters:
	//   - name: the exact name to match
	//
	// Returns:
	//   - []*entity.Entity: matches in registration order, possibly empty
	FindEntities(name string) []*entity.Entity

	// FindEntitiesWithCapability returns every registered entity holding a
	// capability of the given kind.
	//
	// Parameters:
	//   - kind: the capability kind to match
	//
	// Returns:
	//   - []*entity.Entity: matches in registration order, possibly empty
	FindEntitiesWithCapability(kind entity.Kind) []*entity.Entity

	// Entities returns a copy of the registered entities in registration order.
	Entities() []*entity.Entity

	// Count returns the number of registered entities.
	Count() int

	// BackgroundColor returns the clear colour (r, g, b, a).
	BackgroundColor() [4]float32

	// SetBackgroundColor sets the clear colour.
	//
	// Parameters:
	//   - c: colour (r, g, b, a)
	SetBackgroundColor(c [4]float32)

	// Logger returns the scene's logger.
	Logger() *zap.Logger

	// Update calls Update on every enabled Updater capability of every enabled
	// entity, in registration then attach order.
	//
	// Parameters:
	//   - dt: elapsed time since the last frame in seconds
	Update(dt float32)

	// Render calls Render on every enabled Renderable capability of every
	// enabled entity. A failing renderer is logged and skipped; the remaining
	// renderers still run.
	//
	// Returns:
	//   - error: every renderer error joined, or nil
	Render() error
}

var _ Scene = &scene{}

// NewScene creates an empty Scene with the given options applied.
//
// Parameters:
//   - name: the scene's identifier
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		name:       name,
		entities:   make([]*entity.Entity, 0, 16),
		background: [4]float32{0, 0, 0, 1},
		logger:     common.Logger(),
	}
	var pending []*entity.Entity
	for _, option := range options {
		pending = option(s, pending)
	}
	for _, e := range pending {
		_ = s.AddEntity(e)
	}
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) AddEntity(e *entity.Entity) error {
	if e == nil {
		s.logger.Warn("rejected nil entity", zap.String("scene", s.name))
		return ErrNilEntity
	}
	for _, existing := range s.entities {
		if existing.Name() == e.Name() {
			s.logger.Warn("rejected duplicate entity name",
				zap.String("scene", s.name),
				zap.String("entity", e.Name()),
			)
			return fmt.Errorf("%w: %q", ErrDuplicateEntityName, e.Name())
		}
	}
	s.entities = append(s.entities, e)
	return nil
}

func (s *scene) RemoveEntity(name string) bool {
	for i, e := range s.entities {
		if e.Name() != name {
			continue
		}
		s.entities = append(s.entities[:i], s.entities[i+1:]...)
		if s.activeViewpoint == e {
			s.activeViewpoint = nil
		}
		return true
	}
	return false
}

func (s *scene) SetActiveViewpoint(e *entity.Entity) error {
	if e == nil {
		return ErrNilEntity
	}
	s.activeViewpoint = e
	return nil
}

func (s *scene) ActiveViewpoint() *entity.Entity {
	return s.activeViewpoint
}

func (s *scene) FindEntities(name string) []*entity.Entity {
	var out []*entity.Entity
	for _, e := range s.entities {
		if e.Name() == name {
			out = append(out, e)
		}
	}
	return out
}

func (s *scene) FindEntitiesWithCapability(kind entity.Kind) []*entity.Entity {
	var out []*entity.Entity
	for _, e := range s.entities {
		if e.HasCapability(kind) {
			out = append(out, e)
		}
	}
	return out
}

func (s *scene) Entities() []*entity.Entity {
	out := make([]*entity.Entity, len(s.entities))
	copy(out, s.entities)
	return out
}

func (s *scene) Count() int {
	return len(s.entities)
}

func (s *scene) BackgroundColor() [4]float32 {
	return s.background
}

func (s *scene) SetBackgroundColor(c [4]float32) {
	s.background = c
}

func (s *scene) Logger() *zap.Logger {
	return s.logger
}

func (s *scene) Update(dt float32) {
	for _, e := range s.entities {
		if !e.Enabled() {
			continue
		}
		for _, c := range e.Capabilities() {
			if u, ok := c.(Updater); ok && c.Enabled() {
				u.Update(s, dt)
			}
		}
	}
}

func (s *scene) Render() error {
	var errs []error
	for _, e := range s.entities {
		if !e.Enabled() {
			continue
		}
		for _, c := range e.Capabilities() {
			r, ok := c.(Renderable)
			if !ok || !c.Enabled() {
				continue
			}
			if err := r.Render(s); err != nil {
				s.logger.Error("render failed",
					zap.String("scene", s.name),
					zap.String("entity", e.Name()),
					zap.Stringer("kind", c.Kind()),
					zap.Error(err),
				)
				errs = append(errs, fmt.Errorf("%s: %w", e.Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}
