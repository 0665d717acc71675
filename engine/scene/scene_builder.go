package scene

import (
	"github.com/Carmen-Shannon/oxy-scene/engine/entity"
	"go.uber.org/zap"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options. Options may queue entities,
// which NewScene registers after every option has run.
type SceneBuilderOption func(s *scene, pending []*entity.Entity) []*entity.Entity

// WithLogger sets the logger used for rejected registrations and render errors.
//
// Parameters:
//   - l: the logger to use; nil keeps the default
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLogger(l *zap.Logger) SceneBuilderOption {
	return func(s *scene, pending []*entity.Entity) []*entity.Entity {
		if l != nil {
			s.logger = l
		}
		return pending
	}
}

// WithBackgroundColor sets the clear colour.
//
// Parameters:
//   - c: colour (r, g, b, a)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithBackgroundColor(c [4]float32) SceneBuilderOption {
	return func(s *scene, pending []*entity.Entity) []*entity.Entity {
		s.background = c
		return pending
	}
}

// WithEntities registers initial entities in order. Duplicate names are
// logged and skipped.
//
// Parameters:
//   - entities: the entities to register
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithEntities(entities ...*entity.Entity) SceneBuilderOption {
	return func(_ *scene, pending []*entity.Entity) []*entity.Entity {
		return append(pending, entities...)
	}
}

// WithActiveViewpoint sets the initial active viewpoint.
//
// Parameters:
//   - e: the viewpoint entity; nil is ignored
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActiveViewpoint(e *entity.Entity) SceneBuilderOption {
	return func(s *scene, pending []*entity.Entity) []*entity.Entity {
		if e != nil {
			s.activeViewpoint = e
		}
		return pending
	}
}
