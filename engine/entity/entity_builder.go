package entity

import "go.uber.org/zap"

// EntityBuilderOption is a functional option for configuring an Entity during
// construction. Options may queue capabilities, which New attaches after all
// options have run.
type EntityBuilderOption func(e *Entity, pending []Capability) []Capability

// WithEnabled sets the initial entity-level enabled flag.
//
// Parameters:
//   - enabled: true to start enabled (the default)
//
// Returns:
//   - EntityBuilderOption: option function to apply
func WithEnabled(enabled bool) EntityBuilderOption {
	return func(e *Entity, pending []Capability) []Capability {
		e.enabled = enabled
		return pending
	}
}

// WithLogger sets the logger used to report rejected capability adds.
//
// Parameters:
//   - l: the logger to use; nil keeps the default
//
// Returns:
//   - EntityBuilderOption: option function to apply
func WithLogger(l *zap.Logger) EntityBuilderOption {
	return func(e *Entity, pending []Capability) []Capability {
		if l != nil {
			e.logger = l
		}
		return pending
	}
}

// WithCapabilities queues capabilities to attach once the entity is built.
//
// Parameters:
//   - caps: the capabilities to attach in order
//
// Returns:
//   - EntityBuilderOption: option function to apply
func WithCapabilities(caps ...Capability) EntityBuilderOption {
	return func(_ *Entity, pending []Capability) []Capability {
		return append(pending, caps...)
	}
}
