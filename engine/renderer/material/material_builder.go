package material

import "go.uber.org/zap"

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithStrict makes a type mismatch in SetData panic with the *TypeMismatchError
// instead of returning it.
//
// Parameters:
//   - strict: true to panic on mismatch
//
// Returns:
//   - MaterialBuilderOption: a function that applies the strict option to a material
func WithStrict(strict bool) MaterialBuilderOption {
	return func(m *material) {
		m.strict = strict
	}
}

// WithData queues an initial value written once the shader's slots are built.
//
// Parameters:
//   - name: the declared parameter name
//   - v: the initial value
//
// Returns:
//   - MaterialBuilderOption: a function that queues the value
func WithData(name string, v Value) MaterialBuilderOption {
	return func(m *material) {
		m.pending = append(m.pending, pendingData{name: name, value: v})
	}
}

// WithLogger sets the logger used for binding diagnostics.
//
// Parameters:
//   - l: the logger, nil keeps the shared logger
//
// Returns:
//   - MaterialBuilderOption: a function that applies the logger option to a material
func WithLogger(l *zap.Logger) MaterialBuilderOption {
	return func(m *material) {
		if l != nil {
			m.logger = l
		}
	}
}
