package loader

import "go.uber.org/zap"

// LoaderBuilderOption is a functional option for configuring a Loader.
type LoaderBuilderOption func(*loader)

// WithLogger sets the logger imports are reported to.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - LoaderBuilderOption: option function to apply
func WithLogger(l *zap.Logger) LoaderBuilderOption {
	return func(ld *loader) {
		if l != nil {
			ld.logger = l
		}
	}
}
