package common

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// loggerPtr stores the process logger. Accessed atomically so SetLogger can be
// called while timer callbacks are logging from worker goroutines.
var loggerPtr atomic.Pointer[zap.Logger]

func init() {
	loggerPtr.Store(zap.NewNop())
}

// SetLogger configures the logger shared by every engine package that was not
// handed an explicit logger through its builder options.
// By default nothing is logged. Pass nil to restore the silent default.
//
// Parameters:
//   - l: the logger to install, or nil to disable logging
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	loggerPtr.Store(l)
}

// Logger returns the current shared logger. Never returns nil.
//
// Returns:
//   - *zap.Logger: the active logger
func Logger() *zap.Logger {
	return loggerPtr.Load()
}
