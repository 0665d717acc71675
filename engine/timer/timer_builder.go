package timer

import (
	"time"

	"go.uber.org/zap"
)

// SchedulerBuilderOption is a functional option for configuring a Scheduler.
type SchedulerBuilderOption func(*scheduler)

// WithWorkers sets the maximum number of pool workers running callbacks.
//
// Parameters:
//   - n: the worker count, values below 1 are ignored
//
// Returns:
//   - SchedulerBuilderOption: option function to apply
func WithWorkers(n int) SchedulerBuilderOption {
	return func(s *scheduler) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithTick sets how often Run checks for due timers.
//
// Parameters:
//   - d: the polling period
//
// Returns:
//   - SchedulerBuilderOption: option function to apply
func WithTick(d time.Duration) SchedulerBuilderOption {
	return func(s *scheduler) {
		if d > 0 {
			s.tick = d
		}
	}
}

// WithClock replaces the time source used by Every and Run.
//
// Parameters:
//   - now: the clock function
//
// Returns:
//   - SchedulerBuilderOption: option function to apply
func WithClock(now func() time.Time) SchedulerBuilderOption {
	return func(s *scheduler) {
		s.now = now
	}
}

// WithLogger sets the logger failed callbacks are reported to.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - SchedulerBuilderOption: option function to apply
func WithLogger(l *zap.Logger) SchedulerBuilderOption {
	return func(s *scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}
