package timer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-scene/common"
	"go.uber.org/zap"
)

var (
	// ErrDuplicateTimer is returned by Every when a timer with the same name is already scheduled.
	ErrDuplicateTimer = errors.New("timer: duplicate timer name")

	// ErrInvalidInterval is returned by Every for a non-positive interval.
	ErrInvalidInterval = errors.New("timer: interval must be positive")
)

// Callback is the work a timer runs each time it fires.
type Callback func() error

type entry struct {
	name     string
	interval time.Duration
	next     time.Time
	fn       Callback
	fired    uint64
}

// scheduler is the implementation of the Scheduler interface.
type scheduler struct {
	mu      sync.Mutex
	entries map[string]*entry
	order   []string
	taskID  int

	pool      worker.DynamicWorkerPool
	workers   int
	queueSize int
	idle      time.Duration
	tick      time.Duration
	now       func() time.Time
	logger    *zap.Logger

	inflight  sync.WaitGroup
	closed    bool
	closeOnce sync.Once
}

// Scheduler runs named interval timers. Due callbacks are submitted to a worker
// pool and therefore run on goroutines other than the frame loop; anything a
// callback shares with the scene must be synchronized by the caller.
type Scheduler interface {
	// Every schedules fn to fire every interval, first firing one interval from now.
	//
	// Parameters:
	//   - name: a unique timer name
	//   - interval: the period between firings
	//   - fn: the callback to run on a worker
	//
	// Returns:
	//   - error: ErrDuplicateTimer or ErrInvalidInterval
	Every(name string, interval time.Duration, fn Callback) error

	// Cancel removes a timer. Callbacks already submitted still run.
	//
	// Parameters:
	//   - name: the timer name
	//
	// Returns:
	//   - bool: true if a timer was removed
	Cancel(name string) bool

	// Fired returns how many times the named timer has been dispatched.
	//
	// Parameters:
	//   - name: the timer name
	//
	// Returns:
	//   - uint64: the dispatch count, zero for an unknown timer
	Fired(name string) uint64

	// Advance dispatches every timer due at now. A timer that fell several
	// intervals behind fires once and is rescheduled relative to now.
	//
	// Parameters:
	//   - now: the current time
	//
	// Returns:
	//   - int: the number of callbacks submitted
	Advance(now time.Time) int

	// Run calls Advance on every tick until ctx is cancelled, then waits for
	// in-flight callbacks.
	//
	// Parameters:
	//   - ctx: controls the lifetime of the loop
	Run(ctx context.Context)

	// Wait blocks until every submitted callback has returned.
	Wait()

	// Close stops dispatching, waits for in-flight callbacks and stops the
	// worker pool. Advance returns zero afterwards. Safe to call multiple times.
	Close()
}

var _ Scheduler = &scheduler{}

// NewScheduler creates a Scheduler backed by a dynamic worker pool of up to 4
// workers, ticking every 10ms when Run is used.
//
// Parameters:
//   - options: functional options to configure the scheduler
//
// Returns:
//   - Scheduler: the new scheduler
func NewScheduler(options ...SchedulerBuilderOption) Scheduler {
	s := &scheduler{
		entries:   make(map[string]*entry),
		workers:   4,
		queueSize: 256,
		idle:      1 * time.Second,
		tick:      10 * time.Millisecond,
		now:       time.Now,
		logger:    common.Logger(),
	}
	for _, opt := range options {
		opt(s)
	}
	s.pool = worker.NewDynamicWorkerPool(s.workers, s.queueSize, s.idle)
	return s
}

func (s *scheduler) Every(name string, interval time.Duration, fn Callback) error {
	if interval <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTimer, name)
	}
	s.entries[name] = &entry{
		name:     name,
		interval: interval,
		next:     s.now().Add(interval),
		fn:       fn,
	}
	s.order = append(s.order, name)
	return nil
}

func (s *scheduler) Cancel(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[name]; !ok {
		return false
	}
	delete(s.entries, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *scheduler) Fired(name string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[name]; ok {
		return e.fired
	}
	return 0
}

func (s *scheduler) Advance(now time.Time) int {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0
	}
	var due []*entry
	for _, name := range s.order {
		e := s.entries[name]
		if now.Before(e.next) {
			continue
		}
		e.fired++
		e.next = e.next.Add(e.interval)
		if !now.Before(e.next) {
			e.next = now.Add(e.interval)
		}
		due = append(due, e)
	}
	// Counted under the lock so Close cannot stop the pool between the
	// closed check and submission.
	s.inflight.Add(len(due))
	firstID := s.taskID
	s.taskID += len(due)
	s.mu.Unlock()

	for i, e := range due {
		s.submit(firstID+i, e)
	}
	return len(due)
}

func (s *scheduler) submit(id int, e *entry) {
	name, fn := e.name, e.fn
	s.pool.SubmitTask(worker.Task{
		ID: id,
		Do: func() (any, error) {
			defer s.inflight.Done()
			if err := fn(); err != nil {
				s.logger.Warn("timer callback failed", zap.String("timer", name), zap.Error(err))
				return nil, err
			}
			return nil, nil
		},
	})
}

func (s *scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.Wait()
			return
		case <-ticker.C:
			s.Advance(s.now())
		}
	}
}

func (s *scheduler) Wait() {
	s.inflight.Wait()
}

func (s *scheduler) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		s.Wait()
		s.pool.Stop()
	})
}
