package timer

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func fixedClock(t0 time.Time) func() time.Time {
	return func() time.Time { return t0 }
}

func TestAdvanceFiresDueTimers(t *testing.T) {
	t0 := time.Unix(1000, 0)
	s := NewScheduler(WithClock(fixedClock(t0)))
	t.Cleanup(s.Close)

	var fast, slow atomic.Int32
	require.NoError(t, s.Every("fast", 100*time.Millisecond, func() error { fast.Add(1); return nil }))
	require.NoError(t, s.Every("slow", time.Second, func() error { slow.Add(1); return nil }))

	assert.Equal(t, 0, s.Advance(t0.Add(50*time.Millisecond)))
	assert.Equal(t, 1, s.Advance(t0.Add(100*time.Millisecond)))
	assert.Equal(t, 1, s.Advance(t0.Add(200*time.Millisecond)))
	assert.Equal(t, 2, s.Advance(t0.Add(time.Second)))
	s.Wait()

	assert.Equal(t, int32(3), fast.Load())
	assert.Equal(t, int32(1), slow.Load())
	assert.Equal(t, uint64(3), s.Fired("fast"))
}

func TestAdvanceCatchUpFiresOnce(t *testing.T) {
	t0 := time.Unix(0, 0)
	s := NewScheduler(WithClock(fixedClock(t0)))
	t.Cleanup(s.Close)
	var n atomic.Int32
	require.NoError(t, s.Every("tick", 10*time.Millisecond, func() error { n.Add(1); return nil }))

	assert.Equal(t, 1, s.Advance(t0.Add(time.Second)))
	assert.Equal(t, 0, s.Advance(t0.Add(time.Second+5*time.Millisecond)))
	assert.Equal(t, 1, s.Advance(t0.Add(time.Second+10*time.Millisecond)))
	s.Wait()
	assert.Equal(t, int32(2), n.Load())
}

func TestEveryRejectsDuplicatesAndBadIntervals(t *testing.T) {
	s := NewScheduler()
	t.Cleanup(s.Close)
	require.NoError(t, s.Every("a", time.Second, func() error { return nil }))
	assert.ErrorIs(t, s.Every("a", time.Second, func() error { return nil }), ErrDuplicateTimer)
	assert.ErrorIs(t, s.Every("b", 0, func() error { return nil }), ErrInvalidInterval)
}

func TestCancel(t *testing.T) {
	t0 := time.Unix(0, 0)
	s := NewScheduler(WithClock(fixedClock(t0)))
	t.Cleanup(s.Close)
	require.NoError(t, s.Every("a", time.Millisecond, func() error { return nil }))

	assert.True(t, s.Cancel("a"))
	assert.False(t, s.Cancel("a"))
	assert.Equal(t, 0, s.Advance(t0.Add(time.Second)))
	assert.Equal(t, uint64(0), s.Fired("a"))
}

func TestCallbackErrorIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	t0 := time.Unix(0, 0)
	s := NewScheduler(WithClock(fixedClock(t0)), WithLogger(zap.New(core)))
	t.Cleanup(s.Close)
	require.NoError(t, s.Every("broken", time.Millisecond, func() error { return errors.New("boom") }))

	s.Advance(t0.Add(time.Millisecond))
	s.Wait()

	entries := logs.FilterMessage("timer callback failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "broken", entries[0].ContextMap()["timer"])
}

func TestRunStopsOnCancel(t *testing.T) {
	s := NewScheduler(WithTick(time.Millisecond))
	t.Cleanup(s.Close)
	var n atomic.Int32
	require.NoError(t, s.Every("a", time.Millisecond, func() error { n.Add(1); return nil }))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return n.Load() > 0 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestCloseStopsDispatch(t *testing.T) {
	t0 := time.Unix(1000, 0)
	s := NewScheduler(WithClock(fixedClock(t0)))

	var n atomic.Int32
	require.NoError(t, s.Every("tick", 100*time.Millisecond, func() error { n.Add(1); return nil }))
	assert.Equal(t, 1, s.Advance(t0.Add(100*time.Millisecond)))

	s.Close()
	assert.Equal(t, int32(1), n.Load())
	assert.Equal(t, 0, s.Advance(t0.Add(time.Second)))
	assert.NotPanics(t, s.Close)
	assert.Equal(t, int32(1), n.Load())
}
