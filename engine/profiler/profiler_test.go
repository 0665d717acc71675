package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestTickLogsOncePerInterval(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	now := time.Unix(0, 0)
	p := NewProfiler(
		WithClock(func() time.Time { return now }),
		WithInterval(time.Second),
		WithLogger(zap.New(core)),
	)

	for i := 0; i < 59; i++ {
		now = now.Add(16 * time.Millisecond)
		assert.False(t, p.Tick())
	}
	p.RecordRenderError()
	now = time.Unix(1, 0)
	require.True(t, p.Tick())

	st := p.Last()
	assert.Equal(t, 60, st.Frames)
	assert.InDelta(t, 60.0, st.FPS, 1e-9)
	assert.Equal(t, 1, st.RenderErrs)

	entries := logs.FilterMessage("frame stats").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(60), entries[0].ContextMap()["frames"])

	now = now.Add(16 * time.Millisecond)
	assert.False(t, p.Tick())
}
