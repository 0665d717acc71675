package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"go.uber.org/zap"
)

// Stats is one profiling window: frame rate and memory figures sampled when
// the update interval elapsed.
type Stats struct {
	FPS         float64
	Frames      int
	HeapMB      float64
	SysMB       float64
	AllocRateMB float64
	GCCount     uint32
	LastPause   time.Duration
	MaxPause    time.Duration
	RenderErrs  int
}

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Stats are logged at info level once per update interval.
type Profiler struct {
	frameCount     int
	renderErrs     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Stats

	now    func() time.Time
	logger *zap.Logger
}

// NewProfiler creates a new Profiler. The update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
		logger:         common.Logger(),
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// RecordRenderError counts a failed scene render in the current window.
func (p *Profiler) RecordRenderError() {
	p.renderErrs++
}

// Last returns the most recently completed window.
//
// Returns:
//   - Stats: the last logged stats, zero before the first window closes
func (p *Profiler) Last() Stats {
	return p.last
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	st := Stats{
		FPS:         float64(p.frameCount) / elapsed.Seconds(),
		Frames:      p.frameCount,
		HeapMB:      float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:       float64(p.memStats.Sys) / 1024 / 1024,
		AllocRateMB: float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:     p.memStats.NumGC,
		RenderErrs:  p.renderErrs,
	}

	// PauseNs is a circular buffer of the last 256 pauses.
	if gcCount := st.GCCount; gcCount > 0 {
		st.LastPause = time.Duration(p.memStats.PauseNs[(gcCount-1)%256])
		start := p.lastGCCount
		if gcCount-start > 256 {
			start = gcCount - 256
		}
		for i := start; i < gcCount; i++ {
			if pause := time.Duration(p.memStats.PauseNs[i%256]); pause > st.MaxPause {
				st.MaxPause = pause
			}
		}
	}

	p.logger.Info("frame stats",
		zap.Float64("fps", st.FPS),
		zap.Int("frames", st.Frames),
		zap.Float64("heap_mb", st.HeapMB),
		zap.Float64("alloc_rate_mb_s", st.AllocRateMB),
		zap.Uint32("gc", st.GCCount),
		zap.Duration("gc_last_pause", st.LastPause),
		zap.Duration("gc_max_pause", st.MaxPause),
		zap.Float64("sys_mb", st.SysMB),
		zap.Int("render_errors", st.RenderErrs),
	)

	p.last = st
	p.frameCount = 0
	p.renderErrs = 0
	p.lastTime = currentTime
	p.lastGCCount = st.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
