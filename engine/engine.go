package engine

import (
	"errors"
	"maps"
	"slices"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/Carmen-Shannon/oxy-scene/engine/profiler"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/Carmen-Shannon/oxy-scene/engine/timer"
	"github.com/Carmen-Shannon/oxy-scene/engine/window"
	"go.uber.org/zap"
)

// ErrNoWindow is returned by Run when the engine was built without a window.
var ErrNoWindow = errors.New("engine: no window")

// maxCatchUpTicks bounds how many fixed updates one frame may run after a stall.
const maxCatchUpTicks = 8

// engine implements the Engine interface.
type engine struct {
	window   window.Window
	renderer renderer.Renderer
	timers   timer.Scheduler
	logger   *zap.Logger

	profiler         *profiler.Profiler
	profilingEnabled bool

	tickRate     time.Duration
	tickCallback func(deltaTime float32)

	renderCallback   func(deltaTime float32)
	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	scenes map[int]scene.Scene

	now         func() time.Time
	sleep       func(time.Duration)
	lastFrame   time.Time
	accumulator time.Duration
	frames      uint64
	quit        atomic.Bool
}

// Engine is the frame driver. Each Step runs the update phase for every scene
// at a fixed tick rate, then renders every scene inside one device frame.
// Everything runs on the calling goroutine.
type Engine interface {
	// Window returns the window the engine runs in, or nil when headless.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the device frames are rendered with, or nil.
	//
	// Returns:
	//   - renderer.Renderer: the renderer
	Renderer() renderer.Renderer

	// Timers returns the interval timer scheduler advanced once per Step.
	//
	// Returns:
	//   - timer.Scheduler: the scheduler
	Timers() timer.Scheduler

	// EnableProfiler enables frame statistics logging.
	EnableProfiler()

	// DisableProfiler disables frame statistics logging.
	DisableProfiler()

	// SetTickRate sets the fixed update rate.
	//
	// Parameters:
	//   - fps: updates per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called after each fixed update.
	//
	// Parameters:
	//   - callback: function receiving the tick length in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called after each rendered frame.
	//
	// Parameters:
	//   - callback: function receiving the frame time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit caps the frame rate.
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// AddScene registers a scene at the given z-index key.
	// Scenes are updated and rendered in ascending key order.
	//
	// Parameters:
	//   - key: the z-index determining order (lower first)
	//   - s: the Scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene removes the scene at the given z-index key.
	//
	// Parameters:
	//   - key: the z-index of the scene to remove
	RemoveScene(key int)

	// Scene retrieves the scene registered at the given key, or nil.
	//
	// Parameters:
	//   - key: the z-index of the scene to retrieve
	//
	// Returns:
	//   - scene.Scene: the scene at the key, or nil if not found
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes keyed by z-index.
	//
	// Returns:
	//   - map[int]scene.Scene: a copy of the scenes map
	Scenes() map[int]scene.Scene

	// Resize reconfigures the renderer and every perspective viewpoint for a new drawable size.
	//
	// Parameters:
	//   - width, height: the new size in pixels
	Resize(width, height int)

	// Step runs one frame: due timers, the fixed updates owed since the last
	// Step, then one rendered frame.
	//
	// Returns:
	//   - error: the joined render errors of every scene, or a frame submission error
	Step() error

	// Frames returns how many frames Step has rendered.
	Frames() uint64

	// Run drives Step from the window message loop until the window closes or
	// Quit is called, then closes the timer scheduler once in-flight callbacks
	// have returned.
	//
	// Returns:
	//   - error: ErrNoWindow without a window
	Run() error

	// Quit stops Run after the current frame. Safe to call multiple times.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options. When a
// window is supplied its resize events are routed to Resize.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		scenes:   make(map[int]scene.Scene),
		tickRate: time.Second / 60,
		now:      time.Now,
		sleep:    time.Sleep,
		logger:   common.Logger(),
	}
	for _, opt := range options {
		opt(e)
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger), profiler.WithClock(e.now))
	}
	if e.timers == nil {
		e.timers = timer.NewScheduler(timer.WithLogger(e.logger), timer.WithClock(e.now))
	}
	if e.window != nil {
		e.window.SetResizeCallback(e.Resize)
	}
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Timers() timer.Scheduler {
	return e.timers
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetTickRate(fps float64) {
	e.tickRate = tickDuration(fps)
}

func tickDuration(fps float64) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Duration(float64(time.Second) / fps)
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) AddScene(key int, s scene.Scene) {
	e.scenes[key] = s
}

func (e *engine) RemoveScene(key int) {
	delete(e.scenes, key)
}

func (e *engine) Scene(key int) scene.Scene {
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	return maps.Clone(e.scenes)
}

func (e *engine) Frames() uint64 {
	return e.frames
}

// ordered returns the scenes in ascending z-index order.
func (e *engine) ordered() []scene.Scene {
	keys := slices.Sorted(maps.Keys(e.scenes))
	out := make([]scene.Scene, 0, len(keys))
	for _, k := range keys {
		out = append(out, e.scenes[k])
	}
	return out
}

func (e *engine) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if e.renderer != nil {
		e.renderer.Resize(width, height)
	}
	aspect := float32(width) / float32(height)
	for _, s := range e.scenes {
		cam, ok := camera.Of(s.ActiveViewpoint())
		if !ok || cam.Projection() != camera.ProjectionPerspective {
			continue
		}
		cam.SetPerspectiveAspect(cam.Fov(), aspect, cam.Near(), cam.Far())
	}
	e.logger.Debug("engine resized", zap.Int("width", width), zap.Int("height", height))
}

func (e *engine) Step() error {
	start := e.now()
	if e.lastFrame.IsZero() {
		e.lastFrame = start
	}
	frameTime := start.Sub(e.lastFrame)
	e.lastFrame = start

	e.timers.Advance(start)
	scenes := e.ordered()
	e.update(scenes, frameTime)
	err := e.render(scenes)

	if e.renderCallback != nil {
		e.renderCallback(float32(frameTime.Seconds()))
	}
	if e.profilingEnabled {
		e.profiler.Tick()
	}
	e.frames++

	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - e.now().Sub(start); remaining > 0 {
			e.sleep(remaining)
		}
	}
	return err
}

// update runs the fixed ticks owed for frameTime. After a long stall the
// backlog beyond maxCatchUpTicks is dropped.
func (e *engine) update(scenes []scene.Scene, frameTime time.Duration) {
	e.accumulator += frameTime
	dt := float32(e.tickRate.Seconds())
	ticks := 0
	for e.accumulator >= e.tickRate {
		if ticks == maxCatchUpTicks {
			e.logger.Debug("dropping update backlog", zap.Duration("backlog", e.accumulator))
			e.accumulator = 0
			break
		}
		for _, s := range scenes {
			s.Update(dt)
		}
		if e.tickCallback != nil {
			e.tickCallback(dt)
		}
		e.accumulator -= e.tickRate
		ticks++
	}
}

// render draws every scene inside one device frame. A scene whose render
// fails does not stop the others.
func (e *engine) render(scenes []scene.Scene) error {
	if e.renderer == nil || len(scenes) == 0 {
		return nil
	}
	if err := e.renderer.BeginFrame(scenes[0].BackgroundColor()); err != nil {
		// the surface is unavailable while minimized
		e.logger.Debug("frame skipped", zap.Error(err))
		return nil
	}

	var errs []error
	for _, s := range scenes {
		if err := s.Render(); err != nil {
			e.profiler.RecordRenderError()
			errs = append(errs, err)
		}
	}
	if err := e.renderer.EndFrame(); err != nil {
		e.logger.Error("frame submission failed", zap.Error(err))
		return errors.Join(append(errs, err)...)
	}
	e.renderer.Present()
	return errors.Join(errs...)
}

func (e *engine) Run() error {
	if e.window == nil {
		return ErrNoWindow
	}
	e.window.SetUpdateCallback(func() {
		if e.quit.Load() {
			_ = e.window.Close()
			return
		}
		_ = e.Step()
	})
	e.window.ProcessMessages()
	e.timers.Close()
	e.logger.Info("engine stopped", zap.Uint64("frames", e.frames))
	return nil
}

func (e *engine) Quit() {
	e.quit.Store(true)
}
