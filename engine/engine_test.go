package engine

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/Carmen-Shannon/oxy-scene/engine/config"
	"github.com/Carmen-Shannon/oxy-scene/engine/entity"
	"github.com/Carmen-Shannon/oxy-scene/engine/meshrenderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/mesh"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/Carmen-Shannon/oxy-scene/engine/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	now   time.Time
	slept []time.Duration
}

func (c *clock) Now() time.Time              { return c.now }
func (c *clock) Sleep(d time.Duration)       { c.slept = append(c.slept, d) }
func (c *clock) Advance(d time.Duration)     { c.now = c.now.Add(d) }
func (c *clock) option() EngineBuilderOption { return WithClock(c.Now, c.Sleep) }

func newCubeScene(t *testing.T, rec *renderer.Recorder, name string, params map[string]string) (scene.Scene, camera.Camera, transform.Transform) {
	t.Helper()
	s, err := shader.NewStatic(rec, name, 1, params)
	require.NoError(t, err)
	mat, err := material.NewMaterial(s)
	require.NoError(t, err)
	cube, err := mesh.NewCube(rec, 1)
	require.NoError(t, err)

	cam := camera.NewCamera(camera.WithPerspectiveAspect(45, 1, 0.1, 100))
	viewpoint := entity.New("camera", entity.WithCapabilities(transform.NewTransform(transform.WithPosition(0, 0, 5)), cam))
	spin := transform.NewTransform(transform.WithRotationSpeed(0, 1, 0))
	box := entity.New("box", entity.WithCapabilities(spin, meshrenderer.NewMeshRenderer(cube, mat)))

	sc := scene.NewScene(name,
		scene.WithEntities(viewpoint, box),
		scene.WithActiveViewpoint(viewpoint),
		scene.WithBackgroundColor([4]float32{0.2, 0.3, 0.4, 1}),
	)
	return sc, cam, spin
}

func ops(rec *renderer.Recorder, keep ...string) []string {
	var out []string
	for _, c := range rec.Calls() {
		for _, k := range keep {
			if c.Op == k {
				out = append(out, c.Op)
			}
		}
	}
	return out
}

func TestStepRendersOneFrame(t *testing.T) {
	rec := renderer.NewRecorder()
	rec.RequireFrame = true
	sc, _, _ := newCubeScene(t, rec, "main", map[string]string{"model": "mat4x4<f32>"})
	c := &clock{now: time.Unix(100, 0)}
	e := NewEngine(c.option(), WithRenderer(rec), WithScene(0, sc))
	t.Cleanup(e.Timers().Close)
	rec.Reset()

	require.NoError(t, e.Step())

	assert.Equal(t, []string{"BeginFrame", "DrawElements", "EndFrame", "Present"},
		ops(rec, "BeginFrame", "DrawElements", "EndFrame", "Present"))
	assert.Equal(t, [4]float32{0.2, 0.3, 0.4, 1}, rec.CallsOf("BeginFrame")[0].Value)
	assert.Equal(t, uint64(1), e.Frames())
}

func TestStepRunsFixedUpdatesBeforeRender(t *testing.T) {
	rec := renderer.NewRecorder()
	sc, _, spin := newCubeScene(t, rec, "main", nil)
	c := &clock{now: time.Unix(100, 0)}
	var ticks int
	e := NewEngine(c.option(), WithRenderer(rec), WithScene(0, sc), WithTickRate(10))
	t.Cleanup(e.Timers().Close)
	e.SetTickCallback(func(dt float32) {
		assert.InDelta(t, 0.1, dt, 1e-6)
		ticks++
	})

	require.NoError(t, e.Step())
	assert.Equal(t, 0, ticks)
	v := spin.Version()

	c.Advance(250 * time.Millisecond)
	require.NoError(t, e.Step())
	assert.Equal(t, 2, ticks)
	assert.True(t, spin.MovedSince(v))

	c.Advance(50 * time.Millisecond)
	require.NoError(t, e.Step())
	assert.Equal(t, 3, ticks)

	c.Advance(10 * time.Second)
	require.NoError(t, e.Step())
	assert.Equal(t, 3+maxCatchUpTicks, ticks)
}

func TestStepContinuesPastFailingScene(t *testing.T) {
	rec := renderer.NewRecorder()
	bad, _, _ := newCubeScene(t, rec, "bad", map[string]string{"NUM_LIGHTS": "f32"})
	good, _, _ := newCubeScene(t, rec, "good", nil)
	c := &clock{now: time.Unix(100, 0)}
	e := NewEngine(c.option(), WithRenderer(rec), WithScene(0, bad), WithScene(1, good))
	t.Cleanup(e.Timers().Close)
	rec.Reset()

	err := e.Step()
	assert.ErrorIs(t, err, material.ErrParameterTypeMismatch)
	assert.Len(t, rec.CallsOf("DrawElements"), 1)
	assert.Len(t, rec.CallsOf("Present"), 1)
}

func TestResizeUpdatesRendererAndPerspective(t *testing.T) {
	rec := renderer.NewRecorder()
	sc, cam, _ := newCubeScene(t, rec, "main", nil)
	e := NewEngine(WithRenderer(rec), WithScene(0, sc))
	t.Cleanup(e.Timers().Close)

	e.Resize(800, 400)
	w, h := rec.Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 400, h)
	assert.InDelta(t, 2.0, cam.Aspect(), 1e-6)
	assert.InDelta(t, 45.0, cam.Fov(), 1e-6)

	cam.SetOrthographic(-1, 1, -1, 1, 0.1, 10)
	e.Resize(400, 400)
	assert.Equal(t, camera.ProjectionOrthographic, cam.Projection())

	e.Resize(0, 0)
	w, _ = rec.Size()
	assert.Equal(t, 400, w)
}

func TestFrameLimitSleepsRemainder(t *testing.T) {
	c := &clock{now: time.Unix(100, 0)}
	e := NewEngine(c.option(), WithRenderFrameLimit(10))
	t.Cleanup(e.Timers().Close)

	require.NoError(t, e.Step())
	assert.Equal(t, []time.Duration{100 * time.Millisecond}, c.slept)
}

func TestStepAdvancesTimers(t *testing.T) {
	c := &clock{now: time.Unix(100, 0)}
	e := NewEngine(c.option())
	t.Cleanup(e.Timers().Close)
	var fired atomic.Int32
	require.NoError(t, e.Timers().Every("spawn", time.Second, func() error {
		fired.Add(1)
		return nil
	}))

	require.NoError(t, e.Step())
	c.Advance(time.Second)
	require.NoError(t, e.Step())
	e.Timers().Wait()
	assert.Equal(t, int32(1), fired.Load())
}

func TestWithConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.TickRate = 20
	cfg.Engine.FrameLimit = 30
	cfg.Engine.Profiling = true

	e := NewEngine(WithConfig(cfg)).(*engine)
	t.Cleanup(e.Timers().Close)
	assert.Equal(t, 50*time.Millisecond, e.tickRate)
	assert.Equal(t, time.Duration(float64(time.Second)/30), e.renderFrameLimit)
	assert.True(t, e.profilingEnabled)
}

func TestRunNeedsWindow(t *testing.T) {
	e := NewEngine()
	t.Cleanup(e.Timers().Close)
	assert.ErrorIs(t, e.Run(), ErrNoWindow)
}

func TestScenesAreCopied(t *testing.T) {
	e := NewEngine()
	t.Cleanup(e.Timers().Close)
	e.AddScene(2, scene.NewScene("b"))
	e.AddScene(1, scene.NewScene("a"))
	m := e.Scenes()
	delete(m, 1)
	assert.NotNil(t, e.Scene(1))
	assert.Equal(t, "a", e.ordered()[0].Name())
	e.RemoveScene(1)
	assert.Nil(t, e.Scene(1))
}

func TestQuitFromWorkers(t *testing.T) {
	e := NewEngine().(*engine)
	t.Cleanup(e.Timers().Close)

	done := make(chan struct{})
	for range 8 {
		go func() {
			e.Quit()
			done <- struct{}{}
		}()
	}
	for range 8 {
		<-done
	}
	assert.True(t, e.quit.Load())
}
