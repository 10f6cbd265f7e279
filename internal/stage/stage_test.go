package stage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/snowglobe/internal/asset"
	"github.com/vovakirdan/snowglobe/internal/config"
	"github.com/vovakirdan/snowglobe/internal/core"
	"github.com/vovakirdan/snowglobe/internal/frame"
	"github.com/vovakirdan/snowglobe/internal/metrics"
	"github.com/vovakirdan/snowglobe/internal/props"
	"github.com/vovakirdan/snowglobe/internal/registry"
	"github.com/vovakirdan/snowglobe/internal/render"
)

const testScene = "stage-test"

type counter struct {
	mu sync.Mutex
	n  int
}

func (c *counter) Update(float64) {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func (c *counter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

type faulty struct{}

func (faulty) Update(float64) { panic("broken node") }

// The most recent build, for assertions.
var (
	lastCounter *counter
	lastEnv     *registry.Env
)

type stubScene struct{}

func (stubScene) ID() string    { return testScene }
func (stubScene) Title() string { return "Stage Test" }

func (stubScene) Build(ctx context.Context, env *registry.Env) error {
	lastEnv = env
	lastCounter = &counter{}
	env.Camera.SetPosition(core.V3(0, 0, 8))
	env.Renderer.SetFog(render.Fog{Near: 1, Far: 40, Color: core.ColorFog})
	env.Graph.Add(lastCounter)
	env.Graph.Add(faulty{})
	env.Graph.Add(props.NewDisc(3, 1))
	env.Assets.Load(ctx, "snowman", func(m *asset.Model) {
		env.Graph.Add(props.NewProp(m, core.Identity()))
	})
	env.Assets.Load(ctx, "no-such-model", nil)
	return nil
}

func init() {
	registry.Register(testScene, func() registry.Scene { return stubScene{} })
}

// steppingClock advances by step on every reading.
func steppingClock(step time.Duration) *frame.Clock {
	now := time.Unix(0, 0)
	return frame.NewClock(func() time.Time {
		now = now.Add(step)
		return now
	})
}

func TestNewBuildsAndRuns(t *testing.T) {
	var failures []*frame.FrameError
	st, err := New(context.Background(), Options{
		SceneID:      testScene,
		Runtime:      core.RuntimeConfig{ScreenW: 60, ScreenH: 20, Seed: 9},
		Viewer:       config.DefaultViewerConfig(),
		Clock:        steppingClock(100 * time.Millisecond),
		OnFrameError: func(e *frame.FrameError) { failures = append(failures, e) },
	})
	require.NoError(t, err)
	st.Assets.Wait()

	assert.Equal(t, int64(9), st.Seed())
	assert.Equal(t, int64(9), lastEnv.Seed)
	assert.Equal(t, 4, st.Graph.Len())
	assert.Equal(t, 60, st.Screen.Width())

	for i := 0; i < 5; i++ {
		require.NoError(t, st.Tick())
	}
	st.Stop()
	assert.ErrorIs(t, st.Tick(), frame.ErrStopped)

	assert.Equal(t, 5, lastCounter.count())
	assert.Len(t, failures, 5)
	assert.Positive(t, st.Screen.Filled())
	assert.InDelta(t, 0.5, st.Elapsed().Seconds(), 1e-9)

	sess := st.Session()
	assert.Equal(t, testScene, sess.SceneID)
	assert.Equal(t, "local", sess.Origin)
	assert.EqualValues(t, 5, sess.Frames)
	assert.EqualValues(t, 5, sess.NodeFailures)
	assert.EqualValues(t, 1, sess.LoadFailures)
	assert.Equal(t, 500*time.Millisecond, sess.Duration)
}

func TestLoadErrorsReachChannel(t *testing.T) {
	st, err := New(context.Background(), Options{SceneID: testScene, Runtime: core.RuntimeConfig{Seed: 1}})
	require.NoError(t, err)
	st.Assets.Wait()
	defer st.Stop()

	select {
	case le := <-st.Assets.Errors():
		assert.Equal(t, "no-such-model", le.ID)
		assert.True(t, errors.Is(le, asset.ErrNotFound))
	default:
		t.Fatal("expected a load error")
	}
}

func TestDefaults(t *testing.T) {
	st, err := New(context.Background(), Options{SceneID: testScene})
	require.NoError(t, err)
	defer st.Stop()

	def := core.DefaultConfig()
	assert.Equal(t, def.ScreenW, st.Screen.Width())
	assert.Equal(t, def.ScreenH, st.Screen.Height())
	assert.NotZero(t, st.Seed())
	assert.Equal(t, render.DefaultCellAspect, st.Camera.CellAspect)
}

func TestUnknownScene(t *testing.T) {
	_, err := New(context.Background(), Options{SceneID: "missing"})
	assert.Error(t, err)
}

func TestQueueMovesCamera(t *testing.T) {
	st, err := New(context.Background(), Options{
		SceneID: testScene,
		Clock:   steppingClock(50 * time.Millisecond),
	})
	require.NoError(t, err)
	defer st.Stop()

	yaw := st.Camera.Yaw
	st.Queue(core.ActionOrbitRight)
	require.NoError(t, st.Tick())
	assert.NotEqual(t, yaw, st.Camera.Yaw)
}

func TestResize(t *testing.T) {
	st, err := New(context.Background(), Options{SceneID: testScene})
	require.NoError(t, err)
	defer st.Stop()

	st.Resize(100, 30)
	require.NoError(t, st.Tick())
	assert.Equal(t, 100, st.Screen.Width())
	assert.Equal(t, 30, st.Screen.Height())
}

func TestStartStop(t *testing.T) {
	viewer := config.DefaultViewerConfig()
	viewer.FPS = 200
	st, err := New(context.Background(), Options{SceneID: testScene, Viewer: viewer})
	require.NoError(t, err)

	require.NoError(t, st.Start(context.Background()))
	assert.Eventually(t, func() bool { return st.Scheduler.Stats().Frames >= 3 }, 2*time.Second, 5*time.Millisecond)
	st.Stop()

	frames := st.Scheduler.Stats().Frames
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, frames, st.Scheduler.Stats().Frames)
}

func TestMetricsWiring(t *testing.T) {
	m := metrics.New()
	st, err := New(context.Background(), Options{SceneID: testScene, Metrics: m})
	require.NoError(t, err)
	st.Assets.Wait()

	require.NoError(t, st.Tick())
	require.NoError(t, st.Tick())
	st.Stop()

	for _, name := range []string{
		"snowglobe_frames_total",
		"snowglobe_asset_load_failures_total",
		"snowglobe_frame_failures_total",
	} {
		n, err := testutil.GatherAndCount(m.Registry(), name)
		require.NoError(t, err)
		assert.Equal(t, 1, n, name)
	}
}

func TestModelDirectory(t *testing.T) {
	dir := t.TempDir()
	model := "name: Tall snowman\nparts:\n  - name: body\n    points: [[0, 0, 0], [0, 1.5, 0]]\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "snowman.yaml"), []byte(model), 0o644))

	viewer := config.DefaultViewerConfig()
	viewer.ModelDir = dir
	st, err := New(context.Background(), Options{SceneID: testScene, Viewer: viewer})
	require.NoError(t, err)
	st.Assets.Wait()
	defer st.Stop()

	var found bool
	for n := range st.Graph.All() {
		if p, ok := n.(*props.Prop); ok && p.Model.Name == "Tall snowman" {
			found = true
		}
	}
	assert.True(t, found, "user model should override the bundled one")

	viewer.ModelDir = filepath.Join(dir, "missing")
	_, err = New(context.Background(), Options{SceneID: testScene, Viewer: viewer})
	assert.Error(t, err)
}

func TestResumeSkipsPausedTime(t *testing.T) {
	var mu sync.Mutex
	now := time.Unix(0, 0)
	clock := frame.NewClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	})
	advance := func(d time.Duration) {
		mu.Lock()
		now = now.Add(d)
		mu.Unlock()
	}

	st, err := New(context.Background(), Options{SceneID: testScene, Clock: clock})
	require.NoError(t, err)
	defer st.Stop()

	advance(100 * time.Millisecond)
	require.NoError(t, st.Tick())

	advance(time.Minute) // paused
	st.Resume()
	advance(50 * time.Millisecond)
	require.NoError(t, st.Tick())

	assert.Equal(t, 150*time.Millisecond, st.Elapsed())
}
