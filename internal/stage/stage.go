// Package stage assembles a running scene: graph, screen, camera, orbit
// controls, renderer, asset manager and frame scheduler, wired together and
// populated by a registered scene.
package stage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/snowglobe/internal/asset"
	"github.com/vovakirdan/snowglobe/internal/config"
	"github.com/vovakirdan/snowglobe/internal/core"
	"github.com/vovakirdan/snowglobe/internal/frame"
	"github.com/vovakirdan/snowglobe/internal/metrics"
	"github.com/vovakirdan/snowglobe/internal/registry"
	"github.com/vovakirdan/snowglobe/internal/render"
	"github.com/vovakirdan/snowglobe/internal/scene"
	"github.com/vovakirdan/snowglobe/internal/storage"
)

// Options configures a stage.
type Options struct {
	SceneID    string
	Runtime    core.RuntimeConfig // Screen size and seed; Seed 0 picks one from the time
	Viewer     config.ViewerConfig
	Detail     config.DetailPreset
	ConfigPath string // Scene config override
	Origin     string // Session origin recorded in history ("local", "ssh", "bench")

	Loader  asset.Loader     // Nil loads Viewer.ModelDir over the bundled models
	Clock   *frame.Clock     // Nil uses the wall clock
	Logger  *log.Logger      // Nil discards
	Metrics *metrics.Metrics // Optional

	// OnFrameError is called for every recovered frame failure.
	OnFrameError func(*frame.FrameError)
}

// Stage is one running scene.
type Stage struct {
	Scene      registry.Scene
	Graph      *scene.Graph
	Screen     *core.Screen
	Camera     *render.Camera
	Controller *render.OrbitController
	Renderer   *render.Renderer
	Assets     *asset.Manager
	Scheduler  *frame.Scheduler

	opts    Options
	clock   *frame.Clock
	seed    int64
	elapsed atomic.Int64 // Sum of frame deltas, nanoseconds
}

// New builds the stage and runs the scene's Build. Asset loads started by
// Build keep completing in the background; ctx cancels those still pending.
func New(ctx context.Context, opts Options) (*Stage, error) {
	sc, err := registry.Create(opts.SceneID)
	if err != nil {
		return nil, err
	}

	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Origin == "" {
		opts.Origin = "local"
	}
	rt := opts.Runtime
	if rt.ScreenW <= 0 || rt.ScreenH <= 0 {
		def := core.DefaultConfig()
		rt.ScreenW, rt.ScreenH = def.ScreenW, def.ScreenH
	}
	seed := rt.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	loader := opts.Loader
	if loader == nil {
		loader, err = modelLoader(opts.Viewer.ModelDir)
		if err != nil {
			return nil, err
		}
	}

	logger := opts.Logger.With("scene", sc.ID())

	s := &Stage{
		Scene: sc,
		Graph: scene.NewGraph(),
		opts:  opts,
		seed:  seed,
	}
	s.Screen = core.NewScreen(rt.ScreenW, rt.ScreenH)
	s.Camera = render.NewCamera(core.V3(0, 0, 10), core.Vec3{}, 60)
	if opts.Viewer.CellAspect > 0 {
		s.Camera.CellAspect = opts.Viewer.CellAspect
	}
	s.Renderer = render.NewRenderer(s.Graph, s.Camera, s.Screen)
	s.Controller = render.NewOrbitController(s.Camera)
	s.Controller.SetAutoRotate(opts.Viewer.AutoRotate)

	assetOpts := []asset.ManagerOption{
		asset.WithLogger(logger),
		asset.WithErrorBuffer(opts.Viewer.ErrorBuffer),
	}
	schedOpts := []frame.Option{
		frame.WithController(frameTimer{s}),
		frame.WithLogger(logger),
		frame.WithErrorHandler(opts.OnFrameError),
	}
	if opts.Viewer.FPS > 0 {
		schedOpts = append(schedOpts, frame.WithInterval(time.Second/time.Duration(opts.Viewer.FPS)))
	}
	if opts.Metrics != nil {
		obs := opts.Metrics.Scene(sc.ID())
		assetOpts = append(assetOpts, asset.WithErrorHook(obs.LoadFailed))
		schedOpts = append(schedOpts, frame.WithObserver(obs))
	}
	s.Assets = asset.NewManager(loader, assetOpts...)

	env := &registry.Env{
		Graph:      s.Graph,
		Assets:     s.Assets,
		Camera:     s.Camera,
		Renderer:   s.Renderer,
		Logger:     logger,
		ConfigPath: opts.ConfigPath,
		Detail:     opts.Detail,
		Seed:       seed,
	}
	if err := sc.Build(ctx, env); err != nil {
		return nil, fmt.Errorf("stage: build %s: %w", sc.ID(), err)
	}

	// The clock starts after Build so that the first delta does not include
	// the time spent building.
	s.clock = opts.Clock
	if s.clock == nil {
		s.clock = frame.NewClock(nil)
	}
	schedOpts = append(schedOpts, frame.WithClock(s.clock))
	s.Scheduler = frame.New(s.Graph, s.Renderer.Render, schedOpts...)

	logger.Info("scene ready",
		"seed", seed,
		"detail", opts.Detail,
		"nodes", s.Graph.Len(),
		"pending_loads", s.Assets.Pending(),
	)
	return s, nil
}

// frameTimer is the scheduler's controller: it accumulates scene time and
// then updates the orbit controls.
type frameTimer struct{ s *Stage }

func (f frameTimer) Update(delta float64) {
	f.s.elapsed.Add(int64(delta * float64(time.Second)))
	f.s.Controller.Update(delta)
}

// modelLoader chains an optional user model directory over the bundled models.
func modelLoader(dir string) (asset.Loader, error) {
	builtin := asset.NewCatalog(nil)
	if dir == "" {
		return builtin, nil
	}
	if strings.HasPrefix(dir, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("stage: cannot get home directory: %w", err)
		}
		dir = filepath.Join(home, dir[1:])
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("stage: model directory %s is not readable", dir)
	}
	return asset.Chain{asset.NewCatalog(os.DirFS(dir)), builtin}, nil
}

// Tick runs one frame.
func (s *Stage) Tick() error {
	return s.Scheduler.Tick()
}

// Start runs frames on the scheduler's own goroutine at the viewer FPS.
func (s *Stage) Start(ctx context.Context) error {
	return s.Scheduler.Start(ctx)
}

// Queue forwards a camera action to the orbit controls.
func (s *Stage) Queue(a core.Action) {
	s.Controller.Queue(a)
}

// Resize changes the screen size. It must not run concurrently with a frame.
func (s *Stage) Resize(width, height int) {
	s.Screen.Resize(width, height)
}

// Stop halts the frame loop. Pending asset loads are left to finish on their
// own; their nodes are simply never drawn.
func (s *Stage) Stop() {
	s.Scheduler.Stop()
}

// Resume discards the time since the last frame, so that a paused host
// does not hand the scene one long delta when it starts ticking again.
func (s *Stage) Resume() {
	s.clock.Reset()
}

// Seed returns the seed the scene was built with.
func (s *Stage) Seed() int64 {
	return s.seed
}

// Elapsed returns the scene time covered by the frames run so far.
func (s *Stage) Elapsed() time.Duration {
	return time.Duration(s.elapsed.Load())
}

// Session summarises the stage for the history store.
func (s *Stage) Session() storage.Session {
	stats := s.Scheduler.Stats()
	_, failed, _ := s.Assets.Counts()
	return storage.Session{
		SceneID:      s.Scene.ID(),
		Origin:       s.opts.Origin,
		Seed:         s.seed,
		Frames:       int64(stats.Frames),
		Duration:     s.Elapsed(),
		NodeFailures: int64(stats.Failures),
		LoadFailures: failed,
	}
}
