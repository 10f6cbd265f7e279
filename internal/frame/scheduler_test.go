package frame

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vovakirdan/snowglobe/internal/scene"
)

type recorder struct {
	name   string
	deltas []float64
	log    *[]string
}

func (r *recorder) Update(delta float64) {
	r.deltas = append(r.deltas, delta)
	if r.log != nil {
		*r.log = append(*r.log, r.name)
	}
}

func (r *recorder) String() string { return r.name }

type staticNode struct{ touched bool }

type controllerFunc func(float64)

func (f controllerFunc) Update(delta float64) { f(delta) }

func TestTickDeltasFollowClock(t *testing.T) {
	ms := time.Millisecond
	ft := newFakeTime(0, 10*ms, 30*ms, 60*ms, 100*ms)

	g := scene.NewGraph()
	r := &recorder{name: "r"}
	g.Add(r)

	s := New(g, nil, WithClock(NewClock(ft.Now)))
	for i := 0; i < 4; i++ {
		if err := s.Tick(); err != nil {
			t.Fatalf("Tick() failed: %v", err)
		}
	}

	expected := []float64{0.010, 0.020, 0.030, 0.040}
	if len(r.deltas) != len(expected) {
		t.Fatalf("got %d updates, expected %d", len(r.deltas), len(expected))
	}
	for i, want := range expected {
		if math.Abs(r.deltas[i]-want) > 1e-9 {
			t.Errorf("frame %d delta = %f, expected %f", i+1, r.deltas[i], want)
		}
	}
	if got := s.Stats().LastDelta; math.Abs(got-0.040) > 1e-9 {
		t.Errorf("Stats().LastDelta = %f, expected 0.040", got)
	}
}

func TestTickOrder(t *testing.T) {
	var calls []string
	g := scene.NewGraph()
	g.Add(&recorder{name: "a", log: &calls})
	g.Add(&staticNode{})
	g.Add(&recorder{name: "b", log: &calls})

	ctrl := controllerFunc(func(float64) { calls = append(calls, "controller") })
	render := func() { calls = append(calls, "render") }

	s := New(g, render, WithController(ctrl))
	if err := s.Tick(); err != nil {
		t.Fatalf("Tick() failed: %v", err)
	}

	expected := []string{"a", "b", "controller", "render"}
	if len(calls) != len(expected) {
		t.Fatalf("calls = %v, expected %v", calls, expected)
	}
	for i := range expected {
		if calls[i] != expected[i] {
			t.Errorf("call %d = %q, expected %q", i, calls[i], expected[i])
		}
	}

	stats := s.Stats()
	if stats.Frames != 1 || stats.Updates != 2 || stats.Nodes != 3 {
		t.Errorf("Stats() = %+v, expected 1 frame, 2 updates, 3 nodes", stats)
	}
}

func TestStateTransitions(t *testing.T) {
	s := New(scene.NewGraph(), nil)

	if s.State() != StateIdle {
		t.Errorf("initial state = %v, expected idle", s.State())
	}
	_ = s.Tick()
	if s.State() != StateRunning {
		t.Errorf("state after Tick = %v, expected running", s.State())
	}
	s.Stop()
	if s.State() != StateStopped {
		t.Errorf("state after Stop = %v, expected stopped", s.State())
	}
}

func TestTickAfterStop(t *testing.T) {
	g := scene.NewGraph()
	r := &recorder{name: "r"}
	g.Add(r)

	rendered := 0
	s := New(g, func() { rendered++ })
	_ = s.Tick()
	s.Stop()
	s.Stop() // idempotent

	if err := s.Tick(); !errors.Is(err, ErrStopped) {
		t.Errorf("Tick() after Stop = %v, expected ErrStopped", err)
	}
	if len(r.deltas) != 1 || rendered != 1 {
		t.Errorf("invocations after Stop: updates=%d renders=%d, expected 1 and 1", len(r.deltas), rendered)
	}
	if err := s.Start(context.Background()); !errors.Is(err, ErrStopped) {
		t.Errorf("Start() after Stop = %v, expected ErrStopped", err)
	}
}

func TestStartRunsLoopUntilStop(t *testing.T) {
	var frames atomic.Int64
	s := New(scene.NewGraph(), func() { frames.Add(1) }, WithInterval(time.Millisecond))

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if err := s.Start(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start() = %v, expected ErrAlreadyRunning", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for frames.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if frames.Load() < 3 {
		t.Fatalf("loop rendered %d frames, expected at least 3", frames.Load())
	}

	s.Stop()
	after := frames.Load()
	time.Sleep(20 * time.Millisecond)
	if frames.Load() != after {
		t.Errorf("frames advanced after Stop: %d -> %d", after, frames.Load())
	}
}

func TestContextCancelEndsLoop(t *testing.T) {
	var frames atomic.Int64
	s := New(scene.NewGraph(), func() { frames.Add(1) }, WithInterval(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for s.State() != StateStopped && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if s.State() != StateStopped {
		t.Fatalf("state = %v after cancel, expected stopped", s.State())
	}
	s.Stop()
}

func TestControllerAndRenderPanicsAreIsolated(t *testing.T) {
	g := scene.NewGraph()
	r := &recorder{name: "r"}
	g.Add(r)

	var stages []Stage
	ctrl := controllerFunc(func(float64) { panic("orbit exploded") })
	s := New(g, func() { panic(errors.New("no terminal")) },
		WithController(ctrl),
		WithErrorHandler(func(e *FrameError) { stages = append(stages, e.Stage) }),
	)

	for i := 0; i < 3; i++ {
		if err := s.Tick(); err != nil {
			t.Fatalf("Tick() failed: %v", err)
		}
	}

	if len(r.deltas) != 3 {
		t.Errorf("node updated %d times, expected 3", len(r.deltas))
	}
	if len(stages) != 6 {
		t.Fatalf("reported %d failures, expected 6", len(stages))
	}
	if stages[0] != StageController || stages[1] != StageRender {
		t.Errorf("stages = %v, expected controller then render", stages[:2])
	}
	if s.Stats().Failures != 6 {
		t.Errorf("Stats().Failures = %d, expected 6", s.Stats().Failures)
	}
}

func TestFrameErrorUnwrap(t *testing.T) {
	sentinel := errors.New("bad mesh")
	g := scene.NewGraph()
	g.Add(updateFunc(func(float64) { panic(sentinel) }))

	var got *FrameError
	s := New(g, nil, WithErrorHandler(func(e *FrameError) { got = e }))
	_ = s.Tick()

	if got == nil {
		t.Fatal("expected a FrameError")
	}
	if !errors.Is(got, sentinel) {
		t.Errorf("errors.Is(%v, sentinel) = false", got)
	}
	if got.Frame != 1 || got.Stage != StageUpdate {
		t.Errorf("FrameError = %+v, expected frame 1 update", got)
	}
}

type updateFunc func(float64)

func (f updateFunc) Update(delta float64) { f(delta) }

type countingObserver struct {
	frames   int
	failures int
	nodes    int
}

func (o *countingObserver) FrameRendered(_ time.Duration, nodes int) {
	o.frames++
	o.nodes = nodes
}

func (o *countingObserver) FrameFailed(*FrameError) { o.failures++ }

func TestObserver(t *testing.T) {
	g := scene.NewGraph()
	g.Add(&staticNode{})
	g.Add(updateFunc(func(float64) { panic("boom") }))

	obs := &countingObserver{}
	s := New(g, nil, WithObserver(obs))
	_ = s.Tick()
	_ = s.Tick()

	if obs.frames != 2 || obs.failures != 2 || obs.nodes != 2 {
		t.Errorf("observer = %+v, expected 2 frames, 2 failures, 2 nodes", obs)
	}
}
