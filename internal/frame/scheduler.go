package frame

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/snowglobe/internal/scene"
)

// DefaultInterval is the frame interval of the self-driven loop (60 FPS).
const DefaultInterval = time.Second / 60

// RenderFunc draws the scene. It is invoked once per frame, after all updates.
type RenderFunc func()

// Controller is a camera or input controller updated once per frame,
// after node updates and before render.
type Controller interface {
	Update(delta float64)
}

// Observer receives frame telemetry. Implementations must be cheap;
// they run on the frame goroutine.
type Observer interface {
	FrameRendered(elapsed time.Duration, nodes int)
	FrameFailed(err *FrameError)
}

// State is the lifecycle state of a Scheduler.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Stats summarises what the scheduler has done so far.
type Stats struct {
	Frames    uint64  // Frames completed
	Updates   uint64  // Node updates invoked
	Failures  uint64  // Recovered failures (all stages)
	LastDelta float64 // Delta passed to the most recent frame, in seconds
	Nodes     int     // Nodes visited by the most recent frame
}

// Scheduler runs frames over a scene graph.
//
// Frames can be driven in two ways: by the scheduler itself via Start, which
// ticks at a fixed interval on its own goroutine, or by a host calling Tick
// from its own refresh callback (the TUI does this on every tick message).
// Frames never overlap.
type Scheduler struct {
	graph      *scene.Graph
	render     RenderFunc
	clock      *Clock
	controller Controller
	interval   time.Duration
	logger     *log.Logger
	onError    func(*FrameError)
	observer   Observer

	frameMu sync.Mutex // held for the duration of a frame

	mu     sync.Mutex
	state  State
	stats  Stats
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock sets the clock used to compute frame deltas.
func WithClock(c *Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithController sets the controller updated after the nodes of each frame.
func WithController(c Controller) Option {
	return func(s *Scheduler) { s.controller = c }
}

// WithInterval sets the frame interval of the self-driven loop.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithLogger sets the logger used to report recovered failures.
func WithLogger(l *log.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// WithErrorHandler registers a callback for recovered failures.
func WithErrorHandler(fn func(*FrameError)) Option {
	return func(s *Scheduler) { s.onError = fn }
}

// WithObserver registers a telemetry observer.
func WithObserver(o Observer) Option {
	return func(s *Scheduler) { s.observer = o }
}

// New creates an idle scheduler over graph. A nil render is treated as a no-op.
func New(graph *scene.Graph, render RenderFunc, opts ...Option) *Scheduler {
	s := &Scheduler{
		graph:    graph,
		render:   render,
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.render == nil {
		s.render = func() {}
	}
	if s.clock == nil {
		s.clock = NewClock(nil)
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	return s
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Stats returns a copy of the scheduler statistics.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Tick runs exactly one frame. It returns ErrStopped without invoking
// anything once the scheduler has been stopped.
//
// Tick must not be called from inside a frame (from an Update, the
// controller or the render function).
func (s *Scheduler) Tick() error {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()

	s.mu.Lock()
	if s.state == StateStopped {
		s.mu.Unlock()
		return ErrStopped
	}
	s.state = StateRunning
	frameNo := s.stats.Frames + 1
	s.mu.Unlock()

	start := time.Now()
	delta := s.clock.Delta()

	var updates, failures uint64
	nodes := 0
	for n := range s.graph.All() {
		nodes++
		u, ok := n.(scene.Updatable)
		if !ok {
			continue
		}
		updates++
		if ferr := s.guard(frameNo, StageUpdate, n, func() { u.Update(delta) }); ferr != nil {
			failures++
		}
	}

	if s.controller != nil {
		if ferr := s.guard(frameNo, StageController, nil, func() { s.controller.Update(delta) }); ferr != nil {
			failures++
		}
	}

	if ferr := s.guard(frameNo, StageRender, nil, s.render); ferr != nil {
		failures++
	}

	s.mu.Lock()
	s.stats.Frames = frameNo
	s.stats.Updates += updates
	s.stats.Failures += failures
	s.stats.LastDelta = delta
	s.stats.Nodes = nodes
	s.mu.Unlock()

	if s.observer != nil {
		s.observer.FrameRendered(time.Since(start), nodes)
	}
	return nil
}

// guard runs fn, recovering and reporting a panic as a FrameError.
func (s *Scheduler) guard(frameNo uint64, stage Stage, node scene.Node, fn func()) (ferr *FrameError) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		ferr = &FrameError{Frame: frameNo, Stage: stage, Err: panicError(r)}
		if node != nil {
			ferr.Node = describe(node)
		}
		s.report(ferr)
	}()
	fn()
	return nil
}

func (s *Scheduler) report(ferr *FrameError) {
	s.logger.Error("frame failure",
		"frame", ferr.Frame,
		"stage", string(ferr.Stage),
		"node", ferr.Node,
		"error", ferr.Err,
	)
	if s.observer != nil {
		s.observer.FrameFailed(ferr)
	}
	if s.onError != nil {
		s.onError(ferr)
	}
}

// Start begins the self-driven loop, running one frame per interval until
// Stop is called or ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.state == StateStopped:
		return ErrStopped
	case s.done != nil:
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.state = StateRunning

	s.logger.Debug("frame loop started", "interval", s.interval)
	go s.loop(ctx, s.done)
	return nil
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.state = StateStopped
			s.mu.Unlock()
			s.logger.Debug("frame loop cancelled", "error", ctx.Err())
			return
		case <-ticker.C:
			if err := s.Tick(); errors.Is(err, ErrStopped) {
				return
			}
		}
	}
}

// Stop halts the scheduler. When Stop returns, no update, controller or
// render call is in progress and none will happen again. Stop is idempotent
// and must not be called from inside a frame.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	already := s.state == StateStopped && s.cancel == nil
	s.state = StateStopped
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	// Wait for an in-flight frame to finish.
	s.frameMu.Lock()
	//nolint:staticcheck // empty critical section is the barrier
	s.frameMu.Unlock()

	if done != nil {
		<-done
	}
	if !already {
		s.logger.Debug("frame loop stopped", "frames", s.Stats().Frames)
	}
}
