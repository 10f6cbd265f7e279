package asset

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// DefaultErrorBuffer is the capacity of the manager's error channel.
const DefaultErrorBuffer = 64

// LoadError reports a failed asynchronous load.
type LoadError struct {
	ID  string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %q: %v", e.ID, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Manager runs asynchronous loads. Each Load completes exactly once, either
// by calling its callback with the model or by reporting a LoadError;
// completion order across loads is unspecified.
type Manager struct {
	loader  Loader
	logger  *log.Logger
	hook    func(*LoadError)
	errs    chan *LoadError
	wg      sync.WaitGroup
	pending atomic.Int64
	loaded  atomic.Int64
	failed  atomic.Int64
	dropped atomic.Int64
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger used to report failures.
func WithLogger(l *log.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

// WithErrorHook registers a callback invoked for every failure, before the
// error is offered to the channel.
func WithErrorHook(fn func(*LoadError)) ManagerOption {
	return func(m *Manager) { m.hook = fn }
}

// WithErrorBuffer sets the capacity of the error channel.
func WithErrorBuffer(n int) ManagerOption {
	return func(m *Manager) {
		if n > 0 {
			m.errs = make(chan *LoadError, n)
		}
	}
}

// NewManager creates a manager loading through loader.
func NewManager(loader Loader, opts ...ManagerOption) *Manager {
	m := &Manager{loader: loader}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = log.New(io.Discard)
	}
	if m.errs == nil {
		m.errs = make(chan *LoadError, DefaultErrorBuffer)
	}
	return m
}

// Load starts loading id in the background. onLoad runs on the loader
// goroutine once the model is ready.
func (m *Manager) Load(ctx context.Context, id string, onLoad func(*Model)) {
	m.wg.Add(1)
	m.pending.Add(1)
	go func() {
		defer m.wg.Done()
		defer m.pending.Add(-1)

		model, err := m.loader.Load(ctx, id)
		if err != nil {
			m.fail(id, err)
			return
		}
		if err := m.deliver(model, onLoad); err != nil {
			m.fail(id, err)
			return
		}
		m.loaded.Add(1)
		m.logger.Debug("asset loaded", "id", id, "parts", len(model.Parts))
	}()
}

// deliver runs the callback, turning a panic into an error so that one bad
// placement callback does not take the process down.
func (m *Manager) deliver(model *Model, onLoad func(*Model)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("onLoad panic: %v", r)
		}
	}()
	if onLoad != nil {
		onLoad(model)
	}
	return nil
}

func (m *Manager) fail(id string, err error) {
	le := &LoadError{ID: id, Err: err}
	m.failed.Add(1)
	m.logger.Error("asset load failed", "id", id, "error", err)

	if m.hook != nil {
		m.hook(le)
	}

	select {
	case m.errs <- le:
	default:
		m.dropped.Add(1)
		m.logger.Warn("asset error channel full, dropping", "id", id)
	}
}

// Errors returns the channel on which load failures are published.
// The channel is never closed.
func (m *Manager) Errors() <-chan *LoadError {
	return m.errs
}

// Wait blocks until every started load has completed.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// Pending returns the number of loads still in flight.
func (m *Manager) Pending() int {
	return int(m.pending.Load())
}

// Counts returns how many loads succeeded, failed, and how many failures
// did not fit in the error channel.
func (m *Manager) Counts() (loaded, failed, dropped int64) {
	return m.loaded.Load(), m.failed.Load(), m.dropped.Load()
}
