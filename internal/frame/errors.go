package frame

import (
	"errors"
	"fmt"
)

var (
	// ErrStopped is returned by Tick and Start once the scheduler was stopped.
	ErrStopped = errors.New("frame: scheduler stopped")

	// ErrAlreadyRunning is returned by Start when the loop is already active.
	ErrAlreadyRunning = errors.New("frame: scheduler already running")
)

// Stage identifies which part of a frame failed.
type Stage string

const (
	StageUpdate     Stage = "update"
	StageController Stage = "controller"
	StageRender     Stage = "render"
)

// FrameError describes a recovered failure inside a frame.
type FrameError struct {
	Frame uint64 // Frame number, starting at 1
	Stage Stage
	Node  string // Node description; empty for controller and render
	Err   error
}

func (e *FrameError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("frame %d: %s %s: %v", e.Frame, e.Stage, e.Node, e.Err)
	}
	return fmt.Sprintf("frame %d: %s: %v", e.Frame, e.Stage, e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// panicError converts a recovered value into an error.
func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}

// describe returns a short description of a node for logs and errors.
func describe(n any) string {
	if s, ok := n.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", n)
}
