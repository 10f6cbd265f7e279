package core

// Action represents a semantic viewer action, abstracted from physical key presses.
// This allows the camera controller to work with intents rather than raw input.
type Action int

const (
	ActionNone       Action = iota
	ActionOrbitLeft         // Left, H - rotate camera around target
	ActionOrbitRight        // Right, L
	ActionTiltUp            // Up, K - raise camera
	ActionTiltDown          // Down, J - lower camera
	ActionZoomIn            // +, = - move camera closer
	ActionZoomOut           // -, _ - move camera away
	ActionAutoRotate        // A - toggle automatic orbit
	ActionPause             // P, Space - freeze animation
	ActionBack              // B, Escape - back to menu
	ActionQuit              // Q, Ctrl+C - exit viewer
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionOrbitLeft:
		return "OrbitLeft"
	case ActionOrbitRight:
		return "OrbitRight"
	case ActionTiltUp:
		return "TiltUp"
	case ActionTiltDown:
		return "TiltDown"
	case ActionZoomIn:
		return "ZoomIn"
	case ActionZoomOut:
		return "ZoomOut"
	case ActionAutoRotate:
		return "AutoRotate"
	case ActionPause:
		return "Pause"
	case ActionBack:
		return "Back"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// InputFrame collects the actions triggered between two frames.
type InputFrame struct {
	// Actions counts how many times each action was triggered, so that a
	// held key repeating faster than the frame rate still orbits smoothly.
	Actions map[Action]int
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{
		Actions: make(map[Action]int),
	}
}

// Set records one trigger of an action.
func (f *InputFrame) Set(a Action) {
	if f.Actions == nil {
		f.Actions = make(map[Action]int)
	}
	f.Actions[a]++
}

// Count returns how many times the action was triggered this frame.
func (f InputFrame) Count(a Action) int {
	if f.Actions == nil {
		return 0
	}
	return f.Actions[a]
}

// Clear resets all actions for the next frame.
func (f *InputFrame) Clear() {
	for k := range f.Actions {
		delete(f.Actions, k)
	}
}
