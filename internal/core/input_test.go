package core

import "testing"

func TestInputFrameCounts(t *testing.T) {
	var f InputFrame // zero value is usable
	if f.Count(ActionOrbitLeft) != 0 {
		t.Error("empty frame should have no actions")
	}

	f.Set(ActionOrbitLeft)
	f.Set(ActionOrbitLeft)
	f.Set(ActionZoomIn)

	if got := f.Count(ActionOrbitLeft); got != 2 {
		t.Errorf("Count(OrbitLeft) = %d, want 2", got)
	}
	if f.Count(ActionZoomIn) != 1 {
		t.Error("expected ZoomIn")
	}
	if f.Count(ActionTiltUp) != 0 {
		t.Error("unexpected TiltUp")
	}

	f.Clear()
	if f.Count(ActionOrbitLeft) != 0 || f.Count(ActionZoomIn) != 0 {
		t.Error("Clear should drop all actions")
	}
}

func TestActionString(t *testing.T) {
	tests := map[Action]string{
		ActionNone:       "None",
		ActionOrbitRight: "OrbitRight",
		ActionAutoRotate: "AutoRotate",
		ActionQuit:       "Quit",
		Action(99):       "Unknown",
	}
	for a, want := range tests {
		if got := a.String(); got != want {
			t.Errorf("Action(%d).String() = %q, want %q", int(a), got, want)
		}
	}
}
