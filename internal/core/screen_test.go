package core

import (
	"strings"
	"testing"
)

func TestNewScreen(t *testing.T) {
	s := NewScreen(80, 24)

	if s.Width() != 80 {
		t.Errorf("Width() = %d, expected 80", s.Width())
	}
	if s.Height() != 24 {
		t.Errorf("Height() = %d, expected 24", s.Height())
	}

	// Check that it's initialized with spaces
	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			if s.GetCell(x, y).Rune != ' ' {
				t.Errorf("New screen should be filled with spaces, got %q at (%d, %d)", s.GetCell(x, y).Rune, x, y)
			}
		}
	}
	if s.Filled() != 0 {
		t.Errorf("Filled() = %d, expected 0", s.Filled())
	}
}

func TestScreenPlotDepthTest(t *testing.T) {
	s := NewScreen(10, 10)

	if !s.Plot(3, 3, '*', ColorSnow, 10) {
		t.Fatal("Plot into empty cell should succeed")
	}
	if s.Plot(3, 3, '#', ColorPine, 12) {
		t.Error("Plot behind existing geometry should be rejected")
	}
	if s.GetCell(3, 3).Rune != '*' {
		t.Errorf("GetCell(3, 3).Rune = %q, expected '*'", s.GetCell(3, 3).Rune)
	}
	if !s.Plot(3, 3, '#', ColorPine, 5) {
		t.Error("Plot in front of existing geometry should succeed")
	}

	cell := s.GetCell(3, 3)
	if cell.Rune != '#' || cell.Color != ColorPine || cell.Depth != 5 {
		t.Errorf("GetCell(3, 3) = %+v, expected '#' pine at depth 5", cell)
	}
}

func TestScreenOutOfBounds(t *testing.T) {
	s := NewScreen(10, 10)

	// Out of bounds should be silent
	s.Set(-1, 0, 'A', ColorDefault)
	s.Set(100, 0, 'A', ColorDefault)
	if s.Plot(0, -1, 'A', ColorDefault, 1) {
		t.Error("Plot out of bounds should report false")
	}

	if s.GetCell(100, 0).Rune != ' ' {
		t.Error("Out of bounds GetCell should return an empty cell")
	}
}

func TestScreenOverlayBeatsGeometry(t *testing.T) {
	s := NewScreen(10, 2)
	s.DrawText(0, 0, "fps 30", ColorGold)

	if s.Plot(0, 0, '*', ColorSnow, 0.5) {
		t.Error("geometry should not overwrite overlay text")
	}
	if s.Row(0) != "fps 30    " {
		t.Errorf("Row(0) = %q", s.Row(0))
	}
}

func TestScreenClear(t *testing.T) {
	s := NewScreen(10, 10)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			s.Plot(x, y, 'X', ColorSnow, 1)
		}
	}

	s.Clear()

	if s.Filled() != 0 {
		t.Errorf("After Clear, Filled() = %d, expected 0", s.Filled())
	}
	if !s.Plot(0, 0, 'Y', ColorSnow, 1000) {
		t.Error("After Clear, any depth should pass the depth test")
	}
}

func TestScreenResize(t *testing.T) {
	s := NewScreen(10, 5)
	s.Plot(1, 1, 'X', ColorSnow, 1)

	s.Resize(20, 8)
	if s.Width() != 20 || s.Height() != 8 {
		t.Errorf("after Resize: %dx%d, expected 20x8", s.Width(), s.Height())
	}
	if s.Filled() != 0 {
		t.Error("Resize should discard content")
	}

	s.Resize(-3, 2)
	if s.Width() != 0 {
		t.Errorf("negative width should clamp to 0, got %d", s.Width())
	}
}

func TestScreenString(t *testing.T) {
	s := NewScreen(3, 2)
	s.Plot(0, 0, 'A', ColorSnow, 1)
	s.Plot(2, 1, 'B', ColorSnow, 1)

	expected := "A  \n  B"
	if s.String() != expected {
		t.Errorf("String() = %q, expected %q", s.String(), expected)
	}
	if !strings.Contains(s.Row(1), "B") {
		t.Errorf("Row(1) = %q, expected to contain B", s.Row(1))
	}
	if s.Row(5) != "   " {
		t.Errorf("Row(5) = %q, expected blanks", s.Row(5))
	}
}
