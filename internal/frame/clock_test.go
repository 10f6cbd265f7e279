package frame

import (
	"math"
	"testing"
	"time"
)

// fakeTime replays a fixed sequence of timestamps.
type fakeTime struct {
	times []time.Time
	i     int
}

func newFakeTime(offsets ...time.Duration) *fakeTime {
	base := time.Date(2023, 12, 24, 18, 0, 0, 0, time.UTC)
	f := &fakeTime{}
	for _, o := range offsets {
		f.times = append(f.times, base.Add(o))
	}
	return f
}

func (f *fakeTime) Now() time.Time {
	t := f.times[f.i]
	if f.i < len(f.times)-1 {
		f.i++
	}
	return t
}

func TestClockDeltaSequence(t *testing.T) {
	ms := time.Millisecond
	ft := newFakeTime(0, 16*ms, 33*ms, 50*ms, 100*ms, 101*ms)
	c := NewClock(ft.Now)

	expected := []float64{0.016, 0.017, 0.017, 0.050, 0.001}
	for i, want := range expected {
		got := c.Delta()
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("Delta() #%d = %f, expected %f", i+1, got, want)
		}
	}
}

func TestClockFirstDeltaIsSinceConstruction(t *testing.T) {
	ft := newFakeTime(0, 250*time.Millisecond)
	c := NewClock(ft.Now)

	if got := c.Delta(); math.Abs(got-0.25) > 1e-9 {
		t.Errorf("first Delta() = %f, expected 0.25", got)
	}
}

func TestClockBackwardsYieldsZero(t *testing.T) {
	ft := newFakeTime(time.Second, 0)
	c := NewClock(ft.Now)

	if got := c.Delta(); got != 0 {
		t.Errorf("Delta() = %f, expected 0 for a clock going backwards", got)
	}
}

func TestClockDefaultsToWallTime(t *testing.T) {
	c := NewClock(nil)
	time.Sleep(2 * time.Millisecond)

	if got := c.Delta(); got <= 0 {
		t.Errorf("Delta() = %f, expected positive", got)
	}
}

func TestClockResetSkipsPause(t *testing.T) {
	ms := time.Millisecond
	ft := newFakeTime(0, 20*ms, 5000*ms, 5010*ms)
	c := NewClock(ft.Now)

	c.Delta() // 20ms
	c.Reset() // paused until 5000ms
	if got := c.Delta(); math.Abs(got-0.010) > 1e-9 {
		t.Errorf("Delta() after Reset = %f, expected 0.010", got)
	}
}
