package props

import (
	"math"

	"github.com/vovakirdan/snowglobe/internal/asset"
	"github.com/vovakirdan/snowglobe/internal/core"
)

// Orbiter moves a model around a horizontal circle, facing along its path.
// The angle grows counter-clockwise seen from above.
type Orbiter struct {
	Prop
	Center core.Vec3
	Radius float64
	Speed  float64 // rad/s
	Angle  float64 // rad
}

// NewOrbiter creates an orbiter starting at angle phase and places it.
func NewOrbiter(model *asset.Model, center core.Vec3, radius, speed, phase float64) *Orbiter {
	o := &Orbiter{
		Prop:   Prop{Model: model, Transform: core.Identity()},
		Center: center,
		Radius: radius,
		Speed:  speed,
		Angle:  phase,
	}
	o.place()
	return o
}

// Update implements scene.Updatable.
func (o *Orbiter) Update(delta float64) {
	o.Angle += o.Speed * delta
	o.place()
}

func (o *Orbiter) place() {
	o.Transform.Position = o.Center.Add(core.V3(
		math.Cos(o.Angle)*o.Radius,
		0,
		-math.Sin(o.Angle)*o.Radius,
	))
	o.Transform.Yaw = math.Pi/2 + o.Angle
}

// Wobbler sways a model around its vertical axis, reversing direction once
// the yaw passes Limit either way.
type Wobbler struct {
	Prop
	Speed float64 // rad/s
	Limit float64 // rad
	dir   float64
}

// NewWobbler creates a wobbler at position p turning at speed rad/s
// with a π/4 limit.
func NewWobbler(model *asset.Model, p core.Vec3, speed float64) *Wobbler {
	return &Wobbler{
		Prop:  Prop{Model: model, Transform: core.At(p)},
		Speed: speed,
		Limit: math.Pi / 4,
		dir:   1,
	}
}

// Update implements scene.Updatable.
func (w *Wobbler) Update(delta float64) {
	w.Transform.Yaw += w.dir * w.Speed * delta
	if math.Abs(w.Transform.Yaw) > w.Limit {
		w.dir = -w.dir
	}
}

// Direction returns +1 or -1.
func (w *Wobbler) Direction() float64 {
	return w.dir
}
