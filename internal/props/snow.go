package props

import (
	"math"
	"math/rand"

	"github.com/vovakirdan/snowglobe/internal/asset"
	"github.com/vovakirdan/snowglobe/internal/core"
	"github.com/vovakirdan/snowglobe/internal/layout"
	"github.com/vovakirdan/snowglobe/internal/render"
)

// referenceRate is the frame rate snowflake velocities are expressed at.
const referenceRate = 60

// MaxFlakeSize is the upper bound of a snowflake's random size.
const MaxFlakeSize = 0.3

// Snowflake is a falling particle. Its velocity is a random direction per
// 1/60 s whose vertical component always points down; once below Floor the
// flake returns to where it started with a fresh direction.
//
// Flakes created together share one rng and must all be updated from the
// same goroutine.
type Snowflake struct {
	Size     float64 // In [0, MaxFlakeSize); picks the glyph
	Glyph    rune
	Color    core.Color
	Position core.Vec3
	Initial  core.Vec3
	Velocity core.Vec3
	Floor    float64

	rng *rand.Rand
}

// NewSnowflake creates a flake at initial with a random direction.
func NewSnowflake(rng *rand.Rand, initial core.Vec3, floor float64) *Snowflake {
	return &Snowflake{
		Glyph:    '*',
		Color:    core.ColorSnow,
		Position: initial,
		Initial:  initial,
		Velocity: layout.RandomDirection(rng),
		Floor:    floor,
		rng:      rng,
	}
}

// SetSize sets the flake size and the glyph and colour drawn for it.
func (s *Snowflake) SetSize(size float64) {
	s.Size = size
	s.Glyph, s.Color = flakeLook(size)
}

// flakeLook maps a size to a glyph and colour, light for the smallest third
// of the range and heavy for the largest.
func flakeLook(size float64) (rune, core.Color) {
	switch {
	case size < MaxFlakeSize/3:
		return '.', core.ColorFrost
	case size < 2*MaxFlakeSize/3:
		return '+', core.ColorSnow
	}
	return '*', core.ColorSnow
}

// Update implements scene.Updatable.
func (s *Snowflake) Update(delta float64) {
	if s.Velocity.Y > 0 {
		s.Velocity.Y = -s.Velocity.Y
	}
	s.Position = s.Position.Add(s.Velocity.Scale(delta * referenceRate))
	if s.Position.Y < s.Floor {
		s.Position = s.Initial
		s.Velocity = layout.RandomDirection(s.rng)
	}
}

// Draw implements render.Drawable.
func (s *Snowflake) Draw(p *render.Painter) {
	p.Point(s.Position, s.Glyph, s.Color)
}

func (s *Snowflake) String() string { return "snowflake" }

// FlakeField is a single node animating many instanced flakes of one model
// inside a dome of the given radius.
type FlakeField struct {
	Model  *asset.Model
	Radius float64
	Flakes []core.Transform

	rng *rand.Rand
}

// NewFlakeField scatters count flakes of model over the upper half of a
// sphere of radius, each with a random size in [0, 1).
func NewFlakeField(rng *rand.Rand, model *asset.Model, count int, radius float64) *FlakeField {
	f := &FlakeField{Model: model, Radius: radius, Flakes: make([]core.Transform, count), rng: rng}
	for i := range f.Flakes {
		s := rng.Float64()
		f.Flakes[i] = Scaled(f.spawnPoint(), s)
	}
	return f
}

func (f *FlakeField) spawnPoint() core.Vec3 {
	p := layout.RandomDirection(f.rng).Scale(f.Radius)
	p.Y = math.Abs(p.Y)
	return p
}

// Update implements scene.Updatable. Flakes drift sideways at random,
// sink in proportion to their size, spin a little, and respawn on the dome
// once they touch the ground.
func (f *FlakeField) Update(delta float64) {
	for i := range f.Flakes {
		t := &f.Flakes[i]
		t.Position.X += delta * float64(layout.RandomBetween(f.rng, -2, 2))
		t.Position.Y -= delta * t.Scale.X * 2
		t.Position.Z += delta * float64(layout.RandomBetween(f.rng, -2, 2))
		t.Yaw += f.rng.Float64() * 0.1

		if t.Position.Y-t.Scale.Y/2 < 0 {
			t.Position = f.spawnPoint()
		}
	}
}

// Draw implements render.Drawable.
func (f *FlakeField) Draw(p *render.Painter) {
	for _, t := range f.Flakes {
		p.Model(f.Model, t)
	}
}

func (f *FlakeField) String() string {
	if f.Model == nil {
		return "flakes"
	}
	return f.Model.ID + "[field]"
}
