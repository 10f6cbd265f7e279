// Package layout computes procedural placements for scene props:
// random directions, ground scatter, rings and random boxes.
// All randomness comes from the caller's *rand.Rand so scenes stay
// reproducible for a given seed.
package layout

import (
	"math"
	"math/rand"

	"github.com/vovakirdan/snowglobe/internal/core"
)

// RandomDirection returns a unit vector uniformly distributed on the sphere.
func RandomDirection(rng *rand.Rand) core.Vec3 {
	u := (rng.Float64() - 0.5) * 2 // cos of polar angle, uniform in [-1, 1]
	t := rng.Float64() * 2 * math.Pi
	f := math.Sqrt(1 - u*u)
	return core.V3(f*math.Cos(t), u, f*math.Sin(t))
}

// Scatter returns n ground positions: random directions scaled by radius,
// then flattened onto y = 0. Points cluster towards the rim, which suits
// forests and rocks framing a centre piece.
func Scatter(rng *rand.Rand, n int, radius float64) []core.Vec3 {
	out := make([]core.Vec3, n)
	for i := range out {
		p := RandomDirection(rng).Scale(radius)
		p.Y = 0
		out[i] = p
	}
	return out
}

// ScatterOutside is like Scatter but pushes points that land within clear of
// the origin out by push, keeping the centre free for the main props.
func ScatterOutside(rng *rand.Rand, n int, clear, push float64) []core.Vec3 {
	out := make([]core.Vec3, n)
	for i := range out {
		p := RandomDirection(rng)
		if p.Length() < clear {
			p = p.Scale(push)
		}
		p.Y = 0
		out[i] = p
	}
	return out
}

// Ring returns n positions evenly spaced on a horizontal circle around
// center, starting at angle phase (radians). Angles advance counter-clockwise
// seen from above: x = cos, z = sin.
func Ring(n int, radius float64, center core.Vec3, phase float64) []core.Vec3 {
	if n <= 0 {
		return nil
	}
	out := make([]core.Vec3, n)
	step := 2 * math.Pi / float64(n)
	for i := range out {
		a := phase + float64(i)*step
		out[i] = center.Add(core.V3(math.Cos(a)*radius, 0, math.Sin(a)*radius))
	}
	return out
}

// RandomInBox returns a point with each coordinate uniform in [-size/2, size/2).
func RandomInBox(rng *rand.Rand, size float64) core.Vec3 {
	return core.V3(
		rng.Float64()*size-size/2,
		rng.Float64()*size-size/2,
		rng.Float64()*size-size/2,
	)
}

// RandomBetween returns an integer in [min, max] using rounding, so the end
// points are half as likely as the interior values.
func RandomBetween(rng *rand.Rand, min, max int) int {
	return min + int(math.Round(float64(max-min)*rng.Float64()))
}

// Deg converts degrees to radians.
func Deg(d float64) float64 {
	return d * math.Pi / 180
}
