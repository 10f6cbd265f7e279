// Package core provides fundamental types and utilities for the viewer.
// It contains no external dependencies (especially no Bubble Tea) to keep
// scene logic pure and testable.
package core

import "math"

// Vec3 is a point or direction in world space.
// Y is up; the ground plane is y = 0.
type Vec3 struct {
	X, Y, Z float64
}

// V3 is shorthand for constructing a Vec3.
func V3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Dot(o Vec3) float64   { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) Length() float64      { return math.Sqrt(v.Dot(v)) }

// Mul multiplies component-wise.
func (v Vec3) Mul(o Vec3) Vec3 { return Vec3{v.X * o.X, v.Y * o.Y, v.Z * o.Z} }

// Cross returns the cross product v × o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{v.Y*o.Z - v.Z*o.Y, v.Z*o.X - v.X*o.Z, v.X*o.Y - v.Y*o.X}
}

// Normalize returns v scaled to unit length, or the zero vector.
func (v Vec3) Normalize() Vec3 {
	if l := v.Length(); l != 0 {
		return v.Scale(1 / l)
	}
	return Vec3{}
}

// Distance returns the distance between two points.
func (v Vec3) Distance(o Vec3) float64 { return v.Sub(o).Length() }

// RotateY rotates v around the Y axis by angle radians
// (counter-clockwise when looking down from +Y).
func (v Vec3) RotateY(angle float64) Vec3 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Vec3{v.X*c + v.Z*s, v.Y, -v.X*s + v.Z*c}
}

// Transform places a model in the world: scale, then yaw, then translate.
type Transform struct {
	Position Vec3
	Yaw      float64 // Rotation around Y in radians
	Scale    Vec3
}

// Identity returns a transform that leaves points unchanged.
func Identity() Transform {
	return Transform{Scale: Vec3{1, 1, 1}}
}

// At returns an identity transform translated to p.
func At(p Vec3) Transform {
	t := Identity()
	t.Position = p
	return t
}

// Apply maps a model-space point into world space.
func (t Transform) Apply(p Vec3) Vec3 {
	return p.Mul(t.Scale).RotateY(t.Yaw).Add(t.Position)
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Lerp interpolates linearly between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
