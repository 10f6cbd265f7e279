// Package render draws a scene graph into a core.Screen.
//
// Nodes opt into drawing by implementing Drawable; the Renderer visits the
// graph once per frame and hands every Drawable a Painter that projects
// world-space points through a perspective Camera, depth-tests each cell and
// applies linear fog.
package render

import (
	"math"

	"github.com/vovakirdan/snowglobe/internal/core"
)

// DefaultCellAspect is the height/width ratio of a terminal cell.
const DefaultCellAspect = 2.0

// maxPitch keeps the camera away from the poles where the view basis
// degenerates.
const maxPitch = math.Pi/2 - 0.05

// Camera is a perspective camera orbiting a target point.
// Yaw 0 and pitch 0 put the camera on the +Z axis looking towards -Z.
type Camera struct {
	Target   core.Vec3
	Distance float64
	Yaw      float64 // Rotation around Y, radians
	Pitch    float64 // Elevation above the target, radians
	FOV      float64 // Vertical field of view, radians
	Near     float64
	Far      float64

	// CellAspect compensates for terminal cells being taller than wide.
	CellAspect float64
}

// NewCamera creates a camera at position looking at target, with a vertical
// field of view in degrees.
func NewCamera(position, target core.Vec3, fovDeg float64) *Camera {
	c := &Camera{
		Target:     target,
		FOV:        fovDeg * math.Pi / 180,
		Near:       0.1,
		Far:        1000,
		CellAspect: DefaultCellAspect,
	}
	c.SetPosition(position)
	return c
}

// SetPosition moves the camera to p, keeping the target.
func (c *Camera) SetPosition(p core.Vec3) {
	c.Distance = p.Distance(c.Target)
	if c.Distance == 0 {
		c.Yaw, c.Pitch = 0, 0
		return
	}
	rel := p.Sub(c.Target)
	c.Yaw = math.Atan2(rel.X, rel.Z)
	c.Pitch = math.Asin(core.ClampF(rel.Y/c.Distance, -1, 1))
	c.Pitch = core.ClampF(c.Pitch, -maxPitch, maxPitch)
}

// Position returns the camera position in world space.
func (c *Camera) Position() core.Vec3 {
	cp := math.Cos(c.Pitch)
	return c.Target.Add(core.V3(
		math.Sin(c.Yaw)*cp*c.Distance,
		math.Sin(c.Pitch)*c.Distance,
		math.Cos(c.Yaw)*cp*c.Distance,
	))
}

// basis returns the camera position and its right, up and forward vectors.
func (c *Camera) basis() (pos, right, up, forward core.Vec3) {
	pos = c.Position()
	forward = c.Target.Sub(pos).Normalize()
	if forward == (core.Vec3{}) {
		forward = core.V3(0, 0, -1)
	}
	right = forward.Cross(core.V3(0, 1, 0)).Normalize()
	if right == (core.Vec3{}) {
		right = core.V3(1, 0, 0)
	}
	up = right.Cross(forward)
	return pos, right, up, forward
}

// projection is a point in screen space with sub-cell precision.
type projection struct {
	x, y  float64
	depth float64
	front bool // Between the near and far planes
}

// projector caches the camera basis for a frame.
type projector struct {
	pos, right, up, forward core.Vec3
	focal, aspect           float64
	near, far               float64
	cx, cy                  float64
}

func (c *Camera) projector(w, h int) projector {
	pos, right, up, forward := c.basis()
	fov := c.FOV
	if fov <= 0 || fov >= math.Pi {
		fov = math.Pi / 3
	}
	aspect := c.CellAspect
	if aspect <= 0 {
		aspect = DefaultCellAspect
	}
	return projector{
		pos: pos, right: right, up: up, forward: forward,
		focal:  float64(h) / 2 / math.Tan(fov/2),
		aspect: aspect,
		near:   c.Near,
		far:    c.Far,
		cx:     float64(w) / 2,
		cy:     float64(h) / 2,
	}
}

func (p projector) project(v core.Vec3) projection {
	rel := v.Sub(p.pos)
	z := rel.Dot(p.forward)
	if z < p.near || (p.far > 0 && z > p.far) {
		return projection{depth: z}
	}
	return projection{
		x:     p.cx + rel.Dot(p.right)/z*p.focal*p.aspect,
		y:     p.cy - rel.Dot(p.up)/z*p.focal,
		depth: z,
		front: true,
	}
}

// Project maps a world-space point onto a w×h screen. It returns the cell,
// the distance along the view direction, and whether the point lands on
// screen between the near and far planes.
func (c *Camera) Project(v core.Vec3, w, h int) (x, y int, depth float64, visible bool) {
	pr := c.projector(w, h).project(v)
	if !pr.front {
		return 0, 0, pr.depth, false
	}
	x, y = int(math.Round(pr.x)), int(math.Round(pr.y))
	return x, y, pr.depth, x >= 0 && x < w && y >= 0 && y < h
}
