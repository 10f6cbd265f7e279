package render

import (
	"math"

	"github.com/vovakirdan/snowglobe/internal/asset"
	"github.com/vovakirdan/snowglobe/internal/core"
)

// maxLineSteps bounds the cells sampled for one line segment.
const maxLineSteps = 512

// Fog fades geometry with distance. Beyond Near glyphs take the fog color,
// past the last fifth of the range they thin out to dots, and beyond Far
// nothing is drawn. A zero Fog disables fogging.
type Fog struct {
	Near  float64
	Far   float64
	Color core.Color
}

// Enabled reports whether the fog has a usable range.
func (f Fog) Enabled() bool {
	return f.Far > 0 && f.Far > f.Near
}

// Factor returns 0 before Near, 1 at Far, linear in between.
func (f Fog) Factor(depth float64) float64 {
	if !f.Enabled() {
		return 0
	}
	return core.ClampF((depth-f.Near)/(f.Far-f.Near), 0, 1)
}

// Apply returns the glyph and color to draw at depth, or false when the
// point is lost in the fog.
func (f Fog) Apply(depth float64, r rune, c core.Color) (rune, core.Color, bool) {
	if !f.Enabled() {
		return r, c, true
	}
	k := f.Factor(depth)
	switch {
	case k >= 1:
		return 0, 0, false
	case k > 0.8:
		return '.', f.Color, true
	case k > 0.5:
		return r, f.Color, true
	default:
		return r, c, true
	}
}

// Drawable is implemented by nodes that can paint themselves.
type Drawable interface {
	Draw(p *Painter)
}

// Painter plots world-space geometry onto the screen for one frame.
type Painter struct {
	screen *core.Screen
	proj   projector
	fog    Fog
	w, h   int
	plots  int

	world   []core.Vec3 // scratch for Model
	covered []bool
}

func newPainter(screen *core.Screen, cam *Camera, fog Fog) *Painter {
	w, h := screen.Width(), screen.Height()
	return &Painter{
		screen: screen,
		proj:   cam.projector(w, h),
		fog:    fog,
		w:      w,
		h:      h,
	}
}

// Plots returns the number of cells written so far.
func (p *Painter) Plots() int {
	return p.plots
}

func (p *Painter) plot(x, y float64, depth float64, r rune, c core.Color) {
	r, c, ok := p.fog.Apply(depth, r, c)
	if !ok {
		return
	}
	if p.screen.Plot(int(math.Round(x)), int(math.Round(y)), r, c, depth) {
		p.plots++
	}
}

// Point draws a single glyph at v.
func (p *Painter) Point(v core.Vec3, r rune, c core.Color) {
	pr := p.proj.project(v)
	if !pr.front {
		return
	}
	p.plot(pr.x, pr.y, pr.depth, r, c)
}

// Line draws a segment from a to b. Depth is interpolated along the segment.
// Segments crossing the near plane draw only their visible end point.
func (p *Painter) Line(a, b core.Vec3, r rune, c core.Color) {
	pa, pb := p.proj.project(a), p.proj.project(b)
	switch {
	case !pa.front && !pb.front:
		return
	case !pa.front:
		p.plot(pb.x, pb.y, pb.depth, r, c)
		return
	case !pb.front:
		p.plot(pa.x, pa.y, pa.depth, r, c)
		return
	}

	// Skip segments entirely off one side of the screen.
	if (pa.x < 0 && pb.x < 0) || (pa.y < 0 && pb.y < 0) ||
		(pa.x >= float64(p.w) && pb.x >= float64(p.w)) ||
		(pa.y >= float64(p.h) && pb.y >= float64(p.h)) {
		return
	}

	steps := int(math.Ceil(math.Max(math.Abs(pb.x-pa.x), math.Abs(pb.y-pa.y))))
	steps = core.Clamp(steps, 1, maxLineSteps)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		p.plot(
			core.Lerp(pa.x, pb.x, t),
			core.Lerp(pa.y, pb.y, t),
			core.Lerp(pa.depth, pb.depth, t),
			r, c,
		)
	}
}

// Model draws every part of m placed by t: edges as lines and points not
// covered by an edge as single glyphs.
func (p *Painter) Model(m *asset.Model, t core.Transform) {
	if m == nil {
		return
	}
	for _, part := range m.Parts {
		world, covered := p.world[:0], p.covered[:0]
		for _, v := range part.Points {
			world = append(world, t.Apply(v))
			covered = append(covered, false)
		}
		p.world, p.covered = world, covered

		for _, e := range part.Edges {
			p.Line(world[e[0]], world[e[1]], part.Glyph, part.Color)
			covered[e[0]], covered[e[1]] = true, true
		}
		for i, v := range world {
			if !covered[i] {
				p.Point(v, part.Glyph, part.Color)
			}
		}
	}
}
