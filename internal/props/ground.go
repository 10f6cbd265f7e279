package props

import (
	"math"

	"github.com/vovakirdan/snowglobe/internal/core"
	"github.com/vovakirdan/snowglobe/internal/render"
)

// Ground is a flat plane at y = 0 drawn as a sparse lattice of glyphs.
type Ground struct {
	Glyph  rune
	Color  core.Color
	points []core.Vec3
}

// NewDisc creates a round ground of the given radius centred on the origin.
func NewDisc(radius, spacing float64) *Ground {
	g := &Ground{Glyph: '.', Color: core.ColorStone}
	if spacing <= 0 || radius <= 0 {
		return g
	}
	n := int(math.Floor(radius / spacing))
	for i := -n; i <= n; i++ {
		for j := -n; j <= n; j++ {
			p := core.V3(float64(i)*spacing, 0, float64(j)*spacing)
			if p.Length() <= radius {
				g.points = append(g.points, p)
			}
		}
	}
	return g
}

// NewSquare creates a square ground with the given side centred on the origin.
func NewSquare(size, spacing float64) *Ground {
	g := &Ground{Glyph: '.', Color: core.ColorFrost}
	if spacing <= 0 || size <= 0 {
		return g
	}
	half := size / 2
	n := int(math.Floor(half / spacing))
	for i := -n; i <= n; i++ {
		for j := -n; j <= n; j++ {
			g.points = append(g.points, core.V3(float64(i)*spacing, 0, float64(j)*spacing))
		}
	}
	return g
}

// Points returns the lattice points of the ground.
func (g *Ground) Points() []core.Vec3 {
	return g.points
}

// Draw implements render.Drawable.
func (g *Ground) Draw(p *render.Painter) {
	for _, v := range g.points {
		p.Point(v, g.Glyph, g.Color)
	}
}

func (g *Ground) String() string { return "ground" }

// LightKind identifies the kind of a scene light.
type LightKind int

const (
	LightAmbient LightKind = iota
	LightDirectional
	LightHemisphere
)

// Light is scene lighting data. The terminal renderer has no shading, so a
// light is a static node: it is neither updated nor drawn.
type Light struct {
	Kind      LightKind
	Color     core.Color
	Intensity float64
	Position  core.Vec3
}

func (l *Light) String() string {
	switch l.Kind {
	case LightDirectional:
		return "directional-light"
	case LightHemisphere:
		return "hemisphere-light"
	default:
		return "ambient-light"
	}
}
