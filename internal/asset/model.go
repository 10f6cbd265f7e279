// Package asset loads scene models. Models are small wireframe/point-cloud
// descriptions stored as YAML, one file per model; a Manager loads them
// asynchronously and surfaces failures on an error channel.
package asset

import (
	"fmt"

	"github.com/vovakirdan/snowglobe/internal/core"
)

// Model is a loaded asset: named parts drawn with their own glyph and color.
type Model struct {
	ID    string
	Name  string
	Parts []Part
}

// Part is a group of points sharing a glyph and color. Edges connect points
// by index and are drawn as lines; points not covered by an edge are drawn
// on their own.
type Part struct {
	Name   string
	Glyph  rune
	Color  core.Color
	Points []core.Vec3
	Edges  [][2]int
}

// Clone returns a deep copy so that clones can be placed and animated
// independently of the cached original.
func (m *Model) Clone() *Model {
	if m == nil {
		return nil
	}
	c := &Model{ID: m.ID, Name: m.Name, Parts: make([]Part, len(m.Parts))}
	for i, p := range m.Parts {
		c.Parts[i] = Part{
			Name:   p.Name,
			Glyph:  p.Glyph,
			Color:  p.Color,
			Points: append([]core.Vec3(nil), p.Points...),
			Edges:  append([][2]int(nil), p.Edges...),
		}
	}
	return c
}

// Part returns the part with the given name.
func (m *Model) Part(name string) (Part, bool) {
	for _, p := range m.Parts {
		if p.Name == name {
			return p, true
		}
	}
	return Part{}, false
}

// Bounds returns the axis-aligned bounds of all points.
func (m *Model) Bounds() (lo, hi core.Vec3) {
	first := true
	for _, p := range m.Parts {
		for _, v := range p.Points {
			if first {
				lo, hi = v, v
				first = false
				continue
			}
			lo = core.V3(min(lo.X, v.X), min(lo.Y, v.Y), min(lo.Z, v.Z))
			hi = core.V3(max(hi.X, v.X), max(hi.Y, v.Y), max(hi.Z, v.Z))
		}
	}
	return lo, hi
}

// validate checks structural invariants of a decoded model.
func (m *Model) validate() error {
	if len(m.Parts) == 0 {
		return fmt.Errorf("model has no parts")
	}
	for _, p := range m.Parts {
		if len(p.Points) == 0 {
			return fmt.Errorf("part %q has no points", p.Name)
		}
		for _, e := range p.Edges {
			if e[0] < 0 || e[0] >= len(p.Points) || e[1] < 0 || e[1] >= len(p.Points) {
				return fmt.Errorf("part %q: edge %v out of range (%d points)", p.Name, e, len(p.Points))
			}
		}
	}
	return nil
}
