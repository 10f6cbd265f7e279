// Package props provides the node kinds the holiday scenes are built from.
//
// Every prop is a plain value added to a scene.Graph. Props that move
// implement scene.Updatable, props that show up on screen implement
// render.Drawable; a Light implements neither and is carried along as
// static scene data.
package props

import (
	"github.com/vovakirdan/snowglobe/internal/asset"
	"github.com/vovakirdan/snowglobe/internal/core"
	"github.com/vovakirdan/snowglobe/internal/render"
)

// Prop is a static model instance.
type Prop struct {
	Model     *asset.Model
	Transform core.Transform
}

// NewProp places model with transform t.
func NewProp(model *asset.Model, t core.Transform) *Prop {
	return &Prop{Model: model, Transform: t}
}

// Draw implements render.Drawable.
func (p *Prop) Draw(pt *render.Painter) {
	pt.Model(p.Model, p.Transform)
}

// String names the prop after its model in logs and frame errors.
func (p *Prop) String() string {
	if p.Model == nil {
		return "prop"
	}
	return p.Model.ID
}

// Instanced draws one model at many transforms from a single node.
type Instanced struct {
	Model      *asset.Model
	Transforms []core.Transform
}

// NewInstanced places model at every position with identity rotation and scale.
func NewInstanced(model *asset.Model, positions []core.Vec3) *Instanced {
	in := &Instanced{Model: model, Transforms: make([]core.Transform, len(positions))}
	for i, p := range positions {
		in.Transforms[i] = core.At(p)
	}
	return in
}

// Draw implements render.Drawable.
func (in *Instanced) Draw(pt *render.Painter) {
	for _, t := range in.Transforms {
		pt.Model(in.Model, t)
	}
}

// Len returns the number of instances.
func (in *Instanced) Len() int {
	return len(in.Transforms)
}

func (in *Instanced) String() string {
	if in.Model == nil {
		return "instanced"
	}
	return in.Model.ID + "[instanced]"
}

// Scaled returns an identity transform at p with a uniform scale.
func Scaled(p core.Vec3, s float64) core.Transform {
	t := core.At(p)
	t.Scale = core.V3(s, s, s)
	return t
}
