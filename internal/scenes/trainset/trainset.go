// Package trainset implements the miniature train set scene: a small loop
// of track with locomotives chasing each other, a decorated tree ringed by
// presents, a forest pushed to the edge of a square floor, and three
// instanced snowflake fields.
package trainset

import (
	"context"
	"fmt"
	"math"

	"github.com/vovakirdan/snowglobe/internal/asset"
	"github.com/vovakirdan/snowglobe/internal/config"
	"github.com/vovakirdan/snowglobe/internal/core"
	"github.com/vovakirdan/snowglobe/internal/layout"
	"github.com/vovakirdan/snowglobe/internal/props"
	"github.com/vovakirdan/snowglobe/internal/registry"
	"github.com/vovakirdan/snowglobe/internal/render"
)

// ID is the registry identifier of the scene.
const ID = "trainset"

// Model ids used by the scene. Flake field models come from config.
const (
	ModelRail    = "rail-bend"
	ModelLoco    = "train-locomotive"
	ModelTree    = "tree-snow"
	ModelCenter  = "tree-decorated"
	ModelPresent = "present-cube"
)

func init() {
	registry.Register(ID, func() registry.Scene { return New() })
}

// Scene is the miniature train set.
type Scene struct{}

// New creates the scene.
func New() *Scene {
	return &Scene{}
}

// ID implements registry.Scene.
func (s *Scene) ID() string { return ID }

// Title implements registry.Scene.
func (s *Scene) Title() string { return "Train Set" }

// Build implements registry.Scene.
func (s *Scene) Build(ctx context.Context, env *registry.Env) error {
	cfg, err := config.LoadTrainset(env.ConfigPath)
	if err != nil {
		return fmt.Errorf("trainset: %w", err)
	}
	config.ApplyTrainsetPreset(&cfg, env.Detail)

	env.Camera.Target = cfg.Camera.Target.Vec()
	env.Camera.SetPosition(cfg.Camera.Position.Vec())
	env.Camera.FOV = layout.Deg(cfg.Camera.FOV)
	env.Renderer.SetFog(render.Fog{Near: cfg.Fog.Near, Far: cfg.Fog.Far, Color: core.ColorFog})

	g := env.Graph
	g.Add(&props.Light{Kind: props.LightDirectional, Color: core.ColorSnow, Intensity: 0.5, Position: core.V3(0, 32, -32)})
	g.Add(&props.Light{Kind: props.LightAmbient, Color: core.ColorNight, Intensity: 0.2})
	g.Add(props.NewSquare(cfg.Floor.Size, cfg.Floor.Spacing))

	treeRng := env.NewRand()

	center := cfg.Track.Center.Vec()

	env.Assets.Load(ctx, ModelRail, func(m *asset.Model) {
		for _, t := range TrackTransforms(center, cfg.Track.Radius, cfg.Track.Bends) {
			g.Add(props.NewProp(m, t))
		}
	})

	env.Assets.Load(ctx, ModelLoco, func(m *asset.Model) {
		n := cfg.Locomotives.Count
		for i := 0; i < n; i++ {
			phase := -float64(i) * 2 * math.Pi / float64(n)
			g.Add(props.NewOrbiter(m, center, cfg.Track.Radius, cfg.Locomotives.Speed, phase))
		}
	})

	env.Assets.Load(ctx, ModelTree, func(m *asset.Model) {
		positions := layout.ScatterOutside(treeRng, cfg.Trees.Count, cfg.Trees.Clear, cfg.Trees.Push)
		g.Add(props.NewInstanced(m, positions))
	})

	env.Assets.Load(ctx, ModelCenter, func(m *asset.Model) {
		g.Add(props.NewProp(m, core.Identity()))
	})

	env.Assets.Load(ctx, ModelPresent, func(m *asset.Model) {
		n := cfg.Presents.Count
		if n <= 0 {
			return
		}
		// The ring starts one step past angle zero.
		step := 2 * math.Pi / float64(n)
		for _, p := range layout.Ring(n, cfg.Presents.Radius, core.Vec3{}, step) {
			g.Add(props.NewProp(m, core.At(p)))
		}
	})

	for _, id := range cfg.Flakes.Models {
		rng := env.NewRand()
		env.Assets.Load(ctx, id, func(m *asset.Model) {
			g.Add(props.NewFlakeField(rng, m, cfg.Flakes.Count, cfg.Flakes.Radius))
		})
	}

	env.Logger.Debug("trainset built",
		"static_nodes", g.Len(),
		"pending_loads", env.Assets.Pending(),
	)
	return nil
}

// TrackTransforms places bends rail pieces around center. Each piece is
// turned by a further 360/bends degrees and shifted so the pieces join into
// a closed loop of the given radius.
func TrackTransforms(center core.Vec3, radius float64, bends int) []core.Transform {
	if bends <= 0 {
		return nil
	}
	out := make([]core.Transform, bends)
	for i := range out {
		angle := float64(i) * 2 * math.Pi / float64(bends)
		t := core.Identity()
		t.Yaw = angle
		t.Position = core.V3(
			center.X+math.Cos(-math.Pi/4+angle)*radius,
			center.Y,
			center.Z-math.Sin(-math.Pi/4+angle)*radius,
		)
		out[i] = t
	}
	return out
}
