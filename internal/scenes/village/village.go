// Package village implements the snowy village scene: a decorated tree in
// the middle of a round clearing, a locomotive circling it, presents, rocks,
// pines, snow patches and swaying snowmen scattered around, and a heavy
// snowfall over everything.
package village

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/vovakirdan/snowglobe/internal/asset"
	"github.com/vovakirdan/snowglobe/internal/config"
	"github.com/vovakirdan/snowglobe/internal/core"
	"github.com/vovakirdan/snowglobe/internal/layout"
	"github.com/vovakirdan/snowglobe/internal/props"
	"github.com/vovakirdan/snowglobe/internal/registry"
	"github.com/vovakirdan/snowglobe/internal/render"
)

// ID is the registry identifier of the scene.
const ID = "village"

// Model ids used by the scene.
const (
	ModelTree      = "tree-decorated"
	ModelTrain     = "train-locomotive"
	ModelPresent   = "present"
	ModelRock      = "rock-formation"
	ModelPine      = "tree-pine-snow"
	ModelSnowPatch = "snow-patch"
	ModelSnowman   = "snowman"
)

func init() {
	registry.Register(ID, func() registry.Scene { return New() })
}

// Scene is the snowy village.
type Scene struct{}

// New creates the scene.
func New() *Scene {
	return &Scene{}
}

// ID implements registry.Scene.
func (s *Scene) ID() string { return ID }

// Title implements registry.Scene.
func (s *Scene) Title() string { return "Snowy Village" }

// Build implements registry.Scene.
func (s *Scene) Build(ctx context.Context, env *registry.Env) error {
	cfg, err := config.LoadVillage(env.ConfigPath)
	if err != nil {
		return fmt.Errorf("village: %w", err)
	}
	config.ApplyVillagePreset(&cfg, env.Detail)

	env.Camera.Target = cfg.Camera.Target.Vec()
	env.Camera.SetPosition(cfg.Camera.Position.Vec())
	env.Camera.FOV = layout.Deg(cfg.Camera.FOV)
	env.Renderer.SetFog(render.Fog{Near: cfg.Fog.Near, Far: cfg.Fog.Far, Color: core.ColorFog})

	g := env.Graph
	g.Add(props.NewDisc(cfg.Ground.Radius, cfg.Ground.Spacing))
	g.Add(&props.Light{Kind: props.LightDirectional, Color: core.ColorSnow, Intensity: 2, Position: core.V3(0, 2, 0)})
	g.Add(&props.Light{Kind: props.LightHemisphere, Color: core.ColorNight, Intensity: 1})

	// Generators are drawn in a fixed order here, before any load completes.
	flakeRng := env.NewRand()
	presentRng := env.NewRand()
	rockRng := env.NewRand()
	pineRng := env.NewRand()
	patchRng := env.NewRand()
	snowmanRng := env.NewRand()

	env.Assets.Load(ctx, ModelTree, func(m *asset.Model) {
		g.Add(props.NewProp(m, props.Scaled(core.Vec3{}, cfg.Tree.Scale)))
	})

	env.Assets.Load(ctx, ModelTrain, func(m *asset.Model) {
		g.Add(props.NewOrbiter(m, core.Vec3{}, cfg.Train.Radius, layout.Deg(cfg.Train.SpeedDeg), 0))
	})

	loadScattered(ctx, env, ModelPresent, presentRng, cfg.Presents)
	loadScattered(ctx, env, ModelRock, rockRng, cfg.Rocks)
	loadScattered(ctx, env, ModelPine, pineRng, cfg.Pines)
	loadScattered(ctx, env, ModelSnowPatch, patchRng, cfg.SnowPatches)

	env.Assets.Load(ctx, ModelSnowman, func(m *asset.Model) {
		for _, p := range layout.Scatter(snowmanRng, cfg.Snowmen.Count, cfg.Snowmen.Radius) {
			g.Add(props.NewWobbler(m, p, cfg.Snowmen.SwaySpeed))
		}
	})

	// Snowflakes are plain particles, no model to wait for.
	sf := cfg.Snowflakes
	for i := 0; i < sf.Count; i++ {
		initial := layout.RandomInBox(flakeRng, sf.Box)
		initial.Y += sf.Lift
		flake := props.NewSnowflake(flakeRng, initial, sf.Floor)
		flake.SetSize(flakeRng.Float64() * props.MaxFlakeSize)
		g.Add(flake)
	}

	env.Logger.Debug("village built",
		"static_nodes", g.Len(),
		"pending_loads", env.Assets.Pending(),
	)
	return nil
}

// loadScattered places sc.Count copies of a model on the ground around the
// centre once it has loaded.
func loadScattered(ctx context.Context, env *registry.Env, id string, rng *rand.Rand, sc config.ScatterConfig) {
	env.Assets.Load(ctx, id, func(m *asset.Model) {
		for _, p := range layout.Scatter(rng, sc.Count, sc.Radius) {
			env.Graph.Add(props.NewProp(m, core.At(p)))
		}
	})
}
