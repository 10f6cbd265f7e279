package village

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/snowglobe/internal/asset"
	"github.com/vovakirdan/snowglobe/internal/config"
	"github.com/vovakirdan/snowglobe/internal/core"
	"github.com/vovakirdan/snowglobe/internal/props"
	"github.com/vovakirdan/snowglobe/internal/registry"
	"github.com/vovakirdan/snowglobe/internal/render"
	"github.com/vovakirdan/snowglobe/internal/scene"
)

// missing fails every load of the listed ids and delegates the rest.
type missing struct {
	next asset.Loader
	ids  map[string]bool
}

func (m missing) Load(ctx context.Context, id string) (*asset.Model, error) {
	if m.ids[id] {
		return nil, fmt.Errorf("%w: %s", asset.ErrNotFound, id)
	}
	return m.next.Load(ctx, id)
}

func newEnv(t *testing.T, loader asset.Loader, seed int64) *registry.Env {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	g := scene.NewGraph()
	cam := render.NewCamera(core.V3(0, 0, 10), core.Vec3{}, 60)
	return &registry.Env{
		Graph:    g,
		Assets:   asset.NewManager(loader),
		Camera:   cam,
		Renderer: render.NewRenderer(g, cam, core.NewScreen(80, 24)),
		Logger:   log.New(io.Discard),
		Seed:     seed,
	}
}

func build(t *testing.T, env *registry.Env) {
	t.Helper()
	require.NoError(t, New().Build(context.Background(), env))
	env.Assets.Wait()
}

func TestRegistered(t *testing.T) {
	require.True(t, registry.Exists(ID))
	s, err := registry.Create(ID)
	require.NoError(t, err)
	assert.Equal(t, "Snowy Village", s.Title())
}

func TestBuildDefaults(t *testing.T) {
	env := newEnv(t, asset.NewCatalog(nil), 1)
	build(t, env)

	// ground + 2 lights + 2000 flakes + tree + train + 100 presents
	// + 30 rocks + 200 pines + 200 patches + 200 snowmen
	assert.Equal(t, 2735, env.Graph.Len())

	loaded, failed, _ := env.Assets.Counts()
	assert.EqualValues(t, 7, loaded)
	assert.Zero(t, failed)

	assert.InDelta(t, 25, env.Camera.Position().Z, 1e-9)
	assert.InDelta(t, 2, env.Camera.Position().Y, 1e-9)
	fog := env.Renderer.Fog()
	assert.Equal(t, 2.0, fog.Near)
	assert.Equal(t, 50.0, fog.Far)

	var orbiters, wobblers, flakes int
	glyphs := make(map[rune]int)
	env.Graph.ForEach(func(n scene.Node) {
		switch v := n.(type) {
		case *props.Orbiter:
			orbiters++
		case *props.Wobbler:
			wobblers++
		case *props.Snowflake:
			flakes++
			glyphs[v.Glyph]++
			assert.GreaterOrEqual(t, v.Size, 0.0)
			assert.Less(t, v.Size, props.MaxFlakeSize)
		}
	})
	assert.Equal(t, 1, orbiters)
	assert.Equal(t, 200, wobblers)
	assert.Equal(t, 2000, flakes)
	// Sizes are uniform, so every size band is well populated.
	for _, r := range []rune{'.', '+', '*'} {
		assert.Greater(t, glyphs[r], 400, "glyph %q", r)
	}
}

func TestBuildLowDetail(t *testing.T) {
	env := newEnv(t, asset.NewCatalog(nil), 1)
	env.Detail = config.DetailLow
	build(t, env)

	// ground + 2 lights + 500 flakes + tree + train + 25 presents
	// + 8 rocks + 50 pines + 50 patches + 50 snowmen
	assert.Equal(t, 688, env.Graph.Len())
}

func TestLoadFailureKeepsTheRest(t *testing.T) {
	loader := missing{next: asset.NewCatalog(nil), ids: map[string]bool{ModelTree: true}}
	env := newEnv(t, loader, 1)
	build(t, env)

	assert.Equal(t, 2734, env.Graph.Len())

	select {
	case le := <-env.Assets.Errors():
		assert.Equal(t, ModelTree, le.ID)
		assert.True(t, errors.Is(le, asset.ErrNotFound))
	default:
		t.Fatal("expected a load error on the channel")
	}

	_, failed, _ := env.Assets.Counts()
	assert.EqualValues(t, 1, failed)
}

func TestSameSeedSameScene(t *testing.T) {
	positions := func(seed int64) []string {
		env := newEnv(t, asset.NewCatalog(nil), seed)
		build(t, env)

		var out []string
		env.Graph.ForEach(func(n scene.Node) {
			switch v := n.(type) {
			case *props.Prop:
				out = append(out, fmt.Sprintf("%s %.4f", v.Model.ID, v.Transform.Position))
			case *props.Wobbler:
				out = append(out, fmt.Sprintf("snowman %.4f", v.Transform.Position))
			case *props.Snowflake:
				out = append(out, fmt.Sprintf("flake %.4f %.4f", v.Position, v.Size))
			}
		})
		// Load callbacks complete in any order.
		sort.Strings(out)
		return out
	}

	a := positions(42)
	assert.Equal(t, a, positions(42))
	assert.NotEqual(t, a, positions(43))
}

func TestFramesAnimate(t *testing.T) {
	env := newEnv(t, asset.NewCatalog(nil), 3)
	build(t, env)

	var train *props.Orbiter
	env.Graph.ForEach(func(n scene.Node) {
		if o, ok := n.(*props.Orbiter); ok {
			train = o
		}
	})
	require.NotNil(t, train)

	before := train.Transform.Position
	for n := range env.Graph.All() {
		if u, ok := n.(scene.Updatable); ok {
			u.Update(0.5)
		}
	}
	assert.NotEqual(t, before, train.Transform.Position)
	assert.InDelta(t, 27, train.Transform.Position.Length(), 1e-9)

	env.Renderer.Render()
	assert.Positive(t, env.Renderer.Drawn())
}
