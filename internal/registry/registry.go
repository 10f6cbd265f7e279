// Package registry provides a global registry for scene factories.
// Scenes register themselves in init() functions, allowing the platform
// to discover and instantiate scenes without hardcoded dependencies.
package registry

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/snowglobe/internal/asset"
	"github.com/vovakirdan/snowglobe/internal/config"
	"github.com/vovakirdan/snowglobe/internal/render"
	"github.com/vovakirdan/snowglobe/internal/scene"
)

// Scene populates a scene graph. Scenes hold no per-frame logic of their
// own: behaviour lives in the nodes they add.
type Scene interface {
	// ID returns a unique identifier for this scene (e.g., "village").
	// Used for CLI commands and session history.
	ID() string

	// Title returns a human-readable name for display (e.g., "Snowy Village").
	Title() string

	// Build adds the scene's static nodes, configures camera and fog, and
	// starts the asset loads whose callbacks add the rest. It must not block
	// on those loads.
	Build(ctx context.Context, env *Env) error
}

// Env is everything a scene needs to build itself. It is passed explicitly
// instead of living in package globals, so several scenes can run side by
// side (one per SSH session).
type Env struct {
	Graph    *scene.Graph
	Assets   *asset.Manager
	Camera   *render.Camera
	Renderer *render.Renderer
	Logger   *log.Logger

	ConfigPath string              // Custom scene config file, empty for the search order
	Detail     config.DetailPreset // Population preset
	Seed       int64

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewRand returns a new generator derived from the env seed. Scenes take one
// per load callback or animated group so that no generator is shared between
// goroutines, and call it in a fixed order during Build so a seed always
// reproduces the same scene.
func (e *Env) NewRand() *rand.Rand {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(e.Seed))
	}
	return rand.New(rand.NewSource(e.rng.Int63()))
}

// SceneInfo contains metadata about a registered scene.
type SceneInfo struct {
	ID    string
	Title string
}

// Factory is a function that creates a new instance of a scene.
type Factory func() Scene

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a scene factory to the registry.
// Typically called from a scene's init() function.
// Panics if a scene with the same ID is already registered.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: scene %q already registered", id))
	}

	factories[id] = f

	// Get title by creating a temporary instance
	titles[id] = f().Title()
}

// List returns information about all registered scenes, sorted by ID.
func List() []SceneInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]SceneInfo, 0, len(factories))
	for id := range factories {
		result = append(result, SceneInfo{
			ID:    id,
			Title: titles[id],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create instantiates a new scene by its ID.
// Returns an error if the scene ID is not registered.
func Create(id string) (Scene, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[id]
	if !ok {
		return nil, fmt.Errorf("registry: unknown scene %q", id)
	}

	return f(), nil
}

// Exists checks if a scene with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
