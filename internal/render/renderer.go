package render

import (
	"sync/atomic"

	"github.com/vovakirdan/snowglobe/internal/core"
	"github.com/vovakirdan/snowglobe/internal/scene"
)

// Renderer draws a graph through a camera into a screen.
type Renderer struct {
	graph  *scene.Graph
	camera *Camera
	screen *core.Screen
	fog    Fog

	drawn atomic.Int64 // Drawables visited by the last Render
	plots atomic.Int64 // Cells written by the last Render
}

// NewRenderer creates a renderer. The screen may be resized between frames.
func NewRenderer(graph *scene.Graph, camera *Camera, screen *core.Screen) *Renderer {
	return &Renderer{graph: graph, camera: camera, screen: screen}
}

// SetFog sets the fog applied from the next frame on.
func (r *Renderer) SetFog(f Fog) {
	r.fog = f
}

// Fog returns the current fog.
func (r *Renderer) Fog() Fog {
	return r.fog
}

// Camera returns the camera the renderer projects through.
func (r *Renderer) Camera() *Camera {
	return r.camera
}

// Screen returns the target screen.
func (r *Renderer) Screen() *core.Screen {
	return r.screen
}

// Render clears the screen and paints every Drawable node in graph order.
// It has the signature of frame.RenderFunc.
func (r *Renderer) Render() {
	r.screen.Clear()
	p := newPainter(r.screen, r.camera, r.fog)

	var drawn int64
	for n := range r.graph.All() {
		d, ok := n.(Drawable)
		if !ok {
			continue
		}
		d.Draw(p)
		drawn++
	}
	r.drawn.Store(drawn)
	r.plots.Store(int64(p.Plots()))
}

// Drawn returns how many nodes the last frame painted.
func (r *Renderer) Drawn() int {
	return int(r.drawn.Load())
}

// Plots returns how many cells the last frame wrote.
func (r *Renderer) Plots() int {
	return int(r.plots.Load())
}
