package render

import (
	"math"
	"testing"

	"github.com/vovakirdan/snowglobe/internal/asset"
	"github.com/vovakirdan/snowglobe/internal/core"
	"github.com/vovakirdan/snowglobe/internal/scene"
)

const (
	testW = 80
	testH = 24
)

func testCamera() *Camera {
	return NewCamera(core.V3(0, 2, 25), core.V3(0, 0, 0), 75)
}

func TestNewCameraFromPosition(t *testing.T) {
	c := testCamera()

	if got, want := c.Distance, math.Sqrt(629); math.Abs(got-want) > 1e-9 {
		t.Errorf("Distance = %v, want %v", got, want)
	}
	if c.Yaw != 0 {
		t.Errorf("Yaw = %v, want 0", c.Yaw)
	}
	pos := c.Position()
	if pos.Distance(core.V3(0, 2, 25)) > 1e-9 {
		t.Errorf("Position() = %+v, want (0, 2, 25)", pos)
	}
}

func TestProject(t *testing.T) {
	c := testCamera()

	x, y, depth, ok := c.Project(core.V3(0, 0, 0), testW, testH)
	if !ok || x != testW/2 || y != testH/2 {
		t.Fatalf("target projects to (%d, %d, %v), want screen centre", x, y, ok)
	}
	if math.Abs(depth-c.Distance) > 1e-9 {
		t.Errorf("depth = %v, want %v", depth, c.Distance)
	}

	rx, _, _, _ := c.Project(core.V3(2, 0, 0), testW, testH)
	if rx <= x {
		t.Errorf("point to the right projected at x=%d, want > %d", rx, x)
	}
	_, uy, _, _ := c.Project(core.V3(0, 2, 0), testW, testH)
	if uy >= y {
		t.Errorf("raised point projected at y=%d, want < %d", uy, y)
	}

	if _, _, _, ok := c.Project(core.V3(0, 2, 40), testW, testH); ok {
		t.Error("point behind the camera should not be visible")
	}

	c.Far = 10
	if _, _, _, ok := c.Project(core.V3(0, 0, 0), testW, testH); ok {
		t.Error("point beyond the far plane should not be visible")
	}
}

func TestProjectCellAspect(t *testing.T) {
	c := testCamera()
	x0, _, _, _ := c.Project(core.V3(4, 0, 0), testW, testH)

	c.CellAspect = 1
	x1, _, _, _ := c.Project(core.V3(4, 0, 0), testW, testH)

	if x0-testW/2 <= x1-testW/2 {
		t.Errorf("cell aspect 2 should spread x further: %d vs %d", x0, x1)
	}
}

func TestFog(t *testing.T) {
	f := Fog{Near: 10, Far: 20, Color: core.ColorFog}

	tests := []struct {
		depth   float64
		wantR   rune
		wantC   core.Color
		visible bool
	}{
		{5, '#', core.ColorBerry, true},
		{14, '#', core.ColorBerry, true},
		{16, '#', core.ColorFog, true},
		{19, '.', core.ColorFog, true},
		{20, 0, 0, false},
		{30, 0, 0, false},
	}

	for _, tc := range tests {
		r, c, ok := f.Apply(tc.depth, '#', core.ColorBerry)
		if ok != tc.visible || (ok && (r != tc.wantR || c != tc.wantC)) {
			t.Errorf("Apply(%v) = (%q, %v, %v), want (%q, %v, %v)",
				tc.depth, r, c, ok, tc.wantR, tc.wantC, tc.visible)
		}
	}

	if r, c, ok := (Fog{}).Apply(1e6, '#', core.ColorBerry); !ok || r != '#' || c != core.ColorBerry {
		t.Error("zero fog should not change anything")
	}
	if got := f.Factor(15); got != 0.5 {
		t.Errorf("Factor(15) = %v, want 0.5", got)
	}
}

type dot struct {
	pos   core.Vec3
	glyph rune
}

func (d dot) Draw(p *Painter) { p.Point(d.pos, d.glyph, core.ColorSnow) }

type segment struct{ a, b core.Vec3 }

func (s segment) Draw(p *Painter) { p.Line(s.a, s.b, '-', core.ColorRail) }

type static struct{}

func TestRendererDrawsDrawables(t *testing.T) {
	g := scene.NewGraph()
	g.Add(static{})
	g.Add(dot{pos: core.V3(0, 0, 0), glyph: '*'})

	screen := core.NewScreen(testW, testH)
	r := NewRenderer(g, testCamera(), screen)
	r.Render()

	if got := screen.GetCell(testW/2, testH/2).Rune; got != '*' {
		t.Errorf("centre cell = %q, want '*'", got)
	}
	if r.Drawn() != 1 {
		t.Errorf("Drawn() = %d, want 1", r.Drawn())
	}
	if r.Plots() != 1 {
		t.Errorf("Plots() = %d, want 1", r.Plots())
	}
}

func TestRendererDepthTest(t *testing.T) {
	near := dot{pos: core.V3(0, 0, 0), glyph: 'N'}
	far := dot{pos: core.V3(0, -0.01, -0.5), glyph: 'F'}

	for _, order := range [][]scene.Node{{near, far}, {far, near}} {
		g := scene.NewGraph()
		for _, n := range order {
			g.Add(n)
		}
		screen := core.NewScreen(testW, testH)
		NewRenderer(g, testCamera(), screen).Render()

		if got := screen.GetCell(testW/2, testH/2).Rune; got != 'N' {
			t.Errorf("centre cell = %q, want the nearer 'N'", got)
		}
	}
}

func TestRendererClearsBetweenFrames(t *testing.T) {
	g := scene.NewGraph()
	screen := core.NewScreen(testW, testH)
	screen.Set(0, 0, 'X', core.ColorDefault)

	NewRenderer(g, testCamera(), screen).Render()
	if screen.Filled() != 0 {
		t.Errorf("Filled() = %d after rendering an empty graph", screen.Filled())
	}
}

func TestRendererFog(t *testing.T) {
	g := scene.NewGraph()
	g.Add(dot{pos: core.V3(0, 0, 0), glyph: '*'})

	screen := core.NewScreen(testW, testH)
	r := NewRenderer(g, testCamera(), screen)
	r.SetFog(Fog{Near: 2, Far: 20})
	r.Render()

	if screen.Filled() != 0 {
		t.Error("point beyond fog far should not be drawn")
	}
}

func TestPainterLine(t *testing.T) {
	g := scene.NewGraph()
	g.Add(segment{a: core.V3(-3, 0, 0), b: core.V3(3, 0, 0)})

	screen := core.NewScreen(testW, testH)
	r := NewRenderer(g, testCamera(), screen)
	r.Render()

	row := screen.Row(testH / 2)
	n := 0
	for _, ch := range row {
		if ch == '-' {
			n++
		}
	}
	if n < 5 {
		t.Errorf("line covered %d cells, want a continuous run: %q", n, row)
	}
}

func TestPainterLineBehindCamera(t *testing.T) {
	g := scene.NewGraph()
	g.Add(segment{a: core.V3(0, 0, 0), b: core.V3(0, 0, 100)})

	screen := core.NewScreen(testW, testH)
	NewRenderer(g, testCamera(), screen).Render()

	if got := screen.GetCell(testW/2, testH/2).Rune; got != '-' {
		t.Errorf("visible end point not drawn, centre = %q", got)
	}
	if screen.Filled() != 1 {
		t.Errorf("Filled() = %d, want only the visible end point", screen.Filled())
	}
}

type modelNode struct {
	m *asset.Model
	t core.Transform
}

func (n modelNode) Draw(p *Painter) { p.Model(n.m, n.t) }

func TestPainterModel(t *testing.T) {
	m := &asset.Model{ID: "post", Parts: []asset.Part{
		{Name: "pole", Glyph: '|', Color: core.ColorRail, Points: []core.Vec3{{X: 0, Y: 0, Z: 0}, {X: 0, Y: 4, Z: 0}}, Edges: [][2]int{{0, 1}}},
		{Name: "lamp", Glyph: '@', Color: core.ColorGold, Points: []core.Vec3{{X: 0, Y: 6, Z: 0}}},
	}}

	g := scene.NewGraph()
	g.Add(modelNode{m: m, t: core.At(core.V3(1, 0, 0))})

	screen := core.NewScreen(testW, testH)
	NewRenderer(g, testCamera(), screen).Render()

	var poles, lamps int
	for y := 0; y < testH; y++ {
		for x := 0; x < testW; x++ {
			switch screen.GetCell(x, y).Rune {
			case '|':
				poles++
			case '@':
				lamps++
			}
		}
	}
	if poles < 2 {
		t.Errorf("pole drew %d cells, want a vertical run", poles)
	}
	if lamps != 1 {
		t.Errorf("lamp drew %d cells, want 1", lamps)
	}
}

func TestOrbitControllerImpulses(t *testing.T) {
	cam := testCamera()
	ctl := NewOrbitController(cam)

	ctl.Queue(core.ActionOrbitLeft)
	ctl.Update(1.0 / 60)
	if cam.Yaw >= 0 {
		t.Errorf("Yaw = %v after OrbitLeft, want < 0", cam.Yaw)
	}

	ctl.Queue(core.ActionTiltUp)
	pitch := cam.Pitch
	ctl.Update(1.0 / 60)
	if cam.Pitch <= pitch {
		t.Errorf("Pitch = %v after TiltUp, want > %v", cam.Pitch, pitch)
	}

	dist := cam.Distance
	ctl.Queue(core.ActionZoomIn)
	ctl.Update(1.0 / 60)
	if cam.Distance >= dist {
		t.Errorf("Distance = %v after ZoomIn, want < %v", cam.Distance, dist)
	}
}

func TestOrbitControllerDamping(t *testing.T) {
	cam := testCamera()
	ctl := NewOrbitController(cam)

	ctl.Queue(core.ActionOrbitRight)
	for i := 0; i < 200; i++ {
		ctl.Update(0.1)
	}
	if ctl.yawVel != 0 || ctl.pitchVel != 0 || ctl.zoomVel != 0 {
		t.Error("velocity should decay to rest")
	}

	yaw := cam.Yaw
	ctl.Update(0.1)
	if cam.Yaw != yaw {
		t.Errorf("camera drifted at rest: %v -> %v", yaw, cam.Yaw)
	}
}

func TestOrbitControllerLimits(t *testing.T) {
	cam := testCamera()
	ctl := NewOrbitController(cam)

	for i := 0; i < 100; i++ {
		ctl.Queue(core.ActionZoomIn)
		ctl.Queue(core.ActionTiltUp)
		ctl.Update(0.1)
	}
	if cam.Distance < ctl.MinDistance-1e-9 {
		t.Errorf("Distance = %v, below MinDistance %v", cam.Distance, ctl.MinDistance)
	}
	if cam.Pitch > maxPitch {
		t.Errorf("Pitch = %v, above %v", cam.Pitch, maxPitch)
	}

	for i := 0; i < 200; i++ {
		ctl.Queue(core.ActionZoomOut)
		ctl.Queue(core.ActionTiltDown)
		ctl.Update(0.1)
	}
	if cam.Distance > ctl.MaxDistance+1e-9 {
		t.Errorf("Distance = %v, above MaxDistance %v", cam.Distance, ctl.MaxDistance)
	}
	if cam.Pitch < minPitch {
		t.Errorf("Pitch = %v, below %v", cam.Pitch, minPitch)
	}
}

func TestOrbitControllerAutoRotate(t *testing.T) {
	cam := testCamera()
	ctl := NewOrbitController(cam)

	ctl.Queue(core.ActionAutoRotate)
	ctl.Update(0)
	if !ctl.AutoRotate() {
		t.Fatal("AutoRotate toggle should be consumed even with zero delta")
	}
	if cam.Yaw != 0 {
		t.Errorf("zero delta moved the camera: yaw %v", cam.Yaw)
	}

	ctl.Update(1)
	if math.Abs(cam.Yaw-ctl.AutoSpeed) > 1e-9 {
		t.Errorf("Yaw = %v after 1s, want %v", cam.Yaw, ctl.AutoSpeed)
	}

	ctl.Queue(core.ActionAutoRotate)
	ctl.Queue(core.ActionAutoRotate)
	ctl.Update(0)
	if !ctl.AutoRotate() {
		t.Error("two toggles in one frame should cancel out")
	}

	ctl.SetAutoRotate(false)
	yaw := cam.Yaw
	ctl.Update(1)
	if cam.Yaw != yaw {
		t.Error("camera rotated with auto-rotate off")
	}
}
