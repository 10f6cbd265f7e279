package render

import (
	"math"
	"sync"

	"github.com/vovakirdan/snowglobe/internal/core"
)

// Orbit controller tuning.
const (
	DefaultRotateImpulse = 1.5  // rad/s added per orbit/tilt key press
	DefaultZoomImpulse   = 1.2  // log-distance/s added per zoom key press
	DefaultDamping       = 6.0  // velocity decay rate, 1/s
	DefaultAutoSpeed     = 0.21 // rad/s, one revolution in about 30 s
	minPitch             = -0.3
)

// OrbitController moves a Camera around its target from queued input.
// Key presses arrive on the UI goroutine through Queue; Update consumes them
// once per frame, after the node updates and before render.
//
// Each press adds an impulse to an angular or zoom velocity which then decays
// exponentially, so holding a key glides smoothly and releasing it eases out.
type OrbitController struct {
	camera *Camera

	RotateImpulse float64
	ZoomImpulse   float64
	Damping       float64
	AutoSpeed     float64
	MinDistance   float64
	MaxDistance   float64

	mu      sync.Mutex
	pending core.InputFrame
	auto    bool

	yawVel, pitchVel, zoomVel float64
}

// NewOrbitController creates a controller for camera. Distance limits default
// to a tenth and four times the camera's current distance.
func NewOrbitController(camera *Camera) *OrbitController {
	return &OrbitController{
		camera:        camera,
		RotateImpulse: DefaultRotateImpulse,
		ZoomImpulse:   DefaultZoomImpulse,
		Damping:       DefaultDamping,
		AutoSpeed:     DefaultAutoSpeed,
		MinDistance:   math.Max(camera.Distance/10, camera.Near*2),
		MaxDistance:   math.Max(camera.Distance*4, 1),
		pending:       core.NewInputFrame(),
	}
}

// Camera returns the controlled camera.
func (c *OrbitController) Camera() *Camera {
	return c.camera
}

// Queue records an action for the next Update. Actions the controller does
// not handle are ignored.
func (c *OrbitController) Queue(a core.Action) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending.Set(a)
}

// SetAutoRotate enables or disables continuous orbiting.
func (c *OrbitController) SetAutoRotate(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.auto = on
}

// AutoRotate reports whether continuous orbiting is enabled.
func (c *OrbitController) AutoRotate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.auto
}

// Update applies queued input and velocities for a frame of length delta
// seconds. It implements frame.Controller.
func (c *OrbitController) Update(delta float64) {
	c.mu.Lock()
	in := c.pending
	c.pending = core.NewInputFrame()

	c.yawVel += c.RotateImpulse * float64(in.Count(core.ActionOrbitRight)-in.Count(core.ActionOrbitLeft))
	c.pitchVel += c.RotateImpulse * float64(in.Count(core.ActionTiltUp)-in.Count(core.ActionTiltDown))
	c.zoomVel += c.ZoomImpulse * float64(in.Count(core.ActionZoomOut)-in.Count(core.ActionZoomIn))
	if in.Count(core.ActionAutoRotate)%2 == 1 {
		c.auto = !c.auto
	}
	auto := c.auto
	c.mu.Unlock()

	if delta <= 0 {
		return
	}

	cam := c.camera
	cam.Yaw += c.yawVel * delta
	if auto {
		cam.Yaw += c.AutoSpeed * delta
	}
	cam.Yaw = math.Remainder(cam.Yaw, 2*math.Pi)
	cam.Pitch = core.ClampF(cam.Pitch+c.pitchVel*delta, minPitch, maxPitch)
	cam.Distance = core.ClampF(cam.Distance*math.Exp(c.zoomVel*delta), c.MinDistance, c.MaxDistance)

	decay := math.Exp(-c.Damping * delta)
	c.yawVel *= decay
	c.pitchVel *= decay
	c.zoomVel *= decay
	if math.Abs(c.yawVel) < 1e-4 {
		c.yawVel = 0
	}
	if math.Abs(c.pitchVel) < 1e-4 {
		c.pitchVel = 0
	}
	if math.Abs(c.zoomVel) < 1e-4 {
		c.zoomVel = 0
	}
}
