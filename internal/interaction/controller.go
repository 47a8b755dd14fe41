// Package interaction turns pointer, wheel and touch input into decal
// manipulation and model orbit/zoom.
package interaction

import (
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/garment-designer/internal/decal"
	"github.com/Faultbox/garment-designer/internal/geometry"
	"github.com/Faultbox/garment-designer/internal/logger"
	"github.com/Faultbox/garment-designer/pkg/math"
)

// OrbitSpeed is radians of model rotation per pointer pixel.
const OrbitSpeed = 0.01

// State is the controller's input mode.
type State int

const (
	StateIdle State = iota
	StateOrbiting
	StatePinchZooming
	StateManipulating
)

func (s State) String() string {
	switch s {
	case StateOrbiting:
		return "orbiting"
	case StatePinchZooming:
		return "pinch-zooming"
	case StateManipulating:
		return "manipulating-decal"
	default:
		return "idle"
	}
}

// Viewport is what the controller needs from the model host.
type Viewport interface {
	View() geometry.View
	// RaycastUV returns the texture coordinate under a viewport pixel.
	RaycastUV(x, y float64) (math.Vec2, bool)
	Orbit(dYaw, dPitch float64)
	Zoom(delta float64)
	Pinch(delta float64)
}

// Target is a decal and the handle under a pointer.
type Target struct {
	Ref    decal.Ref
	Handle geometry.Handle
}

// baseline is the decal state captured when a manipulation starts.
type baseline struct {
	startX, startY float64
	offsetX        float64
	offsetY        float64
	angle          float64
	rotation       float64
	distance       float64
	scale          float64
	width          float64
	height         float64
}

// Controller is the input state machine. It holds the live interaction
// state directly; the store remains the single owner of decal data.
type Controller struct {
	store *decal.Store
	vp    Viewport
	log   *zap.Logger

	state  State
	handle geometry.Handle
	target decal.Ref
	base   baseline

	lastX, lastY float64
	pinchDist    float64
	pointerDown  bool
	cursor       string
}

// New creates a controller over store and vp.
func New(store *decal.Store, vp Viewport) *Controller {
	return &Controller{
		store:  store,
		vp:     vp,
		log:    logger.Named("interaction"),
		cursor: geometry.HandleNone.Cursor(),
	}
}

// State returns the current input mode.
func (c *Controller) State() State { return c.state }

// ActiveHandle returns the handle being dragged, or HandleNone.
func (c *Controller) ActiveHandle() geometry.Handle { return c.handle }

// Cursor returns the pointer affordance from the last hover.
func (c *Controller) Cursor() string { return c.cursor }

// HitTest resolves the decal and handle under a viewport pixel. A selected
// decal on the facing side is tested first, then every facing decal from
// topmost to bottommost.
func (c *Controller) HitTest(x, y float64) (Target, bool) {
	uv, ok := c.vp.RaycastUV(x, y)
	if !ok {
		return Target{}, false
	}
	facing := c.vp.View().Facing()
	snap := c.store.Snapshot()

	if sel, ok := snap.SelectedDecal(); ok && sel.Side == facing {
		if h := geometry.HitTestHandle(uv.X, uv.Y, sel); h != geometry.HandleNone {
			return Target{Ref: sel.Ref(), Handle: h}, true
		}
	}

	all := snap.Ordered()
	for i := len(all) - 1; i >= 0; i-- {
		d := all[i]
		if d.Side != facing {
			continue
		}
		if h := geometry.HitTestHandle(uv.X, uv.Y, d); h != geometry.HandleNone {
			return Target{Ref: d.Ref(), Handle: h}, true
		}
	}
	return Target{}, false
}

// PointerDown starts a manipulation on a hit, otherwise clears the
// selection and starts orbiting.
func (c *Controller) PointerDown(x, y float64) {
	c.pointerDown = true
	target, ok := c.HitTest(x, y)
	if !ok {
		c.store.ClearSelection()
		c.beginOrbit(x, y)
		return
	}
	c.begin(target, x, y, false)
}

// PointerMove advances the active manipulation or orbit. With no button
// held it only refreshes the hover cursor.
func (c *Controller) PointerMove(x, y float64) {
	switch c.state {
	case StateManipulating:
		c.manipulate(x, y)
	case StateOrbiting:
		if c.pointerDown {
			c.orbit(x, y)
		}
	}
	if c.state != StateManipulating {
		c.hover(x, y)
	}
}

// PointerUp ends any active state. The last computed value stays
// committed.
func (c *Controller) PointerUp() {
	c.pointerDown = false
	c.reset()
}

// Wheel zooms the camera unless a decal is being manipulated.
func (c *Controller) Wheel(deltaY float64) {
	if c.state == StateManipulating {
		return
	}
	c.vp.Zoom(deltaY)
}

// Touch is one active touch point in viewport pixels.
type Touch struct {
	X, Y float64
}

// TouchStart handles a change in the set of touches. One finger either
// grabs a decal or starts orbiting without touching the selection; two
// fingers start a pinch. A manipulation in progress only ends on release.
func (c *Controller) TouchStart(touches []Touch) {
	if c.state == StateManipulating {
		return
	}
	switch len(touches) {
	case 1:
		t := touches[0]
		if target, ok := c.HitTest(t.X, t.Y); ok {
			c.begin(target, t.X, t.Y, true)
			return
		}
		c.beginOrbit(t.X, t.Y)
	case 2:
		c.state = StatePinchZooming
		c.pinchDist = touchDistance(touches)
	}
}

// TouchMove handles one-finger moves and orbit, and two-finger pinch.
// Extra fingers are ignored while a decal is dragged.
func (c *Controller) TouchMove(touches []Touch) {
	if c.state == StateManipulating && len(touches) > 1 {
		return
	}
	switch len(touches) {
	case 1:
		t := touches[0]
		switch c.state {
		case StateManipulating:
			if c.handle == geometry.HandleMove {
				c.manipulate(t.X, t.Y)
			}
		case StateOrbiting:
			c.orbit(t.X, t.Y)
		}
	case 2:
		d := touchDistance(touches)
		if c.state != StatePinchZooming {
			c.state = StatePinchZooming
			c.pinchDist = d
			return
		}
		c.vp.Pinch(d - c.pinchDist)
		c.pinchDist = d
	}
}

// TouchEnd returns to idle.
func (c *Controller) TouchEnd() {
	c.reset()
}

func touchDistance(t []Touch) float64 {
	return gomath.Hypot(t[0].X-t[1].X, t[0].Y-t[1].Y)
}

func (c *Controller) reset() {
	if c.state == StateManipulating {
		c.log.Debug("manipulation ended",
			zap.Int("decal", c.target.ID),
			zap.Stringer("handle", c.handle))
	}
	c.state = StateIdle
	c.handle = geometry.HandleNone
}

func (c *Controller) beginOrbit(x, y float64) {
	c.state = StateOrbiting
	c.lastX, c.lastY = x, y
}

func (c *Controller) orbit(x, y float64) {
	c.vp.Orbit((x-c.lastX)*OrbitSpeed, (y-c.lastY)*OrbitSpeed)
	c.lastX, c.lastY = x, y
}

// begin selects the target and records the handle's baseline. Touch only
// supports dragging, so it records the move baseline alone.
func (c *Controller) begin(t Target, x, y float64, touch bool) {
	d, ok := c.store.Get(t.Ref)
	if !ok {
		return
	}
	if err := c.store.Select(t.Ref); err != nil {
		c.log.Warn("select failed", zap.Error(err))
		return
	}
	c.state = StateManipulating
	c.handle = t.Handle
	c.target = t.Ref
	c.base = baseline{startX: x, startY: y, offsetX: d.OffsetX, offsetY: d.OffsetY}
	c.cursor = t.Handle.Cursor()

	if !touch && t.Handle != geometry.HandleMove {
		anchor := c.vp.View().WorldToScreen(d)
		switch {
		case t.Handle == geometry.HandleRotate:
			c.base.angle = gomath.Atan2(y-anchor.Y, x-anchor.X)
			c.base.rotation = d.Rotation
		case t.Handle.IsCorner() || t.Handle.IsEdge():
			c.base.distance = gomath.Hypot(x-anchor.X, y-anchor.Y)
			c.base.scale = d.Scale()
			c.base.width = d.Width
			c.base.height = d.Height
		}
	}
	c.log.Debug("manipulation started",
		zap.Int("decal", t.Ref.ID),
		zap.Stringer("kind", t.Ref.Kind),
		zap.Stringer("handle", t.Handle))
}

func (c *Controller) manipulate(x, y float64) {
	view := c.vp.View()
	b := c.base
	h := c.handle

	err := c.store.Update(c.target, func(d *decal.Decal) {
		switch {
		case h == geometry.HandleMove:
			wx, wy := view.ScreenToWorldDelta(x-b.startX, y-b.startY)
			d.OffsetX = b.offsetX + wx
			d.OffsetY = b.offsetY + wy

		case h == geometry.HandleRotate:
			anchor := view.WorldToScreen(*d)
			angle := gomath.Atan2(y-anchor.Y, x-anchor.X)
			d.Rotation = b.rotation + (angle - b.angle)

		case h.IsCorner():
			if b.distance == 0 {
				return
			}
			anchor := view.WorldToScreen(*d)
			dist := gomath.Hypot(x-anchor.X, y-anchor.Y)
			d.SetUniformScale(b.scale * dist / b.distance)

		case h.IsEdge():
			k := view.PixelToScale()
			dx, dy := x-b.startX, y-b.startY
			switch h {
			case geometry.HandleEdgeN:
				d.Height = decal.ClampScale(b.height - dy*k)
			case geometry.HandleEdgeS:
				d.Height = decal.ClampScale(b.height + dy*k)
			case geometry.HandleEdgeW:
				d.Width = decal.ClampScale(b.width - dx*k)
			case geometry.HandleEdgeE:
				d.Width = decal.ClampScale(b.width + dx*k)
			}
		}
	})
	if err != nil {
		// The decal went away mid-drag.
		c.log.Debug("manipulation target gone", zap.Error(err))
		c.reset()
	}
}

func (c *Controller) hover(x, y float64) {
	if t, ok := c.HitTest(x, y); ok {
		c.cursor = t.Handle.Cursor()
		return
	}
	c.cursor = geometry.HandleNone.Cursor()
}
