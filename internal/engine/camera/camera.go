// Package camera provides the viewport camera.
package camera

import (
	gomath "math"

	"github.com/Faultbox/garment-designer/pkg/math"
)

// PerspectiveCamera looks down -Z at a fixed target and zooms by sliding
// along its view axis.
type PerspectiveCamera struct {
	FOV    float64 // vertical field of view, degrees
	Aspect float64 // width / height
	Near   float64
	Far    float64

	Position math.Vec3
	Target   math.Vec3

	// Zoom limits on the camera's Z coordinate
	MinZ float64
	MaxZ float64

	// Sensitivity
	ZoomSensitivity float64
}

// NewPerspectiveCamera creates a camera with the designer defaults.
func NewPerspectiveCamera(aspect float64) *PerspectiveCamera {
	return &PerspectiveCamera{
		FOV:             75,
		Aspect:          aspect,
		Near:            0.1,
		Far:             1000,
		Position:        math.Vec3{X: 0, Y: 0, Z: 5},
		MinZ:            1,
		MaxZ:            10,
		ZoomSensitivity: 0.01,
	}
}

// FOVRadians returns the vertical field of view in radians.
func (c *PerspectiveCamera) FOVRadians() float64 {
	return c.FOV * gomath.Pi / 180
}

// SetAspect updates the projection aspect after a viewport resize.
func (c *PerspectiveCamera) SetAspect(width, height int) {
	if height > 0 {
		c.Aspect = float64(width) / float64(height)
	}
}

// HandleZoom moves the camera along Z by a wheel delta. Positive deltas
// move away from the model.
func (c *PerspectiveCamera) HandleZoom(delta float64) {
	c.setZ(c.Position.Z + delta*c.ZoomSensitivity)
}

// HandlePinch moves the camera by a change in two-finger distance.
// Spreading the fingers moves closer.
func (c *PerspectiveCamera) HandlePinch(delta float64) {
	c.setZ(c.Position.Z - delta*c.ZoomSensitivity)
}

func (c *PerspectiveCamera) setZ(z float64) {
	c.Position.Z = gomath.Max(c.MinZ, gomath.Min(c.MaxZ, z))
}

// ViewMatrix returns the view matrix for this camera.
func (c *PerspectiveCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position, c.Target, math.Vec3{Y: 1})
}

// ProjectionMatrix returns the perspective projection matrix.
func (c *PerspectiveCamera) ProjectionMatrix() math.Mat4 {
	return math.Perspective(c.FOVRadians(), c.Aspect, c.Near, c.Far)
}

// ViewProjection returns projection * view.
func (c *PerspectiveCamera) ViewProjection() math.Mat4 {
	return c.ProjectionMatrix().Mul(c.ViewMatrix())
}

// DistanceTo returns the distance from the camera to p.
func (c *PerspectiveCamera) DistanceTo(p math.Vec3) float64 {
	return c.Position.Distance(p)
}
