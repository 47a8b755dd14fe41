package geometry

import (
	gomath "math"

	"github.com/Faultbox/garment-designer/internal/decal"
	"github.com/Faultbox/garment-designer/pkg/math"
)

// Anchor constants place a decal's pivot on the normalized garment: chest
// and upper-back heights, the offset-to-model scale, and the panel depth.
const (
	ChestCenterY = 0.11
	BackCenterY  = -0.05
	OffsetScale  = 1.8
	SurfaceZ     = 0.5
)

// View is the camera and model state needed to move between screen pixels
// and decal space.
type View struct {
	Width, Height float64 // viewport pixels
	FOV           float64 // vertical field of view, radians
	CameraPos     math.Vec3
	ViewProj      math.Mat4
	Model         math.Mat4 // model local-to-world
	ModelPos      math.Vec3
	Yaw           float64
}

// WrapAngle reduces an angle to [-π, π].
func WrapAngle(a float64) float64 {
	a = gomath.Mod(a, 2*gomath.Pi)
	if a > gomath.Pi {
		a -= 2 * gomath.Pi
	}
	if a < -gomath.Pi {
		a += 2 * gomath.Pi
	}
	return a
}

// FacingSide returns the garment side turned toward the camera for a
// model yaw.
func FacingSide(yaw float64) decal.Side {
	if gomath.Abs(WrapAngle(yaw)) < gomath.Pi/2 {
		return decal.Front
	}
	return decal.Back
}

// Facing returns the side currently turned toward the camera.
func (v View) Facing() decal.Side {
	return FacingSide(v.Yaw)
}

// ScreenToWorldDelta converts a pointer delta in pixels to a decal offset
// delta. The scale follows the visible world height at the model's
// distance; X is mirrored while the back faces the camera.
func (v View) ScreenToWorldDelta(dx, dy float64) (float64, float64) {
	if v.Height <= 0 {
		return 0, 0
	}
	distance := v.CameraPos.Distance(v.ModelPos)
	worldHeight := 2 * gomath.Tan(v.FOV/2) * distance
	if worldHeight == 0 {
		return 0, 0
	}
	pixelsPerUnit := v.Height / worldHeight

	wx := dx / pixelsPerUnit
	wy := -dy / pixelsPerUnit
	if v.Facing() == decal.Back {
		wx = -wx
	}
	return wx / 2, wy / 2
}

// AnchorLocal returns a decal's pivot in model-local coordinates.
func AnchorLocal(d decal.Decal) math.Vec3 {
	baseY, z := ChestCenterY, SurfaceZ
	if d.Side == decal.Back {
		baseY, z = BackCenterY, -SurfaceZ
	}
	return math.Vec3{
		X: d.OffsetX * OffsetScale,
		Y: (baseY + d.OffsetY) * OffsetScale,
		Z: z,
	}
}

// WorldToScreen projects a decal's pivot to viewport pixels.
func (v View) WorldToScreen(d decal.Decal) math.Vec2 {
	world := v.Model.TransformPoint(AnchorLocal(d))
	ndc := v.ViewProj.TransformPoint(world)
	return math.Vec2{
		X: (ndc.X*0.5 + 0.5) * v.Width,
		Y: (-ndc.Y*0.5 + 0.5) * v.Height,
	}
}

// PixelToScale is the edge-drag ratio from pointer pixels to decal units.
func (v View) PixelToScale() float64 {
	if v.Height <= 0 {
		return 0
	}
	return 2 / v.Height
}
