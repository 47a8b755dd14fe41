package geometry

import (
	gomath "math"

	"github.com/Faultbox/garment-designer/internal/decal"
	"github.com/Faultbox/garment-designer/pkg/math"
)

// Composite canvas layout. The canvas is split into two horizontal bands:
// the back design area on top, the front design area below.
const (
	CanvasSize      = 2048.0
	BandHeight      = CanvasSize / 2
	FrontBandCenter = CanvasSize * 0.75
	BackBandCenter  = CanvasSize * 0.25

	// Gizmo metrics in canvas pixels.
	HandleSize      = 30.0
	RotateHandleGap = 80.0
	MoveInflate     = 1.2
)

// Placement is a decal's box on the composite canvas, in pixels.
type Placement struct {
	Center   math.Vec2
	Width    float64
	Height   float64
	Rotation float64
}

// BandCenterY returns the canvas Y of a side's design-area center.
func BandCenterY(side decal.Side) float64 {
	if side == decal.Back {
		return BackBandCenter
	}
	return FrontBandCenter
}

// Place computes where a decal lands on the canvas. Back-side offsets are
// mirrored in X so dragging right while looking at the back moves right.
func Place(d decal.Decal) Placement {
	offsetX := d.OffsetX
	if d.Side == decal.Back {
		offsetX = -offsetX
	}
	return Placement{
		Center: math.Vec2{
			X: CanvasSize/2 + offsetX*BandHeight,
			Y: BandCenterY(d.Side) - d.OffsetY*BandHeight,
		},
		Width:    d.Width * BandHeight,
		Height:   d.Height * BandHeight,
		Rotation: d.Rotation,
	}
}

// CanvasToUV converts canvas pixels to texture coordinates (V grows up).
func CanvasToUV(p math.Vec2) math.Vec2 {
	return math.Vec2{X: p.X / CanvasSize, Y: 1 - p.Y/CanvasSize}
}

// UVToCanvas converts texture coordinates to canvas pixels.
func UVToCanvas(uv math.Vec2) math.Vec2 {
	return math.Vec2{X: uv.X * CanvasSize, Y: (1 - uv.Y) * CanvasSize}
}

// HitTestHandle returns the handle of d under texture coordinate (u, v),
// or HandleNone. Handles are tried in priority order: rotate, corners,
// edges, then the inflated interior.
func HitTestHandle(u, v float64, d decal.Decal) Handle {
	p := Place(d)
	center := CanvasToUV(p.Center)
	local := math.Vec2{X: u - center.X, Y: v - center.Y}.Rotate(-d.Rotation)

	hs := HandleSize / CanvasSize
	halfU := p.Width / 2 / CanvasSize
	halfV := p.Height / 2 / CanvasSize
	rotateDist := (p.Height/2 + RotateHandleGap) / CanvasSize

	near := func(cu, cv float64) bool {
		return gomath.Abs(local.X-cu) < hs && gomath.Abs(local.Y-cv) < hs
	}

	if near(0, rotateDist) {
		return HandleRotate
	}

	corners := [...]struct {
		u, v float64
		h    Handle
	}{
		{-halfU, halfV, HandleScaleNW},
		{halfU, halfV, HandleScaleNE},
		{-halfU, -halfV, HandleScaleSW},
		{halfU, -halfV, HandleScaleSE},
	}
	for _, c := range corners {
		if near(c.u, c.v) {
			return c.h
		}
	}

	edges := [...]struct {
		u, v float64
		h    Handle
	}{
		{0, halfV, HandleEdgeN},
		{0, -halfV, HandleEdgeS},
		{-halfU, 0, HandleEdgeW},
		{halfU, 0, HandleEdgeE},
	}
	for _, e := range edges {
		if near(e.u, e.v) {
			return e.h
		}
	}

	if gomath.Abs(local.X) < halfU*MoveInflate && gomath.Abs(local.Y) < halfV*MoveInflate {
		return HandleMove
	}
	return HandleNone
}
