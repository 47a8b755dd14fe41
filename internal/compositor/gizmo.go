package compositor

import (
	"fmt"
	"image/color"
	"math"

	"github.com/gogpu/gg"
	"golang.org/x/image/draw"

	"github.com/Faultbox/garment-designer/internal/decal"
	"github.com/Faultbox/garment-designer/internal/geometry"
	gmath "github.com/Faultbox/garment-designer/pkg/math"
)

// Gizmo palette and metrics, in canvas pixels.
const (
	gizmoBlue  = "#3b82f6"
	gizmoGreen = "#10b981"
	gizmoRed   = "#ef4444"
	gizmoWhite = "#ffffff"

	outlineWidth     = 6.0
	handleStroke     = 4.0
	rotateKnobRadius = 20.0
	labelSize        = 40.0
	labelGap         = 50.0
	labelStroke      = 3.0
)

var labelFill = color.RGBA{R: 0x1e, G: 0x29, B: 0x3b, A: 0xff}

// drawGizmo draws the selection frame, handles and dimension labels of d
// onto ctx, whose pixels are also reachable through view for the labels.
func (c *Compositor) drawGizmo(ctx *gg.Context, view draw.Image, d decal.Decal) {
	p := geometry.Place(d)
	w, h := p.Width, p.Height
	k := c.scale()

	ctx.Push()
	ctx.Scale(k, k)
	ctx.Translate(p.Center.X, p.Center.Y)
	ctx.Rotate(p.Rotation)

	ctx.SetHexColor(gizmoBlue)
	ctx.SetStroke(gg.DefaultStroke().WithWidth(outlineWidth).WithDashPattern(16, 8))
	ctx.DrawRectangle(-w/2, -h/2, w, h)
	c.check(ctx.Stroke())

	ctx.SetStroke(gg.DefaultStroke().WithWidth(handleStroke))
	corners := [...]gmath.Vec2{{X: -w / 2, Y: -h / 2}, {X: w / 2, Y: -h / 2}, {X: -w / 2, Y: h / 2}, {X: w / 2, Y: h / 2}}
	for _, pt := range corners {
		c.handle(ctx, pt, gizmoBlue)
	}
	edges := [...]gmath.Vec2{{X: 0, Y: -h / 2}, {X: 0, Y: h / 2}, {X: -w / 2, Y: 0}, {X: w / 2, Y: 0}}
	for _, pt := range edges {
		c.handle(ctx, pt, gizmoGreen)
	}

	rotateDist := h/2 + geometry.RotateHandleGap
	ctx.SetHexColor(gizmoBlue)
	ctx.SetStroke(gg.DefaultStroke().WithWidth(handleStroke).WithDashPattern(10, 6))
	ctx.MoveTo(0, -h/2)
	ctx.LineTo(0, -rotateDist)
	c.check(ctx.Stroke())

	ctx.SetStroke(gg.DefaultStroke().WithWidth(handleStroke))
	ctx.DrawCircle(0, -rotateDist, rotateKnobRadius)
	ctx.SetHexColor(gizmoRed)
	c.check(ctx.FillPreserve())
	ctx.SetHexColor(gizmoBlue)
	c.check(ctx.Stroke())

	ctx.Pop()
	c.flush(ctx)

	// Labels are rasterized upright and rotated with the frame.
	wcm, hcm := d.DimensionsCM()
	face := c.fonts.Label(labelSize * k)
	white := color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	if layer := textLayer(fmt.Sprintf("%.1f cm", wcm), face, labelFill, white, labelStroke*k); layer != nil {
		at := p.Center.Add(gmath.Vec2{Y: h/2 + labelGap}.Rotate(p.Rotation))
		blitLayer(view, layer, at, p.Rotation, k)
	}
	if layer := textLayer(fmt.Sprintf("%.1f cm", hcm), face, labelFill, white, labelStroke*k); layer != nil {
		at := p.Center.Add(gmath.Vec2{X: w/2 + labelGap}.Rotate(p.Rotation))
		blitLayer(view, layer, at, p.Rotation+math.Pi/2, k)
	}
}

func (c *Compositor) handle(ctx *gg.Context, at gmath.Vec2, fill string) {
	hs := geometry.HandleSize
	ctx.DrawRectangle(at.X-hs/2, at.Y-hs/2, hs, hs)
	ctx.SetHexColor(fill)
	c.check(ctx.FillPreserve())
	ctx.SetHexColor(gizmoWhite)
	c.check(ctx.Stroke())
}
