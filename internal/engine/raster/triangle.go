package raster

import (
	"image"
	"math"
)

// ScreenVertex is a vertex after projection. Attributes are stored divided
// by clip W so they interpolate perspective-correctly.
type ScreenVertex struct {
	X, Y   float64 // pixels
	Z      float64 // NDC depth
	InvW   float64
	UOverW float64
	VOverW float64
	LOverW float64 // irradiance / w
}

// Shading is the per-triangle material input.
type Shading struct {
	Tex       *image.RGBA // nil samples BaseColor only
	BaseColor [3]float64  // linear
}

// RasterizeTriangle fills one projected triangle with depth testing and
// perspective-correct texture and lighting interpolation. Both windings
// are drawn.
func RasterizeTriangle(fb *FrameBuffer, a, b, c ScreenVertex, sh *Shading) {
	minX := int(math.Floor(math.Min(math.Min(a.X, b.X), c.X)))
	maxX := int(math.Ceil(math.Max(math.Max(a.X, b.X), c.X)))
	minY := int(math.Floor(math.Min(math.Min(a.Y, b.Y), c.Y)))
	maxY := int(math.Ceil(math.Max(math.Max(a.Y, b.Y), c.Y)))

	minX = max(minX, 0)
	minY = max(minY, 0)
	maxX = min(maxX, fb.Width-1)
	maxY = min(maxY, fb.Height-1)
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
	if det > -1e-12 && det < 1e-12 {
		return
	}
	invDet := 1.0 / det

	dy12 := b.Y - c.Y
	dx21 := c.X - b.X
	dy20 := c.Y - a.Y
	dx02 := a.X - c.X

	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) + 0.5 - c.Y
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - c.X
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			z := w0*a.Z + w1*b.Z + w2*c.Z
			if z < -1 || z > 1 {
				continue
			}
			zIdx := rowOff + sx
			if z >= fb.ZBuf[zIdx] {
				continue
			}

			invW := w0*a.InvW + w1*b.InvW + w2*c.InvW
			if invW <= 0 {
				continue
			}
			light := (w0*a.LOverW + w1*b.LOverW + w2*c.LOverW) / invW

			lr, lg, lb := sh.BaseColor[0], sh.BaseColor[1], sh.BaseColor[2]
			if sh.Tex != nil {
				u := (w0*a.UOverW + w1*b.UOverW + w2*c.UOverW) / invW
				v := (w0*a.VOverW + w1*b.VOverW + w2*c.VOverW) / invW
				cr, cg, cb, ca := SampleTexture(sh.Tex, u, v)
				// Skip transparent texels
				if ca < 8 {
					continue
				}
				lr *= srgbToLinear[cr]
				lg *= srgbToLinear[cg]
				lb *= srgbToLinear[cb]
			}
			fb.ZBuf[zIdx] = z

			pxIdx := zIdx * 4
			fb.Color[pxIdx] = linearToSRGB(lr * light)
			fb.Color[pxIdx+1] = linearToSRGB(lg * light)
			fb.Color[pxIdx+2] = linearToSRGB(lb * light)
			fb.Color[pxIdx+3] = 255
		}
	}
}
