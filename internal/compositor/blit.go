package compositor

import (
	"image"
	"image/color"
	"math"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	gmath "github.com/Faultbox/garment-designer/pkg/math"
)

func identityAff() f64.Aff3 {
	return f64.Aff3{1, 0, 0, 0, 1, 0}
}

// mulAff returns a·b, i.e. b applied first.
func mulAff(a, b f64.Aff3) f64.Aff3 {
	return f64.Aff3{
		a[0]*b[0] + a[1]*b[3], a[0]*b[1] + a[1]*b[4], a[0]*b[2] + a[1]*b[5] + a[2],
		a[3]*b[0] + a[4]*b[3], a[3]*b[1] + a[4]*b[4], a[3]*b[2] + a[4]*b[5] + a[5],
	}
}

func translateAff(x, y float64) f64.Aff3 {
	return f64.Aff3{1, 0, x, 0, 1, y}
}

func scaleAff(x, y float64) f64.Aff3 {
	return f64.Aff3{x, 0, 0, 0, y, 0}
}

// rotateAff rotates clockwise on a y-down canvas.
func rotateAff(angle float64) f64.Aff3 {
	s, c := math.Sincos(angle)
	return f64.Aff3{c, -s, 0, s, c, 0}
}

// placementAff maps a srcW×srcH source onto a w×h box centered at center,
// rotated by angle and optionally mirrored horizontally, then scales the
// result by k into output pixels.
func placementAff(center gmath.Vec2, w, h, angle float64, flip bool, srcW, srcH, k float64) f64.Aff3 {
	fx := 1.0
	if flip {
		fx = -1
	}
	m := scaleAff(k, k)
	m = mulAff(m, translateAff(center.X, center.Y))
	m = mulAff(m, rotateAff(angle))
	m = mulAff(m, scaleAff(fx*w/srcW, h/srcH))
	return mulAff(m, translateAff(-srcW/2, -srcH/2))
}

// blitImage draws src into dst through m, compositing over existing pixels.
func blitImage(dst draw.Image, src image.Image, m f64.Aff3, interp draw.Transformer) {
	interp.Transform(dst, m, src, src.Bounds(), draw.Over, nil)
}

// blitLayer draws a layer rasterized at output resolution with its center
// at center (canvas units), rotated by angle. Layer pixels map 1:1 to
// output pixels.
func blitLayer(dst draw.Image, layer *image.RGBA, center gmath.Vec2, angle, k float64) {
	b := layer.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	blitImage(dst, layer, placementAff(center, w/k, h/k, angle, false, w, h, k), draw.BiLinear)
}

// textLayer renders s centered in a transparent layer, stroked then filled.
// The stroke is approximated by stamping the glyphs around a ring of
// radius strokeWidth/2 before the fill pass.
func textLayer(s string, face text.Face, fill, stroke color.Color, strokeWidth float64) *image.RGBA {
	if s == "" || face == nil {
		return nil
	}
	w, _ := text.Measure(s, face)
	m := face.Metrics()
	pad := math.Ceil(strokeWidth) + 2
	lw := int(math.Ceil(w + 2*pad))
	lh := int(math.Ceil(m.Ascent + m.Descent + 2*pad))
	if lw <= 0 || lh <= 0 {
		return nil
	}
	layer := image.NewRGBA(image.Rect(0, 0, lw, lh))

	// Middle baseline: the em box is centered vertically.
	x := pad
	y := float64(lh)/2 + (m.Ascent-m.Descent)/2

	if stroke != nil && strokeWidth > 0 {
		r := strokeWidth / 2
		steps := max(8, int(math.Ceil(2*math.Pi*r)))
		for i := 0; i < steps; i++ {
			a := 2 * math.Pi * float64(i) / float64(steps)
			text.Draw(layer, s, face, x+r*math.Cos(a), y+r*math.Sin(a), stroke)
		}
	}
	text.Draw(layer, s, face, x, y, fill)
	return layer
}

// rgbaView exposes a raw RGBA buffer as an image without copying.
func rgbaView(pix []uint8, w, h int) *image.RGBA {
	return &image.RGBA{Pix: pix, Stride: 4 * w, Rect: image.Rect(0, 0, w, h)}
}
