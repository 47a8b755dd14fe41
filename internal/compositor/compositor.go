// Package compositor rasterizes the base color and every decal into the
// single square texture worn by all garment surfaces.
//
// The canvas is split into two bands: the back design area on top and the
// front design area below. Decals are drawn front band first, images
// before texts, in insertion order. The selection gizmo is drawn last and
// only when its decal's side faces the camera.
package compositor

import (
	"image"
	"image/color"

	"github.com/gogpu/gg"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/Faultbox/garment-designer/internal/decal"
	"github.com/Faultbox/garment-designer/internal/geometry"
	"github.com/Faultbox/garment-designer/internal/logger"
)

// textScale converts fontSize × scale into canvas pixels.
const textScale = 2.5

// Frame is the input of one composite pass.
type Frame struct {
	BaseColor string // #rrggbb
	Decals    decal.Snapshot
	Facing    decal.Side
}

// Option configures a Compositor.
type Option func(*Compositor)

// WithSize sets the output edge length in pixels. Layout is computed at
// the reference canvas size and scaled.
func WithSize(px int) Option {
	return func(c *Compositor) {
		if px > 0 {
			c.size = px
		}
	}
}

// WithLogger overrides the component logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Compositor) {
		c.log = l
	}
}

// Compositor draws Frames. It keeps no per-frame state between calls.
type Compositor struct {
	size  int
	fonts *Fonts
	log   *zap.Logger

	errs int // draw errors in the current pass
}

// New creates a compositor resolving text decal fonts through fonts.
func New(fonts *Fonts, opts ...Option) *Compositor {
	if fonts == nil {
		fonts = NewFonts("")
	}
	c := &Compositor{
		size:  int(geometry.CanvasSize),
		fonts: fonts,
		log:   logger.Named("compositor"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Size returns the output edge length in pixels.
func (c *Compositor) Size() int {
	return c.size
}

func (c *Compositor) scale() float64 {
	return float64(c.size) / geometry.CanvasSize
}

// Compose renders f into a new RGBA image of Size()×Size().
func (c *Compositor) Compose(f Frame) *image.RGBA {
	c.errs = 0
	ctx := gg.NewContext(c.size, c.size)
	defer func() { _ = ctx.Close() }()

	ctx.ClearWithColor(gg.Hex(f.BaseColor))
	view := rgbaView(ctx.ResizeTarget().Data(), c.size, c.size)

	for _, side := range [...]decal.Side{decal.Front, decal.Back} {
		for _, d := range f.Decals.Images {
			if d.Side == side {
				c.drawImage(view, d)
			}
		}
		for _, d := range f.Decals.Texts {
			if d.Side == side {
				c.drawText(view, d)
			}
		}
	}

	if sel, ok := f.Decals.SelectedDecal(); ok && sel.Side == f.Facing {
		c.drawGizmo(ctx, view, sel)
	}
	c.flush(ctx)

	out := image.NewRGBA(image.Rect(0, 0, c.size, c.size))
	copy(out.Pix, view.Pix)

	c.log.Debug("composite rendered",
		zap.Int("images", len(f.Decals.Images)),
		zap.Int("texts", len(f.Decals.Texts)),
		zap.Uint64("version", f.Decals.Version),
		zap.Int("draw_errors", c.errs))
	return out
}

// drawImage blits a textured image decal. Decals still waiting for a
// bitmap are skipped.
func (c *Compositor) drawImage(dst draw.Image, d decal.Decal) {
	if !d.HasTexture() {
		return
	}
	p := geometry.Place(d)
	b := d.Texture.Bounds()
	m := placementAff(p.Center, p.Width, p.Height, p.Rotation, d.Flipped, float64(b.Dx()), float64(b.Dy()), c.scale())
	// Transform expects the source rectangle origin at the bitmap origin.
	m = mulAff(m, translateAff(-float64(b.Min.X), -float64(b.Min.Y)))
	blitImage(dst, d.Texture, m, draw.CatmullRom)
}

// drawText renders a text decal centered on its anchor: a 1px black
// outline, then the fill in the decal's color.
func (c *Compositor) drawText(dst draw.Image, d decal.Decal) {
	if d.Text == "" {
		return
	}
	k := c.scale()
	size := d.FontSize * d.Scale() * textScale * k
	if size <= 0 {
		return
	}
	fill := ParseHex(d.Color)
	layer := textLayer(d.Text, c.fonts.Face(d.FontFamily, size), fill, color.RGBA{A: 0xff}, k)
	if layer == nil {
		return
	}
	p := geometry.Place(d)
	blitLayer(dst, layer, p.Center, p.Rotation, k)
}

func (c *Compositor) check(err error) {
	if err != nil {
		c.errs++
		c.log.Debug("draw failed", zap.Error(err))
	}
}

func (c *Compositor) flush(ctx *gg.Context) {
	c.check(ctx.FlushGPU())
}

// ParseHex converts a CSS hex color to RGBA; unparseable input is black.
func ParseHex(s string) color.RGBA {
	h := gg.Hex(s)
	return color.RGBA{
		R: uint8(h.R*255 + 0.5),
		G: uint8(h.G*255 + 0.5),
		B: uint8(h.B*255 + 0.5),
		A: uint8(h.A*255 + 0.5),
	}
}
