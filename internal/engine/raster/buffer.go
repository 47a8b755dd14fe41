// Package raster is the software renderer behind headless snapshots and
// the preview when no GL context is available.
package raster

import (
	"image"
	"image/color"
	"math"
)

// FrameBuffer holds the rendering target as flat slices for cache locality.
type FrameBuffer struct {
	Width  int
	Height int
	Color  []uint8   // premultiplied RGBA interleaved, len = W*H*4
	ZBuf   []float64 // NDC depth per pixel, len = W*H, initialized to +inf
}

// NewFrameBuffer allocates a buffer cleared to bg with an empty z-buffer.
func NewFrameBuffer(w, h int, bg color.RGBA) *FrameBuffer {
	n := w * h
	zbuf := make([]float64, n)
	for i := range zbuf {
		zbuf[i] = math.Inf(1)
	}
	pix := make([]uint8, n*4)
	if bg != (color.RGBA{}) {
		for i := 0; i < len(pix); i += 4 {
			pix[i], pix[i+1], pix[i+2], pix[i+3] = bg.R, bg.G, bg.B, bg.A
		}
	}
	return &FrameBuffer{
		Width:  w,
		Height: h,
		Color:  pix,
		ZBuf:   zbuf,
	}
}

// Image wraps the color buffer without copying.
func (fb *FrameBuffer) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    fb.Color,
		Stride: fb.Width * 4,
		Rect:   image.Rect(0, 0, fb.Width, fb.Height),
	}
}
