package viewport

import (
	"image"

	"github.com/Faultbox/garment-designer/internal/engine/raster"
)

// SoftwareRenderer renders frames with the CPU rasterizer. It backs the
// headless tools and any session without a GL context.
type SoftwareRenderer struct {
	Supersample int

	last *image.RGBA
}

// NewSoftwareRenderer creates a renderer with the given supersampling
// factor; values below 1 disable it.
func NewSoftwareRenderer(supersample int) *SoftwareRenderer {
	return &SoftwareRenderer{Supersample: supersample}
}

func (r *SoftwareRenderer) Draw(s raster.Scene, w, h int) error {
	r.last = r.render(s, w, h)
	return nil
}

func (r *SoftwareRenderer) Capture(s raster.Scene, w, h int) (*image.RGBA, error) {
	return r.render(s, w, h), nil
}

// Last returns the most recently drawn frame.
func (r *SoftwareRenderer) Last() *image.RGBA { return r.last }

func (r *SoftwareRenderer) render(s raster.Scene, w, h int) *image.RGBA {
	return raster.Render(s, raster.Options{Width: w, Height: h, Supersample: r.Supersample})
}
