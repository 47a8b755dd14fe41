package raster

import (
	"math"

	gmath "github.com/Faultbox/garment-designer/pkg/math"
)

// Lights is an ambient term plus one directional light, both white.
type Lights struct {
	Ambient     float64
	Directional float64
	Direction   gmath.Vec3 // toward the light, normalized
}

// DefaultLights matches the viewport rig: ambient 1, directional 2 from
// (10, 10, 5).
func DefaultLights() Lights {
	return Lights{
		Ambient:     1,
		Directional: 2,
		Direction:   gmath.Vec3{X: 10, Y: 10, Z: 5}.Normalize(),
	}
}

// Irradiance returns the diffuse lighting factor in linear space for a
// world-space normal. A face pointing straight at the light gets 1, so
// fully lit texels keep their color.
func (l Lights) Irradiance(normal gmath.Vec3) float64 {
	total := l.Ambient + l.Directional
	if total <= 0 {
		return 0
	}
	ndl := math.Max(0, normal.Dot(l.Direction))
	return (l.Ambient + l.Directional*ndl) / total
}

// Precomputed sRGB-to-linear lookup table (256 entries).
var srgbToLinear [256]float64

func init() {
	for i := 0; i < 256; i++ {
		srgbToLinear[i] = math.Pow(float64(i)/255.0, 2.2)
	}
}

func linearToSRGB(x float64) uint8 {
	if x <= 0 {
		return 0
	}
	return clamp255(math.Pow(x, 1/2.2) * 255)
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
