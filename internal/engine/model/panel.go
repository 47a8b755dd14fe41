package model

import (
	"github.com/Faultbox/garment-designer/internal/geometry"
)

// panelDivisions is the grid resolution of each procedural panel.
const panelDivisions = 8

// NewPanelGarment builds a two-panel garment whose UV layout matches the
// composite canvas: the front panel faces +Z and maps the lower texture
// half, the back panel faces -Z and maps the upper half. Vertex positions
// are chosen so that decal anchors land on the texels they paint.
func NewPanelGarment() *Mesh {
	m := &Mesh{
		Surfaces: []Surface{
			buildPanel("front", frontPanelPoint, [3]float32{0, 0, 1}, false),
			buildPanel("back", backPanelPoint, [3]float32{0, 0, -1}, true),
		},
	}
	m.ComputeBounds()
	return m
}

// frontPanelPoint maps a texel in the front band (v in [0, 0.5]) to the
// model-local point a front decal anchored there would project from.
func frontPanelPoint(u, v float64) [3]float32 {
	offsetX := (u - 0.5) * 2
	offsetY := (v - 0.25) * 2
	return [3]float32{
		float32(offsetX * geometry.OffsetScale),
		float32((geometry.ChestCenterY + offsetY) * geometry.OffsetScale),
		geometry.SurfaceZ,
	}
}

// backPanelPoint is frontPanelPoint for the back band (v in [0.5, 1]),
// with the X mirror applied to back-side offsets.
func backPanelPoint(u, v float64) [3]float32 {
	offsetX := (0.5 - u) * 2
	offsetY := (v - 0.75) * 2
	return [3]float32{
		float32(offsetX * geometry.OffsetScale),
		float32((geometry.BackCenterY + offsetY) * geometry.OffsetScale),
		-geometry.SurfaceZ,
	}
}

func buildPanel(name string, point func(u, v float64) [3]float32, normal [3]float32, back bool) Surface {
	s := Surface{
		ID:   "panel/" + name,
		Name: name,
		Material: Material{
			Name:      name,
			BaseColor: [4]float64{1, 1, 1, 1},
		},
	}
	v0 := 0.0
	if back {
		v0 = 0.5
	}
	const n = panelDivisions
	for j := 0; j <= n; j++ {
		for i := 0; i <= n; i++ {
			u := float64(i) / n
			v := v0 + 0.5*float64(j)/n
			s.Vertices = append(s.Vertices, Vertex{
				Position: point(u, v),
				Normal:   normal,
				TexCoord: [2]float32{float32(u), float32(v)},
			})
		}
	}
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			a := uint32(j*(n+1) + i)
			b := a + 1
			c := a + uint32(n+1)
			d := c + 1
			// The back panel's mirrored X keeps this order facing -Z.
			s.Indices = append(s.Indices, a, b, c, b, d, c)
		}
	}
	return s
}
