package model

import (
	gomath "math"

	"github.com/Faultbox/garment-designer/pkg/math"
)

// ComputeBounds recomputes the bounding box from every surface vertex.
func (m *Mesh) ComputeBounds() {
	m.Bounds = Bounds{
		Min: [3]float32{1e10, 1e10, 1e10},
		Max: [3]float32{-1e10, -1e10, -1e10},
	}
	for i := range m.Surfaces {
		for _, v := range m.Surfaces[i].Vertices {
			updateBounds(&m.Bounds, v.Position)
		}
	}
}

// FitToUnit returns the translation and uniform scale that center the mesh
// at the origin and make its largest dimension equal to size.
func FitToUnit(b Bounds, size float64) (translation math.Vec3, scale float64) {
	maxDim := b.Size().MaxComponent()
	if maxDim <= 0 {
		return math.Vec3{}, 1
	}
	scale = size / maxDim
	return b.Center().Scale(-scale), scale
}

// GenerateNormals fills vertex normals from area-weighted face normals.
// Used for assets that ship without a NORMAL attribute.
func GenerateNormals(s *Surface) {
	sums := make([]math.Vec3, len(s.Vertices))
	for i := 0; i+2 < len(s.Indices); i += 3 {
		a, b, c := s.Indices[i], s.Indices[i+1], s.Indices[i+2]
		if int(a) >= len(s.Vertices) || int(b) >= len(s.Vertices) || int(c) >= len(s.Vertices) {
			continue
		}
		p0 := math.FromArray(s.Vertices[a].Position)
		p1 := math.FromArray(s.Vertices[b].Position)
		p2 := math.FromArray(s.Vertices[c].Position)
		n := p1.Sub(p0).Cross(p2.Sub(p0))
		sums[a] = sums[a].Add(n)
		sums[b] = sums[b].Add(n)
		sums[c] = sums[c].Add(n)
	}
	for i := range s.Vertices {
		n := sums[i].Normalize()
		if n.Length() == 0 {
			n = math.Vec3{Y: 1}
		}
		s.Vertices[i].Normal = n.Array()
	}
}

// UVBounds returns the min/max texture coordinates used by a surface.
func (s *Surface) UVBounds() (min, max [2]float32) {
	min = [2]float32{gomath.MaxFloat32, gomath.MaxFloat32}
	max = [2]float32{-gomath.MaxFloat32, -gomath.MaxFloat32}
	for _, v := range s.Vertices {
		for k := 0; k < 2; k++ {
			if v.TexCoord[k] < min[k] {
				min[k] = v.TexCoord[k]
			}
			if v.TexCoord[k] > max[k] {
				max[k] = v.TexCoord[k]
			}
		}
	}
	return min, max
}

func updateBounds(b *Bounds, p [3]float32) {
	for k := 0; k < 3; k++ {
		if p[k] < b.Min[k] {
			b.Min[k] = p[k]
		}
		if p[k] > b.Max[k] {
			b.Max[k] = p[k]
		}
	}
}
