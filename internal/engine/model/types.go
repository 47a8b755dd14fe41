// Package model provides the garment mesh, its loaders and the material
// table that swaps every surface onto the composite texture.
package model

import (
	"errors"
	"image"

	"github.com/Faultbox/garment-designer/pkg/math"
)

var (
	ErrNoSurfaces = errors.New("model has no mesh surfaces")
	ErrNoUVs      = errors.New("model surface has no texture coordinates")
)

// Vertex represents a mesh vertex with position, normal, and texture coordinates.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

// Material is the shading input of one surface.
type Material struct {
	Name      string
	BaseColor [4]float64 // linear RGBA factor
	Map       image.Image
}

// Surface is one drawable primitive with its own material slot. ID is
// stable for the lifetime of the loaded model.
type Surface struct {
	ID       string
	Name     string
	Vertices []Vertex
	Indices  []uint32
	Material Material
}

// Mesh holds the complete garment ready for GPU upload or software raster.
type Mesh struct {
	Surfaces []Surface
	Bounds   Bounds
}

// Bounds holds the axis-aligned bounding box of the model.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Center returns the middle of the box.
func (b Bounds) Center() math.Vec3 {
	return math.FromArray(b.Min).Add(math.FromArray(b.Max)).Scale(0.5)
}

// Size returns the box extents.
func (b Bounds) Size() math.Vec3 {
	return math.FromArray(b.Max).Sub(math.FromArray(b.Min))
}

// TriangleCount returns the number of indexed triangles across surfaces.
func (m *Mesh) TriangleCount() int {
	n := 0
	for i := range m.Surfaces {
		n += len(m.Surfaces[i].Indices) / 3
	}
	return n
}
