// Package picking provides ray casting against the garment mesh.
package picking

import (
	gomath "math"

	"github.com/Faultbox/garment-designer/internal/engine/model"
	"github.com/Faultbox/garment-designer/pkg/math"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // Normalized direction
}

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min math.Vec3
	Max math.Vec3
}

// Hit is the closest ray intersection with a mesh surface.
type Hit struct {
	T       float64
	Point   math.Vec3 // world space
	UV      math.Vec2
	Surface int
}

// ScreenToRay converts screen coordinates to a world-space ray.
// screenX, screenY are pixel coordinates, viewportW/H are viewport dimensions.
// invViewProj is the inverse of the view-projection matrix.
func ScreenToRay(screenX, screenY, viewportW, viewportH float64, invViewProj math.Mat4) Ray {
	ndcX := 2.0*screenX/viewportW - 1.0
	ndcY := 1.0 - 2.0*screenY/viewportH // Flip Y

	nearWorld := unproject(invViewProj, math.Vec4{ndcX, ndcY, -1, 1})
	farWorld := unproject(invViewProj, math.Vec4{ndcX, ndcY, 1, 1})

	return Ray{Origin: nearWorld, Direction: farWorld.Sub(nearWorld).Normalize()}
}

func unproject(inv math.Mat4, p math.Vec4) math.Vec3 {
	w := inv.MulVec4(p)
	if w[3] != 0 {
		w[0] /= w[3]
		w[1] /= w[3]
		w[2] /= w[3]
	}
	return math.Vec3{X: w[0], Y: w[1], Z: w[2]}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// IntersectAABB tests ray intersection with an axis-aligned bounding box.
// Returns the distance to intersection (t) and whether intersection occurred.
// If the ray starts inside the box, returns the exit distance.
func (r Ray) IntersectAABB(box AABB) (t float64, hit bool) {
	tmin := -gomath.MaxFloat64
	tmax := gomath.MaxFloat64

	origin := [3]float64{r.Origin.X, r.Origin.Y, r.Origin.Z}
	dir := [3]float64{r.Direction.X, r.Direction.Y, r.Direction.Z}
	lo := [3]float64{box.Min.X, box.Min.Y, box.Min.Z}
	hi := [3]float64{box.Max.X, box.Max.Y, box.Max.Z}

	for k := 0; k < 3; k++ {
		if dir[k] == 0 {
			if origin[k] < lo[k] || origin[k] > hi[k] {
				return 0, false
			}
			continue
		}
		t1 := (lo[k] - origin[k]) / dir[k]
		t2 := (hi[k] - origin[k]) / dir[k]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = gomath.Max(tmin, t1)
		tmax = gomath.Min(tmax, t2)
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// IntersectTriangle runs Möller-Trumbore against a two-sided triangle and
// returns the distance and the barycentric weights of p1 and p2.
func (r Ray) IntersectTriangle(p0, p1, p2 math.Vec3) (t, u, v float64, hit bool) {
	const eps = 1e-9
	e1 := p1.Sub(p0)
	e2 := p2.Sub(p0)
	pv := r.Direction.Cross(e2)
	det := e1.Dot(pv)
	if gomath.Abs(det) < eps {
		return 0, 0, 0, false
	}
	inv := 1 / det
	tv := r.Origin.Sub(p0)
	u = tv.Dot(pv) * inv
	if u < 0 || u > 1 {
		return 0, 0, 0, false
	}
	qv := tv.Cross(e1)
	v = r.Direction.Dot(qv) * inv
	if v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}
	t = e2.Dot(qv) * inv
	if t <= eps {
		return 0, 0, 0, false
	}
	return t, u, v, true
}

// NewAABB creates an AABB from two corners, handling swapped extents.
func NewAABB(a, b math.Vec3) AABB {
	return AABB{Min: a.Min(b), Max: a.Max(b)}
}

// TransformAABB returns the world-space box enclosing all eight corners
// of a local box under m.
func TransformAABB(b model.Bounds, m math.Mat4) AABB {
	lo, hi := math.FromArray(b.Min), math.FromArray(b.Max)
	box := AABB{
		Min: math.Vec3{X: gomath.MaxFloat64, Y: gomath.MaxFloat64, Z: gomath.MaxFloat64},
		Max: math.Vec3{X: -gomath.MaxFloat64, Y: -gomath.MaxFloat64, Z: -gomath.MaxFloat64},
	}
	for i := 0; i < 8; i++ {
		c := lo
		if i&1 != 0 {
			c.X = hi.X
		}
		if i&2 != 0 {
			c.Y = hi.Y
		}
		if i&4 != 0 {
			c.Z = hi.Z
		}
		w := m.TransformPoint(c)
		box.Min = box.Min.Min(w)
		box.Max = box.Max.Max(w)
	}
	return box
}

// RaycastMesh returns the closest surface hit of r against mesh placed in
// the world by modelMatrix. The UV is interpolated from the hit triangle.
func RaycastMesh(r Ray, mesh *model.Mesh, modelMatrix math.Mat4) (Hit, bool) {
	if mesh == nil {
		return Hit{}, false
	}
	if _, ok := r.IntersectAABB(TransformAABB(mesh.Bounds, modelMatrix)); !ok {
		return Hit{}, false
	}

	best := Hit{T: gomath.MaxFloat64}
	found := false
	for si := range mesh.Surfaces {
		s := &mesh.Surfaces[si]
		world := make([]math.Vec3, len(s.Vertices))
		for i, v := range s.Vertices {
			world[i] = modelMatrix.TransformPoint(math.FromArray(v.Position))
		}
		for i := 0; i+2 < len(s.Indices); i += 3 {
			a, b, c := s.Indices[i], s.Indices[i+1], s.Indices[i+2]
			if int(a) >= len(world) || int(b) >= len(world) || int(c) >= len(world) {
				continue
			}
			t, u, v, ok := r.IntersectTriangle(world[a], world[b], world[c])
			if !ok || t >= best.T {
				continue
			}
			w := 1 - u - v
			ta, tb, tc := s.Vertices[a].TexCoord, s.Vertices[b].TexCoord, s.Vertices[c].TexCoord
			best = Hit{
				T:     t,
				Point: r.At(t),
				UV: math.Vec2{
					X: w*float64(ta[0]) + u*float64(tb[0]) + v*float64(tc[0]),
					Y: w*float64(ta[1]) + u*float64(tb[1]) + v*float64(tc[1]),
				},
				Surface: si,
			}
			found = true
		}
	}
	return best, found
}
