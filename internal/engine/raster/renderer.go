package raster

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/Faultbox/garment-designer/internal/engine/model"
	"github.com/Faultbox/garment-designer/internal/engine/texture"
	gmath "github.com/Faultbox/garment-designer/pkg/math"
)

// Scene is everything one frame needs.
type Scene struct {
	Mesh       *model.Mesh
	Model      gmath.Mat4 // local-to-world
	ViewProj   gmath.Mat4
	Lights     Lights
	Background color.RGBA // zero value renders transparent
}

// Options controls output size and antialiasing.
type Options struct {
	Width       int
	Height      int
	Supersample int // 1 disables
}

// Render draws the scene into a new image of opts.Width x opts.Height.
func Render(s Scene, opts Options) *image.RGBA {
	ss := max(opts.Supersample, 1)
	rw, rh := opts.Width*ss, opts.Height*ss
	fb := NewFrameBuffer(rw, rh, s.Background)

	if s.Mesh != nil {
		normalMat := s.Model
		normalMat[12], normalMat[13], normalMat[14] = 0, 0, 0
		mvp := s.ViewProj.Mul(s.Model)

		texCache := make(map[image.Image]*image.RGBA)
		for si := range s.Mesh.Surfaces {
			surf := &s.Mesh.Surfaces[si]
			sh := shadingFor(surf.Material, texCache)
			verts := projectSurface(surf, mvp, normalMat, s.Lights, rw, rh)
			for i := 0; i+2 < len(surf.Indices); i += 3 {
				ia, ib, ic := surf.Indices[i], surf.Indices[i+1], surf.Indices[i+2]
				if int(ia) >= len(verts) || int(ib) >= len(verts) || int(ic) >= len(verts) {
					continue
				}
				va, vb, vc := verts[ia], verts[ib], verts[ic]
				// Triangles crossing the near plane are dropped
				if va.InvW <= 0 || vb.InvW <= 0 || vc.InvW <= 0 {
					continue
				}
				RasterizeTriangle(fb, va, vb, vc, sh)
			}
		}
	}

	img := fb.Image()
	if ss == 1 {
		return img
	}
	return Downsample(img, opts.Width, opts.Height)
}

func shadingFor(mat model.Material, cache map[image.Image]*image.RGBA) *Shading {
	sh := &Shading{BaseColor: [3]float64{mat.BaseColor[0], mat.BaseColor[1], mat.BaseColor[2]}}
	if mat.Map != nil {
		tex, ok := cache[mat.Map]
		if !ok {
			tex = texture.ImageToRGBA(mat.Map)
			cache[mat.Map] = tex
		}
		sh.Tex = tex
	}
	return sh
}

func projectSurface(s *model.Surface, mvp, normalMat gmath.Mat4, lights Lights, w, h int) []ScreenVertex {
	out := make([]ScreenVertex, len(s.Vertices))
	for i, v := range s.Vertices {
		p := gmath.FromArray(v.Position)
		clip := mvp.MulVec4(gmath.Vec4{p.X, p.Y, p.Z, 1})
		if clip[3] <= 1e-9 {
			continue // InvW stays 0
		}
		invW := 1 / clip[3]
		ndcX, ndcY, ndcZ := clip[0]*invW, clip[1]*invW, clip[2]*invW

		n := normalMat.TransformDirection(gmath.FromArray(v.Normal)).Normalize()
		light := lights.Irradiance(n)

		out[i] = ScreenVertex{
			X:      (ndcX*0.5 + 0.5) * float64(w),
			Y:      (-ndcY*0.5 + 0.5) * float64(h),
			Z:      ndcZ,
			InvW:   invW,
			UOverW: float64(v.TexCoord[0]) * invW,
			VOverW: float64(v.TexCoord[1]) * invW,
			LOverW: light * invW,
		}
	}
	return out
}

// Downsample reduces a supersampled frame with CatmullRom filtering. The
// frame is already premultiplied so edges do not halo.
func Downsample(img *image.RGBA, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
