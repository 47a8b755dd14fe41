// Package renderer draws the garment with OpenGL.
package renderer

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/garment-designer/internal/engine/framebuffer"
	"github.com/Faultbox/garment-designer/internal/engine/model"
	"github.com/Faultbox/garment-designer/internal/engine/raster"
	"github.com/Faultbox/garment-designer/internal/engine/shader"
	"github.com/Faultbox/garment-designer/internal/engine/texture"
	"github.com/Faultbox/garment-designer/internal/logger"
)

// gpuSurface is one uploaded primitive.
type gpuSurface struct {
	vao, vbo, ebo uint32
	count         int32
}

// Renderer handles all OpenGL rendering. It satisfies the viewport's
// renderer contract: Draw presents to the window, Capture renders offscreen
// and reads the frame back.
type Renderer struct {
	program *shader.Program

	mesh     *model.Mesh
	surfaces []gpuSurface
	textures map[image.Image]uint32
	white    uint32

	capture *framebuffer.Framebuffer
	log     *zap.Logger
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New() (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	r := &Renderer{
		textures: make(map[image.Image]uint32),
		log:      logger.Named("renderer"),
	}
	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	var err error
	r.program, err = shader.Compile(vertexShader, fragmentShader)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}

	r.white = uploadTexture(image.NewRGBA(image.Rect(0, 0, 1, 1)), true)
	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	r.releaseMesh()
	for img, id := range r.textures {
		gl.DeleteTextures(1, &id)
		delete(r.textures, img)
	}
	gl.DeleteTextures(1, &r.white)
	if r.capture != nil {
		r.capture.Destroy()
	}
	r.program.Delete()
}

// Draw renders the scene to the default framebuffer.
func (r *Renderer) Draw(s raster.Scene, w, h int) error {
	gl.Viewport(0, 0, int32(w), int32(h))
	r.render(s)
	return glError("draw")
}

// Capture renders the scene offscreen and returns the pixels.
func (r *Renderer) Capture(s raster.Scene, w, h int) (*image.RGBA, error) {
	if r.capture == nil {
		fb, err := framebuffer.New(w, h)
		if err != nil {
			return nil, err
		}
		r.capture = fb
	}
	r.capture.Resize(w, h)

	restore := r.capture.Bind()
	r.render(s)
	img := r.capture.ReadImage()
	restore()

	if err := glError("capture"); err != nil {
		return nil, err
	}
	return img, nil
}

func (r *Renderer) render(s raster.Scene) {
	bg := s.Background
	gl.ClearColor(float32(bg.R)/255, float32(bg.G)/255, float32(bg.B)/255, float32(bg.A)/255)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	if s.Mesh == nil {
		return
	}
	if s.Mesh != r.mesh {
		r.uploadMesh(s.Mesh)
	}

	normal := s.Model
	normal[12], normal[13], normal[14] = 0, 0, 0
	l := s.Lights

	p := r.program
	p.Use()
	p.SetMat4("uMVP", s.ViewProj.Mul(s.Model).Float32())
	p.SetMat4("uNormal", normal.Float32())
	p.SetFloat("uAmbient", float32(l.Ambient))
	p.SetFloat("uDirectional", float32(l.Directional))
	p.SetVec3("uLightDir", float32(l.Direction.X), float32(l.Direction.Y), float32(l.Direction.Z))
	p.SetInt("uTex", 0)

	used := make(map[image.Image]bool)
	gl.ActiveTexture(gl.TEXTURE0)
	for i := range s.Mesh.Surfaces {
		mat := s.Mesh.Surfaces[i].Material
		c := mat.BaseColor
		gl.Uniform4f(p.Uniform("uBaseColor"), float32(c[0]), float32(c[1]), float32(c[2]), float32(c[3]))
		gl.BindTexture(gl.TEXTURE_2D, r.textureFor(mat.Map, used))

		gs := r.surfaces[i]
		gl.BindVertexArray(gs.vao)
		gl.DrawElements(gl.TRIANGLES, gs.count, gl.UNSIGNED_INT, nil)
	}
	gl.BindVertexArray(0)
	r.evict(used)
}

// textureFor returns the GL texture of img, uploading it on first use.
// Surfaces without a map sample a white texel.
func (r *Renderer) textureFor(img image.Image, used map[image.Image]bool) uint32 {
	if img == nil {
		return r.white
	}
	used[img] = true
	if id, ok := r.textures[img]; ok {
		return id
	}
	id := uploadTexture(texture.ImageToRGBA(img), false)
	r.textures[img] = id
	b := img.Bounds()
	r.log.Debug("texture uploaded", zap.Int("width", b.Dx()), zap.Int("height", b.Dy()))
	return id
}

// evict drops textures no surface referenced this frame. The composite is
// a fresh image on every compose, so stale uploads go here.
func (r *Renderer) evict(used map[image.Image]bool) {
	for img, id := range r.textures {
		if !used[img] {
			gl.DeleteTextures(1, &id)
			delete(r.textures, img)
		}
	}
}

func uploadTexture(img *image.RGBA, white bool) uint32 {
	if white {
		for i := range img.Pix {
			img.Pix[i] = 0xff
		}
	}
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(img.Rect.Dx()), int32(img.Rect.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	return id
}

func (r *Renderer) uploadMesh(m *model.Mesh) {
	r.releaseMesh()
	r.mesh = m
	stride := int32(unsafe.Sizeof(model.Vertex{}))

	for i := range m.Surfaces {
		s := &m.Surfaces[i]
		var gs gpuSurface
		gs.count = int32(len(s.Indices))

		gl.GenVertexArrays(1, &gs.vao)
		gl.BindVertexArray(gs.vao)

		gl.GenBuffers(1, &gs.vbo)
		gl.BindBuffer(gl.ARRAY_BUFFER, gs.vbo)
		if len(s.Vertices) > 0 {
			gl.BufferData(gl.ARRAY_BUFFER, len(s.Vertices)*int(stride), gl.Ptr(s.Vertices), gl.STATIC_DRAW)
		}

		gl.GenBuffers(1, &gs.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gs.ebo)
		if len(s.Indices) > 0 {
			gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(s.Indices)*4, gl.Ptr(s.Indices), gl.STATIC_DRAW)
		}

		gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, unsafe.Offsetof(model.Vertex{}.Position))
		gl.EnableVertexAttribArray(0)
		gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, unsafe.Offsetof(model.Vertex{}.Normal))
		gl.EnableVertexAttribArray(1)
		gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, unsafe.Offsetof(model.Vertex{}.TexCoord))
		gl.EnableVertexAttribArray(2)

		gl.BindVertexArray(0)
		r.surfaces = append(r.surfaces, gs)
	}

	r.log.Debug("mesh uploaded",
		zap.Int("surfaces", len(r.surfaces)),
		zap.Int("triangles", m.TriangleCount()))
}

func (r *Renderer) releaseMesh() {
	for _, gs := range r.surfaces {
		gl.DeleteVertexArrays(1, &gs.vao)
		gl.DeleteBuffers(1, &gs.vbo)
		gl.DeleteBuffers(1, &gs.ebo)
	}
	r.surfaces = r.surfaces[:0]
	r.mesh = nil
}

func glError(op string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("%s: GL error 0x%x", op, code)
	}
	return nil
}
