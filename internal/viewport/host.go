// Package viewport hosts the garment model: camera, lights, orbit state,
// asynchronous model loading and snapshot capture.
package viewport

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/garment-designer/internal/decal"
	"github.com/Faultbox/garment-designer/internal/engine/camera"
	"github.com/Faultbox/garment-designer/internal/engine/model"
	"github.com/Faultbox/garment-designer/internal/engine/picking"
	"github.com/Faultbox/garment-designer/internal/engine/raster"
	"github.com/Faultbox/garment-designer/internal/engine/texture"
	"github.com/Faultbox/garment-designer/internal/geometry"
	"github.com/Faultbox/garment-designer/internal/logger"
	"github.com/Faultbox/garment-designer/pkg/math"
)

var (
	ErrNoModel      = errors.New("no model loaded")
	ErrModelLoading = errors.New("model is still loading")
)

// FitSize is the default edge of the cube a loaded model is scaled to fit.
const FitSize = 2.0

// DefaultBackground is the scene clear color.
var DefaultBackground = color.RGBA{R: 0xfa, G: 0xf7, B: 0xf3, A: 0xff}

// Renderer draws the scene. Draw presents a frame; Capture renders one
// off screen and reads it back.
type Renderer interface {
	Draw(s raster.Scene, w, h int) error
	Capture(s raster.Scene, w, h int) (*image.RGBA, error)
}

// Selection is the part of the decal store a capture needs.
type Selection interface {
	Selected() (decal.Ref, bool)
	ClearSelection()
	RestoreSelection(ref decal.Ref, ok bool)
}

// CompositeSource rebuilds the composite texture for the side facing the
// camera. The host calls it around captures so the gizmo follows the
// temporary selection state.
type CompositeSource func(facing decal.Side) *image.RGBA

// Snapshot is one captured frame.
type Snapshot struct {
	Yaw     float64
	Image   *image.RGBA
	DataURL string
}

// Option configures a Host.
type Option func(*Host)

// WithBackground sets the scene clear color.
func WithBackground(c color.RGBA) Option {
	return func(h *Host) { h.background = c }
}

// WithLights replaces the default ambient and directional lights.
func WithLights(l raster.Lights) Option {
	return func(h *Host) { h.lights = l }
}

// WithSnapshotFormat selects the snapshot encoding.
func WithSnapshotFormat(f texture.Format) Option {
	return func(h *Host) { h.format = f }
}

// WithFitSize changes the edge of the cube models are scaled to fit.
func WithFitSize(size float64) Option {
	return func(h *Host) { h.fitSize = size }
}

// WithSnapshotSize fixes the capture resolution. Zero tracks the viewport.
func WithSnapshotSize(w, ht int) Option {
	return func(h *Host) { h.snapW, h.snapH = w, ht }
}

// WithCamera applies cfg to the camera after defaults are set.
func WithCamera(cfg func(*camera.PerspectiveCamera)) Option {
	return func(h *Host) { cfg(h.cam) }
}

// Host owns the camera, lights and the loaded model. It is confined to
// the loop goroutine; LoadModel does its I/O elsewhere and posts the
// result back.
type Host struct {
	cam        *camera.PerspectiveCamera
	lights     raster.Lights
	background color.RGBA
	renderer   Renderer
	format     texture.Format
	source     CompositeSource
	fitSize    float64

	width, height int
	snapW, snapH  int

	mesh      *model.Mesh
	materials *model.MaterialTable
	fitT      math.Vec3
	fitS      float64
	yaw       float64
	pitch     float64

	loading  bool
	loadErr  error
	loadSeq  int
	onLoaded func(error)

	log *zap.Logger
}

// New creates a host for a w×h viewport.
func New(w, h int, r Renderer, opts ...Option) *Host {
	host := &Host{
		cam:        camera.NewPerspectiveCamera(aspect(w, h)),
		lights:     raster.DefaultLights(),
		background: DefaultBackground,
		renderer:   r,
		format:     texture.FormatPNG,
		width:      w,
		height:     h,
		fitS:       1,
		fitSize:    FitSize,
		log:        logger.Named("viewport"),
	}
	for _, opt := range opts {
		opt(host)
	}
	return host
}

func aspect(w, h int) float64 {
	if h <= 0 {
		return 1
	}
	return float64(w) / float64(h)
}

// SetCompositeSource installs the callback used to refresh the texture
// around captures.
func (h *Host) SetCompositeSource(src CompositeSource) { h.source = src }

// OnLoaded registers a callback run on the loop goroutine after every
// model load attempt.
func (h *Host) OnLoaded(fn func(error)) { h.onLoaded = fn }

// Camera returns the viewport camera.
func (h *Host) Camera() *camera.PerspectiveCamera { return h.cam }

// Mesh returns the loaded model, or nil.
func (h *Host) Mesh() *model.Mesh { return h.mesh }

// Materials returns the material table of the loaded model, or nil.
func (h *Host) Materials() *model.MaterialTable { return h.materials }

// Size returns the viewport size in pixels.
func (h *Host) Size() (int, int) { return h.width, h.height }

// Resize updates the viewport size and the camera aspect.
func (h *Host) Resize(w, ht int) {
	h.width, h.height = w, ht
	h.cam.SetAspect(w, ht)
}

// Loaded reports whether a model is ready.
func (h *Host) Loaded() bool { return h.mesh != nil && !h.loading }

// Loading reports whether a load is in flight.
func (h *Host) Loading() bool { return h.loading }

// LoadErr returns the error of the last failed load.
func (h *Host) LoadErr() error { return h.loadErr }

// Ready returns nil when decal operations have a model to land on.
func (h *Host) Ready() error {
	switch {
	case h.loading:
		return ErrModelLoading
	case h.mesh == nil:
		return ErrNoModel
	}
	return nil
}

// LoadModel reads a glTF model on its own goroutine and hands the result
// to post, which must run it on the loop goroutine. An empty path loads
// the built-in panel garment. A later call supersedes an earlier one
// still in flight.
func (h *Host) LoadModel(path string, post func(func())) {
	h.clear()
	h.loading = true
	h.loadErr = nil
	h.loadSeq++
	seq := h.loadSeq

	h.log.Info("loading model", zap.String("path", path))
	start := time.Now()
	go func() {
		mesh, err := readMesh(path)
		post(func() {
			if seq != h.loadSeq {
				return
			}
			if err != nil {
				err = fmt.Errorf("load model %q: %w", path, err)
			} else {
				h.log.Info("model loaded",
					zap.String("path", path),
					zap.Int("surfaces", len(mesh.Surfaces)),
					zap.Int("triangles", mesh.TriangleCount()),
					zap.Duration("elapsed", time.Since(start)))
			}
			h.finishLoad(mesh, err)
		})
	}()
}

func readMesh(path string) (*model.Mesh, error) {
	if path == "" {
		return model.NewPanelGarment(), nil
	}
	return model.LoadGLTF(path)
}

// SetMesh installs a model synchronously.
func (h *Host) SetMesh(m *model.Mesh) {
	h.clear()
	h.loadSeq++
	h.finishLoad(m, nil)
}

func (h *Host) finishLoad(m *model.Mesh, err error) {
	h.loading = false
	if err != nil {
		h.loadErr = err
		h.log.Error("model load failed", zap.Error(err))
	} else {
		h.mesh = m
		h.materials = model.NewMaterialTable(m)
		h.fitT, h.fitS = model.FitToUnit(m.Bounds, h.fitSize)
		h.yaw, h.pitch = 0, 0
	}
	if h.onLoaded != nil {
		h.onLoaded(err)
	}
}

func (h *Host) clear() {
	if h.mesh != nil && h.materials != nil {
		h.materials.Restore(h.mesh)
	}
	h.mesh = nil
	h.materials = nil
	h.fitT, h.fitS = math.Vec3{}, 1
}

// SetComposite points every surface of the model at tex.
func (h *Host) SetComposite(tex *image.RGBA) {
	if h.mesh == nil || tex == nil {
		return
	}
	h.materials.ApplyComposite(h.mesh, tex)
}

// Yaw returns the model rotation about Y.
func (h *Host) Yaw() float64 { return h.yaw }

// Pitch returns the model rotation about X.
func (h *Host) Pitch() float64 { return h.pitch }

// SetYaw sets the model rotation about Y.
func (h *Host) SetYaw(yaw float64) { h.yaw = yaw }

// Facing returns the garment side turned toward the camera.
func (h *Host) Facing() decal.Side { return geometry.FacingSide(h.yaw) }

// Orbit rotates the model. Both axes are unclamped.
func (h *Host) Orbit(dYaw, dPitch float64) {
	if h.mesh == nil {
		return
	}
	h.yaw += dYaw
	h.pitch += dPitch
}

// Zoom applies a wheel delta to the camera distance.
func (h *Host) Zoom(delta float64) { h.cam.HandleZoom(delta) }

// Pinch applies a change in two-finger distance to the camera distance.
func (h *Host) Pinch(delta float64) { h.cam.HandlePinch(delta) }

// ModelMatrix is the model local-to-world transform: the fit applied
// about the model center, then pitch and yaw.
func (h *Host) ModelMatrix() math.Mat4 {
	fit := math.Translate(h.fitT.X, h.fitT.Y, h.fitT.Z).Mul(math.Scale(h.fitS, h.fitS, h.fitS))
	return math.RotateX(h.pitch).Mul(math.RotateY(h.yaw)).Mul(fit)
}

// View returns the projection state used by the interaction controller.
func (h *Host) View() geometry.View {
	m := h.ModelMatrix()
	return geometry.View{
		Width:     float64(h.width),
		Height:    float64(h.height),
		FOV:       h.cam.FOVRadians(),
		CameraPos: h.cam.Position,
		ViewProj:  h.cam.ViewProjection(),
		Model:     m,
		ModelPos:  m.TransformPoint(h.fitCenter()),
		Yaw:       h.yaw,
	}
}

// fitCenter is the mesh center in local coordinates.
func (h *Host) fitCenter() math.Vec3 {
	if h.mesh == nil {
		return math.Vec3{}
	}
	return h.mesh.Bounds.Center()
}

// RaycastUV returns the texture coordinate of the model surface under a
// viewport pixel.
func (h *Host) RaycastUV(x, y float64) (math.Vec2, bool) {
	if h.mesh == nil || h.loading {
		return math.Vec2{}, false
	}
	r := picking.ScreenToRay(x, y, float64(h.width), float64(h.height), h.cam.ViewProjection().Inverse())
	hit, ok := picking.RaycastMesh(r, h.mesh, h.ModelMatrix())
	if !ok {
		return math.Vec2{}, false
	}
	return hit.UV, true
}

// Scene returns the current frame description.
func (h *Host) Scene() raster.Scene {
	return raster.Scene{
		Mesh:       h.mesh,
		Model:      h.ModelMatrix(),
		ViewProj:   h.cam.ViewProjection(),
		Lights:     h.lights,
		Background: h.background,
	}
}

// Draw presents the current frame.
func (h *Host) Draw() error {
	return h.renderer.Draw(h.Scene(), h.width, h.height)
}

// CaptureSnapshot renders the model turned to yaw with no selection
// showing and encodes the frame. Yaw and selection are restored before it
// returns.
func (h *Host) CaptureSnapshot(sel Selection, yaw float64) (Snapshot, error) {
	if err := h.Ready(); err != nil {
		return Snapshot{}, err
	}

	ref, had := sel.Selected()
	prevYaw := h.yaw
	defer func() {
		h.yaw = prevYaw
		sel.RestoreSelection(ref, had)
		h.refreshComposite()
	}()

	sel.ClearSelection()
	h.yaw = yaw
	h.refreshComposite()

	w, ht := h.width, h.height
	if h.snapW > 0 && h.snapH > 0 {
		w, ht = h.snapW, h.snapH
		h.cam.SetAspect(w, ht)
		defer h.cam.SetAspect(h.width, h.height)
	}
	img, err := h.renderer.Capture(h.Scene(), w, ht)
	if err != nil {
		return Snapshot{}, fmt.Errorf("capture at yaw %.3f: %w", yaw, err)
	}
	url, err := texture.DataURL(img, h.format)
	if err != nil {
		return Snapshot{}, fmt.Errorf("encode snapshot: %w", err)
	}
	h.log.Debug("snapshot captured",
		zap.Float64("yaw", yaw),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()),
		zap.Int("bytes", len(url)))
	return Snapshot{Yaw: yaw, Image: img, DataURL: url}, nil
}

func (h *Host) refreshComposite() {
	if h.source != nil {
		h.SetComposite(h.source(h.Facing()))
	}
}
