package viewport

import (
	"errors"
	"image"
	gomath "math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/garment-designer/internal/decal"
	"github.com/Faultbox/garment-designer/internal/engine/model"
	"github.com/Faultbox/garment-designer/internal/geometry"
)

func newPanelHost(t *testing.T) *Host {
	t.Helper()
	h := New(200, 200, NewSoftwareRenderer(1))
	h.SetMesh(model.NewPanelGarment())
	return h
}

func TestReady(t *testing.T) {
	h := New(100, 100, NewSoftwareRenderer(1))
	if err := h.Ready(); !errors.Is(err, ErrNoModel) {
		t.Errorf("expected ErrNoModel, got %v", err)
	}

	done := make(chan func(), 1)
	h.LoadModel("", func(fn func()) { done <- fn })
	if err := h.Ready(); !errors.Is(err, ErrModelLoading) {
		t.Errorf("expected ErrModelLoading, got %v", err)
	}
	if _, ok := h.RaycastUV(50, 50); ok {
		t.Error("expected no hit while loading")
	}

	(<-done)()
	if err := h.Ready(); err != nil {
		t.Errorf("expected ready, got %v", err)
	}
	if h.Materials().Len() != 2 {
		t.Errorf("expected 2 snapshotted materials, got %d", h.Materials().Len())
	}
}

func TestLoadModelFailure(t *testing.T) {
	h := New(100, 100, NewSoftwareRenderer(1))
	var loadErr error
	h.OnLoaded(func(err error) { loadErr = err })

	done := make(chan func(), 1)
	h.LoadModel(filepath.Join(t.TempDir(), "missing.glb"), func(fn func()) { done <- fn })
	(<-done)()

	if loadErr == nil || h.LoadErr() == nil {
		t.Fatal("expected load error")
	}
	if h.Mesh() != nil || h.Loaded() {
		t.Error("expected empty viewport after failure")
	}
	if err := h.Ready(); !errors.Is(err, ErrNoModel) {
		t.Errorf("expected ErrNoModel, got %v", err)
	}
}

func TestLoadModelSuperseded(t *testing.T) {
	h := New(100, 100, NewSoftwareRenderer(1))
	done := make(chan func(), 2)
	post := func(fn func()) { done <- fn }

	h.LoadModel(filepath.Join(t.TempDir(), "missing.glb"), post)
	h.LoadModel("", post)
	(<-done)()
	(<-done)()

	if !h.Loaded() || h.LoadErr() != nil {
		t.Errorf("expected the later load to win, got loaded=%v err=%v", h.Loaded(), h.LoadErr())
	}
}

func TestViewCentersModel(t *testing.T) {
	h := newPanelHost(t)
	v := h.View()
	if v.ModelPos.Length() > 1e-6 {
		t.Errorf("expected model centered at origin, got %v", v.ModelPos)
	}
	if v.Facing() != decal.Front {
		t.Errorf("expected front facing, got %v", v.Facing())
	}
	h.Orbit(gomath.Pi, 0)
	if h.View().Facing() != decal.Back {
		t.Error("expected back facing after half turn")
	}
}

func TestOrbitWithoutModel(t *testing.T) {
	h := New(100, 100, NewSoftwareRenderer(1))
	h.Orbit(1, 1)
	if h.Yaw() != 0 || h.Pitch() != 0 {
		t.Errorf("expected orbit ignored, got yaw %v pitch %v", h.Yaw(), h.Pitch())
	}
}

func TestZoomClamp(t *testing.T) {
	h := newPanelHost(t)
	h.Zoom(10000)
	if h.Camera().Position.Z != 10 {
		t.Errorf("expected z clamped to 10, got %v", h.Camera().Position.Z)
	}
	h.Pinch(10000)
	if h.Camera().Position.Z != 1 {
		t.Errorf("expected z clamped to 1, got %v", h.Camera().Position.Z)
	}
}

func TestAnchorRaycastsToPlacement(t *testing.T) {
	tests := []struct {
		name string
		side decal.Side
		yaw  float64
	}{
		{"front", decal.Front, 0},
		{"back", decal.Back, gomath.Pi},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newPanelHost(t)
			h.SetYaw(tt.yaw)
			d := decal.New(decal.KindImage, 1, tt.side)
			d.OffsetX, d.OffsetY = 0.1, -0.05

			p := h.View().WorldToScreen(d)
			uv, ok := h.RaycastUV(p.X, p.Y)
			if !ok {
				t.Fatalf("expected hit at %v", p)
			}
			want := geometry.CanvasToUV(geometry.Place(d).Center)
			if gomath.Abs(uv.X-want.X) > 1e-4 || gomath.Abs(uv.Y-want.Y) > 1e-4 {
				t.Errorf("expected uv %v, got %v", want, uv)
			}
		})
	}
}

func TestCaptureSnapshotRestoresState(t *testing.T) {
	h := newPanelHost(t)
	store := decal.NewStore()
	d := store.Add(decal.KindImage, decal.Front)

	type call struct {
		facing   decal.Side
		selected bool
	}
	var calls []call
	h.SetCompositeSource(func(facing decal.Side) *image.RGBA {
		_, sel := store.Selected()
		calls = append(calls, call{facing, sel})
		return image.NewRGBA(image.Rect(0, 0, 8, 8))
	})

	h.SetYaw(0.3)
	for _, yaw := range []float64{0, gomath.Pi} {
		calls = calls[:0]
		snap, err := h.CaptureSnapshot(store, yaw)
		if err != nil {
			t.Fatalf("capture %v: %v", yaw, err)
		}
		if !strings.HasPrefix(snap.DataURL, "data:image/png;base64,") {
			t.Errorf("unexpected data url prefix %q", snap.DataURL[:min(len(snap.DataURL), 30)])
		}
		if snap.Image.Bounds().Dx() != 200 {
			t.Errorf("expected viewport-sized snapshot, got %v", snap.Image.Bounds())
		}
		if h.Yaw() != 0.3 {
			t.Errorf("expected yaw restored to 0.3, got %v", h.Yaw())
		}
		ref, ok := store.Selected()
		if !ok || ref != d.Ref() {
			t.Errorf("expected selection restored, got %v %v", ref, ok)
		}
		if len(calls) != 2 || calls[0].selected || !calls[1].selected {
			t.Errorf("expected recompose without then with selection, got %+v", calls)
		}
		if calls[0].facing != geometry.FacingSide(yaw) {
			t.Errorf("expected capture composite for %v, got %v", geometry.FacingSide(yaw), calls[0].facing)
		}
	}
}

func TestCaptureSnapshotWithoutModel(t *testing.T) {
	h := New(100, 100, NewSoftwareRenderer(1))
	if _, err := h.CaptureSnapshot(decal.NewStore(), 0); !errors.Is(err, ErrNoModel) {
		t.Errorf("expected ErrNoModel, got %v", err)
	}
}

func TestSnapshotsDifferBySide(t *testing.T) {
	h := newPanelHost(t)
	tex := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			i := tex.PixOffset(x, y)
			if y >= 8 {
				tex.Pix[i] = 255 // front band red
			} else {
				tex.Pix[i+2] = 255 // back band blue
			}
			tex.Pix[i+3] = 255
		}
	}
	h.SetCompositeSource(func(decal.Side) *image.RGBA { return tex })
	store := decal.NewStore()

	front, err := h.CaptureSnapshot(store, 0)
	if err != nil {
		t.Fatal(err)
	}
	back, err := h.CaptureSnapshot(store, gomath.Pi)
	if err != nil {
		t.Fatal(err)
	}
	f := front.Image.RGBAAt(100, 100)
	b := back.Image.RGBAAt(100, 100)
	if f.R <= f.B {
		t.Errorf("expected red front at center, got %v", f)
	}
	if b.B <= b.R {
		t.Errorf("expected blue back at center, got %v", b)
	}
}
