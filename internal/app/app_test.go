package app

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/garment-designer/internal/config"
	"github.com/Faultbox/garment-designer/internal/decal"
	"github.com/Faultbox/garment-designer/internal/designer"
	"github.com/Faultbox/garment-designer/internal/engine/input"
	"github.com/Faultbox/garment-designer/internal/engine/model"
	"github.com/Faultbox/garment-designer/internal/engine/texture"
	"github.com/Faultbox/garment-designer/internal/handoff"
	"github.com/Faultbox/garment-designer/internal/logger"
	"github.com/Faultbox/garment-designer/internal/viewport"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Viewport.Width, cfg.Viewport.Height = 64, 64
	cfg.Canvas.Size = 128
	cfg.Handoff.Dir = t.TempDir()
	return cfg
}

func testApp(t *testing.T) *App {
	t.Helper()
	cfg := testConfig(t)
	s, err := designer.FromConfig(cfg, viewport.NewSoftwareRenderer(1))
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}
	s.Host().SetMesh(model.NewPanelGarment())
	s.Pump()
	return &App{cfg: cfg, session: s, running: true, log: logger.Named("app")}
}

func keyDown(a *App, key sdl.Scancode) {
	a.handle(context.Background(), input.Event{Type: input.EventKeyDown, Key: key})
	a.session.Pump()
}

func TestKeyActions(t *testing.T) {
	a := testApp(t)
	store := a.session.Store()

	keyDown(a, sdl.SCANCODE_T)
	ref, ok := store.Selected()
	if !ok || ref.Kind != decal.KindText {
		t.Fatalf("expected new text decal selected, got %v %v", ref, ok)
	}

	keyDown(a, sdl.SCANCODE_S)
	if d, _ := store.Get(ref); d.Side != decal.Back {
		t.Errorf("expected decal moved to back, got %v", d.Side)
	}

	keyDown(a, sdl.SCANCODE_F)
	if d, _ := store.Get(ref); d.Flipped {
		t.Error("expected flip ignored for text")
	}

	keyDown(a, sdl.SCANCODE_DELETE)
	if _, ok := store.Get(ref); ok {
		t.Error("expected decal removed")
	}

	keyDown(a, sdl.SCANCODE_C)
	if a.session.Color() != "#646464" {
		t.Errorf("expected next catalog color, got %q", a.session.Color())
	}

	keyDown(a, sdl.SCANCODE_EQUALS)
	keyDown(a, sdl.SCANCODE_EQUALS)
	keyDown(a, sdl.SCANCODE_MINUS)
	if a.session.Quantity() != 2 {
		t.Errorf("expected quantity 2, got %d", a.session.Quantity())
	}

	keyDown(a, sdl.SCANCODE_ESCAPE)
	if a.running {
		t.Error("expected escape to stop the loop")
	}
}

func TestDropFileAddsImage(t *testing.T) {
	a := testApp(t)
	path := filepath.Join(t.TempDir(), "drop.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := texture.Encode(f, image.NewRGBA(image.Rect(0, 0, 40, 20)), texture.FormatPNG); err != nil {
		t.Fatal(err)
	}
	f.Close()

	a.handle(context.Background(), input.Event{Type: input.EventDropFile, Path: path})
	a.session.Settle()

	snap := a.session.Store().Snapshot()
	if len(snap.Images) != 1 || !snap.Images[0].HasTexture() {
		t.Fatalf("expected one textured image, got %+v", snap.Images)
	}
	if h := snap.Images[0].Height; h != decal.DefaultScale/2 {
		t.Errorf("expected height from aspect 0.5, got %v", h)
	}
}

func TestEnterSubmits(t *testing.T) {
	a := testApp(t)
	keyDown(a, sdl.SCANCODE_T)
	keyDown(a, sdl.SCANCODE_RETURN)

	rec, err := handoff.Read(handoff.NewFileSlot(a.cfg.Handoff.Dir), handoff.DefaultKey)
	if err != nil {
		t.Fatalf("expected a stored record: %v", err)
	}
	if len(rec.TextElements) != 1 || rec.FrontImage == "" || rec.BackImage == "" {
		t.Errorf("unexpected record %+v", rec)
	}
}

func TestPointerDragOrbits(t *testing.T) {
	a := testApp(t)
	ctx := context.Background()
	a.handle(ctx, input.Event{Type: input.EventMouseDown, X: 2, Y: 2, Button: sdl.BUTTON_LEFT})
	a.handle(ctx, input.Event{Type: input.EventMouseMove, X: 52, Y: 2})
	a.handle(ctx, input.Event{Type: input.EventMouseUp, X: 52, Y: 2, Button: sdl.BUTTON_LEFT})

	if yaw := a.session.Host().Yaw(); yaw < 0.49 || yaw > 0.51 {
		t.Errorf("expected yaw 0.5 after a 50px drag, got %v", yaw)
	}
}

func TestStatusTitle(t *testing.T) {
	a := testApp(t)
	got := statusTitle(a.session)
	if !strings.Contains(got, "Blanco") || !strings.Contains(got, "Algodón") || !strings.Contains(got, "M x1") {
		t.Errorf("unexpected title %q", got)
	}

	keyDown(a, sdl.SCANCODE_I)
	if got := statusTitle(a.session); !strings.HasSuffix(got, "10.0 x 10.0 cm") {
		t.Errorf("expected selection size in title, got %q", got)
	}
}
