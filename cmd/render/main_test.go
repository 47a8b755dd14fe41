package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/garment-designer/internal/config"
	"github.com/Faultbox/garment-designer/internal/engine/texture"
	"github.com/Faultbox/garment-designer/internal/handoff"
)

const testScene = `
color: "#00162d"
fabric: premium
size: l
quantity: 3
decals:
  - kind: text
    side: back
    text: Hola
    font_size: 64
    text_color: "#ffcc00"
  - kind: image
    offset_x: 0.1
    scale: 0.3
`

func TestRun(t *testing.T) {
	dir := t.TempDir()
	scene := filepath.Join(dir, "design.yaml")
	if err := os.WriteFile(scene, []byte(testScene), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Viewport.Width, cfg.Viewport.Height = 48, 48
	cfg.Canvas.Size = 128
	cfg.Snapshot.Supersample = 1
	out := filepath.Join(dir, "out")

	if err := run(context.Background(), cfg, scene, out); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	for _, name := range []string{"front.png", "back.png", "composite.png"} {
		img, err := texture.DecodeFile(filepath.Join(out, name))
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if name == "composite.png" && img.Bounds().Dx() != 128 {
			t.Errorf("expected 128px composite, got %d", img.Bounds().Dx())
		}
	}

	rec, err := handoff.Read(handoff.NewFileSlot(out), handoff.DefaultKey)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Size != "L" || rec.Quantity != 3 || rec.FabricType != "premium" {
		t.Errorf("unexpected options in record %+v", rec)
	}
	if len(rec.TextElements) != 1 || rec.TextElements[0].Side != "back" || rec.TextElements[0].Color != "#ffcc00" {
		t.Errorf("unexpected text elements %+v", rec.TextElements)
	}
	if len(rec.ImageElements) != 1 || rec.ImageElements[0].ScaleX != 0.3 {
		t.Errorf("unexpected image elements %+v", rec.ImageElements)
	}
}

func TestRunMissingScene(t *testing.T) {
	err := run(context.Background(), config.Default(), filepath.Join(t.TempDir(), "nope.yaml"), t.TempDir())
	if err == nil {
		t.Error("expected error for a missing scene")
	}
}
