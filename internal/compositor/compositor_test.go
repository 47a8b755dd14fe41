package compositor

import (
	"image"
	"image/color"
	"image/draw"
	gomath "math"
	"testing"
	"time"

	"github.com/Faultbox/garment-designer/internal/decal"
	gmath "github.com/Faultbox/garment-designer/pkg/math"
)

var (
	white = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	red   = color.RGBA{R: 0xff, A: 0xff}
	blue  = color.RGBA{B: 0xff, A: 0xff}
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

func isRed(c color.RGBA) bool {
	return c.R > 200 && c.G < 60 && c.B < 60
}

func imageDecal(side decal.Side, tex image.Image) decal.Decal {
	d := decal.New(decal.KindImage, 1, side)
	d.Texture = tex
	return d
}

func near8(a, b uint8) bool {
	d := int(a) - int(b)
	return d >= -1 && d <= 1
}

func TestComposeBaseColor(t *testing.T) {
	c := New(nil, WithSize(64))
	img := c.Compose(Frame{BaseColor: "#00162d"})

	if img.Bounds().Dx() != 64 {
		t.Fatalf("expected 64px canvas, got %v", img.Bounds())
	}
	got := img.RGBAAt(10, 50)
	if !near8(got.R, 0x00) || !near8(got.G, 0x16) || !near8(got.B, 0x2d) || got.A != 0xff {
		t.Errorf("expected #00162d, got %v", got)
	}
}

func TestComposeImagePlacement(t *testing.T) {
	c := New(nil, WithSize(256))
	d := imageDecal(decal.Front, solid(10, 10, red))
	img := c.Compose(Frame{
		BaseColor: "#ffffff",
		Decals:    decal.Snapshot{Images: []decal.Decal{d}},
	})

	// Front band center is 0.75 of the height; offsetY lifts it by
	// 0.0625 of the band.
	if got := img.RGBAAt(128, 184); !isRed(got) {
		t.Errorf("expected decal at its anchor, got %v", got)
	}
	if got := img.RGBAAt(128, 60); got != white {
		t.Errorf("back band should stay base color, got %v", got)
	}
}

func TestComposeSkipsTexturelessImage(t *testing.T) {
	c := New(nil, WithSize(64))
	d := imageDecal(decal.Front, nil)
	img := c.Compose(Frame{BaseColor: "#ffffff", Decals: decal.Snapshot{Images: []decal.Decal{d}}})
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			if img.RGBAAt(x, y) != white {
				t.Fatalf("expected untouched canvas, got %v at %d,%d", img.RGBAAt(x, y), x, y)
			}
		}
	}
}

func TestComposeBackMirrorsOffsetX(t *testing.T) {
	c := New(nil, WithSize(256))
	d := imageDecal(decal.Front, solid(10, 10, red))
	d.OffsetX, d.OffsetY = 0.1, -0.05

	front := c.Compose(Frame{BaseColor: "#ffffff", Decals: decal.Snapshot{Images: []decal.Decal{d}}})
	// x = (1024 + 0.1*1024) / 8, y = (1536 + 0.05*1024) / 8
	if !isRed(front.RGBAAt(140, 198)) {
		t.Errorf("front decal missing at +offsetX, got %v", front.RGBAAt(140, 198))
	}

	d.Side = decal.Back
	back := c.Compose(Frame{BaseColor: "#ffffff", Decals: decal.Snapshot{Images: []decal.Decal{d}}})
	// Mirrored in X, offsetY unchanged: y = (512 + 0.05*1024) / 8
	if !isRed(back.RGBAAt(115, 70)) {
		t.Errorf("back decal missing at -offsetX, got %v", back.RGBAAt(115, 70))
	}
	if isRed(back.RGBAAt(140, 70)) {
		t.Error("back decal should not sit at +offsetX")
	}
}

func TestComposeFlip(t *testing.T) {
	tex := solid(20, 10, blue)
	draw.Draw(tex, image.Rect(0, 0, 10, 10), &image.Uniform{C: red}, image.Point{}, draw.Src)

	c := New(nil, WithSize(256))
	d := imageDecal(decal.Front, tex)
	d.SetUniformScale(0.4)

	// Decal spans 0.4*1024/8 = 51.2px around x=128.
	left := func(img *image.RGBA) color.RGBA { return img.RGBAAt(110, 184) }

	plain := c.Compose(Frame{BaseColor: "#ffffff", Decals: decal.Snapshot{Images: []decal.Decal{d}}})
	if !isRed(left(plain)) {
		t.Errorf("expected red on the left, got %v", left(plain))
	}

	d.Flipped = true
	flipped := c.Compose(Frame{BaseColor: "#ffffff", Decals: decal.Snapshot{Images: []decal.Decal{d}}})
	if got := left(flipped); got.B < 200 || got.R > 60 {
		t.Errorf("expected blue on the left when flipped, got %v", got)
	}
}

func TestGizmoFollowsFacingSide(t *testing.T) {
	c := New(nil, WithSize(256))
	d := imageDecal(decal.Front, solid(10, 10, red))
	ref := d.Ref()

	none := c.Compose(Frame{BaseColor: "#ffffff", Decals: decal.Snapshot{Images: []decal.Decal{d}}})
	selected := decal.Snapshot{Images: []decal.Decal{d}, Selected: &ref}

	facingFront := c.Compose(Frame{BaseColor: "#ffffff", Decals: selected, Facing: decal.Front})
	facingBack := c.Compose(Frame{BaseColor: "#ffffff", Decals: selected, Facing: decal.Back})

	if !equalPix(none, facingBack) {
		t.Error("gizmo must be hidden while the decal's side faces away")
	}
	if equalPix(none, facingFront) {
		t.Error("gizmo should be drawn while the decal's side faces the camera")
	}
}

func TestComposeText(t *testing.T) {
	c := New(nil, WithSize(1024))
	d := decal.New(decal.KindText, 1, decal.Front)
	d.SetUniformScale(0.6)

	img := c.Compose(Frame{BaseColor: "#ffffff", Decals: decal.Snapshot{Texts: []decal.Decal{d}}})

	// Anchor at (512, (1536-64)/2); look for ink around it.
	inked := 0
	for y := 700; y < 772; y++ {
		for x := 400; x < 624; x++ {
			if img.RGBAAt(x, y) != white {
				inked++
			}
		}
	}
	if inked == 0 {
		t.Error("expected text pixels around the anchor")
	}
}

func equalPix(a, b *image.RGBA) bool {
	if len(a.Pix) != len(b.Pix) {
		return false
	}
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			return false
		}
	}
	return true
}

func TestPlacementAff(t *testing.T) {
	m := placementAff(gmath.Vec2{X: 100, Y: 200}, 40, 20, gomath.Pi/2, false, 10, 10, 1)
	apply := func(x, y float64) (float64, float64) {
		return m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]
	}

	if x, y := apply(5, 5); gomath.Abs(x-100) > 1e-9 || gomath.Abs(y-200) > 1e-9 {
		t.Errorf("source center should land on the anchor, got %v,%v", x, y)
	}
	// Right edge middle turns to point down the canvas.
	if x, y := apply(10, 5); gomath.Abs(x-100) > 1e-9 || gomath.Abs(y-220) > 1e-9 {
		t.Errorf("expected (100, 220), got %v,%v", x, y)
	}

	flipped := placementAff(gmath.Vec2{}, 10, 10, 0, true, 10, 10, 2)
	if x := flipped[0]*10 + flipped[1]*5 + flipped[2]; gomath.Abs(x+10) > 1e-9 {
		t.Errorf("flipped right edge should map to -10, got %v", x)
	}
}

func TestDebouncer(t *testing.T) {
	d := NewDebouncer(DefaultDebounce)
	t0 := time.Unix(0, 0)

	if d.Ready(t0) {
		t.Fatal("nothing pending yet")
	}
	d.Trigger(t0)
	d.Trigger(t0.Add(10 * time.Millisecond))

	if d.Ready(t0.Add(20 * time.Millisecond)) {
		t.Error("second trigger should push the deadline out")
	}
	if !d.Ready(t0.Add(26 * time.Millisecond)) {
		t.Error("expected ready after the quiet period")
	}
	if d.Ready(t0.Add(100 * time.Millisecond)) {
		t.Error("ready must fire once per burst")
	}

	d.Trigger(t0)
	if !d.Flush() || d.Pending() {
		t.Error("flush should consume the pending change")
	}
}

func TestFontCatalog(t *testing.T) {
	n := 0
	for _, g := range FontCatalog {
		n += len(g.Families)
	}
	if n != 24 {
		t.Errorf("expected 24 families, got %d", n)
	}
	if !KnownFamily("great vibes") || KnownFamily("Comic Sans") {
		t.Error("unexpected catalog membership")
	}
}

func TestFontsFallback(t *testing.T) {
	f := NewFonts(t.TempDir())
	if f.Source("Great Vibes") == nil {
		t.Fatal("expected built-in fallback for a catalog family")
	}
	if f.Source("Unknown Family") == nil {
		t.Fatal("expected regular fallback for an unknown family")
	}
	if f.Source("Great Vibes") != f.Source("great vibes") {
		t.Error("sources should be cached case-insensitively")
	}
	if f.Label(40) == nil {
		t.Error("expected a label face")
	}
}

func TestFontFileNames(t *testing.T) {
	names := fontFileNames("Great Vibes")
	want := map[string]bool{"GreatVibes-Regular.ttf": false, "GreatVibes.otf": false, "Great Vibes.ttf": false}
	for _, n := range names {
		if _, ok := want[n]; ok {
			want[n] = true
		}
	}
	for n, seen := range want {
		if !seen {
			t.Errorf("expected candidate %s", n)
		}
	}
}
