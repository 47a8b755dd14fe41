package texture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
)

func sample() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 60), G: uint8(y * 80), B: 200, A: 255})
		}
	}
	return img
}

func TestDecodePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, sample()); err != nil {
		t.Fatal(err)
	}
	img, err := DecodeBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 3 {
		t.Errorf("expected 4x3, got %v", img.Bounds())
	}
	if got := img.RGBAAt(2, 1); got.R != 120 || got.G != 80 || got.B != 200 {
		t.Errorf("unexpected pixel %v", got)
	}
}

func TestDecodeFormats(t *testing.T) {
	src := sample()
	tests := []struct {
		name   string
		encode func(*bytes.Buffer) error
	}{
		{"png", func(b *bytes.Buffer) error { return png.Encode(b, src) }},
		{"jpeg", func(b *bytes.Buffer) error { return jpeg.Encode(b, src, &jpeg.Options{Quality: 95}) }},
		{"gif", func(b *bytes.Buffer) error { return gif.Encode(b, src, nil) }},
		{"bmp", func(b *bytes.Buffer) error { return bmp.Encode(b, src) }},
		{"webp", func(b *bytes.Buffer) error { return nativewebp.Encode(b, src, nil) }},
		{"tga", func(b *bytes.Buffer) error { return tga.Encode(b, src) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tt.encode(&buf); err != nil {
				t.Fatal(err)
			}
			img, err := DecodeBytes(buf.Bytes())
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 3 {
				t.Errorf("expected 4x3, got %v", img.Bounds())
			}
		})
	}
}

func TestDecodeUnsupported(t *testing.T) {
	_, err := DecodeBytes([]byte("not an image"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestDecodeCorruptPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, sample()); err != nil {
		t.Fatal(err)
	}
	_, err := DecodeBytes(buf.Bytes()[:buf.Len()/2])
	if err == nil {
		t.Fatal("expected error for truncated png")
	}
	if errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected a decode error, got %v", err)
	}
}

func TestDecodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "art.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, sample()); err != nil {
		t.Fatal(err)
	}
	f.Close()

	img, err := DecodeFile(path)
	if err != nil {
		t.Fatalf("decode file failed: %v", err)
	}
	if img.Bounds().Dx() != 4 {
		t.Errorf("expected width 4, got %d", img.Bounds().Dx())
	}

	if _, err := DecodeFile(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDataURLRoundTrip(t *testing.T) {
	url, err := DataURL(sample(), FormatPNG)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Errorf("unexpected prefix: %.30s", url)
	}
	img, err := ParseDataURL(url)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if img.RGBAAt(3, 2).R != 180 {
		t.Errorf("pixel lost in round trip: %v", img.RGBAAt(3, 2))
	}

	if _, err := ParseDataURL("http://example.com/a.png"); err == nil {
		t.Error("expected error for non-data URL")
	}
}

func TestEncodeWebP(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, sample(), FormatWebP); err != nil {
		t.Fatalf("webp encode failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("RIFF")) {
		t.Error("expected RIFF container")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatPNG, false},
		{"PNG", FormatPNG, false},
		{".webp", FormatWebP, false},
		{"gif", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q): unexpected error %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestImageToRGBAOffset(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 12, 12))
	src.SetRGBA(10, 10, color.RGBA{R: 255, A: 255})
	got := ImageToRGBA(src)
	if got.Bounds().Min != (image.Point{}) {
		t.Errorf("expected origin-anchored bounds, got %v", got.Bounds())
	}
	if got.RGBAAt(0, 0).R != 255 {
		t.Error("pixel not shifted to origin")
	}
}
