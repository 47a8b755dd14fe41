// Package texture decodes user artwork and encodes composites and
// snapshots.
package texture

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned for input no registered decoder accepts
// and for unknown output formats.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Format is an output encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
)

// ParseFormat maps a config or file-extension string to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(s), ".") {
	case "", "png":
		return FormatPNG, nil
	case "webp":
		return FormatWebP, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// MIME returns the media type used in data URLs.
func (f Format) MIME() string {
	if f == FormatWebP {
		return "image/webp"
	}
	return "image/png"
}

// decoder pairs a format's leading bytes with its decoder.
type decoder struct {
	magic  string // '?' matches any byte
	decode func(io.Reader) (image.Image, error)
}

// The tga package registers with image.RegisterFormat under an empty
// magic, which matches every stream, so formats are sniffed here instead
// of through image.Decode. TGA has no signature and is tried last.
var decoders = []decoder{
	{"\x89PNG\r\n\x1a\n", png.Decode},
	{"\xff\xd8", jpeg.Decode},
	{"GIF8", gif.Decode},
	{"BM", bmp.Decode},
	{"RIFF????WEBP", webp.Decode},
}

func sniff(data []byte, magic string) bool {
	if len(data) < len(magic) {
		return false
	}
	for i := 0; i < len(magic); i++ {
		if magic[i] != '?' && magic[i] != data[i] {
			return false
		}
	}
	return true
}

// Decode reads PNG, JPEG, GIF, BMP, WebP or TGA and returns it as RGBA.
func Decode(r io.Reader) (*image.RGBA, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("texture: read: %w", err)
	}
	for _, d := range decoders {
		if !sniff(data, d.magic) {
			continue
		}
		img, err := d.decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("texture: decode: %w", err)
		}
		return ImageToRGBA(img), nil
	}
	img, err := tga.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	return ImageToRGBA(img), nil
}

// DecodeBytes is Decode over an in-memory upload.
func DecodeBytes(data []byte) (*image.RGBA, error) {
	return Decode(bytes.NewReader(data))
}

// DecodeFile reads and decodes the image at path.
func DecodeFile(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("texture: open %s: %w", path, err)
	}
	defer f.Close()
	img, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("texture: %s: %w", path, err)
	}
	return img, nil
}

// Encode writes img in the given format.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case FormatPNG, "":
		return png.Encode(w, img)
	case FormatWebP:
		return nativewebp.Encode(w, img, nil)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(f))
	}
}

// DataURL encodes img and wraps it as a base64 data URL.
func DataURL(img image.Image, f Format) (string, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, f); err != nil {
		return "", err
	}
	return "data:" + f.MIME() + ";base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// ParseDataURL decodes the image carried by a base64 data URL.
func ParseDataURL(url string) (*image.RGBA, error) {
	header, payload, ok := strings.Cut(url, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("texture: malformed data URL")
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("texture: data URL payload: %w", err)
	}
	return DecodeBytes(raw)
}

// ImageToRGBA converts any image.Image to *image.RGBA anchored at the origin.
func ImageToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
