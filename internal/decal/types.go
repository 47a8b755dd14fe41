// Package decal holds the image and text decals placed on the garment and
// the store that owns them.
package decal

import (
	"image"
	"math"
)

// Kind distinguishes image decals from text decals.
type Kind int

const (
	KindImage Kind = iota
	KindText
)

func (k Kind) String() string {
	if k == KindText {
		return "text"
	}
	return "image"
}

// Side selects the half of the composite texture a decal lives on.
type Side int

const (
	Front Side = iota
	Back
)

func (s Side) String() string {
	if s == Back {
		return "back"
	}
	return "front"
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Back {
		return Front
	}
	return Back
}

// Transform limits and defaults, in normalized design-area units.
const (
	MinScale     = 0.02
	MaxScale     = 0.8
	DefaultScale = 0.2
	TextAspect   = 0.3
	CMPerUnit    = 50.0

	FrontDefaultOffsetY = 0.0625
	BackDefaultOffsetY  = 0.25
)

// Text decal defaults.
const (
	DefaultText       = "Texto ejemplo"
	DefaultFontFamily = "Great Vibes"
	DefaultFontSize   = 48.0
	DefaultTextColor  = "#000000"
)

// Ref identifies a decal. Image and text ids are drawn from one counter but
// live in separate collections, so the kind is part of the identity.
type Ref struct {
	ID   int
	Kind Kind
}

// Decal is one placed image or text element.
//
// Width and Height are the independent extents (scaleX/scaleY in recorded
// designs). The uniform scale used as the corner-drag baseline is derived
// from Width.
type Decal struct {
	ID   int
	Kind Kind
	Side Side

	OffsetX  float64
	OffsetY  float64
	Rotation float64 // radians, clockwise on the canvas
	Width    float64
	Height   float64

	// Image only.
	Flipped bool
	Texture image.Image

	// Text only.
	Text       string
	FontFamily string
	FontSize   float64
	Color      string
}

// Ref returns the decal's identity.
func (d Decal) Ref() Ref {
	return Ref{ID: d.ID, Kind: d.Kind}
}

// Scale returns the uniform scale of the decal.
func (d Decal) Scale() float64 {
	return d.Width
}

// HasTexture reports whether an image decal has a decoded bitmap.
func (d Decal) HasTexture() bool {
	if d.Kind != KindImage || d.Texture == nil {
		return false
	}
	b := d.Texture.Bounds()
	return b.Dx() > 0 && b.Dy() > 0
}

// Aspect returns height/width used for bounding-box math: the bitmap ratio
// for textured images, the fixed text ratio for text, 1 otherwise.
func (d Decal) Aspect() float64 {
	switch {
	case d.Kind == KindText:
		return TextAspect
	case d.HasTexture():
		b := d.Texture.Bounds()
		return float64(b.Dy()) / float64(b.Dx())
	default:
		return 1
	}
}

// DimensionsCM returns the printed width and height in centimeters.
func (d Decal) DimensionsCM() (w, h float64) {
	return d.Width * CMPerUnit, d.Height * CMPerUnit
}

// SetUniformScale rescales the decal proportionally: width becomes s and
// height follows the aspect ratio. Both are clamped.
func (d *Decal) SetUniformScale(s float64) {
	d.Width = ClampScale(s)
	d.Height = ClampScale(d.Width * d.Aspect())
}

// ClampScale saturates v to [MinScale, MaxScale].
func ClampScale(v float64) float64 {
	return math.Max(MinScale, math.Min(MaxScale, v))
}

// New returns a decal with the default transform for the given side.
func New(kind Kind, id int, side Side) Decal {
	d := Decal{
		ID:      id,
		Kind:    kind,
		Side:    side,
		OffsetY: FrontDefaultOffsetY,
		Width:   DefaultScale,
		Height:  DefaultScale,
	}
	if side == Back {
		d.OffsetY = BackDefaultOffsetY
	}
	if kind == KindText {
		d.Text = DefaultText
		d.FontFamily = DefaultFontFamily
		d.FontSize = DefaultFontSize
		d.Color = DefaultTextColor
		d.Height = DefaultScale * TextAspect
	}
	return d
}
