// Package handoff defines the design record passed to the order flow and
// the key-value slot it is written to.
package handoff

import (
	"encoding/json"
	"fmt"

	"github.com/Faultbox/garment-designer/internal/decal"
)

// DefaultKey is the slot key the order flow reads.
const DefaultKey = "currentDesign"

// Record is a submitted design.
type Record struct {
	ShirtColor    string         `json:"shirtColor"`
	FabricType    string         `json:"fabricType"`
	Size          string         `json:"size"`
	Quantity      int            `json:"quantity"`
	ImageElements []ImageElement `json:"imageElements"`
	TextElements  []TextElement  `json:"textElements"`
	FrontImage    string         `json:"frontImage"`
	BackImage     string         `json:"backImage"`
}

// Transform is the placement shared by both element kinds. Scale is the
// uniform value kept for older readers and always equals ScaleX.
type Transform struct {
	ID       int     `json:"id"`
	Type     string  `json:"type"`
	Side     string  `json:"side"`
	OffsetX  float64 `json:"offsetX"`
	OffsetY  float64 `json:"offsetY"`
	Rotation float64 `json:"rotation"`
	Scale    float64 `json:"scale"`
	ScaleX   float64 `json:"scaleX"`
	ScaleY   float64 `json:"scaleY"`
}

// ImageElement is an image decal. Bitmaps are not serialized, so Texture
// is always null.
type ImageElement struct {
	Transform
	Flipped bool `json:"flipped"`
	Texture any  `json:"texture"`
}

// TextElement is a text decal.
type TextElement struct {
	Transform
	Text       string  `json:"text"`
	FontFamily string  `json:"fontFamily"`
	FontSize   float64 `json:"fontSize"`
	Color      string  `json:"color"`
}

func transformOf(d decal.Decal) Transform {
	return Transform{
		ID:       d.ID,
		Type:     d.Kind.String(),
		Side:     d.Side.String(),
		OffsetX:  d.OffsetX,
		OffsetY:  d.OffsetY,
		Rotation: d.Rotation,
		Scale:    d.Scale(),
		ScaleX:   d.Width,
		ScaleY:   d.Height,
	}
}

// NewImageElement records an image decal without its bitmap.
func NewImageElement(d decal.Decal) ImageElement {
	return ImageElement{Transform: transformOf(d), Flipped: d.Flipped}
}

// NewTextElement records a text decal.
func NewTextElement(d decal.Decal) TextElement {
	return TextElement{
		Transform:  transformOf(d),
		Text:       d.Text,
		FontFamily: d.FontFamily,
		FontSize:   d.FontSize,
		Color:      d.Color,
	}
}

// Elements converts a store snapshot into record element lists.
func Elements(s decal.Snapshot) ([]ImageElement, []TextElement) {
	images := make([]ImageElement, 0, len(s.Images))
	for _, d := range s.Images {
		images = append(images, NewImageElement(d))
	}
	texts := make([]TextElement, 0, len(s.Texts))
	for _, d := range s.Texts {
		texts = append(texts, NewTextElement(d))
	}
	return images, texts
}

func (t Transform) decal(kind decal.Kind) (decal.Decal, error) {
	side := decal.Front
	switch t.Side {
	case "front", "":
	case "back":
		side = decal.Back
	default:
		return decal.Decal{}, fmt.Errorf("element %d: unknown side %q", t.ID, t.Side)
	}
	d := decal.New(kind, t.ID, side)
	d.OffsetX, d.OffsetY, d.Rotation = t.OffsetX, t.OffsetY, t.Rotation

	// Designs written before independent axes carry only scale.
	w, h := t.ScaleX, t.ScaleY
	if w == 0 {
		w = t.Scale
	}
	if h == 0 {
		h = w * d.Aspect()
	}
	d.Width, d.Height = decal.ClampScale(w), decal.ClampScale(h)
	return d, nil
}

// Decal rebuilds a textureless image decal.
func (e ImageElement) Decal() (decal.Decal, error) {
	d, err := e.Transform.decal(decal.KindImage)
	if err != nil {
		return d, err
	}
	d.Flipped = e.Flipped
	return d, nil
}

// Decal rebuilds a text decal.
func (e TextElement) Decal() (decal.Decal, error) {
	d, err := e.Transform.decal(decal.KindText)
	if err != nil {
		return d, err
	}
	d.Text, d.FontFamily, d.FontSize, d.Color = e.Text, e.FontFamily, e.FontSize, e.Color
	return d, nil
}

// Marshal encodes the record as JSON.
func (r *Record) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// Unmarshal decodes a record written by Marshal.
func Unmarshal(data []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode design record: %w", err)
	}
	return &r, nil
}
