// Package scene reads YAML design descriptions and applies them to a
// designer session for headless rendering.
package scene

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/garment-designer/internal/decal"
	"github.com/Faultbox/garment-designer/internal/designer"
)

// Scene is a design described in YAML for headless rendering.
type Scene struct {
	Model    string  `yaml:"model"`
	Color    string  `yaml:"color"`
	Fabric   string  `yaml:"fabric"`
	Size     string  `yaml:"size"`
	Quantity int     `yaml:"quantity"`
	Decals   []Decal `yaml:"decals"`
}

// Decal is one decal of a scene. Zero transform fields keep the
// defaults of a freshly added decal. For images with a bitmap, ScaleY is
// replaced by the bitmap aspect once the decode lands.
type Decal struct {
	Kind     string  `yaml:"kind"` // image or text
	Side     string  `yaml:"side"` // front or back
	Image    string  `yaml:"image"`
	OffsetX  float64 `yaml:"offset_x"`
	OffsetY  float64 `yaml:"offset_y"`
	Rotation float64 `yaml:"rotation"`
	Scale    float64 `yaml:"scale"`
	ScaleY   float64 `yaml:"scale_y"`
	Flipped  bool    `yaml:"flipped"`

	Text       string  `yaml:"text"`
	FontFamily string  `yaml:"font_family"`
	FontSize   float64 `yaml:"font_size"`
	TextColor  string  `yaml:"text_color"`
}

// Load reads a scene file. Relative image paths are resolved against
// the scene's directory.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene: %w", err)
	}
	var sc Scene
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parsing scene: %w", err)
	}
	dir := filepath.Dir(path)
	for i := range sc.Decals {
		if img := sc.Decals[i].Image; img != "" && !filepath.IsAbs(img) {
			sc.Decals[i].Image = filepath.Join(dir, img)
		}
	}
	if sc.Model != "" && !filepath.IsAbs(sc.Model) {
		sc.Model = filepath.Join(dir, sc.Model)
	}
	return &sc, nil
}

// Apply sets the product options and adds every decal. The model must be
// loaded; image decodes are started and finish on the next Settle.
func (sc *Scene) Apply(s *designer.Session) error {
	if sc.Color != "" {
		if err := s.SetColor(sc.Color); err != nil {
			return err
		}
	}
	if sc.Fabric != "" {
		if err := s.SetFabric(sc.Fabric); err != nil {
			return err
		}
	}
	if sc.Size != "" {
		if err := s.SetSize(sc.Size); err != nil {
			return err
		}
	}
	if sc.Quantity != 0 {
		if err := s.SetQuantity(sc.Quantity); err != nil {
			return err
		}
	}

	for i, sd := range sc.Decals {
		if err := sd.apply(s); err != nil {
			return fmt.Errorf("decal %d: %w", i, err)
		}
	}
	s.ClearSelection()
	return nil
}

func (sd Decal) apply(s *designer.Session) error {
	var (
		ref decal.Ref
		err error
	)
	switch sd.Kind {
	case "image", "":
		ref, err = s.AddImage()
	case "text":
		ref, err = s.AddText()
	default:
		return fmt.Errorf("unknown decal kind %q", sd.Kind)
	}
	if err != nil {
		return err
	}

	var side decal.Side
	switch sd.Side {
	case "front", "":
		side = decal.Front
	case "back":
		side = decal.Back
	default:
		return fmt.Errorf("unknown side %q", sd.Side)
	}

	err = s.Store().Update(ref, func(d *decal.Decal) {
		if side != d.Side {
			*d = decal.New(d.Kind, d.ID, side)
		}
		if sd.OffsetX != 0 {
			d.OffsetX = sd.OffsetX
		}
		if sd.OffsetY != 0 {
			d.OffsetY = sd.OffsetY
		}
		d.Rotation = sd.Rotation
		if sd.Scale != 0 {
			d.SetUniformScale(sd.Scale)
		}
		if sd.ScaleY != 0 {
			d.Height = decal.ClampScale(sd.ScaleY)
		}
		d.Flipped = sd.Flipped && d.Kind == decal.KindImage
	})
	if err != nil {
		return err
	}

	if ref.Kind == decal.KindText {
		return sd.applyText(s, ref)
	}
	if sd.Image != "" {
		return s.LoadImage(ref, sd.Image)
	}
	return nil
}

func (sd Decal) applyText(s *designer.Session, ref decal.Ref) error {
	if sd.Text != "" {
		if err := s.SetText(ref, sd.Text); err != nil {
			return err
		}
	}
	if sd.FontFamily != "" {
		if err := s.SetFontFamily(ref, sd.FontFamily); err != nil {
			return err
		}
	}
	if sd.FontSize != 0 {
		if err := s.SetFontSize(ref, sd.FontSize); err != nil {
			return err
		}
	}
	if sd.TextColor != "" {
		return s.SetTextColor(ref, sd.TextColor)
	}
	return nil
}
