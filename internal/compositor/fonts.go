package compositor

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gogpu/gg/text"
	"go.uber.org/zap"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"

	"github.com/Faultbox/garment-designer/internal/logger"
)

// FontGroup is a named set of font families offered for text decals.
type FontGroup struct {
	Name     string
	Families []string
	style    []byte // built-in fallback TTF
}

// FontCatalog lists the selectable families in display order.
var FontCatalog = []FontGroup{
	{"Script", []string{"Great Vibes", "Sacramento", "Allura", "Kalam", "Dancing Script", "Caveat"}, goitalic.TTF},
	{"Personality", []string{"Damion", "Pacifico", "Lobster", "Permanent Marker", "Rock Salt"}, gobolditalic.TTF},
	{"Serif", []string{"Playfair Display", "Lora", "Arvo", "Roboto Slab", "Cormorant Garamond"}, gomedium.TTF},
	{"Sans", []string{"Bebas Neue", "Oswald", "Anton", "Montserrat", "Raleway"}, gobold.TTF},
	{"Decorative", []string{"Cinzel Decorative", "Josefin Sans", "Indie Flower"}, gosmallcaps.TTF},
}

// KnownFamily reports whether family is in the catalog.
func KnownFamily(family string) bool {
	_, ok := groupOf(family)
	return ok
}

func groupOf(family string) (FontGroup, bool) {
	for _, g := range FontCatalog {
		for _, f := range g.Families {
			if strings.EqualFold(f, family) {
				return g, true
			}
		}
	}
	return FontGroup{}, false
}

// Fonts resolves family names to parsed font sources. A TTF or OTF named
// after the family in Dir wins; otherwise the family's group falls back to
// a Go font of similar style. Sources are parsed once and cached.
type Fonts struct {
	Dir string

	mu      sync.Mutex
	sources map[string]*text.FontSource
	label   *text.FontSource
	log     *zap.Logger
}

// NewFonts creates a registry reading optional font files from dir.
func NewFonts(dir string) *Fonts {
	return &Fonts{
		Dir:     dir,
		sources: make(map[string]*text.FontSource),
		log:     logger.Named("fonts"),
	}
}

// Source returns the font source for family, or nil if even the
// built-in fallback fails to parse.
func (f *Fonts) Source(family string) *text.FontSource {
	key := strings.ToLower(family)

	f.mu.Lock()
	defer f.mu.Unlock()
	if src, ok := f.sources[key]; ok {
		return src
	}

	src := f.loadFile(family)
	if src == nil {
		data := goregular.TTF
		if g, ok := groupOf(family); ok {
			data = g.style
		}
		src = f.parse(family, data)
	}
	if src != nil {
		f.sources[key] = src
	}
	return src
}

// Label returns the bold face used for gizmo dimension labels.
func (f *Fonts) Label(size float64) text.Face {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.label == nil {
		f.label = f.parse("label", gobold.TTF)
	}
	if f.label == nil {
		return nil
	}
	return f.label.Face(size)
}

func (f *Fonts) parse(name string, data []byte) *text.FontSource {
	src, err := text.NewFontSource(data)
	if err != nil {
		f.log.Error("built-in font failed to parse", zap.String("family", name), zap.Error(err))
		return nil
	}
	return src
}

// Face returns family at size pixels, or nil if no font could be loaded.
func (f *Fonts) Face(family string, size float64) text.Face {
	src := f.Source(family)
	if src == nil {
		return nil
	}
	return src.Face(size)
}

func (f *Fonts) loadFile(family string) *text.FontSource {
	if f.Dir == "" {
		return nil
	}
	for _, name := range fontFileNames(family) {
		path := filepath.Join(f.Dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		src, err := text.NewFontSource(data)
		if err != nil {
			f.log.Warn("skipping unreadable font file", zap.String("path", path), zap.Error(err))
			continue
		}
		f.log.Debug("font loaded", zap.String("family", family), zap.String("path", path))
		return src
	}
	return nil
}

// fontFileNames lists the file names tried for a family, e.g. "Great
// Vibes" → GreatVibes-Regular.ttf, GreatVibes.ttf, Great Vibes.ttf.
func fontFileNames(family string) []string {
	compact := strings.ReplaceAll(family, " ", "")
	var names []string
	for _, base := range []string{compact + "-Regular", compact, family} {
		for _, ext := range []string{".ttf", ".otf"} {
			names = append(names, base+ext)
		}
	}
	return names
}
