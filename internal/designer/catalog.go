package designer

import (
	"errors"
	"strings"
)

var (
	ErrUnknownColor     = errors.New("unknown shirt color")
	ErrUnknownFabric    = errors.New("unknown fabric")
	ErrUnknownSize      = errors.New("unknown size")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
	ErrInvalidTextColor = errors.New("text color must be #rgb or #rrggbb")
)

// ColorOption is a garment base color.
type ColorOption struct {
	Value string
	Name  string
}

// FabricOption is a fabric the order flow can produce.
type FabricOption struct {
	ID   string
	Name string
}

// Product catalog.
var (
	Colors = []ColorOption{
		{"#ffffff", "Blanco"},
		{"#646464", "Gris"},
		{"#2d2d2d", "Grafito"},
		{"#121212", "Negro"},
		{"#00162d", "Azul Noche"},
	}
	Fabrics = []FabricOption{
		{"algodon", "Algodón"},
		{"poliester", "Poliéster"},
		{"mezcla", "Mezcla"},
		{"premium", "Premium"},
	}
	Sizes = []string{"S", "M", "L", "XL"}
)

// Font size bounds of text decals.
const (
	MinFontSize = 20.0
	MaxFontSize = 200.0
)

// LookupColor returns the catalog color for value, ignoring case.
func LookupColor(value string) (ColorOption, bool) {
	for _, c := range Colors {
		if strings.EqualFold(c.Value, value) {
			return c, true
		}
	}
	return ColorOption{}, false
}

// LookupFabric returns the catalog fabric with the given id.
func LookupFabric(id string) (FabricOption, bool) {
	for _, f := range Fabrics {
		if f.ID == id {
			return f, true
		}
	}
	return FabricOption{}, false
}

func knownSize(size string) bool {
	for _, s := range Sizes {
		if s == size {
			return true
		}
	}
	return false
}

func validHex(s string) bool {
	if len(s) != 4 && len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
