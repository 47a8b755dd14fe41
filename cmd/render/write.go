package main

import (
	"fmt"
	"image"
	"os"

	"github.com/Faultbox/garment-designer/internal/engine/texture"
)

func writeImage(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := texture.Encode(f, img, texture.FormatPNG); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}
