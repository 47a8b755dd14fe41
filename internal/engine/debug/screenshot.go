// Package debug provides debug capture utilities.
package debug

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/Faultbox/garment-designer/internal/engine/texture"
)

// ScreenshotCapture writes timestamped viewport captures.
type ScreenshotCapture struct {
	outputDir string
	prefix    string
	format    texture.Format
	now       func() time.Time
}

// NewScreenshotCapture creates a new screenshot capture handler.
func NewScreenshotCapture(outputDir, prefix string, format texture.Format) *ScreenshotCapture {
	if format == "" {
		format = texture.FormatPNG
	}
	return &ScreenshotCapture{
		outputDir: outputDir,
		prefix:    prefix,
		format:    format,
		now:       time.Now,
	}
}

// Save encodes img to a new file and returns its path.
func (sc *ScreenshotCapture) Save(img image.Image) (string, error) {
	if sc.outputDir != "" {
		if err := os.MkdirAll(sc.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	filename := sc.GenerateFilename()
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	if err := texture.Encode(file, img, sc.format); err != nil {
		file.Close()
		return "", fmt.Errorf("encoding %s: %w", sc.format, err)
	}
	return filename, file.Close()
}

// GenerateFilename generates a screenshot filename without saving.
func (sc *ScreenshotCapture) GenerateFilename() string {
	timestamp := sc.now().Format("2006-01-02_15-04-05.000")
	filename := fmt.Sprintf("%s_%s.%s", sc.prefix, timestamp, sc.format)
	if sc.outputDir != "" {
		filename = filepath.Join(sc.outputDir, filename)
	}
	return filename
}
