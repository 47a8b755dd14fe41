// Package config handles designer configuration loading and management.
package config

import (
	"fmt"
	"time"
)

// Config holds all designer settings.
type Config struct {
	Viewport ViewportConfig `yaml:"viewport"`
	Canvas   CanvasConfig   `yaml:"canvas"`
	Model    ModelConfig    `yaml:"model"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Handoff  HandoffConfig  `yaml:"handoff"`
	Fonts    FontsConfig    `yaml:"fonts"`
	Images   ImagesConfig   `yaml:"images"`
	Designer DesignerConfig `yaml:"designer"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ViewportConfig holds window and camera settings.
type ViewportConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Fullscreen bool    `yaml:"fullscreen"`
	VSync      bool    `yaml:"vsync"`
	FOV        float64 `yaml:"fov"` // degrees
	Near       float64 `yaml:"near"`
	Far        float64 `yaml:"far"`
	CameraZ    float64 `yaml:"camera_z"`
	MinZoom    float64 `yaml:"min_zoom"`
	MaxZoom    float64 `yaml:"max_zoom"`
	Background string  `yaml:"background"`
}

// CanvasConfig holds composite texture settings.
type CanvasConfig struct {
	Size     int           `yaml:"size"`
	Debounce time.Duration `yaml:"debounce"`
}

// ModelConfig holds the garment asset settings.
type ModelConfig struct {
	Path    string  `yaml:"path"` // empty uses the built-in panel garment
	FitSize float64 `yaml:"fit_size"`
}

// SnapshotConfig holds product snapshot settings. A zero size captures at
// the viewport size.
type SnapshotConfig struct {
	Format      string `yaml:"format"`
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	Supersample int    `yaml:"supersample"`
}

// HandoffConfig holds where submitted designs are written.
type HandoffConfig struct {
	Dir string `yaml:"dir"`
	Key string `yaml:"key"`
}

// FontsConfig holds the directory searched for font files.
type FontsConfig struct {
	Dir string `yaml:"dir"`
}

// ImagesConfig lists directories searched for relative image paths.
type ImagesConfig struct {
	Dirs []string `yaml:"dirs"`
}

// DesignerConfig holds the initial product options.
type DesignerConfig struct {
	Color    string `yaml:"color"`
	Fabric   string `yaml:"fabric"`
	Size     string `yaml:"size"`
	Quantity int    `yaml:"quantity"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Viewport: ViewportConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FOV:        75,
			Near:       0.1,
			Far:        1000,
			CameraZ:    5,
			MinZoom:    1,
			MaxZoom:    10,
			Background: "#faf7f3",
		},
		Canvas: CanvasConfig{
			Size:     2048,
			Debounce: 16 * time.Millisecond,
		},
		Model: ModelConfig{
			FitSize: 2,
		},
		Snapshot: SnapshotConfig{
			Format:      "png",
			Supersample: 2,
		},
		Handoff: HandoffConfig{
			Dir: "handoff",
			Key: "currentDesign",
		},
		Designer: DesignerConfig{
			Color:    "#ffffff",
			Fabric:   "algodon",
			Size:     "M",
			Quantity: 1,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports settings no component can work with.
func (c *Config) Validate() error {
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return fmt.Errorf("viewport size %dx%d must be positive", c.Viewport.Width, c.Viewport.Height)
	}
	if c.Viewport.MinZoom > c.Viewport.MaxZoom {
		return fmt.Errorf("min_zoom %v exceeds max_zoom %v", c.Viewport.MinZoom, c.Viewport.MaxZoom)
	}
	if c.Canvas.Size <= 0 {
		return fmt.Errorf("canvas size %d must be positive", c.Canvas.Size)
	}
	if c.Model.FitSize <= 0 {
		return fmt.Errorf("model fit_size %v must be positive", c.Model.FitSize)
	}
	switch c.Snapshot.Format {
	case "", "png", "webp":
	default:
		return fmt.Errorf("snapshot format %q: want png or webp", c.Snapshot.Format)
	}
	if c.Handoff.Key == "" {
		return fmt.Errorf("handoff key must not be empty")
	}
	return nil
}
