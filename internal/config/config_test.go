package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Viewport.Width != 1280 || cfg.Viewport.Height != 720 {
		t.Errorf("expected 1280x720, got %dx%d", cfg.Viewport.Width, cfg.Viewport.Height)
	}
	if cfg.Viewport.FOV != 75 || cfg.Viewport.CameraZ != 5 {
		t.Errorf("expected fov 75 at z 5, got %v at %v", cfg.Viewport.FOV, cfg.Viewport.CameraZ)
	}
	if cfg.Viewport.MinZoom != 1 || cfg.Viewport.MaxZoom != 10 {
		t.Errorf("expected zoom range [1,10], got [%v,%v]", cfg.Viewport.MinZoom, cfg.Viewport.MaxZoom)
	}

	if cfg.Canvas.Size != 2048 {
		t.Errorf("expected canvas 2048, got %d", cfg.Canvas.Size)
	}
	if cfg.Canvas.Debounce != 16*time.Millisecond {
		t.Errorf("expected debounce 16ms, got %v", cfg.Canvas.Debounce)
	}

	if cfg.Model.Path != "" {
		t.Errorf("expected built-in model by default, got %s", cfg.Model.Path)
	}
	if cfg.Handoff.Key != "currentDesign" {
		t.Errorf("expected key currentDesign, got %s", cfg.Handoff.Key)
	}
	if cfg.Designer.Size != "M" || cfg.Designer.Quantity != 1 {
		t.Errorf("expected size M quantity 1, got %s %d", cfg.Designer.Size, cfg.Designer.Quantity)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
viewport:
  width: 1920
  height: 1080
  fullscreen: true
  camera_z: 3

canvas:
  size: 1024
  debounce: 40ms

model:
  path: "models/shirt.glb"

snapshot:
  format: webp
  width: 800
  height: 800

handoff:
  dir: "/tmp/designs"

fonts:
  dir: "fonts"

designer:
  color: "#121212"
  fabric: premium

logging:
  level: "debug"
  log_file: "designer.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Viewport.Width != 1920 || !cfg.Viewport.Fullscreen || cfg.Viewport.CameraZ != 3 {
		t.Errorf("viewport not loaded: %+v", cfg.Viewport)
	}
	// Unset keys keep their defaults.
	if cfg.Viewport.FOV != 75 {
		t.Errorf("expected default fov to survive, got %v", cfg.Viewport.FOV)
	}
	if cfg.Canvas.Size != 1024 || cfg.Canvas.Debounce != 40*time.Millisecond {
		t.Errorf("canvas not loaded: %+v", cfg.Canvas)
	}
	if cfg.Model.Path != "models/shirt.glb" {
		t.Errorf("expected model path, got %s", cfg.Model.Path)
	}
	if cfg.Snapshot.Format != "webp" || cfg.Snapshot.Width != 800 {
		t.Errorf("snapshot not loaded: %+v", cfg.Snapshot)
	}
	if cfg.Handoff.Dir != "/tmp/designs" || cfg.Handoff.Key != "currentDesign" {
		t.Errorf("handoff not loaded: %+v", cfg.Handoff)
	}
	if cfg.Fonts.Dir != "fonts" {
		t.Errorf("expected fonts dir, got %s", cfg.Fonts.Dir)
	}
	if cfg.Designer.Color != "#121212" || cfg.Designer.Fabric != "premium" || cfg.Designer.Size != "M" {
		t.Errorf("designer not loaded: %+v", cfg.Designer)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "designer.log" {
		t.Errorf("logging not loaded: %+v", cfg.Logging)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
viewport:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"zero width", func(c *Config) { c.Viewport.Width = 0 }, false},
		{"inverted zoom", func(c *Config) { c.Viewport.MinZoom = 20 }, false},
		{"zero canvas", func(c *Config) { c.Canvas.Size = 0 }, false},
		{"zero fit", func(c *Config) { c.Model.FitSize = 0 }, false},
		{"webp", func(c *Config) { c.Snapshot.Format = "webp" }, true},
		{"jpeg", func(c *Config) { c.Snapshot.Format = "jpeg" }, false},
		{"empty key", func(c *Config) { c.Handoff.Key = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("viewport:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "model flag",
			setup: func() { *flagModel = "shirt.glb" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Model.Path != "shirt.glb" {
					t.Errorf("expected model shirt.glb, got %s", cfg.Model.Path)
				}
			},
			teardown: func() { *flagModel = "" },
		},
		{
			name: "fonts and handoff flags",
			setup: func() {
				*flagFonts = "/usr/share/fonts"
				*flagHandoff = "/var/designs"
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Fonts.Dir != "/usr/share/fonts" || cfg.Handoff.Dir != "/var/designs" {
					t.Errorf("expected fonts and handoff dirs, got %s %s", cfg.Fonts.Dir, cfg.Handoff.Dir)
				}
			},
			teardown: func() {
				*flagFonts = ""
				*flagHandoff = ""
			},
		},
		{
			name:  "windowed flag",
			setup: func() { *flagWindowed = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Viewport.Fullscreen {
					t.Error("expected fullscreen to be false with windowed flag")
				}
			},
			teardown: func() { *flagWindowed = false },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Viewport.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Viewport.Width != 2560 || cfg.Viewport.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Viewport.Width, cfg.Viewport.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
viewport:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width from the flag, height from the file.
	if cfg.Viewport.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Viewport.Width)
	}
	if cfg.Viewport.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Viewport.Height)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("snapshot:\n  format: tiff\n"), 0644); err != nil {
		t.Fatal(err)
	}
	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); err == nil {
		t.Error("expected invalid snapshot format to fail Load")
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Model.Path = "shirt.glb"
	cfg.Canvas.Debounce = 25 * time.Millisecond

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if loaded.Model.Path != "shirt.glb" || loaded.Canvas.Debounce != 25*time.Millisecond {
		t.Errorf("saved values not reloaded: %+v %+v", loaded.Model, loaded.Canvas)
	}
}

func TestLoadResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "designer.yaml")
	yamlContent := `
model:
  path: shirt.glb
images:
  dirs: [art, /srv/art]
handoff:
  dir: handoff
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfig, configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "shirt.glb"); cfg.Model.Path != want {
		t.Errorf("expected model %q, got %q", want, cfg.Model.Path)
	}
	if want := filepath.Join(dir, "art"); cfg.Images.Dirs[0] != want {
		t.Errorf("expected image dir %q, got %q", want, cfg.Images.Dirs[0])
	}
	if cfg.Images.Dirs[1] != "/srv/art" {
		t.Errorf("expected absolute dir kept, got %q", cfg.Images.Dirs[1])
	}
	// Same as the default, so it stays relative to the working directory.
	if cfg.Handoff.Dir != "handoff" {
		t.Errorf("expected default handoff dir kept, got %q", cfg.Handoff.Dir)
	}
}
