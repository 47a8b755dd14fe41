package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// EnvConfig names a config file when no -config flag is given.
const EnvConfig = "GARMENT_DESIGNER_CONFIG"

// Load loads configuration with priority: defaults < file < flags.
// Relative asset paths set by the file are taken relative to the file.
func Load() (*Config, error) {
	cfg := Default()

	configPath := ConfigPath()
	if configPath == "" {
		configPath = os.Getenv(EnvConfig)
	}
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
		cfg.resolvePaths(filepath.Dir(configPath), Default())
	}

	// Flags are relative to the working directory.
	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first existing candidate: designer.yaml or
// config.yaml in the working directory, then the user config directory.
func findConfigFile() string {
	candidates := []string{
		"./designer.yaml",
		"./config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "GarmentDesigner")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "GarmentDesigner")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "garment-designer")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "garment-designer")
	}
}

// loadFromFile merges a YAML file into cfg.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// resolvePaths joins base onto relative paths that differ from def, so
// built-in defaults stay relative to the working directory.
func (c *Config) resolvePaths(base string, def *Config) {
	join := func(p *string, unchanged string) {
		if *p != "" && *p != unchanged && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
	join(&c.Model.Path, def.Model.Path)
	join(&c.Fonts.Dir, def.Fonts.Dir)
	join(&c.Handoff.Dir, def.Handoff.Dir)
	join(&c.Logging.LogFile, def.Logging.LogFile)
	for i := range c.Images.Dirs {
		join(&c.Images.Dirs[i], "")
	}
}
