package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is the on-disk YAML configuration. Only connection settings live
// here; generation parameters come from flags.
type File struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// DefaultPath returns $XDG_CONFIG_HOME/pplx/config.yaml, or "" when no
// config directory can be resolved.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "pplx", "config.yaml")
}

// LoadFile reads a YAML config file. A missing file yields an empty File
// unless required is set.
func LoadFile(path string, required bool) (File, error) {
	var f File
	if strings.TrimSpace(path) == "" {
		return f, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return f, nil
		}
		return f, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("parse config %s: %w", path, err)
	}
	return f, nil
}

// Apply overlays non-empty file values onto cfg.
func (f File) Apply(cfg Config) Config {
	if v := strings.TrimSpace(f.APIKey); v != "" {
		cfg.APIKey = v
	}
	if v := strings.TrimSpace(f.BaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(f.Model); v != "" {
		cfg.Model = v
	}
	return cfg
}
