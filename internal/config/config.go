// Package config loads squiggle.toml, the tool's optional configuration
// file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultFileName is looked up in the working directory when no path is
// given explicitly.
const DefaultFileName = "squiggle.toml"

// Config mirrors squiggle.toml.
type Config struct {
	// DebounceMS is the quiet window after an edit burst before the
	// checker runs.
	DebounceMS int `toml:"debounce_ms"`
	// MaxDiagnostics caps how many diagnostics are published per
	// document.
	MaxDiagnostics int `toml:"max_diagnostics"`

	Cache CacheConfig `toml:"cache"`
	Panel PanelConfig `toml:"panel"`
}

// CacheConfig controls the on-disk diagnostics cache.
type CacheConfig struct {
	Enabled bool `toml:"enabled"`
	// Dir overrides the default cache location under XDG_CACHE_HOME.
	Dir string `toml:"dir"`
}

// PanelConfig controls panel rendering.
type PanelConfig struct {
	// MaxWidth truncates messages in the rendered panel; 0 disables.
	MaxWidth int `toml:"max_width"`
	// ShowOrigin includes the origin path column.
	ShowOrigin bool `toml:"show_origin"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		DebounceMS:     300,
		MaxDiagnostics: 100,
		Cache:          CacheConfig{Enabled: true},
		Panel:          PanelConfig{MaxWidth: 0, ShowOrigin: false},
	}
}

// Load reads the file at path on top of the defaults. A missing file is
// not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultFileName
	}
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("load %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("load %s: unknown key %q", path, undecoded[0].String())
	}
	if cfg.DebounceMS < 0 {
		return cfg, fmt.Errorf("load %s: debounce_ms must not be negative", path)
	}
	if cfg.MaxDiagnostics <= 0 {
		cfg.MaxDiagnostics = Default().MaxDiagnostics
	}
	return cfg, nil
}

// Debounce returns the configured debounce as a duration.
func (c Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}
