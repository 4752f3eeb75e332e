// Package config handles loading and saving arbor view configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/arbor/config.yaml
//   - Data:    ~/.local/share/arbor/ (record databases)
//   - State:   ~/.local/state/arbor/ (collapse-state snapshots)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source is a registered record database.
type Source struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// ViewConfig holds projection preferences.
type ViewConfig struct {
	SlotMode  string `yaml:"slot_mode,omitempty"`  // prebuilt or on-demand
	GroupBy   string `yaml:"group_by,omitempty"`   // group option id, empty = ungrouped
	SortField string `yaml:"sort_field,omitempty"` // sort field id
	SortDesc  bool   `yaml:"sort_desc,omitempty"`
	PageSize  int    `yaml:"page_size,omitempty"`
}

// WatchConfig controls the file watcher driving auto-refresh.
type WatchConfig struct {
	Enabled    bool `yaml:"enabled,omitempty"`
	DebounceMs int  `yaml:"debounce_ms,omitempty"`
	ForcePoll  bool `yaml:"force_poll,omitempty"`
}

// Config is the top-level configuration for arbor.
type Config struct {
	Sources []Source    `yaml:"sources,omitempty"`
	View    ViewConfig  `yaml:"view,omitempty"`
	Watch   WatchConfig `yaml:"watch,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		View: ViewConfig{
			SlotMode:  "prebuilt",
			SortField: "priority",
			PageSize:  200,
		},
		Watch: WatchConfig{
			Enabled:    true,
			DebounceMs: 250,
		},
	}
}

// ConfigDir returns the XDG config directory for arbor.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "arbor")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "arbor")
}

// DataDir returns the XDG data directory for arbor.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "arbor")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "arbor")
}

// StateDir returns the XDG state directory for arbor. Collapse-state
// snapshots live here.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "arbor")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "arbor")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.View.PageSize <= 0 {
		cfg.View.PageSize = DefaultConfig().View.PageSize
	}

	// Expand ~ in source paths
	for i := range cfg.Sources {
		cfg.Sources[i].Path = expandHome(cfg.Sources[i].Path)
	}

	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// FindSource returns the source with the given name, or nil.
func (c Config) FindSource(name string) *Source {
	for i := range c.Sources {
		if strings.EqualFold(c.Sources[i].Name, name) {
			return &c.Sources[i]
		}
	}
	return nil
}

// ResolvedPath returns the source path with ~ expanded.
func (s Source) ResolvedPath() string {
	return expandHome(s.Path)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
