// Package config loads the history viewer settings from
// <profileDir>/history.toml.
//
// Every field has a default, so a missing file is not an error. Environment
// variables override the file:
//   - OSA_HISTORY_DB
//   - OSA_URL, OSA_TOKEN
//   - OSA_HISTORY_MARGIN, OSA_HISTORY_THRESHOLD
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

const filename = "history.toml"

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid config")

// ---------------------------------------------------------------------------
// Structures
// ---------------------------------------------------------------------------

// Config is the complete viewer configuration.
type Config struct {
	Theme   string `toml:"theme"`
	LogFile string `toml:"log_file"`
	DB      string `toml:"db"`

	Backend BackendConfig `toml:"backend"`
	View    ViewConfig    `toml:"view"`
	Loader  LoaderConfig  `toml:"loader"`
}

// BackendConfig points at an OSA backend for importing sessions.
type BackendConfig struct {
	URL   string `toml:"url"`
	Token string `toml:"token"`
}

// ViewConfig tunes the virtualized viewport.
type ViewConfig struct {
	// RetentionMargin is how many rows stay attached beyond each viewport
	// edge. Zero means RetentionViewports viewports.
	RetentionMargin    int `toml:"retention_margin"`
	RetentionViewports int `toml:"retention_viewports"`
	// OffsetThreshold is how close to an end, in rows, a page load starts.
	OffsetThreshold int      `toml:"offset_threshold"`
	FrameInterval   Duration `toml:"frame_interval"`
	MinThumb        float64  `toml:"min_thumb"`
	// Observer is "intersection" or "scroll".
	Observer string `toml:"observer"`
}

// LoaderConfig tunes page loading.
type LoaderConfig struct {
	PageSize       int     `toml:"page_size"`
	LoadsPerSecond float64 `toml:"loads_per_second"`
}

// Duration is a time.Duration written as "16ms" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Theme: "auto",
		View: ViewConfig{
			RetentionViewports: 2,
			OffsetThreshold:    30,
			FrameInterval:      Duration{16 * time.Millisecond},
			MinThumb:           1,
			Observer:           "intersection",
		},
		Loader: LoaderConfig{
			PageSize:       40,
			LoadsPerSecond: 8,
		},
	}
}

// Path returns the config file location inside profileDir.
func Path(profileDir string) string {
	return filepath.Join(profileDir, filename)
}

// ---------------------------------------------------------------------------
// Loading and saving
// ---------------------------------------------------------------------------

// Load reads <profileDir>/history.toml over the defaults and applies
// environment overrides. A missing file yields the defaults.
func Load(profileDir string) (*Config, error) {
	cfg, err := LoadFile(Path(profileDir))
	if err != nil {
		return nil, err
	}
	if cfg.DB == "" {
		cfg.DB = filepath.Join(profileDir, "history.db")
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(profileDir, "osa-history.log")
	}
	return cfg, nil
}

// LoadFile decodes path over the defaults and applies environment overrides.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	cfg.ApplyEnvOverrides()
	return cfg, nil
}

// Save writes cfg to <profileDir>/history.toml, creating the directory if
// needed.
func Save(profileDir string, cfg *Config) error {
	if err := os.MkdirAll(profileDir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(Path(profileDir))
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		return fmt.Errorf("encode config: %w", err)
	}
	return f.Close()
}

// ApplyEnvOverrides copies recognised environment variables into c.
// Unparseable numbers are ignored.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("OSA_HISTORY_DB"); v != "" {
		c.DB = v
	}
	if v := os.Getenv("OSA_URL"); v != "" {
		c.Backend.URL = v
	}
	if v := os.Getenv("OSA_TOKEN"); v != "" {
		c.Backend.Token = v
	}
	if v, err := strconv.Atoi(os.Getenv("OSA_HISTORY_MARGIN")); err == nil {
		c.View.RetentionMargin = v
	}
	if v, err := strconv.Atoi(os.Getenv("OSA_HISTORY_THRESHOLD")); err == nil {
		c.View.OffsetThreshold = v
	}
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

// Validate clamps out-of-range values back to usable ones. The returned error
// lists everything that was corrected; c is usable either way.
func (c *Config) Validate() error {
	def := Default()
	var errs []error
	fix := func(field string, got any) {
		errs = append(errs, fmt.Errorf("%w: %s = %v", ErrInvalid, field, got))
	}

	if c.View.RetentionMargin < 0 {
		fix("view.retention_margin", c.View.RetentionMargin)
		c.View.RetentionMargin = 0
	}
	if c.View.RetentionViewports < 1 {
		fix("view.retention_viewports", c.View.RetentionViewports)
		c.View.RetentionViewports = def.View.RetentionViewports
	}
	if c.View.OffsetThreshold < 0 {
		fix("view.offset_threshold", c.View.OffsetThreshold)
		c.View.OffsetThreshold = def.View.OffsetThreshold
	}
	if c.View.FrameInterval.Duration < time.Millisecond || c.View.FrameInterval.Duration > time.Second {
		fix("view.frame_interval", c.View.FrameInterval)
		c.View.FrameInterval = def.View.FrameInterval
	}
	if c.View.MinThumb < 1 {
		fix("view.min_thumb", c.View.MinThumb)
		c.View.MinThumb = def.View.MinThumb
	}
	switch c.View.Observer {
	case "intersection", "scroll":
	default:
		fix("view.observer", c.View.Observer)
		c.View.Observer = def.View.Observer
	}
	if c.Loader.PageSize < 1 || c.Loader.PageSize > 1000 {
		fix("loader.page_size", c.Loader.PageSize)
		c.Loader.PageSize = def.Loader.PageSize
	}
	if c.Loader.LoadsPerSecond <= 0 {
		fix("loader.loads_per_second", c.Loader.LoadsPerSecond)
		c.Loader.LoadsPerSecond = def.Loader.LoadsPerSecond
	}
	switch c.Theme {
	case "auto", "dark", "light", "catppuccin", "tokyo-night":
	default:
		fix("theme", c.Theme)
		c.Theme = def.Theme
	}
	return errors.Join(errs...)
}

// Margin resolves the retention margin for a viewport of clientHeight rows.
func (v ViewConfig) Margin(clientHeight int) int {
	if v.RetentionMargin > 0 {
		return v.RetentionMargin
	}
	return v.RetentionViewports * clientHeight
}
