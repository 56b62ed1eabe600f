// Package config loads the CLI configuration. Library packages never read it;
// the command line translates it into render options.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Viewport ViewportConfig `mapstructure:"viewport" yaml:"viewport"`
	Print    PrintConfig    `mapstructure:"print" yaml:"print"`
	Fetch    FetchConfig    `mapstructure:"fetch" yaml:"fetch"`
	Text     TextConfig     `mapstructure:"text" yaml:"text"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

// ViewportConfig is the screen viewport. Large sizes are optional; zero
// means "same as the small viewport".
type ViewportConfig struct {
	Width       float64 `mapstructure:"width" yaml:"width"`
	Height      float64 `mapstructure:"height" yaml:"height"`
	LargeWidth  float64 `mapstructure:"large_width" yaml:"large_width"`
	LargeHeight float64 `mapstructure:"large_height" yaml:"large_height"`
}

// PrintConfig selects the print medium. Paper names a known size ("a4",
// "letter", ...); explicit Width/Height win over it.
type PrintConfig struct {
	Paper  string  `mapstructure:"paper" yaml:"paper"`
	Width  float64 `mapstructure:"width" yaml:"width"`
	Height float64 `mapstructure:"height" yaml:"height"`
}

// FetchConfig controls the resource fetcher.
type FetchConfig struct {
	BaseURL   string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
	UserAgent string        `mapstructure:"user_agent" yaml:"user_agent"`
}

// TextConfig points at an optional TrueType font used for text metrics and
// raster output. Empty means the built-in fixed-pitch face.
type TextConfig struct {
	FontPath string `mapstructure:"font_path" yaml:"font_path"`
}

// LogConfig configures the global logger.
type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Format     string `mapstructure:"format" yaml:"format"`
	File       string `mapstructure:"file" yaml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// SetDefaults initializes default values for every configuration key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("viewport.width", 800.0)
	v.SetDefault("viewport.height", 600.0)
	v.SetDefault("viewport.large_width", 0.0)
	v.SetDefault("viewport.large_height", 0.0)

	v.SetDefault("print.paper", "a4")

	v.SetDefault("fetch.timeout", "30s")
	v.SetDefault("fetch.user_agent", "vellum/1.0 (compatible; Go)")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 14)
}

// NewDefaultConfig returns the configuration made of defaults only.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := NewConfigFromViper(v)
	if err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return cfg
}

// Load reads defaults, then the optional file at path, then VELLUM_*
// environment overrides (VELLUM_VIEWPORT_WIDTH, VELLUM_LOG_LEVEL, ...).
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("vellum")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}
	return NewConfigFromViper(v)
}

// NewConfigFromViper unmarshals and validates the configuration held by v.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return errors.New("viewport width and height must be positive")
	}
	if c.Viewport.LargeWidth < 0 || c.Viewport.LargeHeight < 0 {
		return errors.New("large viewport sizes must not be negative")
	}
	if c.Print.Width < 0 || c.Print.Height < 0 {
		return errors.New("print sizes must not be negative")
	}
	if (c.Print.Width == 0) != (c.Print.Height == 0) {
		return errors.New("print width and height must be given together")
	}
	if c.Fetch.Timeout < 0 {
		return errors.New("fetch timeout must not be negative")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}
