package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/beams/internal/beam"
	"github.com/san-kum/beams/internal/loop"
	"github.com/san-kum/beams/internal/render"
	"github.com/san-kum/beams/internal/theme"
)

const (
	DefaultWidth      = 1280
	DefaultHeight     = 720
	DefaultPixelRatio = 1.0
	DefaultFPS        = 60
)

// ErrUnknownScheme indicates a color_scheme that is not default, apt or emotion.
var ErrUnknownScheme = errors.New("config: unknown color scheme")

// ErrInvalid wraps every other validation failure.
var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	Intensity   string      `yaml:"intensity"`
	ColorScheme string      `yaml:"color_scheme"`
	ContextKey  string      `yaml:"context_key,omitempty"`
	Blur        float64     `yaml:"blur"`
	Seed        int64       `yaml:"seed,omitempty"`
	Width       int         `yaml:"width"`
	Height      int         `yaml:"height"`
	PixelRatio  float64     `yaml:"pixel_ratio"`
	FPS         int         `yaml:"fps"`
	Themes      ThemeConfig `yaml:"themes,omitempty"`
}

// ThemeConfig overrides entries of the built-in colour tables.
type ThemeConfig struct {
	APT     map[string]string `yaml:"apt,omitempty"`
	Emotion map[string]string `yaml:"emotion,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Intensity:   string(beam.Medium),
		ColorScheme: string(theme.SchemeDefault),
		Blur:        render.DefaultBlur,
		Width:       DefaultWidth,
		Height:      DefaultHeight,
		PixelRatio:  DefaultPixelRatio,
		FPS:         DefaultFPS,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if _, err := beam.ParseIntensity(c.Intensity); err != nil {
		return err
	}
	if !slices.Contains(theme.Schemes, theme.Scheme(c.ColorScheme)) {
		return fmt.Errorf("%w: %q", ErrUnknownScheme, c.ColorScheme)
	}
	if c.Blur < 0 {
		return fmt.Errorf("%w: blur must be >= 0, got %.2f", ErrInvalid, c.Blur)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: size must be positive, got %dx%d", ErrInvalid, c.Width, c.Height)
	}
	if c.PixelRatio <= 0 {
		return fmt.Errorf("%w: pixel_ratio must be positive, got %.2f", ErrInvalid, c.PixelRatio)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("%w: fps must be positive, got %d", ErrInvalid, c.FPS)
	}
	for key, hex := range c.Themes.APT {
		if _, err := theme.HexToHSL(hex); err != nil {
			return fmt.Errorf("themes.apt.%s: %w", key, err)
		}
	}
	for key, hex := range c.Themes.Emotion {
		if _, err := theme.HexToHSL(hex); err != nil {
			return fmt.Errorf("themes.emotion.%s: %w", key, err)
		}
	}
	return nil
}

// Options converts the file settings into controller options. Call Validate
// first; an unparseable intensity falls back to medium.
func (c *Config) Options() loop.Options {
	in, err := beam.ParseIntensity(c.Intensity)
	if err != nil {
		in = beam.Medium
	}
	return loop.Options{
		Intensity: in,
		Scheme:    theme.Scheme(c.ColorScheme),
		Key:       c.ContextKey,
		Blur:      c.Blur,
		Seed:      c.Seed,
	}
}

// Resolver is the built-in resolver with the file's overrides applied.
func (c *Config) Resolver() *theme.Resolver {
	return theme.NewResolver(nil, nil).WithOverrides(c.Themes.APT, c.Themes.Emotion)
}

// Merge copies the page-level fields of a preset onto c. Output settings such
// as size and fps are left alone.
func (c *Config) Merge(p *Config) {
	if p == nil {
		return
	}
	if p.Intensity != "" {
		c.Intensity = p.Intensity
	}
	if p.ColorScheme != "" {
		c.ColorScheme = p.ColorScheme
	}
	if p.ContextKey != "" {
		c.ContextKey = p.ContextKey
	}
	if p.Blur > 0 {
		c.Blur = p.Blur
	}
}
