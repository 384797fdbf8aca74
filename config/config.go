// Package config loads host settings for the nanolox command-line tools.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"simonwaldherr.de/go/nanolox/interp"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config models a nanolox.yaml file.
type Config struct {
	Path         string
	Timeout      time.Duration
	MaxCallDepth int
	Color        string
	HistoryFile  string
	PrintAST     bool
}

// configDisk is the on-disk shape; absent keys stay nil and keep defaults.
type configDisk struct {
	Timeout      *string `yaml:"timeout"`
	MaxCallDepth *int    `yaml:"max_call_depth"`
	Color        *string `yaml:"color"`
	HistoryFile  *string `yaml:"history_file"`
	PrintAST     *bool   `yaml:"print_ast"`
}

// Default returns the settings used when no file is given.
func Default() *Config {
	return &Config{
		Timeout:      10 * time.Second,
		MaxCallDepth: interp.DefaultMaxDepth,
		Color:        ColorAuto,
		HistoryFile:  ".nanolox_history",
	}
}

// Load reads path over the defaults. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer file.Close()

	if err := cfg.decode(file); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", abs, err)
	}
	cfg.Path = abs
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML from r over the defaults.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(r); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	var raw configDisk
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil // empty document
		}
		return err
	}

	if raw.Timeout != nil {
		d, err := time.ParseDuration(strings.TrimSpace(*raw.Timeout))
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		c.Timeout = d
	}
	if raw.MaxCallDepth != nil {
		c.MaxCallDepth = *raw.MaxCallDepth
	}
	if raw.Color != nil {
		c.Color = strings.ToLower(strings.TrimSpace(*raw.Color))
	}
	if raw.HistoryFile != nil {
		c.HistoryFile = strings.TrimSpace(*raw.HistoryFile)
	}
	if raw.PrintAST != nil {
		c.PrintAST = *raw.PrintAST
	}
	return nil
}

// Validate rejects settings the tools cannot honor.
func (c *Config) Validate() error {
	if c.MaxCallDepth <= 0 {
		return fmt.Errorf("config: max_call_depth must be positive, got %d", c.MaxCallDepth)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("config: timeout must not be negative, got %s", c.Timeout)
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("config: color must be auto, always or never, got %q", c.Color)
	}
	return nil
}

// UseColor resolves the color mode; auto defers to terminal detection.
func (c *Config) UseColor(isTerminal bool) bool {
	switch c.Color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	return isTerminal
}
