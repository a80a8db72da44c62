// Package config loads typesafe settings from an optional
// .typesafe.yaml file in the project root.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the name of the configuration file looked up in the
// project root.
const FileName = ".typesafe.yaml"

// DefaultDir is the collection prefix used when none is configured.
const DefaultDir = "typesafety"

// DefaultPyright is the checker executable resolved through PATH.
const DefaultPyright = "pyright"

// Config holds the settings that control collection and runs.
// It is read once at startup and must not be mutated afterwards.
type Config struct {
	// Dir is the path prefix, relative to the project root, below
	// which typesafety files are collected. May contain several
	// segments (e.g. "tests/typesafety").
	Dir string `yaml:"dir"`

	// Exclude lists doublestar patterns, relative to the project
	// root, for files that must not be collected.
	Exclude []string `yaml:"exclude"`

	// Jobs is the number of files checked in parallel. Values
	// below 1 mean one.
	Jobs int `yaml:"jobs"`

	// FailFast limits each failing file's report to its first
	// mismatch in line order.
	FailFast bool `yaml:"fail_fast"`

	// Pyright is the path to the pyright executable.
	Pyright string `yaml:"pyright"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Dir:     DefaultDir,
		Jobs:    1,
		Pyright: DefaultPyright,
	}
}

// Load reads FileName from root. A missing file is not an error:
// DefaultConfig() is returned instead. Fields left empty in the
// file keep their default values.
func Load(root string) (*Config, error) {
	path := filepath.Join(root, FileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes configuration data. name is used in error messages.
func Parse(data []byte, name string) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", name, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return cfg, nil
}

// Validate reports configuration values that cannot be used.
func (c *Config) Validate() error {
	if filepath.IsAbs(c.Dir) {
		return fmt.Errorf("dir %q must be relative to the project root", c.Dir)
	}
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative, got %d", c.Jobs)
	}
	return nil
}

// Normalize fills empty fields with defaults and rewrites Dir in the
// slash-separated form collection compares against. Call it again after
// overriding fields from flags or options.
func (c *Config) Normalize() {
	c.Dir = filepath.ToSlash(c.Dir)
	for strings.HasPrefix(c.Dir, "./") {
		c.Dir = c.Dir[2:]
	}
	if c.Dir == "" || c.Dir == "." {
		c.Dir = DefaultDir
	}
	if c.Jobs == 0 {
		c.Jobs = 1
	}
	if c.Pyright == "" {
		c.Pyright = DefaultPyright
	}
}
