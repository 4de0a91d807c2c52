// Package config handles janus.toml tool configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents a janus.toml configuration.
type Config struct {
	Generator Generator `toml:"generator"`
	Store     Store     `toml:"store"`

	// Dir is the directory containing the janus.toml file (set at load time).
	Dir string `toml:"-"`
}

// Generator configures artifact generation.
type Generator struct {
	// DumpDir, when set, receives a copy of every generated class file.
	DumpDir string `toml:"dump-dir"`
}

// Store configures the persistent artifact store.
type Store struct {
	Path string `toml:"path"`
}

// Load parses a janus.toml file from the given directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, "janus.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return &c, nil
}

// FindAndLoad walks up from startDir to find a janus.toml file, then
// loads and returns it. Returns nil if no configuration is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}
	for {
		path := filepath.Join(dir, "janus.toml")
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// StorePath returns the absolute path of the configured artifact store,
// or "" when no store is configured.
func (c *Config) StorePath() string {
	if c.Store.Path == "" {
		return ""
	}
	if filepath.IsAbs(c.Store.Path) {
		return c.Store.Path
	}
	return filepath.Join(c.Dir, c.Store.Path)
}

// DumpDir returns the absolute dump directory, or "" when dumping is
// disabled.
func (c *Config) DumpDir() string {
	if c.Generator.DumpDir == "" {
		return ""
	}
	if filepath.IsAbs(c.Generator.DumpDir) {
		return c.Generator.DumpDir
	}
	return filepath.Join(c.Dir, c.Generator.DumpDir)
}
