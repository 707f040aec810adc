// Package config provides centralized configuration for git-sim.
// Defaults are overridden by GITSIM_* environment variables, then by an
// optional .git-sim.yaml file in the repository root.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds application-wide settings.
type Config struct {
	// LogLevel is a logrus level name (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// MaxGraphCommits caps graph projections built for display.
	MaxGraphCommits int `yaml:"max_graph_commits"`

	// AdjacencyThreshold is the hunk-overlap gap in lines.
	AdjacencyThreshold int `yaml:"adjacency_threshold"`

	// SnapshotDir is the directory for snapshot state, relative to the
	// repository root.
	SnapshotDir string `yaml:"snapshot_dir"`
}

// ConfigFileName is the per-repository override file.
const ConfigFileName = ".git-sim.yaml"

// Default returns the built-in configuration with environment overrides
// applied.
func Default() *Config {
	cfg := &Config{
		LogLevel:           "warn",
		MaxGraphCommits:    50,
		AdjacencyThreshold: 3,
		SnapshotDir:        ".git-sim",
	}

	if v := os.Getenv("GITSIM_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("GITSIM_MAX_GRAPH_COMMITS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxGraphCommits = n
		}
	}
	if v := os.Getenv("GITSIM_SNAPSHOT_DIR"); v != "" {
		cfg.SnapshotDir = v
	}
	return cfg
}

// Load returns the default configuration overlaid with the yaml file at
// dir, when one exists. A missing file is not an error; a malformed one
// is.
func Load(dir string) (*Config, error) {
	cfg := Default()

	path := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.MaxGraphCommits <= 0 {
		return fmt.Errorf("max_graph_commits must be positive, got %d", c.MaxGraphCommits)
	}
	if c.AdjacencyThreshold < 0 {
		return fmt.Errorf("adjacency_threshold must not be negative, got %d", c.AdjacencyThreshold)
	}
	return nil
}
