package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egekaya1/git-sim/internal/config"
)

func TestDefaults(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 50, cfg.MaxGraphCommits)
	assert.Equal(t, 3, cfg.AdjacencyThreshold)
	assert.Equal(t, ".git-sim", cfg.SnapshotDir)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GITSIM_LOG_LEVEL", "debug")
	t.Setenv("GITSIM_MAX_GRAPH_COMMITS", "25")

	cfg := config.Default()
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 25, cfg.MaxGraphCommits)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.MaxGraphCommits)
}

func TestLoadYamlOverlay(t *testing.T) {
	dir := t.TempDir()
	content := "max_graph_commits: 10\nadjacency_threshold: 5\nlog_level: info\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ConfigFileName), []byte(content), 0o644))

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.MaxGraphCommits)
	assert.Equal(t, 5, cfg.AdjacencyThreshold)
	assert.Equal(t, "info", cfg.LogLevel)
	// Untouched keys keep their defaults.
	assert.Equal(t, ".git-sim", cfg.SnapshotDir)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ConfigFileName), []byte("max_graph_commits: -1\n"), 0o644))

	_, err := config.Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_graph_commits")
}

func TestLoadRejectsMalformedYaml(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ConfigFileName), []byte("max_graph_commits: [\n"), 0o644))

	_, err := config.Load(dir)
	require.Error(t, err)
}
