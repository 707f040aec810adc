package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func manifestFixture(t *testing.T) *Manager {
	t.Helper()

	m := NewManager(t.TempDir(), ".git-sim")
	err := m.save([]Snapshot{
		{ID: "aaaa00000001", Name: "before-rebase", CreatedAt: "2024-01-02T10:00:00Z", HeadSHA: "1111111111111111111111111111111111111111", Tags: []string{"wip"}},
		{ID: "bbbb00000002", Name: "clean", CreatedAt: "2024-01-03T10:00:00Z", HeadSHA: "2222222222222222222222222222222222222222", Tags: []string{}},
	})
	require.NoError(t, err)
	return m
}

func TestManifestRoundTrip(t *testing.T) {
	m := manifestFixture(t)

	loaded, err := m.load()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "before-rebase", loaded[0].Name)
	assert.Equal(t, []string{"wip"}, loaded[0].Tags)
}

func TestListNewestFirstAndTagFilter(t *testing.T) {
	m := manifestFixture(t)

	all, err := m.List("")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "clean", all[0].Name)

	tagged, err := m.List("wip")
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, "before-rebase", tagged[0].Name)
}

func TestGetByIDPrefixAndName(t *testing.T) {
	m := manifestFixture(t)

	byID, ok := m.Get("aaaa00000001")
	require.True(t, ok)
	assert.Equal(t, "before-rebase", byID.Name)

	byPrefix, ok := m.Get("bbbb")
	require.True(t, ok)
	assert.Equal(t, "clean", byPrefix.Name)

	byName, ok := m.Get("clean")
	require.True(t, ok)
	assert.Equal(t, "bbbb00000002", byName.ID)

	_, ok = m.Get("missing")
	assert.False(t, ok)
}

func TestDelete(t *testing.T) {
	m := manifestFixture(t)

	ok, err := m.Delete("before-rebase")
	require.NoError(t, err)
	assert.True(t, ok)

	remaining, err := m.load()
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "clean", remaining[0].Name)

	ok, err = m.Delete("before-rebase")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadMissingManifest(t *testing.T) {
	m := NewManager(t.TempDir(), ".git-sim")
	snapshots, err := m.load()
	require.NoError(t, err)
	assert.Empty(t, snapshots)
}

func TestLoadCorruptManifestStartsOver(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir, ".git-sim")
	require.NoError(t, m.ensureDirs())
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git-sim", manifestFile), []byte("{not json"), 0o644))

	snapshots, err := m.load()
	require.NoError(t, err)
	assert.Empty(t, snapshots)
}

func TestGenerateID(t *testing.T) {
	a := generateID("name", "2024-01-02T10:00:00Z")
	b := generateID("name", "2024-01-02T10:00:00Z")
	c := generateID("other", "2024-01-02T10:00:00Z")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 12)
}

func TestRestoreUnknownSnapshot(t *testing.T) {
	m := manifestFixture(t)
	_, err := m.Restore("missing", "soft")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRestoreMissingBundle(t *testing.T) {
	m := manifestFixture(t)
	_, err := m.Restore("clean", "soft")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bundle file missing")
}
