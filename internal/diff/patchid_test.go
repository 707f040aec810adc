package diff_test

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egekaya1/git-sim/internal/diff"
	"github.com/egekaya1/git-sim/internal/gittest"
)

func TestPatchIDDeterministic(t *testing.T) {
	b := gittest.BasicRepo(t)
	analyzer := diff.NewAnalyzer(b.Facade())
	ctx := context.Background()

	first, err := analyzer.PatchID(ctx, "HEAD")
	require.NoError(t, err)
	second, err := analyzer.PatchID(ctx, "HEAD")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, 40)
}

// The same content change committed on two different bases carries the
// same patch-id: line numbers and tree metadata are normalized away.
func TestPatchIDInvariantAcrossBases(t *testing.T) {
	b := gittest.BasicRepo(t)
	r := b.Facade()
	analyzer := diff.NewAnalyzer(r)
	ctx := context.Background()

	forkPoint := b.Head()

	b.Branch("side-a")
	b.WriteFile("file_b.txt", "Content B\nNew\n")
	hashA := b.Commit("Extend file B")

	b.Checkout("master")
	b.WriteFile("README.md", "# Test Repo\n\nMore docs.\n")
	b.Commit("Extend readme")
	b.WriteFile("file_b.txt", "Content B\nNew\n")
	hashB := b.Commit("Extend file B again")

	require.NotEqual(t, hashA, hashB)

	idA, err := analyzer.PatchID(ctx, hashA)
	require.NoError(t, err)
	idB, err := analyzer.PatchID(ctx, hashB)
	require.NoError(t, err)
	assert.Equal(t, idA, idB)

	// A different change has a different patch-id.
	base, err := analyzer.PatchID(ctx, forkPoint)
	require.NoError(t, err)
	assert.NotEqual(t, idA, base)
}

func TestPatchIDRootCommit(t *testing.T) {
	b := gittest.BasicRepo(t)
	r := b.Facade()
	analyzer := diff.NewAnalyzer(r)
	ctx := context.Background()

	root, err := r.Commit("HEAD~2")
	require.NoError(t, err)
	require.Empty(t, root.ParentHashes)

	id, err := analyzer.PatchID(ctx, root.Hash)
	require.NoError(t, err)

	// Derived from the commit hash, not from the diff.
	sum := sha1.Sum([]byte(root.Hash))
	assert.Equal(t, hex.EncodeToString(sum[:]), id)
}

func TestCollectPatchIDs(t *testing.T) {
	b := gittest.BranchedRepo(t)
	analyzer := diff.NewAnalyzer(b.Facade())
	ctx := context.Background()

	// HEAD is master; HEAD~1 is the fork point, so feature contributes
	// two commits.
	ids, err := analyzer.CollectPatchIDs(ctx, []string{"feature"}, []string{"HEAD~1"})
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	// The full history yields one id per commit.
	all, err := analyzer.CollectPatchIDs(ctx, []string{"feature"}, nil)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}
