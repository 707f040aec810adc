package repo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egekaya1/git-sim/internal/gittest"
	"github.com/egekaya1/git-sim/internal/model"
	"github.com/egekaya1/git-sim/internal/repo"
)

func TestOpenNotARepository(t *testing.T) {
	_, err := repo.Open(t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, repo.ErrNotARepository)
}

func TestResolveRefBranchTagAndHEAD(t *testing.T) {
	b := gittest.BasicRepo(t)
	r := b.Facade()
	head := b.Head()

	b.Tag("v1.0")

	hash, err := r.ResolveRef("master")
	require.NoError(t, err)
	assert.Equal(t, head, hash)

	hash, err = r.ResolveRef("v1.0")
	require.NoError(t, err)
	assert.Equal(t, head, hash)

	hash, err = r.ResolveRef("HEAD")
	require.NoError(t, err)
	assert.Equal(t, head, hash)

	hash, err = r.ResolveRef(head)
	require.NoError(t, err)
	assert.Equal(t, head, hash)
}

func TestResolveRefShortHash(t *testing.T) {
	b := gittest.BasicRepo(t)
	r := b.Facade()
	head := b.Head()

	hash, err := r.ResolveRef(head[:10])
	require.NoError(t, err)
	assert.Equal(t, head, hash)

	// Prefixes shorter than seven hex chars never match.
	_, err = r.ResolveRef(head[:5])
	require.Error(t, err)

	var notFound *repo.RefNotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestResolveRefUnknown(t *testing.T) {
	b := gittest.BasicRepo(t)
	r := b.Facade()

	_, err := r.ResolveRef("no-such-branch")
	require.Error(t, err)

	var notFound *repo.RefNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "no-such-branch", notFound.Ref)
}

func TestResolveRelativeRefs(t *testing.T) {
	b := gittest.BasicRepo(t)
	r := b.Facade()

	head, err := r.Commit("HEAD")
	require.NoError(t, err)

	parent, err := r.Commit("HEAD~1")
	require.NoError(t, err)
	assert.Equal(t, head.ParentHashes[0], parent.Hash)

	viaCaret, err := r.Commit("HEAD^")
	require.NoError(t, err)
	assert.Equal(t, parent.Hash, viaCaret.Hash)

	grandparent, err := r.Commit("HEAD~2")
	require.NoError(t, err)
	assert.Equal(t, parent.ParentHashes[0], grandparent.Hash)

	chained, err := r.Commit("HEAD~1~1")
	require.NoError(t, err)
	assert.Equal(t, grandparent.Hash, chained.Hash)

	// More first-parent steps than the history has fails.
	_, err = r.Commit("HEAD~10")
	require.Error(t, err)
	var notFound *repo.RefNotFoundError
	assert.True(t, errors.As(err, &notFound))

	// Second parent of a non-merge commit fails.
	_, err = r.Commit("HEAD^2")
	require.Error(t, err)
}

func TestCommitFields(t *testing.T) {
	b := gittest.BasicRepo(t)
	r := b.Facade()

	c, err := r.Commit("HEAD")
	require.NoError(t, err)
	assert.Equal(t, "Add file B", c.Subject())
	assert.Equal(t, "Test User", c.Author)
	assert.Equal(t, "test@example.com", c.AuthorEmail)
	assert.Len(t, c.Hash, 40)
	assert.Len(t, c.ParentHashes, 1)
	assert.False(t, c.IsMerge())
	assert.NotEmpty(t, c.TreeHash)
}

func TestWalkCommitsTopoOrder(t *testing.T) {
	b := gittest.BasicRepo(t)
	r := b.Facade()

	commits, err := r.WalkCommits([]string{"HEAD"}, nil, 0)
	require.NoError(t, err)
	require.Len(t, commits, 3)
	assert.Equal(t, "Add file B", commits[0].Subject())
	assert.Equal(t, "Add file A", commits[1].Subject())
	assert.Equal(t, "Initial commit", commits[2].Subject())

	// Child always precedes parent.
	seen := make(map[string]bool)
	for _, c := range commits {
		for _, p := range c.ParentHashes {
			assert.False(t, seen[p], "parent emitted before child")
		}
		seen[c.Hash] = true
	}
}

func TestWalkCommitsExcludeAndCap(t *testing.T) {
	b := gittest.BranchedRepo(t)
	r := b.Facade()

	commits, err := r.WalkCommits([]string{"feature"}, []string{"master"}, 0)
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, "Add feature file", commits[0].Subject())
	assert.Equal(t, "Modify file A", commits[1].Subject())

	capped, err := r.WalkCommits([]string{"master"}, nil, 2)
	require.NoError(t, err)
	assert.Len(t, capped, 2)
}

func TestMergeBase(t *testing.T) {
	b := gittest.BranchedRepo(t)
	r := b.Facade()

	// HEAD is master; the fork point is "Add file B".
	forkPoint, err := r.Commit("HEAD~1")
	require.NoError(t, err)

	base, ok, err := r.MergeBase("master", "feature")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, forkPoint.Hash, base)

	// Symmetric.
	base2, ok, err := r.MergeBase("feature", "master")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, base, base2)

	// An ancestor of both is the base's ancestor (P3 spot check).
	ancestors, err := r.WalkCommits([]string{base}, nil, 0)
	require.NoError(t, err)
	hashes := make(map[string]bool)
	for _, c := range ancestors {
		hashes[c.Hash] = true
	}
	initial, err := r.Commit("HEAD~3")
	require.NoError(t, err)
	assert.True(t, hashes[initial.Hash])
}

func TestMergeBaseTipIsAncestor(t *testing.T) {
	b := gittest.BasicRepo(t)
	r := b.Facade()

	parent, err := r.Commit("HEAD~1")
	require.NoError(t, err)

	base, ok, err := r.MergeBase("HEAD", parent.Hash)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, parent.Hash, base)
}

func TestCommitChanges(t *testing.T) {
	b := gittest.BasicRepo(t)
	r := b.Facade()
	ctx := context.Background()

	changes, err := r.CommitChanges(ctx, "HEAD")
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "file_b.txt", changes[0].Path)
	assert.Equal(t, model.ChangeAdd, changes[0].Type)
	assert.NotEmpty(t, changes[0].NewHash)
}

func TestCommitChangesRootAgainstEmptyTree(t *testing.T) {
	b := gittest.BasicRepo(t)
	r := b.Facade()
	ctx := context.Background()

	changes, err := r.CommitChanges(ctx, "HEAD~2")
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "README.md", changes[0].Path)
	assert.Equal(t, model.ChangeAdd, changes[0].Type)
}

func TestTreeChangesModifyDeleteRename(t *testing.T) {
	b := gittest.BasicRepo(t)
	r := b.Facade()
	ctx := context.Background()

	before, err := r.Commit("HEAD")
	require.NoError(t, err)

	b.WriteFile("file_a.txt", "Content A\nLine 2\nLine 3\nLine 4\n")
	b.RemoveFile("file_b.txt")
	b.MoveFile("README.md", "README.rst")
	b.Commit("Rework tree")

	after, err := r.Commit("HEAD")
	require.NoError(t, err)

	changes, err := r.TreeChanges(ctx, before.TreeHash, after.TreeHash)
	require.NoError(t, err)

	byPath := make(map[string]model.FileChange)
	for _, fc := range changes {
		byPath[fc.Path] = fc
	}

	require.Contains(t, byPath, "file_a.txt")
	assert.Equal(t, model.ChangeModify, byPath["file_a.txt"].Type)

	require.Contains(t, byPath, "file_b.txt")
	assert.Equal(t, model.ChangeDelete, byPath["file_b.txt"].Type)

	require.Contains(t, byPath, "README.rst")
	assert.Equal(t, model.ChangeRename, byPath["README.rst"].Type)
	assert.Equal(t, "README.md", byPath["README.rst"].OldPath)
}

func TestCommitPatchText(t *testing.T) {
	b := gittest.BasicRepo(t)
	r := b.Facade()
	ctx := context.Background()

	text, err := r.CommitPatch(ctx, "HEAD")
	require.NoError(t, err)
	assert.Contains(t, text, "diff --git")
	assert.Contains(t, text, "file_b.txt")
	assert.Contains(t, text, "+Content B")
}

func TestFileContent(t *testing.T) {
	b := gittest.BasicRepo(t)
	r := b.Facade()

	head, err := r.Commit("HEAD")
	require.NoError(t, err)

	content, ok, err := r.FileContent(head.TreeHash, "file_a.txt")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Content A\nLine 2\nLine 3\n", string(content))

	_, ok, err = r.FileContent(head.TreeHash, "missing.txt")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHeadBranch(t *testing.T) {
	b := gittest.BranchedRepo(t)
	r := b.Facade()

	assert.Equal(t, "master", r.HeadBranch())

	b.Checkout("feature")
	assert.Equal(t, "feature", r.HeadBranch())
}

func TestBranches(t *testing.T) {
	b := gittest.BranchedRepo(t)
	r := b.Facade()

	branches, err := r.Branches(false)
	require.NoError(t, err)

	names := make(map[string]string)
	for _, br := range branches {
		names[br.Name] = br.Head
		assert.False(t, br.IsRemote)
	}
	assert.Len(t, names, 2)
	assert.Contains(t, names, "master")
	assert.Contains(t, names, "feature")
}
