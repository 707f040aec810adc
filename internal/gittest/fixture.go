// Package gittest builds in-memory git repositories for tests: memfs
// worktrees over memory storage, with deterministic timestamps.
package gittest

import (
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"

	"github.com/egekaya1/git-sim/internal/repo"
)

// Builder assembles a repository commit by commit. Every commit gets a
// strictly increasing timestamp so topological tie-breaks stay stable.
type Builder struct {
	t     *testing.T
	fs    billy.Filesystem
	repo  *gogit.Repository
	wt    *gogit.Worktree
	clock time.Time
}

// NewBuilder starts an empty in-memory repository. The first commit
// lands on master.
func NewBuilder(t *testing.T) *Builder {
	t.Helper()

	fs := memfs.New()
	storer := memory.NewStorage()
	r, err := gogit.Init(storer, fs)
	if err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}
	wt, err := r.Worktree()
	if err != nil {
		t.Fatalf("failed to get worktree: %v", err)
	}
	return &Builder{
		t:     t,
		fs:    fs,
		repo:  r,
		wt:    wt,
		clock: time.Unix(1700000000, 0).UTC(),
	}
}

// Repo returns the underlying go-git repository.
func (b *Builder) Repo() *gogit.Repository {
	return b.repo
}

// Facade wraps the repository in the read-only facade under test.
func (b *Builder) Facade() *repo.Repository {
	return repo.Wrap(b.repo)
}

// WriteFile writes content and stages the path.
func (b *Builder) WriteFile(path, content string) {
	b.t.Helper()

	f, err := b.fs.Create(path)
	if err != nil {
		b.t.Fatalf("failed to create %s: %v", path, err)
	}
	if _, err := f.Write([]byte(content)); err != nil {
		b.t.Fatalf("failed to write %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		b.t.Fatalf("failed to close %s: %v", path, err)
	}
	if _, err := b.wt.Add(path); err != nil {
		b.t.Fatalf("failed to stage %s: %v", path, err)
	}
}

// RemoveFile deletes the path from the worktree and stages the removal.
func (b *Builder) RemoveFile(path string) {
	b.t.Helper()
	if _, err := b.wt.Remove(path); err != nil {
		b.t.Fatalf("failed to remove %s: %v", path, err)
	}
}

// MoveFile renames a file, staging the rename.
func (b *Builder) MoveFile(from, to string) {
	b.t.Helper()
	if _, err := b.wt.Move(from, to); err != nil {
		b.t.Fatalf("failed to move %s to %s: %v", from, to, err)
	}
}

// Commit records the staged changes and returns the new hash.
func (b *Builder) Commit(message string) string {
	b.t.Helper()

	b.clock = b.clock.Add(10 * time.Second)
	hash, err := b.wt.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "Test User",
			Email: "test@example.com",
			When:  b.clock,
		},
	})
	if err != nil {
		b.t.Fatalf("failed to commit %q: %v", message, err)
	}
	return hash.String()
}

// Branch creates a branch at the current HEAD and checks it out.
func (b *Builder) Branch(name string) {
	b.t.Helper()
	err := b.wt.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
		Create: true,
	})
	if err != nil {
		b.t.Fatalf("failed to create branch %s: %v", name, err)
	}
}

// Checkout switches to an existing branch.
func (b *Builder) Checkout(name string) {
	b.t.Helper()
	err := b.wt.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
		Force:  true,
	})
	if err != nil {
		b.t.Fatalf("failed to checkout %s: %v", name, err)
	}
}

// Tag points a lightweight tag at the current HEAD.
func (b *Builder) Tag(name string) {
	b.t.Helper()
	head, err := b.repo.Head()
	if err != nil {
		b.t.Fatalf("failed to read HEAD: %v", err)
	}
	if _, err := b.repo.CreateTag(name, head.Hash(), nil); err != nil {
		b.t.Fatalf("failed to tag %s: %v", name, err)
	}
}

// Head returns the current HEAD hash.
func (b *Builder) Head() string {
	b.t.Helper()
	ref, err := b.repo.Head()
	if err != nil {
		b.t.Fatalf("failed to read HEAD: %v", err)
	}
	return ref.Hash().String()
}

// BasicRepo builds the canonical three-commit master history:
// Initial commit (README.md), Add file A, Add file B.
func BasicRepo(t *testing.T) *Builder {
	t.Helper()

	b := NewBuilder(t)
	b.WriteFile("README.md", "# Test Repo\n")
	b.Commit("Initial commit")
	b.WriteFile("file_a.txt", "Content A\nLine 2\nLine 3\n")
	b.Commit("Add file A")
	b.WriteFile("file_b.txt", "Content B\n")
	b.Commit("Add file B")
	return b
}

// BranchedRepo extends BasicRepo with a feature branch:
//
//	* (feature) Add feature file
//	* (feature) Modify file A
//	| * (master) Update README
//	|/
//	* Add file B
//	* Add file A
//	* Initial commit
//
// HEAD is left on master.
func BranchedRepo(t *testing.T) *Builder {
	t.Helper()

	b := BasicRepo(t)
	b.Branch("feature")
	b.WriteFile("file_a.txt", "Modified A\nLine 2\nLine 3\nLine 4\n")
	b.Commit("Modify file A")
	b.WriteFile("feature.txt", "Feature content\n")
	b.Commit("Add feature file")

	b.Checkout("master")
	b.WriteFile("README.md", "# Test Repo\n\nUpdated readme.\n")
	b.Commit("Update README")
	return b
}
