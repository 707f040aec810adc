// Package repo wraps a go-git repository behind a read-only facade. All
// methods resolve refs, walk the commit DAG and diff trees without ever
// touching refs, the index or the working tree.
package repo

import (
	"context"
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"

	"github.com/egekaya1/git-sim/internal/model"
)

// Repository is the facade over the underlying object store. It owns the
// go-git handle for the life of a simulation; records it returns are
// self-contained values.
type Repository struct {
	path string
	repo *gogit.Repository
}

// Open opens the repository at path (or any subdirectory of it).
func Open(path string) (*Repository, error) {
	r, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNotARepository, path)
		}
		return nil, fmt.Errorf("failed to open repository at %s: %w", path, err)
	}
	return &Repository{path: path, repo: r}, nil
}

// Wrap builds a facade over an already-open go-git repository. Used by
// tests that assemble repositories in memory.
func Wrap(r *gogit.Repository) *Repository {
	return &Repository{repo: r}
}

// Path returns the path the repository was opened at.
func (r *Repository) Path() string {
	return r.path
}

// HeadHash returns the hash HEAD points at.
func (r *Repository) HeadHash() (string, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return "", notFound("HEAD")
	}
	return ref.Hash().String(), nil
}

// HeadBranch returns the current branch name, or "" for a detached HEAD.
func (r *Repository) HeadBranch() string {
	ref, err := r.repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return ""
	}
	if ref.Type() == plumbing.SymbolicReference {
		target := ref.Target()
		if target.IsBranch() {
			return target.Short()
		}
	}
	return ""
}

// Commit resolves a ref and returns its commit record.
func (r *Repository) Commit(ref string) (model.Commit, error) {
	hash, err := r.ResolveRef(ref)
	if err != nil {
		return model.Commit{}, err
	}
	c, err := r.repo.CommitObject(plumbing.NewHash(hash))
	if err != nil {
		return model.Commit{}, notFound(ref)
	}
	return commitToModel(c), nil
}

// Branches enumerates local branches, and remote-tracking branches when
// includeRemote is set.
func (r *Repository) Branches(includeRemote bool) ([]model.Branch, error) {
	iter, err := r.repo.References()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate refs: %w", err)
	}

	var branches []model.Branch
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name()
		switch {
		case name.IsBranch():
			branches = append(branches, model.Branch{
				Name: name.Short(),
				Head: ref.Hash().String(),
			})
		case includeRemote && name.IsRemote():
			branches = append(branches, model.Branch{
				Name:     name.Short(),
				Head:     ref.Hash().String(),
				IsRemote: true,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return branches, nil
}

// MergeBase finds the nearest common ancestor of two refs. The boolean is
// false when the refs share no history.
//
// The ancestor closure of ref1 is materialized as a set, then ref2's
// ancestry is walked depth-first and the first member of the set wins.
// Ties on criss-cross histories resolve by DFS discovery order.
func (r *Repository) MergeBase(ref1, ref2 string) (string, bool, error) {
	h1, err := r.resolveHash(ref1)
	if err != nil {
		return "", false, err
	}
	h2, err := r.resolveHash(ref2)
	if err != nil {
		return "", false, err
	}

	ancestors, err := r.closure([]plumbing.Hash{h1})
	if err != nil {
		return "", false, err
	}

	visited := make(map[plumbing.Hash]bool)
	stack := []plumbing.Hash{h2}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[current] {
			continue
		}
		visited[current] = true

		if ancestors[current] {
			return current.String(), true, nil
		}

		c, err := r.repo.CommitObject(current)
		if err != nil {
			continue
		}
		stack = append(stack, c.ParentHashes...)
	}
	return "", false, nil
}

// TreeChanges diffs two trees into file-change records. An empty oldTree
// stands for the empty tree (root commit). Rename detection is on; path,
// mode and blob hashes are copied verbatim from the differ.
func (r *Repository) TreeChanges(ctx context.Context, oldTree, newTree string) ([]model.FileChange, error) {
	var (
		from *object.Tree
		err  error
	)
	if oldTree != "" {
		from, err = r.repo.TreeObject(plumbing.NewHash(oldTree))
		if err != nil {
			return nil, notFound(oldTree)
		}
	}
	to, err := r.repo.TreeObject(plumbing.NewHash(newTree))
	if err != nil {
		return nil, notFound(newTree)
	}

	changes, err := object.DiffTreeWithOptions(ctx, from, to, &object.DiffTreeOptions{
		DetectRenames: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to diff trees: %w", err)
	}

	out := make([]model.FileChange, 0, len(changes))
	for _, change := range changes {
		fc, err := changeToModel(change)
		if err != nil {
			return nil, err
		}
		out = append(out, fc)
	}
	return out, nil
}

// CommitChanges diffs a commit against its first parent, or against the
// empty tree for a root commit. The records carry no hunks; the diff
// analyzer attaches those from the patch text.
func (r *Repository) CommitChanges(ctx context.Context, ref string) ([]model.FileChange, error) {
	c, err := r.Commit(ref)
	if err != nil {
		return nil, err
	}

	parentTree := ""
	if len(c.ParentHashes) > 0 {
		parent, err := r.Commit(c.ParentHashes[0])
		if err != nil {
			return nil, err
		}
		parentTree = parent.TreeHash
	}
	return r.TreeChanges(ctx, parentTree, c.TreeHash)
}

// CommitPatch returns the unified-diff text of a commit against its
// first parent (empty tree for a root commit).
func (r *Repository) CommitPatch(ctx context.Context, ref string) (string, error) {
	hash, err := r.ResolveRef(ref)
	if err != nil {
		return "", err
	}
	c, err := r.repo.CommitObject(plumbing.NewHash(hash))
	if err != nil {
		return "", notFound(ref)
	}

	var from *object.Tree
	if c.NumParents() > 0 {
		parent, err := c.Parent(0)
		if err != nil {
			return "", fmt.Errorf("failed to load parent of %s: %w", c.Hash, err)
		}
		from, err = parent.Tree()
		if err != nil {
			return "", fmt.Errorf("failed to load parent tree of %s: %w", c.Hash, err)
		}
	}
	to, err := c.Tree()
	if err != nil {
		return "", fmt.Errorf("failed to load tree of %s: %w", c.Hash, err)
	}

	changes, err := object.DiffTreeWithOptions(ctx, from, to, &object.DiffTreeOptions{
		DetectRenames: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to diff trees: %w", err)
	}
	patch, err := changes.PatchContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to compute patch: %w", err)
	}
	return patch.String(), nil
}

// FileContent returns the content of path at the given tree. The boolean
// is false when the file does not exist there.
func (r *Repository) FileContent(treeHash, path string) ([]byte, bool, error) {
	tree, err := r.repo.TreeObject(plumbing.NewHash(treeHash))
	if err != nil {
		return nil, false, notFound(treeHash)
	}
	f, err := tree.File(path)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	content, err := f.Contents()
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return []byte(content), true, nil
}

// closure returns every hash reachable from the given starting points,
// the starting points included. Unresolvable parents are skipped.
func (r *Repository) closure(from []plumbing.Hash) (map[plumbing.Hash]bool, error) {
	seen := make(map[plumbing.Hash]bool)
	stack := append([]plumbing.Hash(nil), from...)
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[current] {
			continue
		}
		seen[current] = true

		c, err := r.repo.CommitObject(current)
		if err != nil {
			continue
		}
		stack = append(stack, c.ParentHashes...)
	}
	return seen, nil
}

func commitToModel(c *object.Commit) model.Commit {
	parents := make([]string, len(c.ParentHashes))
	for i, p := range c.ParentHashes {
		parents[i] = p.String()
	}
	return model.Commit{
		Hash:         c.Hash.String(),
		Message:      c.Message,
		Author:       c.Author.Name,
		AuthorEmail:  c.Author.Email,
		Timestamp:    c.Committer.When.Unix(),
		ParentHashes: parents,
		TreeHash:     c.TreeHash.String(),
	}
}

func changeToModel(change *object.Change) (model.FileChange, error) {
	action, err := change.Action()
	if err != nil {
		return model.FileChange{}, fmt.Errorf("failed to classify change: %w", err)
	}

	from, to := change.From, change.To
	switch action {
	case merkletrie.Insert:
		return model.FileChange{
			Path:    to.Name,
			Type:    model.ChangeAdd,
			NewMode: uint32(to.TreeEntry.Mode),
			NewHash: to.TreeEntry.Hash.String(),
		}, nil
	case merkletrie.Delete:
		return model.FileChange{
			Path:    from.Name,
			Type:    model.ChangeDelete,
			OldMode: uint32(from.TreeEntry.Mode),
			OldHash: from.TreeEntry.Hash.String(),
		}, nil
	default: // Modify, possibly a detected rename
		fc := model.FileChange{
			Path:    to.Name,
			Type:    model.ChangeModify,
			OldMode: uint32(from.TreeEntry.Mode),
			NewMode: uint32(to.TreeEntry.Mode),
			OldHash: from.TreeEntry.Hash.String(),
			NewHash: to.TreeEntry.Hash.String(),
		}
		if from.Name != to.Name {
			fc.Type = model.ChangeRename
			fc.OldPath = from.Name
		}
		return fc, nil
	}
}
