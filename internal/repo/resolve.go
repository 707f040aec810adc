package repo

import (
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ResolveRef resolves a ref string to a full commit hash. Resolution
// order, first match wins: exact 40-hex commit, short hex prefix (at
// least 7 chars, must be unique), refs/heads, refs/tags, refs/remotes,
// the literal HEAD, and finally HEAD-relative suffixes (~N, ^N).
func (r *Repository) ResolveRef(ref string) (string, error) {
	hash, err := r.resolveHash(ref)
	if err != nil {
		return "", err
	}
	return hash.String(), nil
}

func (r *Repository) resolveHash(ref string) (plumbing.Hash, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return plumbing.ZeroHash, notFound(ref)
	}

	// Exact 40-hex hash, accepted only when it names a commit.
	if len(ref) == 40 && isHex(ref) {
		h := plumbing.NewHash(ref)
		if _, err := r.repo.CommitObject(h); err == nil {
			return h, nil
		}
	}

	// Short hex prefix scan over all commit objects.
	if len(ref) >= 7 && len(ref) < 40 && isHex(ref) {
		h, found, err := r.resolveShortHash(ref)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		if found {
			return h, nil
		}
	}

	for _, prefix := range []string{"refs/heads/", "refs/tags/", "refs/remotes/"} {
		name := plumbing.ReferenceName(prefix + ref)
		if stored, err := r.repo.Reference(name, true); err == nil {
			return r.peel(ref, stored.Hash())
		}
	}

	if ref == "HEAD" {
		head, err := r.repo.Head()
		if err != nil {
			return plumbing.ZeroHash, notFound(ref)
		}
		return head.Hash(), nil
	}

	if strings.HasPrefix(ref, "HEAD") {
		return r.resolveRelative(ref)
	}

	return plumbing.ZeroHash, notFound(ref)
}

// resolveShortHash scans the store for commits whose hash starts with
// prefix. More than one match is an error; zero matches falls through to
// the remaining resolution steps.
func (r *Repository) resolveShortHash(prefix string) (plumbing.Hash, bool, error) {
	iter, err := r.repo.CommitObjects()
	if err != nil {
		return plumbing.ZeroHash, false, nil
	}
	defer iter.Close()

	var (
		match     plumbing.Hash
		found     bool
		ambiguous bool
	)
	err = iter.ForEach(func(c *object.Commit) error {
		if strings.HasPrefix(c.Hash.String(), prefix) {
			if found {
				ambiguous = true
				return plumbing.ErrObjectNotFound // stop iteration
			}
			match = c.Hash
			found = true
		}
		return nil
	})
	if ambiguous {
		return plumbing.ZeroHash, false, &AmbiguousRefError{Ref: prefix}
	}
	if err != nil && !found {
		return plumbing.ZeroHash, false, nil
	}
	return match, found, nil
}

// peel follows an annotated tag down to its commit.
func (r *Repository) peel(ref string, h plumbing.Hash) (plumbing.Hash, error) {
	if _, err := r.repo.CommitObject(h); err == nil {
		return h, nil
	}
	tag, err := r.repo.TagObject(h)
	if err != nil {
		return plumbing.ZeroHash, notFound(ref)
	}
	c, err := tag.Commit()
	if err != nil {
		return plumbing.ZeroHash, notFound(ref)
	}
	return c.Hash, nil
}

// resolveRelative handles HEAD~N and HEAD^N suffix chains, applied left
// to right. ~N follows the first parent N times; ^N takes the N-th
// parent (1-based). Running out of parents is a not-found failure.
func (r *Repository) resolveRelative(ref string) (plumbing.Hash, error) {
	head, err := r.repo.Head()
	if err != nil {
		return plumbing.ZeroHash, notFound(ref)
	}
	current := head.Hash()

	suffix := ref[len("HEAD"):]
	i := 0
	for i < len(suffix) {
		op := suffix[i]
		if op != '~' && op != '^' {
			return plumbing.ZeroHash, notFound(ref)
		}
		i++
		n := 0
		for i < len(suffix) && suffix[i] >= '0' && suffix[i] <= '9' {
			n = n*10 + int(suffix[i]-'0')
			i++
		}
		if n == 0 {
			n = 1
		}

		c, err := r.repo.CommitObject(current)
		if err != nil {
			return plumbing.ZeroHash, notFound(ref)
		}

		switch op {
		case '~':
			for step := 0; step < n; step++ {
				if c.NumParents() == 0 {
					return plumbing.ZeroHash, notFound(ref)
				}
				current = c.ParentHashes[0]
				c, err = r.repo.CommitObject(current)
				if err != nil {
					return plumbing.ZeroHash, notFound(ref)
				}
			}
		case '^':
			if n > c.NumParents() {
				return plumbing.ZeroHash, notFound(ref)
			}
			current = c.ParentHashes[n-1]
		}
	}
	return current, nil
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
