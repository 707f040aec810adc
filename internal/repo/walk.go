package repo

import (
	"container/heap"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/egekaya1/git-sim/internal/model"
)

// WalkCommits yields commits reachable from any include ref but from no
// exclude ref, in topological order (child before parent). Ties at the
// same depth break by descending commit timestamp, then hash, so walks
// are deterministic for a fixed object store. A max of 0 means no cap.
func (r *Repository) WalkCommits(include, exclude []string, max int) ([]model.Commit, error) {
	var includeHashes []plumbing.Hash
	for _, ref := range include {
		h, err := r.resolveHash(ref)
		if err != nil {
			return nil, err
		}
		includeHashes = append(includeHashes, h)
	}
	var excludeHashes []plumbing.Hash
	for _, ref := range exclude {
		h, err := r.resolveHash(ref)
		if err != nil {
			return nil, err
		}
		excludeHashes = append(excludeHashes, h)
	}

	excluded, err := r.closure(excludeHashes)
	if err != nil {
		return nil, err
	}

	// Collect the commit set reachable from the includes, fenced by the
	// excluded closure.
	set := make(map[plumbing.Hash]*object.Commit)
	stack := append([]plumbing.Hash(nil), includeHashes...)
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if excluded[current] {
			continue
		}
		if _, ok := set[current]; ok {
			continue
		}
		c, err := r.repo.CommitObject(current)
		if err != nil {
			continue
		}
		set[current] = c
		stack = append(stack, c.ParentHashes...)
	}

	// Kahn's algorithm over child->parent edges: a commit is ready once
	// every child inside the set has been emitted.
	childCount := make(map[plumbing.Hash]int, len(set))
	for _, c := range set {
		for _, p := range c.ParentHashes {
			if _, ok := set[p]; ok {
				childCount[p]++
			}
		}
	}

	ready := &commitQueue{}
	heap.Init(ready)
	for h, c := range set {
		if childCount[h] == 0 {
			heap.Push(ready, c)
		}
	}

	var out []model.Commit
	for ready.Len() > 0 {
		if max > 0 && len(out) >= max {
			break
		}
		c := heap.Pop(ready).(*object.Commit)
		out = append(out, commitToModel(c))
		for _, p := range c.ParentHashes {
			if _, ok := set[p]; !ok {
				continue
			}
			childCount[p]--
			if childCount[p] == 0 {
				heap.Push(ready, set[p])
			}
		}
	}
	return out, nil
}

// commitQueue orders ready commits newest first, hash as the final
// tie-break.
type commitQueue []*object.Commit

func (q commitQueue) Len() int { return len(q) }

func (q commitQueue) Less(i, j int) bool {
	ti, tj := q[i].Committer.When.Unix(), q[j].Committer.When.Unix()
	if ti != tj {
		return ti > tj
	}
	return q[i].Hash.String() > q[j].Hash.String()
}

func (q commitQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *commitQueue) Push(x any) { *q = append(*q, x.(*object.Commit)) }

func (q *commitQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
