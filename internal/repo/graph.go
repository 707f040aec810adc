package repo

import "github.com/egekaya1/git-sim/internal/model"

// BuildGraph assembles a commit-graph projection reachable from the
// given refs, capped at maxCommits. Branch tips are annotated for every
// branch whose name or tip hash appears in the ref list; refs that fail
// to resolve are skipped.
func (r *Repository) BuildGraph(refs []string, maxCommits int) (*model.Graph, error) {
	graph := model.NewGraph()

	if head, err := r.HeadHash(); err == nil {
		graph.HeadHash = head
	}
	graph.HeadBranch = r.HeadBranch()

	var resolved []string
	tips := make(map[string]bool)
	for _, ref := range refs {
		hash, err := r.ResolveRef(ref)
		if err != nil {
			continue
		}
		resolved = append(resolved, hash)
		tips[hash] = true
	}

	if branches, err := r.Branches(true); err == nil {
		named := make(map[string]bool, len(refs))
		for _, ref := range refs {
			named[ref] = true
		}
		for _, b := range branches {
			if named[b.Name] || tips[b.Head] {
				graph.BranchTips[b.Name] = b.Head
			}
		}
	}

	if len(resolved) == 0 {
		return graph, nil
	}

	commits, err := r.WalkCommits(resolved, nil, maxCommits)
	if err != nil {
		return nil, err
	}
	for _, c := range commits {
		graph.AddCommit(c)
	}
	return graph, nil
}
