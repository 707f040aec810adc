// Package explain holds the didactic text shown for each operation.
package explain

import "github.com/egekaya1/git-sim/internal/model"

// Explanation describes what an operation does, how, and how to stay
// safe around it.
type Explanation struct {
	Operation    model.Operation
	Summary      string
	HowItWorks   []string
	WhatChanges  []string
	Risks        []string
	SafetyTips   []string
	Alternatives []string
	SeeAlso      []string
}

// Lookup returns the explanation for an operation.
func Lookup(op model.Operation) (Explanation, bool) {
	e, ok := explanations[op]
	return e, ok
}

var explanations = map[model.Operation]Explanation{
	model.OpRebase: {
		Operation: model.OpRebase,
		Summary:   "Rebase re-applies commits from one branch onto another, creating new commits with different SHAs.",
		HowItWorks: []string{
			"Find the merge base (common ancestor) between source and target branches",
			"Save the commits from merge-base to source tip",
			"Reset the source branch to the target branch",
			"Re-apply each saved commit one by one onto the new base",
			"Each re-applied commit gets a new SHA (it's technically a new commit)",
		},
		WhatChanges: []string{
			"Commit SHAs will change for all rebased commits",
			"Commit timestamps may be updated",
			"Branch history becomes linear (no merge commits)",
			"Parent references are rewritten",
		},
		Risks: []string{
			"HISTORY REWRITE: All rebased commits get new SHAs",
			"FORCE PUSH REQUIRED: If branch was already pushed",
			"CONFLICTS: May need to resolve same conflict multiple times",
			"COLLABORATION RISK: Others' work may be invalidated",
		},
		SafetyTips: []string{
			"Never rebase public/shared branches",
			"Create a backup branch before rebasing: git branch backup-<branch>",
			"Use git reflog to recover if something goes wrong",
			"Communicate with team before force-pushing",
		},
		Alternatives: []string{
			"git merge: Preserves history, creates merge commit",
			"git cherry-pick: Pick specific commits without rewriting others",
			"git rebase -i: Interactive mode for more control",
		},
		SeeAlso: []string{
			"git reflog - View history of HEAD movements",
			"git reset --hard ORIG_HEAD - Undo a rebase",
		},
	},
	model.OpMerge: {
		Operation: model.OpMerge,
		Summary:   "Merge combines changes from one branch into another, creating a merge commit.",
		HowItWorks: []string{
			"Find the merge base (common ancestor) between branches",
			"Calculate three-way diff: base vs ours vs theirs",
			"Apply non-conflicting changes automatically",
			"Mark conflicting regions for manual resolution",
			"Create a merge commit with two parents",
		},
		WhatChanges: []string{
			"Creates a new merge commit (unless fast-forward)",
			"Merge commit has two parent references",
			"Both branch histories remain intact",
			"Target branch tip advances",
		},
		Risks: []string{
			"CONFLICTS: Overlapping changes need manual resolution",
			"HISTORY NOISE: Frequent merges clutter the graph",
		},
		SafetyTips: []string{
			"Merge is non-destructive; both histories survive",
			"Use git merge --abort to back out of a conflicted merge",
			"Review the combined diff before pushing",
		},
		Alternatives: []string{
			"git rebase: Linear history, no merge commit",
			"git merge --squash: Single commit, no merge parent",
		},
		SeeAlso: []string{
			"git log --graph - Inspect the merged history",
		},
	},
	model.OpReset: {
		Operation: model.OpReset,
		Summary:   "Reset moves the current branch tip to another commit, optionally discarding index and working-tree state.",
		HowItWorks: []string{
			"Resolve the target commit",
			"Move the branch ref (and HEAD) to it",
			"soft: stop there; mixed: also reset the index; hard: also reset the working tree",
		},
		WhatChanges: []string{
			"Branch tip moves; later commits become unreachable",
			"mixed unstages changes, hard discards them",
		},
		Risks: []string{
			"DATA LOSS: hard reset destroys uncommitted work",
			"UNREACHABLE COMMITS: abandoned commits are only recoverable via reflog until GC",
		},
		SafetyTips: []string{
			"Prefer git reset --soft or --mixed when unsure",
			"Stash or commit work before a hard reset",
			"git reflog lists the abandoned commits",
		},
		Alternatives: []string{
			"git revert: Undo with a new commit, history preserved",
			"git checkout <commit> -- <path>: Restore single files",
		},
		SeeAlso: []string{
			"git reflog - Recover abandoned commits",
		},
	},
	model.OpCherryPick: {
		Operation: model.OpCherryPick,
		Summary:   "Cherry-pick copies individual commits onto the current branch as new commits.",
		HowItWorks: []string{
			"Compute the diff each picked commit introduced",
			"Apply that diff onto the current tip",
			"Record a new commit with the same message and author",
		},
		WhatChanges: []string{
			"New commits with new SHAs appear on the target",
			"The original commits are untouched",
		},
		Risks: []string{
			"DUPLICATES: Picking an already-merged change creates a duplicate patch",
			"CONFLICTS: The diff may not apply onto the new base",
		},
		SafetyTips: []string{
			"Pick oldest commits first to reduce conflicts",
			"Avoid cherry-picking merge commits",
		},
		Alternatives: []string{
			"git merge: Bring over a whole branch",
			"git rebase --onto: Move a commit range",
		},
		SeeAlso: []string{
			"git cherry - Find commits not yet upstream",
		},
	},
}
