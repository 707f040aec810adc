// Package sim implements the four operation simulators (rebase, merge,
// reset, cherry-pick) and the dispatcher that routes git-style command
// strings to them. Every simulation is a read-only computation over the
// repository facade; predicted outcomes are expressed as a uniform
// result record.
package sim

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/egekaya1/git-sim/internal/diff"
	"github.com/egekaya1/git-sim/internal/model"
	"github.com/egekaya1/git-sim/internal/repo"
)

// ValidationError carries the validate-phase errors that aborted a
// simulation.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

// syntheticSHA derives a display-only hash for a simulated commit. It is
// deterministic in its inputs and never corresponds to a stored object.
func syntheticSHA(parts ...string) string {
	sum := sha1.Sum([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(sum[:])
}

// collectChanges concatenates the per-commit file changes (with hunks)
// over the walk from exclude (exclusive) to include (inclusive), in walk
// order.
func collectChanges(ctx context.Context, r *repo.Repository, analyzer *diff.Analyzer, include, exclude string) ([]model.FileChange, error) {
	var excludes []string
	if exclude != "" {
		excludes = []string{exclude}
	}
	commits, err := r.WalkCommits([]string{include}, excludes, 0)
	if err != nil {
		return nil, err
	}

	var all []model.FileChange
	for _, c := range commits {
		changes, err := analyzer.Changes(ctx, c.Hash)
		if err != nil {
			return nil, err
		}
		all = append(all, changes...)
	}
	return all, nil
}

// branchName maps the literal HEAD to the current branch name when one
// exists.
func branchName(r *repo.Repository, ref string) string {
	if ref == "HEAD" {
		if name := r.HeadBranch(); name != "" {
			return name
		}
	}
	return ref
}
