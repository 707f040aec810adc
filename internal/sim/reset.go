package sim

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/egekaya1/git-sim/internal/diff"
	"github.com/egekaya1/git-sim/internal/model"
	"github.com/egekaya1/git-sim/internal/repo"
)

// ResetSimulation is the operation record produced by a reset
// simulation.
type ResetSimulation struct {
	TargetSHA       string
	Mode            model.ResetMode
	CurrentSHA      string
	CommitsDetached []model.Commit
	FilesUnstaged   []string
	FilesDiscarded  []string
	Before          *model.Graph
	After           *model.Graph
}

// ToResult converts the record to the uniform result shape, including
// the mode-derived safety analysis.
func (s *ResetSimulation) ToResult() *model.Result {
	var warnings []string
	if len(s.CommitsDetached) > 0 {
		warnings = append(warnings, fmt.Sprintf("%d commit(s) will become unreachable", len(s.CommitsDetached)))
	}
	if len(s.FilesDiscarded) > 0 {
		warnings = append(warnings, fmt.Sprintf("%d file(s) will have changes discarded", len(s.FilesDiscarded)))
	}

	danger := model.DangerLow
	if s.Mode == model.ResetHard {
		danger = model.DangerMedium
		if len(s.FilesDiscarded) > 0 {
			danger = model.DangerHigh
		}
	} else if len(s.CommitsDetached) > 0 {
		danger = model.DangerMedium
	}

	return &model.Result{
		Operation:      model.OpReset,
		Success:        true,
		Before:         s.Before,
		After:          s.After,
		Warnings:       warnings,
		CommitsDropped: s.CommitsDetached,
		SourceRef:      s.CurrentSHA,
		TargetRef:      s.TargetSHA,
		NewHeadSHA:     s.TargetSHA,
		Safety: &model.Safety{
			Level: danger,
			Reasons: []string{
				fmt.Sprintf("Reset mode: %s", strings.ToUpper(s.Mode.String())),
				fmt.Sprintf("Commits affected: %d", len(s.CommitsDetached)),
			},
			Reversible: s.Mode != model.ResetHard,
		},
	}
}

// ResetSimulator predicts the outcome of moving the current tip to a
// target: the commits left unreachable and the files each reset mode
// touches.
type ResetSimulator struct {
	Target string
	Mode   model.ResetMode

	repo     *repo.Repository
	analyzer *diff.Analyzer
	warnings []string
}

// NewResetSimulator builds a reset simulator.
func NewResetSimulator(r *repo.Repository, target string, mode model.ResetMode) *ResetSimulator {
	return &ResetSimulator{
		Target:   target,
		Mode:     mode,
		repo:     r,
		analyzer: diff.NewAnalyzer(r),
	}
}

// Warnings returns the validation warnings gathered by the last Run.
func (s *ResetSimulator) Warnings() []string {
	return s.warnings
}

// Validate checks the reset preconditions and surfaces a mode-specific
// data-loss warning.
func (s *ResetSimulator) Validate() (errs, warnings []string) {
	targetCommit, err := s.repo.Commit(s.Target)
	if err != nil {
		return append(errs, fmt.Sprintf("Target ref not found: %s", s.Target)), warnings
	}
	currentCommit, err := s.repo.Commit("HEAD")
	if err != nil {
		return append(errs, "Cannot determine current HEAD"), warnings
	}

	if targetCommit.Hash == currentCommit.Hash {
		warnings = append(warnings, "Already at target commit; reset will have no effect")
		return errs, warnings
	}

	lost, err := s.repo.WalkCommits([]string{currentCommit.Hash}, []string{targetCommit.Hash}, 0)
	if err == nil && len(lost) > 0 {
		warnings = append(warnings, fmt.Sprintf("%d commit(s) will become unreachable", len(lost)))
	}

	switch s.Mode {
	case model.ResetHard:
		warnings = append(warnings, "HARD reset: All uncommitted changes will be lost!")
	case model.ResetMixed:
		warnings = append(warnings, "MIXED reset: Changes will be unstaged but kept in working directory")
	case model.ResetSoft:
		warnings = append(warnings, "SOFT reset: Changes will remain staged")
	}
	return errs, warnings
}

// Run validates and simulates. Validation errors surface as a
// ValidationError.
func (s *ResetSimulator) Run(ctx context.Context) (*ResetSimulation, error) {
	errs, warnings := s.Validate()
	s.warnings = warnings
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	return s.Simulate(ctx)
}

// Simulate performs the reset prediction.
func (s *ResetSimulator) Simulate(ctx context.Context) (*ResetSimulation, error) {
	currentCommit, err := s.repo.Commit("HEAD")
	if err != nil {
		return nil, err
	}
	targetCommit, err := s.repo.Commit(s.Target)
	if err != nil {
		return nil, err
	}

	detached, err := s.detachedCommits(targetCommit.Hash, currentCommit.Hash)
	if err != nil {
		return nil, err
	}

	var unstaged, discarded []string
	if s.Mode == model.ResetMixed || s.Mode == model.ResetHard {
		seen := make(map[string]bool)
		for _, c := range detached {
			changes, err := s.analyzer.Changes(ctx, c.Hash)
			if err != nil {
				return nil, err
			}
			for _, fc := range changes {
				if seen[fc.Path] {
					continue
				}
				seen[fc.Path] = true
				if s.Mode == model.ResetHard {
					discarded = append(discarded, fc.Path)
				} else {
					unstaged = append(unstaged, fc.Path)
				}
			}
		}
		sort.Strings(unstaged)
		sort.Strings(discarded)
	}

	before, err := s.repo.BuildGraph([]string{currentCommit.Hash}, 20)
	if err != nil {
		return nil, err
	}
	after, err := s.buildAfterGraph(targetCommit, detached)
	if err != nil {
		return nil, err
	}

	return &ResetSimulation{
		TargetSHA:       targetCommit.Hash,
		Mode:            s.Mode,
		CurrentSHA:      currentCommit.Hash,
		CommitsDetached: detached,
		FilesUnstaged:   unstaged,
		FilesDiscarded:  discarded,
		Before:          before,
		After:           after,
	}, nil
}

// detachedCommits walks from the current tip and stops before the
// target; the target itself is never included.
func (s *ResetSimulator) detachedCommits(target, current string) ([]model.Commit, error) {
	if target == current {
		return nil, nil
	}
	commits, err := s.repo.WalkCommits([]string{current}, nil, 0)
	if err != nil {
		return nil, err
	}
	var detached []model.Commit
	for _, c := range commits {
		if c.Hash == target {
			break
		}
		detached = append(detached, c)
	}
	return detached, nil
}

// buildAfterGraph projects the post-reset DAG: the target's history,
// with the detached commits retained as orphans.
func (s *ResetSimulator) buildAfterGraph(targetCommit model.Commit, detached []model.Commit) (*model.Graph, error) {
	graph := model.NewGraph()
	graph.HeadHash = targetCommit.Hash
	graph.HeadBranch = s.repo.HeadBranch()

	history, err := s.repo.WalkCommits([]string{targetCommit.Hash}, nil, 20)
	if err != nil {
		return nil, err
	}
	for _, c := range history {
		graph.AddCommit(c)
	}
	for _, c := range detached {
		graph.AddCommit(c)
	}

	if graph.HeadBranch != "" {
		graph.BranchTips[graph.HeadBranch] = targetCommit.Hash
	}
	return graph, nil
}
