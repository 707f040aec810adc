package sim

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/egekaya1/git-sim/internal/conflict"
	"github.com/egekaya1/git-sim/internal/diff"
	"github.com/egekaya1/git-sim/internal/model"
	"github.com/egekaya1/git-sim/internal/repo"
)

// MergeSimulation is the operation record produced by a merge
// simulation.
type MergeSimulation struct {
	SourceBranch       string
	TargetBranch       string
	MergeBaseSHA       string
	MergeCommitSHA     string
	Strategy           string
	IsFastForward      bool
	Conflicts          []model.Conflict
	FilesMergedCleanly []string
	Before             *model.Graph
	After              *model.Graph
}

// ToResult converts the record to the uniform result shape.
func (s *MergeSimulation) ToResult() *model.Result {
	var warnings []string
	if s.IsFastForward {
		warnings = append(warnings, "Fast-forward merge possible")
	}
	return &model.Result{
		Operation:    model.OpMerge,
		Success:      !model.HasCertain(s.Conflicts),
		Before:       s.Before,
		After:        s.After,
		Conflicts:    s.Conflicts,
		Warnings:     warnings,
		SourceRef:    s.SourceBranch,
		TargetRef:    s.TargetBranch,
		MergeBaseSHA: s.MergeBaseSHA,
		NewHeadSHA:   s.MergeCommitSHA,
	}
}

// MergeSimulator predicts the outcome of merging source into target:
// fast-forward detection, per-path conflicts, and the files that merge
// cleanly.
type MergeSimulator struct {
	Source   string
	Target   string
	NoFF     bool
	Strategy string

	repo     *repo.Repository
	analyzer *diff.Analyzer
	detector *conflict.Detector
	warnings []string
}

// NewMergeSimulator builds a merge simulator. An empty target defaults
// to HEAD; the strategy label is informational only.
func NewMergeSimulator(r *repo.Repository, source, target string, noFF bool) *MergeSimulator {
	if target == "" {
		target = "HEAD"
	}
	return &MergeSimulator{
		Source:   source,
		Target:   target,
		NoFF:     noFF,
		Strategy: "ort",
		repo:     r,
		analyzer: diff.NewAnalyzer(r),
		detector: conflict.NewDetector(),
	}
}

// Warnings returns the validation warnings gathered by the last Run.
func (s *MergeSimulator) Warnings() []string {
	return s.warnings
}

// Validate checks the merge preconditions.
func (s *MergeSimulator) Validate() (errs, warnings []string) {
	sourceCommit, err := s.repo.Commit(s.Source)
	if err != nil {
		return append(errs, fmt.Sprintf("Source branch not found: %s", s.Source)), warnings
	}
	targetCommit, err := s.repo.Commit(s.Target)
	if err != nil {
		return append(errs, fmt.Sprintf("Target branch not found: %s", s.Target)), warnings
	}

	if sourceCommit.Hash == targetCommit.Hash {
		warnings = append(warnings, "Source and target are the same commit; nothing to merge")
	}

	base, ok, err := s.repo.MergeBase(s.Source, s.Target)
	if err != nil || !ok {
		return append(errs, fmt.Sprintf("No common ancestor found between '%s' and '%s'", s.Source, s.Target)), warnings
	}

	if base == targetCommit.Hash {
		if s.NoFF {
			warnings = append(warnings, "Fast-forward is possible, but --no-ff specified; merge commit will be created")
		} else {
			warnings = append(warnings, "This will be a fast-forward merge")
		}
	}
	if base == sourceCommit.Hash {
		warnings = append(warnings, fmt.Sprintf("'%s' is already merged into '%s'", s.Source, s.Target))
	}
	return errs, warnings
}

// Run validates and simulates. Validation errors surface as a
// ValidationError.
func (s *MergeSimulator) Run(ctx context.Context) (*MergeSimulation, error) {
	errs, warnings := s.Validate()
	s.warnings = warnings
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	return s.Simulate(ctx)
}

// Simulate performs the merge prediction.
func (s *MergeSimulator) Simulate(ctx context.Context) (*MergeSimulation, error) {
	sourceCommit, err := s.repo.Commit(s.Source)
	if err != nil {
		return nil, err
	}
	targetCommit, err := s.repo.Commit(s.Target)
	if err != nil {
		return nil, err
	}
	base, ok, err := s.repo.MergeBase(s.Source, s.Target)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("no merge base found")
	}

	isFastForward := base == targetCommit.Hash && !s.NoFF

	sourceChanges, err := collectChanges(ctx, s.repo, s.analyzer, sourceCommit.Hash, base)
	if err != nil {
		return nil, err
	}
	targetChanges, err := collectChanges(ctx, s.repo, s.analyzer, targetCommit.Hash, base)
	if err != nil {
		return nil, err
	}

	conflicts := s.detector.Detect(targetChanges, sourceChanges)
	clean := cleanMerges(sourceChanges, targetChanges, conflicts)

	mergeSHA := sourceCommit.Hash
	if !isFastForward {
		mergeSHA = syntheticSHA("merge", sourceCommit.Hash, targetCommit.Hash)
	}

	before, err := s.repo.BuildGraph([]string{sourceCommit.Hash, targetCommit.Hash}, 30)
	if err != nil {
		return nil, err
	}
	after, err := s.buildAfterGraph(sourceCommit, targetCommit, mergeSHA, isFastForward)
	if err != nil {
		return nil, err
	}

	return &MergeSimulation{
		SourceBranch:       s.Source,
		TargetBranch:       branchName(s.repo, s.Target),
		MergeBaseSHA:       base,
		MergeCommitSHA:     mergeSHA,
		Strategy:           s.Strategy,
		IsFastForward:      isFastForward,
		Conflicts:          conflicts,
		FilesMergedCleanly: clean,
		Before:             before,
		After:              after,
	}, nil
}

// cleanMerges lists the paths that merge without conflict: touched on
// one side only, or on both sides but absent from the conflict list.
func cleanMerges(sourceChanges, targetChanges []model.FileChange, conflicts []model.Conflict) []string {
	conflictPaths := make(map[string]bool, len(conflicts))
	for _, c := range conflicts {
		conflictPaths[c.Path] = true
	}

	sourcePaths := make(map[string]bool, len(sourceChanges))
	for _, fc := range sourceChanges {
		sourcePaths[fc.Path] = true
	}
	targetPaths := make(map[string]bool, len(targetChanges))
	for _, fc := range targetChanges {
		targetPaths[fc.Path] = true
	}

	clean := make(map[string]bool)
	for path := range sourcePaths {
		if !targetPaths[path] || !conflictPaths[path] {
			clean[path] = true
		}
	}
	for path := range targetPaths {
		if !sourcePaths[path] || !conflictPaths[path] {
			clean[path] = true
		}
	}

	out := make([]string, 0, len(clean))
	for path := range clean {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// buildAfterGraph projects the post-merge DAG: the source history alone
// for a fast-forward, otherwise a synthesized merge commit joining both
// sides.
func (s *MergeSimulator) buildAfterGraph(sourceCommit, targetCommit model.Commit, mergeSHA string, isFastForward bool) (*model.Graph, error) {
	graph := model.NewGraph()

	if isFastForward {
		history, err := s.repo.WalkCommits([]string{sourceCommit.Hash}, nil, 20)
		if err != nil {
			return nil, err
		}
		for _, c := range history {
			graph.AddCommit(c)
		}
		graph.HeadHash = sourceCommit.Hash
	} else {
		graph.AddCommit(model.Commit{
			Hash:         mergeSHA,
			Message:      fmt.Sprintf("Merge branch '%s' into %s", s.Source, s.Target),
			Author:       targetCommit.Author,
			AuthorEmail:  targetCommit.AuthorEmail,
			Timestamp:    targetCommit.Timestamp + 1,
			ParentHashes: []string{targetCommit.Hash, sourceCommit.Hash},
		})
		for _, tip := range []string{targetCommit.Hash, sourceCommit.Hash} {
			history, err := s.repo.WalkCommits([]string{tip}, nil, 15)
			if err != nil {
				return nil, err
			}
			for _, c := range history {
				graph.AddCommit(c)
			}
		}
		graph.HeadHash = mergeSHA
	}

	target := branchName(s.repo, s.Target)
	if target == "HEAD" {
		target = "target"
	}
	graph.HeadBranch = target
	graph.BranchTips[target] = graph.HeadHash
	graph.BranchTips[s.Source] = sourceCommit.Hash
	return graph, nil
}
