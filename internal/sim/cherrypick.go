package sim

import (
	"context"
	"fmt"

	"github.com/egekaya1/git-sim/internal/conflict"
	"github.com/egekaya1/git-sim/internal/diff"
	"github.com/egekaya1/git-sim/internal/model"
	"github.com/egekaya1/git-sim/internal/repo"
)

// recentChangesDepth bounds how far back the target history is scanned
// to seed the conflict-detection buffer.
const recentChangesDepth = 10

// CherryPickSimulation is the operation record produced by a cherry-pick
// simulation.
type CherryPickSimulation struct {
	CommitsToPick []model.Commit
	TargetBranch  string
	Steps         []model.Step
	Before        *model.Graph
	After         *model.Graph
}

// Conflicts returns every predicted conflict across all steps.
func (s *CherryPickSimulation) Conflicts() []model.Conflict {
	var all []model.Conflict
	for _, step := range s.Steps {
		all = append(all, step.Conflicts...)
	}
	return all
}

// ToResult converts the record to the uniform result shape.
func (s *CherryPickSimulation) ToResult() *model.Result {
	conflicts := s.Conflicts()

	var created []model.Commit
	newHead := ""
	for _, step := range s.Steps {
		if step.NewSHA != "" {
			created = append(created, step.Commit)
			newHead = step.NewSHA
		}
	}

	return &model.Result{
		Operation:       model.OpCherryPick,
		Success:         !model.HasCertain(conflicts),
		Before:          s.Before,
		After:           s.After,
		Conflicts:       conflicts,
		CommitsAffected: s.CommitsToPick,
		CommitsCreated:  created,
		TargetRef:       s.TargetBranch,
		NewHeadSHA:      newHead,
		Steps:           s.Steps,
	}
}

// CherryPickSimulator predicts the outcome of picking an ordered list of
// commits onto a target.
type CherryPickSimulator struct {
	CommitRefs []string
	Target     string

	repo     *repo.Repository
	analyzer *diff.Analyzer
	detector *conflict.Detector
	warnings []string
}

// NewCherryPickSimulator builds a cherry-pick simulator. An empty target
// defaults to HEAD.
func NewCherryPickSimulator(r *repo.Repository, commits []string, target string) *CherryPickSimulator {
	if target == "" {
		target = "HEAD"
	}
	return &CherryPickSimulator{
		CommitRefs: commits,
		Target:     target,
		repo:       r,
		analyzer:   diff.NewAnalyzer(r),
		detector:   conflict.NewDetector(),
	}
}

// Warnings returns the validation warnings gathered by the last Run.
func (s *CherryPickSimulator) Warnings() []string {
	return s.warnings
}

// Validate checks that the target and every commit resolve, and warns
// about commits already present in the target history and about merge
// commits.
func (s *CherryPickSimulator) Validate() (errs, warnings []string) {
	if _, err := s.repo.Commit(s.Target); err != nil {
		return append(errs, fmt.Sprintf("Target ref not found: %s", s.Target)), warnings
	}

	var resolved []model.Commit
	for _, ref := range s.CommitRefs {
		c, err := s.repo.Commit(ref)
		if err != nil {
			errs = append(errs, fmt.Sprintf("Commit not found: %s", ref))
			continue
		}
		resolved = append(resolved, c)
	}
	if len(errs) > 0 {
		return errs, warnings
	}

	history := make(map[string]bool)
	if commits, err := s.repo.WalkCommits([]string{s.Target}, nil, 1000); err == nil {
		for _, c := range commits {
			history[c.Hash] = true
		}
	}
	for _, c := range resolved {
		if history[c.Hash] {
			warnings = append(warnings, fmt.Sprintf("Commit %s is already in target history", c.ShortHash()))
		}
	}
	for _, c := range resolved {
		if c.IsMerge() {
			warnings = append(warnings, fmt.Sprintf("Commit %s is a merge commit; cherry-pick may behave unexpectedly", c.ShortHash()))
		}
	}
	return errs, warnings
}

// Run validates and simulates. Validation errors surface as a
// ValidationError.
func (s *CherryPickSimulator) Run(ctx context.Context) (*CherryPickSimulation, error) {
	errs, warnings := s.Validate()
	s.warnings = warnings
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	return s.Simulate(ctx)
}

// Simulate performs the cherry-pick prediction.
func (s *CherryPickSimulator) Simulate(ctx context.Context) (*CherryPickSimulation, error) {
	commitsToPick := make([]model.Commit, 0, len(s.CommitRefs))
	for _, ref := range s.CommitRefs {
		c, err := s.repo.Commit(ref)
		if err != nil {
			return nil, err
		}
		commitsToPick = append(commitsToPick, c)
	}
	targetCommit, err := s.repo.Commit(s.Target)
	if err != nil {
		return nil, err
	}

	// Seed the buffer with the target's recent changes for conflict
	// proximity; the horizon is an arbitrary cutoff.
	accumulated, err := s.recentChanges(ctx, targetCommit.Hash)
	if err != nil {
		return nil, err
	}

	var steps []model.Step
	simulatedHead := targetCommit.Hash
	for i, c := range commitsToPick {
		theirChanges, err := s.analyzer.Changes(ctx, c.Hash)
		if err != nil {
			return nil, err
		}

		step := model.Step{
			Number:      i + 1,
			Action:      "pick",
			Commit:      c,
			OriginalSHA: c.Hash,
			NewSHA:      syntheticSHA("cherry-pick", c.Hash, simulatedHead, fmt.Sprint(i+1)),
			Conflicts:   s.detector.Detect(accumulated, theirChanges),
			Description: fmt.Sprintf("Cherry-pick %s: %s", c.ShortHash(), truncate(c.Subject(), 40)),
		}
		steps = append(steps, step)

		simulatedHead = step.NewSHA
		accumulated = append(accumulated, theirChanges...)
	}

	refs := append([]string{targetCommit.Hash}, hashesOf(commitsToPick)...)
	before, err := s.repo.BuildGraph(refs, 30)
	if err != nil {
		return nil, err
	}
	after, err := s.buildAfterGraph(targetCommit, steps)
	if err != nil {
		return nil, err
	}

	return &CherryPickSimulation{
		CommitsToPick: commitsToPick,
		TargetBranch:  branchName(s.repo, s.Target),
		Steps:         steps,
		Before:        before,
		After:         after,
	}, nil
}

func (s *CherryPickSimulator) recentChanges(ctx context.Context, from string) ([]model.FileChange, error) {
	commits, err := s.repo.WalkCommits([]string{from}, nil, recentChangesDepth)
	if err != nil {
		return nil, err
	}
	var changes []model.FileChange
	for _, c := range commits {
		cc, err := s.analyzer.Changes(ctx, c.Hash)
		if err != nil {
			return nil, err
		}
		changes = append(changes, cc...)
	}
	return changes, nil
}

// buildAfterGraph projects the post-pick DAG: the target history with
// the synthesized picks chained off its tip.
func (s *CherryPickSimulator) buildAfterGraph(targetCommit model.Commit, steps []model.Step) (*model.Graph, error) {
	graph := model.NewGraph()

	history, err := s.repo.WalkCommits([]string{targetCommit.Hash}, nil, 15)
	if err != nil {
		return nil, err
	}
	for _, c := range history {
		graph.AddCommit(c)
	}

	previous := targetCommit.Hash
	for _, step := range steps {
		if step.NewSHA == "" {
			continue
		}
		graph.AddCommit(model.Commit{
			Hash:         step.NewSHA,
			Message:      step.Commit.Message,
			Author:       step.Commit.Author,
			AuthorEmail:  step.Commit.AuthorEmail,
			Timestamp:    step.Commit.Timestamp,
			ParentHashes: []string{previous},
			TreeHash:     step.Commit.TreeHash,
		})
		previous = step.NewSHA
	}
	graph.HeadHash = previous
	graph.HeadBranch = s.repo.HeadBranch()

	target := branchName(s.repo, s.Target)
	if target == "HEAD" {
		target = "target"
	}
	graph.BranchTips[target] = graph.HeadHash
	return graph, nil
}

func hashesOf(commits []model.Commit) []string {
	out := make([]string, len(commits))
	for i, c := range commits {
		out[i] = c.Hash
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
