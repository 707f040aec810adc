package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/egekaya1/git-sim/internal/conflict"
	"github.com/egekaya1/git-sim/internal/diff"
	"github.com/egekaya1/git-sim/internal/model"
	"github.com/egekaya1/git-sim/internal/repo"
)

// RebaseSimulation is the operation record produced by a rebase
// simulation.
type RebaseSimulation struct {
	SourceBranch string
	TargetBranch string
	OntoSHA      string
	MergeBaseSHA string
	Steps        []model.Step
	Before       *model.Graph
	After        *model.Graph
}

// Conflicts returns every predicted conflict across all steps.
func (s *RebaseSimulation) Conflicts() []model.Conflict {
	var all []model.Conflict
	for _, step := range s.Steps {
		all = append(all, step.Conflicts...)
	}
	return all
}

// SkippedCommits returns the commits whose patch-id already exists on
// the onto side.
func (s *RebaseSimulation) SkippedCommits() []model.Commit {
	var skipped []model.Commit
	for _, step := range s.Steps {
		if step.Skipped {
			skipped = append(skipped, step.Commit)
		}
	}
	return skipped
}

// ToResult converts the record to the uniform result shape.
func (s *RebaseSimulation) ToResult() *model.Result {
	conflicts := s.Conflicts()

	affected := make([]model.Commit, len(s.Steps))
	for i, step := range s.Steps {
		affected[i] = step.Commit
	}

	newHead := ""
	if len(s.Steps) > 0 {
		newHead = s.Steps[len(s.Steps)-1].NewSHA
	}

	return &model.Result{
		Operation:       model.OpRebase,
		Success:         !model.HasCertain(conflicts),
		Before:          s.Before,
		After:           s.After,
		Conflicts:       conflicts,
		CommitsAffected: affected,
		CommitsDropped:  s.SkippedCommits(),
		SourceRef:       s.SourceBranch,
		TargetRef:       s.TargetBranch,
		MergeBaseSHA:    s.MergeBaseSHA,
		NewHeadSHA:      newHead,
		Steps:           s.Steps,
	}
}

// RebaseSimulator predicts the outcome of rebasing source onto another
// ref: which commits replay, which are skipped as duplicate patches, and
// where conflicts will appear.
type RebaseSimulator struct {
	Source string
	Onto   string

	repo     *repo.Repository
	analyzer *diff.Analyzer
	detector *conflict.Detector
	warnings []string
}

// NewRebaseSimulator builds a rebase simulator. An empty source defaults
// to HEAD.
func NewRebaseSimulator(r *repo.Repository, source, onto string) *RebaseSimulator {
	if source == "" {
		source = "HEAD"
	}
	return &RebaseSimulator{
		Source:   source,
		Onto:     onto,
		repo:     r,
		analyzer: diff.NewAnalyzer(r),
		detector: conflict.NewDetector(),
	}
}

// Warnings returns the validation warnings gathered by the last Run.
func (s *RebaseSimulator) Warnings() []string {
	return s.warnings
}

// Validate checks the rebase preconditions. Errors abort the simulation;
// warnings surface on the result.
func (s *RebaseSimulator) Validate() (errs, warnings []string) {
	sourceCommit, err := s.repo.Commit(s.Source)
	if err != nil {
		return append(errs, fmt.Sprintf("Source ref not found: %s", s.Source)), warnings
	}
	ontoCommit, err := s.repo.Commit(s.Onto)
	if err != nil {
		return append(errs, fmt.Sprintf("Target ref not found: %s", s.Onto)), warnings
	}

	if sourceCommit.Hash == ontoCommit.Hash {
		warnings = append(warnings, "Source and target are the same commit; nothing to rebase")
	}

	base, ok, err := s.repo.MergeBase(s.Source, s.Onto)
	if err != nil || !ok {
		return append(errs, fmt.Sprintf("No common ancestor found between '%s' and '%s'", s.Source, s.Onto)), warnings
	}
	if base == ontoCommit.Hash {
		warnings = append(warnings, fmt.Sprintf("'%s' is already based on '%s'; rebase would have no effect", s.Source, s.Onto))
	}
	if base == sourceCommit.Hash {
		warnings = append(warnings, fmt.Sprintf("'%s' is ahead of '%s'; consider 'git reset' instead of rebase", s.Onto, s.Source))
	}
	return errs, warnings
}

// Run validates and simulates. Validation errors surface as a
// ValidationError.
func (s *RebaseSimulator) Run(ctx context.Context) (*RebaseSimulation, error) {
	errs, warnings := s.Validate()
	s.warnings = warnings
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	return s.Simulate(ctx)
}

// Simulate performs the rebase prediction.
func (s *RebaseSimulator) Simulate(ctx context.Context) (*RebaseSimulation, error) {
	sourceCommit, err := s.repo.Commit(s.Source)
	if err != nil {
		return nil, err
	}
	ontoCommit, err := s.repo.Commit(s.Onto)
	if err != nil {
		return nil, err
	}
	base, ok, err := s.repo.MergeBase(s.Source, s.Onto)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("no merge base found")
	}

	replay, err := s.commitsToReplay(base, sourceCommit.Hash)
	if err != nil {
		return nil, err
	}
	ontoPatchIDs, err := s.analyzer.CollectPatchIDs(ctx, []string{ontoCommit.Hash}, []string{base})
	if err != nil {
		return nil, err
	}
	ontoChanges, err := collectChanges(ctx, s.repo, s.analyzer, ontoCommit.Hash, base)
	if err != nil {
		return nil, err
	}

	steps, err := s.simulateSteps(ctx, replay, ontoPatchIDs, ontoChanges, ontoCommit.Hash)
	if err != nil {
		return nil, err
	}

	before, err := s.repo.BuildGraph([]string{sourceCommit.Hash, ontoCommit.Hash}, 30)
	if err != nil {
		return nil, err
	}
	after, err := s.buildAfterGraph(steps, ontoCommit)
	if err != nil {
		return nil, err
	}

	return &RebaseSimulation{
		SourceBranch: branchName(s.repo, s.Source),
		TargetBranch: s.Onto,
		OntoSHA:      ontoCommit.Hash,
		MergeBaseSHA: base,
		Steps:        steps,
		Before:       before,
		After:        after,
	}, nil
}

// commitsToReplay walks base (exclusive) to source (inclusive) and
// reverses to oldest-first replay order.
func (s *RebaseSimulator) commitsToReplay(base, source string) ([]model.Commit, error) {
	commits, err := s.repo.WalkCommits([]string{source}, []string{base}, 0)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(commits)-1; i < j; i, j = i+1, j-1 {
		commits[i], commits[j] = commits[j], commits[i]
	}
	return commits, nil
}

// simulateSteps replays each commit against the accumulated target-side
// changes. Duplicate patch-ids are skipped: no synthesized hash, no
// conflict check, and the accumulated buffer is left untouched.
func (s *RebaseSimulator) simulateSteps(
	ctx context.Context,
	commits []model.Commit,
	ontoPatchIDs map[string]bool,
	ontoChanges []model.FileChange,
	ontoSHA string,
) ([]model.Step, error) {
	accumulated := append([]model.FileChange(nil), ontoChanges...)

	var steps []model.Step
	for _, c := range commits {
		patchID, err := s.analyzer.PatchID(ctx, c.Hash)
		if err != nil {
			return nil, err
		}
		skip := ontoPatchIDs[patchID]

		theirChanges, err := s.analyzer.Changes(ctx, c.Hash)
		if err != nil {
			return nil, err
		}

		step := model.Step{
			Number:      len(steps) + 1,
			Action:      "pick",
			Commit:      c,
			OriginalSHA: c.Hash,
			Skipped:     skip,
		}
		if skip {
			step.Action = "skip"
		} else {
			step.Conflicts = s.detector.Detect(accumulated, theirChanges)
			step.NewSHA = syntheticSHA(c.Hash, ontoSHA, fmt.Sprint(len(steps)))
			accumulated = append(accumulated, theirChanges...)
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// buildAfterGraph projects the post-rebase DAG: the onto history plus a
// synthetic chain of the replayed commits, first-parent linked starting
// at the onto tip.
func (s *RebaseSimulator) buildAfterGraph(steps []model.Step, ontoCommit model.Commit) (*model.Graph, error) {
	graph := model.NewGraph()
	graph.HeadBranch = s.repo.HeadBranch()

	ontoHistory, err := s.repo.WalkCommits([]string{ontoCommit.Hash}, nil, 15)
	if err != nil {
		return nil, err
	}
	for _, c := range ontoHistory {
		graph.AddCommit(c)
	}

	previous := ontoCommit.Hash
	for _, step := range steps {
		if step.Skipped || step.NewSHA == "" {
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

	source := branchName(s.repo, s.Source)
	if source == "HEAD" {
		source = "source"
	}
	graph.BranchTips[source] = graph.HeadHash
	graph.BranchTips[s.Onto] = ontoCommit.Hash
	return graph, nil
}
