package sim_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egekaya1/git-sim/internal/gittest"
	"github.com/egekaya1/git-sim/internal/model"
	"github.com/egekaya1/git-sim/internal/sim"
)

func TestCherryPickCleanCommit(t *testing.T) {
	b := gittest.BranchedRepo(t)
	r := b.Facade()

	featureTip, err := r.Commit("feature")
	require.NoError(t, err)

	// Pick the disjoint "Add feature file" commit onto master.
	simulator := sim.NewCherryPickSimulator(r, []string{featureTip.Hash}, "HEAD")
	result, err := simulator.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Steps, 1)
	step := result.Steps[0]
	assert.Equal(t, "pick", step.Action)
	assert.NotEmpty(t, step.NewSHA)
	assert.NotEqual(t, featureTip.Hash, step.NewSHA)
	assert.Contains(t, step.Description, "Cherry-pick")
	assert.Empty(t, step.Conflicts)

	head, err := r.HeadHash()
	require.NoError(t, err)
	picked, ok := result.After.Commits[step.NewSHA]
	require.True(t, ok)
	assert.Equal(t, []string{head}, picked.ParentHashes)
	assert.Equal(t, step.NewSHA, result.After.HeadHash)
}

func TestCherryPickSequenceChains(t *testing.T) {
	b := gittest.BranchedRepo(t)
	r := b.Facade()

	newer, err := r.Commit("feature")
	require.NoError(t, err)
	older, err := r.Commit(newer.ParentHashes[0])
	require.NoError(t, err)

	simulator := sim.NewCherryPickSimulator(r, []string{older.Hash, newer.Hash}, "HEAD")
	result, err := simulator.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Steps, 2)
	first, second := result.Steps[0], result.Steps[1]
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, 2, second.Number)

	chained, ok := result.After.Commits[second.NewSHA]
	require.True(t, ok)
	assert.Equal(t, []string{first.NewSHA}, chained.ParentHashes)

	uniform := result.ToResult()
	assert.Equal(t, second.NewSHA, uniform.NewHeadSHA)
	require.Len(t, uniform.CommitsCreated, 2)
	require.Len(t, uniform.CommitsAffected, 2)
}

func TestCherryPickConflictWithTargetHistory(t *testing.T) {
	b := gittest.BasicRepo(t)
	r := b.Facade()

	b.Branch("feature")
	b.WriteFile("file_a.txt", "Feature version\nLine 2\nLine 3\n")
	pick := b.Commit("Feature edit")
	b.Checkout("master")
	b.WriteFile("file_a.txt", "Main version\nLine 2\nLine 3\n")
	b.Commit("Main edit")

	simulator := sim.NewCherryPickSimulator(r, []string{pick}, "HEAD")
	result, err := simulator.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Steps, 1)
	conflicts := result.Steps[0].Conflicts
	require.NotEmpty(t, conflicts)
	assert.Equal(t, "file_a.txt", conflicts[0].Path)
	assert.Equal(t, model.SeverityCertain, conflicts[0].Severity)

	uniform := result.ToResult()
	assert.False(t, uniform.Success)
}

func TestCherryPickValidation(t *testing.T) {
	b := gittest.BranchedRepo(t)
	r := b.Facade()

	errs, _ := sim.NewCherryPickSimulator(r, []string{"nowhere"}, "HEAD").Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "Commit not found")

	errs, _ = sim.NewCherryPickSimulator(r, []string{"feature"}, "no-such-target").Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "Target ref not found")

	// Picking a commit already reachable from the target warns.
	ancestor, err := r.Commit("HEAD~1")
	require.NoError(t, err)
	errs, warnings := sim.NewCherryPickSimulator(r, []string{ancestor.Hash}, "HEAD").Validate()
	assert.Empty(t, errs)
	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[0], "already in target history")
}
