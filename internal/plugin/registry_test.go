package plugin_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egekaya1/git-sim/internal/gittest"
	"github.com/egekaya1/git-sim/internal/model"
	"github.com/egekaya1/git-sim/internal/plugin"
	"github.com/egekaya1/git-sim/internal/sim"
)

type recordingHook struct {
	name      string
	vetoErr   error
	beforeRun int
	afterRun  int
	sawResult *model.Result
}

func (h *recordingHook) Name() string { return h.name }

func (h *recordingHook) BeforeSimulate(cmd *sim.Command) error {
	h.beforeRun++
	return h.vetoErr
}

func (h *recordingHook) AfterSimulate(cmd *sim.Command, result *model.Result) {
	h.afterRun++
	h.sawResult = result
}

func TestHooksObserveSimulation(t *testing.T) {
	hook := &recordingHook{name: "observer"}
	plugin.Register(hook)
	defer plugin.Unregister("observer")

	b := gittest.BranchedRepo(t)
	d := sim.NewDispatcher(b.Facade())

	cmd, err := sim.Parse("merge feature")
	require.NoError(t, err)
	result, err := plugin.Dispatch(context.Background(), d, cmd)
	require.NoError(t, err)

	assert.Equal(t, 1, hook.beforeRun)
	assert.Equal(t, 1, hook.afterRun)
	assert.Same(t, result, hook.sawResult)
}

func TestHookVetoStopsSimulation(t *testing.T) {
	veto := errors.New("simulation blocked by policy")
	plugin.Register(&recordingHook{name: "veto", vetoErr: veto})
	defer plugin.Unregister("veto")

	after := &recordingHook{name: "witness"}
	plugin.Register(after)
	defer plugin.Unregister("witness")

	b := gittest.BranchedRepo(t)
	d := sim.NewDispatcher(b.Facade())

	cmd, err := sim.Parse("merge feature")
	require.NoError(t, err)
	_, err = plugin.Dispatch(context.Background(), d, cmd)
	require.ErrorIs(t, err, veto)

	// The veto fires before any simulation output reaches later hooks.
	assert.Equal(t, 0, after.afterRun)
}

func TestRegistryNames(t *testing.T) {
	plugin.Register(&recordingHook{name: "zeta"})
	plugin.Register(&recordingHook{name: "alpha"})
	defer plugin.Unregister("zeta")
	defer plugin.Unregister("alpha")

	names := plugin.Names()
	assert.Equal(t, []string{"alpha", "zeta"}, names)
}
