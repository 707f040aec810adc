// Package plugin provides a small hook registry around the dispatcher.
// Hooks observe or veto simulations; they wrap the dispatcher and never
// reach into the simulators.
package plugin

import (
	"context"
	"sort"
	"sync"

	"github.com/egekaya1/git-sim/internal/model"
	"github.com/egekaya1/git-sim/internal/sim"
)

// Hook receives a simulation before it runs and its result afterwards.
// A non-nil error from BeforeSimulate vetoes the run.
type Hook interface {
	Name() string
	BeforeSimulate(cmd *sim.Command) error
	AfterSimulate(cmd *sim.Command, result *model.Result)
}

var (
	mu    sync.Mutex
	hooks = make(map[string]Hook)
)

// Register adds a hook under its name, replacing any previous hook with
// the same name.
func Register(h Hook) {
	mu.Lock()
	defer mu.Unlock()
	hooks[h.Name()] = h
}

// Unregister removes a hook by name.
func Unregister(name string) {
	mu.Lock()
	defer mu.Unlock()
	delete(hooks, name)
}

// Names lists the registered hooks in sorted order.
func Names() []string {
	mu.Lock()
	defer mu.Unlock()
	out := make([]string, 0, len(hooks))
	for name := range hooks {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func snapshot() []Hook {
	mu.Lock()
	defer mu.Unlock()
	names := make([]string, 0, len(hooks))
	for name := range hooks {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]Hook, 0, len(names))
	for _, name := range names {
		out = append(out, hooks[name])
	}
	return out
}

// Dispatch runs the registered before-hooks, the simulation, then the
// after-hooks. Hooks run in name order.
func Dispatch(ctx context.Context, d *sim.Dispatcher, cmd *sim.Command) (*model.Result, error) {
	active := snapshot()
	for _, h := range active {
		if err := h.BeforeSimulate(cmd); err != nil {
			return nil, err
		}
	}
	result, err := d.Dispatch(ctx, cmd)
	if err != nil {
		return nil, err
	}
	for _, h := range active {
		h.AfterSimulate(cmd, result)
	}
	return result, nil
}
