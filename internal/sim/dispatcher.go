package sim

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/egekaya1/git-sim/internal/model"
	"github.com/egekaya1/git-sim/internal/repo"
)

// ErrInvalidCommand wraps every command-string parse failure.
var ErrInvalidCommand = errors.New("invalid command")

// Command is a parsed simulation request. Only the fields of the parsed
// operation are meaningful.
type Command struct {
	Operation model.Operation

	Onto   string // rebase
	Source string // rebase source / merge source
	Target string // merge / reset / cherry-pick target
	NoFF   bool   // merge

	Mode    model.ResetMode // reset
	Commits []string        // cherry-pick
}

// Dispatcher routes commands to the four simulators and decorates the
// uniform result with safety annotations. It holds no state between
// calls beyond the repository facade.
type Dispatcher struct {
	repo      *repo.Repository
	log       *logrus.Logger
	adjacency int
}

// NewDispatcher builds a dispatcher over an open repository facade.
func NewDispatcher(r *repo.Repository) *Dispatcher {
	return &Dispatcher{repo: r, log: logrus.StandardLogger()}
}

// SetLogger overrides the logger used for dispatch tracing.
func (d *Dispatcher) SetLogger(log *logrus.Logger) {
	if log != nil {
		d.log = log
	}
}

// SetAdjacency overrides the hunk-overlap threshold used by the conflict
// detector; zero keeps the default.
func (d *Dispatcher) SetAdjacency(n int) {
	d.adjacency = n
}

// Run parses a git-style command string and dispatches it.
func (d *Dispatcher) Run(ctx context.Context, input string) (*model.Result, error) {
	cmd, err := Parse(input)
	if err != nil {
		return nil, err
	}
	return d.Dispatch(ctx, cmd)
}

// Dispatch routes a parsed command to its simulator. The simulator set
// is closed; there is no dynamic registration.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd *Command) (*model.Result, error) {
	start := time.Now()
	d.log.WithFields(logrus.Fields{
		"operation": cmd.Operation.String(),
	}).Debug("dispatching simulation")

	var (
		result *model.Result
		err    error
	)
	switch cmd.Operation {
	case model.OpRebase:
		result, err = d.rebase(ctx, cmd)
	case model.OpMerge:
		result, err = d.merge(ctx, cmd)
	case model.OpReset:
		result, err = d.reset(ctx, cmd)
	case model.OpCherryPick:
		result, err = d.cherryPick(ctx, cmd)
	default:
		err = fmt.Errorf("%w: unknown operation", ErrInvalidCommand)
	}

	d.log.WithFields(logrus.Fields{
		"operation": cmd.Operation.String(),
		"duration":  time.Since(start),
		"error":     err,
	}).Debug("simulation finished")
	return result, err
}

func (d *Dispatcher) rebase(ctx context.Context, cmd *Command) (*model.Result, error) {
	simulator := NewRebaseSimulator(d.repo, cmd.Source, cmd.Onto)
	simulator.detector.Adjacency = d.adjacency
	record, err := simulator.Run(ctx)
	if err != nil {
		return nil, err
	}
	result := record.ToResult()
	result.Warnings = append(result.Warnings, simulator.Warnings()...)

	level := model.DangerMedium
	if result.HasConflicts() {
		level = model.DangerHigh
	}
	result.Safety = &model.Safety{
		Level:   level,
		Reasons: []string{"History rewrite operation", "Commits will get new SHAs"},
		Suggestions: []string{
			"Ensure you have pushed your current branch before rebasing",
			"Use 'git reflog' to recover if needed",
		},
		Reversible:        true,
		RequiresForcePush: true,
	}
	return result, nil
}

func (d *Dispatcher) merge(ctx context.Context, cmd *Command) (*model.Result, error) {
	simulator := NewMergeSimulator(d.repo, cmd.Source, cmd.Target, cmd.NoFF)
	simulator.detector.Adjacency = d.adjacency
	record, err := simulator.Run(ctx)
	if err != nil {
		return nil, err
	}
	result := record.ToResult()
	result.Warnings = append(result.Warnings, simulator.Warnings()...)

	level := model.DangerLow
	if result.HasConflicts() {
		level = model.DangerMedium
	}
	var reasons []string
	if !record.IsFastForward {
		reasons = append(reasons, "Creates new merge commit")
	}
	result.Safety = &model.Safety{
		Level:      level,
		Reasons:    reasons,
		Reversible: true,
	}
	return result, nil
}

func (d *Dispatcher) reset(ctx context.Context, cmd *Command) (*model.Result, error) {
	simulator := NewResetSimulator(d.repo, cmd.Target, cmd.Mode)
	record, err := simulator.Run(ctx)
	if err != nil {
		return nil, err
	}
	// The reset record derives its own safety analysis from the mode.
	result := record.ToResult()
	result.Warnings = append(result.Warnings, simulator.Warnings()...)
	return result, nil
}

func (d *Dispatcher) cherryPick(ctx context.Context, cmd *Command) (*model.Result, error) {
	simulator := NewCherryPickSimulator(d.repo, cmd.Commits, cmd.Target)
	simulator.detector.Adjacency = d.adjacency
	record, err := simulator.Run(ctx)
	if err != nil {
		return nil, err
	}
	result := record.ToResult()
	result.Warnings = append(result.Warnings, simulator.Warnings()...)

	level := model.DangerLow
	if result.HasConflicts() {
		level = model.DangerMedium
	}
	result.Safety = &model.Safety{
		Level:      level,
		Reasons:    []string{"Creates new commits with different SHAs"},
		Reversible: true,
	}
	return result, nil
}

// Parse turns a git-style command string into a Command. Parsing is
// positional with a small flag set per operation; unrecognized flags are
// silently skipped for forward compatibility.
func Parse(input string) (*Command, error) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: empty command string", ErrInvalidCommand)
	}

	name := strings.ToLower(parts[0])
	args := parts[1:]

	switch name {
	case "rebase":
		return parseRebase(args)
	case "merge":
		return parseMerge(args)
	case "reset":
		return parseReset(args)
	case "cherry-pick", "cherrypick":
		return parseCherryPick(args)
	default:
		return nil, fmt.Errorf("%w: unknown command: %s", ErrInvalidCommand, name)
	}
}

func parseRebase(args []string) (*Command, error) {
	cmd := &Command{Operation: model.OpRebase, Source: "HEAD"}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case (arg == "--onto" || arg == "-o") && i+1 < len(args):
			cmd.Onto = args[i+1]
			i++
		case (arg == "--source" || arg == "-s") && i+1 < len(args):
			cmd.Source = args[i+1]
			i++
		case !strings.HasPrefix(arg, "-"):
			if cmd.Onto == "" {
				cmd.Onto = arg
			}
		}
	}
	if cmd.Onto == "" {
		return nil, fmt.Errorf("%w: rebase requires a target branch", ErrInvalidCommand)
	}
	return cmd, nil
}

func parseMerge(args []string) (*Command, error) {
	cmd := &Command{Operation: model.OpMerge, Target: "HEAD"}

	for _, arg := range args {
		switch {
		case arg == "--no-ff":
			cmd.NoFF = true
		case !strings.HasPrefix(arg, "-"):
			cmd.Source = arg
		}
	}
	if cmd.Source == "" {
		return nil, fmt.Errorf("%w: merge requires a source branch", ErrInvalidCommand)
	}
	return cmd, nil
}

func parseReset(args []string) (*Command, error) {
	cmd := &Command{Operation: model.OpReset, Mode: model.ResetMixed}

	for _, arg := range args {
		switch {
		case arg == "--hard":
			cmd.Mode = model.ResetHard
		case arg == "--soft":
			cmd.Mode = model.ResetSoft
		case arg == "--mixed":
			cmd.Mode = model.ResetMixed
		case !strings.HasPrefix(arg, "-"):
			cmd.Target = arg
		}
	}
	if cmd.Target == "" {
		return nil, fmt.Errorf("%w: reset requires a target commit", ErrInvalidCommand)
	}
	return cmd, nil
}

func parseCherryPick(args []string) (*Command, error) {
	cmd := &Command{Operation: model.OpCherryPick, Target: "HEAD"}

	for _, arg := range args {
		if !strings.HasPrefix(arg, "-") {
			cmd.Commits = append(cmd.Commits, arg)
		}
	}
	if len(cmd.Commits) == 0 {
		return nil, fmt.Errorf("%w: cherry-pick requires at least one commit", ErrInvalidCommand)
	}
	return cmd, nil
}
