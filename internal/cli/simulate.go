package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/egekaya1/git-sim/internal/model"
	"github.com/egekaya1/git-sim/internal/plugin"
	"github.com/egekaya1/git-sim/internal/sim"
)

// runCommand parses nothing; it dispatches an already-built command
// through the plugin-wrapped dispatcher and emits the result.
func runCommand(opts *options, cobraCmd *cobra.Command, cmd *sim.Command) error {
	d, err := dispatcher(opts)
	if err != nil {
		return err
	}
	result, err := plugin.Dispatch(cobraCmd.Context(), d, cmd)
	if err != nil {
		return err
	}
	return emit(opts, result)
}

func newSimulateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "simulate <command string>",
		Short: "Simulate a git-style command string",
		Example: `  git-sim simulate "rebase main"
  git-sim simulate "reset --hard HEAD~2"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			cmd, err := sim.Parse(strings.Join(args, " "))
			if err != nil {
				return err
			}
			return runCommand(opts, cobraCmd, cmd)
		},
	}
}

func newRebaseCmd(opts *options) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "rebase <onto>",
		Short: "Predict the outcome of a rebase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return runCommand(opts, cobraCmd, &sim.Command{
				Operation: model.OpRebase,
				Onto:      args[0],
				Source:    source,
			})
		},
	}
	cmd.Flags().StringVarP(&source, "source", "s", "HEAD", "branch to rebase")
	return cmd
}

func newMergeCmd(opts *options) *cobra.Command {
	var noFF bool

	cmd := &cobra.Command{
		Use:   "merge <source>",
		Short: "Predict the outcome of a merge into the current branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return runCommand(opts, cobraCmd, &sim.Command{
				Operation: model.OpMerge,
				Source:    args[0],
				Target:    "HEAD",
				NoFF:      noFF,
			})
		},
	}
	cmd.Flags().BoolVar(&noFF, "no-ff", false, "always create a merge commit")
	return cmd
}

func newResetCmd(opts *options) *cobra.Command {
	var hard, soft, mixed bool

	cmd := &cobra.Command{
		Use:   "reset <target>",
		Short: "Predict which commits and files a reset would touch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			mode := model.ResetMixed
			switch {
			case hard:
				mode = model.ResetHard
			case soft:
				mode = model.ResetSoft
			case mixed:
				mode = model.ResetMixed
			}
			return runCommand(opts, cobraCmd, &sim.Command{
				Operation: model.OpReset,
				Target:    args[0],
				Mode:      mode,
			})
		},
	}
	cmd.Flags().BoolVar(&hard, "hard", false, "simulate a hard reset")
	cmd.Flags().BoolVar(&soft, "soft", false, "simulate a soft reset")
	cmd.Flags().BoolVar(&mixed, "mixed", false, "simulate a mixed reset (default)")
	cmd.MarkFlagsMutuallyExclusive("hard", "soft", "mixed")
	return cmd
}

func newCherryPickCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "cherry-pick <commit>...",
		Aliases: []string{"cherrypick"},
		Short:   "Predict the outcome of cherry-picking commits",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return runCommand(opts, cobraCmd, &sim.Command{
				Operation: model.OpCherryPick,
				Target:    "HEAD",
				Commits:   args,
			})
		},
	}
}
