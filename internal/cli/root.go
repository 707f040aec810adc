// Package cli wires the cobra command tree for git-sim.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/egekaya1/git-sim/internal/config"
	"github.com/egekaya1/git-sim/internal/model"
	"github.com/egekaya1/git-sim/internal/render"
	"github.com/egekaya1/git-sim/internal/repo"
	"github.com/egekaya1/git-sim/internal/sim"
)

var version = "dev"

// SetVersion records the build-time version string.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

type options struct {
	repoPath string
	jsonOut  bool
	noColor  bool
	verbose  bool
}

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "git-sim",
		Short:         "Simulate destructive git operations before running them",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `git-sim predicts what rebase, merge, reset and cherry-pick will do
to your repository - replayed commits, skipped duplicates, textual
conflicts - without touching refs, the index or the working tree.

Examples:
  # Preview rebasing the current branch onto main
  git-sim rebase main

  # Preview a merge with conflict prediction
  git-sim merge feature

  # Preview what a hard reset would destroy
  git-sim reset --hard HEAD~3

  # Run any supported command string
  git-sim simulate "cherry-pick abc1234 def5678"`,
	}

	cmd.PersistentFlags().StringVarP(&opts.repoPath, "repo", "r", ".", "path to the repository")
	cmd.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "emit the result as JSON")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable ANSI colors")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newSimulateCmd(opts),
		newRebaseCmd(opts),
		newMergeCmd(opts),
		newResetCmd(opts),
		newCherryPickCmd(opts),
		newExplainCmd(opts),
		newGraphCmd(opts),
		newSnapshotCmd(opts),
	)
	return cmd
}

// setup loads config, applies the log level and opens the repository
// facade.
func setup(opts *options) (*config.Config, *repo.Repository, error) {
	cfg, err := config.Load(opts.repoPath)
	if err != nil {
		return nil, nil, err
	}

	level := cfg.LogLevel
	if opts.verbose {
		level = "debug"
	}
	if parsed, err := logrus.ParseLevel(level); err == nil {
		logrus.SetLevel(parsed)
	}

	r, err := repo.Open(opts.repoPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, r, nil
}

// dispatcher opens the repository and returns a ready dispatcher.
func dispatcher(opts *options) (*sim.Dispatcher, error) {
	cfg, r, err := setup(opts)
	if err != nil {
		return nil, err
	}
	d := sim.NewDispatcher(r)
	d.SetAdjacency(cfg.AdjacencyThreshold)
	return d, nil
}

// emit writes a uniform result as text or JSON.
func emit(opts *options, result *model.Result) error {
	if opts.jsonOut {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	textOpts := render.DefaultTextOptions()
	textOpts.Color = !opts.noColor
	return render.FormatResult(os.Stdout, result, textOpts)
}
