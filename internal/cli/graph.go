package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/egekaya1/git-sim/internal/render"
)

func newGraphCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "graph [ref...]",
		Short: "Show the commit graph reachable from the given refs",
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			cfg, r, err := setup(opts)
			if err != nil {
				return err
			}

			refs := args
			if len(refs) == 0 {
				refs = []string{"HEAD"}
			}
			graph, err := r.BuildGraph(refs, cfg.MaxGraphCommits)
			if err != nil {
				return err
			}

			textOpts := render.DefaultTextOptions()
			textOpts.Color = !opts.noColor
			textOpts.GraphLimit = cfg.MaxGraphCommits
			render.FormatGraph(os.Stdout, graph, textOpts)
			return nil
		},
	}
}
