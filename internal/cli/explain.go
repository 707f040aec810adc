package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/egekaya1/git-sim/internal/explain"
	"github.com/egekaya1/git-sim/internal/model"
)

func newExplainCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:       "explain <operation>",
		Short:     "Explain what a git operation does and how to stay safe",
		ValidArgs: []string{"rebase", "merge", "reset", "cherry-pick"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			var op model.Operation
			switch args[0] {
			case "rebase":
				op = model.OpRebase
			case "merge":
				op = model.OpMerge
			case "reset":
				op = model.OpReset
			case "cherry-pick":
				op = model.OpCherryPick
			}

			e, ok := explain.Lookup(op)
			if !ok {
				return fmt.Errorf("no explanation for %s", args[0])
			}

			fmt.Printf("%s\n\n%s\n", op, e.Summary)
			printSection("How it works", e.HowItWorks, true)
			printSection("What changes", e.WhatChanges, false)
			printSection("Risks", e.Risks, false)
			printSection("Safety tips", e.SafetyTips, false)
			printSection("Alternatives", e.Alternatives, false)
			printSection("See also", e.SeeAlso, false)
			return nil
		},
	}
}

func printSection(title string, lines []string, numbered bool) {
	if len(lines) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", title)
	for i, line := range lines {
		if numbered {
			fmt.Printf("  %d. %s\n", i+1, line)
		} else {
			fmt.Printf("  - %s\n", line)
		}
	}
}
