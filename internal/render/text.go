// Package render formats uniform simulation results for the terminal.
package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/egekaya1/git-sim/internal/conflict"
	"github.com/egekaya1/git-sim/internal/model"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorDim    = "\033[2m"
)

// TextOptions configures text output formatting.
type TextOptions struct {
	// Color enables ANSI color codes.
	Color bool

	// GraphLimit caps the commits listed per graph. Zero means all.
	GraphLimit int
}

// DefaultTextOptions returns the default formatting options.
func DefaultTextOptions() TextOptions {
	return TextOptions{Color: true, GraphLimit: 15}
}

// FormatResult writes a human-readable rendering of the result.
func FormatResult(w io.Writer, result *model.Result, opts TextOptions) error {
	header := fmt.Sprintf("Simulation: %s", result.Operation)
	if opts.Color {
		header = colorCyan + header + colorReset
	}
	fmt.Fprintln(w, header)

	status := "would succeed"
	if !result.Success {
		status = "would hit conflicts"
	}
	fmt.Fprintf(w, "Outcome: %s", status)
	if result.ConflictCount() > 0 {
		fmt.Fprintf(w, " (%d predicted conflict(s))", result.ConflictCount())
	}
	fmt.Fprintln(w)

	if result.MergeBaseSHA != "" {
		fmt.Fprintf(w, "Merge base: %s\n", short(result.MergeBaseSHA))
	}
	if result.NewHeadSHA != "" {
		fmt.Fprintf(w, "New head:   %s\n", short(result.NewHeadSHA))
	}

	if len(result.Steps) > 0 {
		fmt.Fprintln(w, "\nSteps:")
		for _, step := range result.Steps {
			formatStep(w, step, opts)
		}
	}

	if len(result.Conflicts) > 0 {
		fmt.Fprintln(w, "\nPredicted conflicts:")
		for _, c := range result.Conflicts {
			formatConflict(w, c, opts)
		}
	}

	if result.Before != nil {
		fmt.Fprintln(w, "\nBefore:")
		FormatGraph(w, result.Before, opts)
	}
	if result.After != nil {
		fmt.Fprintln(w, "\nAfter:")
		FormatGraph(w, result.After, opts)
	}

	for _, warning := range result.Warnings {
		line := "warning: " + warning
		if opts.Color {
			line = colorYellow + line + colorReset
		}
		fmt.Fprintln(w, line)
	}

	if result.Safety != nil {
		formatSafety(w, result.Safety, opts)
	}
	return nil
}

func formatStep(w io.Writer, step model.Step, opts TextOptions) {
	mark := step.Action
	if step.Skipped {
		mark = "skip"
	}
	line := fmt.Sprintf("  %2d. %-4s %s %s", step.Number, mark, short(step.OriginalSHA), step.Commit.Subject())
	if step.Skipped {
		line += " (duplicate patch, will be skipped)"
		if opts.Color {
			line = colorDim + line + colorReset
		}
	} else if step.HasConflicts() {
		line += fmt.Sprintf(" [%d conflict(s)]", len(step.Conflicts))
		if opts.Color {
			line = colorRed + line + colorReset
		}
	}
	fmt.Fprintln(w, line)
}

func formatConflict(w io.Writer, c model.Conflict, opts TextOptions) {
	severity := strings.ToUpper(c.Severity.String())
	if opts.Color {
		switch c.Severity {
		case model.SeverityCertain:
			severity = colorRed + severity + colorReset
		case model.SeverityLikely:
			severity = colorYellow + severity + colorReset
		}
	}
	fmt.Fprintf(w, "  %s  %s\n", severity, c.Path)
	fmt.Fprintf(w, "          %s\n", c.Description)
	fmt.Fprintf(w, "          Difficulty: %s\n", conflict.EstimateDifficulty(c))
}

// FormatGraph lists commits newest-first with branch-tip markers. The
// projection already carries a deterministic order via Ancestors.
func FormatGraph(w io.Writer, g *model.Graph, opts TextOptions) {
	tipsByHash := make(map[string][]string)
	for name, hash := range g.BranchTips {
		tipsByHash[hash] = append(tipsByHash[hash], name)
	}
	for _, names := range tipsByHash {
		sort.Strings(names)
	}

	limit := opts.GraphLimit
	if limit <= 0 {
		limit = len(g.Commits)
	}
	listed := 0
	for _, hash := range g.Ancestors(g.HeadHash, limit) {
		c := g.Commits[hash]
		marker := "*"
		if hash == g.HeadHash {
			marker = "@"
		}
		line := fmt.Sprintf("  %s %s %s", marker, short(hash), c.Subject())
		if names := tipsByHash[hash]; len(names) > 0 {
			decoration := " (" + strings.Join(names, ", ") + ")"
			if opts.Color {
				decoration = colorGreen + decoration + colorReset
			}
			line += decoration
		}
		fmt.Fprintln(w, line)
		listed++
	}
	if listed < len(g.Commits) {
		fmt.Fprintf(w, "  ... %d more commit(s)\n", len(g.Commits)-listed)
	}
}

func formatSafety(w io.Writer, s *model.Safety, opts TextOptions) {
	level := strings.ToUpper(s.Level.String())
	if opts.Color && s.IsDangerous() {
		level = colorRed + level + colorReset
	}
	fmt.Fprintf(w, "\nDanger level: %s\n", level)
	for _, reason := range s.Reasons {
		fmt.Fprintf(w, "  - %s\n", reason)
	}
	for _, suggestion := range s.Suggestions {
		fmt.Fprintf(w, "  tip: %s\n", suggestion)
	}
	if s.RequiresForcePush {
		fmt.Fprintln(w, "  force-push required after this operation")
	}
	if !s.Reversible {
		fmt.Fprintln(w, "  NOT reversible")
	}
}

func short(hash string) string {
	if len(hash) < 7 {
		return hash
	}
	return hash[:7]
}
