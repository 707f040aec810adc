// Package diff parses the unified-diff text produced by the tree differ
// into structured hunks, and computes normalized patch-ids for duplicate
// commit detection.
package diff

import (
	"context"
	"fmt"
	"strings"

	godiff "github.com/sourcegraph/go-diff/diff"

	"github.com/egekaya1/git-sim/internal/model"
)

// Source is the narrow capability the analyzer needs from the repository
// facade: commits in a range, a commit's patch text and its raw change
// records.
type Source interface {
	WalkCommits(include, exclude []string, max int) ([]model.Commit, error)
	CommitPatch(ctx context.Context, ref string) (string, error)
	CommitChanges(ctx context.Context, ref string) ([]model.FileChange, error)
	Commit(ref string) (model.Commit, error)
}

// Analyzer turns raw diffs into analyzable records.
type Analyzer struct {
	src Source
}

// NewAnalyzer returns an analyzer backed by the given source.
func NewAnalyzer(src Source) *Analyzer {
	return &Analyzer{src: src}
}

// Changes returns the file changes a commit introduces over its first
// parent, with hunks and line tallies attached from the parsed patch
// text. Binary modifications keep an empty hunk list.
func (a *Analyzer) Changes(ctx context.Context, ref string) ([]model.FileChange, error) {
	changes, err := a.src.CommitChanges(ctx, ref)
	if err != nil {
		return nil, err
	}
	text, err := a.src.CommitPatch(ctx, ref)
	if err != nil {
		return nil, err
	}
	parsed, err := ParsePatch(text)
	if err != nil {
		return nil, err
	}

	byPath := make(map[string]model.FileChange, len(parsed))
	for _, fc := range parsed {
		byPath[fc.Path] = fc
	}
	for i := range changes {
		if p, ok := byPath[changes[i].Path]; ok {
			changes[i].Hunks = p.Hunks
			changes[i].Additions = p.Additions
			changes[i].Deletions = p.Deletions
		}
	}
	return changes, nil
}

// ParsePatch parses multi-file unified-diff text into file-change
// records with hunks. Omitted hunk counts default to 1; "no newline"
// marker lines are kept but never tallied.
func ParsePatch(text string) ([]model.FileChange, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	files, err := godiff.ParseMultiFileDiff([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("failed to parse diff: %w", err)
	}

	out := make([]model.FileChange, 0, len(files))
	for _, f := range files {
		out = append(out, convertFile(f))
	}
	return out, nil
}

func convertFile(f *godiff.FileDiff) model.FileChange {
	oldName := stripPathPrefix(f.OrigName)
	newName := stripPathPrefix(f.NewName)
	isNew := f.OrigName == "/dev/null"
	isDeleted := f.NewName == "/dev/null"

	fc := model.FileChange{Path: newName, Type: model.ChangeModify}
	switch {
	case isNew:
		fc.Type = model.ChangeAdd
	case isDeleted:
		fc.Type = model.ChangeDelete
		fc.Path = oldName
	case oldName != newName:
		fc.Type = model.ChangeRename
		fc.OldPath = oldName
	}

	for _, h := range f.Hunks {
		hunk := model.Hunk{
			OldStart: int(h.OrigStartLine),
			OldCount: int(h.OrigLines),
			NewStart: int(h.NewStartLine),
			NewCount: int(h.NewLines),
			Header:   h.Section,
		}
		for _, line := range strings.Split(string(h.Body), "\n") {
			if line == "" {
				continue
			}
			hunk.Lines = append(hunk.Lines, line)
			switch line[0] {
			case '+':
				fc.Additions++
			case '-':
				fc.Deletions++
			}
		}
		fc.Hunks = append(fc.Hunks, hunk)
	}
	return fc
}

func stripPathPrefix(name string) string {
	if strings.HasPrefix(name, "a/") || strings.HasPrefix(name, "b/") {
		return name[2:]
	}
	return name
}
