package diff

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// PatchID computes the normalized patch identity of a commit: a hash
// over the commit's diff with line numbers and tree metadata removed, so
// the same content change yields the same id before and after a rebase.
// A root commit gets a distinct id derived from its commit hash.
func (a *Analyzer) PatchID(ctx context.Context, ref string) (string, error) {
	c, err := a.src.Commit(ref)
	if err != nil {
		return "", err
	}
	if len(c.ParentHashes) == 0 {
		sum := sha1.Sum([]byte(c.Hash))
		return hex.EncodeToString(sum[:]), nil
	}

	text, err := a.src.CommitPatch(ctx, c.Hash)
	if err != nil {
		return "", err
	}
	sum := sha1.Sum([]byte(normalizeForPatchID(text)))
	return hex.EncodeToString(sum[:]), nil
}

// CollectPatchIDs computes the patch-id of every commit in the walk over
// include/exclude and accumulates them into a set.
func (a *Analyzer) CollectPatchIDs(ctx context.Context, include, exclude []string) (map[string]bool, error) {
	commits, err := a.src.WalkCommits(include, exclude, 0)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]bool, len(commits))
	for _, c := range commits {
		id, err := a.PatchID(ctx, c.Hash)
		if err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, nil
}

// normalizeForPatchID mirrors git's patch-id normalization: index and
// diff header lines dropped, every hunk header collapsed to "@@",
// trailing whitespace stripped, empty lines removed.
func normalizeForPatchID(text string) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, "index "):
			continue
		case strings.HasPrefix(line, "diff --git"):
			continue
		case strings.HasPrefix(line, "@@"):
			out = append(out, "@@")
			continue
		}
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
