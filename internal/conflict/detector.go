// Package conflict predicts merge and rebase conflicts from two sets of
// file changes, without three-way merging any file content. Detection is
// heuristic: file-level overlap, adjacency-aware hunk ranges, content
// comparison, and specialized delete/modify and rename rules.
package conflict

import (
	"fmt"
	"sort"

	"github.com/egekaya1/git-sim/internal/model"
)

// DefaultAdjacency is the maximum gap, in lines, between two hunk
// ranges that still counts as an overlap.
const DefaultAdjacency = 3

// Detector classifies per-path interactions between "our" accumulated
// changes and "their" incoming changes.
type Detector struct {
	// Adjacency overrides the overlap threshold; zero means the default.
	Adjacency int
}

// NewDetector returns a detector with the default adjacency threshold.
func NewDetector() *Detector {
	return &Detector{Adjacency: DefaultAdjacency}
}

func (d *Detector) adjacency() int {
	if d.Adjacency > 0 {
		return d.Adjacency
	}
	return DefaultAdjacency
}

// Detect returns one potential conflict per affected path. In a rebase,
// ours is the target side accumulated since the merge base and theirs is
// the commit being replayed.
func (d *Detector) Detect(ours, theirs []model.FileChange) []model.Conflict {
	ourByPath := indexByPath(ours)
	theirByPath := indexByPath(theirs)

	var conflicts []model.Conflict
	for _, path := range commonPaths(ourByPath, theirByPath) {
		if c := d.analyzePath(path, ourByPath[path], theirByPath[path]); c != nil {
			conflicts = append(conflicts, *c)
		}
	}
	conflicts = append(conflicts, d.deleteModifyConflicts(ours, theirs)...)
	conflicts = append(conflicts, d.renameConflicts(ours, theirs)...)
	return conflicts
}

// analyzePath classifies two changes to the same path. Delete-versus-
// modify combinations return nil here; the dedicated pass reports them.
func (d *Detector) analyzePath(path string, our, their model.FileChange) *model.Conflict {
	if our.Type == model.ChangeDelete && their.Type == model.ChangeDelete {
		return nil
	}

	if our.Type == model.ChangeAdd && their.Type == model.ChangeAdd {
		if our.NewHash == their.NewHash {
			return nil
		}
		return &model.Conflict{
			Path:        path,
			Severity:    model.SeverityCertain,
			Description: fmt.Sprintf("Both sides add '%s' with different content", path),
			Ours:        changeRef(our),
			Theirs:      changeRef(their),
		}
	}

	if (our.Type == model.ChangeDelete && (their.Type == model.ChangeModify || their.Type == model.ChangeAdd)) ||
		(their.Type == model.ChangeDelete && (our.Type == model.ChangeModify || our.Type == model.ChangeAdd)) {
		return nil
	}

	if our.Type == model.ChangeAdd || their.Type == model.ChangeAdd {
		return &model.Conflict{
			Path:        path,
			Severity:    model.SeverityCertain,
			Description: fmt.Sprintf("File '%s' added on one side, modified on other", path),
			Ours:        changeRef(our),
			Theirs:      changeRef(their),
		}
	}

	if len(our.Hunks) == 0 || len(their.Hunks) == 0 {
		// No parsed hunks, likely a binary change.
		return &model.Conflict{
			Path:        path,
			Severity:    model.SeverityLikely,
			Description: fmt.Sprintf("Both sides modify '%s' (could not analyze hunks)", path),
			Ours:        changeRef(our),
			Theirs:      changeRef(their),
		}
	}

	overlaps := d.overlappingHunks(our.Hunks, their.Hunks)
	if len(overlaps) == 0 {
		return nil
	}

	severity := classifyOverlaps(our.Hunks, their.Hunks, overlaps)
	return &model.Conflict{
		Path:        path,
		Severity:    severity,
		Description: describeOverlaps(path, overlaps, severity),
		Ours:        changeRef(our),
		Theirs:      changeRef(their),
		Overlaps:    overlaps,
	}
}

// overlappingHunks finds hunk pairs whose old-file ranges overlap or lie
// within the adjacency threshold of each other.
func (d *Detector) overlappingHunks(ours, theirs []model.Hunk) []model.Overlap {
	threshold := d.adjacency()
	var overlaps []model.Overlap
	for _, our := range ours {
		o := our.OldRange()
		for _, their := range theirs {
			t := their.OldRange()
			if o.Start <= t.End+threshold && t.Start <= o.End+threshold {
				overlaps = append(overlaps, model.Overlap{Ours: o, Theirs: t})
			}
		}
	}
	return overlaps
}

// classifyOverlaps compares the changed-line content of each overlapping
// pair. Byte-identical changes may auto-resolve (LIKELY); anything else
// needs manual resolution (CERTAIN).
func classifyOverlaps(ours, theirs []model.Hunk, overlaps []model.Overlap) model.Severity {
	ourLines := changedLinesByRange(ours)
	theirLines := changedLinesByRange(theirs)

	for _, overlap := range overlaps {
		if !equalLines(ourLines[overlap.Ours], theirLines[overlap.Theirs]) {
			return model.SeverityCertain
		}
	}
	return model.SeverityLikely
}

func changedLinesByRange(hunks []model.Hunk) map[model.LineRange][]string {
	out := make(map[model.LineRange][]string, len(hunks))
	for _, h := range hunks {
		var changed []string
		for _, line := range h.Lines {
			if len(line) > 0 && (line[0] == '+' || line[0] == '-') {
				changed = append(changed, line)
			}
		}
		out[h.OldRange()] = changed
	}
	return out
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func describeOverlaps(path string, overlaps []model.Overlap, severity model.Severity) string {
	if severity == model.SeverityCertain {
		if len(overlaps) == 1 {
			o := overlaps[0].Ours
			return fmt.Sprintf("Lines %d-%d in '%s' modified differently on both sides", o.Start, o.End, path)
		}
		return fmt.Sprintf("Multiple regions in '%s' modified differently on both sides", path)
	}
	if len(overlaps) == 1 {
		o := overlaps[0].Ours
		return fmt.Sprintf("Lines %d-%d in '%s' modified on both sides (identical changes, may auto-resolve)", o.Start, o.End, path)
	}
	return fmt.Sprintf("Multiple regions in '%s' modified on both sides (identical changes, may auto-resolve)", path)
}

// deleteModifyConflicts reports paths one side deletes while the other
// modifies or adds. Always CERTAIN.
func (d *Detector) deleteModifyConflicts(ours, theirs []model.FileChange) []model.Conflict {
	var conflicts []model.Conflict

	ourDeleted := filterByType(ours, model.ChangeDelete)
	theirTouched := filterByTypes(theirs, model.ChangeModify, model.ChangeAdd)
	for _, path := range commonPaths(ourDeleted, theirTouched) {
		conflicts = append(conflicts, model.Conflict{
			Path:        path,
			Severity:    model.SeverityCertain,
			Description: fmt.Sprintf("File '%s' deleted on target but modified in commit", path),
			Ours:        changeRef(ourDeleted[path]),
			Theirs:      changeRef(theirTouched[path]),
		})
	}

	theirDeleted := filterByType(theirs, model.ChangeDelete)
	ourTouched := filterByTypes(ours, model.ChangeModify, model.ChangeAdd)
	for _, path := range commonPaths(theirDeleted, ourTouched) {
		conflicts = append(conflicts, model.Conflict{
			Path:        path,
			Severity:    model.SeverityCertain,
			Description: fmt.Sprintf("File '%s' modified on target but deleted in commit", path),
			Ours:        changeRef(ourTouched[path]),
			Theirs:      changeRef(theirDeleted[path]),
		})
	}
	return conflicts
}

// renameConflicts covers rename/rename divergence (CERTAIN) and
// rename-versus-modify of the old path (LIKELY), in both directions.
func (d *Detector) renameConflicts(ours, theirs []model.FileChange) []model.Conflict {
	var conflicts []model.Conflict

	ourRenames := renamesByOldPath(ours)
	theirRenames := renamesByOldPath(theirs)

	for _, oldPath := range commonPaths(ourRenames, theirRenames) {
		our, their := ourRenames[oldPath], theirRenames[oldPath]
		if our.Path != their.Path {
			conflicts = append(conflicts, model.Conflict{
				Path:     oldPath,
				Severity: model.SeverityCertain,
				Description: fmt.Sprintf("File '%s' renamed to '%s' on target but renamed to '%s' in commit",
					oldPath, our.Path, their.Path),
				Ours:   changeRef(our),
				Theirs: changeRef(their),
			})
		}
	}

	theirModified := filterByType(theirs, model.ChangeModify)
	for _, oldPath := range commonPaths(ourRenames, theirModified) {
		our := ourRenames[oldPath]
		conflicts = append(conflicts, model.Conflict{
			Path:     oldPath,
			Severity: model.SeverityLikely,
			Description: fmt.Sprintf("File '%s' renamed to '%s' on target but modified in commit",
				oldPath, our.Path),
			Ours:   changeRef(our),
			Theirs: changeRef(theirModified[oldPath]),
		})
	}

	ourModified := filterByType(ours, model.ChangeModify)
	for _, oldPath := range commonPaths(theirRenames, ourModified) {
		their := theirRenames[oldPath]
		conflicts = append(conflicts, model.Conflict{
			Path:     oldPath,
			Severity: model.SeverityLikely,
			Description: fmt.Sprintf("File '%s' modified on target but renamed to '%s' in commit",
				oldPath, their.Path),
			Ours:   changeRef(ourModified[oldPath]),
			Theirs: changeRef(their),
		})
	}
	return conflicts
}

// EstimateDifficulty rates how hard a predicted conflict will be to
// resolve, for presentation layers.
func EstimateDifficulty(c model.Conflict) string {
	if c.Severity == model.SeverityLikely {
		return "Easy - likely auto-resolvable or simple manual fix"
	}
	if len(c.Overlaps) == 0 {
		return "Moderate - requires decision on file-level action"
	}

	total := 0
	for _, o := range c.Overlaps {
		ourSpan := o.Ours.End - o.Ours.Start
		theirSpan := o.Theirs.End - o.Theirs.Start
		if ourSpan > theirSpan {
			total += ourSpan
		} else {
			total += theirSpan
		}
	}
	switch {
	case total <= 5:
		return "Easy - small region affected"
	case total <= 20:
		return "Moderate - medium-sized region affected"
	default:
		return "Hard - large region affected, careful review needed"
	}
}

func changeRef(fc model.FileChange) *model.FileChange {
	c := fc
	return &c
}

// indexByPath keeps the last change per path; later entries in the
// accumulated buffer win, matching replay order.
func indexByPath(changes []model.FileChange) map[string]model.FileChange {
	out := make(map[string]model.FileChange, len(changes))
	for _, fc := range changes {
		out[fc.Path] = fc
	}
	return out
}

func filterByType(changes []model.FileChange, t model.ChangeType) map[string]model.FileChange {
	out := make(map[string]model.FileChange)
	for _, fc := range changes {
		if fc.Type == t {
			out[fc.Path] = fc
		}
	}
	return out
}

func filterByTypes(changes []model.FileChange, a, b model.ChangeType) map[string]model.FileChange {
	out := make(map[string]model.FileChange)
	for _, fc := range changes {
		if fc.Type == a || fc.Type == b {
			out[fc.Path] = fc
		}
	}
	return out
}

func renamesByOldPath(changes []model.FileChange) map[string]model.FileChange {
	out := make(map[string]model.FileChange)
	for _, fc := range changes {
		if fc.Type == model.ChangeRename && fc.OldPath != "" {
			out[fc.OldPath] = fc
		}
	}
	return out
}

// commonPaths returns the sorted key intersection so detection order is
// deterministic.
func commonPaths(a, b map[string]model.FileChange) []string {
	var paths []string
	for path := range a {
		if _, ok := b[path]; ok {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}
