package diff_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egekaya1/git-sim/internal/diff"
	"github.com/egekaya1/git-sim/internal/gittest"
	"github.com/egekaya1/git-sim/internal/model"
)

const sampleDiff = `diff --git a/file_a.txt b/file_a.txt
index 0000001..0000002 100644
--- a/file_a.txt
+++ b/file_a.txt
@@ -1,3 +1,4 @@ func main
 Content A
-Line 2
+Line two
 Line 3
+Line 4
diff --git a/new.txt b/new.txt
new file mode 100644
index 0000000..0000003
--- /dev/null
+++ b/new.txt
@@ -0,0 +1 @@
+hello
`

func TestParsePatch(t *testing.T) {
	changes, err := diff.ParsePatch(sampleDiff)
	require.NoError(t, err)
	require.Len(t, changes, 2)

	modified := changes[0]
	assert.Equal(t, "file_a.txt", modified.Path)
	assert.Equal(t, model.ChangeModify, modified.Type)
	assert.Equal(t, 2, modified.Additions)
	assert.Equal(t, 1, modified.Deletions)
	require.Len(t, modified.Hunks, 1)

	hunk := modified.Hunks[0]
	assert.Equal(t, 1, hunk.OldStart)
	assert.Equal(t, 3, hunk.OldCount)
	assert.Equal(t, 1, hunk.NewStart)
	assert.Equal(t, 4, hunk.NewCount)
	assert.Equal(t, "func main", hunk.Header)
	assert.Equal(t, model.LineRange{Start: 1, End: 4}, hunk.OldRange())

	added := changes[1]
	assert.Equal(t, "new.txt", added.Path)
	assert.Equal(t, model.ChangeAdd, added.Type)
	assert.Equal(t, 1, added.Additions)
	assert.Equal(t, 0, added.Deletions)
	// Omitted count in "@@ -0,0 +1 @@" defaults to 1.
	assert.Equal(t, 1, added.Hunks[0].NewCount)
}

func TestParsePatchEmpty(t *testing.T) {
	changes, err := diff.ParsePatch("")
	require.NoError(t, err)
	assert.Empty(t, changes)

	changes, err = diff.ParsePatch("\n  \n")
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestParsePatchDelete(t *testing.T) {
	text := `diff --git a/old.txt b/old.txt
deleted file mode 100644
index 0000004..0000000
--- a/old.txt
+++ /dev/null
@@ -1,2 +0,0 @@
-line one
-line two
`
	changes, err := diff.ParsePatch(text)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "old.txt", changes[0].Path)
	assert.Equal(t, model.ChangeDelete, changes[0].Type)
	assert.Equal(t, 2, changes[0].Deletions)
}

func TestParsePatchNoNewlineMarkerNotCounted(t *testing.T) {
	text := `diff --git a/f.txt b/f.txt
index 0000005..0000006 100644
--- a/f.txt
+++ b/f.txt
@@ -1 +1 @@
-old
\ No newline at end of file
+new
\ No newline at end of file
`
	changes, err := diff.ParsePatch(text)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, 1, changes[0].Additions)
	assert.Equal(t, 1, changes[0].Deletions)
}

func TestChangesAttachesHunks(t *testing.T) {
	b := gittest.BasicRepo(t)
	analyzer := diff.NewAnalyzer(b.Facade())
	ctx := context.Background()

	// HEAD~1 added file_a.txt with three lines.
	changes, err := analyzer.Changes(ctx, "HEAD~1")
	require.NoError(t, err)
	require.Len(t, changes, 1)

	fc := changes[0]
	assert.Equal(t, "file_a.txt", fc.Path)
	assert.Equal(t, model.ChangeAdd, fc.Type)
	assert.Equal(t, 3, fc.Additions)
	assert.NotEmpty(t, fc.NewHash, "tree-differ metadata survives the merge")
	require.NotEmpty(t, fc.Hunks)
	assert.Equal(t, 3, fc.Hunks[0].NewCount)
}

func TestChangesModification(t *testing.T) {
	b := gittest.BasicRepo(t)
	b.WriteFile("file_a.txt", "Content A\nLine 2 changed\nLine 3\n")
	b.Commit("Change line 2")

	analyzer := diff.NewAnalyzer(b.Facade())
	changes, err := analyzer.Changes(context.Background(), "HEAD")
	require.NoError(t, err)
	require.Len(t, changes, 1)

	fc := changes[0]
	assert.Equal(t, model.ChangeModify, fc.Type)
	assert.Equal(t, 1, fc.Additions)
	assert.Equal(t, 1, fc.Deletions)
	require.NotEmpty(t, fc.Hunks)
	assert.False(t, fc.IsBinary())
}
