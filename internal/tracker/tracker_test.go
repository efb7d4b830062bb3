package tracker

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

const doc = `# Platform tracker

Last updated: 2025-12-01

## Storylines
- [ ] TASK-1 Storyline model
- [x] TASK-12 Storyline view
- [~] TASK-120 Agent generation
* [!] TASK-2: blocked on agent credentials
`

// ============================================================================
// ParseStatus Tests
// ============================================================================

func TestParseStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Status
	}{
		{"todo", StatusTodo},
		{"pending", StatusTodo},
		{"in-progress", StatusInProgress},
		{"WIP", StatusInProgress},
		{"blocked", StatusBlocked},
		{"done", StatusDone},
		{" complete ", StatusDone},
	}
	for _, tt := range tests {
		got, err := ParseStatus(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseStatus("finished")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

// ============================================================================
// Apply Tests
// ============================================================================

func TestApply_MatchesWholeToken(t *testing.T) {
	t.Parallel()

	out, res, err := Apply([]byte(doc), "TASK-12", StatusDone, today)
	require.NoError(t, err)

	assert.Equal(t, []int{7}, res.Lines)
	assert.Contains(t, string(out), "- [x] TASK-12 Storyline view\n")
	assert.Contains(t, string(out), "- [~] TASK-120 Agent generation\n")
	assert.Contains(t, string(out), "- [ ] TASK-1 Storyline model\n")
}

func TestApply_TokenFollowedByPunctuation(t *testing.T) {
	t.Parallel()

	out, _, err := Apply([]byte(doc), "TASK-2", StatusDone, today)
	require.NoError(t, err)
	assert.Contains(t, string(out), "* [x] TASK-2: blocked on agent credentials\n")
}

func TestApply_SetsLastUpdated(t *testing.T) {
	t.Parallel()

	out, res, err := Apply([]byte(doc), "TASK-1", StatusDone, today)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-14", res.Updated)
	assert.Contains(t, string(out), "Last updated: 2026-03-14\n")
	assert.NotContains(t, string(out), "2025-12-01")
}

func TestApply_NoLastUpdatedLine(t *testing.T) {
	t.Parallel()

	out, res, err := Apply([]byte("- [ ] A-1 thing\n"), "A-1", StatusBlocked, today)
	require.NoError(t, err)
	assert.Empty(t, res.Updated)
	assert.Equal(t, "- [!] A-1 thing\n", string(out))
}

func TestApply_PreservesCRLF(t *testing.T) {
	t.Parallel()

	in := "Last updated: 2020-01-01\r\n- [ ] A-1 thing\r\n"
	out, _, err := Apply([]byte(in), "A-1", StatusDone, today)
	require.NoError(t, err)
	assert.Equal(t, "Last updated: 2026-03-14\r\n- [x] A-1 thing\r\n", string(out))
}

func TestApply_IgnoresNonChecklistMentions(t *testing.T) {
	t.Parallel()

	in := "TASK-9 is described below\n- [ ] TASK-8 other\n"
	_, _, err := Apply([]byte(in), "TASK-9", StatusDone, today)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestApply_Errors(t *testing.T) {
	t.Parallel()

	_, _, err := Apply([]byte(doc), "  ", StatusDone, today)
	assert.ErrorIs(t, err, ErrEmptyTaskID)

	_, _, err = Apply([]byte(doc), "TASK-1", Status("shipped"), today)
	assert.ErrorIs(t, err, ErrUnknownStatus)

	_, _, err = Apply([]byte(doc), "TASK-99", StatusDone, today)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

// ============================================================================
// Update Tests
// ============================================================================

func TestUpdate_RewritesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "TODO.md")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o640))

	res, err := Update(path, "TASK-1", StatusDone, today)
	require.NoError(t, err)
	assert.Equal(t, []int{6}, res.Lines)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(got), "- [x] TASK-1 Storyline model\n")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestUpdate_UnknownTaskLeavesFileUntouched(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "TODO.md")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	_, err := Update(path, "TASK-404", StatusDone, today)
	require.True(t, errors.Is(err, ErrTaskNotFound))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, doc, string(got))
}

func TestUpdate_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Update(filepath.Join(t.TempDir(), "nope.md"), "TASK-1", StatusDone, today)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
