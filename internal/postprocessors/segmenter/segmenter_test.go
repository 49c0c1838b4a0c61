package segmenter

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mtm/internal/core/domain"
)

func noteWith(lines ...string) *domain.Note {
	return &domain.Note{
		ID:         "note-1",
		Project:    "apollo",
		SourceFile: "/notes/sync.md",
		Content:    strings.Join(lines, "\n"),
	}
}

func TestSegment_Blocks(t *testing.T) {
	note := noteWith(
		"# Weekly Sync",
		"Attendees: Alice, Bob",
		"",
		"We reviewed the deployment pipeline.",
		"Release is blocked on QA.",
		"",
		"## Action Items",
		"",
		"- Alice will update the runbook",
		"- Bob to book the venue",
		"",
		"```go",
		"make deploy",
		"```",
		"",
		"---",
		"",
		"   ",
		"",
		"> Quoted   text here",
	)

	segments, err := New().Segment(context.Background(), note)
	require.NoError(t, err)
	require.Len(t, segments, 4)

	assert.Equal(t, "Weekly Sync\nWe reviewed the deployment pipeline.\nRelease is blocked on QA.", segments[0].Content)
	assert.Equal(t, 1, segments[0].LineStart)
	assert.Equal(t, 5, segments[0].LineEnd)

	assert.Equal(t, "Action Items\n- Alice will update the runbook\n- Bob to book the venue", segments[1].Content)
	assert.Equal(t, 7, segments[1].LineStart)
	assert.Equal(t, 10, segments[1].LineEnd)

	assert.Equal(t, "make deploy", segments[2].Content)
	assert.Equal(t, 13, segments[2].LineStart)
	assert.Equal(t, 13, segments[2].LineEnd)

	assert.Equal(t, "> Quoted text here", segments[3].Content)
	assert.Equal(t, 20, segments[3].LineStart)

	for i, seg := range segments {
		assert.Equal(t, i, seg.Order)
		assert.Equal(t, "note-1", seg.NoteID)
		assert.Equal(t, "apollo", seg.Project)
		assert.Equal(t, "/notes/sync.md", seg.SourceFile)
		assert.Empty(t, seg.ID)
	}
}

func TestSegment_PlainText(t *testing.T) {
	segments, err := New().Segment(context.Background(), noteWith(
		"first para line",
		"still first",
		"",
		"second para",
	))
	require.NoError(t, err)
	require.Len(t, segments, 2)
	assert.Equal(t, "first para line\nstill first", segments[0].Content)
	assert.Equal(t, "second para", segments[1].Content)
	assert.Equal(t, 4, segments[1].LineStart)
}

func TestSegment_StackedHeadings(t *testing.T) {
	segments, err := New().Segment(context.Background(), noteWith("# Budget", "## Forecast", "Numbers look fine."))
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, "Budget\nForecast\nNumbers look fine.", segments[0].Content)
	assert.Equal(t, 1, segments[0].LineStart)
	assert.Equal(t, 3, segments[0].LineEnd)
}

func TestSegment_TrailingHeading(t *testing.T) {
	segments, err := New().Segment(context.Background(), noteWith("Intro paragraph", "", "# Next Steps"))
	require.NoError(t, err)
	require.Len(t, segments, 2)
	assert.Equal(t, "Next Steps", segments[1].Content)
	assert.Equal(t, 3, segments[1].LineStart)
	assert.Equal(t, 3, segments[1].LineEnd)
}

func TestSegment_Empty(t *testing.T) {
	for _, content := range []string{"", "   \n\n\t\n"} {
		segments, err := New().Segment(context.Background(), &domain.Note{ID: "n", Content: content})
		require.NoError(t, err)
		assert.Empty(t, segments)
	}
}

func TestSegment_BoilerplateDisabled(t *testing.T) {
	segments, err := New(WithBoilerplateStripping(false)).Segment(context.Background(),
		noteWith("Attendees: Alice, Bob"))
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, "Attendees: Alice, Bob", segments[0].Content)
}

func TestSegment_Redaction(t *testing.T) {
	note := noteWith("Contact alice@example.com or 555-123-4567 today.")

	plain, err := New().Segment(context.Background(), note)
	require.NoError(t, err)
	require.Len(t, plain, 1)
	assert.Contains(t, plain[0].Content, "alice@example.com")

	redacted, err := New(WithRedaction(true)).Segment(context.Background(), note)
	require.NoError(t, err)
	require.Len(t, redacted, 1)
	assert.Equal(t, "Contact [EMAIL] or [PHONE] today.", redacted[0].Content)
}

func TestSegment_NilNote(t *testing.T) {
	_, err := New().Segment(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSegment_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Segment(ctx, noteWith("text"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLineIndex(t *testing.T) {
	idx := newLineIndex([]byte("ab\ncd\n\nef"))
	assert.Equal(t, 1, idx.lineOf(0))
	assert.Equal(t, 1, idx.lineOf(2))
	assert.Equal(t, 2, idx.lineOf(3))
	assert.Equal(t, 4, idx.lineOf(7))
	assert.Equal(t, 2, idx.end(1))
	assert.Equal(t, 9, idx.end(4))
}
