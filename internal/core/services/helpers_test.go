package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mtm/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/mtm/internal/core/domain"
)

// topicTexts has three disjoint vocabularies, three segments each.
var topicTexts = []string{
	"deployment pipeline rollback release",
	"release pipeline rollback deployment",
	"rollback release deployment pipeline",
	"budget forecast quarter spending",
	"quarter budget spending forecast",
	"forecast spending budget quarter",
	"hiring interview candidate onboarding",
	"candidate onboarding hiring interview",
	"interview candidate hiring onboarding",
}

// seedProject stores one note for project with a segment per text.
func seedProject(t *testing.T, store *memory.SegmentStore, project string, texts ...string) []domain.Segment {
	t.Helper()
	ctx := context.Background()

	note := &domain.Note{
		ID:            "note-" + project,
		Project:       project,
		Title:         project + " sync",
		SourceFile:    "/notes/" + project + ".md",
		ContentSHA256: "hash-" + project,
		Date:          time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		CreatedAt:     time.Now(),
	}
	require.NoError(t, store.SaveNote(ctx, note))

	segments := make([]domain.Segment, len(texts))
	for i, text := range texts {
		segments[i] = domain.Segment{
			ID:         fmt.Sprintf("%s-seg-%d", project, i),
			NoteID:     note.ID,
			Project:    project,
			Content:    text,
			Order:      i,
			SourceFile: note.SourceFile,
			CreatedAt:  time.Now(),
		}
	}
	require.NoError(t, store.SaveSegments(ctx, segments))
	return segments
}

func testSettings() domain.AnalysisSettings {
	s := domain.DefaultAnalysisSettings()
	s.KMeansK = 3
	s.MinThemeSupport = 3
	return s
}
