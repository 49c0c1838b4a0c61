package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mtm/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/mtm/internal/core/domain"
	"github.com/custodia-labs/mtm/internal/extractors"
)

// recordingPipeline emits one action per segment and remembers provenance.
type recordingPipeline struct {
	seen []domain.Provenance
	err  error
}

func (p *recordingPipeline) Extract(_ context.Context, text string, prov domain.Provenance) ([]domain.Extraction, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.seen = append(p.seen, prov)
	return []domain.Extraction{&domain.Action{
		ExtractionBase: domain.ExtractionBase{ID: prov.SegmentIDs[0] + "-action", Provenance: prov},
		Action:         text,
		Status:         "pending",
	}}, nil
}

func TestExtractionService_ExtractProject_Provenance(t *testing.T) {
	segments := memory.NewSegmentStore()
	records := memory.NewExtractionStore()
	pipeline := &recordingPipeline{}
	service := NewExtractionService(segments, records, pipeline)
	seedProject(t, segments, "apollo", "first", "second")

	report, err := service.ExtractProject(context.Background(), "apollo")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Segments)
	assert.Equal(t, 2, report.Counts[domain.KindAction])

	require.Len(t, pipeline.seen, 2)
	prov := pipeline.seen[1]
	assert.Equal(t, "note-apollo", prov.NoteID)
	assert.Equal(t, []string{"apollo-seg-1"}, prov.SegmentIDs)
	assert.Equal(t, "apollo", prov.Project)
	assert.Equal(t, "/notes/apollo.md", prov.SourceFile)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), prov.Date)

	stored, err := service.List(context.Background(), "apollo", domain.KindAction)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestExtractionService_ExtractProject_DefaultPipeline(t *testing.T) {
	segments := memory.NewSegmentStore()
	records := memory.NewExtractionStore()
	service := NewExtractionService(segments, records, extractors.NewDefaultPipeline())
	seedProject(t, segments, "apollo",
		"1. Deploy the staging build",
		"Runway refers to months of cash left",
		strings.Join([]string{"Q: When is the launch?", "A: Early March after QA."}, "\n"),
		"Decision: Freeze the hiring budget",
		"Action: Alice will send the deck",
	)

	report, err := service.ExtractProject(context.Background(), "apollo")
	require.NoError(t, err)
	for _, kind := range domain.ExtractionKinds {
		assert.GreaterOrEqual(t, report.Counts[kind], 1, "kind %s", kind)
	}

	faqs, err := service.List(context.Background(), "apollo", domain.KindFAQ)
	require.NoError(t, err)
	require.NotEmpty(t, faqs)
	faq, ok := faqs[0].(*domain.FAQ)
	require.True(t, ok)
	assert.Equal(t, []string{"apollo-seg-2"}, faq.Provenance.SegmentIDs)
}

func TestExtractionService_ExtractProject_Empty(t *testing.T) {
	service := NewExtractionService(memory.NewSegmentStore(), memory.NewExtractionStore(), &recordingPipeline{})

	report, err := service.ExtractProject(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Equal(t, 0, report.Segments)
	assert.Empty(t, report.Counts)
}

func TestExtractionService_ExtractProject_PipelineError(t *testing.T) {
	segments := memory.NewSegmentStore()
	records := memory.NewExtractionStore()
	boom := errors.New("boom")
	service := NewExtractionService(segments, records, &recordingPipeline{err: boom})
	seedProject(t, segments, "apollo", "text")

	_, err := service.ExtractProject(context.Background(), "apollo")
	assert.ErrorIs(t, err, boom)

	stored, err := records.ListExtractions(context.Background(), "apollo", "")
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestExtractionService_List_InvalidKind(t *testing.T) {
	service := NewExtractionService(memory.NewSegmentStore(), memory.NewExtractionStore(), &recordingPipeline{})

	_, err := service.List(context.Background(), "", "glossary")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	records, err := service.List(context.Background(), "", "")
	require.NoError(t, err)
	assert.Empty(t, records)
}
