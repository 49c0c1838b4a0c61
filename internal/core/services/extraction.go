package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/mtm/internal/core/domain"
	"github.com/custodia-labs/mtm/internal/core/ports/driven"
	"github.com/custodia-labs/mtm/internal/core/ports/driving"
	"github.com/custodia-labs/mtm/internal/logger"
)

// Ensure ExtractionService implements the interface.
var _ driving.ExtractionService = (*ExtractionService)(nil)

// ExtractionService runs the extractor pipeline over stored segments.
type ExtractionService struct {
	segments driven.SegmentStore
	records  driven.ExtractionStore
	pipeline driven.ExtractorPipeline
}

// NewExtractionService creates a new extraction service.
func NewExtractionService(segments driven.SegmentStore, records driven.ExtractionStore, pipeline driven.ExtractorPipeline) *ExtractionService {
	return &ExtractionService{
		segments: segments,
		records:  records,
		pipeline: pipeline,
	}
}

// ExtractProject extracts facts from every segment of a project and stores them.
func (s *ExtractionService) ExtractProject(ctx context.Context, project string) (*driving.ExtractionReport, error) {
	segments, err := s.segments.ListSegments(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}

	report := &driving.ExtractionReport{
		Project:  project,
		Segments: len(segments),
		Counts:   make(map[domain.ExtractionKind]int),
	}

	notes := make(map[string]*domain.Note)
	var all []domain.Extraction
	for _, seg := range segments {
		note, err := s.noteFor(ctx, notes, seg.NoteID)
		if err != nil {
			return nil, err
		}

		prov := domain.Provenance{
			NoteID:     seg.NoteID,
			SegmentIDs: []string{seg.ID},
			Project:    seg.Project,
			SourceFile: seg.SourceFile,
			LineStart:  seg.LineStart,
			LineEnd:    seg.LineEnd,
		}
		if note != nil {
			prov.Date = note.Date
		}

		records, err := s.pipeline.Extract(ctx, seg.Content, prov)
		if err != nil {
			return nil, fmt.Errorf("segment %s: %w", seg.ID, err)
		}
		for _, r := range records {
			report.Counts[r.Kind()]++
		}
		all = append(all, records...)
	}

	if len(all) > 0 {
		if err := s.records.SaveExtractions(ctx, all); err != nil {
			return nil, fmt.Errorf("save extractions: %w", err)
		}
	}

	logger.WithFields(logger.Fields{"project": displayProject(project), "segments": len(segments)}).
		Infof("extracted %d records", len(all))
	return report, nil
}

// List returns stored records, optionally filtered by kind.
func (s *ExtractionService) List(ctx context.Context, project string, kind domain.ExtractionKind) ([]domain.Extraction, error) {
	if kind != "" && !kind.IsValid() {
		return nil, fmt.Errorf("%w: extraction kind %q", domain.ErrUnsupportedType, kind)
	}
	records, err := s.records.ListExtractions(ctx, project, kind)
	if err != nil {
		return nil, fmt.Errorf("list extractions: %w", err)
	}
	return records, nil
}

// noteFor returns the segment's note, caching lookups. A missing note is
// not an error; records then carry no date.
func (s *ExtractionService) noteFor(ctx context.Context, cache map[string]*domain.Note, id string) (*domain.Note, error) {
	if note, ok := cache[id]; ok {
		return note, nil
	}
	note, err := s.segments.GetNote(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		cache[id] = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get note %s: %w", id, err)
	}
	cache[id] = note
	return note, nil
}
