package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/mtm/internal/core/domain"
	"github.com/custodia-labs/mtm/internal/core/ports/driven"
	"github.com/custodia-labs/mtm/internal/core/ports/driving"
	"github.com/custodia-labs/mtm/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService turns note files into stored notes and segments.
type IngestService struct {
	store       driven.SegmentStore
	segmenter   driven.Segmenter
	normalisers map[string]driven.Normaliser
	now         func() time.Time
}

// NewIngestService creates an ingest service. Each normaliser is registered
// for its supported extensions; later normalisers win on overlap.
func NewIngestService(store driven.SegmentStore, segmenter driven.Segmenter, normalisers ...driven.Normaliser) *IngestService {
	byExt := make(map[string]driven.Normaliser)
	for _, n := range normalisers {
		for _, ext := range n.SupportedExtensions() {
			byExt[strings.ToLower(ext)] = n
		}
	}
	return &IngestService{
		store:       store,
		segmenter:   segmenter,
		normalisers: byExt,
		now:         time.Now,
	}
}

// Supports reports whether a normaliser handles the file's extension.
func (s *IngestService) Supports(path string) bool {
	_, ok := s.normalisers[strings.ToLower(filepath.Ext(path))]
	return ok
}

// IngestFile reads, normalises and segments one note file.
// Re-ingesting content already stored for the project is a no-op that
// returns the existing note with Duplicate set.
func (s *IngestService) IngestFile(ctx context.Context, path, project string) (*driving.IngestResult, error) {
	normaliser, ok := s.normalisers[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	note, err := normaliser.Normalise(ctx, &domain.RawNote{
		Path:    path,
		Project: project,
		Content: content,
		ModTime: info.ModTime(),
	})
	if err != nil {
		return nil, fmt.Errorf("normalise %s: %w", path, err)
	}

	existing, err := s.store.FindNoteByHash(ctx, note.Project, note.ContentSHA256)
	switch {
	case err == nil:
		segments, err := s.countSegments(ctx, existing)
		if err != nil {
			return nil, err
		}
		logger.Debug("%s already ingested as note %s", path, existing.ID)
		return &driving.IngestResult{Note: existing, Segments: segments, Duplicate: true}, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("find note: %w", err)
	}

	segments, err := s.segmenter.Segment(ctx, note)
	if err != nil {
		return nil, fmt.Errorf("segment %s: %w", path, err)
	}
	now := s.now()
	for i := range segments {
		segments[i].ID = uuid.New().String()
		segments[i].CreatedAt = now
	}

	if err := s.store.SaveNote(ctx, note); err != nil {
		return nil, fmt.Errorf("save note: %w", err)
	}
	if err := s.store.SaveSegments(ctx, segments); err != nil {
		return nil, fmt.Errorf("save segments: %w", err)
	}

	logger.WithFields(logger.Fields{"project": note.Project, "note": note.ID}).
		Infof("ingested %s (%d segments)", filepath.Base(path), len(segments))
	return &driving.IngestResult{Note: note, Segments: len(segments)}, nil
}

func (s *IngestService) countSegments(ctx context.Context, note *domain.Note) (int, error) {
	segments, err := s.store.ListSegments(ctx, note.Project)
	if err != nil {
		return 0, fmt.Errorf("list segments: %w", err)
	}
	n := 0
	for _, seg := range segments {
		if seg.NoteID == note.ID {
			n++
		}
	}
	return n, nil
}
