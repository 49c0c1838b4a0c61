package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/mtm/internal/core/domain"
	"github.com/custodia-labs/mtm/internal/core/ports/driven"
)

// Ensure SegmentStore implements the interface.
var _ driven.SegmentStore = (*SegmentStore)(nil)

// SegmentStore is an in-memory implementation of driven.SegmentStore.
type SegmentStore struct {
	mu       sync.RWMutex
	notes    map[string]domain.Note
	segments map[string]domain.Segment
	order    []string // segment IDs in first-insert order
}

// NewSegmentStore creates a new in-memory segment store.
func NewSegmentStore() *SegmentStore {
	return &SegmentStore{
		notes:    make(map[string]domain.Note),
		segments: make(map[string]domain.Segment),
	}
}

// SaveNote stores or updates a note.
func (s *SegmentStore) SaveNote(_ context.Context, note *domain.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes[note.ID] = *note
	return nil
}

// GetNote retrieves a note by ID.
func (s *SegmentStore) GetNote(_ context.Context, id string) (*domain.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	note, ok := s.notes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &note, nil
}

// FindNoteByHash returns the project's note with the given content digest.
func (s *SegmentStore) FindNoteByHash(_ context.Context, project, sha256 string) (*domain.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, note := range s.notes {
		if note.Project == project && note.ContentSHA256 == sha256 {
			return &note, nil
		}
	}
	return nil, domain.ErrNotFound
}

// SaveSegments upserts segments by ID. Updated segments keep their position.
func (s *SegmentStore) SaveSegments(_ context.Context, segments []domain.Segment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, seg := range segments {
		if _, exists := s.segments[seg.ID]; !exists {
			s.order = append(s.order, seg.ID)
		}
		s.segments[seg.ID] = seg
	}
	return nil
}

// GetSegment retrieves a segment by ID.
func (s *SegmentStore) GetSegment(_ context.Context, id string) (*domain.Segment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seg, ok := s.segments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &seg, nil
}

// ListSegments returns segments in insertion order.
func (s *SegmentStore) ListSegments(_ context.Context, project string) ([]domain.Segment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Segment
	for _, id := range s.order {
		seg := s.segments[id]
		if project == "" || seg.Project == project {
			result = append(result, seg)
		}
	}
	return result, nil
}

// ListProjects returns the distinct projects that have segments, sorted.
func (s *SegmentStore) ListProjects(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, seg := range s.segments {
		seen[seg.Project] = struct{}{}
	}
	projects := make([]string, 0, len(seen))
	for p := range seen {
		projects = append(projects, p)
	}
	sort.Strings(projects)
	return projects, nil
}
