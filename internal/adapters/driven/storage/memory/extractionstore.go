package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/mtm/internal/core/domain"
	"github.com/custodia-labs/mtm/internal/core/ports/driven"
)

// Ensure ExtractionStore implements the interface.
var _ driven.ExtractionStore = (*ExtractionStore)(nil)

// ExtractionStore is an in-memory implementation of driven.ExtractionStore.
type ExtractionStore struct {
	mu      sync.RWMutex
	records map[string]domain.Extraction
	order   []string
}

// NewExtractionStore creates a new in-memory extraction store.
func NewExtractionStore() *ExtractionStore {
	return &ExtractionStore{records: make(map[string]domain.Extraction)}
}

// SaveExtractions upserts records by ID.
func (s *ExtractionStore) SaveExtractions(_ context.Context, records []domain.Extraction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		id := r.Base().ID
		if _, exists := s.records[id]; !exists {
			s.order = append(s.order, id)
		}
		s.records[id] = r
	}
	return nil
}

// ListExtractions returns matching records in insertion order.
func (s *ExtractionStore) ListExtractions(_ context.Context, project string, kind domain.ExtractionKind) ([]domain.Extraction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Extraction
	for _, id := range s.order {
		r := s.records[id]
		if project != "" && r.Base().Provenance.Project != project {
			continue
		}
		if kind != "" && r.Kind() != kind {
			continue
		}
		result = append(result, r)
	}
	return result, nil
}
