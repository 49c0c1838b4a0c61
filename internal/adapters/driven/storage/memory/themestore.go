package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/custodia-labs/mtm/internal/core/domain"
	"github.com/custodia-labs/mtm/internal/core/ports/driven"
)

// Ensure ThemeStore implements the interface.
var _ driven.ThemeStore = (*ThemeStore)(nil)

// ThemeStore is an in-memory implementation of driven.ThemeStore.
type ThemeStore struct {
	mu     sync.RWMutex
	themes map[string]domain.Theme
	order  []string
}

// NewThemeStore creates a new in-memory theme store.
func NewThemeStore() *ThemeStore {
	return &ThemeStore{themes: make(map[string]domain.Theme)}
}

// SaveThemes stores themes in one batch.
func (s *ThemeStore) SaveThemes(_ context.Context, themes []domain.Theme) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, th := range themes {
		if _, exists := s.themes[th.ID]; !exists {
			s.order = append(s.order, th.ID)
		}
		s.themes[th.ID] = copyTheme(th)
	}
	return nil
}

// GetTheme retrieves a theme by ID.
func (s *ThemeStore) GetTheme(_ context.Context, id string) (*domain.Theme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	th, ok := s.themes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	th = copyTheme(th)
	return &th, nil
}

// ListThemes returns themes in insertion order.
func (s *ThemeStore) ListThemes(_ context.Context, project string) ([]domain.Theme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Theme
	for _, id := range s.order {
		th := s.themes[id]
		if project == "" || th.Project == project {
			result = append(result, copyTheme(th))
		}
	}
	return result, nil
}

func copyTheme(th domain.Theme) domain.Theme {
	th.Keywords = slices.Clone(th.Keywords)
	th.SegmentIDs = slices.Clone(th.SegmentIDs)
	return th
}
