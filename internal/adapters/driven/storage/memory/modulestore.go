package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/custodia-labs/mtm/internal/core/domain"
	"github.com/custodia-labs/mtm/internal/core/ports/driven"
)

// Ensure ModuleStore implements the interface.
var _ driven.ModuleStore = (*ModuleStore)(nil)

// ModuleStore is an in-memory implementation of driven.ModuleStore.
type ModuleStore struct {
	mu       sync.Mutex
	modules  map[string]domain.Module
	order    []string
	versions map[string][]domain.VersionEntry // oldest first
}

// NewModuleStore creates a new in-memory module store.
func NewModuleStore() *ModuleStore {
	return &ModuleStore{
		modules:  make(map[string]domain.Module),
		versions: make(map[string][]domain.VersionEntry),
	}
}

// CreateModule stores a new module with its first version entry.
func (s *ModuleStore) CreateModule(_ context.Context, module *domain.Module, initial domain.VersionEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.modules[module.ID]; exists {
		return domain.ErrAlreadyExists
	}
	s.modules[module.ID] = copyModule(*module)
	s.order = append(s.order, module.ID)
	s.versions[module.ID] = []domain.VersionEntry{initial}
	return nil
}

// GetModule retrieves a module by ID.
func (s *ModuleStore) GetModule(_ context.Context, id string) (*domain.Module, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.modules[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	m = copyModule(m)
	return &m, nil
}

// ListModules returns modules in creation order.
func (s *ModuleStore) ListModules(_ context.Context, project string) ([]domain.Module, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []domain.Module
	for _, id := range s.order {
		m := s.modules[id]
		if project == "" || m.Project == project {
			result = append(result, copyModule(m))
		}
	}
	return result, nil
}

// AppendVersion records entry and replaces the module if its stored
// version still equals expected.
func (s *ModuleStore) AppendVersion(_ context.Context, module *domain.Module, expected domain.Version, entry domain.VersionEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.modules[module.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if current.Version != expected {
		return domain.ErrVersionConflict
	}
	s.modules[module.ID] = copyModule(*module)
	s.versions[module.ID] = append(s.versions[module.ID], entry)
	return nil
}

// ListVersions returns a module's history, newest first.
func (s *ModuleStore) ListVersions(_ context.Context, moduleID string) ([]domain.VersionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.modules[moduleID]; !ok {
		return nil, domain.ErrNotFound
	}
	history := slices.Clone(s.versions[moduleID])
	slices.Reverse(history)
	return history, nil
}

func copyModule(m domain.Module) domain.Module {
	m.Refs = domain.References{
		Themes:      slices.Clone(m.Refs.Themes),
		Steps:       slices.Clone(m.Refs.Steps),
		Definitions: slices.Clone(m.Refs.Definitions),
		FAQs:        slices.Clone(m.Refs.FAQs),
		Decisions:   slices.Clone(m.Refs.Decisions),
		Actions:     slices.Clone(m.Refs.Actions),
	}
	return m
}
