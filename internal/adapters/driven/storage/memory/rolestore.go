package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/mtm/internal/core/domain"
	"github.com/custodia-labs/mtm/internal/core/ports/driven"
)

// Ensure RoleMappingStore implements the interface.
var _ driven.RoleMappingStore = (*RoleMappingStore)(nil)

type topicRole struct {
	topicID, role string
}

// RoleMappingStore is an in-memory implementation of driven.RoleMappingStore.
type RoleMappingStore struct {
	mu       sync.Mutex
	mappings map[topicRole]domain.RoleMapping
}

// NewRoleMappingStore creates a new in-memory role mapping store.
func NewRoleMappingStore() *RoleMappingStore {
	return &RoleMappingStore{mappings: make(map[topicRole]domain.RoleMapping)}
}

// UpsertIfHigher inserts or raises a mapping; it never lowers confidence.
func (s *RoleMappingStore) UpsertIfHigher(_ context.Context, m domain.RoleMapping) (domain.UpsertOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := topicRole{m.TopicID, m.Role}
	existing, ok := s.mappings[key]
	switch {
	case !ok:
		s.mappings[key] = m
		return domain.UpsertInserted, nil
	case m.Confidence > existing.Confidence:
		existing.Confidence = m.Confidence
		s.mappings[key] = existing
		return domain.UpsertRaised, nil
	default:
		return domain.UpsertKept, nil
	}
}

// ListByTopic returns a topic's mappings, highest confidence first.
func (s *RoleMappingStore) ListByTopic(_ context.Context, topicID string) ([]domain.RoleMapping, error) {
	return s.filter(func(m domain.RoleMapping) bool { return m.TopicID == topicID }), nil
}

// ListByProject returns a project's mappings, highest confidence first.
func (s *RoleMappingStore) ListByProject(_ context.Context, project string) ([]domain.RoleMapping, error) {
	return s.filter(func(m domain.RoleMapping) bool { return m.Project == project }), nil
}

func (s *RoleMappingStore) filter(keep func(domain.RoleMapping) bool) []domain.RoleMapping {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []domain.RoleMapping
	for _, m := range s.mappings {
		if keep(m) {
			result = append(result, m)
		}
	}
	sortMappings(result)
	return result
}

// sortMappings orders by confidence descending, then topic and role.
func sortMappings(ms []domain.RoleMapping) {
	sort.Slice(ms, func(i, j int) bool {
		if ms[i].Confidence != ms[j].Confidence {
			return ms[i].Confidence > ms[j].Confidence
		}
		if ms[i].TopicID != ms[j].TopicID {
			return ms[i].TopicID < ms[j].TopicID
		}
		return ms[i].Role < ms[j].Role
	})
}
