package driven

import (
	"context"

	"github.com/custodia-labs/mtm/internal/core/domain"
)

// RoleMappingStore persists topic-to-role associations.
// At most one mapping exists per (topic, role).
type RoleMappingStore interface {
	// UpsertIfHigher inserts the mapping if none exists for its (TopicID, Role).
	// An existing mapping is only overwritten when the new confidence is
	// strictly higher; the stored ID and CreatedAt are preserved.
	UpsertIfHigher(ctx context.Context, mapping domain.RoleMapping) (domain.UpsertOutcome, error)

	// ListByTopic returns a topic's mappings, highest confidence first.
	ListByTopic(ctx context.Context, topicID string) ([]domain.RoleMapping, error)

	// ListByProject returns every mapping for a project, highest confidence first.
	ListByProject(ctx context.Context, project string) ([]domain.RoleMapping, error)
}
