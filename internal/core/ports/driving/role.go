package driving

import (
	"context"

	"github.com/custodia-labs/mtm/internal/core/domain"
)

// RoleService maps segments and themes onto the role taxonomy.
type RoleService interface {
	// MapSegments scores every segment of a project and persists the results.
	// Returns segment ID to scores for segments with at least one role.
	MapSegments(ctx context.Context, project string) (map[string][]domain.RoleScore, error)

	// MapThemes scores every theme's keyword text and persists the results.
	MapThemes(ctx context.Context, project string) (map[string][]domain.RoleScore, error)

	// Persist writes scores for one topic with upsert-if-higher semantics.
	Persist(ctx context.Context, topicID, project string, scores []domain.RoleScore) ([]domain.UpsertOutcome, error)

	// ListForTopic returns the stored mappings for a topic.
	// Returns domain.ErrNotFound if the topic has none.
	ListForTopic(ctx context.Context, topicID string) ([]domain.RoleMapping, error)

	// Taxonomy returns the loaded taxonomy.
	Taxonomy(ctx context.Context) (domain.Taxonomy, error)
}
