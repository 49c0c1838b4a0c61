package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/mtm/internal/core/domain"
	"github.com/custodia-labs/mtm/internal/core/ports/driven"
	"github.com/custodia-labs/mtm/internal/core/ports/driving"
	"github.com/custodia-labs/mtm/internal/logger"
	"github.com/custodia-labs/mtm/internal/metrics"
	"github.com/custodia-labs/mtm/internal/roles"
)

// Ensure RoleService implements the interface.
var _ driving.RoleService = (*RoleService)(nil)

// RoleService scores topics against the role taxonomy and stores the mappings.
type RoleService struct {
	segments driven.SegmentStore
	themes   driven.ThemeStore
	mappings driven.RoleMappingStore
	loader   driven.TaxonomyLoader
	scorer   *roles.Scorer
	now      func() time.Time
}

// NewRoleService creates a role service configured from settings.
func NewRoleService(
	segments driven.SegmentStore,
	themes driven.ThemeStore,
	mappings driven.RoleMappingStore,
	loader driven.TaxonomyLoader,
	settings domain.AnalysisSettings,
) *RoleService {
	return &RoleService{
		segments: segments,
		themes:   themes,
		mappings: mappings,
		loader:   loader,
		scorer: roles.NewScorer(
			roles.WithThreshold(settings.FuzzyThreshold),
			roles.WithMinConfidence(settings.MinConfidence),
		),
		now: time.Now,
	}
}

// MapSegments scores and persists every segment of a project.
func (s *RoleService) MapSegments(ctx context.Context, project string) (map[string][]domain.RoleScore, error) {
	taxonomy, err := s.Taxonomy(ctx)
	if err != nil {
		return nil, err
	}
	result := make(map[string][]domain.RoleScore)
	if taxonomy.IsEmpty() {
		logger.Warn("role taxonomy is empty (%s), no roles mapped", taxonomy.Path)
		return result, nil
	}

	segments, err := s.segments.ListSegments(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}

	for _, seg := range segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		scores := s.scorer.Score(seg.Content, seg.Project, taxonomy)
		if len(scores) == 0 {
			continue
		}
		if _, err := s.Persist(ctx, seg.ID, seg.Project, scores); err != nil {
			return nil, err
		}
		result[seg.ID] = scores
	}

	logger.Info("mapped roles for %d of %d segments", len(result), len(segments))
	return result, nil
}

// MapThemes scores each theme's keywords as one text and persists the results.
func (s *RoleService) MapThemes(ctx context.Context, project string) (map[string][]domain.RoleScore, error) {
	taxonomy, err := s.Taxonomy(ctx)
	if err != nil {
		return nil, err
	}
	result := make(map[string][]domain.RoleScore)
	if taxonomy.IsEmpty() {
		logger.Warn("role taxonomy is empty (%s), no roles mapped", taxonomy.Path)
		return result, nil
	}

	themes, err := s.themes.ListThemes(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("list themes: %w", err)
	}

	for _, theme := range themes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		scores := s.scorer.Score(strings.Join(theme.Keywords, " "), theme.Project, taxonomy)
		if len(scores) == 0 {
			continue
		}
		if _, err := s.Persist(ctx, theme.ID, theme.Project, scores); err != nil {
			return nil, err
		}
		result[theme.ID] = scores
	}

	logger.Info("mapped roles for %d of %d themes", len(result), len(themes))
	return result, nil
}

// Persist upserts one mapping per score. An existing mapping only changes
// when the new confidence is strictly higher.
func (s *RoleService) Persist(ctx context.Context, topicID, project string, scores []domain.RoleScore) ([]domain.UpsertOutcome, error) {
	if topicID == "" {
		return nil, fmt.Errorf("%w: topic id is required", domain.ErrInvalidInput)
	}
	for _, score := range scores {
		if score.Role == "" {
			return nil, fmt.Errorf("%w: role name is required", domain.ErrInvalidInput)
		}
		if score.Confidence < 0 || score.Confidence > 100 {
			return nil, fmt.Errorf("%w: confidence %.2f outside [0, 100]", domain.ErrInvalidInput, score.Confidence)
		}
	}

	now := s.now()
	outcomes := make([]domain.UpsertOutcome, 0, len(scores))
	for _, score := range scores {
		outcome, err := s.mappings.UpsertIfHigher(ctx, domain.RoleMapping{
			ID:         uuid.New().String(),
			TopicID:    topicID,
			Role:       score.Role,
			Project:    project,
			Confidence: score.Confidence,
			CreatedAt:  now,
		})
		if err != nil {
			return nil, fmt.Errorf("upsert role %s for %s: %w", score.Role, topicID, err)
		}
		metrics.RoleMappingsWritten.WithLabelValues(string(outcome)).Inc()
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

// ListForTopic returns a topic's stored mappings, highest confidence first.
func (s *RoleService) ListForTopic(ctx context.Context, topicID string) ([]domain.RoleMapping, error) {
	mappings, err := s.mappings.ListByTopic(ctx, topicID)
	if err != nil {
		return nil, fmt.Errorf("list mappings: %w", err)
	}
	if len(mappings) == 0 {
		return nil, fmt.Errorf("%w: no role mappings for topic %s", domain.ErrNotFound, topicID)
	}
	return mappings, nil
}

// Taxonomy loads the role taxonomy. It is re-read on every call.
func (s *RoleService) Taxonomy(ctx context.Context) (domain.Taxonomy, error) {
	taxonomy, err := s.loader.Load(ctx)
	if err != nil {
		return domain.Taxonomy{}, fmt.Errorf("load taxonomy: %w", err)
	}
	return taxonomy, nil
}
