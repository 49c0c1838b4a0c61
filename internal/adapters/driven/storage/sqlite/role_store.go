package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/mtm/internal/core/domain"
	"github.com/custodia-labs/mtm/internal/core/ports/driven"
)

// roleMappingStore implements driven.RoleMappingStore.
type roleMappingStore struct {
	store *Store
}

var _ driven.RoleMappingStore = (*roleMappingStore)(nil)

// UpsertIfHigher inserts the mapping, or raises an existing mapping's
// confidence. The WHERE clause on the conflict update keeps the rule in
// one statement, so concurrent writers can never lower a stored value.
func (s *roleMappingStore) UpsertIfHigher(ctx context.Context, m domain.RoleMapping) (domain.UpsertOutcome, error) {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var existing float64
	err = tx.QueryRowContext(ctx,
		"SELECT confidence FROM topic_role_map WHERE topic_id = ? AND role = ?",
		m.TopicID, m.Role).Scan(&existing)
	found := err == nil
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("reading role mapping: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO topic_role_map (id, topic_id, role, project, confidence, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(topic_id, role) DO UPDATE SET
			confidence = excluded.confidence
		WHERE excluded.confidence > topic_role_map.confidence
	`, m.ID, m.TopicID, m.Role, m.Project, m.Confidence, m.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("upserting role mapping: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing transaction: %w", err)
	}

	switch {
	case !found:
		return domain.UpsertInserted, nil
	case m.Confidence > existing:
		return domain.UpsertRaised, nil
	default:
		return domain.UpsertKept, nil
	}
}

// ListByTopic returns a topic's mappings, highest confidence first.
func (s *roleMappingStore) ListByTopic(ctx context.Context, topicID string) ([]domain.RoleMapping, error) {
	return s.query(ctx, `
		SELECT id, topic_id, role, project, confidence, created_at
		FROM topic_role_map WHERE topic_id = ?
		ORDER BY confidence DESC, topic_id, role
	`, topicID)
}

// ListByProject returns a project's mappings, highest confidence first.
func (s *roleMappingStore) ListByProject(ctx context.Context, project string) ([]domain.RoleMapping, error) {
	return s.query(ctx, `
		SELECT id, topic_id, role, project, confidence, created_at
		FROM topic_role_map WHERE project = ?
		ORDER BY confidence DESC, topic_id, role
	`, project)
}

func (s *roleMappingStore) query(ctx context.Context, query string, args ...any) ([]domain.RoleMapping, error) {
	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying role mappings: %w", err)
	}
	defer rows.Close()

	var mappings []domain.RoleMapping //nolint:prealloc // size unknown from query
	for rows.Next() {
		var m domain.RoleMapping
		if err := rows.Scan(&m.ID, &m.TopicID, &m.Role, &m.Project, &m.Confidence, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning role mapping: %w", err)
		}
		mappings = append(mappings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating role mappings: %w", err)
	}
	return mappings, nil
}
