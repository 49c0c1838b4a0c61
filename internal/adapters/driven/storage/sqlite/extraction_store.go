package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/mtm/internal/core/domain"
	"github.com/custodia-labs/mtm/internal/core/ports/driven"
)

// extractionStore implements driven.ExtractionStore.
// Each row keeps its kind as a discriminator; the payload is the JSON of the
// concrete record and is decoded back into that type.
type extractionStore struct {
	store *Store
}

var _ driven.ExtractionStore = (*extractionStore)(nil)

// SaveExtractions upserts records by ID in one transaction.
func (s *extractionStore) SaveExtractions(ctx context.Context, records []domain.Extraction) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO extractions (id, kind, project, note_id, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			project = excluded.project,
			note_id = excluded.note_id,
			payload = excluded.payload
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		payload, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshalling %s: %w", r.Kind(), err)
		}
		base := r.Base()
		if _, err := stmt.ExecContext(ctx, base.ID, string(r.Kind()), base.Provenance.Project,
			base.Provenance.NoteID, string(payload), base.CreatedAt); err != nil {
			return fmt.Errorf("saving extraction %s: %w", base.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ListExtractions returns matching records in insertion order.
func (s *extractionStore) ListExtractions(ctx context.Context, project string, kind domain.ExtractionKind) ([]domain.Extraction, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT kind, payload FROM extractions
		WHERE (? = '' OR project = ?) AND (? = '' OR kind = ?)
		ORDER BY rowid
	`, project, project, string(kind), string(kind))
	if err != nil {
		return nil, fmt.Errorf("querying extractions: %w", err)
	}
	defer rows.Close()

	var records []domain.Extraction //nolint:prealloc // size unknown from query
	for rows.Next() {
		var k, payload string
		if err := rows.Scan(&k, &payload); err != nil {
			return nil, fmt.Errorf("scanning extraction: %w", err)
		}
		r, err := decodeExtraction(domain.ExtractionKind(k), []byte(payload))
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating extractions: %w", err)
	}
	return records, nil
}

func decodeExtraction(kind domain.ExtractionKind, payload []byte) (domain.Extraction, error) {
	var r domain.Extraction
	switch kind {
	case domain.KindStep:
		r = &domain.Step{}
	case domain.KindDefinition:
		r = &domain.Definition{}
	case domain.KindFAQ:
		r = &domain.FAQ{}
	case domain.KindDecision:
		r = &domain.Decision{}
	case domain.KindAction:
		r = &domain.Action{}
	default:
		return nil, fmt.Errorf("%w: extraction kind %q", domain.ErrUnsupportedType, kind)
	}
	if err := json.Unmarshal(payload, r); err != nil {
		return nil, fmt.Errorf("unmarshalling %s: %w", kind, err)
	}
	return r, nil
}
