package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/mtm/internal/core/domain"
	"github.com/custodia-labs/mtm/internal/core/ports/driven"
)

// moduleStore implements driven.ModuleStore.
type moduleStore struct {
	store *Store
}

var _ driven.ModuleStore = (*moduleStore)(nil)

// refsRecord is the JSON shape of a module's reference sets.
type refsRecord struct {
	Themes      []string `json:"themes"`
	Steps       []string `json:"steps"`
	Definitions []string `json:"definitions"`
	FAQs        []string `json:"faqs"`
	Decisions   []string `json:"decisions"`
	Actions     []string `json:"actions"`
}

// CreateModule stores a module and its first version entry atomically.
func (s *moduleStore) CreateModule(ctx context.Context, module *domain.Module, initial domain.VersionEntry) error {
	refs, err := json.Marshal(refsRecord(module.Refs))
	if err != nil {
		return fmt.Errorf("marshalling references: %w", err)
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM modules WHERE id = ?", module.ID).Scan(&exists); err != nil {
		return fmt.Errorf("checking module: %w", err)
	}
	if exists > 0 {
		return domain.ErrAlreadyExists
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO modules (id, project, title, description, module_type, content, refs, version, note_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, module.ID, module.Project, module.Title, module.Description, string(module.Type), module.Content,
		string(refs), int(module.Version), nullString(module.NoteID), module.CreatedAt, module.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving module: %w", err)
	}

	if err := insertVersion(ctx, tx, initial); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetModule retrieves a module by ID.
func (s *moduleStore) GetModule(ctx context.Context, id string) (*domain.Module, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, project, title, description, module_type, content, refs, version, note_id, created_at, updated_at
		FROM modules WHERE id = ?
	`, id)
	if err != nil {
		return nil, fmt.Errorf("querying module: %w", err)
	}
	modules, err := scanModules(rows)
	if err != nil {
		return nil, err
	}
	if len(modules) == 0 {
		return nil, domain.ErrNotFound
	}
	return &modules[0], nil
}

// ListModules returns modules in creation order.
func (s *moduleStore) ListModules(ctx context.Context, project string) ([]domain.Module, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, project, title, description, module_type, content, refs, version, note_id, created_at, updated_at
		FROM modules WHERE (? = '' OR project = ?)
		ORDER BY rowid
	`, project, project)
	if err != nil {
		return nil, fmt.Errorf("querying modules: %w", err)
	}
	return scanModules(rows)
}

// AppendVersion updates the module only if its stored version equals
// expected, and appends entry in the same transaction.
func (s *moduleStore) AppendVersion(ctx context.Context, module *domain.Module, expected domain.Version, entry domain.VersionEntry) error {
	refs, err := json.Marshal(refsRecord(module.Refs))
	if err != nil {
		return fmt.Errorf("marshalling references: %w", err)
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `
		UPDATE modules SET
			title = ?, description = ?, module_type = ?, content = ?, refs = ?,
			version = ?, updated_at = ?
		WHERE id = ? AND version = ?
	`, module.Title, module.Description, string(module.Type), module.Content, string(refs),
		int(module.Version), module.UpdatedAt, module.ID, int(expected))
	if err != nil {
		return fmt.Errorf("updating module: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update: %w", err)
	}
	if n == 0 {
		var exists int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM modules WHERE id = ?", module.ID).Scan(&exists); err != nil {
			return fmt.Errorf("checking module: %w", err)
		}
		if exists == 0 {
			return domain.ErrNotFound
		}
		return domain.ErrVersionConflict
	}

	if err := insertVersion(ctx, tx, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ListVersions returns a module's history, newest first.
func (s *moduleStore) ListVersions(ctx context.Context, moduleID string) ([]domain.VersionEntry, error) {
	if _, err := s.GetModule(ctx, moduleID); err != nil {
		return nil, err
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, module_id, version, change_type, project, title, description, content, changes, author, created_at
		FROM versions WHERE module_id = ?
		ORDER BY version DESC, rowid DESC
	`, moduleID)
	if err != nil {
		return nil, fmt.Errorf("querying versions: %w", err)
	}
	defer rows.Close()

	var entries []domain.VersionEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		var e domain.VersionEntry
		var version int
		var change string
		if err := rows.Scan(&e.ID, &e.ModuleID, &version, &change, &e.Project, &e.Title,
			&e.Description, &e.Content, &e.Changes, &e.Author, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning version: %w", err)
		}
		e.Version = domain.Version(version)
		e.Change = domain.ChangeType(change)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating versions: %w", err)
	}
	return entries, nil
}

func insertVersion(ctx context.Context, tx *sql.Tx, e domain.VersionEntry) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO versions (id, module_id, version, change_type, project, title, description, content, changes, author, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.ModuleID, int(e.Version), string(e.Change), e.Project, e.Title, e.Description,
		e.Content, e.Changes, e.Author, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving version entry: %w", err)
	}
	return nil
}

func scanModules(rows *sql.Rows) ([]domain.Module, error) {
	defer rows.Close()

	var modules []domain.Module //nolint:prealloc // size unknown from query
	for rows.Next() {
		var m domain.Module
		var moduleType, refs string
		var version int
		var noteID sql.NullString

		if err := rows.Scan(&m.ID, &m.Project, &m.Title, &m.Description, &moduleType, &m.Content,
			&refs, &version, &noteID, &m.CreatedAt, &m.UpdatedAt); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, domain.ErrNotFound
			}
			return nil, fmt.Errorf("scanning module: %w", err)
		}

		var rec refsRecord
		if err := json.Unmarshal([]byte(refs), &rec); err != nil {
			return nil, fmt.Errorf("unmarshalling references: %w", err)
		}
		m.Refs = domain.References(rec)
		m.Type = domain.ModuleType(moduleType)
		m.Version = domain.Version(version)
		m.NoteID = noteID.String
		modules = append(modules, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating modules: %w", err)
	}
	return modules, nil
}
