package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/mtm/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/mtm/internal/core/domain"
	"github.com/custodia-labs/mtm/internal/core/ports/driven"
)

// DatabaseFile is the database file name inside the data directory.
const DatabaseFile = "mtm.db"

// Store is a unified SQLite-based storage that provides access to
// all store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.mtm/data/mtm.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".mtm", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// WAL mode lets readers proceed while a project's results are written.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SegmentStore returns a SegmentStore backed by this store.
func (s *Store) SegmentStore() driven.SegmentStore {
	return &segmentStore{store: s}
}

// ThemeStore returns a ThemeStore backed by this store.
func (s *Store) ThemeStore() driven.ThemeStore {
	return &themeStore{store: s}
}

// RoleMappingStore returns a RoleMappingStore backed by this store.
func (s *Store) RoleMappingStore() driven.RoleMappingStore {
	return &roleMappingStore{store: s}
}

// ModuleStore returns a ModuleStore backed by this store.
func (s *Store) ModuleStore() driven.ModuleStore {
	return &moduleStore{store: s}
}

// ExtractionStore returns an ExtractionStore backed by this store.
func (s *Store) ExtractionStore() driven.ExtractionStore {
	return &extractionStore{store: s}
}

// migrate runs all pending migrations from fsys.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.applyMigration(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) applyMigration(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// ==================== Segment Store ====================

// segmentStore implements driven.SegmentStore.
type segmentStore struct {
	store *Store
}

var _ driven.SegmentStore = (*segmentStore)(nil)

// SaveNote stores or updates a note.
func (s *segmentStore) SaveNote(ctx context.Context, note *domain.Note) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO notes (id, project, title, source_file, content, content_sha256, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			project = excluded.project,
			title = excluded.title,
			source_file = excluded.source_file,
			content = excluded.content,
			content_sha256 = excluded.content_sha256,
			date = excluded.date
	`, note.ID, note.Project, note.Title, note.SourceFile, note.Content,
		note.ContentSHA256, note.Date, note.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving note: %w", err)
	}
	return nil
}

// GetNote retrieves a note by ID.
func (s *segmentStore) GetNote(ctx context.Context, id string) (*domain.Note, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, project, title, source_file, content, content_sha256, date, created_at
		FROM notes WHERE id = ?
	`, id)
	return scanNote(row)
}

// FindNoteByHash returns the project's note with the given content digest.
func (s *segmentStore) FindNoteByHash(ctx context.Context, project, sha256 string) (*domain.Note, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, project, title, source_file, content, content_sha256, date, created_at
		FROM notes WHERE project = ? AND content_sha256 = ?
		ORDER BY rowid LIMIT 1
	`, project, sha256)
	return scanNote(row)
}

// SaveSegments upserts segments by ID in one transaction.
func (s *segmentStore) SaveSegments(ctx context.Context, segments []domain.Segment) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO segments (id, note_id, project, content, position, source_file, line_start, line_end, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			note_id = excluded.note_id,
			project = excluded.project,
			content = excluded.content,
			position = excluded.position,
			source_file = excluded.source_file,
			line_start = excluded.line_start,
			line_end = excluded.line_end
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, seg := range segments {
		if _, err := stmt.ExecContext(ctx, seg.ID, seg.NoteID, seg.Project, seg.Content, seg.Order,
			seg.SourceFile, seg.LineStart, seg.LineEnd, seg.CreatedAt); err != nil {
			return fmt.Errorf("saving segment %s: %w", seg.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetSegment retrieves a segment by ID.
func (s *segmentStore) GetSegment(ctx context.Context, id string) (*domain.Segment, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, note_id, project, content, position, source_file, line_start, line_end, created_at
		FROM segments WHERE id = ?
	`, id)
	if err != nil {
		return nil, fmt.Errorf("querying segment: %w", err)
	}
	segs, err := scanSegments(rows)
	if err != nil {
		return nil, err
	}
	if len(segs) == 0 {
		return nil, domain.ErrNotFound
	}
	return &segs[0], nil
}

// ListSegments returns segments in insertion order.
func (s *segmentStore) ListSegments(ctx context.Context, project string) ([]domain.Segment, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, note_id, project, content, position, source_file, line_start, line_end, created_at
		FROM segments WHERE (? = '' OR project = ?)
		ORDER BY rowid
	`, project, project)
	if err != nil {
		return nil, fmt.Errorf("querying segments: %w", err)
	}
	return scanSegments(rows)
}

// ListProjects returns the distinct projects that have segments, sorted.
func (s *segmentStore) ListProjects(ctx context.Context) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx, "SELECT DISTINCT project FROM segments ORDER BY project")
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	var projects []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return projects, nil
}

// ==================== Theme Store ====================

// themeStore implements driven.ThemeStore.
type themeStore struct {
	store *Store
}

var _ driven.ThemeStore = (*themeStore)(nil)

// SaveThemes stores themes in one transaction.
func (s *themeStore) SaveThemes(ctx context.Context, themes []domain.Theme) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO themes (id, project, name, description, keywords, support_count, segment_ids, note_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			project = excluded.project,
			name = excluded.name,
			description = excluded.description,
			keywords = excluded.keywords,
			support_count = excluded.support_count,
			segment_ids = excluded.segment_ids,
			note_id = excluded.note_id
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, th := range themes {
		keywords, err := marshalStrings(th.Keywords)
		if err != nil {
			return fmt.Errorf("marshalling keywords: %w", err)
		}
		segmentIDs, err := marshalStrings(th.SegmentIDs)
		if err != nil {
			return fmt.Errorf("marshalling segment ids: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, th.ID, th.Project, th.Name, th.Description, keywords,
			th.SupportCount, segmentIDs, nullString(th.NoteID), th.CreatedAt); err != nil {
			return fmt.Errorf("saving theme %s: %w", th.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetTheme retrieves a theme by ID.
func (s *themeStore) GetTheme(ctx context.Context, id string) (*domain.Theme, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, project, name, description, keywords, support_count, segment_ids, note_id, created_at
		FROM themes WHERE id = ?
	`, id)
	if err != nil {
		return nil, fmt.Errorf("querying theme: %w", err)
	}
	themes, err := scanThemes(rows)
	if err != nil {
		return nil, err
	}
	if len(themes) == 0 {
		return nil, domain.ErrNotFound
	}
	return &themes[0], nil
}

// ListThemes returns themes in insertion order.
func (s *themeStore) ListThemes(ctx context.Context, project string) ([]domain.Theme, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, project, name, description, keywords, support_count, segment_ids, note_id, created_at
		FROM themes WHERE (? = '' OR project = ?)
		ORDER BY rowid
	`, project, project)
	if err != nil {
		return nil, fmt.Errorf("querying themes: %w", err)
	}
	return scanThemes(rows)
}

// ==================== Helpers ====================

func scanNote(row *sql.Row) (*domain.Note, error) {
	var note domain.Note
	var date sql.NullTime

	if err := row.Scan(&note.ID, &note.Project, &note.Title, &note.SourceFile, &note.Content,
		&note.ContentSHA256, &date, &note.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning note: %w", err)
	}
	if date.Valid {
		note.Date = date.Time
	}
	return &note, nil
}

func scanSegments(rows *sql.Rows) ([]domain.Segment, error) {
	defer rows.Close()

	var segs []domain.Segment //nolint:prealloc // size unknown from query
	for rows.Next() {
		var seg domain.Segment
		if err := rows.Scan(&seg.ID, &seg.NoteID, &seg.Project, &seg.Content, &seg.Order,
			&seg.SourceFile, &seg.LineStart, &seg.LineEnd, &seg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning segment: %w", err)
		}
		segs = append(segs, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating segments: %w", err)
	}
	return segs, nil
}

func scanThemes(rows *sql.Rows) ([]domain.Theme, error) {
	defer rows.Close()

	var themes []domain.Theme //nolint:prealloc // size unknown from query
	for rows.Next() {
		var th domain.Theme
		var keywords, segmentIDs string
		var noteID sql.NullString

		if err := rows.Scan(&th.ID, &th.Project, &th.Name, &th.Description, &keywords,
			&th.SupportCount, &segmentIDs, &noteID, &th.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning theme: %w", err)
		}
		if err := json.Unmarshal([]byte(keywords), &th.Keywords); err != nil {
			return nil, fmt.Errorf("unmarshalling keywords: %w", err)
		}
		if err := json.Unmarshal([]byte(segmentIDs), &th.SegmentIDs); err != nil {
			return nil, fmt.Errorf("unmarshalling segment ids: %w", err)
		}
		th.NoteID = noteID.String
		themes = append(themes, th)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating themes: %w", err)
	}
	return themes, nil
}

// marshalStrings encodes a string list as a JSON array, never "null".
func marshalStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	return string(data), err
}

// nullString maps "" to SQL NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
