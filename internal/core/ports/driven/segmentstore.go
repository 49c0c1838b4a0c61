package driven

import (
	"context"

	"github.com/custodia-labs/mtm/internal/core/domain"
)

// SegmentStore persists notes and their segments.
type SegmentStore interface {
	// SaveNote stores or updates a note.
	SaveNote(ctx context.Context, note *domain.Note) error

	// GetNote retrieves a note by ID.
	GetNote(ctx context.Context, id string) (*domain.Note, error)

	// FindNoteByHash returns the note whose content has the given SHA-256 digest.
	// Returns domain.ErrNotFound if no such note exists.
	FindNoteByHash(ctx context.Context, project, sha256 string) (*domain.Note, error)

	// SaveSegments upserts segments by ID.
	SaveSegments(ctx context.Context, segments []domain.Segment) error

	// GetSegment retrieves a segment by ID.
	GetSegment(ctx context.Context, id string) (*domain.Segment, error)

	// ListSegments returns segments in insertion order.
	// An empty project returns segments from every project.
	ListSegments(ctx context.Context, project string) ([]domain.Segment, error)

	// ListProjects returns the distinct projects that have segments, sorted.
	ListProjects(ctx context.Context) ([]string, error)
}
