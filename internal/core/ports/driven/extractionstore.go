package driven

import (
	"context"

	"github.com/custodia-labs/mtm/internal/core/domain"
)

// ExtractionStore persists typed fact records.
type ExtractionStore interface {
	// SaveExtractions upserts records by ID.
	SaveExtractions(ctx context.Context, records []domain.Extraction) error

	// ListExtractions returns records for a project in insertion order.
	// An empty kind returns every kind; an empty project returns every project.
	ListExtractions(ctx context.Context, project string, kind domain.ExtractionKind) ([]domain.Extraction, error)
}
