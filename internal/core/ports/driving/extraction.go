package driving

import (
	"context"

	"github.com/custodia-labs/mtm/internal/core/domain"
)

// ExtractionService pulls typed facts out of a project's segments.
type ExtractionService interface {
	// ExtractProject runs every extractor over each segment and stores the records.
	ExtractProject(ctx context.Context, project string) (*ExtractionReport, error)

	// List returns stored records, optionally filtered by kind.
	List(ctx context.Context, project string, kind domain.ExtractionKind) ([]domain.Extraction, error)
}

// ExtractionReport summarises one extraction run.
type ExtractionReport struct {
	Project  string
	Segments int
	Counts   map[domain.ExtractionKind]int
}
