package driven

import (
	"context"

	"github.com/custodia-labs/mtm/internal/core/domain"
)

// Segmenter splits a note into ordered segments.
type Segmenter interface {
	// Segment returns the note's segments without IDs assigned.
	Segment(ctx context.Context, note *domain.Note) ([]domain.Segment, error)
}

// Extractor pulls one kind of fact out of segment text.
// Extractors are chained in a pipeline, one per kind.
type Extractor interface {
	// Name returns the extractor name for logging and configuration.
	Name() string

	// Kind returns the record kind this extractor produces.
	Kind() domain.ExtractionKind

	// Extract returns records found in text. Each record carries prov.
	Extract(ctx context.Context, text string, prov domain.Provenance) ([]domain.Extraction, error)
}

// ExtractorPipeline runs every registered extractor over a segment.
type ExtractorPipeline interface {
	// Extract returns the combined records of every extractor, in registration order.
	Extract(ctx context.Context, text string, prov domain.Provenance) ([]domain.Extraction, error)
}
