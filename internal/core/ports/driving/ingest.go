package driving

import (
	"context"

	"github.com/custodia-labs/mtm/internal/core/domain"
)

// IngestService loads note files into the corpus.
type IngestService interface {
	// IngestFile reads a .md or .txt note, splits it into segments and stores both.
	// Re-ingesting identical content returns the existing note.
	IngestFile(ctx context.Context, path, project string) (*IngestResult, error)

	// Supports reports whether path has an extension a normaliser handles.
	Supports(path string) bool
}

// IngestResult describes one ingested file.
type IngestResult struct {
	Note      *domain.Note
	Segments  int
	Duplicate bool
}
