package driven

import (
	"context"

	"github.com/custodia-labs/mtm/internal/core/domain"
)

// Normaliser turns a raw note file into a Note.
// Implementations pick the title, meeting date and project from the file,
// and strip any front matter from the content.
type Normaliser interface {
	// SupportedExtensions returns lower-case file extensions including the dot.
	SupportedExtensions() []string

	// Normalise converts the raw file. The returned note has an ID and hash set.
	Normalise(ctx context.Context, raw *domain.RawNote) (*domain.Note, error)
}
