// Package plaintext normalises plain text meeting notes.
package plaintext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/mtm/internal/core/domain"
	"github.com/custodia-labs/mtm/internal/core/ports/driven"
	"github.com/custodia-labs/mtm/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text notes.
type Normaliser struct {
	now func() time.Time
}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{now: time.Now}
}

// SupportedExtensions returns the file extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".txt"}
}

// Normalise converts a text file to a Note. A YAML header is honoured the
// same way as for markdown; the title otherwise comes from the file name.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawNote) (*domain.Note, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fm, body, err := normalisers.SplitFrontmatter(raw.Content)
	if err != nil {
		return nil, err
	}

	title := fm.TitleOf()
	if title == "" {
		title = normalisers.TitleFromPath(raw.Path)
	}

	return &domain.Note{
		ID:            uuid.New().String(),
		Project:       normalisers.ResolveProject(fm, raw),
		Title:         title,
		SourceFile:    raw.Path,
		Content:       strings.TrimSpace(body),
		ContentSHA256: normalisers.HashContent(raw.Content),
		Date:          normalisers.ResolveDate(fm, raw),
		CreatedAt:     n.now(),
	}, nil
}
