// Package markdown normalises Markdown meeting notes.
package markdown

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

// Normaliser handles Markdown notes with optional YAML front matter.
type Normaliser struct {
	now func() time.Time
}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{now: time.Now}
}

// SupportedExtensions returns the file extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".md", ".markdown"}
}

// Normalise converts a markdown file to a Note.
// The Content field is the body with front matter removed; markdown syntax is
// kept so the segmenter can see block structure.
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
		title = extractMarkdownTitle(body, raw.Path)
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

// extractMarkdownTitle extracts a title from the first H1 or falls back to filename.
func extractMarkdownTitle(content, path string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}
	return normalisers.TitleFromPath(path)
}
