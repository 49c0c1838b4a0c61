package driven

import (
	"context"

	"github.com/custodia-labs/mtm/internal/core/domain"
)

// ThemeStore persists analysed themes.
type ThemeStore interface {
	// SaveThemes stores themes in one batch.
	SaveThemes(ctx context.Context, themes []domain.Theme) error

	// GetTheme retrieves a theme by ID.
	GetTheme(ctx context.Context, id string) (*domain.Theme, error)

	// ListThemes returns themes in insertion order.
	// An empty project returns themes from every project.
	ListThemes(ctx context.Context, project string) ([]domain.Theme, error)
}
