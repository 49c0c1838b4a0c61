package driving

import (
	"context"

	"github.com/custodia-labs/mtm/internal/core/domain"
)

// VersionService manages modules and their semantic version history.
type VersionService interface {
	// CreateModule stores a module at 1.0.0 with an initial history entry.
	CreateModule(ctx context.Context, module *domain.Module, author string) (*domain.Module, error)

	// Update classifies the change from the module's current snapshot to
	// next, bumps the version and appends an immutable history entry.
	Update(ctx context.Context, moduleID string, next domain.Snapshot, changes, author string) (*domain.VersionEntry, error)

	// Get retrieves a module by ID.
	Get(ctx context.Context, moduleID string) (*domain.Module, error)

	// List returns modules for a project ("" for all).
	List(ctx context.Context, project string) ([]domain.Module, error)

	// History returns version entries newest first.
	History(ctx context.Context, moduleID string) ([]domain.VersionEntry, error)

	// Changelog renders the history as Markdown.
	Changelog(ctx context.Context, moduleID string) (string, error)
}
