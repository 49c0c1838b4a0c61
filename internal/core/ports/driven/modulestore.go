package driven

import (
	"context"

	"github.com/custodia-labs/mtm/internal/core/domain"
)

// ModuleStore persists modules and their version history.
type ModuleStore interface {
	// CreateModule stores a new module together with its first version entry.
	// Returns domain.ErrAlreadyExists if the ID is taken.
	CreateModule(ctx context.Context, module *domain.Module, initial domain.VersionEntry) error

	// GetModule retrieves a module by ID.
	GetModule(ctx context.Context, id string) (*domain.Module, error)

	// ListModules returns modules for a project, or all modules if project is empty.
	ListModules(ctx context.Context, project string) ([]domain.Module, error)

	// AppendVersion writes entry and updates the module in one transaction,
	// but only if the stored version still equals expected. Otherwise it
	// returns domain.ErrVersionConflict and writes nothing.
	AppendVersion(ctx context.Context, module *domain.Module, expected domain.Version, entry domain.VersionEntry) error

	// ListVersions returns a module's version entries, newest first.
	ListVersions(ctx context.Context, moduleID string) ([]domain.VersionEntry, error)
}
