package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/mtm/internal/core/domain"
	"github.com/custodia-labs/mtm/internal/core/ports/driven"
	"github.com/custodia-labs/mtm/internal/core/ports/driving"
	"github.com/custodia-labs/mtm/internal/logger"
	"github.com/custodia-labs/mtm/internal/metrics"
)

// Ensure VersionService implements the interface.
var _ driving.VersionService = (*VersionService)(nil)

// initialChanges is the change text of every module's first entry.
const initialChanges = "Initial version"

// VersionService manages modules and their version history.
type VersionService struct {
	store driven.ModuleStore
	now   func() time.Time

	// Updates to one module are serialised in-process; the store's
	// compare-and-swap covers other processes.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewVersionService creates a new version service.
func NewVersionService(store driven.ModuleStore) *VersionService {
	return &VersionService{
		store: store,
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}
}

// CreateModule stores module at 1.0.0 with an "Initial version" entry.
// An empty ID is generated and an empty project becomes the default project.
func (s *VersionService) CreateModule(ctx context.Context, module *domain.Module, author string) (*domain.Module, error) {
	if module == nil {
		return nil, fmt.Errorf("%w: module is required", domain.ErrInvalidInput)
	}
	if !module.Type.IsValid() {
		return nil, fmt.Errorf("%w: module type %q", domain.ErrUnsupportedType, module.Type)
	}
	if strings.TrimSpace(module.Title) == "" {
		return nil, fmt.Errorf("%w: module title is required", domain.ErrInvalidInput)
	}

	created := *module
	if created.ID == "" {
		created.ID = uuid.New().String()
	}
	if created.Project == "" {
		created.Project = domain.DefaultProject
	}
	now := s.now()
	created.Version = domain.InitialVersion
	created.CreatedAt = now
	created.UpdatedAt = now

	entry := s.entryFor(&created, domain.ChangeMajor, initialChanges, author, now)
	if err := s.store.CreateModule(ctx, &created, entry); err != nil {
		return nil, fmt.Errorf("create module %s: %w", created.ID, err)
	}
	metrics.VersionsCreated.WithLabelValues(domain.ChangeMajor.String()).Inc()

	logger.WithFields(logger.Fields{"module": created.ID, "project": created.Project}).
		Infof("created %s module %q at %s", created.Type, created.Title, created.Version)
	return &created, nil
}

// Update classifies the change from the stored snapshot to next, bumps the
// version and appends an immutable entry.
//
// Returns domain.ErrVersionOverflow if a component would pass 99 and
// domain.ErrVersionConflict if the stored version moved underneath.
func (s *VersionService) Update(ctx context.Context, moduleID string, next domain.Snapshot, changes, author string) (*domain.VersionEntry, error) {
	if !next.Type.IsValid() {
		return nil, fmt.Errorf("%w: module type %q", domain.ErrUnsupportedType, next.Type)
	}
	if strings.TrimSpace(next.Title) == "" {
		return nil, fmt.Errorf("%w: module title is required", domain.ErrInvalidInput)
	}

	lock := s.moduleLock(moduleID)
	lock.Lock()
	defer lock.Unlock()

	current, err := s.store.GetModule(ctx, moduleID)
	if err != nil {
		return nil, fmt.Errorf("get module %s: %w", moduleID, err)
	}

	change := domain.ClassifyChange(current.Snapshot, next)
	version, err := current.Version.Bump(change)
	if err != nil {
		return nil, fmt.Errorf("bump %s from %s: %w", change, current.Version, err)
	}

	expected := current.Version
	updated := *current
	updated.Snapshot = next
	updated.Version = version
	updated.UpdatedAt = s.now()

	entry := s.entryFor(&updated, change, changes, author, updated.UpdatedAt)
	if err := s.store.AppendVersion(ctx, &updated, expected, entry); err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			metrics.VersionConflicts.Inc()
		}
		return nil, fmt.Errorf("append version %s to %s: %w", version, moduleID, err)
	}
	metrics.VersionsCreated.WithLabelValues(change.String()).Inc()

	logger.Debug("module %s: %s change, %s -> %s", moduleID, change, expected, version)
	return &entry, nil
}

// Get retrieves a module by ID.
func (s *VersionService) Get(ctx context.Context, moduleID string) (*domain.Module, error) {
	module, err := s.store.GetModule(ctx, moduleID)
	if err != nil {
		return nil, fmt.Errorf("get module %s: %w", moduleID, err)
	}
	return module, nil
}

// List returns modules for a project ("" for all).
func (s *VersionService) List(ctx context.Context, project string) ([]domain.Module, error) {
	modules, err := s.store.ListModules(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	return modules, nil
}

// History returns version entries newest first.
func (s *VersionService) History(ctx context.Context, moduleID string) ([]domain.VersionEntry, error) {
	history, err := s.store.ListVersions(ctx, moduleID)
	if err != nil {
		return nil, fmt.Errorf("list versions of %s: %w", moduleID, err)
	}
	return history, nil
}

// Changelog renders a module's history as Markdown, newest version first.
func (s *VersionService) Changelog(ctx context.Context, moduleID string) (string, error) {
	module, err := s.Get(ctx, moduleID)
	if err != nil {
		return "", err
	}
	history, err := s.History(ctx, moduleID)
	if err != nil {
		return "", err
	}

	lines := []string{
		"# Changelog - " + orDefault(module.Title, "Untitled"),
		"",
		"**Project:** " + orDefault(module.Project, domain.DefaultProject),
		"**Module ID:** `" + module.ID + "`",
		"",
		"## Versions",
		"",
	}
	for _, entry := range history {
		lines = append(lines,
			"### Version "+entry.Version.String(),
			"",
			"**Date:** "+entry.CreatedAt.UTC().Format(time.RFC3339),
		)
		if entry.Author != "" {
			lines = append(lines, "**Created by:** "+entry.Author)
		}
		lines = append(lines, "", "**Changes:** "+orDefault(entry.Changes, "No description"), "")
		if entry.Description != "" {
			lines = append(lines, "*"+entry.Description+"*", "")
		}
	}
	return strings.Join(lines, "\n"), nil
}

func (s *VersionService) entryFor(module *domain.Module, change domain.ChangeType, changes, author string, at time.Time) domain.VersionEntry {
	return domain.VersionEntry{
		ID:          uuid.New().String(),
		ModuleID:    module.ID,
		Version:     module.Version,
		Change:      change,
		Project:     module.Project,
		Title:       module.Title,
		Description: module.Description,
		Content:     module.Content,
		Changes:     changes,
		Author:      author,
		CreatedAt:   at,
	}
}

func (s *VersionService) moduleLock(moduleID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[moduleID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[moduleID] = lock
	}
	return lock
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
