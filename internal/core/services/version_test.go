package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mtm/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/mtm/internal/core/domain"
	"github.com/custodia-labs/mtm/internal/metrics"
)

func tutorialModule() *domain.Module {
	return &domain.Module{
		ID:      "mod-1",
		Project: "apollo",
		Snapshot: domain.Snapshot{
			Title:       "Deploying Apollo",
			Description: "How releases go out",
			Type:        domain.ModuleTutorial,
			Content:     "Step one.",
			Refs: domain.References{
				Themes: []string{"theme-1"},
				Steps:  []string{"step-1", "step-2"},
			},
		},
	}
}

func newVersionTestService(t *testing.T) *VersionService {
	t.Helper()
	service := NewVersionService(memory.NewModuleStore())
	service.now = func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) }
	_, err := service.CreateModule(context.Background(), tutorialModule(), "alice")
	require.NoError(t, err)
	return service
}

func TestVersionService_CreateModule(t *testing.T) {
	service := newVersionTestService(t)
	ctx := context.Background()

	module, err := service.Get(ctx, "mod-1")
	require.NoError(t, err)
	assert.Equal(t, domain.InitialVersion, module.Version)
	assert.Equal(t, "1.0.0", module.Version.String())

	history, err := service.History(ctx, "mod-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Initial version", history[0].Changes)
	assert.Equal(t, "alice", history[0].Author)
	assert.Equal(t, "Deploying Apollo", history[0].Title)
}

func TestVersionService_CreateModule_Defaults(t *testing.T) {
	service := NewVersionService(memory.NewModuleStore())

	module, err := service.CreateModule(context.Background(), &domain.Module{
		Snapshot: domain.Snapshot{Title: "FAQ", Type: domain.ModuleFAQ},
	}, "")
	require.NoError(t, err)
	assert.NotEmpty(t, module.ID)
	assert.Equal(t, domain.DefaultProject, module.Project)
}

func TestVersionService_CreateModule_Validation(t *testing.T) {
	service := NewVersionService(memory.NewModuleStore())
	ctx := context.Background()

	_, err := service.CreateModule(ctx, nil, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = service.CreateModule(ctx, &domain.Module{Snapshot: domain.Snapshot{Title: "x", Type: "slides"}}, "")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	_, err = service.CreateModule(ctx, &domain.Module{Snapshot: domain.Snapshot{Title: "  ", Type: domain.ModuleFAQ}}, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = service.CreateModule(ctx, tutorialModule(), "")
	require.NoError(t, err)
	_, err = service.CreateModule(ctx, tutorialModule(), "")
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestVersionService_Update_Classification(t *testing.T) {
	base := tutorialModule().Snapshot

	tests := []struct {
		name    string
		mutate  func(s *domain.Snapshot)
		change  domain.ChangeType
		version string
	}{
		{"content edit is patch", func(s *domain.Snapshot) { s.Content = "Step one, revised." }, domain.ChangePatch, "1.0.1"},
		{"description edit is patch", func(s *domain.Snapshot) { s.Description = "New blurb" }, domain.ChangePatch, "1.0.1"},
		{"added step is minor", func(s *domain.Snapshot) { s.Refs.Steps = []string{"step-1", "step-2", "step-3"} }, domain.ChangeMinor, "1.1.0"},
		{"title change is minor", func(s *domain.Snapshot) { s.Title = "Shipping Apollo" }, domain.ChangeMinor, "1.1.0"},
		{"removed theme is major", func(s *domain.Snapshot) { s.Refs.Themes = nil }, domain.ChangeMajor, "2.0.0"},
		{"type change is major", func(s *domain.Snapshot) { s.Type = domain.ModuleHowTo }, domain.ChangeMajor, "2.0.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := newVersionTestService(t)
			next := base
			next.Refs.Themes = append([]string(nil), base.Refs.Themes...)
			next.Refs.Steps = append([]string(nil), base.Refs.Steps...)
			tt.mutate(&next)

			entry, err := service.Update(context.Background(), "mod-1", next, tt.name, "bob")
			require.NoError(t, err)
			assert.Equal(t, tt.change, entry.Change)
			assert.Equal(t, tt.version, entry.Version.String())

			module, err := service.Get(context.Background(), "mod-1")
			require.NoError(t, err)
			assert.Equal(t, entry.Version, module.Version)
			assert.Equal(t, next.Title, module.Title)
		})
	}
}

func TestVersionService_Update_Sequence(t *testing.T) {
	service := newVersionTestService(t)
	ctx := context.Background()
	next := tutorialModule().Snapshot

	next.Content = "v2"
	_, err := service.Update(ctx, "mod-1", next, "typo", "bob")
	require.NoError(t, err)

	next.Refs.FAQs = []string{"faq-1"}
	_, err = service.Update(ctx, "mod-1", next, "add faq", "bob")
	require.NoError(t, err)

	next.Content = "v3"
	entry, err := service.Update(ctx, "mod-1", next, "wording", "bob")
	require.NoError(t, err)
	assert.Equal(t, "1.1.1", entry.Version.String())

	history, err := service.History(ctx, "mod-1")
	require.NoError(t, err)
	versions := make([]string, len(history))
	for i, e := range history {
		versions[i] = e.Version.String()
	}
	assert.Equal(t, []string{"1.1.1", "1.1.0", "1.0.1", "1.0.0"}, versions)
}

func TestVersionService_Update_Overflow(t *testing.T) {
	service := newVersionTestService(t)
	ctx := context.Background()
	next := tutorialModule().Snapshot

	for i := 1; i <= domain.MaxVersionComponent; i++ {
		next.Content = fmt.Sprintf("edit %d", i)
		_, err := service.Update(ctx, "mod-1", next, "edit", "bob")
		require.NoError(t, err)
	}

	next.Content = "one too many"
	_, err := service.Update(ctx, "mod-1", next, "edit", "bob")
	assert.ErrorIs(t, err, domain.ErrVersionOverflow)

	module, err := service.Get(ctx, "mod-1")
	require.NoError(t, err)
	assert.Equal(t, "1.0.99", module.Version.String())
}

func TestVersionService_Update_Validation(t *testing.T) {
	service := newVersionTestService(t)
	ctx := context.Background()

	_, err := service.Update(ctx, "missing", tutorialModule().Snapshot, "", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	bad := tutorialModule().Snapshot
	bad.Type = "slides"
	_, err = service.Update(ctx, "mod-1", bad, "", "")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestVersionService_Update_Concurrent(t *testing.T) {
	service := newVersionTestService(t)
	ctx := context.Background()

	const writers = 10
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			next := tutorialModule().Snapshot
			next.Content = fmt.Sprintf("writer %d", i)
			_, err := service.Update(ctx, "mod-1", next, "edit", "bot")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	history, err := service.History(ctx, "mod-1")
	require.NoError(t, err)
	require.Len(t, history, writers+1)

	seen := make(map[domain.Version]bool)
	for _, e := range history {
		assert.False(t, seen[e.Version], "duplicate version %s", e.Version)
		seen[e.Version] = true
	}
	assert.Equal(t, "1.0.10", history[0].Version.String())
}

// conflictingStore moves the stored version before every append.
type conflictingStore struct {
	*memory.ModuleStore
}

func (s conflictingStore) AppendVersion(ctx context.Context, module *domain.Module, _ domain.Version, entry domain.VersionEntry) error {
	return s.ModuleStore.AppendVersion(ctx, module, module.Version+1, entry)
}

func TestVersionService_Update_Conflict(t *testing.T) {
	service := NewVersionService(conflictingStore{memory.NewModuleStore()})
	ctx := context.Background()
	_, err := service.CreateModule(ctx, tutorialModule(), "")
	require.NoError(t, err)

	before := testutil.ToFloat64(metrics.VersionConflicts)
	next := tutorialModule().Snapshot
	next.Content = "changed"
	_, err = service.Update(ctx, "mod-1", next, "edit", "")
	assert.ErrorIs(t, err, domain.ErrVersionConflict)
	assert.InDelta(t, before+1, testutil.ToFloat64(metrics.VersionConflicts), 1e-9)

	history, err := service.History(ctx, "mod-1")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestVersionService_Changelog(t *testing.T) {
	service := newVersionTestService(t)
	ctx := context.Background()

	next := tutorialModule().Snapshot
	next.Refs.Steps = append(next.Refs.Steps, "step-3")
	_, err := service.Update(ctx, "mod-1", next, "Added rollback step", "bob")
	require.NoError(t, err)

	changelog, err := service.Changelog(ctx, "mod-1")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(changelog, "# Changelog - Deploying Apollo\n"))
	assert.Contains(t, changelog, "**Project:** apollo")
	assert.Contains(t, changelog, "**Module ID:** `mod-1`")
	assert.Contains(t, changelog, "**Date:** 2024-05-01T09:30:00Z")
	assert.Contains(t, changelog, "**Created by:** bob")
	assert.Contains(t, changelog, "**Changes:** Added rollback step")
	assert.Contains(t, changelog, "*How releases go out*")

	newer := strings.Index(changelog, "### Version 1.1.0")
	older := strings.Index(changelog, "### Version 1.0.0")
	require.NotEqual(t, -1, newer)
	require.NotEqual(t, -1, older)
	assert.Less(t, newer, older)

	_, err = service.Changelog(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
