package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mtm/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/mtm/internal/core/domain"
)

func TestSettingsService_Analysis_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	settings, err := service.Analysis()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAnalysisSettings(), settings)
	assert.Equal(t, service.GetDefaults(), settings)
}

func TestSettingsService_Analysis_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		"mtm.kmeans_k":                 int64(4),
		"mtm.min_theme_support":        int64(2),
		"mtm.min_confidence":           65.5,
		"mtm.fuzzy_threshold":          int64(75),
		"mtm.project":                  "apollo",
		"mtm.role_taxonomy":            "/etc/roles.yaml",
		"mtm.analysis_timeout_seconds": int64(0),
		"mtm.seed":                     int64(7),
	})

	settings, err := NewSettingsService(store).Analysis()
	require.NoError(t, err)

	assert.Equal(t, 4, settings.KMeansK)
	assert.Equal(t, 2, settings.MinThemeSupport)
	assert.InDelta(t, 65.5, settings.MinConfidence, 1e-9)
	assert.InDelta(t, 75.0, settings.FuzzyThreshold, 1e-9)
	assert.Equal(t, "apollo", settings.Project)
	assert.Equal(t, "/etc/roles.yaml", settings.TaxonomyPath)
	assert.Equal(t, time.Duration(0), settings.Timeout)
	assert.Equal(t, int64(7), settings.Seed)
}

func TestSettingsService_Analysis_Invalid(t *testing.T) {
	tests := map[string]any{
		"mtm.kmeans_k":          int64(0),
		"mtm.min_theme_support": "lots",
		"mtm.min_confidence":    150.0,
		"mtm.fuzzy_threshold":   -1.0,
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			store := memory.NewConfigStore(map[string]any{key: value})
			_, err := NewSettingsService(store).Analysis()
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	want := domain.DefaultAnalysisSettings()
	want.KMeansK = 8
	want.Project = "hermes"
	want.Timeout = 30 * time.Second

	require.NoError(t, service.Save(want))
	assert.Equal(t, 8, store.GetInt("mtm.kmeans_k"))
	assert.Equal(t, 30, store.GetInt("mtm.analysis_timeout_seconds"))

	got, err := service.Analysis()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSettingsService_Save_Invalid(t *testing.T) {
	store := memory.NewConfigStore()
	settings := domain.DefaultAnalysisSettings()
	settings.MinThemeSupport = 0

	err := NewSettingsService(store).Save(settings)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, ok := store.Get("mtm.kmeans_k")
	assert.False(t, ok)
}

func TestSettingsService_Pipeline_Defaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())
	assert.Equal(t, domain.DefaultPipelineSettings(), service.Pipeline())
}

func TestSettingsService_Pipeline_StoredValues(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		"mtm.strip_boilerplate": false,
		"mtm.redact":            true,
		"mtm.extractors":        []any{"steps", "actions"},
	})

	got := NewSettingsService(store).Pipeline()
	assert.False(t, got.StripBoilerplate)
	assert.True(t, got.Redact)
	assert.Equal(t, []string{"steps", "actions"}, got.Extractors)
}

func TestSettingsService_SavePipelineRoundTrip(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	want := domain.PipelineSettings{Redact: true, Extractors: []string{"faqs"}}
	require.NoError(t, service.SavePipeline(want))
	assert.Equal(t, want, service.Pipeline())

	require.NoError(t, service.SavePipeline(domain.DefaultPipelineSettings()))
	assert.Empty(t, service.Pipeline().Extractors)
}
