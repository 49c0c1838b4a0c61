package services

import (
	"fmt"
	"time"

	"github.com/custodia-labs/mtm/internal/core/domain"
	"github.com/custodia-labs/mtm/internal/core/ports/driven"
	"github.com/custodia-labs/mtm/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyKMeansK         = "mtm.kmeans_k"
	keyMinThemeSupport = "mtm.min_theme_support"
	keyMinConfidence   = "mtm.min_confidence"
	keyFuzzyThreshold  = "mtm.fuzzy_threshold"
	keyProject         = "mtm.project"
	keyRoleTaxonomy    = "mtm.role_taxonomy"
	keyTimeoutSeconds  = "mtm.analysis_timeout_seconds"
	keySeed            = "mtm.seed"

	keyStripBoilerplate = "mtm.strip_boilerplate"
	keyRedact           = "mtm.redact"
	keyExtractors       = "mtm.extractors"
)

// SettingsService reads and writes analysis settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
	}
}

// Analysis builds the analysis settings from config, falling back to the
// default for every absent key. The result is validated.
func (s *SettingsService) Analysis() (domain.AnalysisSettings, error) {
	defaults := domain.DefaultAnalysisSettings()

	settings := domain.AnalysisSettings{
		KMeansK:         s.getInt(keyKMeansK, defaults.KMeansK),
		MinThemeSupport: s.getInt(keyMinThemeSupport, defaults.MinThemeSupport),
		MinConfidence:   s.getFloat(keyMinConfidence, defaults.MinConfidence),
		FuzzyThreshold:  s.getFloat(keyFuzzyThreshold, defaults.FuzzyThreshold),
		Project:         s.configStore.GetString(keyProject),
		TaxonomyPath:    s.configStore.GetString(keyRoleTaxonomy),
		Seed:            int64(s.getInt(keySeed, int(defaults.Seed))),
		Timeout:         time.Duration(s.getInt(keyTimeoutSeconds, int(defaults.Timeout/time.Second))) * time.Second,
	}

	if err := settings.Validate(); err != nil {
		return domain.AnalysisSettings{}, fmt.Errorf("config %s: %w", s.configStore.Path(), err)
	}
	return settings, nil
}

// Save validates and persists analysis settings.
func (s *SettingsService) Save(settings domain.AnalysisSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{keyKMeansK, settings.KMeansK},
		{keyMinThemeSupport, settings.MinThemeSupport},
		{keyMinConfidence, settings.MinConfidence},
		{keyFuzzyThreshold, settings.FuzzyThreshold},
		{keyProject, settings.Project},
		{keyRoleTaxonomy, settings.TaxonomyPath},
		{keyTimeoutSeconds, int(settings.Timeout / time.Second)},
		{keySeed, int(settings.Seed)},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if err := s.configStore.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// Pipeline builds the segmentation and extraction settings from config.
func (s *SettingsService) Pipeline() domain.PipelineSettings {
	defaults := domain.DefaultPipelineSettings()
	return domain.PipelineSettings{
		StripBoilerplate: s.getBool(keyStripBoilerplate, defaults.StripBoilerplate),
		Redact:           s.getBool(keyRedact, defaults.Redact),
		Extractors:       s.configStore.GetStringSlice(keyExtractors),
	}
}

// SavePipeline persists the segmentation and extraction settings.
func (s *SettingsService) SavePipeline(settings domain.PipelineSettings) error {
	extractors := settings.Extractors
	if extractors == nil {
		extractors = []string{}
	}
	values := []struct {
		key   string
		value any
	}{
		{keyStripBoilerplate, settings.StripBoilerplate},
		{keyRedact, settings.Redact},
		{keyExtractors, extractors},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	if err := s.configStore.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AnalysisSettings {
	return domain.DefaultAnalysisSettings()
}

// getInt returns the stored int, or def if the key is absent.
func (s *SettingsService) getInt(key string, def int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return def
	}
	return s.configStore.GetInt(key)
}

// getFloat returns the stored number, or def if the key is absent.
func (s *SettingsService) getFloat(key string, def float64) float64 {
	if _, ok := s.configStore.Get(key); !ok {
		return def
	}
	return s.configStore.GetFloat(key)
}

// getBool returns the stored bool, or def if the key is absent.
func (s *SettingsService) getBool(key string, def bool) bool {
	if _, ok := s.configStore.Get(key); !ok {
		return def
	}
	return s.configStore.GetBool(key)
}
