package driving

import "github.com/custodia-labs/mtm/internal/core/domain"

// SettingsService manages analysis settings.
type SettingsService interface {
	// Analysis returns the validated analysis settings.
	Analysis() (domain.AnalysisSettings, error)

	// Save validates and persists analysis settings.
	Save(settings domain.AnalysisSettings) error

	// Pipeline returns the segmentation and extraction settings.
	Pipeline() domain.PipelineSettings

	// SavePipeline persists the segmentation and extraction settings.
	SavePipeline(settings domain.PipelineSettings) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AnalysisSettings
}
