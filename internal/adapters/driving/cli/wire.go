package cli

import (
	"fmt"

	"github.com/custodia-labs/mtm/internal/adapters/driven/config/file"
	"github.com/custodia-labs/mtm/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/mtm/internal/core/domain"
	"github.com/custodia-labs/mtm/internal/core/ports/driving"
	"github.com/custodia-labs/mtm/internal/core/services"
	"github.com/custodia-labs/mtm/internal/extractors"
	"github.com/custodia-labs/mtm/internal/logger"
	"github.com/custodia-labs/mtm/internal/normalisers/markdown"
	"github.com/custodia-labs/mtm/internal/normalisers/plaintext"
	"github.com/custodia-labs/mtm/internal/postprocessors/segmenter"
)

// wireServices builds the production services: a SQLite store in dataDir
// and a TOML config plus role taxonomy in configDir.
func wireServices(dataDir, configDir string) (Services, error) {
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return Services{}, fmt.Errorf("loading config: %w", err)
	}
	settings := services.NewSettingsService(configStore)
	if _, err := settings.Analysis(); err != nil {
		return Services{}, err
	}

	pipeline := settings.Pipeline()
	extraction, err := extractors.NewPipelineFromNames(pipeline.Extractors)
	if err != nil {
		return Services{}, fmt.Errorf("config %s: %w", configStore.Path(), err)
	}
	seg := segmenter.New(
		segmenter.WithBoilerplateStripping(pipeline.StripBoilerplate),
		segmenter.WithRedaction(pipeline.Redact),
	)

	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return Services{}, fmt.Errorf("opening store: %w", err)
	}
	logger.Debug("using database %s and config %s", store.Path(), configStore.Path())

	segments := store.SegmentStore()
	themes := store.ThemeStore()

	return Services{
		Settings:   settings,
		Ingest:     services.NewIngestService(segments, seg, markdown.New(), plaintext.New()),
		Extraction: services.NewExtractionService(segments, store.ExtractionStore(), extraction),
		Versions:   services.NewVersionService(store.ModuleStore()),
		Themes: func(s domain.AnalysisSettings) driving.ThemeService {
			return services.NewThemeService(segments, themes, s)
		},
		Roles: func(s domain.AnalysisSettings) driving.RoleService {
			loader := file.NewTaxonomyLoader(s.TaxonomyPath, configStore.Dir())
			return services.NewRoleService(segments, themes, store.RoleMappingStore(), loader, s)
		},
		Close: store.Close,
	}, nil
}
