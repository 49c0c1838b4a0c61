// Package cli implements the mtm command line.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mtm/internal/core/domain"
	"github.com/custodia-labs/mtm/internal/core/ports/driving"
	"github.com/custodia-labs/mtm/internal/logger"
	"github.com/custodia-labs/mtm/internal/metrics"
)

// version is set at build time via -ldflags.
var version = "dev"

// Global flags.
var (
	verbose     bool
	dataDir     string
	configDir   string
	metricsFile string
)

// Services are the core services the commands drive.
// Theme and role services depend on settings that flags may override
// per run, so they are built on demand.
type Services struct {
	Settings   driving.SettingsService
	Ingest     driving.IngestService
	Extraction driving.ExtractionService
	Versions   driving.VersionService
	Themes     func(domain.AnalysisSettings) driving.ThemeService
	Roles      func(domain.AnalysisSettings) driving.RoleService

	// Close releases resources such as the database handle.
	Close func() error
}

var (
	settingsService   driving.SettingsService
	ingestService     driving.IngestService
	extractionService driving.ExtractionService
	versionService    driving.VersionService
	themeServiceFor   func(domain.AnalysisSettings) driving.ThemeService
	roleServiceFor    func(domain.AnalysisSettings) driving.RoleService
	closeServices     func() error

	// servicesReady is true once services were injected or wired.
	servicesReady bool
)

var rootCmd = &cobra.Command{
	Use:   "mtm",
	Short: "Mine meeting notes for themes, facts and roles",
	Long: `mtm turns meeting notes into structured knowledge.

Ingest Markdown or text notes, discover recurring themes, extract steps,
definitions, FAQs, decisions and action items, map topics onto roles and
keep versioned modules with a changelog.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		if metricsFile == "" {
			return nil
		}
		if err := metrics.WriteTextfile(metricsFile); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
		logger.Debug("metrics written to %s", metricsFile)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory (default ~/.mtm/data)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Config directory (default ~/.mtm)")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this file on exit")
}

// SetServices injects the services used by commands. Injected services
// are used as-is; nothing is wired from the data directory.
func SetServices(s Services) {
	settingsService = s.Settings
	ingestService = s.Ingest
	extractionService = s.Extraction
	versionService = s.Versions
	themeServiceFor = s.Themes
	roleServiceFor = s.Roles
	closeServices = s.Close
	servicesReady = true
}

// Execute runs the root command. The returned error carries a hint for
// well-known failure causes.
func Execute(ctx context.Context) error {
	defer func() {
		if closeServices != nil {
			if err := closeServices(); err != nil {
				logger.Warn("closing services: %v", err)
			}
		}
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if hint := errorHint(err); hint != "" {
			return fmt.Errorf("%w\nhint: %s", err, hint)
		}
		return err
	}
	return nil
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if servicesReady || !needsServices(cmd) {
		return nil
	}

	s, err := wireServices(dataDir, configDir)
	if err != nil {
		return err
	}
	SetServices(s)
	return nil
}

// needsServices is false for commands that never touch storage.
func needsServices(cmd *cobra.Command) bool {
	return cmd != versionCmd && cmd.Name() != "help"
}

func errorHint(err error) string {
	switch {
	case errors.Is(err, domain.ErrAnalysisInProgress):
		return "another analysis of this project is running; wait for it to finish"
	case errors.Is(err, domain.ErrDegenerateVectorization):
		return "the segments share too few distinct terms; ingest more notes or lower --k"
	case errors.Is(err, domain.ErrVersionConflict):
		return "the module changed while updating; re-run the update"
	case errors.Is(err, domain.ErrVersionOverflow):
		return "a version component would pass 99; make a larger change to roll the next component"
	case errors.Is(err, domain.ErrUnsupportedType):
		return "supported note files are .md, .markdown and .txt"
	case errors.Is(err, context.DeadlineExceeded):
		return "analysis timed out; raise mtm.analysis_timeout_seconds in config.toml"
	default:
		return ""
	}
}

// scopedProject returns flag, else the configured mtm.project.
func scopedProject(flag string) string {
	if flag != "" || settingsService == nil {
		return flag
	}
	settings, err := settingsService.Analysis()
	if err != nil {
		return flag
	}
	return settings.Project
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
