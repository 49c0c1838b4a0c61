package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/mtm/internal/core/domain"
	"github.com/custodia-labs/mtm/internal/extractors"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage analysis settings",
	Long: `View and configure the theme engine and role mapper.

Settings are stored under [mtm] in config.toml in the config directory.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set one setting",
	Long: `Set one analysis setting.

Keys:
  kmeans_k                  Number of k-means clusters
  min_theme_support         Minimum segments per theme
  min_confidence            Role confidence cut-off (0-100)
  fuzzy_threshold           Keyword similarity threshold (0-100)
  project                   Default project for analysis
  role_taxonomy             Path to the role taxonomy YAML file
  analysis_timeout_seconds  Per-project clustering timeout (0 disables)
  seed                      Clustering random seed
  strip_boilerplate         Drop "Attendees:"-style header lines (true/false)
  redact                    Mask e-mail addresses and phone numbers (true/false)
  extractors                Comma-separated extractors to run (empty for all)`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Walk through each analysis setting. Press enter to keep the current value.`,
	RunE:  runSettingsWizard,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Analysis()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Themes]")
	cmd.Printf("  K-means clusters:  %d\n", settings.KMeansK)
	cmd.Printf("  Minimum support:   %d\n", settings.MinThemeSupport)
	cmd.Printf("  Seed:              %d\n", settings.Seed)
	if settings.Timeout > 0 {
		cmd.Printf("  Timeout:           %s\n", settings.Timeout)
	} else {
		cmd.Printf("  Timeout:           none\n")
	}
	cmd.Println()

	cmd.Println("[Roles]")
	cmd.Printf("  Min confidence:    %.1f\n", settings.MinConfidence)
	cmd.Printf("  Fuzzy threshold:   %.1f\n", settings.FuzzyThreshold)
	if settings.TaxonomyPath != "" {
		cmd.Printf("  Taxonomy:          %s\n", settings.TaxonomyPath)
	} else {
		cmd.Printf("  Taxonomy:          (config directory default)\n")
	}
	cmd.Println()

	cmd.Println("[Scope]")
	if settings.Project != "" {
		cmd.Printf("  Project:           %s\n", settings.Project)
	} else {
		cmd.Printf("  Project:           (all)\n")
	}
	cmd.Println()

	pipeline := settingsService.Pipeline()
	cmd.Println("[Ingest]")
	cmd.Printf("  Strip boilerplate: %t\n", pipeline.StripBoilerplate)
	cmd.Printf("  Redact contacts:   %t\n", pipeline.Redact)
	if len(pipeline.Extractors) > 0 {
		cmd.Printf("  Extractors:        %s\n", strings.Join(pipeline.Extractors, ", "))
	} else {
		cmd.Printf("  Extractors:        (all)\n")
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if isPipelineSetting(args[0]) {
		pipeline := settingsService.Pipeline()
		if err := applyPipelineSetting(&pipeline, args[0], args[1]); err != nil {
			return err
		}
		if err := settingsService.SavePipeline(pipeline); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		cmd.Printf("Set %s to %s\n", args[0], args[1])
		return nil
	}

	settings, err := settingsService.Analysis()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if err := applySetting(&settings, args[0], args[1]); err != nil {
		return err
	}
	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Printf("Set %s to %s\n", args[0], args[1])
	return nil
}

// settingKeys lists every key accepted by settings set.
var settingKeys = []string{
	"kmeans_k", "min_theme_support", "min_confidence", "fuzzy_threshold",
	"project", "role_taxonomy", "analysis_timeout_seconds", "seed",
	"strip_boilerplate", "redact", "extractors",
}

// unknownSetting reports key, suggesting the closest known key within
// two edits.
func unknownSetting(key string) error {
	best, bestDist := "", 3
	for _, candidate := range settingKeys {
		if d := levenshtein.ComputeDistance(key, candidate); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	if best == "" {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	return fmt.Errorf("%w: unknown setting %q (did you mean %q?)", domain.ErrInvalidInput, key, best)
}

// applySetting parses value into the field named by key.
func applySetting(s *domain.AnalysisSettings, key, value string) error {
	invalid := func(err error) error {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
	}

	switch key {
	case "kmeans_k", "min_theme_support", "analysis_timeout_seconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return invalid(err)
		}
		switch key {
		case "kmeans_k":
			s.KMeansK = n
		case "min_theme_support":
			s.MinThemeSupport = n
		default:
			s.Timeout = time.Duration(n) * time.Second
		}
	case "min_confidence", "fuzzy_threshold":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return invalid(err)
		}
		if key == "min_confidence" {
			s.MinConfidence = f
		} else {
			s.FuzzyThreshold = f
		}
	case "seed":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return invalid(err)
		}
		s.Seed = n
	case "project":
		s.Project = value
	case "role_taxonomy":
		s.TaxonomyPath = value
	default:
		return unknownSetting(key)
	}
	return nil
}

func isPipelineSetting(key string) bool {
	switch key {
	case "strip_boilerplate", "redact", "extractors":
		return true
	}
	return false
}

// applyPipelineSetting parses value into the pipeline field named by key.
// Extractor names are checked against the built-in extractors.
func applyPipelineSetting(p *domain.PipelineSettings, key, value string) error {
	switch key {
	case "strip_boilerplate", "redact":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
		}
		if key == "redact" {
			p.Redact = b
		} else {
			p.StripBoilerplate = b
		}
	case "extractors":
		var names []string
		for _, name := range strings.Split(value, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
		if _, err := extractors.NewPipelineFromNames(names); err != nil {
			return err
		}
		p.Extractors = names
	default:
		return unknownSetting(key)
	}
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Analysis()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("mtm Settings Wizard")
	cmd.Println("===================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Printf("K-means clusters [%d]: ", settings.KMeansK)
	settings.KMeansK = parseChoice(readLine(reader), 99, settings.KMeansK)

	cmd.Printf("Minimum segments per theme [%d]: ", settings.MinThemeSupport)
	settings.MinThemeSupport = parseChoice(readLine(reader), 99, settings.MinThemeSupport)

	cmd.Printf("Role min confidence [%.1f]: ", settings.MinConfidence)
	settings.MinConfidence = parsePercent(readLine(reader), settings.MinConfidence)

	cmd.Printf("Fuzzy keyword threshold [%.1f]: ", settings.FuzzyThreshold)
	settings.FuzzyThreshold = parsePercent(readLine(reader), settings.FuzzyThreshold)

	cmd.Printf("Default project [%s]: ", settings.Project)
	if input := readLine(reader); input != "" {
		settings.Project = input
	}

	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	cmd.Println()
	cmd.Println("Settings saved.")
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// parseChoice returns input as an int in [1, maxVal], else defaultVal.
func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// parsePercent returns input as a float in [0, 100], else defaultVal.
func parsePercent(input string, defaultVal float64) float64 {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.ParseFloat(input, 64)
	if err != nil || val < 0 || val > 100 {
		return defaultVal
	}
	return val
}
