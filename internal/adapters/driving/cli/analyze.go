package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mtm/internal/core/domain"
	"github.com/custodia-labs/mtm/internal/core/ports/driving"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run theme discovery or role mapping",
}

var analyzeThemesCmd = &cobra.Command{
	Use:   "themes",
	Short: "Discover themes in ingested segments",
	Long: `Cluster each project's segments into themes.

With at least 2*K segments, TF-IDF vectors are clustered with k-means.
Smaller projects fall back to keyword co-occurrence. Projects are analysed
in parallel; a failure in one project does not stop the others.`,
	Args: cobra.NoArgs,
	RunE: runAnalyzeThemes,
}

var analyzeRolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Map segments or themes onto the role taxonomy",
	Args:  cobra.NoArgs,
	RunE:  runAnalyzeRoles,
}

// Analyze flags.
var (
	analyzeProjects   []string
	analyzeK          int
	analyzeMinSupport int
	analyzeRoleThemes bool
)

func init() {
	analyzeThemesCmd.Flags().StringSliceVarP(&analyzeProjects, "project", "p", nil, "Projects to analyse (default: every project)")
	analyzeThemesCmd.Flags().IntVarP(&analyzeK, "k", "k", 0, "Number of k-means clusters (overrides mtm.kmeans_k)")
	analyzeThemesCmd.Flags().IntVar(&analyzeMinSupport, "min-support", 0, "Minimum segments per theme (overrides mtm.min_theme_support)")

	analyzeRolesCmd.Flags().StringSliceVarP(&analyzeProjects, "project", "p", nil, "Project to map (default: every project)")
	analyzeRolesCmd.Flags().BoolVar(&analyzeRoleThemes, "themes", false, "Map stored themes instead of segments")

	analyzeCmd.AddCommand(analyzeThemesCmd)
	analyzeCmd.AddCommand(analyzeRolesCmd)
	rootCmd.AddCommand(analyzeCmd)
}

// analysisSettings loads settings and applies flag overrides.
func analysisSettings(cmd *cobra.Command) (domain.AnalysisSettings, error) {
	if settingsService == nil {
		return domain.AnalysisSettings{}, errors.New("settings service not configured")
	}
	settings, err := settingsService.Analysis()
	if err != nil {
		return domain.AnalysisSettings{}, err
	}
	if f := cmd.Flags().Lookup("k"); f != nil && f.Changed {
		settings.KMeansK = analyzeK
	}
	if f := cmd.Flags().Lookup("min-support"); f != nil && f.Changed {
		settings.MinThemeSupport = analyzeMinSupport
	}
	if err := settings.Validate(); err != nil {
		return domain.AnalysisSettings{}, err
	}
	return settings, nil
}

// projectsFor returns the --project values, else the configured project.
// Empty means every project.
func projectsFor(settings domain.AnalysisSettings) []string {
	if len(analyzeProjects) > 0 {
		return analyzeProjects
	}
	if settings.Project != "" {
		return []string{settings.Project}
	}
	return nil
}

func runAnalyzeThemes(cmd *cobra.Command, _ []string) error {
	if themeServiceFor == nil {
		return errors.New("theme service not configured")
	}
	settings, err := analysisSettings(cmd)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	reports, err := themeServiceFor(settings).AnalyzeAll(ctx, projectsFor(settings))
	if err != nil {
		return fmt.Errorf("failed to analyse themes: %w", err)
	}
	if len(reports) == 0 {
		cmd.Println("No segments to analyse. Run 'mtm ingest' first.")
		return nil
	}

	var failed []error
	for _, report := range reports {
		if report.Err != nil {
			cmd.Printf("Project %s: failed: %v\n\n", report.Project, report.Err)
			failed = append(failed, report.Err)
			continue
		}
		printThemeReport(cmd, report)
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d projects failed: %w", len(failed), len(reports), errors.Join(failed...))
	}
	return nil
}

func printThemeReport(cmd *cobra.Command, report driving.ThemeReport) {
	cmd.Printf("Project %s: %d segments, strategy %s\n", report.Project, report.SegmentCount, report.Strategy)
	if report.Relaxed {
		cmd.Println("  (vectorisation used relaxed term-frequency bounds)")
	}
	if len(report.Themes) == 0 {
		cmd.Println("  No themes met the minimum support.")
	}
	for _, theme := range report.Themes {
		cmd.Printf("  %s\n", theme.Name)
		cmd.Printf("    ID: %s\n", theme.ID)
		cmd.Printf("    Keywords: %s\n", strings.Join(theme.Keywords, ", "))
		cmd.Printf("    Support: %d segments\n", theme.SupportCount)
	}
	cmd.Println()
}

func runAnalyzeRoles(cmd *cobra.Command, _ []string) error {
	if roleServiceFor == nil {
		return errors.New("role service not configured")
	}
	settings, err := analysisSettings(cmd)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)
	service := roleServiceFor(settings)

	taxonomy, err := service.Taxonomy(ctx)
	if err != nil {
		return err
	}
	if taxonomy.IsEmpty() {
		cmd.Printf("Role taxonomy is empty; create %s to map roles.\n", taxonomy.Path)
		return nil
	}

	projects := projectsFor(settings)
	if len(projects) == 0 {
		projects = []string{""}
	}

	topic := "segments"
	if analyzeRoleThemes {
		topic = "themes"
	}

	for _, project := range projects {
		var mapped map[string][]domain.RoleScore
		if analyzeRoleThemes {
			mapped, err = service.MapThemes(ctx, project)
		} else {
			mapped, err = service.MapSegments(ctx, project)
		}
		if err != nil {
			return fmt.Errorf("failed to map roles: %w", err)
		}

		label := project
		if label == "" {
			label = "all projects"
		}
		cmd.Printf("Mapped %d %s in %s\n", len(mapped), topic, label)
		for _, line := range roleTotals(mapped) {
			cmd.Printf("  %s\n", line)
		}
	}
	return nil
}

// roleTotals summarises how many topics each role was mapped to, by role name.
func roleTotals(mapped map[string][]domain.RoleScore) []string {
	counts := make(map[string]int)
	for _, scores := range mapped {
		for _, s := range scores {
			counts[s.Role]++
		}
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, len(names))
	for i, name := range names {
		lines[i] = fmt.Sprintf("%s: %d", name, counts[name])
	}
	return lines
}
