package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "Inspect stored themes",
}

var themesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored themes",
	Args:  cobra.NoArgs,
	RunE:  runThemesList,
}

// themesProject is the --project flag of themes list.
var themesProject string

func init() {
	themesListCmd.Flags().StringVarP(&themesProject, "project", "p", "", "Only list one project")

	themesCmd.AddCommand(themesListCmd)
	rootCmd.AddCommand(themesCmd)
}

func runThemesList(cmd *cobra.Command, _ []string) error {
	if themeServiceFor == nil || settingsService == nil {
		return errors.New("theme service not configured")
	}
	settings, err := settingsService.Analysis()
	if err != nil {
		return err
	}

	themes, err := themeServiceFor(settings).List(commandContext(cmd), scopedProject(themesProject))
	if err != nil {
		return fmt.Errorf("failed to list themes: %w", err)
	}
	if len(themes) == 0 {
		cmd.Println("No themes found. Run 'mtm analyze themes' first.")
		return nil
	}

	for i := range themes {
		th := &themes[i]
		cmd.Printf("  %s [%s]\n", th.Name, th.Project)
		cmd.Printf("    ID: %s\n", th.ID)
		cmd.Printf("    Keywords: %s\n", strings.Join(th.Keywords, ", "))
		cmd.Printf("    %s\n", th.Description)
	}
	cmd.Printf("\nTotal: %d themes\n", len(themes))
	return nil
}
