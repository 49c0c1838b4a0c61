package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mtm/internal/core/domain"
)

var moduleCmd = &cobra.Command{
	Use:   "module",
	Short: "Manage versioned modules",
	Long: `Create and update modules (tutorials, FAQs, how-tos, indexes).

Every update is classified against the current state: removing references or
changing the type is a major change, adding references or changing the title
is minor, and anything else is a patch.`,
}

var moduleCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a module at version 1.0.0",
	Args:  cobra.NoArgs,
	RunE:  runModuleCreate,
}

var moduleUpdateCmd = &cobra.Command{
	Use:   "update [module-id]",
	Short: "Update a module and record a new version",
	Long: `Update a module. Only the flags given change; everything else keeps its
current value. Reference flags replace the whole set.`,
	Args: cobra.ExactArgs(1),
	RunE: runModuleUpdate,
}

var moduleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List modules",
	Args:  cobra.NoArgs,
	RunE:  runModuleList,
}

var moduleHistoryCmd = &cobra.Command{
	Use:   "history [module-id]",
	Short: "Show a module's versions, newest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runModuleHistory,
}

var moduleChangelogCmd = &cobra.Command{
	Use:   "changelog [module-id]",
	Short: "Render a module's changelog as Markdown",
	Args:  cobra.ExactArgs(1),
	RunE:  runModuleChangelog,
}

// Module flags.
var (
	moduleID          string
	moduleProject     string
	moduleTitle       string
	moduleDescription string
	moduleType        string
	moduleContentFile string
	moduleChanges     string
	moduleAuthor      string
	moduleOutput      string
	moduleRefs        domain.References
)

func init() {
	for _, c := range []*cobra.Command{moduleCreateCmd, moduleUpdateCmd} {
		f := c.Flags()
		f.StringVar(&moduleTitle, "title", "", "Module title")
		f.StringVar(&moduleDescription, "description", "", "Short description")
		f.StringVar(&moduleType, "type", "", "Module type: tutorial, faq, howto or index")
		f.StringVar(&moduleContentFile, "content-file", "", "File holding the module body")
		f.StringVar(&moduleAuthor, "author", "", "Who made the change")
		f.StringSliceVar(&moduleRefs.Themes, "themes", nil, "Referenced theme IDs")
		f.StringSliceVar(&moduleRefs.Steps, "steps", nil, "Referenced step IDs")
		f.StringSliceVar(&moduleRefs.Definitions, "definitions", nil, "Referenced definition IDs")
		f.StringSliceVar(&moduleRefs.FAQs, "faqs", nil, "Referenced FAQ IDs")
		f.StringSliceVar(&moduleRefs.Decisions, "decisions", nil, "Referenced decision IDs")
		f.StringSliceVar(&moduleRefs.Actions, "actions", nil, "Referenced action IDs")
	}
	moduleCreateCmd.Flags().StringVar(&moduleID, "id", "", "Module ID (default: generated)")
	moduleCreateCmd.Flags().StringVarP(&moduleProject, "project", "p", "", "Project (default \"default\")")
	moduleUpdateCmd.Flags().StringVarP(&moduleChanges, "changes", "m", "", "Change description")
	moduleListCmd.Flags().StringVarP(&moduleProject, "project", "p", "", "Only list one project")
	moduleChangelogCmd.Flags().StringVarP(&moduleOutput, "output", "o", "", "Write the changelog to a file instead of stdout")

	moduleCmd.AddCommand(moduleCreateCmd)
	moduleCmd.AddCommand(moduleUpdateCmd)
	moduleCmd.AddCommand(moduleListCmd)
	moduleCmd.AddCommand(moduleHistoryCmd)
	moduleCmd.AddCommand(moduleChangelogCmd)
	rootCmd.AddCommand(moduleCmd)
}

func runModuleCreate(cmd *cobra.Command, _ []string) error {
	if versionService == nil {
		return errors.New("version service not configured")
	}

	content, err := readContentFile(moduleContentFile)
	if err != nil {
		return err
	}

	module, err := versionService.CreateModule(commandContext(cmd), &domain.Module{
		ID:      moduleID,
		Project: moduleProject,
		Snapshot: domain.Snapshot{
			Title:       moduleTitle,
			Description: moduleDescription,
			Type:        domain.ModuleType(moduleType),
			Content:     content,
			Refs:        moduleRefs,
		},
	}, moduleAuthor)
	if err != nil {
		return fmt.Errorf("failed to create module: %w", err)
	}

	cmd.Printf("Created module %s\n", module.ID)
	cmd.Printf("  Title:   %s\n", module.Title)
	cmd.Printf("  Type:    %s\n", module.Type)
	cmd.Printf("  Project: %s\n", module.Project)
	cmd.Printf("  Version: %s\n", module.Version)
	return nil
}

func runModuleUpdate(cmd *cobra.Command, args []string) error {
	if versionService == nil {
		return errors.New("version service not configured")
	}
	ctx := commandContext(cmd)

	current, err := versionService.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get module: %w", err)
	}

	next, err := applyModuleFlags(cmd, current.Snapshot)
	if err != nil {
		return err
	}

	entry, err := versionService.Update(ctx, current.ID, next, moduleChanges, moduleAuthor)
	if err != nil {
		return fmt.Errorf("failed to update module: %w", err)
	}

	cmd.Printf("Module %s: %s -> %s (%s change)\n", current.ID, current.Version, entry.Version, entry.Change)
	return nil
}

// applyModuleFlags overlays the flags that were set on the current snapshot.
func applyModuleFlags(cmd *cobra.Command, s domain.Snapshot) (domain.Snapshot, error) {
	flags := cmd.Flags()
	if flags.Changed("title") {
		s.Title = moduleTitle
	}
	if flags.Changed("description") {
		s.Description = moduleDescription
	}
	if flags.Changed("type") {
		s.Type = domain.ModuleType(moduleType)
	}
	if flags.Changed("content-file") {
		content, err := readContentFile(moduleContentFile)
		if err != nil {
			return domain.Snapshot{}, err
		}
		s.Content = content
	}

	refs := []struct {
		flag string
		dst  *[]string
		src  []string
	}{
		{"themes", &s.Refs.Themes, moduleRefs.Themes},
		{"steps", &s.Refs.Steps, moduleRefs.Steps},
		{"definitions", &s.Refs.Definitions, moduleRefs.Definitions},
		{"faqs", &s.Refs.FAQs, moduleRefs.FAQs},
		{"decisions", &s.Refs.Decisions, moduleRefs.Decisions},
		{"actions", &s.Refs.Actions, moduleRefs.Actions},
	}
	for _, r := range refs {
		if flags.Changed(r.flag) {
			*r.dst = r.src
		}
	}
	return s, nil
}

func runModuleList(cmd *cobra.Command, _ []string) error {
	if versionService == nil {
		return errors.New("version service not configured")
	}

	modules, err := versionService.List(commandContext(cmd), moduleProject)
	if err != nil {
		return fmt.Errorf("failed to list modules: %w", err)
	}
	if len(modules) == 0 {
		cmd.Println("No modules found.")
		return nil
	}

	for i := range modules {
		m := &modules[i]
		cmd.Printf("  %s  %-8s %-8s %s [%s]\n", m.ID, m.Version, m.Type, m.Title, m.Project)
	}
	cmd.Printf("\nTotal: %d modules\n", len(modules))
	return nil
}

func runModuleHistory(cmd *cobra.Command, args []string) error {
	if versionService == nil {
		return errors.New("version service not configured")
	}

	history, err := versionService.History(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to get history: %w", err)
	}

	cmd.Printf("History for module %s:\n\n", args[0])
	for _, e := range history {
		cmd.Printf("  %-8s %-5s %s", e.Version, e.Change, e.CreatedAt.Format("2006-01-02 15:04"))
		if e.Author != "" {
			cmd.Printf("  %s", e.Author)
		}
		cmd.Println()
		if e.Changes != "" {
			cmd.Printf("           %s\n", e.Changes)
		}
	}
	return nil
}

func runModuleChangelog(cmd *cobra.Command, args []string) error {
	if versionService == nil {
		return errors.New("version service not configured")
	}

	changelog, err := versionService.Changelog(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to render changelog: %w", err)
	}

	if moduleOutput == "" {
		cmd.Println(changelog)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(moduleOutput), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(moduleOutput), err)
	}
	if err := os.WriteFile(moduleOutput, []byte(changelog), 0o644); err != nil {
		return fmt.Errorf("failed to write changelog: %w", err)
	}
	cmd.Printf("Changelog written to %s\n", moduleOutput)
	return nil
}

func readContentFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read content file: %w", err)
	}
	return string(data), nil
}
