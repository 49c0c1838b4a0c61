package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mtm/internal/core/domain"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract steps, definitions, FAQs, decisions and actions",
	Long: `Run every extractor over a project's segments and store the records.
Each record keeps the note, segment and source lines it came from.`,
	Args: cobra.NoArgs,
	RunE: runExtract,
}

var extractListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored extraction records",
	Args:  cobra.NoArgs,
	RunE:  runExtractList,
}

// Extract flags.
var (
	extractProject string
	extractKind    string
)

func init() {
	extractCmd.PersistentFlags().StringVarP(&extractProject, "project", "p", "", "Project to extract from (default: every project)")
	extractListCmd.Flags().StringVar(&extractKind, "kind", "", "Only list one kind: step, definition, faq, decision or action")

	extractCmd.AddCommand(extractListCmd)
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	if extractionService == nil {
		return errors.New("extraction service not configured")
	}

	report, err := extractionService.ExtractProject(commandContext(cmd), scopedProject(extractProject))
	if err != nil {
		return fmt.Errorf("failed to extract: %w", err)
	}

	cmd.Printf("Processed %d segments\n", report.Segments)
	for _, kind := range domain.ExtractionKinds {
		cmd.Printf("  %-11s %d\n", kind+":", report.Counts[kind])
	}
	return nil
}

func runExtractList(cmd *cobra.Command, _ []string) error {
	if extractionService == nil {
		return errors.New("extraction service not configured")
	}

	records, err := extractionService.List(commandContext(cmd), scopedProject(extractProject), domain.ExtractionKind(extractKind))
	if err != nil {
		return fmt.Errorf("failed to list extractions: %w", err)
	}
	if len(records) == 0 {
		cmd.Println("No extraction records found.")
		return nil
	}

	printer := &recordPrinter{cmd: cmd}
	for _, r := range records {
		if err := r.Accept(printer); err != nil {
			return err
		}
	}
	cmd.Printf("\nTotal: %d records\n", len(records))
	return nil
}

// recordPrinter writes one line per record, plus its source.
type recordPrinter struct {
	cmd *cobra.Command
}

func (p *recordPrinter) source(b *domain.ExtractionBase) {
	prov := b.Provenance
	if prov.SourceFile == "" {
		return
	}
	if prov.LineStart > 0 {
		p.cmd.Printf("    from %s:%d\n", prov.SourceFile, prov.LineStart)
		return
	}
	p.cmd.Printf("    from %s\n", prov.SourceFile)
}

func (p *recordPrinter) VisitStep(s *domain.Step) error {
	p.cmd.Printf("  [step] %d. %s\n", s.Number, s.Title)
	p.source(s.Base())
	return nil
}

func (p *recordPrinter) VisitDefinition(d *domain.Definition) error {
	p.cmd.Printf("  [definition] %s: %s\n", d.Term, d.Definition)
	p.source(d.Base())
	return nil
}

func (p *recordPrinter) VisitFAQ(f *domain.FAQ) error {
	p.cmd.Printf("  [faq] %s\n", f.Question)
	if f.Answer != "" {
		p.cmd.Printf("    %s\n", f.Answer)
	}
	p.source(f.Base())
	return nil
}

func (p *recordPrinter) VisitDecision(d *domain.Decision) error {
	line := d.Decision
	if d.DecisionMaker != "" {
		line += " (by " + d.DecisionMaker + ")"
	}
	p.cmd.Printf("  [decision] %s\n", line)
	if d.Rationale != "" {
		p.cmd.Printf("    because %s\n", d.Rationale)
	}
	p.source(d.Base())
	return nil
}

func (p *recordPrinter) VisitAction(a *domain.Action) error {
	line := a.Action
	if a.Assignee != "" {
		line += " @" + a.Assignee
	}
	if a.DueDate != nil {
		line += " due " + a.DueDate.Format(time.DateOnly)
	}
	p.cmd.Printf("  [action:%s] %s\n", a.Status, line)
	p.source(a.Base())
	return nil
}
