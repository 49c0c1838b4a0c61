package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/mtm/internal/connectors/filesystem"
	"github.com/custodia-labs/mtm/internal/logger"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Ingest meeting notes",
	Long: `Read Markdown (.md, .markdown) or text (.txt) notes and split them into
segments. Directories are walked recursively; hidden entries and unsupported
files inside them are skipped. Files already ingested with identical content
are reported as duplicates and not stored again.

Paths may be given as file:// URIs. With --watch, directories keep being
watched after the first pass and new or changed notes are ingested until
the command is interrupted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

// Ingest flags.
var (
	ingestProject string
	ingestWatch   bool
)

func init() {
	ingestCmd.Flags().StringVarP(&ingestProject, "project", "p", "", "Project for the notes (default: front matter, then \"default\")")
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "Keep watching directories for new or changed notes")
	rootCmd.AddCommand(ingestCmd)
}

// ingestTally counts ingest outcomes across files.
type ingestTally struct {
	ingested, duplicates, segments int
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	ctx := commandContext(cmd)

	files, dirs, err := collectNoteFiles(ctx, args)
	if err != nil {
		return err
	}
	if len(files) == 0 && !ingestWatch {
		cmd.Println("No note files found.")
		return nil
	}

	var tally ingestTally
	for _, path := range files {
		if err := ingestOne(cmd, path, &tally); err != nil {
			return err
		}
	}
	cmd.Println()
	cmd.Printf("Ingested %d notes (%d segments), %d duplicates\n", tally.ingested, tally.segments, tally.duplicates)

	if !ingestWatch {
		return nil
	}
	if len(dirs) == 0 {
		return errors.New("--watch needs at least one directory")
	}
	return watchNotes(ctx, cmd, dirs)
}

func ingestOne(cmd *cobra.Command, path string, tally *ingestTally) error {
	result, err := ingestService.IngestFile(commandContext(cmd), path, ingestProject)
	if err != nil {
		return fmt.Errorf("failed to ingest %s: %w", path, err)
	}
	if result.Duplicate {
		tally.duplicates++
		cmd.Printf("  = %s (duplicate of note %s)\n", path, result.Note.ID)
		return nil
	}
	tally.ingested++
	tally.segments += result.Segments
	cmd.Printf("  + %s [%s] %d segments\n", path, result.Note.Project, result.Segments)
	return nil
}

// collectNoteFiles expands directories into the supported files they contain
// and returns the directories seen. Explicit file arguments are passed through
// so that unsupported types fail loudly.
func collectNoteFiles(ctx context.Context, args []string) (files, dirs []string, err error) {
	for _, arg := range args {
		path := filesystem.ResolvePath(arg)
		info, err := os.Stat(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read %s: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		found, err := filesystem.New(path, ingestService.Supports).List(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list %s: %w", arg, err)
		}
		files = append(files, found...)
		dirs = append(dirs, path)
	}
	return files, dirs, nil
}

// watchNotes ingests changes under dirs until ctx is done. A file that fails
// to ingest is logged and the watch carries on.
func watchNotes(ctx context.Context, cmd *cobra.Command, dirs []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	merged := make(chan filesystem.Change)
	var wg sync.WaitGroup
	for _, dir := range dirs {
		source := filesystem.New(dir, ingestService.Supports)
		changes, err := source.Watch(ctx)
		if err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		defer source.Close()

		wg.Add(1)
		go func() {
			defer wg.Done()
			for change := range changes {
				select {
				case merged <- change:
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(merged)
	}()

	cmd.Printf("Watching %d directories.\n", len(dirs))
	if isTerminal(cmd.OutOrStdout()) {
		cmd.Println("Press Ctrl+C to stop.")
	}
	var tally ingestTally
	for change := range merged {
		handleNoteChange(cmd, change, &tally)
	}
	cmd.Printf("Watch stopped: %d notes ingested (%d segments), %d duplicates\n", tally.ingested, tally.segments, tally.duplicates)
	return nil
}

func handleNoteChange(cmd *cobra.Command, change filesystem.Change, tally *ingestTally) {
	switch change.Type {
	case filesystem.ChangeCreated, filesystem.ChangeUpdated:
		if err := ingestOne(cmd, change.Path, tally); err != nil {
			logger.Warn("%v", err)
		}
	case filesystem.ChangeDeleted:
		// Stored notes outlive their files.
		logger.Info("note file removed: %s", change.Path)
	}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
