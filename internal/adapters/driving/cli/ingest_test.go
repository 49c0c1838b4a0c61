package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mtm/internal/connectors/filesystem"
)

func TestIngestCmd_RequiresArgs(t *testing.T) {
	setupTestServices(t)

	_, err := runCLI(t, "ingest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestIngestCmd_HasProjectFlag(t *testing.T) {
	flag := ingestCmd.Flags().Lookup("project")
	require.NotNil(t, flag)
	assert.Equal(t, "p", flag.Shorthand)
}

func TestIngestCmd_WalksDirectory(t *testing.T) {
	env := setupTestServices(t)
	dir := writeFiles(t, map[string]string{
		"standup.md":          "# Standup\n\nWe agreed to freeze the release.\n",
		"notes/retro.txt":     "Retro\n\nDeploys were slow this sprint.\n",
		"notes/slides.pdf":    "%PDF-1.4",
		".hidden/skip.md":     "# Hidden\n\nNever read.\n",
		"notes/deep/plan.txt": "Plan the budget review.\n",
	})

	out, err := runCLI(t, "ingest", "--project", "apollo", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Ingested 3 notes")
	assert.Contains(t, out, "0 duplicates")
	assert.NotContains(t, out, "slides.pdf")
	assert.NotContains(t, out, "skip.md")

	projects, err := env.segments.ListProjects(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"apollo"}, projects)

	out, err = runCLI(t, "ingest", "--project", "apollo", filepath.Join(dir, "standup.md"))
	require.NoError(t, err)
	assert.Contains(t, out, "duplicate of note")
	assert.Contains(t, out, "1 duplicates")
}

func TestIngestCmd_UnsupportedFile(t *testing.T) {
	setupTestServices(t)
	dir := writeFiles(t, map[string]string{"deck.pdf": "%PDF"})

	_, err := runCLI(t, "ingest", filepath.Join(dir, "deck.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported type")
}

func TestIngestCmd_MissingPath(t *testing.T) {
	setupTestServices(t)

	_, err := runCLI(t, "ingest", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestIngestCmd_ServiceNotConfigured(t *testing.T) {
	clearServices()

	_, err := runCLI(t, "ingest", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingest service not configured")
}

func TestIngestCmd_FileURI(t *testing.T) {
	setupTestServices(t)
	dir := writeFiles(t, map[string]string{"sync.md": "# Sync\n\nShip on Friday.\n"})

	out, err := runCLI(t, "ingest", "file://"+filepath.Join(dir, "sync.md"))
	require.NoError(t, err)
	assert.Contains(t, out, "Ingested 1 notes")
}

func TestIngestCmd_HasWatchFlag(t *testing.T) {
	flag := ingestCmd.Flags().Lookup("watch")
	require.NotNil(t, flag)
	assert.Equal(t, "w", flag.Shorthand)
	assert.Equal(t, "false", flag.DefValue)
}

func TestIngestCmd_WatchNeedsDirectory(t *testing.T) {
	setupTestServices(t)
	dir := writeFiles(t, map[string]string{"sync.md": "# Sync\n\nShip on Friday.\n"})

	_, err := runCLI(t, "ingest", "--watch", filepath.Join(dir, "sync.md"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--watch needs at least one directory")
}

func TestHandleNoteChange(t *testing.T) {
	setupTestServices(t)
	dir := writeFiles(t, map[string]string{
		"new.md":   "# New\n\nAgreed to cut scope.\n",
		"deck.pdf": "%PDF",
	})
	cmd, out := testCommand()

	var tally ingestTally
	handleNoteChange(cmd, filesystem.Change{Type: filesystem.ChangeCreated, Path: filepath.Join(dir, "new.md")}, &tally)
	handleNoteChange(cmd, filesystem.Change{Type: filesystem.ChangeUpdated, Path: filepath.Join(dir, "new.md")}, &tally)
	handleNoteChange(cmd, filesystem.Change{Type: filesystem.ChangeCreated, Path: filepath.Join(dir, "deck.pdf")}, &tally)
	handleNoteChange(cmd, filesystem.Change{Type: filesystem.ChangeDeleted, Path: filepath.Join(dir, "gone.md")}, &tally)

	assert.Equal(t, 1, tally.ingested)
	assert.Equal(t, 1, tally.duplicates)
	assert.Positive(t, tally.segments)
	assert.Contains(t, out.String(), "+ "+filepath.Join(dir, "new.md"))
	assert.Contains(t, out.String(), "duplicate of note")
}

func TestWatchNotes_StopsOnCancel(t *testing.T) {
	setupTestServices(t)
	dir := t.TempDir()
	cmd, out := testCommand()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watchNotes(ctx, cmd, []string{dir}) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
	assert.Contains(t, out.String(), "Watch stopped")
}

func TestIsTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, isTerminal(f))
	assert.False(t, isTerminal(&bytes.Buffer{}))
	assert.False(t, isTerminal(nil))
}
