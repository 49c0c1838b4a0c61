package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mtm/internal/adapters/driven/config/file"
	"github.com/custodia-labs/mtm/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/mtm/internal/core/domain"
	"github.com/custodia-labs/mtm/internal/core/ports/driving"
	"github.com/custodia-labs/mtm/internal/core/services"
	"github.com/custodia-labs/mtm/internal/extractors"
	"github.com/custodia-labs/mtm/internal/normalisers/markdown"
	"github.com/custodia-labs/mtm/internal/normalisers/plaintext"
	"github.com/custodia-labs/mtm/internal/postprocessors/segmenter"
)

const testTaxonomyYAML = `roles:
  developer:
    keywords: [deploy, rollback]
  finance:
    keywords: [budget, forecast]
`

// testEnv holds the in-memory stores behind the injected services.
type testEnv struct {
	segments *memory.SegmentStore
	themes   *memory.ThemeStore
	config   *memory.ConfigStore
	dir      string
}

// setupTestServices injects services backed by memory stores and restores
// the previous services when the test ends.
func setupTestServices(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		segments: memory.NewSegmentStore(),
		themes:   memory.NewThemeStore(),
		config:   memory.NewConfigStore(),
		dir:      t.TempDir(),
	}
	taxonomyPath := filepath.Join(env.dir, "role_taxonomy.yaml")
	require.NoError(t, os.WriteFile(taxonomyPath, []byte(testTaxonomyYAML), 0o600))

	mappings := memory.NewRoleMappingStore()
	SetServices(Services{
		Settings:   services.NewSettingsService(env.config),
		Ingest:     services.NewIngestService(env.segments, segmenter.New(), markdown.New(), plaintext.New()),
		Extraction: services.NewExtractionService(env.segments, memory.NewExtractionStore(), extractors.NewDefaultPipeline()),
		Versions:   services.NewVersionService(memory.NewModuleStore()),
		Themes: func(s domain.AnalysisSettings) driving.ThemeService {
			return services.NewThemeService(env.segments, env.themes, s)
		},
		Roles: func(s domain.AnalysisSettings) driving.RoleService {
			return services.NewRoleService(env.segments, env.themes, mappings, file.NewTaxonomyLoader(taxonomyPath, ""), s)
		},
	})
	t.Cleanup(clearServices)
	return env
}

// clearServices leaves every service unset but marked ready, so commands
// report "not configured" instead of wiring real storage.
func clearServices() {
	SetServices(Services{})
}

// runCLI executes the root command with args and returns its output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	}()

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// resetFlags returns every flag to its default so runs do not leak state.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// writeFiles creates name -> content files in a fresh directory.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return dir
}

func init() {
	// Tests never wire real storage.
	clearServices()
}

// testCommand returns a bare command writing to a buffer, for calling
// run helpers directly.
func testCommand() (*cobra.Command, *bytes.Buffer) {
	buf := new(bytes.Buffer)
	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	return cmd, buf
}
