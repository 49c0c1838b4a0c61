package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(ThemesEmitted.WithLabelValues("kmeans"))
	ThemesEmitted.WithLabelValues("kmeans").Add(3)
	assert.InDelta(t, before+3, testutil.ToFloat64(ThemesEmitted.WithLabelValues("kmeans")), 1e-9)

	before = testutil.ToFloat64(VersionConflicts)
	VersionConflicts.Inc()
	assert.InDelta(t, before+1, testutil.ToFloat64(VersionConflicts), 1e-9)
}

func TestWriteTextfile(t *testing.T) {
	RoleMappingsWritten.WithLabelValues("inserted").Inc()
	AnalysisDuration.WithLabelValues("cooccurrence").Observe(0.25)

	path := filepath.Join(t.TempDir(), "mtm.prom")
	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `mtm_role_mappings_written_total{outcome="inserted"}`)
	assert.Contains(t, string(data), "mtm_analysis_duration_seconds_bucket")
}
