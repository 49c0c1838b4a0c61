// Package metrics defines Prometheus metrics for mtm.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry holds every mtm metric. It is separate from the default registry
// so that text dumps only carry mtm series.
var Registry = prometheus.NewRegistry()

var (
	ThemesEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mtm_themes_emitted_total",
			Help: "Themes persisted by analysis, by strategy",
		},
		[]string{"strategy"},
	)

	RoleMappingsWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mtm_role_mappings_written_total",
			Help: "Role mapping upserts, by outcome",
		},
		[]string{"outcome"},
	)

	VersionsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mtm_versions_created_total",
			Help: "Module version entries written, by change type",
		},
		[]string{"change"},
	)

	VersionConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mtm_version_conflicts_total",
			Help: "Version updates rejected because the stored version moved",
		},
	)

	AnalysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mtm_analysis_duration_seconds",
			Help:    "Theme analysis duration in seconds, by strategy",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)
)

func init() {
	Registry.MustRegister(
		ThemesEmitted, RoleMappingsWritten,
		VersionsCreated, VersionConflicts,
		AnalysisDuration,
	)
}

// WriteTextfile writes the registry in the text exposition format to path.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
