package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mtm/internal/core/domain"
)

func TestApplySetting(t *testing.T) {
	s := domain.DefaultAnalysisSettings()

	require.NoError(t, applySetting(&s, "kmeans_k", "8"))
	require.NoError(t, applySetting(&s, "min_theme_support", "2"))
	require.NoError(t, applySetting(&s, "min_confidence", "65.5"))
	require.NoError(t, applySetting(&s, "fuzzy_threshold", "70"))
	require.NoError(t, applySetting(&s, "analysis_timeout_seconds", "30"))
	require.NoError(t, applySetting(&s, "seed", "7"))
	require.NoError(t, applySetting(&s, "project", "apollo"))
	require.NoError(t, applySetting(&s, "role_taxonomy", "/etc/roles.yaml"))

	assert.Equal(t, 8, s.KMeansK)
	assert.Equal(t, 2, s.MinThemeSupport)
	assert.InDelta(t, 65.5, s.MinConfidence, 1e-9)
	assert.InDelta(t, 70, s.FuzzyThreshold, 1e-9)
	assert.Equal(t, 30*time.Second, s.Timeout)
	assert.Equal(t, int64(7), s.Seed)
	assert.Equal(t, "apollo", s.Project)
	assert.Equal(t, "/etc/roles.yaml", s.TaxonomyPath)
}

func TestApplySetting_Invalid(t *testing.T) {
	s := domain.DefaultAnalysisSettings()

	assert.ErrorIs(t, applySetting(&s, "kmeans_k", "many"), domain.ErrInvalidInput)
	assert.ErrorIs(t, applySetting(&s, "min_confidence", "high"), domain.ErrInvalidInput)
	assert.ErrorIs(t, applySetting(&s, "colour", "blue"), domain.ErrInvalidInput)
	assert.Equal(t, domain.DefaultAnalysisSettings(), s)
}

func TestParsePercent(t *testing.T) {
	assert.InDelta(t, 50, parsePercent("", 50), 1e-9)
	assert.InDelta(t, 72.5, parsePercent("72.5", 50), 1e-9)
	assert.InDelta(t, 50, parsePercent("101", 50), 1e-9)
	assert.InDelta(t, 50, parsePercent("-1", 50), 1e-9)
	assert.InDelta(t, 50, parsePercent("lots", 50), 1e-9)
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestApplyPipelineSetting(t *testing.T) {
	p := domain.DefaultPipelineSettings()

	require.NoError(t, applyPipelineSetting(&p, "strip_boilerplate", "false"))
	require.NoError(t, applyPipelineSetting(&p, "redact", "true"))
	require.NoError(t, applyPipelineSetting(&p, "extractors", "actions, decisions,"))

	assert.False(t, p.StripBoilerplate)
	assert.True(t, p.Redact)
	assert.Equal(t, []string{"actions", "decisions"}, p.Extractors)

	require.NoError(t, applyPipelineSetting(&p, "extractors", ""))
	assert.Empty(t, p.Extractors)
}

func TestApplyPipelineSetting_Invalid(t *testing.T) {
	p := domain.DefaultPipelineSettings()

	assert.ErrorIs(t, applyPipelineSetting(&p, "redact", "sometimes"), domain.ErrInvalidInput)
	assert.ErrorIs(t, applyPipelineSetting(&p, "extractors", "steps,summaries"), domain.ErrUnsupportedType)
	assert.Equal(t, domain.DefaultPipelineSettings(), p)
}

func TestIsPipelineSetting(t *testing.T) {
	for _, key := range []string{"strip_boilerplate", "redact", "extractors"} {
		assert.True(t, isPipelineSetting(key), key)
	}
	assert.False(t, isPipelineSetting("kmeans_k"))
}

func TestUnknownSetting_Suggests(t *testing.T) {
	tests := []struct {
		key, want string
	}{
		{"kmeans", `did you mean "kmeans_k"?`},
		{"seeds", `did you mean "seed"?`},
		{"redcat", `did you mean "redact"?`},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			err := unknownSetting(tt.key)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	err := unknownSetting("colour")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.NotContains(t, err.Error(), "did you mean")
}
