package domain

import (
	"fmt"
	"time"
)

// AnalysisSettings configures the theme engine and role mapper.
// It is built once at start-up and passed by value.
type AnalysisSettings struct {
	// KMeansK is the target cluster count.
	KMeansK int

	// MinThemeSupport is the minimum segments a theme needs to be kept.
	MinThemeSupport int

	// MinConfidence drops roles scoring below it.
	MinConfidence float64

	// FuzzyThreshold is the partial-similarity score a keyword must reach.
	FuzzyThreshold float64

	// Project filters analysis to one project ("" for all).
	Project string

	// TaxonomyPath overrides the role taxonomy file location.
	TaxonomyPath string

	// Seed fixes the clustering random source.
	Seed int64

	// Timeout bounds a single project's clustering run (0 disables).
	Timeout time.Duration
}

// DefaultAnalysisSettings returns sensible defaults.
func DefaultAnalysisSettings() AnalysisSettings {
	return AnalysisSettings{
		KMeansK:         6,
		MinThemeSupport: 3,
		MinConfidence:   50.0,
		FuzzyThreshold:  60.0,
		Seed:            42,
		Timeout:         2 * time.Minute,
	}
}

// Validate checks the settings are consistent.
func (s AnalysisSettings) Validate() error {
	if s.KMeansK < 1 {
		return fmt.Errorf("%w: kmeans_k must be at least 1, got %d", ErrInvalidInput, s.KMeansK)
	}
	if s.MinThemeSupport < 1 {
		return fmt.Errorf("%w: min_theme_support must be at least 1, got %d", ErrInvalidInput, s.MinThemeSupport)
	}
	if s.MinConfidence < 0 || s.MinConfidence > 100 {
		return fmt.Errorf("%w: min_confidence must be in [0, 100], got %g", ErrInvalidInput, s.MinConfidence)
	}
	if s.FuzzyThreshold < 0 || s.FuzzyThreshold > 100 {
		return fmt.Errorf("%w: fuzzy_threshold must be in [0, 100], got %g", ErrInvalidInput, s.FuzzyThreshold)
	}
	if s.Timeout < 0 {
		return fmt.Errorf("%w: analysis timeout must not be negative", ErrInvalidInput)
	}
	return nil
}

// PipelineSettings configures how notes are segmented and which extractors run.
type PipelineSettings struct {
	// StripBoilerplate drops header lines such as "Attendees:" from segments.
	StripBoilerplate bool

	// Redact masks e-mail addresses and phone numbers in segments.
	Redact bool

	// Extractors names the extractors to run, in order. Empty runs all of them.
	Extractors []string
}

// DefaultPipelineSettings strips boilerplate, keeps contact details and runs
// every extractor.
func DefaultPipelineSettings() PipelineSettings {
	return PipelineSettings{StripBoilerplate: true}
}
