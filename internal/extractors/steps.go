package extractors

import (
	"context"
	"regexp"

	"github.com/custodia-labs/mtm/internal/core/domain"
	"github.com/custodia-labs/mtm/internal/core/ports/driven"
)

// Ensure Steps implements the interface.
var _ driven.Extractor = (*Steps)(nil)

// DefaultMinStepLength is the shortest step text kept.
const DefaultMinStepLength = 6

const maxStepTitle = 100

// imperative matches text opening with a capitalised word, e.g. "Deploy the build".
var imperative = regexp.MustCompile(`^[A-Z][a-z]+\s`)

// Steps extracts numbered or bulleted imperative lines as process steps.
type Steps struct {
	minLength int
}

// StepOption configures the step extractor.
type StepOption func(*Steps)

// WithMinStepLength sets the shortest step text kept.
func WithMinStepLength(n int) StepOption {
	return func(s *Steps) {
		if n > 0 {
			s.minLength = n
		}
	}
}

// NewSteps creates a step extractor.
func NewSteps(opts ...StepOption) *Steps {
	s := &Steps{minLength: DefaultMinStepLength}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the extractor name.
func (s *Steps) Name() string { return StepsName }

// Kind returns domain.KindStep.
func (s *Steps) Kind() domain.ExtractionKind { return domain.KindStep }

// Extract numbers steps in document order. A repeated description is kept once.
func (s *Steps) Extract(ctx context.Context, text string, prov domain.Provenance) ([]domain.Extraction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []domain.Extraction
	seen := make(map[string]bool)

	for _, l := range splitLines(text) {
		if !l.numbered && !l.bulleted {
			continue
		}
		if len(l.text) < s.minLength || !imperative.MatchString(l.text) || seen[l.text] {
			continue
		}
		seen[l.text] = true

		out = append(out, &domain.Step{
			ExtractionBase: newBase(prov),
			Number:         len(out) + 1,
			Title:          truncate(l.text, maxStepTitle),
			Description:    l.text,
		})
	}
	return out, nil
}
