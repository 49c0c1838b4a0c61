// Package roles scores text against a role taxonomy.
package roles

import (
	"sort"
	"strings"

	"github.com/custodia-labs/mtm/internal/core/domain"
	"github.com/custodia-labs/mtm/internal/fuzzy"
)

const (
	exactScore   = 100.0
	projectBoost = 1.2
	maxScore     = 100.0
)

// Scorer computes role confidences with keyword and fuzzy matching.
type Scorer struct {
	threshold     float64
	minConfidence float64
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithThreshold sets the minimum fuzzy score for a keyword to count.
func WithThreshold(t float64) Option {
	return func(s *Scorer) {
		s.threshold = t
	}
}

// WithMinConfidence sets the cut-off below which roles are dropped.
func WithMinConfidence(c float64) Option {
	return func(s *Scorer) {
		s.minConfidence = c
	}
}

// NewScorer creates a scorer with threshold 60 and min confidence 50.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{threshold: 60, minConfidence: 50}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Confidence scores text against one role's keywords.
//
// An exact case-insensitive substring match scores 100. Otherwise the fuzzy
// partial ratio counts when it reaches the threshold. The result is
// (sum/total) * (0.7 + 0.3*matched/total), capped at 100. Blank keywords
// are ignored. It also returns the keywords that matched.
func (s *Scorer) Confidence(text string, keywords []string) (float64, []string) {
	text = strings.ToLower(text)
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}

	var (
		total   int
		sum     float64
		matched []string
	)
	for _, kw := range keywords {
		lower := strings.ToLower(strings.TrimSpace(kw))
		if lower == "" {
			continue
		}
		total++

		if strings.Contains(text, lower) {
			sum += exactScore
			matched = append(matched, kw)
			continue
		}
		if score := fuzzy.PartialRatio(lower, text); score >= s.threshold {
			sum += score
			matched = append(matched, kw)
		}
	}
	if len(matched) == 0 {
		return 0, nil
	}

	n := float64(total)
	conf := (sum / n) * (0.7 + 0.3*float64(len(matched))/n)
	return min(conf, maxScore), matched
}

// Score rates text from project against every role in the taxonomy.
// Roles under the min confidence are dropped; the rest are sorted by
// confidence, highest first, with ties in role-name order.
func (s *Scorer) Score(text, project string, taxonomy domain.Taxonomy) []domain.RoleScore {
	if taxonomy.IsEmpty() {
		return nil
	}

	var scores []domain.RoleScore
	for _, role := range taxonomy.Roles {
		conf, matched := s.Confidence(text, role.Keywords)

		boosted := hintMatches(project, role.Projects)
		if boosted {
			conf = min(conf*projectBoost, maxScore)
		}
		if conf < s.minConfidence || conf == 0 {
			continue
		}
		scores = append(scores, domain.RoleScore{
			Role:         role.Name,
			Confidence:   conf,
			Matched:      matched,
			ProjectBoost: boosted,
		})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Confidence != scores[j].Confidence {
			return scores[i].Confidence > scores[j].Confidence
		}
		return scores[i].Role < scores[j].Role
	})
	return scores
}

// hintMatches reports whether any non-blank hint appears in the project name.
func hintMatches(project string, hints []string) bool {
	project = strings.ToLower(project)
	for _, hint := range hints {
		hint = strings.ToLower(strings.TrimSpace(hint))
		if hint != "" && strings.Contains(project, hint) {
			return true
		}
	}
	return false
}
