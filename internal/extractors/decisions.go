package extractors

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/mtm/internal/core/domain"
	"github.com/custodia-labs/mtm/internal/core/ports/driven"
)

// Ensure Decisions implements the interface.
var _ driven.Extractor = (*Decisions)(nil)

// DecisionStatus is the status given to every extracted decision.
const DecisionStatus = "decided"

var (
	decisionLabel  = regexp.MustCompile(`(?i)^(?:decided|decision|agreed)\s*:\s*(.+)$`)
	decisionInline = regexp.MustCompile(`(?i)\b(?:we|the team|the group|everyone|they)\s+(?:have\s+)?(?:decided|agreed)\s+(?:to\s+|that\s+|on\s+)?([^.;!]+)`)
	rationale      = regexp.MustCompile(`(?i)\s+because\s+`)
	decisionMaker  = regexp.MustCompile(`\b(?:[Bb]y|[Ff]rom|[Mm]ade by)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)`)
)

// Decisions extracts "Decision: ..." lines and "we decided/agreed to ..." clauses.
type Decisions struct{}

// NewDecisions creates a decision extractor.
func NewDecisions() *Decisions {
	return &Decisions{}
}

// Name returns the extractor name.
func (d *Decisions) Name() string { return DecisionsName }

// Kind returns domain.KindDecision.
func (d *Decisions) Kind() domain.ExtractionKind { return domain.KindDecision }

// Extract returns at most one decision per line. A "because" clause becomes
// the rationale and a capitalised name after "by" becomes the decision maker.
func (d *Decisions) Extract(ctx context.Context, text string, prov domain.Provenance) ([]domain.Extraction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []domain.Extraction
	for _, l := range splitLines(text) {
		var body string
		if m := decisionLabel.FindStringSubmatch(l.text); m != nil {
			body = m[1]
		} else if m := decisionInline.FindStringSubmatch(l.text); m != nil {
			body = m[1]
		} else {
			continue
		}

		body = trimTrailingPunct(body)
		var why string
		if parts := rationale.Split(body, 2); len(parts) == 2 {
			body, why = strings.TrimSpace(parts[0]), trimTrailingPunct(parts[1])
		}
		if len(body) <= 5 {
			continue
		}

		var maker string
		if m := decisionMaker.FindStringSubmatch(l.text); m != nil && isPersonName(m[1]) {
			maker = m[1]
		}

		out = append(out, &domain.Decision{
			ExtractionBase: newBase(prov),
			Decision:       body,
			Rationale:      why,
			DecisionMaker:  maker,
			Status:         DecisionStatus,
		})
	}
	return out, nil
}
