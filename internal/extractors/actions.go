package extractors

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/custodia-labs/mtm/internal/core/domain"
	"github.com/custodia-labs/mtm/internal/core/ports/driven"
)

// Ensure Actions implements the interface.
var _ driven.Extractor = (*Actions)(nil)

// Action statuses.
const (
	ActionPending = "pending"
	ActionDone    = "done"
)

var (
	actionLabel = regexp.MustCompile(`(?i)^(?:action(?:\s+item)?s?|todo)\s*[.:]\s*(.+)$`)
	todoPrefix  = regexp.MustCompile(`^TODO\s+(.+)$`)
	ownerPrefix = regexp.MustCompile(`^@([A-Za-z][\w.-]*)\s+(?:will|to|should|needs? to)\s+.+$`)

	mentionAssignee  = regexp.MustCompile(`@([A-Za-z][\w.-]*)`)
	labelledAssignee = regexp.MustCompile(`(?i:assigned to|owner)\s*:?\s*@?([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)`)
	leadingAssignee  = regexp.MustCompile(`^([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)\s+(?:will|to|should)\s`)

	dueLabelled = regexp.MustCompile(`\b(?i:due|by|deadline|before)[:\s]+(\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}/\d{2,4}|[A-Z][a-z]+\s+\d{1,2}(?:,?\s+\d{4})?)`)
	dueBare     = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}/\d{2,4})\b`)

	actionStatus = regexp.MustCompile(`(?i)\b(?:status|state)[:\s]+(pending|in progress|completed|done|open|closed)`)
)

// dueLayouts are tried in order; slash dates read month first.
var dueLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"1/2/06",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"January 2",
	"Jan 2",
}

// Actions extracts action items with optional assignee, due date and status.
//
// Recognised forms are "Action:"/"Action item:"/"TODO" lines, markdown task
// list entries ("- [ ] ...") and "@owner will ..." lines.
type Actions struct{}

// NewActions creates an action item extractor.
func NewActions() *Actions {
	return &Actions{}
}

// Name returns the extractor name.
func (a *Actions) Name() string { return ActionsName }

// Kind returns domain.KindAction.
func (a *Actions) Kind() domain.ExtractionKind { return domain.KindAction }

// Extract returns one action per matching line. Year-less due dates take the
// year of the provenance date.
func (a *Actions) Extract(ctx context.Context, text string, prov domain.Provenance) ([]domain.Extraction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []domain.Extraction
	for _, l := range splitLines(text) {
		body, ok := actionText(l)
		if !ok || len(body) < 5 {
			continue
		}

		status := ActionPending
		if m := actionStatus.FindStringSubmatch(body); m != nil {
			status = strings.ToLower(m[1])
		}
		if l.checked != nil && *l.checked {
			status = ActionDone
		}

		out = append(out, &domain.Action{
			ExtractionBase: newBase(prov),
			Action:         body,
			Assignee:       assigneeOf(body),
			DueDate:        dueDateOf(body, prov.Date),
			Status:         status,
		})
	}
	return out, nil
}

func actionText(l line) (string, bool) {
	if m := actionLabel.FindStringSubmatch(l.text); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	if m := todoPrefix.FindStringSubmatch(l.text); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	if l.checked != nil || ownerPrefix.MatchString(l.text) {
		return l.text, true
	}
	return "", false
}

func assigneeOf(body string) string {
	if m := mentionAssignee.FindStringSubmatch(body); m != nil {
		return m[1]
	}
	for _, p := range []*regexp.Regexp{labelledAssignee, leadingAssignee} {
		if m := p.FindStringSubmatch(body); m != nil && isPersonName(m[1]) {
			return m[1]
		}
	}
	return ""
}

func dueDateOf(body string, ref time.Time) *time.Time {
	for _, p := range []*regexp.Regexp{dueLabelled, dueBare} {
		m := p.FindStringSubmatch(body)
		if m == nil {
			continue
		}
		if t, ok := parseDue(m[1], ref); ok {
			return &t
		}
	}
	return nil
}

func parseDue(s string, ref time.Time) (time.Time, bool) {
	if ref.IsZero() {
		ref = time.Now()
	}
	for _, layout := range dueLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if t.Year() == 0 {
			t = time.Date(ref.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
		return t, true
	}
	return time.Time{}, false
}
