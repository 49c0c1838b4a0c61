package extractors

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/mtm/internal/core/domain"
)

var (
	quoteMarker    = regexp.MustCompile(`^(?:>\s*)+`)
	numberedMarker = regexp.MustCompile(`^\d+[.)]\s+`)
	bulletMarker   = regexp.MustCompile(`^[-*+•]\s+`)
	checkbox       = regexp.MustCompile(`^\[([ xX])\]\s+`)
)

// line is one non-blank input line with its list decoration removed.
type line struct {
	text     string
	numbered bool
	bulleted bool
	checked  *bool
}

// splitLines trims every line and strips quote, list and task markers.
func splitLines(text string) []line {
	raw := strings.Split(text, "\n")
	out := make([]line, 0, len(raw))
	for _, r := range raw {
		s := strings.TrimSpace(r)
		s = quoteMarker.ReplaceAllString(s, "")

		var l line
		if loc := numberedMarker.FindStringIndex(s); loc != nil {
			l.numbered = true
			s = s[loc[1]:]
		} else if loc := bulletMarker.FindStringIndex(s); loc != nil {
			l.bulleted = true
			s = s[loc[1]:]
		}
		if m := checkbox.FindStringSubmatch(s); m != nil {
			done := m[1] != " "
			l.checked = &done
			s = s[len(m[0]):]
		}

		l.text = strings.TrimSpace(s)
		if l.text != "" {
			out = append(out, l)
		}
	}
	return out
}

var sentenceEnd = regexp.MustCompile(`[.!;]+(?:\s+|$)`)

// sentences splits a line at terminal punctuation. Question marks are kept
// inside sentences so FAQ text survives.
func sentences(text string) []string {
	parts := sentenceEnd.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// newBase stamps a fresh ID and a private copy of the provenance.
func newBase(prov domain.Provenance) domain.ExtractionBase {
	prov.SegmentIDs = append([]string(nil), prov.SegmentIDs...)
	return domain.ExtractionBase{
		ID:         uuid.New().String(),
		Provenance: prov,
		CreatedAt:  time.Now().UTC(),
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func trimTrailingPunct(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), ".;!")
}

var calendarWords = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true, "today": true,
	"tomorrow": true, "tonight": true, "january": true, "february": true,
	"march": true, "april": true, "may": true, "june": true, "july": true,
	"august": true, "september": true, "october": true, "november": true,
	"december": true, "next": true, "end": true, "eod": true, "eow": true,
}

// isPersonName reports whether a captured name is plausibly a person, not a date word.
func isPersonName(name string) bool {
	fields := strings.Fields(name)
	return len(fields) > 0 && !calendarWords[strings.ToLower(fields[0])]
}
