package extractors

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/mtm/internal/core/domain"
	"github.com/custodia-labs/mtm/internal/core/ports/driven"
)

// Ensure FAQs implements the interface.
var _ driven.Extractor = (*FAQs)(nil)

var (
	questionLabel  = regexp.MustCompile(`(?i)^(?:q|question)\s*[.:]\s*(.+)$`)
	answerLabel    = regexp.MustCompile(`(?i)^(?:a|answer)\s*[.:]\s*(.+)$`)
	inlineQuestion = regexp.MustCompile(`^(.+?\?)\s*(.*)$`)
)

// FAQs extracts question and answer pairs.
//
// A question is a "Q:"-labelled line or any line containing a question mark.
// Its answer is the rest of that line plus following lines up to the next
// question, with any "A:" label removed.
type FAQs struct{}

// NewFAQs creates a FAQ extractor.
func NewFAQs() *FAQs {
	return &FAQs{}
}

// Name returns the extractor name.
func (f *FAQs) Name() string { return FAQsName }

// Kind returns domain.KindFAQ.
func (f *FAQs) Kind() domain.ExtractionKind { return domain.KindFAQ }

// Extract returns pairs whose question and answer are both substantive.
func (f *FAQs) Extract(ctx context.Context, text string, prov domain.Provenance) ([]domain.Extraction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		out      []domain.Extraction
		question string
		answer   []string
		open     bool
	)

	flush := func() {
		a := strings.TrimSpace(strings.Join(answer, " "))
		if open && len(question) > 3 && len(a) > 5 {
			out = append(out, &domain.FAQ{
				ExtractionBase: newBase(prov),
				Question:       question,
				Answer:         a,
			})
		}
		question, answer, open = "", nil, false
	}

	start := func(s string) {
		flush()
		open = true
		if m := inlineQuestion.FindStringSubmatch(s); m != nil {
			question = strings.TrimSpace(m[1])
			if rest := stripAnswerLabel(m[2]); rest != "" {
				answer = append(answer, rest)
			}
			return
		}
		question = strings.TrimSpace(s)
	}

	for _, l := range splitLines(text) {
		switch {
		case questionLabel.MatchString(l.text):
			start(questionLabel.FindStringSubmatch(l.text)[1])
		case open && answerLabel.MatchString(l.text):
			answer = append(answer, answerLabel.FindStringSubmatch(l.text)[1])
		case strings.Contains(l.text, "?"):
			start(l.text)
		case open:
			answer = append(answer, l.text)
		}
	}
	flush()

	return out, nil
}

func stripAnswerLabel(s string) string {
	s = strings.TrimSpace(s)
	if m := answerLabel.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}
