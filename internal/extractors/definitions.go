package extractors

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/mtm/internal/core/domain"
	"github.com/custodia-labs/mtm/internal/core/ports/driven"
)

// Ensure Definitions implements the interface.
var _ driven.Extractor = (*Definitions)(nil)

// DefaultMaxTermWords bounds the length of a defined term.
const DefaultMaxTermWords = 6

var (
	definedAs      = regexp.MustCompile(`^([A-Z][A-Za-z0-9 ]*?)\s+(?:is|are|means|refers to|defines?)\s+(.+)$`)
	definedByColon = regexp.MustCompile(`^([A-Z][A-Za-z0-9 ]*?):\s+(.+)$`)
)

// reservedTerms are labels other extractors own, or pronouns that never name a term.
var reservedTerms = map[string]bool{
	"action": true, "action item": true, "agreed": true, "answer": true,
	"deadline": true, "decided": true, "decision": true, "due": true,
	"note": true, "notes": true, "owner": true, "question": true,
	"status": true, "todo": true,
	"he": true, "how": true, "it": true, "she": true, "that": true,
	"there": true, "these": true, "they": true, "this": true, "those": true,
	"we": true, "what": true, "when": true, "where": true, "which": true,
	"who": true, "why": true,
}

// Definitions extracts "Term is/means/refers to ..." and "Term: ..." sentences.
type Definitions struct {
	maxTermWords int
}

// DefinitionOption configures the definition extractor.
type DefinitionOption func(*Definitions)

// WithMaxTermWords sets the longest term kept, in words.
func WithMaxTermWords(n int) DefinitionOption {
	return func(d *Definitions) {
		if n > 0 {
			d.maxTermWords = n
		}
	}
}

// NewDefinitions creates a definition extractor.
func NewDefinitions(opts ...DefinitionOption) *Definitions {
	d := &Definitions{maxTermWords: DefaultMaxTermWords}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns the extractor name.
func (d *Definitions) Name() string { return DefinitionsName }

// Kind returns domain.KindDefinition.
func (d *Definitions) Kind() domain.ExtractionKind { return domain.KindDefinition }

// Extract returns one definition per term; later redefinitions are ignored.
func (d *Definitions) Extract(ctx context.Context, text string, prov domain.Provenance) ([]domain.Extraction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []domain.Extraction
	seen := make(map[string]bool)

	for _, l := range splitLines(text) {
		for _, sentence := range sentences(l.text) {
			if strings.Contains(sentence, "?") {
				continue
			}
			term, definition, ok := d.match(sentence)
			if !ok || seen[strings.ToLower(term)] {
				continue
			}
			seen[strings.ToLower(term)] = true

			out = append(out, &domain.Definition{
				ExtractionBase: newBase(prov),
				Term:           term,
				Definition:     definition,
				Context:        l.text,
			})
		}
	}
	return out, nil
}

func (d *Definitions) match(sentence string) (term, definition string, ok bool) {
	m := definedAs.FindStringSubmatch(sentence)
	if m == nil {
		m = definedByColon.FindStringSubmatch(sentence)
	}
	if m == nil {
		return "", "", false
	}

	term = strings.TrimSpace(m[1])
	definition = trimTrailingPunct(m[2])
	if len(term) <= 2 || len(definition) <= 5 {
		return "", "", false
	}
	if reservedTerms[strings.ToLower(term)] || len(strings.Fields(term)) > d.maxTermWords {
		return "", "", false
	}
	return term, definition, true
}
