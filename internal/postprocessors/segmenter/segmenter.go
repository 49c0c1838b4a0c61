// Package segmenter splits meeting notes into block-level segments.
//
// Notes are parsed as CommonMark (plain text parses as paragraphs). Each
// top-level paragraph, list, blockquote, code block or HTML block becomes one
// segment. Headings are folded into the block that follows them so a segment
// keeps its section context.
package segmenter

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/custodia-labs/mtm/internal/core/domain"
	"github.com/custodia-labs/mtm/internal/core/ports/driven"
)

// Ensure Segmenter implements the interface.
var _ driven.Segmenter = (*Segmenter)(nil)

// Segmenter walks the goldmark block tree of a note.
type Segmenter struct {
	md               goldmark.Markdown
	stripBoilerplate bool
	redact           bool
}

// Option configures the segmenter.
type Option func(*Segmenter)

// WithBoilerplateStripping drops header lines such as "Attendees:" and "Page 3".
func WithBoilerplateStripping(enabled bool) Option {
	return func(s *Segmenter) {
		s.stripBoilerplate = enabled
	}
}

// WithRedaction replaces e-mail addresses and phone numbers with placeholders.
func WithRedaction(enabled bool) Option {
	return func(s *Segmenter) {
		s.redact = enabled
	}
}

// New creates a segmenter. Boilerplate stripping is on and redaction off by default.
func New(opts ...Option) *Segmenter {
	s := &Segmenter{
		md:               goldmark.New(goldmark.WithExtensions(extension.GFM)),
		stripBoilerplate: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the segmenter name.
func (s *Segmenter) Name() string {
	return "segmenter"
}

// Segment splits the note content into ordered segments. IDs and timestamps
// are left for the caller to assign.
func (s *Segmenter) Segment(ctx context.Context, note *domain.Note) ([]domain.Segment, error) {
	if note == nil {
		return nil, domain.ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src := []byte(note.Content)
	doc := s.md.Parser().Parse(text.NewReader(src))
	lines := newLineIndex(src)

	var (
		segments []domain.Segment
		headings []string
		headLine int
	)

	emit := func(body string, startLine, endLine int) {
		parts := make([]string, 0, len(headings)+1)
		parts = append(parts, headings...)
		if body != "" {
			parts = append(parts, body)
		}
		if headLine > 0 {
			startLine = headLine
		}
		headings, headLine = nil, 0

		content := strings.Join(parts, "\n")
		if strings.TrimSpace(content) == "" {
			return
		}
		segments = append(segments, domain.Segment{
			NoteID:     note.ID,
			Project:    note.Project,
			SourceFile: note.SourceFile,
			Content:    content,
			Order:      len(segments),
			LineStart:  startLine,
			LineEnd:    endLine,
		})
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		start, stop, ok := blockSpan(n)
		if !ok {
			continue
		}
		startLine, endLine := lines.lineOf(start), lines.lineOf(stop-1)

		switch n.Kind() {
		case ast.KindThematicBreak:
			continue
		case ast.KindHeading:
			heading := s.clean(string(src[start:stop]))
			if heading == "" {
				continue
			}
			if headLine == 0 {
				headLine = startLine
			}
			headings = append(headings, heading)
		default:
			body := s.clean(string(src[lines.start(startLine):lines.end(endLine)]))
			if body == "" {
				continue
			}
			emit(body, startLine, endLine)
		}
	}

	// A trailing heading with no block after it stands alone.
	if len(headings) > 0 {
		emit("", headLine, headLine)
	}

	return segments, nil
}

// blockSpan returns the source byte range covered by a block and its descendants.
func blockSpan(n ast.Node) (start, stop int, ok bool) {
	if n.Type() != ast.TypeBlock {
		return 0, 0, false
	}

	start, stop = -1, -1
	if segs := n.Lines(); segs != nil && segs.Len() > 0 {
		start = segs.At(0).Start
		stop = segs.At(segs.Len() - 1).Stop
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		cs, ce, cok := blockSpan(c)
		if !cok {
			continue
		}
		if start < 0 || cs < start {
			start = cs
		}
		if ce > stop {
			stop = ce
		}
	}
	return start, stop, start >= 0 && stop > start
}

// ==================== Cleaning ====================

var boilerplatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^meeting notes\b`),
	regexp.MustCompile(`(?i)^minutes\b`),
	regexp.MustCompile(`(?i)^agenda\b`),
	regexp.MustCompile(`(?i)^attendees?:`),
	regexp.MustCompile(`(?i)^date:`),
	regexp.MustCompile(`(?i)^time:`),
	regexp.MustCompile(`(?i)^location:`),
	regexp.MustCompile(`(?i)^page \d+`),
	regexp.MustCompile(`(?i)^confidential\b`),
	regexp.MustCompile(`(?i)^this document\b`),
}

var (
	spaceRun     = regexp.MustCompile(`[ \t]+`)
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern = regexp.MustCompile(`(?:\+\d{1,3}[-. ]?)?(?:\(\d{3}\)\s?|\b\d{3}[-.]?)\d{3}[-.]?\d{4}\b`)
)

// clean applies line-level boilerplate removal, whitespace collapsing and redaction.
func (s *Segmenter) clean(block string) string {
	in := strings.Split(block, "\n")
	out := make([]string, 0, len(in))
	for _, line := range in {
		line = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
		if line == "" {
			continue
		}
		if s.stripBoilerplate && isBoilerplate(line) {
			continue
		}
		if s.redact {
			line = emailPattern.ReplaceAllString(line, "[EMAIL]")
			line = phonePattern.ReplaceAllString(line, "[PHONE]")
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func isBoilerplate(line string) bool {
	for _, p := range boilerplatePatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

// ==================== Line Index ====================

// lineIndex maps byte offsets to 1-based line numbers.
type lineIndex struct {
	starts []int
	size   int
}

func newLineIndex(src []byte) lineIndex {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return lineIndex{starts: starts, size: len(src)}
}

func (l lineIndex) lineOf(offset int) int {
	return sort.Search(len(l.starts), func(i int) bool { return l.starts[i] > offset })
}

func (l lineIndex) start(line int) int {
	return l.starts[line-1]
}

// end returns the offset just past the line's content, excluding the newline.
func (l lineIndex) end(line int) int {
	if line < len(l.starts) {
		return l.starts[line] - 1
	}
	return l.size
}
