package domain

import (
	"fmt"
	"strings"
	"time"
)

// themeNameTerms is how many leading keywords make up a theme name.
const themeNameTerms = 3

// Strategy identifies which theme discovery path produced a result.
type Strategy string

// Available strategies.
const (
	// StrategyNone means no analysis ran (empty input).
	StrategyNone Strategy = "none"

	// StrategyKMeans clusters TF-IDF vectors.
	StrategyKMeans Strategy = "kmeans"

	// StrategyCooccurrence groups segments by frequent keyword pairs.
	StrategyCooccurrence Strategy = "cooccurrence"
)

// String returns the string representation.
func (s Strategy) String() string {
	return string(s)
}

// ThemeDraft is the engine output from which persisted Themes are built.
type ThemeDraft struct {
	// Keywords are ranked representative terms.
	Keywords []string

	// SupportCount is the number of contributing segments.
	SupportCount int

	// SegmentIDs are the contributing segments, in corpus order.
	SegmentIDs []string
}

// Theme is a cluster of semantically related segments.
type Theme struct {
	// ID is the unique identifier for the theme.
	ID string

	// Project is the partition key.
	Project string

	// Name is derived from the top keywords.
	Name string

	// Description summarises the theme's support.
	Description string

	// Keywords are ranked representative terms.
	Keywords []string

	// SupportCount equals len(SegmentIDs) at creation.
	SupportCount int

	// SegmentIDs back-reference the contributing segments.
	SegmentIDs []string

	// NoteID is the first contributing segment's note, if known.
	NoteID string

	// CreatedAt is when the theme was created.
	CreatedAt time.Time
}

// NewTheme builds a Theme from a draft, enforcing the draft's invariants.
// The caller supplies the ID so that ID generation stays outside the domain.
func NewTheme(id, project string, draft ThemeDraft, noteID string, now time.Time) (*Theme, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: theme id is required", ErrInvalidInput)
	}
	if len(draft.Keywords) == 0 {
		return nil, fmt.Errorf("%w: theme needs at least one keyword", ErrInvalidInput)
	}
	if draft.SupportCount != len(draft.SegmentIDs) {
		return nil, fmt.Errorf("%w: support count %d does not match %d segment ids",
			ErrInvalidInput, draft.SupportCount, len(draft.SegmentIDs))
	}
	if project == "" {
		project = GlobalProject
	}

	nameTerms := draft.Keywords
	if len(nameTerms) > themeNameTerms {
		nameTerms = nameTerms[:themeNameTerms]
	}

	return &Theme{
		ID:           id,
		Project:      project,
		Name:         strings.Join(nameTerms, ", "),
		Description:  fmt.Sprintf("Theme with %d supporting segments", draft.SupportCount),
		Keywords:     append([]string(nil), draft.Keywords...),
		SupportCount: draft.SupportCount,
		SegmentIDs:   append([]string(nil), draft.SegmentIDs...),
		NoteID:       noteID,
		CreatedAt:    now,
	}, nil
}
