package normalisers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mtm/internal/core/domain"
)

func TestSplitFrontmatter(t *testing.T) {
	fm, body, err := SplitFrontmatter([]byte("---\ntitle: Retro\ncreated: 2024-05-01\n---\nBody line\n"))
	require.NoError(t, err)

	assert.Equal(t, "Retro", fm.TitleOf())
	assert.Equal(t, "Body line\n", body)

	date, ok := fm.DateOf()
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), date)
}

func TestSplitFrontmatter_None(t *testing.T) {
	fm, body, err := SplitFrontmatter([]byte("Plain body\n---\nnot a header"))
	require.NoError(t, err)
	assert.Equal(t, Frontmatter{}, fm)
	assert.Equal(t, "Plain body\n---\nnot a header", body)
}

func TestSplitFrontmatter_TitlePrecedence(t *testing.T) {
	fm, _, err := SplitFrontmatter([]byte("---\ntitle: B\nmeeting: A\n---\n"))
	require.NoError(t, err)
	assert.Equal(t, "A", fm.TitleOf())
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"2024-01-15 10:30:00", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"2024-01-15T10:30:00Z", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"20240115", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"15/01/2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"January 15, 2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParseDate(tc.in)
			require.True(t, ok)
			assert.True(t, tc.want.Equal(got), "got %v", got)
		})
	}

	_, ok := ParseDate("next tuesday")
	assert.False(t, ok)
	_, ok = ParseDate("  ")
	assert.False(t, ok)
}

func TestDateFromFilename(t *testing.T) {
	got, ok := DateFromFilename("/notes/20240301_sync.md")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got)

	_, ok = DateFromFilename("/notes/sync.md")
	assert.False(t, ok)
}

func TestResolveProject(t *testing.T) {
	assert.Equal(t, "cli", ResolveProject(Frontmatter{Project: "fm"}, &domain.RawNote{Project: "cli"}))
	assert.Equal(t, "fm", ResolveProject(Frontmatter{ProjectName: "fm"}, &domain.RawNote{}))
	assert.Equal(t, domain.DefaultProject, ResolveProject(Frontmatter{}, &domain.RawNote{}))
}

func TestHashContent(t *testing.T) {
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		HashContent(nil))
}
