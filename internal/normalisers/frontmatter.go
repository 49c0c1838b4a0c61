package normalisers

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/mtm/internal/core/domain"
)

// Frontmatter holds the recognised keys of a YAML header block.
// Alternative key spellings are folded by Resolve.
type Frontmatter struct {
	Meeting      string `yaml:"meeting"`
	Title        string `yaml:"title"`
	MeetingTitle string `yaml:"meeting_title"`
	Date         string `yaml:"date"`
	Created      string `yaml:"created"`
	CreatedAt    string `yaml:"created_at"`
	Project      string `yaml:"project"`
	ProjectName  string `yaml:"project_name"`
}

var frontmatterPattern = regexp.MustCompile(`(?s)\A---[ \t]*\r?\n(.*?)\r?\n---[ \t]*(?:\r?\n|\z)`)

// SplitFrontmatter separates a leading YAML block from the body.
// Content without a header block is returned unchanged with a zero Frontmatter.
func SplitFrontmatter(content []byte) (Frontmatter, string, error) {
	var fm Frontmatter

	loc := frontmatterPattern.FindSubmatchIndex(content)
	if loc == nil {
		return fm, string(content), nil
	}

	if err := yaml.Unmarshal(content[loc[2]:loc[3]], &fm); err != nil {
		return fm, "", fmt.Errorf("%w: front matter: %v", domain.ErrInvalidInput, err)
	}
	return fm, string(content[loc[1]:]), nil
}

// TitleOf returns the first non-empty title key.
func (f Frontmatter) TitleOf() string {
	return firstNonEmpty(f.Meeting, f.Title, f.MeetingTitle)
}

// DateOf parses the first date key that holds a recognised date.
func (f Frontmatter) DateOf() (time.Time, bool) {
	for _, v := range []string{f.Date, f.Created, f.CreatedAt} {
		if t, ok := ParseDate(v); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// ProjectOf returns the first non-empty project key.
func (f Frontmatter) ProjectOf() string {
	return firstNonEmpty(f.Project, f.ProjectName)
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"20060102",
	"02/01/2006",
	"01/02/2006",
	"01-02-2006",
	"January 2, 2006",
	"2 January 2006",
}

// ParseDate tries the supported layouts in order. Ambiguous day/month forms
// resolve day-first.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var filenameDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{4}-\d{2}-\d{2}`),
	regexp.MustCompile(`\d{8}`),
	regexp.MustCompile(`\d{2}-\d{2}-\d{4}`),
}

// DateFromFilename finds a date embedded in the file name, e.g. "2024-01-15-standup.md".
func DateFromFilename(path string) (time.Time, bool) {
	stem := stemOf(path)
	for _, p := range filenameDatePatterns {
		if m := p.FindString(stem); m != "" {
			if t, ok := ParseDate(m); ok {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// TitleFromPath derives a human-readable title from a file path.
func TitleFromPath(path string) string {
	name := stemOf(path)
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return name
}

// ResolveDate picks the meeting date: front matter, then file name, then mtime.
func ResolveDate(fm Frontmatter, raw *domain.RawNote) time.Time {
	if t, ok := fm.DateOf(); ok {
		return t
	}
	if t, ok := DateFromFilename(raw.Path); ok {
		return t
	}
	return raw.ModTime
}

// ResolveProject picks the project: caller, then front matter, then the default.
func ResolveProject(fm Frontmatter, raw *domain.RawNote) string {
	return firstNonEmpty(raw.Project, fm.ProjectOf(), domain.DefaultProject)
}

// HashContent returns the hex SHA-256 of the raw file bytes.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func stemOf(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
