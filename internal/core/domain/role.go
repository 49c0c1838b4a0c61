package domain

import (
	"sort"
	"time"
)

// Role is one entry of the role taxonomy.
type Role struct {
	// Name is the role label (e.g. "developer").
	Name string

	// Keywords are matched against topic text.
	Keywords []string

	// Projects are hints: a role whose hint appears in the project name is boosted.
	Projects []string
}

// TaxonomySource records which loader path produced a Taxonomy.
type TaxonomySource string

// Taxonomy sources.
const (
	// TaxonomyFromFile means roles were read from a taxonomy file.
	TaxonomyFromFile TaxonomySource = "file"

	// TaxonomyEmpty means no taxonomy file exists; mapping yields nothing.
	TaxonomyEmpty TaxonomySource = "empty"
)

// Taxonomy is the role catalogue used for scoring.
type Taxonomy struct {
	// Roles are sorted by name.
	Roles []Role

	// Source records how the taxonomy was obtained.
	Source TaxonomySource

	// Path is the file the taxonomy was read from, if any.
	Path string
}

// NewTaxonomy builds a file-backed taxonomy with roles sorted by name.
func NewTaxonomy(path string, roles []Role) Taxonomy {
	sorted := append([]Role(nil), roles...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return Taxonomy{Roles: sorted, Source: TaxonomyFromFile, Path: path}
}

// EmptyTaxonomy returns the explicit "no taxonomy" variant.
func EmptyTaxonomy(path string) Taxonomy {
	return Taxonomy{Source: TaxonomyEmpty, Path: path}
}

// IsEmpty returns true if there are no roles to score against.
func (t Taxonomy) IsEmpty() bool {
	return len(t.Roles) == 0
}

// RoleScore is a scored role for one topic.
type RoleScore struct {
	// Role is the role name.
	Role string

	// Confidence is in [0, 100].
	Confidence float64

	// Matched lists the keywords that cleared the fuzzy threshold.
	Matched []string

	// ProjectBoost is true when a project hint matched.
	ProjectBoost bool
}

// RoleMapping associates a topic (segment or theme) with a role.
// At most one mapping exists per (TopicID, Role).
type RoleMapping struct {
	// ID is the unique identifier for the mapping.
	ID string

	// TopicID is a segment or theme ID.
	TopicID string

	// Role is the role name.
	Role string

	// Project is the topic's project.
	Project string

	// Confidence is in [0, 100].
	Confidence float64

	// CreatedAt is when the mapping was first stored.
	CreatedAt time.Time
}

// UpsertOutcome tells what a role-mapping upsert did.
type UpsertOutcome string

// Upsert outcomes.
const (
	// UpsertInserted means no mapping existed and one was written.
	UpsertInserted UpsertOutcome = "inserted"

	// UpsertRaised means an existing mapping's confidence was increased.
	UpsertRaised UpsertOutcome = "raised"

	// UpsertKept means the existing mapping had equal or higher confidence.
	UpsertKept UpsertOutcome = "kept"
)
