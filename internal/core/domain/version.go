package domain

import (
	"fmt"
	"time"
)

// Packed version layout: major*10000 + minor*100 + patch.
const (
	majorFactor = 10000
	minorFactor = 100

	// MaxVersionComponent is the largest value each component can hold.
	MaxVersionComponent = 99
)

// InitialVersion is 1.0.0, the version of a newly created module.
const InitialVersion Version = 1 * majorFactor

// Version is a packed semantic version.
type Version int

// NewVersion packs major, minor and patch. A minor or patch above 99 produces
// ErrVersionOverflow because it would collide with the next component. Major
// is unbounded.
func NewVersion(major, minor, patch int) (Version, error) {
	for _, c := range []int{major, minor, patch} {
		if c < 0 {
			return 0, fmt.Errorf("%w: negative version component %d", ErrInvalidInput, c)
		}
	}
	if minor > MaxVersionComponent || patch > MaxVersionComponent {
		return 0, fmt.Errorf("%w: %d.%d.%d", ErrVersionOverflow, major, minor, patch)
	}
	return Version(major*majorFactor + minor*minorFactor + patch), nil
}

// Parts decodes the packed version. Total over all non-negative values.
func (v Version) Parts() (major, minor, patch int) {
	n := int(v)
	return n / majorFactor, (n % majorFactor) / minorFactor, n % minorFactor
}

// String renders the dotted major.minor.patch form.
func (v Version) String() string {
	major, minor, patch := v.Parts()
	return fmt.Sprintf("%d.%d.%d", major, minor, patch)
}

// Bump returns the next version for a change. MAJOR zeroes minor and patch,
// MINOR zeroes patch. Minor or patch past 99 returns ErrVersionOverflow.
func (v Version) Bump(change ChangeType) (Version, error) {
	major, minor, patch := v.Parts()
	switch change {
	case ChangeMajor:
		return NewVersion(major+1, 0, 0)
	case ChangeMinor:
		return NewVersion(major, minor+1, 0)
	case ChangePatch:
		return NewVersion(major, minor, patch+1)
	default:
		return 0, fmt.Errorf("%w: change type %q", ErrUnsupportedType, change)
	}
}

// ChangeType classifies a module change for versioning.
type ChangeType string

// Change types, from most to least significant.
const (
	// ChangeMajor means references were removed or the module type changed.
	ChangeMajor ChangeType = "major"

	// ChangeMinor means references were added or the title changed.
	ChangeMinor ChangeType = "minor"

	// ChangePatch means only body text or description changed.
	ChangePatch ChangeType = "patch"
)

// String returns the string representation.
func (c ChangeType) String() string {
	return string(c)
}

// ClassifyChange compares two module snapshots. Rules are checked in order
// and the first match wins: removals or a type change are MAJOR, additions
// or a title change are MINOR, anything else is PATCH.
func ClassifyChange(old, updated Snapshot) ChangeType {
	oldSets := old.Refs.sets()
	newSets := updated.Refs.sets()

	for i := range oldSets {
		if len(difference(oldSets[i], newSets[i])) > 0 {
			return ChangeMajor
		}
	}
	if old.Type != updated.Type {
		return ChangeMajor
	}

	for i := range newSets {
		if len(difference(newSets[i], oldSets[i])) > 0 {
			return ChangeMinor
		}
	}
	if old.Title != updated.Title {
		return ChangeMinor
	}

	return ChangePatch
}

// difference returns the members of a that are not in b.
func difference(a, b []string) []string {
	seen := make(map[string]struct{}, len(b))
	for _, id := range b {
		seen[id] = struct{}{}
	}
	var out []string
	for _, id := range a {
		if _, ok := seen[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// VersionEntry is an immutable snapshot taken when a module's version changes.
type VersionEntry struct {
	// ID is the unique identifier for the entry.
	ID string

	// ModuleID links to the versioned Module.
	ModuleID string

	// Version is the module version this entry records.
	Version Version

	// Change is the classification that produced Version.
	Change ChangeType

	// Project is the module's project.
	Project string

	// Title, Description and Content snapshot the module.
	Title       string
	Description string
	Content     string

	// Changes is the free-text change description.
	Changes string

	// Author identifies who made the change.
	Author string

	// CreatedAt is when the entry was written.
	CreatedAt time.Time
}
