package domain

import "time"

// ModuleType is the kind of assembled document.
type ModuleType string

// Module types.
const (
	ModuleTutorial ModuleType = "tutorial"
	ModuleFAQ      ModuleType = "faq"
	ModuleHowTo    ModuleType = "howto"
	ModuleIndex    ModuleType = "index"
)

// IsValid returns true if the module type is recognised.
func (t ModuleType) IsValid() bool {
	switch t {
	case ModuleTutorial, ModuleFAQ, ModuleHowTo, ModuleIndex:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t ModuleType) String() string {
	return string(t)
}

// References are the module's dependency sets, by ID.
type References struct {
	Themes      []string
	Steps       []string
	Definitions []string
	FAQs        []string
	Decisions   []string
	Actions     []string
}

// sets returns the six reference sets in a fixed order.
func (r References) sets() [6][]string {
	return [6][]string{r.Themes, r.Steps, r.Definitions, r.FAQs, r.Decisions, r.Actions}
}

// Snapshot is the mutable, versioned state of a module.
type Snapshot struct {
	Title       string
	Description string
	Type        ModuleType
	Content     string
	Refs        References
}

// Module is an assembled, renderable unit with a version history.
type Module struct {
	// ID is the unique identifier for the module.
	ID string

	// Project is the partition key.
	Project string

	// Snapshot is the current state.
	Snapshot

	// Version is the latest version entry's version.
	Version Version

	// NoteID optionally links the module to its primary source note.
	NoteID string

	// CreatedAt is when the module was created.
	CreatedAt time.Time

	// UpdatedAt is when the module last changed.
	UpdatedAt time.Time
}
