package domain

import "time"

// ExtractionKind discriminates the extraction union.
type ExtractionKind string

// Extraction kinds.
const (
	KindStep       ExtractionKind = "step"
	KindDefinition ExtractionKind = "definition"
	KindFAQ        ExtractionKind = "faq"
	KindDecision   ExtractionKind = "decision"
	KindAction     ExtractionKind = "action"
)

// ExtractionKinds lists every kind in a stable order.
var ExtractionKinds = []ExtractionKind{KindStep, KindDefinition, KindFAQ, KindDecision, KindAction}

// IsValid returns true if the kind is recognised.
func (k ExtractionKind) IsValid() bool {
	switch k {
	case KindStep, KindDefinition, KindFAQ, KindDecision, KindAction:
		return true
	default:
		return false
	}
}

// Provenance backlinks an extraction to its source.
type Provenance struct {
	NoteID     string
	SegmentIDs []string
	Project    string
	Date       time.Time
	SourceFile string
	LineStart  int
	LineEnd    int
}

// ExtractionBase holds the fields shared by every extraction kind.
type ExtractionBase struct {
	ID         string
	Provenance Provenance
	CreatedAt  time.Time
}

// Extraction is a typed fact extracted from segment text.
// The set of implementations is closed: Step, Definition, FAQ, Decision, Action.
type Extraction interface {
	// Kind returns the discriminator.
	Kind() ExtractionKind

	// Base returns the shared fields.
	Base() *ExtractionBase

	// Accept dispatches to the visitor method for the concrete kind.
	Accept(v ExtractionVisitor) error
}

// ExtractionVisitor handles each extraction kind. Adding a kind adds a method,
// so every consumer fails to compile until it handles the new kind.
type ExtractionVisitor interface {
	VisitStep(*Step) error
	VisitDefinition(*Definition) error
	VisitFAQ(*FAQ) error
	VisitDecision(*Decision) error
	VisitAction(*Action) error
}

// Step is a process step or procedure.
type Step struct {
	ExtractionBase
	Number      int
	Title       string
	Description string
}

// Definition is a glossary entry.
type Definition struct {
	ExtractionBase
	Term       string
	Definition string
	Context    string
}

// FAQ is a question and its answer.
type FAQ struct {
	ExtractionBase
	Question string
	Answer   string
	Category string
}

// Decision is a decision recorded in a meeting.
type Decision struct {
	ExtractionBase
	Decision      string
	Rationale     string
	DecisionMaker string
	Status        string
}

// Action is an action item.
type Action struct {
	ExtractionBase
	Action   string
	Assignee string
	DueDate  *time.Time
	Status   string
}

func (s *Step) Kind() ExtractionKind       { return KindStep }
func (d *Definition) Kind() ExtractionKind { return KindDefinition }
func (f *FAQ) Kind() ExtractionKind        { return KindFAQ }
func (d *Decision) Kind() ExtractionKind   { return KindDecision }
func (a *Action) Kind() ExtractionKind     { return KindAction }

func (s *Step) Base() *ExtractionBase       { return &s.ExtractionBase }
func (d *Definition) Base() *ExtractionBase { return &d.ExtractionBase }
func (f *FAQ) Base() *ExtractionBase        { return &f.ExtractionBase }
func (d *Decision) Base() *ExtractionBase   { return &d.ExtractionBase }
func (a *Action) Base() *ExtractionBase     { return &a.ExtractionBase }

func (s *Step) Accept(v ExtractionVisitor) error       { return v.VisitStep(s) }
func (d *Definition) Accept(v ExtractionVisitor) error { return v.VisitDefinition(d) }
func (f *FAQ) Accept(v ExtractionVisitor) error        { return v.VisitFAQ(f) }
func (d *Decision) Accept(v ExtractionVisitor) error   { return v.VisitDecision(d) }
func (a *Action) Accept(v ExtractionVisitor) error     { return v.VisitAction(a) }
