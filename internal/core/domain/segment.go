package domain

import "time"

// GlobalProject is the project name used when analysis spans all projects.
const GlobalProject = "global"

// Note is a meeting note as ingested from a source file.
type Note struct {
	// ID is the unique identifier for the note.
	ID string

	// Project is the partition key shared by the note's segments.
	Project string

	// Title is the human-readable title (first heading or file name).
	Title string

	// SourceFile is the path the note was read from.
	SourceFile string

	// Content is the raw note text.
	Content string

	// ContentSHA256 is the hex digest of Content, used for duplicate detection.
	ContentSHA256 string

	// Date is the meeting date, defaulting to the ingest time.
	Date time.Time

	// CreatedAt is when the note was first stored.
	CreatedAt time.Time
}

// Segment is the smallest unit of analysable note text.
// Segments are never edited in place; re-segmenting creates new IDs.
type Segment struct {
	// ID is the unique identifier for the segment.
	ID string

	// NoteID links to the parent Note.
	NoteID string

	// Project is the partition key.
	Project string

	// Content is the segment text. Must be non-empty for analysis.
	Content string

	// Order is the ordinal position within the source note.
	Order int

	// SourceFile is the originating note's path.
	SourceFile string

	// LineStart and LineEnd locate the segment in the source (1-based, 0 if unknown).
	LineStart int
	LineEnd   int

	// CreatedAt is when the segment was created.
	CreatedAt time.Time
}

// DefaultProject is assigned to notes that name no project.
const DefaultProject = "default"

// RawNote is a note file as read from disk, before normalisation.
type RawNote struct {
	// Path is the source file path.
	Path string

	// Project is the caller-supplied project ("" defers to the file).
	Project string

	// Content is the file bytes.
	Content []byte

	// ModTime is the file modification time, the last-resort meeting date.
	ModTime time.Time
}
