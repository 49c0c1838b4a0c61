package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown extraction or module type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Analysis Errors.

	// ErrDegenerateVectorization indicates TF-IDF produced no usable features,
	// even after relaxing the document-frequency bounds.
	ErrDegenerateVectorization = errors.New("vectorization produced no features")

	// ErrAnalysisInProgress indicates theme analysis is already running for a project.
	ErrAnalysisInProgress = errors.New("analysis in progress")

	// Versioning Errors.

	// ErrVersionConflict indicates the stored module version changed between
	// read and write. The caller may reload the module and retry.
	ErrVersionConflict = errors.New("version conflict")

	// ErrVersionOverflow indicates a version component would exceed 99.
	ErrVersionOverflow = errors.New("version component overflow")
)

// AnalysisError reports a failed theme analysis run for one project.
type AnalysisError struct {
	// Project is the analysed project ("" for a global run).
	Project string

	// Stage names the pipeline step that failed (e.g. "vectorize", "cluster").
	Stage string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *AnalysisError) Error() string {
	project := e.Project
	if project == "" {
		project = GlobalProject
	}
	return fmt.Sprintf("analysis of project %q failed at %s: %v", project, e.Stage, e.Err)
}

// Unwrap returns the underlying cause.
func (e *AnalysisError) Unwrap() error {
	return e.Err
}
