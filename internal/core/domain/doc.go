// Package domain defines the core business entities for mtm.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Note, Segment: meeting notes and their analysable units
//   - Theme: a cluster of related segments
//   - RoleMapping, Taxonomy: role associations and the role catalogue
//   - Extraction: typed facts (steps, definitions, FAQs, decisions, actions)
//   - Module, VersionEntry, Version: versioned derived documents
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
