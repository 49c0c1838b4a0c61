// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - SegmentStore: Note and segment persistence (the corpus)
//   - ThemeStore: Theme persistence
//   - RoleMappingStore: Topic-to-role associations with upsert-if-higher
//   - ModuleStore: Modules and their append-only version history
//   - ExtractionStore: Typed fact records
//   - TaxonomyLoader: Reads the role taxonomy
//   - ConfigStore: Application configuration
//   - Segmenter: Splits a note into segments
//   - Extractor: Pulls one kind of fact out of a segment
//   - Normaliser: Reads a note file into a Note
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
