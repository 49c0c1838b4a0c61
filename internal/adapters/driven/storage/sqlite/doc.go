// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. It implements the store interfaces through a single database connection:
//
//   - SegmentStore: Notes and segments
//   - ThemeStore: Analysed themes
//   - RoleMappingStore: Topic-to-role mappings (upsert-if-higher)
//   - ModuleStore: Modules and their version history (compare-and-swap)
//   - ExtractionStore: Typed fact records
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.mtm/data/mtm.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
