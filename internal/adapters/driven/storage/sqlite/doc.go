// Package sqlite persists the metadata artifact of a vector index.
//
// The adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, accessed through sqlx. One database file holds:
//
//   - records: the ordered metadata array, one row per stored vector
//   - index_info: metric, dimensions, count, embedding model and build time
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Atomicity
//
// Writers build a fresh database under a temporary name and rename it into
// place, so a reader never observes a half-written artifact.
package sqlite
