// Package domain defines the core business entities for ragkit.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A normalised text unit loaded from the corpus
//   - Chunk: A bounded, overlapping slice of a document; the unit of retrieval
//   - RecordMetadata: The metadata stored alongside each indexed vector
//   - QueryResult: A ranked retrieval hit with its raw distance
//   - Rule, Finding, AuditReport: Compliance audit entities
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
