// Package domain defines the core business entities for Quill.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Citation: Bibliographic metadata with a stable integer id
//   - ChunkRecord: A stored chunk with its embedding, source and citation id
//   - RetrievalResult: A ranked chunk returned for a query
//   - Article: A generated multi-section document with references
//   - RawPage / Page: Fetched bytes and their extracted text
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
