// Package domain defines the core business entities for mirrorpool.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - FileInfo: Resolved metadata for a source file
//   - DestinationEntry: A file known to exist at the destination
//   - MirrorOutcome: The terminal result of one relay run
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
