// Package domain defines the core business entities for Trucklake.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawRecord: A source row as extracted, before cleaning
//   - CleanRecord: A validated transaction ready for loading
//   - PartitionKey: The (year, month, day) lake address for a record
//   - Watermark: The durable high-water mark of committed source time
//   - Lease: The run-level mutual-exclusion token
//   - RunSummary: The outcome of one pipeline run
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
