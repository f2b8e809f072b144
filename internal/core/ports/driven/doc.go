// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the pipeline to function:
//
//   - TransactionSource: Streams new rows from the operational store
//   - ObjectStore: Byte-level lake storage with atomic CommitWrite
//   - WatermarkStore: Durable watermark with compare-and-swap commit
//   - RunLock: Run-level mutual exclusion via an expiring lease
//   - RecordCodec: Columnar encoding of fact and dimension rows
//
// # Reporting Interfaces
//
// Only the report workflow needs these:
//
//   - ReportSink: Delivery of rendered daily reports
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
