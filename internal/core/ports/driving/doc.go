// Package driving defines interfaces that external actors (CLI,
// cron-style triggers) use to interact with core services. These are
// the "driving" ports in hexagonal architecture terminology - they
// drive the application.
//
// Ports:
//   - PipelineRunner: Trigger pipeline runs and read pipeline state
//   - Reporter: Build and deliver daily financial reports
//
// Implementations of these interfaces live in internal/core/services.
package driving
