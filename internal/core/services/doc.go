// Package services implements the driving port interfaces.
// Services contain the pipeline's business logic and orchestrate
// calls to driven ports (adapters).
//
// Services are pure Go with no CGO or storage dependencies; every
// side effect goes through a driven port.
package services
