// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services are pure Go with no CGO or external dependencies. Analysis
// settings are passed in by value at construction; no service reads
// configuration on its own.
package services
