// file: internal/lifecycle/application.go

// Package lifecycle provides application lifecycle management including
// graceful shutdown, runtime reloading via SIGHUP signal and ordered
// start/stop of managed objects.
package lifecycle

import "context"

// Application represents a runnable application that supports graceful
// shutdown and runtime reloading. A launched server implements it.
type Application interface {
	// Run starts the application and blocks until the context is cancelled.
	//
	// Returns an error if the application encounters a fatal error during
	// operation. Normal shutdown should return nil.
	Run(ctx context.Context) error

	// Close gracefully shuts down the application, releasing all resources.
	// This includes:
	// - Shutting down HTTP servers
	// - Stopping managed objects such as store connections
	// - Stopping background goroutines
	// - Syncing logs and metrics
	//
	// Close should be idempotent and safe to call multiple times.
	Close() error
}
