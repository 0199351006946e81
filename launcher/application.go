// file: launcher/application.go

// Package launcher turns a configuration value and an application into a
// running, stoppable HTTP service inside the current process.
//
// A launch always runs the same sequence: the configuration is normalized
// through the canonical loader, the environment is built, logging and then
// metrics are configured, bundles and the application run, and finally the
// server is built and bound. Any failure aborts the launch with one of
// ConfigEncodingError, ConfigValidationError, ServiceBindError or
// ResourceExhaustionError, and nothing is left running.
package launcher

import "helix-console/config"

// Application is a service that can be launched.
type Application[T config.Configuration] interface {
	// Name identifies the service in logs and metrics.
	Name() string

	// Initialize registers bundles and commands and may replace the codec,
	// validator or source provider. It runs before the configuration is
	// loaded.
	Initialize(b *Bootstrap[T])

	// Run registers routes, health checks and managed objects against env.
	Run(cfg T, env *Environment) error
}

// Bundle is a reusable piece of application setup.
type Bundle[T config.Configuration] interface {
	Initialize(b *Bootstrap[T])
	Run(cfg T, env *Environment) error
}
