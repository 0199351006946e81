// file: launcher/launcher.go

package launcher

import (
	"context"
	"errors"
	"fmt"

	"helix-console/config"
)

const loggingHookName = "logging"

// Option customizes a single launch.
type Option func(*options)

type options struct {
	stopListeners []StopListener
	listen        listenFunc
	onStep        func(step string)
}

// WithStopListener adds fn to the listeners fired once when the launched
// server stops after running. Listeners run in the order added, before the
// logger is released.
func WithStopListener(fn StopListener) Option {
	return func(o *options) {
		o.stopListeners = append(o.stopListeners, fn)
	}
}

func applyOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Launch builds a server for cfg and starts it. cfg is normalized through
// the canonical loader first, so the server runs with exactly what loading
// the same document from a file would produce. The caller owns the returned
// server and must stop it.
func Launch[T config.Configuration](cfg T, newApp func() Application[T], opts ...Option) (*Server, error) {
	srv, err := Build(cfg, newApp, opts...)
	if err != nil {
		return nil, err
	}
	return start(srv)
}

// Build runs the whole launch sequence except Start: the returned server is
// bound and wired but not serving.
func Build[T config.Configuration](cfg T, newApp func() Application[T], opts ...Option) (*Server, error) {
	o := applyOptions(opts)

	b := initialize(newApp)
	built, err := newNormalizer(b).Normalize(cfg)
	if err != nil {
		return nil, err
	}
	return assemble(b, built, o)
}

// LaunchFile is Launch with the configuration read from path through the
// bootstrap's source provider (a file, http(s):// or s3:// URL).
func LaunchFile[T config.Configuration](path string, newApp func() Application[T], opts ...Option) (*Server, error) {
	o := applyOptions(opts)

	b := initialize(newApp)
	cfg, err := load(b, path)
	if err != nil {
		return nil, err
	}

	srv, err := assemble(b, cfg, o)
	if err != nil {
		return nil, err
	}
	return start(srv)
}

// Check loads and validates the configuration at path without launching
// anything.
func Check[T config.Configuration](path string, newApp func() Application[T]) (T, error) {
	return load(initialize(newApp), path)
}

// load reads path through the bootstrap's source provider. Read failures
// come back as *config.SourceError, everything else the loader rejects as
// *ConfigValidationError.
func load[T config.Configuration](b *Bootstrap[T], path string) (T, error) {
	cfg, err := b.ConfigurationFactory().Build(b.SourceProvider(), path)
	if err != nil {
		var zero T
		var serr *config.SourceError
		if errors.As(err, &serr) {
			return zero, serr
		}
		return zero, &ConfigValidationError{Source: path, Err: err}
	}
	return cfg, nil
}

func initialize[T config.Configuration](newApp func() Application[T]) *Bootstrap[T] {
	app := newApp()
	b := newBootstrap(app)
	app.Initialize(b)
	return b
}

// assemble runs the bootstrap steps on a normalized configuration, builds
// the server and attaches its stop listeners.
func assemble[T config.Configuration](b *Bootstrap[T], cfg T, o *options) (*Server, error) {
	env, err := newBootstrapper(b, cfg, o.onStep).
		WithEnvironment().
		WithLogging().
		WithMetrics().
		WithApplication().
		Build()
	if err != nil {
		return nil, err
	}

	srv, err := newServer(cfg.ServerSettings(), cfg.MetricsSettings(), env, o.listen)
	if err != nil {
		env.Logger().Error("failed to build server", "error", err)
		_ = env.Logger().Stop()
		return nil, err
	}

	for i, fn := range o.stopListeners {
		srv.addStopListener(fmt.Sprintf("listener-%d", i), fn)
	}
	srv.addStopListener(loggingHookName, func() {
		_ = env.Logger().Stop()
	})

	return srv, nil
}

func start(srv *Server) (*Server, error) {
	// On failure Start releases the listener and logger itself; the server
	// never ran, so its stop listeners do not fire.
	if err := srv.Start(context.Background()); err != nil {
		return nil, err
	}
	return srv, nil
}
