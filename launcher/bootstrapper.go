// file: launcher/bootstrapper.go

package launcher

import (
	"fmt"

	"helix-console/config"
	"helix-console/internal/logger"
	"helix-console/internal/metrics"
)

// Bootstrap steps, in the only order they may run.
const (
	stepEnvironment = "environment"
	stepLogging     = "logging"
	stepMetrics     = "metrics"
	stepApplication = "application"
)

// bootstrapper applies a normalized configuration to a fresh environment. It
// is a sticky-error builder: once a step fails, later steps do nothing.
type bootstrapper[T config.Configuration] struct {
	bootstrap *Bootstrap[T]
	cfg       T
	env       *Environment
	onStep    func(step string)
	err       error
}

func newBootstrapper[T config.Configuration](b *Bootstrap[T], cfg T, onStep func(string)) *bootstrapper[T] {
	return &bootstrapper[T]{bootstrap: b, cfg: cfg, onStep: onStep}
}

// WithEnvironment builds the environment bound to the application name.
func (b *bootstrapper[T]) WithEnvironment() *bootstrapper[T] {
	if b.err != nil {
		return b
	}
	bs := b.bootstrap
	b.env = newEnvironment(bs.app.Name(), bs.Codec(), bs.Validator(), bs.MetricRegistry())
	b.done(stepEnvironment)
	return b
}

// WithLogging configures the service logger from the logging section and
// instruments it into the environment registry.
func (b *bootstrapper[T]) WithLogging() *bootstrapper[T] {
	if b.err != nil {
		return b
	}
	log, err := logger.New(b.cfg.LoggingSettings(), b.env.Name(), b.env.Registry())
	if err != nil {
		b.err = fmt.Errorf("failed to initialize logger: %w", err)
		return b
	}
	b.env.log = log
	b.env.lifecycle.SetLogger(log)

	log.Info("logging configured",
		"level", b.cfg.LoggingSettings().Level,
		"output", b.cfg.LoggingSettings().OutputPath)
	b.done(stepLogging)
	return b
}

// WithMetrics registers service metrics and hands the collector and
// reporters to the environment lifecycle.
func (b *bootstrapper[T]) WithMetrics() *bootstrapper[T] {
	if b.err != nil {
		return b
	}
	mcfg := b.cfg.MetricsSettings()
	m, err := metrics.Configure(mcfg, b.env.Registry(), b.env.Lifecycle(), b.env.Logger())
	if err != nil {
		b.err = fmt.Errorf("failed to configure metrics: %w", err)
		return b
	}
	b.env.metrics = m
	b.env.lifecycle.OnChange = m.SetManagedObjects

	b.env.Logger().Info("metrics configured",
		"enabled", mcfg.Enabled,
		"path", mcfg.Path,
		"reporters", len(mcfg.Reporters))
	b.done(stepMetrics)
	return b
}

// WithApplication runs every bundle and then the application.
func (b *bootstrapper[T]) WithApplication() *bootstrapper[T] {
	if b.err != nil {
		return b
	}
	for i, bundle := range b.bootstrap.bundles {
		if err := bundle.Run(b.cfg, b.env); err != nil {
			b.err = fmt.Errorf("bundle %d (%T) failed: %w", i, bundle, err)
			return b
		}
	}
	if err := b.bootstrap.app.Run(b.cfg, b.env); err != nil {
		b.err = fmt.Errorf("application %s failed to initialize: %w", b.env.Name(), err)
		return b
	}
	b.done(stepApplication)
	return b
}

// Build returns the environment, or the first error. On error the logger is
// flushed and nothing else is undone.
func (b *bootstrapper[T]) Build() (*Environment, error) {
	if b.err != nil {
		if b.env != nil {
			b.env.Logger().Error("bootstrap failed", "error", b.err)
			_ = b.env.Logger().Stop()
		}
		return nil, b.err
	}
	return b.env, nil
}

func (b *bootstrapper[T]) done(step string) {
	if b.onStep != nil {
		b.onStep(step)
	}
}
