// file: launcher/environment.go

package launcher

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"

	"helix-console/internal/lifecycle"
	"helix-console/internal/logger"
	"helix-console/internal/metrics"
)

// Environment is the runtime context of one launched service. It is created
// once per launch and shared by the bootstrap steps, the application and the
// server.
type Environment struct {
	name      string
	codec     Codec
	validator *validator.Validate
	registry  *prometheus.Registry
	lifecycle *lifecycle.Manager
	router    chi.Router
	admin     chi.Router
	health    *HealthChecks

	// Set by the logging and metrics steps.
	log     *logger.Logger
	metrics *metrics.Metrics
}

// newEnvironment binds a fresh environment to the application name. It
// depends only on the bootstrap, never on the configuration.
func newEnvironment(name string, codec Codec, v *validator.Validate, reg *prometheus.Registry) *Environment {
	log := logger.NewNopLogger()
	return &Environment{
		name:      name,
		codec:     codec,
		validator: v,
		registry:  reg,
		lifecycle: lifecycle.NewManager(log),
		router:    chi.NewRouter(),
		admin:     chi.NewRouter(),
		health:    newHealthChecks(),
		log:       log,
	}
}

func (e *Environment) Name() string { return e.name }

func (e *Environment) Codec() Codec { return e.codec }

func (e *Environment) Validator() *validator.Validate { return e.validator }

// Registry is the service's private metrics registry, served on the admin
// metrics path.
func (e *Environment) Registry() *prometheus.Registry { return e.registry }

// Lifecycle manages objects started with the server and stopped with it.
func (e *Environment) Lifecycle() *lifecycle.Manager { return e.lifecycle }

// Router holds application routes, mounted at the application context path.
func (e *Environment) Router() chi.Router { return e.router }

// Admin holds admin routes, mounted at the admin context path.
func (e *Environment) Admin() chi.Router { return e.admin }

func (e *Environment) HealthChecks() *HealthChecks { return e.health }

// Logger returns the service logger, or a no-op logger before logging is
// configured.
func (e *Environment) Logger() *logger.Logger { return e.log }

// Metrics returns nil before metrics are configured.
func (e *Environment) Metrics() *metrics.Metrics { return e.metrics }
