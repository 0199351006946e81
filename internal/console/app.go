// file: internal/console/app.go

// Package console is the cluster admin console: a REST view of the
// per-instance errors recorded in the coordination store.
package console

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"helix-console/internal/lifecycle"
	"helix-console/internal/logger"
	"helix-console/internal/store"
	"helix-console/launcher"
)

const (
	// Name is the application name, used for the command line and logs.
	Name = "helix-console"

	// EnvPrefix prefixes environment overrides, e.g. HELIX_CONSOLE_SERVER_ADDRESS.
	EnvPrefix = "HELIX_CONSOLE"
)

// App is the console application.
type App struct{}

// New returns a fresh console application for one launch.
func New() launcher.Application[*Config] {
	return &App{}
}

func (a *App) Name() string { return Name }

func (a *App) Initialize(b *launcher.Bootstrap[*Config]) {
	b.SetEnvPrefix(EnvPrefix)
}

// Run opens the configured store as a managed object and mounts the error
// resource under the application context.
func (a *App) Run(cfg *Config, env *launcher.Environment) error {
	log := env.Logger().With("component", "console")

	st, managed, err := openStore(cfg.Store, log)
	if err != nil {
		return err
	}
	env.Lifecycle().Manage("store", managed)

	lookups, err := registerLookupCounter(env.Registry())
	if err != nil {
		return err
	}

	h := &errorHandler{store: st, codec: env.Codec(), log: log, lookups: lookups}
	// On the router itself, so chi's 404 and 405 responses carry the
	// headers too. Middleware must precede every route on the mux.
	router := env.Router()
	router.Use(cors(log))
	h.routes(router)

	if err := env.HealthChecks().Register("store", launcher.HealthCheckFunc(st.Ping)); err != nil {
		return err
	}

	log.Info("console configured", "store", cfg.Store.Type)
	return nil
}

// openStore builds the configured store. The returned Managed connects it
// on start and closes it on stop.
func openStore(cfg StoreConfig, log *logger.Logger) (store.Store, lifecycle.Managed, error) {
	switch cfg.Type {
	case StoreNATS:
		if cfg.NATS == nil {
			return nil, nil, errors.New("store.nats is required when store.type is nats")
		}
		s := store.NewNATSStore(*cfg.NATS, log)
		return s, s, nil

	case StoreMemory, "":
		m := store.NewMemoryStore()
		if cfg.SeedFile != "" {
			data, err := os.ReadFile(cfg.SeedFile)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to read store seed: %w", err)
			}
			if err := m.Seed(data); err != nil {
				return nil, nil, fmt.Errorf("store seed %s: %w", cfg.SeedFile, err)
			}
		}
		return m, lifecycle.ManagedFuncs{
			StopFunc: func(ctx context.Context) error { return m.Close() },
		}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store type %q", cfg.Type)
	}
}

func registerLookupCounter(reg prometheus.Registerer) (*prometheus.CounterVec, error) {
	lookups := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_store_lookups_total",
			Help: "Error lookups against the coordination store by result",
		},
		[]string{"result"},
	)
	if err := reg.Register(lookups); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("failed to register lookup counter: %w", err)
	}
	return lookups, nil
}
