// file: launcher/server_factory.go

package launcher

import (
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"helix-console/config"
	"helix-console/internal/logger"
	"helix-console/internal/metrics"
)

type listenFunc func(network, address string) (net.Listener, error)

// newServer builds the router, mounts the admin and application routes and
// binds the listener. The returned server is in StateCreated: bound but not
// yet serving.
func newServer(scfg *config.ServerConfig, mcfg config.MetricsConfig, env *Environment, listen listenFunc) (*Server, error) {
	if listen == nil {
		listen = net.Listen
	}

	handler := newRootHandler(scfg, mcfg, env)

	ln, err := listen("tcp", scfg.Address)
	if err != nil {
		return nil, classifyListenError(scfg.Address, err)
	}

	log := env.Logger()
	httpServer := &http.Server{
		Handler:           handler,
		ReadTimeout:       scfg.ReadTimeout,
		ReadHeaderTimeout: scfg.ReadHeaderTimeout,
		WriteTimeout:      scfg.WriteTimeout,
		IdleTimeout:       scfg.IdleTimeout,
		MaxHeaderBytes:    scfg.MaxHeaderBytes,
		ErrorLog:          zap.NewStdLog(log.Logger),
	}

	log.Info("HTTP listener bound", "address", ln.Addr().String())

	return &Server{
		cfg:        scfg,
		env:        env,
		listener:   ln,
		httpServer: httpServer,
		hooks:      newHookRegistry(log),
		state:      StateCreated,
		done:       make(chan struct{}),
		serveErr:   make(chan error, 1),
	}, nil
}

func newRootHandler(scfg *config.ServerConfig, mcfg config.MetricsConfig, env *Environment) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		requestLogger(env.Logger()),
		requestMetrics(env.Metrics()),
		middleware.Recoverer,
	)
	if scfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(scfg.RequestTimeout))
	}

	admin := env.Admin()
	admin.Get("/ping", pingHandler)
	admin.Get("/healthcheck", healthCheckHandler(env))
	if mcfg.Enabled {
		reg := env.Registry()
		admin.Handle(mcfg.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{
			Registry:          reg,
			EnableOpenMetrics: true,
		}))
	}

	appPath, adminPath := scfg.ContextPaths()
	r.Mount(adminPath, admin)
	r.Mount(appPath, env.Router())
	return r
}

func pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "must-revalidate,no-cache,no-store")
	_, _ = w.Write([]byte("pong\n"))
}

func healthCheckHandler(env *Environment) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results, healthy := env.HealthChecks().RunAll(r.Context())

		body, err := env.Codec().Marshal(results)
		if err != nil {
			env.Logger().Error("failed to encode health check results", "error", err)
			http.Error(w, "failed to encode health check results", http.StatusInternalServerError)
			return
		}

		status := http.StatusOK
		if !healthy {
			status = http.StatusInternalServerError
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "must-revalidate,no-cache,no-store")
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}
}

// requestLogger logs each served request at debug level.
func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				log.Debug("request served",
					"method", r.Method,
					"path", r.URL.Path,
					"status", statusOf(ww),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"requestId", middleware.GetReqID(r.Context()))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// requestMetrics records count and latency per matched route pattern.
func requestMetrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			m.IncHTTPInFlight()
			defer func() {
				m.DecHTTPInFlight()
				route := "unmatched"
				if rctx := chi.RouteContext(r.Context()); rctx != nil {
					if p := rctx.RoutePattern(); p != "" {
						route = p
					}
				}
				m.ObserveHTTPRequest(route, r.Method, statusOf(ww), time.Since(start).Seconds())
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

func statusOf(ww middleware.WrapResponseWriter) int {
	if ww.Status() == 0 {
		return http.StatusOK
	}
	return ww.Status()
}
