// file: launcher/server.go

package launcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"

	"helix-console/config"
)

// State is the lifecycle state of a Server.
type State int

const (
	StateCreated State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Server is the handle to one launched service. It owns the listener and
// the environment; the caller owns the Server and must stop it.
type Server struct {
	cfg        *config.ServerConfig
	env        *Environment
	listener   net.Listener
	httpServer *http.Server
	hooks      *hookRegistry

	mu       sync.Mutex
	state    State
	firing   bool
	done     chan struct{}
	serveErr chan error
	stopErr  error
}

func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done is closed once the server has fully stopped, after its stop listeners
// have run. A stop listener must not wait on it.
func (s *Server) Done() <-chan struct{} { return s.done }

func (s *Server) Environment() *Environment { return s.env }

// Addr is the bound listener address. With port 0 configured it carries the
// port the kernel assigned.
func (s *Server) Addr() net.Addr { return s.listener.Addr() }

// URL is the base URL of the application routes.
func (s *Server) URL() string {
	app, _ := s.cfg.ContextPaths()
	return s.baseURL() + strings.TrimSuffix(app, "/")
}

// AdminURL is the base URL of the admin routes.
func (s *Server) AdminURL() string {
	_, admin := s.cfg.ContextPaths()
	return s.baseURL() + admin
}

func (s *Server) baseURL() string {
	host, port, err := net.SplitHostPort(s.listener.Addr().String())
	if err != nil {
		return "http://" + s.listener.Addr().String()
	}
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

// Start starts the managed objects in registration order and then serves on
// the bound listener. It returns once serving has begun.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCreated {
		return fmt.Errorf("server cannot start from state %s", s.state)
	}

	log := s.env.Logger()
	if err := s.env.Lifecycle().Start(ctx); err != nil {
		log.Error("failed to start managed objects", "error", err)
		s.state = StateStopped
		_ = s.listener.Close()
		_ = log.Stop()
		close(s.done)
		return fmt.Errorf("failed to start managed objects: %w", err)
	}

	s.state = StateRunning
	go func() {
		log.Info("starting HTTP server",
			"address", s.listener.Addr().String(),
			"applicationContextPath", s.cfg.ApplicationContextPath,
			"adminContextPath", s.cfg.AdminContextPath)

		err := s.httpServer.Serve(s.listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
			s.serveErr <- err
		}
	}()

	return nil
}

// Stop shuts the HTTP server down within the grace period, stops managed
// objects in reverse order and then fires the stop listeners. Listeners fire
// only when a running server stops. Stopping a server that never started
// just releases its listener and logger. Stop may be called more than once;
// a call made while the listeners run, including from a listener, returns
// without waiting for them.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateCreated:
		s.state = StateStopped
		s.stopErr = s.listener.Close()
		_ = s.env.Logger().Stop()
		close(s.done)
		s.mu.Unlock()
		return s.stopErr
	case StateStopped:
		if s.firing {
			err := s.stopErr
			s.mu.Unlock()
			return err
		}
		s.mu.Unlock()
		<-s.done
		return s.stopErr
	}
	s.state = StateStopped
	s.mu.Unlock()

	log := s.env.Logger()
	log.Info("stopping HTTP server")

	graceCtx := ctx
	if s.cfg.ShutdownGracePeriod > 0 {
		var cancel context.CancelFunc
		graceCtx, cancel = context.WithTimeout(ctx, s.cfg.ShutdownGracePeriod)
		defer cancel()
	}

	var errs []error
	// 1. Stop accepting requests and drain the in-flight ones.
	if err := s.httpServer.Shutdown(graceCtx); err != nil {
		log.Error("failed to gracefully shutdown HTTP server", "error", err)
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}

	// 2. Stop managed objects, last started first.
	if err := s.env.Lifecycle().Stop(graceCtx); err != nil {
		errs = append(errs, err)
	}

	log.Info("HTTP server stopped")

	s.mu.Lock()
	s.stopErr = errors.Join(errs...)
	s.firing = true
	s.mu.Unlock()

	// 3. Stop listeners, including the one releasing the logger.
	s.hooks.fire()

	s.mu.Lock()
	s.firing = false
	err := s.stopErr
	s.mu.Unlock()
	close(s.done)
	return err
}

// Run starts the server if needed and blocks until ctx is cancelled, the
// server stops, or serving fails. It makes Server a lifecycle.Application.
func (s *Server) Run(ctx context.Context) error {
	if s.State() == StateCreated {
		if err := s.Start(ctx); err != nil {
			return err
		}
	}
	select {
	case <-ctx.Done():
		return nil
	case <-s.done:
		return nil
	case err := <-s.serveErr:
		return err
	}
}

// Close stops the server with no deadline beyond the grace period.
func (s *Server) Close() error {
	return s.Stop(context.Background())
}

// addStopListener registers fn to run once after the server stops.
func (s *Server) addStopListener(name string, fn StopListener) {
	s.hooks.add(name, fn)
}
