// file: launcher/healthcheck.go

package launcher

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// HealthCheck reports whether a dependency of the service is usable.
type HealthCheck interface {
	Check(ctx context.Context) error
}

// HealthCheckFunc adapts a function to HealthCheck.
type HealthCheckFunc func(ctx context.Context) error

func (f HealthCheckFunc) Check(ctx context.Context) error { return f(ctx) }

// HealthResult is the outcome of one check as rendered on /healthcheck.
type HealthResult struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// HealthChecks is the environment's health-check registry.
type HealthChecks struct {
	mu     sync.RWMutex
	checks map[string]HealthCheck
}

func newHealthChecks() *HealthChecks {
	return &HealthChecks{checks: make(map[string]HealthCheck)}
}

// Register adds a named check. Names must be unique.
func (h *HealthChecks) Register(name string, check HealthCheck) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.checks[name]; exists {
		return fmt.Errorf("health check %q already registered", name)
	}
	h.checks[name] = check
	return nil
}

// Names returns the registered check names, sorted.
func (h *HealthChecks) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunAll runs every check and reports whether all of them passed. A
// panicking check counts as unhealthy.
func (h *HealthChecks) RunAll(ctx context.Context) (map[string]HealthResult, bool) {
	h.mu.RLock()
	checks := make(map[string]HealthCheck, len(h.checks))
	for name, c := range h.checks {
		checks[name] = c
	}
	h.mu.RUnlock()

	results := make(map[string]HealthResult, len(checks))
	healthy := true
	for name, c := range checks {
		err := runCheck(ctx, c)
		if err != nil {
			healthy = false
			results[name] = HealthResult{Healthy: false, Message: err.Error()}
			continue
		}
		results[name] = HealthResult{Healthy: true}
	}
	return results, healthy
}

func runCheck(ctx context.Context, c HealthCheck) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("health check panicked: %v", r)
		}
	}()
	return c.Check(ctx)
}
