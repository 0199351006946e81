// file: internal/lifecycle/manager.go

package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"helix-console/internal/logger"
)

// Managed is an object whose lifetime is tied to a running server: store
// connections, background collectors, schedulers.
type Managed interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// ManagedFuncs adapts a pair of functions to Managed. Either may be nil.
type ManagedFuncs struct {
	StartFunc func(ctx context.Context) error
	StopFunc  func(ctx context.Context) error
}

func (f ManagedFuncs) Start(ctx context.Context) error {
	if f.StartFunc == nil {
		return nil
	}
	return f.StartFunc(ctx)
}

func (f ManagedFuncs) Stop(ctx context.Context) error {
	if f.StopFunc == nil {
		return nil
	}
	return f.StopFunc(ctx)
}

type managedEntry struct {
	name string
	obj  Managed
}

// Manager starts managed objects in registration order and stops the ones
// that started in reverse order.
type Manager struct {
	mu      sync.Mutex
	objects []managedEntry
	started int
	log     *logger.Logger

	// OnChange is called with the number of running objects after every
	// start or stop.
	OnChange func(running int)
}

func NewManager(log *logger.Logger) *Manager {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Manager{log: log}
}

// SetLogger replaces the logger used for start/stop reporting.
func (m *Manager) SetLogger(log *logger.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log = log
}

// Manage registers obj. Objects registered after Start are not started.
func (m *Manager) Manage(name string, obj Managed) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects = append(m.objects, managedEntry{name: name, obj: obj})
}

// Names lists registered objects in start order.
func (m *Manager) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, len(m.objects))
	for i, e := range m.objects {
		names[i] = e.name
	}
	return names
}

// Running returns how many objects are currently started.
func (m *Manager) Running() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

// Start starts every registered object. If one fails, the ones already
// started are stopped again and the error is returned.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := m.started; i < len(m.objects); i++ {
		e := m.objects[i]
		if err := e.obj.Start(ctx); err != nil {
			m.log.Error("failed to start managed object", "name", e.name, "error", err)
			stopErr := m.stopLocked(ctx)
			return errors.Join(fmt.Errorf("failed to start %s: %w", e.name, err), stopErr)
		}
		m.started = i + 1
		m.log.Debug("managed object started", "name", e.name)
		m.notify()
	}
	return nil
}

// Stop stops started objects in reverse order. Every object is asked to
// stop even if an earlier one fails; the errors are joined.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopLocked(ctx)
}

func (m *Manager) stopLocked(ctx context.Context) error {
	var errs []error
	for m.started > 0 {
		e := m.objects[m.started-1]
		m.started--
		if err := e.obj.Stop(ctx); err != nil {
			m.log.Error("failed to stop managed object", "name", e.name, "error", err)
			errs = append(errs, fmt.Errorf("failed to stop %s: %w", e.name, err))
		} else {
			m.log.Debug("managed object stopped", "name", e.name)
		}
		m.notify()
	}
	return errors.Join(errs...)
}

func (m *Manager) notify() {
	if m.OnChange != nil {
		m.OnChange(m.started)
	}
}
