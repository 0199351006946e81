// file: launcher/hooks.go

package launcher

import (
	"sync"

	"helix-console/internal/logger"
)

// StopListener is called once after a running server has stopped.
type StopListener func()

type stopHook struct {
	name  string
	fn    StopListener
	calls int
}

// hookRegistry holds the stop listeners of one server. fire runs them once,
// in registration order; later calls do nothing.
type hookRegistry struct {
	mu    sync.Mutex
	hooks []*stopHook
	fired bool
	log   *logger.Logger
}

func newHookRegistry(log *logger.Logger) *hookRegistry {
	return &hookRegistry{log: log}
}

func (h *hookRegistry) add(name string, fn StopListener) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, &stopHook{name: name, fn: fn})
}

func (h *hookRegistry) fire() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.fired {
		return
	}
	h.fired = true

	for _, hook := range h.hooks {
		hook.calls++
		h.run(hook)
	}
}

func (h *hookRegistry) run(hook *stopHook) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("stop listener panicked", "listener", hook.name, "panic", r)
		}
	}()
	hook.fn()
}

// calls reports how many times the named hook ran.
func (h *hookRegistry) calls(name string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, hook := range h.hooks {
		if hook.name == name {
			n += hook.calls
		}
	}
	return n
}
