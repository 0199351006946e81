// file: internal/console/handlers.go

package console

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"helix-console/internal/logger"
	"helix-console/internal/store"
)

const storeLookupTimeout = 5 * time.Second

// Lookup outcomes, as counted in console_store_lookups_total.
const (
	lookupFound    = "found"
	lookupNotFound = "not_found"
	lookupError    = "error"
)

// encoder is the part of the environment codec the handlers need.
type encoder interface {
	Marshal(v any) ([]byte, error)
}

// errorHandler serves the per-instance state transition errors recorded in
// the coordination store.
type errorHandler struct {
	store   store.Store
	codec   encoder
	log     *logger.Logger
	lookups *prometheus.CounterVec
}

func (h *errorHandler) routes(r chi.Router) {
	r.Route("/clusters/{clusterName}/instances/{instanceName}/errors", func(r chi.Router) {
		r.Get("/", h.listErrors)
		r.Options("/", preflight)
		r.Get("/{resourceName}", h.getErrors)
		r.Options("/{resourceName}", preflight)
	})
}

// listErrors renders the resources that recorded errors during the
// instance's current session.
func (h *errorHandler) listErrors(w http.ResponseWriter, r *http.Request) {
	cluster := chi.URLParam(r, "clusterName")
	instance := chi.URLParam(r, "instanceName")

	ctx, cancel := context.WithTimeout(r.Context(), storeLookupTimeout)
	defer cancel()

	session, err := store.InstanceSessionID(ctx, h.store, cluster, instance)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resources, err := h.store.Children(ctx, store.NewKeyBuilder(cluster).StateTransitionErrorsRoot(instance, session))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	rec := store.NewRecord(instance)
	rec.SimpleFields[store.SessionIDField] = session
	rec.ListFields["ERRORS"] = resources
	h.lookups.WithLabelValues(lookupFound).Inc()
	h.render(w, http.StatusOK, rec)
}

// getErrors renders the error record of one resource for the instance's
// current session.
func (h *errorHandler) getErrors(w http.ResponseWriter, r *http.Request) {
	cluster := chi.URLParam(r, "clusterName")
	instance := chi.URLParam(r, "instanceName")
	resource := chi.URLParam(r, "resourceName")

	ctx, cancel := context.WithTimeout(r.Context(), storeLookupTimeout)
	defer cancel()

	session, err := store.InstanceSessionID(ctx, h.store, cluster, instance)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rec, err := h.store.Get(ctx, store.NewKeyBuilder(cluster).StateTransitionErrors(instance, session, resource))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.lookups.WithLabelValues(lookupFound).Inc()
	h.render(w, http.StatusOK, rec)
}

// fail renders err as {"ERROR": message}: 404 for missing records, 500 for
// anything else.
func (h *errorHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, result := http.StatusInternalServerError, lookupError
	if errors.Is(err, store.ErrNotFound) {
		status, result = http.StatusNotFound, lookupNotFound
	}
	h.lookups.WithLabelValues(result).Inc()

	if status == http.StatusInternalServerError {
		h.log.Error("error lookup failed", "path", r.URL.Path, "error", err)
	} else {
		h.log.Debug("error lookup found nothing", "path", r.URL.Path, "error", err)
	}
	h.render(w, status, map[string]string{"ERROR": err.Error()})
}

func (h *errorHandler) render(w http.ResponseWriter, status int, v any) {
	body, err := h.codec.Marshal(v)
	if err != nil {
		h.log.Error("failed to encode response", "error", err)
		http.Error(w, `{"ERROR":"failed to encode response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func preflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
