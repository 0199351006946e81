// file: internal/metrics/metrics.go

package metrics

import (
	"runtime"
	"strconv"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors every launched service exposes. Each service
// instance owns its registry, so two instances in one process never share
// counters.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInFlight        prometheus.Gauge

	// Managed object metrics
	managedObjects prometheus.Gauge

	// System metrics
	goroutines  prometheus.Gauge
	memoryBytes prometheus.Gauge

	// Internal counters for atomic operations
	stats struct {
		requests     uint64
		serverErrors uint64
	}
}

// NewMetrics creates a new metrics instance with all collectors registered
func NewMetrics(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{
		registry: registry,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		httpInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests being served",
			},
		),

		managedObjects: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "managed_objects_running",
				Help: "Number of managed objects currently started",
			},
		),

		// System metrics
		goroutines: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "process_goroutines",
				Help: "Number of goroutines",
			},
		),
		memoryBytes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "process_memory_bytes",
				Help: "Process memory usage in bytes",
			},
		),
	}

	// Register all collectors
	collectors := []prometheus.Collector{
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.httpInFlight,
		m.managedObjects,
		m.goroutines,
		m.memoryBytes,
	}

	for _, collector := range collectors {
		if err := registry.Register(collector); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// GetRegistry returns the Prometheus registry (needed for HTTP handler)
func (m *Metrics) GetRegistry() *prometheus.Registry {
	return m.registry
}

// HTTP metrics
func (m *Metrics) ObserveHTTPRequest(route, method string, status int, seconds float64) {
	m.httpRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(seconds)

	atomic.AddUint64(&m.stats.requests, 1)
	if status >= 500 {
		atomic.AddUint64(&m.stats.serverErrors, 1)
	}
}

func (m *Metrics) IncHTTPInFlight() {
	m.httpInFlight.Inc()
}

func (m *Metrics) DecHTTPInFlight() {
	m.httpInFlight.Dec()
}

func (m *Metrics) SetManagedObjects(count int) {
	m.managedObjects.Set(float64(count))
}

// System metrics
func (m *Metrics) UpdateSystemMetrics() {
	m.goroutines.Set(float64(runtime.NumGoroutine()))

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	m.memoryBytes.Set(float64(memStats.Alloc))
}

// GetStats returns current statistics
func (m *Metrics) GetStats() (requests, serverErrors uint64) {
	return atomic.LoadUint64(&m.stats.requests),
		atomic.LoadUint64(&m.stats.serverErrors)
}
