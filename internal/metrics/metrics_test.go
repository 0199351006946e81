// file: internal/metrics/metrics_test.go

package metrics

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"helix-console/config"
	"helix-console/internal/lifecycle"
	"helix-console/internal/logger"
)

func TestObserveHTTPRequest(t *testing.T) {
	m, err := NewMetrics(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewMetrics() error: %v", err)
	}

	m.ObserveHTTPRequest("/clusters/{clusterName}", "GET", 200, 0.01)
	m.ObserveHTTPRequest("/clusters/{clusterName}", "GET", 200, 0.02)
	m.ObserveHTTPRequest("/clusters/{clusterName}", "GET", 500, 0.03)

	requests, serverErrors := m.GetStats()
	if requests != 3 || serverErrors != 1 {
		t.Errorf("GetStats() = (%d, %d), want (3, 1)", requests, serverErrors)
	}

	got := testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("/clusters/{clusterName}", "GET", "200"))
	if got != 2 {
		t.Errorf("http_requests_total{status=200} = %v, want 2", got)
	}
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, err := NewMetrics(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewMetrics() error: %v", err)
	}
	b, err := NewMetrics(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewMetrics() on second registry error: %v", err)
	}

	a.ObserveHTTPRequest("/", "GET", 200, 0)
	if requests, _ := b.GetStats(); requests != 0 {
		t.Errorf("second instance saw %d requests, want 0", requests)
	}
}

func TestNewMetricsDuplicateRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewMetrics(reg); err != nil {
		t.Fatalf("NewMetrics() error: %v", err)
	}
	if _, err := NewMetrics(reg); err == nil {
		t.Error("NewMetrics() on the same registry twice expected error, got nil")
	}
}

func TestMetricsCollector(t *testing.T) {
	m, _ := NewMetrics(prometheus.NewRegistry())
	mc := NewMetricsCollector(m, 10*time.Millisecond)

	ctx := context.Background()
	if err := mc.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if err := mc.Start(ctx); err != nil {
		t.Fatalf("second Start() error: %v", err)
	}

	if got := testutil.ToFloat64(m.goroutines); got <= 0 {
		t.Errorf("process_goroutines = %v, want > 0 after start", got)
	}

	if err := mc.Stop(ctx); err != nil {
		t.Errorf("Stop() error: %v", err)
	}
	if err := mc.Stop(ctx); err != nil {
		t.Errorf("second Stop() error: %v", err)
	}
}

func TestReporters(t *testing.T) {
	m, _ := NewMetrics(prometheus.NewRegistry())
	r, err := NewReporters([]config.ReporterConfig{{Type: "log", Frequency: 20 * time.Millisecond}}, m, logger.NewNopLogger())
	if err != nil {
		t.Fatalf("NewReporters() error: %v", err)
	}

	ctx := context.Background()
	if err := r.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for r.Runs() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if r.Runs() == 0 {
		t.Error("reporter never ran")
	}

	if err := r.Stop(ctx); err != nil {
		t.Errorf("Stop() error: %v", err)
	}
}

func TestNewReportersRejects(t *testing.T) {
	m, _ := NewMetrics(prometheus.NewRegistry())
	tests := []struct {
		name string
		cfg  config.ReporterConfig
	}{
		{"unknown type", config.ReporterConfig{Type: "graphite", Frequency: time.Minute}},
		{"no trigger", config.ReporterConfig{Type: "log"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewReporters([]config.ReporterConfig{tt.cfg}, m, logger.NewNopLogger()); err == nil {
				t.Error("NewReporters() expected error, got nil")
			}
		})
	}
}

func TestJobDefinition(t *testing.T) {
	if _, _, err := jobDefinition(config.ReporterConfig{Schedule: "*/5 * * * *"}); err != nil {
		t.Errorf("jobDefinition() cron schedule error: %v", err)
	}
	if _, _, err := jobDefinition(config.ReporterConfig{Schedule: "not a cron"}); err == nil {
		t.Error("jobDefinition() invalid schedule expected error, got nil")
	}
	_, next, err := jobDefinition(config.ReporterConfig{Frequency: time.Hour})
	if err != nil {
		t.Fatalf("jobDefinition() frequency error: %v", err)
	}
	if until := time.Until(next); until < 59*time.Minute || until > time.Hour {
		t.Errorf("first run in %v, want about 1h", until)
	}
}

func TestConfigure(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.MetricsConfig
		wantNames []string
	}{
		{
			name:      "disabled without reporters",
			cfg:       config.MetricsConfig{UpdateInterval: "15s"},
			wantNames: []string{},
		},
		{
			name:      "enabled",
			cfg:       config.MetricsConfig{Enabled: true, UpdateInterval: "15s"},
			wantNames: []string{"metrics-collector"},
		},
		{
			name: "enabled with reporters",
			cfg: config.MetricsConfig{
				Enabled:        true,
				UpdateInterval: "15s",
				Reporters:      []config.ReporterConfig{{Type: "log", Frequency: time.Minute}},
			},
			wantNames: []string{"metrics-collector", "metrics-reporters"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lc := lifecycle.NewManager(nil)
			if _, err := Configure(tt.cfg, prometheus.NewRegistry(), lc, logger.NewNopLogger()); err != nil {
				t.Fatalf("Configure() error: %v", err)
			}
			if got := lc.Names(); !reflect.DeepEqual(got, tt.wantNames) {
				t.Errorf("managed objects = %v, want %v", got, tt.wantNames)
			}
		})
	}
}
