// file: internal/metrics/configure.go

package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"helix-console/config"
	"helix-console/internal/lifecycle"
	"helix-console/internal/logger"
)

// Configure creates the metrics for one service instance on reg and hands
// its background workers to lc. The collector runs only when metrics are
// enabled; reporters run whenever they are configured.
func Configure(cfg config.MetricsConfig, reg *prometheus.Registry, lc *lifecycle.Manager, log *logger.Logger) (*Metrics, error) {
	m, err := NewMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	if cfg.Enabled {
		if err := reg.Register(collectors.NewGoCollector()); err != nil {
			return nil, fmt.Errorf("failed to register go collector: %w", err)
		}
		lc.Manage("metrics-collector", NewMetricsCollector(m, cfg.UpdateIntervalDuration()))
	}

	if len(cfg.Reporters) > 0 {
		r, err := NewReporters(cfg.Reporters, m, log)
		if err != nil {
			return nil, err
		}
		lc.Manage("metrics-reporters", r)
	}

	return m, nil
}
