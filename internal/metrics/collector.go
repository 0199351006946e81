// file: internal/metrics/collector.go

package metrics

import (
	"context"
	"sync"
	"time"
)

// MetricsCollector handles periodic collection of system metrics. It is a
// managed object: the owning server starts and stops it.
type MetricsCollector struct {
	metrics        *Metrics
	updateInterval time.Duration

	mu       sync.Mutex
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector(metrics *Metrics, updateInterval time.Duration) *MetricsCollector {
	return &MetricsCollector{
		metrics:        metrics,
		updateInterval: updateInterval,
	}
}

// Start takes a first sample and begins periodic collection. Starting a
// running collector does nothing.
func (mc *MetricsCollector) Start(ctx context.Context) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if mc.stopChan != nil {
		return nil
	}
	mc.stopChan = make(chan struct{})
	mc.metrics.UpdateSystemMetrics()

	mc.wg.Add(1)
	go mc.collect(mc.stopChan)
	return nil
}

// Stop gracefully shuts down the metrics collector
func (mc *MetricsCollector) Stop(ctx context.Context) error {
	mc.mu.Lock()
	stop := mc.stopChan
	mc.stopChan = nil
	mc.mu.Unlock()

	if stop == nil {
		return nil
	}
	close(stop)

	done := make(chan struct{})
	go func() {
		mc.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// collect periodically updates system metrics
func (mc *MetricsCollector) collect(stop <-chan struct{}) {
	defer mc.wg.Done()

	ticker := time.NewTicker(mc.updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			// Update system metrics (goroutines, memory)
			mc.metrics.UpdateSystemMetrics()
		}
	}
}
