// file: internal/metrics/reporter.go

package metrics

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/robfig/cron/v3"

	"helix-console/config"
	"helix-console/internal/logger"
)

// Reporters periodically writes a metrics snapshot to the service log, one
// job per configured reporter.
type Reporters struct {
	cfgs    []config.ReporterConfig
	metrics *Metrics
	log     *logger.Logger

	mu        sync.Mutex
	scheduler gocron.Scheduler
	runs      atomic.Uint64
}

// NewReporters validates the reporter configurations. Jobs are scheduled
// when the reporters are started.
func NewReporters(cfgs []config.ReporterConfig, m *Metrics, log *logger.Logger) (*Reporters, error) {
	for i, c := range cfgs {
		if c.Type != "log" {
			return nil, fmt.Errorf("metrics reporter %d: unsupported type %q", i, c.Type)
		}
		if c.Schedule == "" && c.Frequency <= 0 {
			return nil, fmt.Errorf("metrics reporter %d: frequency or schedule is required", i)
		}
	}
	return &Reporters{cfgs: cfgs, metrics: m, log: log}, nil
}

func (r *Reporters) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.scheduler != nil {
		return nil
	}

	s, err := gocron.NewScheduler(
		gocron.WithLogger(r.log),
		gocron.WithStopTimeout(5*time.Second),
	)
	if err != nil {
		return fmt.Errorf("failed to create reporter scheduler: %w", err)
	}

	for i, c := range r.cfgs {
		def, next, err := jobDefinition(c)
		if err != nil {
			_ = s.Shutdown()
			return fmt.Errorf("metrics reporter %d: %w", i, err)
		}
		_, err = s.NewJob(def,
			gocron.NewTask(r.Report),
			gocron.WithName(fmt.Sprintf("metrics-reporter-%d", i)),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			_ = s.Shutdown()
			return fmt.Errorf("failed to schedule metrics reporter %d: %w", i, err)
		}
		r.log.Debug("metrics reporter scheduled",
			"reporter", i,
			"frequency", c.Frequency,
			"schedule", c.Schedule,
			"firstRun", next)
	}

	s.Start()
	r.scheduler = s
	return nil
}

func (r *Reporters) Stop(ctx context.Context) error {
	r.mu.Lock()
	s := r.scheduler
	r.scheduler = nil
	r.mu.Unlock()

	if s == nil {
		return nil
	}
	if err := s.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop reporter scheduler: %w", err)
	}
	return nil
}

// Report writes one snapshot.
func (r *Reporters) Report() {
	requests, serverErrors := r.metrics.GetStats()

	families := 0
	if mfs, err := r.metrics.GetRegistry().Gather(); err == nil {
		families = len(mfs)
	} else {
		r.log.Warn("failed to gather metrics for report", "error", err)
	}

	r.log.Info("metrics snapshot",
		"httpRequests", requests,
		"httpServerErrors", serverErrors,
		"goroutines", runtime.NumGoroutine(),
		"metricFamilies", families)
	r.runs.Add(1)
}

// Runs returns how many snapshots have been written.
func (r *Reporters) Runs() uint64 {
	return r.runs.Load()
}

// jobDefinition maps a reporter configuration to a job and the time it will
// first fire.
func jobDefinition(c config.ReporterConfig) (gocron.JobDefinition, time.Time, error) {
	now := time.Now()
	if c.Schedule == "" {
		return gocron.DurationJob(c.Frequency), now.Add(c.Frequency), nil
	}
	sched, err := cron.ParseStandard(c.Schedule)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("invalid schedule %q: %w", c.Schedule, err)
	}
	return gocron.CronJob(c.Schedule, false), sched.Next(now), nil
}
