// file: config/defaults.go

package config

import "time"

// Defaulter is implemented by configurations that fill in zero values after
// decoding. Types embedding Base inherit ApplyDefaults; types that override
// it must call Base.ApplyDefaults themselves.
type Defaulter interface {
	ApplyDefaults()
}

// ApplyDefaults sets default values for the base sections. A nil Server is
// left nil so validation can reject the missing binding.
func (b *Base) ApplyDefaults() {
	if b.Server != nil {
		setServerDefaults(b.Server)
	}
	setLogDefaults(&b.Logging)
	setMetricsDefaults(&b.Metrics)
}

func setServerDefaults(cfg *ServerConfig) {
	if cfg.Address == "" {
		cfg.Address = ":8080"
	}
	if cfg.ApplicationContextPath == "" {
		cfg.ApplicationContextPath = "/"
	}
	if cfg.AdminContextPath == "" {
		cfg.AdminContextPath = "/admin"
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.ReadHeaderTimeout == 0 {
		cfg.ReadHeaderTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 30 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 120 * time.Second
	}
	if cfg.MaxHeaderBytes == 0 {
		cfg.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.ShutdownGracePeriod == 0 {
		cfg.ShutdownGracePeriod = 30 * time.Second
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
}

func setLogDefaults(cfg *LogConfig) {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = "stdout"
	}
	if cfg.Encoding == "" {
		cfg.Encoding = "json"
	}
}

func setMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Path == "" {
		cfg.Path = "/metrics"
	}
	if cfg.UpdateInterval == "" {
		cfg.UpdateInterval = "15s"
	}
	for i := range cfg.Reporters {
		if cfg.Reporters[i].Type == "" {
			cfg.Reporters[i].Type = "log"
		}
		if cfg.Reporters[i].Frequency == 0 && cfg.Reporters[i].Schedule == "" {
			cfg.Reporters[i].Frequency = time.Minute
		}
	}
}
