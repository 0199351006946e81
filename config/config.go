//file: config/config.go

package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration is implemented by every application configuration type.
// Embedding Base satisfies it.
type Configuration interface {
	ServerSettings() *ServerConfig
	LoggingSettings() LogConfig
	MetricsSettings() MetricsConfig
}

// Base holds the settings every launched service needs. Application
// configurations embed it (with `yaml:",inline"`) and add their own sections.
type Base struct {
	Server  *ServerConfig `json:"server" yaml:"server" validate:"required"`
	Logging LogConfig     `json:"logging" yaml:"logging"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
}

// ServerConfig describes the HTTP listener and its routing roots.
type ServerConfig struct {
	Address                string        `json:"address" yaml:"address" validate:"required,bindaddr"`
	ApplicationContextPath string        `json:"applicationContextPath" yaml:"applicationContextPath" validate:"required,startswith=/"`
	AdminContextPath       string        `json:"adminContextPath" yaml:"adminContextPath" validate:"required,startswith=/"`
	ReadTimeout            time.Duration `json:"readTimeout" yaml:"readTimeout" validate:"gte=0"`
	ReadHeaderTimeout      time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout" validate:"gte=0"`
	WriteTimeout           time.Duration `json:"writeTimeout" yaml:"writeTimeout" validate:"gte=0"`
	IdleTimeout            time.Duration `json:"idleTimeout" yaml:"idleTimeout" validate:"gte=0"`
	MaxHeaderBytes         int           `json:"maxHeaderBytes" yaml:"maxHeaderBytes" validate:"gte=0"`
	ShutdownGracePeriod    time.Duration `json:"shutdownGracePeriod" yaml:"shutdownGracePeriod" validate:"gte=0"`
	RequestTimeout         time.Duration `json:"requestTimeout" yaml:"requestTimeout" validate:"gte=0"`
}

type LogConfig struct {
	Level      string `json:"level" yaml:"level" validate:"oneof=debug info warn error"` // debug, info, warn, error
	OutputPath string `json:"outputPath" yaml:"outputPath" validate:"required"`          // file path or "stdout"
	Encoding   string `json:"encoding" yaml:"encoding" validate:"oneof=json console"`    // json or console
}

type MetricsConfig struct {
	Enabled        bool             `json:"enabled" yaml:"enabled"`
	Path           string           `json:"path" yaml:"path" validate:"required,startswith=/"`
	UpdateInterval string           `json:"updateInterval" yaml:"updateInterval"` // Duration string
	Reporters      []ReporterConfig `json:"reporters" yaml:"reporters" validate:"dive"`
}

// ReporterConfig schedules a periodic metrics snapshot. Exactly one of
// Frequency or Schedule (standard 5-field cron) drives it.
type ReporterConfig struct {
	Type      string        `json:"type" yaml:"type" validate:"oneof=log"`
	Frequency time.Duration `json:"frequency" yaml:"frequency" validate:"gte=0"`
	Schedule  string        `json:"schedule" yaml:"schedule"`
}

func (b Base) ServerSettings() *ServerConfig  { return b.Server }
func (b Base) LoggingSettings() LogConfig     { return b.Logging }
func (b Base) MetricsSettings() MetricsConfig { return b.Metrics }

// UpdateIntervalDuration returns the parsed collector interval. Callers
// only see configurations that already passed validation.
func (m MetricsConfig) UpdateIntervalDuration() time.Duration {
	d, err := time.ParseDuration(m.UpdateInterval)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// MarshalYAML renders any configuration value as YAML, the way a config file
// for it would look.
func MarshalYAML(cfg any) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// ContextPaths returns the application and admin mount points with trailing
// slashes removed.
func (s *ServerConfig) ContextPaths() (application, admin string) {
	return cleanContextPath(s.ApplicationContextPath), cleanContextPath(s.AdminContextPath)
}
