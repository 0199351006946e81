//file: internal/logger/logger.go

package logger

import (
	"errors"
	"fmt"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"helix-console/config"
)

// Logger wraps zap.Logger to provide application-specific logging
type Logger struct {
	*zap.Logger

	stopOnce *sync.Once
	stopErr  *error
}

// New creates a logger for one service instance. Every entry written is
// counted in log_events_total{level} on reg when reg is non-nil.
func New(cfg config.LogConfig, name string, reg prometheus.Registerer) (*Logger, error) {
	// Parse log level
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zap.DebugLevel
	case "info":
		level = zap.InfoLevel
	case "warn":
		level = zap.WarnLevel
	case "error":
		level = zap.ErrorLevel
	case "":
		level = zap.InfoLevel
	default:
		return nil, fmt.Errorf("unknown log level %q", cfg.Level)
	}

	encoding := cfg.Encoding
	if encoding == "" {
		encoding = "json"
	}
	output := cfg.OutputPath
	if output == "" {
		output = "stdout"
	}

	// Create zap config
	zapCfg := zap.Config{
		Level:       zap.NewAtomicLevelAt(level),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding:         encoding,
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{output},
		ErrorOutputPaths: []string{output},
	}

	// Customize encoder config
	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	zapCfg.EncoderConfig.StacktraceKey = "stacktrace"

	opts := []zap.Option{
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
	}

	if reg != nil {
		events, err := registerEventCounter(reg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, zap.Hooks(func(e zapcore.Entry) error {
			events.WithLabelValues(e.Level.String()).Inc()
			return nil
		}))
	}

	logger, err := zapCfg.Build(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	if name != "" {
		logger = logger.Named(name)
	}

	return wrap(logger), nil
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *Logger {
	return wrap(zap.NewNop())
}

func wrap(z *zap.Logger) *Logger {
	var err error
	return &Logger{Logger: z, stopOnce: &sync.Once{}, stopErr: &err}
}

func registerEventCounter(reg prometheus.Registerer) (*prometheus.CounterVec, error) {
	events := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "log_events_total",
			Help: "Total number of log entries written, by level",
		},
		[]string{"level"},
	)
	if err := reg.Register(events); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("failed to register log event counter: %w", err)
	}
	return events, nil
}

// With returns a child logger carrying the given key/value pairs. The child
// shares Stop with its parent.
func (l *Logger) With(args ...interface{}) *Logger {
	return &Logger{
		Logger:   l.Logger.With(argsToFields(args...)...),
		stopOnce: l.stopOnce,
		stopErr:  l.stopErr,
	}
}

// Fatal logs a message at Fatal level and exits
func (l *Logger) Fatal(msg string, args ...interface{}) {
	fields := argsToFields(args...)
	l.Logger.Fatal(msg, fields...)
}

// Error logs a message at Error level
func (l *Logger) Error(msg string, args ...interface{}) {
	fields := argsToFields(args...)
	l.Logger.Error(msg, fields...)
}

// Warn logs a message at Warn level
func (l *Logger) Warn(msg string, args ...interface{}) {
	fields := argsToFields(args...)
	l.Logger.Warn(msg, fields...)
}

// Info logs a message at Info level
func (l *Logger) Info(msg string, args ...interface{}) {
	fields := argsToFields(args...)
	l.Logger.Info(msg, fields...)
}

// Debug logs a message at Debug level
func (l *Logger) Debug(msg string, args ...interface{}) {
	fields := argsToFields(args...)
	l.Logger.Debug(msg, fields...)
}

// Sync flushes any buffered log entries
func (l *Logger) Sync() error {
	return l.Logger.Sync()
}

// Stop flushes the logger for the last time. Only the first call does any
// work; later calls return the first result.
func (l *Logger) Stop() error {
	l.stopOnce.Do(func() {
		err := l.Logger.Sync()
		// stdout and stderr cannot be fsynced on most terminals and pipes.
		if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
			err = nil
		}
		*l.stopErr = err
	})
	return *l.stopErr
}

// argsToFields converts variadic args to zap fields
func argsToFields(args ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			key, ok := args[i].(string)
			if !ok {
				continue
			}
			fields = append(fields, zap.Any(key, args[i+1]))
		}
	}
	return fields
}
