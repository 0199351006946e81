// file: launcher/errors.go

package launcher

import (
	"errors"
	"fmt"
	"syscall"
)

// ConfigEncodingError means the configuration value could not be encoded by
// the bootstrap codec.
type ConfigEncodingError struct {
	Type string
	Err  error
}

func (e *ConfigEncodingError) Error() string {
	return fmt.Sprintf("failed to encode configuration %s: %v", e.Type, e.Err)
}

func (e *ConfigEncodingError) Unwrap() error { return e.Err }

// ConfigValidationError means the canonical loader rejected the
// configuration. Err is a *config.ValidationError or *config.ParseError.
// A source that cannot be read at all is reported as *config.SourceError
// instead.
type ConfigValidationError struct {
	Source string
	Err    error
}

func (e *ConfigValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %v", e.Err)
}

func (e *ConfigValidationError) Unwrap() error { return e.Err }

// ServiceBindError means the configured listener could not be acquired.
type ServiceBindError struct {
	Address string
	Err     error
}

func (e *ServiceBindError) Error() string {
	return fmt.Sprintf("failed to bind %s: %v", e.Address, e.Err)
}

func (e *ServiceBindError) Unwrap() error { return e.Err }

// ResourceExhaustionError means the host ran out of a resource the launch
// needed, such as file descriptors.
type ResourceExhaustionError struct {
	Resource string
	Err      error
}

func (e *ResourceExhaustionError) Error() string {
	return fmt.Sprintf("%s exhausted: %v", e.Resource, e.Err)
}

func (e *ResourceExhaustionError) Unwrap() error { return e.Err }

// classifyListenError maps a listen failure to the launch taxonomy.
func classifyListenError(address string, err error) error {
	if errors.Is(err, syscall.EMFILE) || errors.Is(err, syscall.ENFILE) {
		return &ResourceExhaustionError{Resource: "file descriptors", Err: err}
	}
	return &ServiceBindError{Address: address, Err: err}
}
