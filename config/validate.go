// file: config/validate.go

package config

import (
	"errors"
	"fmt"
	"net"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// SelfValidator is implemented by configurations with rules that struct tags
// cannot express. It runs after tag validation.
type SelfValidator interface {
	Validate() error
}

// ValidationError lists every rule a configuration document broke.
type ValidationError struct {
	Source     string
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s has %d error(s): %s", e.Source, len(e.Violations), strings.Join(e.Violations, "; "))
}

// NewValidator returns the validator used by the canonical loader. Field
// names in messages follow the json tags so they match the document keys.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("bindaddr", validateBindAddr)

	return v
}

// validateBindAddr accepts host:port where port may be 0 (ephemeral).
func validateBindAddr(fl validator.FieldLevel) bool {
	_, port, err := net.SplitHostPort(fl.Field().String())
	if err != nil {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n >= 0 && n <= 65535
}

// Validate checks the base rules that are not expressible as tags.
func (b Base) Validate() error {
	if b.Server != nil && cleanContextPath(b.Server.ApplicationContextPath) == cleanContextPath(b.Server.AdminContextPath) {
		return fmt.Errorf("server application and admin context paths must differ, both are %q", b.Server.AdminContextPath)
	}

	if _, err := time.ParseDuration(b.Metrics.UpdateInterval); err != nil {
		return fmt.Errorf("invalid metrics update interval: %w", err)
	}

	for i, r := range b.Metrics.Reporters {
		if r.Frequency > 0 && r.Schedule != "" {
			return fmt.Errorf("metrics reporter %d: frequency and schedule are mutually exclusive", i)
		}
		if r.Schedule != "" {
			if _, err := cron.ParseStandard(r.Schedule); err != nil {
				return fmt.Errorf("metrics reporter %d: invalid schedule %q: %w", i, r.Schedule, err)
			}
		}
	}

	return nil
}

// cleanContextPath drops trailing slashes, keeping the root as "/".
func cleanContextPath(p string) string {
	p = strings.TrimRight(p, "/")
	if p == "" {
		return "/"
	}
	return p
}

// validate runs tag rules and then SelfValidator, collecting tag violations
// into a single ValidationError.
func validate(v *validator.Validate, source string, target any) error {
	if err := v.Struct(target); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return &ValidationError{Source: source, Violations: []string{err.Error()}}
		}
		violations := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			violations = append(violations, formatFieldError(fe))
		}
		return &ValidationError{Source: source, Violations: violations}
	}

	if sv, ok := target.(SelfValidator); ok {
		if err := sv.Validate(); err != nil {
			return &ValidationError{Source: source, Violations: []string{err.Error()}}
		}
	}

	return nil
}

// formatFieldError formats a single field validation error
func formatFieldError(e validator.FieldError) string {
	field := trimRootNamespace(e.Namespace())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "startswith":
		return fmt.Sprintf("%s must start with %q", field, e.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "bindaddr":
		return fmt.Sprintf("%s must be host:port with a port between 0 and 65535, got %q", field, e.Value())
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, e.Tag())
	}
}

// trimRootNamespace turns a validator namespace (Config.Base.server.address)
// into the document path (server.address). The root type name and untagged
// embedded structs are the only capitalized segments.
func trimRootNamespace(ns string) string {
	parts := strings.Split(ns, ".")
	kept := parts[:0]
	for i, p := range parts {
		if i == 0 && len(parts) > 1 {
			continue
		}
		if p != "" && p[0] >= 'A' && p[0] <= 'Z' && i < len(parts)-1 {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, ".")
}
