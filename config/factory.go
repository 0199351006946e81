// file: config/factory.go

package config

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// SourceError reports a configuration source that could not be opened or
// read.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// ParseError reports a configuration document that could not be decoded at
// all.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Factory is the canonical loading path for a configuration type T. Every
// configuration a service runs with, whether read from a file or built in
// memory, goes through Parse: decode, apply environment overrides, default,
// validate.
type Factory[T any] struct {
	validator *validator.Validate
	envPrefix string
}

// NewFactory creates a factory. When envPrefix is non-empty, environment
// variables named PREFIX_SECTION_KEY override keys present in the document.
func NewFactory[T any](v *validator.Validate, envPrefix string) *Factory[T] {
	if v == nil {
		v = NewValidator()
	}
	return &Factory[T]{
		validator: v,
		envPrefix: envPrefix,
	}
}

// Build reads path through provider and parses it in the format its
// extension names.
func (f *Factory[T]) Build(provider SourceProvider, path string) (T, error) {
	return f.BuildAs(provider, path, FormatOf(path))
}

// BuildAs is Build with an explicit format.
func (f *Factory[T]) BuildAs(provider SourceProvider, path, format string) (T, error) {
	var zero T

	rc, err := provider.Open(path)
	if err != nil {
		return zero, &SourceError{Source: path, Err: err}
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return zero, &SourceError{Source: path, Err: err}
	}

	return f.Parse(path, data, format)
}

// Parse decodes data (json or yaml) into a validated, defaulted T. It has no
// side effects beyond reading the environment.
func (f *Factory[T]) Parse(source string, data []byte, format string) (T, error) {
	var out T

	v := viper.New()
	v.SetConfigType(format)
	if f.envPrefix != "" {
		v.SetEnvPrefix(f.envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}

	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return out, &ParseError{Source: source, Err: err}
	}

	if err := v.Unmarshal(&out, decoderOptions); err != nil {
		var zero T
		return zero, &ParseError{Source: source, Err: fmt.Errorf("failed to unmarshal config: %w", err)}
	}

	target := addressable(&out)
	if d, ok := target.(Defaulter); ok {
		d.ApplyDefaults()
	}

	if err := validate(f.validator, source, target); err != nil {
		var zero T
		return zero, err
	}

	return out, nil
}

// decoderOptions makes viper decode by the json tags the object mapper
// writes, flattening embedded structs the same way the encoder does.
func decoderOptions(dc *mapstructure.DecoderConfig) {
	dc.TagName = "json"
	dc.Squash = true
}

// addressable returns the value hooks should be called on: the pointer
// itself when T is a pointer type, otherwise a pointer to out.
func addressable[T any](out *T) any {
	rv := reflect.ValueOf(*out)
	if rv.IsValid() && rv.Kind() == reflect.Pointer && !rv.IsNil() {
		return *out
	}
	return out
}

// FormatOf maps a path's extension to a viper config type. Unknown
// extensions are read as YAML, which also accepts JSON documents.
func FormatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	default:
		return "yaml"
	}
}
