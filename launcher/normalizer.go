// file: launcher/normalizer.go

package launcher

import (
	"fmt"

	"github.com/google/uuid"

	"helix-console/config"
)

// normalizer round-trips a configuration value through the canonical loader
// so a value built in code is defaulted and validated exactly like one read
// from a file. Fields the loader does not know are dropped.
type normalizer[T config.Configuration] struct {
	codec   Codec
	factory *config.Factory[T]
	// scratch holds the encoded document for the duration of one call.
	scratch *config.MemorySourceProvider
}

func newNormalizer[T config.Configuration](b *Bootstrap[T]) *normalizer[T] {
	return &normalizer[T]{
		codec:   b.Codec(),
		factory: b.ConfigurationFactory(),
		scratch: config.NewMemorySourceProvider(),
	}
}

func (n *normalizer[T]) Normalize(cfg T) (T, error) {
	var zero T

	data, err := n.encode(cfg)
	if err != nil {
		return zero, &ConfigEncodingError{Type: fmt.Sprintf("%T", cfg), Err: err}
	}

	name := "config-" + uuid.NewString() + n.codec.Extension()
	n.scratch.Put(name, data)
	defer n.scratch.Delete(name)

	// The YAML reader keeps integers as integers; the JSON one widens them
	// to float64 and loses precision above 2^53.
	out, err := n.factory.BuildAs(n.scratch, name, "yaml")
	if err != nil {
		return zero, &ConfigValidationError{Source: name, Err: err}
	}
	return out, nil
}

func (n *normalizer[T]) encode(cfg T) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			data, err = nil, fmt.Errorf("encoder panicked: %v", r)
		}
	}()
	return n.codec.Marshal(cfg)
}
