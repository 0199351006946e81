// file: internal/console/config.go

package console

import (
	"errors"

	"helix-console/config"
	"helix-console/internal/store"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreNATS   = "nats"
)

// Config is the console configuration document.
type Config struct {
	config.Base `yaml:",inline"`
	Store       StoreConfig `json:"store" yaml:"store"`
}

// StoreConfig selects the coordination store the console reads from.
type StoreConfig struct {
	Type string `json:"type" yaml:"type" validate:"oneof=memory nats"`
	// SeedFile preloads the memory store with a JSON object of path → record.
	SeedFile string            `json:"seedFile,omitempty" yaml:"seedFile,omitempty"`
	NATS     *store.NATSConfig `json:"nats,omitempty" yaml:"nats,omitempty"`
}

func (c *Config) ApplyDefaults() {
	c.Base.ApplyDefaults()
	if c.Store.Type == "" {
		c.Store.Type = StoreMemory
	}
}

func (c *Config) Validate() error {
	if err := c.Base.Validate(); err != nil {
		return err
	}
	if c.Store.Type == StoreNATS && c.Store.NATS == nil {
		return errors.New("store.nats is required when store.type is nats")
	}
	if c.Store.Type == StoreMemory && c.Store.NATS != nil {
		return errors.New("store.nats is only valid when store.type is nats")
	}
	return nil
}
