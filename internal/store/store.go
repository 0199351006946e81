// file: internal/store/store.go

// Package store reads cluster state records from the coordination store.
package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when no record exists at a key.
var ErrNotFound = errors.New("record not found")

var errStoreClosed = errors.New("store is closed")

// Store is a read view of the coordination store.
type Store interface {
	// Get returns the record at key, or an error wrapping ErrNotFound.
	Get(ctx context.Context, key PropertyKey) (*Record, error)
	// Children lists the names of the records directly below key, sorted.
	Children(ctx context.Context, key PropertyKey) ([]string, error)
	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
	Close() error
}

func notFound(key PropertyKey) error {
	return fmt.Errorf("%s: %w", key.Path(), ErrNotFound)
}
