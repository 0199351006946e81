// file: internal/store/memory.go

package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
)

// MemoryStore keeps records in a map keyed by path. It backs tests and
// local development.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
	closed  bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

// Put stores a copy of rec at key.
func (m *MemoryStore) Put(key PropertyKey, rec *Record) error {
	if err := key.Validate(); err != nil {
		return err
	}
	data, err := rec.Encode()
	if err != nil {
		return err
	}
	stored, err := DecodeRecord(data)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key.Path()] = stored
	return nil
}

func (m *MemoryStore) Delete(key PropertyKey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, key.Path())
}

func (m *MemoryStore) Get(ctx context.Context, key PropertyKey) (*Record, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, errStoreClosed
	}
	rec, ok := m.records[key.Path()]
	if !ok {
		return nil, notFound(key)
	}
	data, err := rec.Encode()
	if err != nil {
		return nil, err
	}
	return DecodeRecord(data)
}

func (m *MemoryStore) Children(ctx context.Context, key PropertyKey) ([]string, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, errStoreClosed
	}
	prefix := key.Path() + "/"
	seen := make(map[string]struct{})
	for path := range m.records {
		rest, ok := strings.CutPrefix(path, prefix)
		if !ok {
			continue
		}
		name, _, _ := strings.Cut(rest, "/")
		seen[name] = struct{}{}
	}

	children := make([]string, 0, len(seen))
	for name := range seen {
		children = append(children, name)
	}
	sort.Strings(children)
	return children, nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return errStoreClosed
	}
	return nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Seed loads records from a JSON object mapping absolute paths to records.
func (m *MemoryStore) Seed(data []byte) error {
	var seed map[string]*Record
	if err := json.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("failed to decode seed: %w", err)
	}
	for path, rec := range seed {
		key := PropertyKey{Segments: strings.Split(strings.Trim(path, "/"), "/")}
		if rec == nil {
			return fmt.Errorf("seed %s: null record", path)
		}
		if err := m.Put(key, rec); err != nil {
			return fmt.Errorf("seed %s: %w", path, err)
		}
	}
	return nil
}
