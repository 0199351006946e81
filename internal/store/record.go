// file: internal/store/record.go

package store

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Record is the generic record format of the coordination store: an id plus
// simple, list and map fields.
type Record struct {
	ID           string                       `json:"id"`
	SimpleFields map[string]string            `json:"simpleFields"`
	ListFields   map[string][]string          `json:"listFields"`
	MapFields    map[string]map[string]string `json:"mapFields"`
}

func NewRecord(id string) *Record {
	return &Record{
		ID:           id,
		SimpleFields: make(map[string]string),
		ListFields:   make(map[string][]string),
		MapFields:    make(map[string]map[string]string),
	}
}

// DecodeRecord parses a stored record. Missing field maps are allocated so
// callers can read them without nil checks.
func DecodeRecord(data []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	if r.SimpleFields == nil {
		r.SimpleFields = make(map[string]string)
	}
	if r.ListFields == nil {
		r.ListFields = make(map[string][]string)
	}
	if r.MapFields == nil {
		r.MapFields = make(map[string]map[string]string)
	}
	return &r, nil
}

func (r *Record) Encode() ([]byte, error) {
	return json.Marshal(r)
}
