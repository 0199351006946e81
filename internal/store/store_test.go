// file: internal/store/store_test.go

package store

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestKeyBuilder(t *testing.T) {
	b := NewKeyBuilder("prod")

	tests := []struct {
		name string
		key  PropertyKey
		want string
		typ  PropertyType
	}{
		{"live instance", b.LiveInstance("node_1"), "/prod/LIVEINSTANCES/node_1", LiveInstances},
		{"errors root", b.StateTransitionErrorsRoot("node_1", "s1"), "/prod/INSTANCES/node_1/ERRORS/s1", StateTransitionErrors},
		{"resource errors", b.StateTransitionErrors("node_1", "s1", "db"), "/prod/INSTANCES/node_1/ERRORS/s1/db", StateTransitionErrors},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.Path(); got != tt.want {
				t.Errorf("Path() = %q, want %q", got, tt.want)
			}
			if tt.key.Type != tt.typ {
				t.Errorf("Type = %s, want %s", tt.key.Type, tt.typ)
			}
			if err := tt.key.Validate(); err != nil {
				t.Errorf("Validate() error: %v", err)
			}
		})
	}

	// Building a child key must not alias the root's segments.
	root := b.StateTransitionErrorsRoot("node_1", "s1")
	_ = b.StateTransitionErrors("node_1", "s1", "db")
	if got := root.Path(); got != "/prod/INSTANCES/node_1/ERRORS/s1" {
		t.Errorf("root Path() = %q after building a child", got)
	}
}

func TestPropertyKeyValidate(t *testing.T) {
	tests := []struct {
		name    string
		key     PropertyKey
		wantErr string
	}{
		{"empty", PropertyKey{}, "empty"},
		{"empty segment", NewKeyBuilder("").LiveInstance("node_1"), "segment 0 is empty"},
		{"slash in segment", NewKeyBuilder("prod").LiveInstance("a/b"), "contains a separator"},
		{"dot in segment", NewKeyBuilder("prod").LiveInstance("host.example"), "contains a separator"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.key.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeRecord(t *testing.T) {
	rec, err := DecodeRecord([]byte(`{"id":"node_1","simpleFields":{"SESSION_ID":"s1"}}`))
	if err != nil {
		t.Fatalf("DecodeRecord() error: %v", err)
	}
	if rec.ID != "node_1" || rec.SimpleFields[SessionIDField] != "s1" {
		t.Errorf("DecodeRecord() = %+v", rec)
	}
	if rec.ListFields == nil || rec.MapFields == nil {
		t.Error("DecodeRecord() left field maps nil")
	}

	if _, err := DecodeRecord([]byte(`{"id":`)); err == nil {
		t.Error("DecodeRecord() of truncated JSON expected error, got nil")
	}
}

func seededMemoryStore(t *testing.T) *MemoryStore {
	t.Helper()
	m := NewMemoryStore()
	err := m.Seed([]byte(`{
		"/prod/LIVEINSTANCES/node_1": {"id": "node_1", "simpleFields": {"SESSION_ID": "s1"}},
		"/prod/LIVEINSTANCES/node_2": {"id": "node_2"},
		"/prod/INSTANCES/node_1/ERRORS/s1/db": {"id": "db", "mapFields": {"db_0": {"ERROR": "timeout"}}},
		"/prod/INSTANCES/node_1/ERRORS/s1/cache": {"id": "cache"},
		"/prod/INSTANCES/node_1/ERRORS/s0/old": {"id": "old"}
	}`))
	if err != nil {
		t.Fatalf("Seed() error: %v", err)
	}
	return m
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := seededMemoryStore(t)
	b := NewKeyBuilder("prod")

	rec, err := m.Get(ctx, b.StateTransitionErrors("node_1", "s1", "db"))
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got := rec.MapFields["db_0"]["ERROR"]; got != "timeout" {
		t.Errorf("MapFields[db_0][ERROR] = %q, want timeout", got)
	}

	// Returned records are copies.
	rec.SimpleFields["mutated"] = "yes"
	again, _ := m.Get(ctx, b.StateTransitionErrors("node_1", "s1", "db"))
	if _, ok := again.SimpleFields["mutated"]; ok {
		t.Error("Get() returned a record aliasing the stored one")
	}

	_, err = m.Get(ctx, b.StateTransitionErrors("node_1", "s1", "web"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() of a missing key error = %v, want ErrNotFound", err)
	}

	children, err := m.Children(ctx, b.StateTransitionErrorsRoot("node_1", "s1"))
	if err != nil {
		t.Fatalf("Children() error: %v", err)
	}
	if want := []string{"cache", "db"}; !reflect.DeepEqual(children, want) {
		t.Errorf("Children() = %v, want %v", children, want)
	}

	children, err = m.Children(ctx, PropertyKey{Segments: []string{"prod", "INSTANCES", "node_1", "ERRORS"}})
	if err != nil {
		t.Fatalf("Children() error: %v", err)
	}
	if want := []string{"s0", "s1"}; !reflect.DeepEqual(children, want) {
		t.Errorf("Children() of sessions = %v, want %v", children, want)
	}

	empty, err := m.Children(ctx, b.StateTransitionErrorsRoot("node_2", "s9"))
	if err != nil || len(empty) != 0 {
		t.Errorf("Children() of an empty root = %v, %v, want none", empty, err)
	}

	if err := m.Ping(ctx); err != nil {
		t.Errorf("Ping() error: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := m.Ping(ctx); err == nil {
		t.Error("Ping() after Close() expected error, got nil")
	}
	if _, err := m.Get(ctx, b.LiveInstance("node_1")); err == nil {
		t.Error("Get() after Close() expected error, got nil")
	}
}

func TestMemoryStoreSeedErrors(t *testing.T) {
	tests := []struct {
		name string
		seed string
	}{
		{"not an object", `[1, 2]`},
		{"null record", `{"/prod/LIVEINSTANCES/node_1": null}`},
		{"bad path", `{"/prod//node_1": {"id": "x"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := NewMemoryStore().Seed([]byte(tt.seed)); err == nil {
				t.Error("Seed() expected error, got nil")
			}
		})
	}
}

func TestInstanceSessionID(t *testing.T) {
	ctx := context.Background()
	m := seededMemoryStore(t)

	tests := []struct {
		name         string
		instance     string
		want         string
		wantNotFound bool
		wantErr      bool
	}{
		{name: "live instance", instance: "node_1", want: "s1"},
		{name: "no session field", instance: "node_2", wantErr: true},
		{name: "not live", instance: "node_3", wantErr: true, wantNotFound: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := InstanceSessionID(ctx, m, "prod", tt.instance)
			if (err != nil) != tt.wantErr {
				t.Fatalf("InstanceSessionID() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("InstanceSessionID() = %q, want %q", got, tt.want)
			}
			if tt.wantNotFound && !errors.Is(err, ErrNotFound) {
				t.Errorf("InstanceSessionID() error = %v, want ErrNotFound", err)
			}
		})
	}
}
