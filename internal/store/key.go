// file: internal/store/key.go

package store

import (
	"fmt"
	"strings"
)

// PropertyType names the kind of record a key points at.
type PropertyType string

const (
	LiveInstances         PropertyType = "LIVEINSTANCES"
	StateTransitionErrors PropertyType = "ERRORS"
)

// PropertyKey addresses one record in the coordination store by its
// hierarchical path, e.g. /cluster/INSTANCES/node_1/ERRORS/session/db.
type PropertyKey struct {
	Type     PropertyType
	Segments []string
}

// Path renders the key as a slash-separated absolute path.
func (k PropertyKey) Path() string {
	return "/" + strings.Join(k.Segments, "/")
}

func (k PropertyKey) String() string { return k.Path() }

// Validate reports empty segments or segments that contain a separator.
func (k PropertyKey) Validate() error {
	if len(k.Segments) == 0 {
		return fmt.Errorf("empty %s key", k.Type)
	}
	for i, s := range k.Segments {
		if s == "" {
			return fmt.Errorf("%s key %s: segment %d is empty", k.Type, k.Path(), i)
		}
		if strings.ContainsAny(s, "/.") {
			return fmt.Errorf("%s key %s: segment %q contains a separator", k.Type, k.Path(), s)
		}
	}
	return nil
}

// KeyBuilder builds the keys of one cluster.
type KeyBuilder struct {
	cluster string
}

func NewKeyBuilder(cluster string) KeyBuilder {
	return KeyBuilder{cluster: cluster}
}

// LiveInstance is the ephemeral record of a connected participant.
func (b KeyBuilder) LiveInstance(instance string) PropertyKey {
	return PropertyKey{
		Type:     LiveInstances,
		Segments: []string{b.cluster, string(LiveInstances), instance},
	}
}

// StateTransitionErrorsRoot holds one child per resource that recorded an
// error during the given session.
func (b KeyBuilder) StateTransitionErrorsRoot(instance, session string) PropertyKey {
	return PropertyKey{
		Type:     StateTransitionErrors,
		Segments: []string{b.cluster, "INSTANCES", instance, string(StateTransitionErrors), session},
	}
}

// StateTransitionErrors is the error record of one resource.
func (b KeyBuilder) StateTransitionErrors(instance, session, resource string) PropertyKey {
	root := b.StateTransitionErrorsRoot(instance, session)
	root.Segments = append(root.Segments, resource)
	return root
}
