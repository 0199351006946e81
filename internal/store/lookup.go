// file: internal/store/lookup.go

package store

import (
	"context"
	"fmt"
)

// SessionIDField is the live-instance field carrying the current session.
const SessionIDField = "SESSION_ID"

// InstanceSessionID returns the session of a live instance. An instance that
// is not live yields an error wrapping ErrNotFound.
func InstanceSessionID(ctx context.Context, s Store, cluster, instance string) (string, error) {
	rec, err := s.Get(ctx, NewKeyBuilder(cluster).LiveInstance(instance))
	if err != nil {
		return "", fmt.Errorf("instance %s of cluster %s is not live: %w", instance, cluster, err)
	}
	session := rec.SimpleFields[SessionIDField]
	if session == "" {
		return "", fmt.Errorf("live instance %s of cluster %s has no %s", instance, cluster, SessionIDField)
	}
	return session, nil
}
