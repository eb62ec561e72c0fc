// Package registry tracks live real-time connections and their optional
// user identities. It is the single source of truth for which handles are
// reachable right now.
package registry

import (
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/friend-ai/backend/internal/model"
)

// Transport is the write side of one live connection. The registry never
// reads from a transport; sessions own their own receive loops.
type Transport interface {
	// Send queues an already-serialized envelope for delivery. It must
	// not block on a slow or dead peer.
	Send(data []byte)
}

// Snapshot is a consistent point-in-time view of the registry.
type Snapshot struct {
	ConnectionCount int      `json:"active_connections"`
	UserCount       int      `json:"user_sessions"`
	ConnectionIDs   []string `json:"connections"`
	UserIDs         []string `json:"users"`
}

// Registry is an in-memory bidirectional mapping between connection handles
// and optional identities. All operations are serialized under one mutex so
// the two maps are never observed partially updated. A Registry instance is
// owned by the composition root and injected; it is not a package singleton.
type Registry struct {
	mu          sync.Mutex
	connections map[string]Transport // handle -> transport
	users       map[string]string    // identity -> handle
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		connections: make(map[string]Transport),
		users:       make(map[string]string),
	}
}

// Register mints a fresh handle for the transport and makes it routable.
// A non-empty userID also binds identity->handle, superseding any earlier
// connection for the same identity: the prior handle stays reachable by
// handle but is no longer resolvable by identity; it is not closed here.
func (r *Registry) Register(t Transport, userID string) string {
	handle := uuid.New().String()

	r.mu.Lock()
	r.connections[handle] = t
	if userID != "" {
		if prev, ok := r.users[userID]; ok {
			log.Printf("registry: user %s superseded handle %s with %s", userID, prev, handle)
		}
		r.users[userID] = handle
	}
	r.mu.Unlock()

	return handle
}

// Unregister removes the handle and, if an identity points at it, that
// identity mapping too. Unregistering an absent handle is a no-op.
func (r *Registry) Unregister(handle string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.connections[handle]; !ok {
		return
	}
	delete(r.connections, handle)

	for userID, h := range r.users {
		if h == handle {
			delete(r.users, userID)
			break
		}
	}
}

// ResolveTransport returns the transport for a handle.
func (r *Registry) ResolveTransport(handle string) (Transport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.connections[handle]
	if !ok {
		return nil, model.ErrConnectionNotFound
	}
	return t, nil
}

// ResolveHandle returns the live handle for an identity.
func (r *Registry) ResolveHandle(userID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	handle, ok := r.users[userID]
	if !ok {
		return "", model.ErrUserNotConnected
	}
	return handle, nil
}

// SendToUser delivers a serialized envelope to the identity's live
// connection, if any.
func (r *Registry) SendToUser(userID string, data []byte) error {
	r.mu.Lock()
	handle, ok := r.users[userID]
	var t Transport
	if ok {
		t, ok = r.connections[handle]
	}
	r.mu.Unlock()

	if !ok {
		return model.ErrUserNotConnected
	}
	t.Send(data)
	return nil
}

// Snapshot returns a consistent view of both maps.
func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		ConnectionCount: len(r.connections),
		UserCount:       len(r.users),
		ConnectionIDs:   make([]string, 0, len(r.connections)),
		UserIDs:         make([]string, 0, len(r.users)),
	}
	for handle := range r.connections {
		snap.ConnectionIDs = append(snap.ConnectionIDs, handle)
	}
	for userID := range r.users {
		snap.UserIDs = append(snap.UserIDs, userID)
	}
	return snap
}
