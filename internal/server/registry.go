// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TADA Contributors

// Package server implements the TCP server: the listener, the per-connection
// session state machine, and the registry enforcing one active connection
// per account.
package server

import "sync"

// Registry is the process-wide set of currently-authenticated user IDs. All
// access goes through TryAcquire and Release so the check-then-insert on
// login is one critical section and cannot race.
type Registry struct {
	mu     sync.Mutex
	active map[string]struct{}
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{active: make(map[string]struct{})}
}

// TryAcquire claims the user ID for a new session. Returns false when the
// account already has an active session.
func (r *Registry) TryAcquire(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.active[userID]; ok {
		return false
	}
	r.active[userID] = struct{}{}
	return true
}

// Release gives up the claim on a user ID. Releasing an ID that is not held
// is a no-op, so every session exit path may call it unconditionally.
func (r *Registry) Release(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, userID)
}

// Len returns the number of active sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}
