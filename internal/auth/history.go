// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TADA Contributors

package auth

import (
	"context"
	"time"
)

// FailLimit is the number of failed login attempts after which a source
// address is banned.
const FailLimit = 10

// LoginHistory is the per-source-address record of failed login attempts and
// ban state. It is loaded at connection start, mutated on every login
// attempt, and persisted after each mutation. Records are never deleted.
type LoginHistory struct {
	// Addr is the source address (host without port) this record keys on.
	Addr string

	// NoUserAttempts counts attempts per unknown account name.
	NoUserAttempts map[string]int

	// BadPasswordAttempts counts wrong-password attempts per account name.
	BadPasswordAttempts map[string]int

	// FailCount is the shared failure counter across all account names.
	// It only decreases on an explicit reset after a successful login.
	FailCount int

	// BanCount counts refused connections from this address after banning.
	BanCount int

	UpdatedAt time.Time
}

// NewLoginHistory creates an empty record for an address.
func NewLoginHistory(addr string) *LoginHistory {
	return &LoginHistory{
		Addr:                addr,
		NoUserAttempts:      make(map[string]int),
		BadPasswordAttempts: make(map[string]int),
	}
}

// IsBanned reports whether the address has reached the failure limit.
func (h *LoginHistory) IsBanned() bool {
	return h.FailCount >= FailLimit
}

// RecordNoSuchUser notes a login attempt against an unknown account name.
// Returns whether the address is banned afterwards.
func (h *LoginHistory) RecordNoSuchUser(userID string) bool {
	h.NoUserAttempts[userID]++
	h.FailCount++
	h.UpdatedAt = time.Now()
	return h.IsBanned()
}

// RecordBadPassword notes a wrong-password attempt for an existing account.
// Returns whether the address is banned afterwards.
func (h *LoginHistory) RecordBadPassword(userID string) bool {
	h.BadPasswordAttempts[userID]++
	h.FailCount++
	h.UpdatedAt = time.Now()
	return h.IsBanned()
}

// RecordSuccess resets the shared failure counter and forgets this user's
// wrong-password attempts. Counters for other account names stay: probing of
// other names from the same address must survive one valid login.
func (h *LoginHistory) RecordSuccess(userID string) {
	h.FailCount = 0
	delete(h.BadPasswordAttempts, userID)
	h.UpdatedAt = time.Now()
}

// RecordRefusal notes a connection refused because the address is banned.
func (h *LoginHistory) RecordRefusal() {
	h.BanCount++
	h.UpdatedAt = time.Now()
}

// HistoryRepository manages login-history persistence.
type HistoryRepository interface {
	// Get retrieves the record for an address. Returns ErrNotFound if absent;
	// absence is a valid, common case.
	Get(ctx context.Context, addr string) (*LoginHistory, error)

	// Put stores the record, replacing any previous version.
	Put(ctx context.Context, h *LoginHistory) error
}
