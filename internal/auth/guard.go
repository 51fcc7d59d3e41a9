// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TADA Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/samber/oops"
)

// Guard rate-limits and eventually locks out repeated failed logins per
// source address, independent of which account is being attempted.
//
// All mutations load the record, change it, and persist it synchronously
// under one lock, so concurrent connections from the same address observe a
// serialized history. A single guard-wide lock is enough at the expected
// contention level; correctness beats granularity here.
type Guard struct {
	repo   HistoryRepository
	logger *slog.Logger
	mu     sync.Mutex
}

// NewGuard creates a Guard with a no-op logger.
func NewGuard(repo HistoryRepository) (*Guard, error) {
	if repo == nil {
		return nil, oops.Errorf("history repository is required")
	}
	return &Guard{repo: repo, logger: slog.New(slog.DiscardHandler)}, nil
}

// NewGuardWithLogger creates a Guard with the provided logger.
func NewGuardWithLogger(repo HistoryRepository, logger *slog.Logger) (*Guard, error) {
	if repo == nil {
		return nil, oops.Errorf("history repository is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &Guard{repo: repo, logger: logger}, nil
}

// Banned reports whether the address has reached the failure limit.
// Called before any handshake processing begins.
func (g *Guard) Banned(ctx context.Context, addr string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	h, err := g.load(ctx, addr)
	if err != nil {
		return false, err
	}
	return h.IsBanned(), nil
}

// Refuse records that a connection from a banned address was turned away.
func (g *Guard) Refuse(ctx context.Context, addr string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	h, err := g.load(ctx, addr)
	if err != nil {
		return err
	}
	h.RecordRefusal()
	g.logger.Info("refused banned address",
		"addr", addr,
		"fail_count", h.FailCount,
		"ban_count", h.BanCount,
	)
	return g.persist(ctx, h)
}

// NoSuchUser records a login attempt against an unknown account name and
// returns whether the address is banned afterwards.
func (g *Guard) NoSuchUser(ctx context.Context, addr, userID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	h, err := g.load(ctx, addr)
	if err != nil {
		return false, err
	}
	banned := h.RecordNoSuchUser(userID)
	if err := g.persist(ctx, h); err != nil {
		return false, err
	}
	return banned, nil
}

// BadPassword records a wrong-password attempt and returns whether the
// address is banned afterwards.
func (g *Guard) BadPassword(ctx context.Context, addr, userID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	h, err := g.load(ctx, addr)
	if err != nil {
		return false, err
	}
	banned := h.RecordBadPassword(userID)
	if err := g.persist(ctx, h); err != nil {
		return false, err
	}
	return banned, nil
}

// Success resets the address's failure counter after a successful login.
func (g *Guard) Success(ctx context.Context, addr, userID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	h, err := g.load(ctx, addr)
	if err != nil {
		return err
	}
	h.RecordSuccess(userID)
	return g.persist(ctx, h)
}

// load fetches the record for an address, creating a fresh one when none is
// stored yet. Callers must hold g.mu.
func (g *Guard) load(ctx context.Context, addr string) (*LoginHistory, error) {
	h, err := g.repo.Get(ctx, addr)
	if errors.Is(err, ErrNotFound) {
		return NewLoginHistory(addr), nil
	}
	if err != nil {
		return nil, oops.Code("AUTH_HISTORY_LOAD_FAILED").With("addr", addr).Wrap(err)
	}
	return h, nil
}

// persist stores the record. Persistence is synchronous on every mutation so
// a crash never loses ban state. Callers must hold g.mu.
func (g *Guard) persist(ctx context.Context, h *LoginHistory) error {
	if err := g.repo.Put(ctx, h); err != nil {
		return oops.Code("AUTH_HISTORY_PERSIST_FAILED").With("addr", h.Addr).Wrap(err)
	}
	return nil
}
