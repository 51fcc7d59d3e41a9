// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TADA Contributors

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/cminter/TADA/internal/auth"
)

// historyRecord is the stored form of auth.LoginHistory. It is a separate
// type so the wire schema stays stable when the in-memory struct changes;
// absent fields decode to their zero values and nil maps are normalized to
// empty ones on load.
type historyRecord struct {
	NoUserAttempts      map[string]int `json:"no_user_attempts,omitempty"`
	BadPasswordAttempts map[string]int `json:"bad_password_attempts,omitempty"`
	FailCount           int            `json:"fail_count,omitempty"`
	BanCount            int            `json:"ban_count,omitempty"`
}

func (rec *historyRecord) toDomain(addr string, updatedAt time.Time) *auth.LoginHistory {
	h := auth.NewLoginHistory(addr)
	for k, v := range rec.NoUserAttempts {
		h.NoUserAttempts[k] = v
	}
	for k, v := range rec.BadPasswordAttempts {
		h.BadPasswordAttempts[k] = v
	}
	h.FailCount = rec.FailCount
	h.BanCount = rec.BanCount
	h.UpdatedAt = updatedAt
	return h
}

// HistoryRepository implements auth.HistoryRepository using PostgreSQL.
type HistoryRepository struct {
	db DB
}

// NewHistoryRepository creates a new HistoryRepository.
func NewHistoryRepository(db DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Get retrieves the record for an address.
func (r *HistoryRepository) Get(ctx context.Context, addr string) (*auth.LoginHistory, error) {
	row := r.db.QueryRow(ctx, `
		SELECT record, updated_at
		FROM login_history
		WHERE addr = $1
	`, addr)

	var (
		recordJSON []byte
		updatedAt  time.Time
	)
	err := row.Scan(&recordJSON, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("HISTORY_NOT_FOUND").
			With("addr", addr).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("HISTORY_GET_FAILED").
			With("operation", "get login history").
			With("addr", addr).
			Wrap(err)
	}

	var rec historyRecord
	if len(recordJSON) > 0 {
		if err := json.Unmarshal(recordJSON, &rec); err != nil {
			return nil, oops.Code("HISTORY_INVALID_RECORD").
				With("operation", "unmarshal login history").
				With("addr", addr).
				Wrap(err)
		}
	}
	return rec.toDomain(addr, updatedAt), nil
}

// Put stores the record, replacing any previous version.
func (r *HistoryRepository) Put(ctx context.Context, h *auth.LoginHistory) error {
	rec := historyRecord{
		NoUserAttempts:      h.NoUserAttempts,
		BadPasswordAttempts: h.BadPasswordAttempts,
		FailCount:           h.FailCount,
		BanCount:            h.BanCount,
	}
	recordJSON, err := json.Marshal(rec)
	if err != nil {
		return oops.Code("HISTORY_PUT_FAILED").
			With("operation", "marshal login history").
			With("addr", h.Addr).
			Wrap(err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO login_history (addr, record, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (addr) DO UPDATE SET record = $2, updated_at = $3
	`, h.Addr, recordJSON, h.UpdatedAt)
	if err != nil {
		return oops.Code("HISTORY_PUT_FAILED").
			With("operation", "upsert login history").
			With("addr", h.Addr).
			Wrap(err)
	}
	return nil
}

// Compile-time interface check.
var _ auth.HistoryRepository = (*HistoryRepository)(nil)
