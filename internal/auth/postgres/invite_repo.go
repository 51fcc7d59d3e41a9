// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TADA Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/cminter/TADA/internal/auth"
)

// InviteRepository implements auth.InviteRepository using PostgreSQL.
type InviteRepository struct {
	db DB
}

// NewInviteRepository creates a new InviteRepository.
func NewInviteRepository(db DB) *InviteRepository {
	return &InviteRepository{db: db}
}

// Create stores a new invite.
func (r *InviteRepository) Create(ctx context.Context, invite *auth.Invite) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO invites (id, user_id, code, created_at)
		VALUES ($1, $2, $3, $4)
	`,
		invite.ID.String(),
		invite.UserID,
		invite.Code,
		invite.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("INVITE_EXISTS").
				With("user_id", invite.UserID).
				Errorf("invite for %q already exists", invite.UserID)
		}
		return oops.Code("INVITE_CREATE_FAILED").
			With("operation", "insert invite").
			With("user_id", invite.UserID).
			Wrap(err)
	}
	return nil
}

// Get retrieves the invite for an account name.
func (r *InviteRepository) Get(ctx context.Context, userID string) (*auth.Invite, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, code, created_at
		FROM invites
		WHERE user_id = $1
	`, userID)

	var (
		idStr  string
		invite auth.Invite
	)
	err := row.Scan(&idStr, &invite.UserID, &invite.Code, &invite.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("INVITE_NOT_FOUND").
			With("user_id", userID).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("INVITE_GET_FAILED").
			With("operation", "get invite").
			With("user_id", userID).
			Wrap(err)
	}

	invite.ID, err = ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("INVITE_INVALID_ID").
			With("id", idStr).
			Wrap(err)
	}
	return &invite, nil
}

// Compile-time interface check.
var _ auth.InviteRepository = (*InviteRepository)(nil)
