// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TADA Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/cminter/TADA/internal/auth"
)

// Registrar implements auth.RegistrationStore. Consuming the invite and
// creating the account happen in one transaction so a code can never be
// spent without the account existing, or vice versa.
type Registrar struct {
	db DB
}

// NewRegistrar creates a new Registrar.
func NewRegistrar(db DB) *Registrar {
	return &Registrar{db: db}
}

// CreateWithInvite consumes the invite matching (user.ID, code) and inserts
// the user. Returns auth.ErrInviteMismatch when no such invite exists.
func (r *Registrar) CreateWithInvite(ctx context.Context, user *auth.User, code string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return oops.Code("REGISTER_FAILED").
			With("operation", "begin registration").
			With("user_id", user.ID).
			Wrap(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	tag, err := tx.Exec(ctx, `
		DELETE FROM invites
		WHERE user_id = $1 AND code = $2
	`, user.ID, code)
	if err != nil {
		return oops.Code("REGISTER_FAILED").
			With("operation", "consume invite").
			With("user_id", user.ID).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("INVITE_MISMATCH").
			With("user_id", user.ID).
			Wrap(auth.ErrInviteMismatch)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO users (id, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`, user.ID, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("USER_EXISTS").
				With("user_id", user.ID).
				Wrap(err)
		}
		return oops.Code("REGISTER_FAILED").
			With("operation", "insert user").
			With("user_id", user.ID).
			Wrap(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return oops.Code("REGISTER_FAILED").
			With("operation", "commit registration").
			With("user_id", user.ID).
			Wrap(err)
	}
	return nil
}

// Compile-time interface check.
var _ auth.RegistrationStore = (*Registrar)(nil)
