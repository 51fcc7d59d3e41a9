// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TADA Contributors

package auth

import (
	"context"
	"regexp"
	"time"

	"github.com/samber/oops"
)

// User ID validation constraints.
const (
	MinUserIDLength = 2
	MaxUserIDLength = 30
)

// userIDRegex matches account names that start with a letter and contain only
// letters, numbers, and underscores.
var userIDRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// User represents a registered account. The ID doubles as the login name.
type User struct {
	ID           string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser creates a validated User from an already-hashed password.
func NewUser(id, passwordHash string) (*User, error) {
	if err := ValidateUserID(id); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, oops.Code("AUTH_INVALID_HASH").Errorf("password hash cannot be empty")
	}
	now := time.Now()
	return &User{
		ID:           id,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ValidateUserID validates an account name against the naming rules. Every
// failure wraps ErrInvalidUserID.
func ValidateUserID(id string) error {
	if id == "" {
		return oops.Code("AUTH_INVALID_USER_ID").
			Wrapf(ErrInvalidUserID, "user id cannot be empty")
	}
	if len(id) < MinUserIDLength {
		return oops.Code("AUTH_INVALID_USER_ID").
			With("min", MinUserIDLength).
			Wrapf(ErrInvalidUserID, "user id must be at least %d characters", MinUserIDLength)
	}
	if len(id) > MaxUserIDLength {
		return oops.Code("AUTH_INVALID_USER_ID").
			With("max", MaxUserIDLength).
			Wrapf(ErrInvalidUserID, "user id must be at most %d characters", MaxUserIDLength)
	}
	if !userIDRegex.MatchString(id) {
		return oops.Code("AUTH_INVALID_USER_ID").
			Wrapf(ErrInvalidUserID, "user id must start with a letter and contain only letters, numbers, and underscores")
	}
	return nil
}

// UserRepository manages account persistence.
type UserRepository interface {
	// Create stores a new user. Fails if the ID is already taken.
	Create(ctx context.Context, user *User) error

	// Get retrieves a user by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (*User, error)

	// UpdatePassword replaces the password hash for a user.
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}
