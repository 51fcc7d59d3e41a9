// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TADA Contributors

package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// InviteCodeBytes is the length of a generated invite code before hex encoding.
const InviteCodeBytes = 8 // 16 hex chars

// Invite is a one-time registration token. It permits the first login for a
// specific account name and is deleted in the same transaction that creates
// the account.
type Invite struct {
	ID        ulid.ULID
	UserID    string
	Code      string
	CreatedAt time.Time
}

// NewInvite creates a validated Invite with a freshly generated code.
func NewInvite(userID string) (*Invite, error) {
	if err := ValidateUserID(userID); err != nil {
		return nil, err
	}
	code, err := GenerateInviteCode()
	if err != nil {
		return nil, err
	}
	return &Invite{
		ID:        ulid.Make(),
		UserID:    userID,
		Code:      code,
		CreatedAt: time.Now(),
	}, nil
}

// GenerateInviteCode returns a random hex-encoded invite code.
func GenerateInviteCode() (string, error) {
	buf := make([]byte, InviteCodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", oops.Code("AUTH_INVITE_CODE_FAILED").Wrap(err)
	}
	return hex.EncodeToString(buf), nil
}

// InviteRepository manages invite persistence.
type InviteRepository interface {
	// Create stores a new invite. Fails if one already exists for the user ID.
	Create(ctx context.Context, invite *Invite) error

	// Get retrieves the invite for an account name. Returns ErrNotFound if absent.
	Get(ctx context.Context, userID string) (*Invite, error)
}
