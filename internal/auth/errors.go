// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TADA Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrInviteMismatch is returned when an invite exists for an account name but
// the presented code does not match, or when no invite exists at all. The two
// cases are deliberately indistinguishable.
var ErrInviteMismatch = errors.New("invite code mismatch")

// ErrInvalidUserID is wrapped by every ValidateUserID failure so callers can
// tell bad client input apart from infrastructure faults.
var ErrInvalidUserID = errors.New("invalid user id")
