// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TADA Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"
)

// dummyPasswordHash is verified in place of a real hash when a login names an
// unknown account, so unknown-account and wrong-password failures cost the
// same time. It is not a credential; no password produces this hash.
//
//nolint:gosec // G101: fake hash for timing-attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// RegistrationStore atomically consumes an invite and creates the account.
type RegistrationStore interface {
	// CreateWithInvite creates the user and deletes the matching invite in a
	// single transaction. Returns an error wrapping ErrInviteMismatch when no
	// invite with that code exists for the user ID.
	CreateWithInvite(ctx context.Context, user *User, code string) error
}

// Service provides account operations for the session layer.
type Service struct {
	users     UserRepository
	registrar RegistrationStore
	hasher    PasswordHasher
	logger    *slog.Logger
}

// NewService creates a Service with a no-op logger.
func NewService(users UserRepository, registrar RegistrationStore, hasher PasswordHasher) (*Service, error) {
	if users == nil {
		return nil, oops.Errorf("user repository is required")
	}
	if registrar == nil {
		return nil, oops.Errorf("registration store is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	return &Service{
		users:     users,
		registrar: registrar,
		hasher:    hasher,
		logger:    slog.New(slog.DiscardHandler),
	}, nil
}

// NewServiceWithLogger creates a Service with the provided logger.
func NewServiceWithLogger(users UserRepository, registrar RegistrationStore, hasher PasswordHasher, logger *slog.Logger) (*Service, error) {
	svc, err := NewService(users, registrar, hasher)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	svc.logger = logger
	return svc, nil
}

// Lookup retrieves an account by ID. Returns an error wrapping ErrNotFound
// when the account does not exist.
func (s *Service) Lookup(ctx context.Context, userID string) (*User, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, oops.Code("AUTH_LOOKUP_FAILED").With("user_id", userID).Wrap(err)
	}
	return user, nil
}

// VerifyPassword checks a plaintext password against the user's stored hash.
// On a match, a hash produced with outdated parameters is re-hashed and
// stored; the login succeeds even if that write fails.
func (s *Service) VerifyPassword(ctx context.Context, user *User, password string) (bool, error) {
	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return false, oops.Code("AUTH_VERIFY_FAILED").With("user_id", user.ID).Wrap(err)
	}
	if ok && s.hasher.NeedsUpgrade(user.PasswordHash) {
		s.upgradeHash(ctx, user, password)
	}
	return ok, nil
}

// VerifyMissing burns the time a real password verification would take, for
// login attempts against accounts that do not exist. Without it the cause of
// a generic login failure would leak through response timing.
func (s *Service) VerifyMissing(password string) {
	_, _ = s.hasher.Verify(password, dummyPasswordHash)
}

func (s *Service) upgradeHash(ctx context.Context, user *User, password string) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Warn("password hash upgrade failed", "user_id", user.ID, "error", err)
		return
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		s.logger.Warn("password hash upgrade failed", "user_id", user.ID, "error", err)
		return
	}
	user.PasswordHash = hash
	s.logger.Info("password hash upgraded", "user_id", user.ID)
}

// RegisterFromInvite creates an account from a matching one-time invite code.
// The invite is consumed in the same transaction that creates the account, so
// a code is never usable twice. Returns an error wrapping ErrInviteMismatch
// when the code does not match.
func (s *Service) RegisterFromInvite(ctx context.Context, userID, password, code string) (*User, error) {
	if code == "" {
		return nil, oops.Code("AUTH_INVITE_MISMATCH").Wrap(ErrInviteMismatch)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			With("user_id", userID).
			Wrap(err)
	}

	user, err := NewUser(userID, hash)
	if err != nil {
		return nil, err
	}

	if err := s.registrar.CreateWithInvite(ctx, user, code); err != nil {
		if errors.Is(err, ErrInviteMismatch) {
			return nil, err
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "create user with invite").
			With("user_id", userID).
			Wrap(err)
	}

	s.logger.Info("account created from invite", "user_id", userID)
	return user, nil
}
