// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TADA Contributors

// Package game implements the in-game command handler behind the session
// layer. The session owns the protocol; everything after a successful login
// is delegated here.
package game

import (
	"context"

	"github.com/cminter/TADA/internal/proto"
)

// Handler is the seam between the session layer and the game world. The
// session calls these hooks at fixed points in a connection's lifecycle and
// relays the returned messages to the client unmodified.
type Handler interface {
	// InitGreeting returns the lines shown immediately after a valid
	// handshake, before login.
	InitGreeting() []string

	// LoginFailureLines returns the lines shown alongside a generic login
	// failure.
	LoginFailureLines() []string

	// OnLoginSuccess is invoked exactly once per successful login, before any
	// command is processed. It may initialize per-user state.
	OnLoginSuccess(ctx context.Context, userID string) (*proto.Message, error)

	// OnCommand is invoked for every request received while authenticated.
	// A nil message or one with mode bye ends the session.
	OnCommand(ctx context.Context, userID string, req *proto.Request) (*proto.Message, error)
}
