// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TADA Contributors

// Package auth provides the account, invite, and login-history primitives for
// the TADA server.
//
// # Domain Types
//
// User is a registered account; Invite is a one-time registration token bound
// to an account name; LoginHistory is the per-source-address record of failed
// login attempts and ban state. LoginHistory should be created with
// NewLoginHistory so its counter maps start initialized.
//
// # Services
//
//   - Service - account lookup, password verification, invite registration
//   - Guard - ban bookkeeping per source address, persisted on every mutation
//
// Both are created with constructors that validate dependencies.
package auth
