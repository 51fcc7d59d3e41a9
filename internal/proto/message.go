// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TADA Contributors

// Package proto defines the wire envelope exchanged between the TADA server
// and its clients, and the newline-delimited JSON codec that carries it.
package proto

import (
	"encoding/json"

	"github.com/samber/oops"
)

// Mode tells the peer what kind of exchange follows a message.
type Mode int

// Modes, in wire order.
const (
	ModeApp   Mode = iota // normal application traffic
	ModeLogin             // the peer should send login credentials next
	ModeBye               // the session must terminate after this message
)

// modeNames is the authoritative enum-to-wire mapping for Mode.
var modeNames = map[Mode]string{
	ModeApp:   "app",
	ModeLogin: "login",
	ModeBye:   "bye",
}

// modeValues is the inverse of modeNames, built at init to keep the two in sync.
var modeValues = func() map[string]Mode {
	m := make(map[string]Mode, len(modeNames))
	for k, v := range modeNames {
		m[v] = k
	}
	return m
}()

// String returns the wire name of the mode.
func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return "unknown"
}

// MarshalJSON encodes the mode as its wire name.
func (m Mode) MarshalJSON() ([]byte, error) {
	s, ok := modeNames[m]
	if !ok {
		return nil, oops.Code("PROTO_BAD_MODE").With("mode", int(m)).Errorf("unknown mode %d", int(m))
	}
	return json.Marshal(s)
}

// UnmarshalJSON decodes a wire name into a mode. The empty string decodes to
// ModeApp so that senders may omit the field.
func (m *Mode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return oops.Code("PROTO_BAD_MODE").Wrap(err)
	}
	if s == "" {
		*m = ModeApp
		return nil
	}
	v, ok := modeValues[s]
	if !ok {
		return oops.Code("PROTO_BAD_MODE").With("mode", s).Errorf("unknown mode %q", s)
	}
	*m = v
	return nil
}

// ErrCode classifies a failure for the client. The zero value means no error
// and is omitted from the wire form.
type ErrCode int

// Error codes, in wire order.
const (
	ErrNone     ErrCode = iota
	ErrServer1          // fault inside per-message dispatch; fatal to the session
	ErrServer2          // fault outside per-message dispatch; fatal to the session
	ErrUserID           // empty account identifier in a login request
	ErrLogin1           // generic login failure; deliberately cause-agnostic
	ErrLogin2           // source address exceeded the failure threshold
	ErrMultiple         // account already has an active session
)

// errNames is the authoritative enum-to-wire mapping for ErrCode.
var errNames = map[ErrCode]string{
	ErrNone:     "",
	ErrServer1:  "server1",
	ErrServer2:  "server2",
	ErrUserID:   "user_id",
	ErrLogin1:   "login1",
	ErrLogin2:   "login2",
	ErrMultiple: "multiple",
}

var errValues = func() map[string]ErrCode {
	m := make(map[string]ErrCode, len(errNames))
	for k, v := range errNames {
		m[v] = k
	}
	return m
}()

// String returns the wire name of the code, or "" for ErrNone.
func (e ErrCode) String() string {
	if s, ok := errNames[e]; ok {
		return s
	}
	return "unknown"
}

// MarshalJSON encodes the code as its wire name.
func (e ErrCode) MarshalJSON() ([]byte, error) {
	s, ok := errNames[e]
	if !ok {
		return nil, oops.Code("PROTO_BAD_ERRCODE").With("code", int(e)).Errorf("unknown error code %d", int(e))
	}
	return json.Marshal(s)
}

// UnmarshalJSON decodes a wire name into a code.
func (e *ErrCode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return oops.Code("PROTO_BAD_ERRCODE").Wrap(err)
	}
	v, ok := errValues[s]
	if !ok {
		return oops.Code("PROTO_BAD_ERRCODE").With("code", s).Errorf("unknown error code %q", s)
	}
	*e = v
	return nil
}

// Message is the envelope sent from server to client. Login and handshake
// replies use the same shape as in-game replies.
//
// A message with Mode == ModeBye obligates the receiver to terminate the
// session after processing it; no further messages follow.
type Message struct {
	Lines     []string          `json:"lines,omitempty"`
	Mode      Mode              `json:"mode"`
	Error     ErrCode           `json:"error,omitempty"`
	ErrorLine string            `json:"error_line,omitempty"`
	Changes   map[string]any    `json:"changes,omitempty"`
	Choices   map[string]string `json:"choices,omitempty"`
	Prompt    string            `json:"prompt,omitempty"`
}

// Bye reports whether the message terminates the session.
func (m *Message) Bye() bool {
	return m != nil && m.Mode == ModeBye
}

// Request is the client-to-server envelope. Handshake and login requests use
// the fixed fields below; in-game requests are free-form and interpreted by
// the command handler (Cmd carries the common case).
type Request struct {
	// Handshake fields.
	ID       string `json:"id,omitempty"`
	Key      string `json:"key,omitempty"`
	Protocol int    `json:"protocol,omitempty"`

	// Login tuple: [user_id, password, invite_code]. The invite code may be
	// absent for ordinary logins.
	Login []string `json:"login,omitempty"`

	// In-game command text.
	Cmd string `json:"cmd,omitempty"`
}

// LoginTuple unpacks the login field. ok is false when the field is missing
// or too short to carry credentials.
func (r *Request) LoginTuple() (userID, password, invite string, ok bool) {
	if len(r.Login) < 2 {
		return "", "", "", false
	}
	userID, password = r.Login[0], r.Login[1]
	if len(r.Login) > 2 {
		invite = r.Login[2]
	}
	return userID, password, invite, true
}
