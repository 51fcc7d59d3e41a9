// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TADA Contributors

package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"

	"github.com/oklog/ulid/v2"

	"github.com/cminter/TADA/internal/auth"
	"github.com/cminter/TADA/internal/game"
	"github.com/cminter/TADA/internal/proto"
	"github.com/cminter/TADA/pkg/errutil"
)

// Config holds the handshake constants every client must present.
type Config struct {
	AppID    string
	Key      string
	Protocol int
}

// Session owns one connection's lifecycle: handshake, login, then the
// authenticated command loop. States only move forward; every exit path runs
// through teardown, which releases the registry claim exactly once.
type Session struct {
	conn     net.Conn
	codec    *proto.Codec
	cfg      Config
	accounts *auth.Service
	guard    *auth.Guard
	registry *Registry
	handler  game.Handler
	logger   *slog.Logger

	addr     string
	userID   string
	acquired bool
}

// NewSession creates a session for an accepted connection. Every session
// gets its own connection ID so its log lines correlate.
func NewSession(conn net.Conn, cfg Config, accounts *auth.Service, guard *auth.Guard, registry *Registry, handler game.Handler, logger *slog.Logger) *Session {
	return &Session{
		conn:     conn,
		codec:    proto.NewCodec(conn),
		cfg:      cfg,
		accounts: accounts,
		guard:    guard,
		registry: registry,
		handler:  handler,
		logger:   logger.With("conn_id", ulid.Make().String()),
		addr:     remoteHost(conn),
	}
}

// Run drives the session until the peer disconnects or a terminal message is
// sent. It blocks the calling goroutine for the connection's lifetime.
func (s *Session) Run(ctx context.Context) {
	defer s.teardown()
	SessionsStarted.Inc()

	banned, err := s.guard.Banned(ctx, s.addr)
	if err != nil {
		errutil.LogError(s.logger, "ban check failed", err)
		s.sendBye(proto.ErrServer2)
		return
	}
	if banned {
		recordLogin(LoginRefused)
		if err := s.guard.Refuse(ctx, s.addr); err != nil {
			errutil.LogError(s.logger, "refusal bookkeeping failed", err)
		}
		s.send(&proto.Message{
			Mode:      proto.ModeBye,
			Error:     proto.ErrLogin2,
			ErrorLine: "too many failed logins from this address",
		})
		return
	}

	if !s.handshake() {
		return
	}
	if !s.send(&proto.Message{Lines: s.handler.InitGreeting(), Mode: proto.ModeLogin}) {
		return
	}
	if !s.login(ctx) {
		return
	}
	s.commandLoop(ctx)
}

// handshake waits for the client's identifier, key, and protocol version.
// A mismatch gets no reply at all: probing clients learn nothing about what
// this server is.
func (s *Session) handshake() bool {
	req, ok := s.read()
	if !ok {
		return false
	}
	if req.ID != s.cfg.AppID || req.Key != s.cfg.Key {
		s.logger.Warn("handshake rejected", "addr", s.addr, "id", req.ID)
		return false
	}
	// TODO: reject protocol versions the server cannot speak.
	s.logger.Debug("handshake accepted", "addr", s.addr, "protocol", req.Protocol)
	return true
}

// login runs the AwaitingLogin state until the session authenticates or
// terminates. Returns true once authenticated with the registry claim held.
func (s *Session) login(ctx context.Context) bool {
	for {
		req, ok := s.read()
		if !ok {
			return false
		}

		userID, password, invite, ok := req.LoginTuple()
		if !ok || userID == "" {
			recordLogin(LoginEmptyUserID)
			s.send(&proto.Message{
				Error:     proto.ErrUserID,
				ErrorLine: "a user id is required",
			})
			return false
		}

		user, err := s.accounts.Lookup(ctx, userID)
		switch {
		case errors.Is(err, auth.ErrNotFound):
			if invite != "" {
				switch s.registerFromInvite(ctx, userID, password, invite) {
				case inviteRegistered:
					return s.authenticated(ctx, userID)
				case inviteTerminal:
					return false
				case inviteRejected:
				}
			} else {
				// An unknown account must cost the same time as a wrong
				// password, or the generic failure leaks which it was.
				s.accounts.VerifyMissing(password)
			}
			if s.recordFailure(ctx, userID, LoginNoUser) {
				return false
			}
		case err != nil:
			errutil.LogError(s.logger, "account lookup failed", err)
			s.sendBye(proto.ErrServer2)
			return false
		default:
			// The already-connected check comes before password verification,
			// so a second connection with the right password still sees
			// `multiple` and learns nothing about the password.
			if !s.registry.TryAcquire(userID) {
				recordLogin(LoginMultiple)
				s.send(&proto.Message{
					Mode:      proto.ModeBye,
					Error:     proto.ErrMultiple,
					ErrorLine: "account already has an active session",
				})
				return false
			}
			match, verr := s.accounts.VerifyPassword(ctx, user, password)
			if verr != nil {
				s.registry.Release(userID)
				errutil.LogError(s.logger, "password verification failed", verr)
				s.sendBye(proto.ErrServer2)
				return false
			}
			if !match {
				s.registry.Release(userID)
				if s.recordFailure(ctx, userID, LoginBadPassword) {
					return false
				}
				continue
			}
			return s.authenticated(ctx, userID)
		}
	}
}

// inviteOutcome is the result of an invite registration attempt.
type inviteOutcome int

const (
	// inviteRegistered: account created, registry claim held.
	inviteRegistered inviteOutcome = iota
	// inviteRejected: bad code or bad client input. The caller falls back to
	// the generic failure handling so invite probing is indistinguishable
	// from unknown-account probing.
	inviteRejected
	// inviteTerminal: a terminating reply was already sent. No further
	// message may follow and no failure is charged to the address.
	inviteTerminal
)

// registerFromInvite attempts branch (c) of the login flow: no account, an
// invite code is present.
func (s *Session) registerFromInvite(ctx context.Context, userID, password, invite string) inviteOutcome {
	if _, err := s.accounts.RegisterFromInvite(ctx, userID, password, invite); err != nil {
		switch {
		case errors.Is(err, auth.ErrInviteMismatch),
			errors.Is(err, auth.ErrEmptyPassword),
			errors.Is(err, auth.ErrInvalidUserID):
			return inviteRejected
		default:
			// Store fault, not a client mistake: no failure is charged.
			errutil.LogError(s.logger, "invite registration failed", err)
			s.sendBye(proto.ErrServer2)
			return inviteTerminal
		}
	}
	if !s.registry.TryAcquire(userID) {
		recordLogin(LoginMultiple)
		s.send(&proto.Message{
			Mode:      proto.ModeBye,
			Error:     proto.ErrMultiple,
			ErrorLine: "account already has an active session",
		})
		return inviteTerminal
	}
	s.userID = userID
	s.acquired = true
	return inviteRegistered
}

// authenticated finalizes a successful login and sends the welcome message.
// The caller must hold the registry claim unless registerFromInvite took it.
func (s *Session) authenticated(ctx context.Context, userID string) bool {
	if !s.acquired {
		s.userID = userID
		s.acquired = true
	}
	ActiveSessions.Inc()
	recordLogin(LoginSuccess)

	if err := s.guard.Success(ctx, s.addr, userID); err != nil {
		// The login already succeeded; a bookkeeping failure is not worth
		// dropping the session over.
		errutil.LogError(s.logger, "failure counter reset failed", err)
	}
	s.logger.Info("login succeeded", "addr", s.addr, "user_id", userID)

	msg, err := s.handler.OnLoginSuccess(ctx, userID)
	if err != nil {
		errutil.LogError(s.logger, "login success hook failed", err)
		s.sendBye(proto.ErrServer1)
		return false
	}
	if msg == nil {
		return false
	}
	if !s.send(msg) {
		return false
	}
	return !msg.Bye()
}

// recordFailure books a failed attempt and replies. Returns true when the
// session must terminate (ban threshold crossed or bookkeeping failed).
func (s *Session) recordFailure(ctx context.Context, userID, kind string) (terminal bool) {
	var banned bool
	var err error
	if kind == LoginBadPassword {
		banned, err = s.guard.BadPassword(ctx, s.addr, userID)
	} else {
		banned, err = s.guard.NoSuchUser(ctx, s.addr, userID)
	}
	if err != nil {
		errutil.LogError(s.logger, "login history update failed", err)
		s.sendBye(proto.ErrServer2)
		return true
	}
	if banned {
		recordLogin(LoginBanned)
		s.logger.Warn("address banned", "addr", s.addr)
		s.send(&proto.Message{
			Mode:      proto.ModeBye,
			Error:     proto.ErrLogin2,
			ErrorLine: "too many failed logins from this address",
		})
		return true
	}
	recordLogin(kind)
	s.send(&proto.Message{
		Lines: s.handler.LoginFailureLines(),
		Mode:  proto.ModeLogin,
		Error: proto.ErrLogin1,
	})
	return false
}

// commandLoop is the Authenticated state: every request is delegated to the
// handler and the reply relayed unmodified.
func (s *Session) commandLoop(ctx context.Context) {
	for {
		req, ok := s.read()
		if !ok {
			return
		}
		msg, err := s.handler.OnCommand(ctx, s.userID, req)
		if err != nil {
			errutil.LogError(s.logger, "command hook failed", err)
			s.sendBye(proto.ErrServer1)
			return
		}
		if msg == nil {
			return
		}
		if !s.send(msg) {
			return
		}
		if msg.Bye() {
			return
		}
	}
}

// read fetches the next request. A malformed record is reported back once
// and one more attempt is allowed; a second consecutive malformed record
// ends the session.
func (s *Session) read() (*proto.Request, bool) {
	for attempt := 0; ; attempt++ {
		req, err := s.codec.ReadRequest()
		if err == nil {
			return req, true
		}
		if errors.Is(err, io.EOF) {
			s.logger.Debug("peer disconnected", "addr", s.addr)
			return nil, false
		}
		if errors.Is(err, proto.ErrMalformed) {
			s.logger.Warn("malformed message", "addr", s.addr, "error", err)
			if attempt == 0 {
				if !s.send(&proto.Message{ErrorLine: "malformed message, could not decode"}) {
					return nil, false
				}
				continue
			}
			return nil, false
		}
		errutil.LogError(s.logger, "read failed", err)
		return nil, false
	}
}

// send writes one message, reporting whether the session may continue.
func (s *Session) send(msg *proto.Message) bool {
	if err := s.codec.WriteMessage(msg); err != nil {
		errutil.LogError(s.logger, "write failed", err)
		return false
	}
	return true
}

// sendBye tells the client to disconnect after an unexpected server fault.
// The client sees only an opaque notice; detail stays in the server log.
func (s *Session) sendBye(code proto.ErrCode) {
	s.send(&proto.Message{
		Lines: []string{"Terminating session."},
		Mode:  proto.ModeBye,
		Error: code,
	})
}

// teardown runs on every exit path. The registry claim is dropped at most
// once here and nowhere else after authentication.
func (s *Session) teardown() {
	if s.acquired {
		s.registry.Release(s.userID)
		s.acquired = false
		ActiveSessions.Dec()
	}
	if err := s.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		s.logger.Debug("error closing connection", "error", err)
	}
	s.logger.Debug("session ended", "addr", s.addr)
}

// remoteHost extracts the host half of the peer address; ban bookkeeping is
// keyed on it. Transports without host:port addresses use the whole string.
func remoteHost(conn net.Conn) string {
	addrStr := conn.RemoteAddr().String()
	if host, _, err := net.SplitHostPort(addrStr); err == nil {
		return host
	}
	return addrStr
}
