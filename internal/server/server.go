// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TADA Contributors

package server

import (
	"context"
	"log/slog"
	"net"
	"sync"

	"github.com/samber/oops"

	"github.com/cminter/TADA/internal/auth"
	"github.com/cminter/TADA/internal/game"
)

// Server accepts connections and spawns one Session per connection.
type Server struct {
	listenAddr string
	cfg        Config
	accounts   *auth.Service
	guard      *auth.Guard
	registry   *Registry
	handler    game.Handler
	logger     *slog.Logger

	mu       sync.RWMutex
	listener net.Listener
	wg       sync.WaitGroup
}

// NewServer creates a server. The registry is owned by the server and shared
// by reference with every session it spawns.
func NewServer(listenAddr string, cfg Config, accounts *auth.Service, guard *auth.Guard, handler game.Handler, logger *slog.Logger) (*Server, error) {
	if accounts == nil {
		return nil, oops.Errorf("account service is required")
	}
	if guard == nil {
		return nil, oops.Errorf("login guard is required")
	}
	if handler == nil {
		return nil, oops.Errorf("command handler is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &Server{
		listenAddr: listenAddr,
		cfg:        cfg,
		accounts:   accounts,
		guard:      guard,
		registry:   NewRegistry(),
		handler:    handler,
		logger:     logger,
	}, nil
}

// Addr returns the bound listen address, or "" before Run.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Registry exposes the server's session registry.
func (s *Server) Registry() *Registry {
	return s.registry
}

// Run listens and serves until the context is cancelled, then waits for
// in-flight sessions to finish.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return oops.Code("SERVER_LISTEN_FAILED").With("addr", s.listenAddr).Wrap(err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	s.logger.Info("server started", "addr", listener.Addr())

	go func() {
		<-ctx.Done()
		if err := listener.Close(); err != nil {
			s.logger.Debug("error closing listener", "error", err)
		}
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				s.wg.Wait()
				s.logger.Info("server stopped")
				return nil
			default:
				s.logger.Error("accept failed", "error", err)
				continue
			}
		}

		session := NewSession(conn, s.cfg, s.accounts, s.guard, s.registry, s.handler, s.logger)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			session.Run(ctx)
		}()
	}
}
