// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TADA Contributors

package server_test

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/cminter/TADA/internal/proto"
	"github.com/cminter/TADA/internal/server"
)

func TestNewServer_Validation(t *testing.T) {
	env := newTestEnv(t)
	logger := slog.New(slog.DiscardHandler)

	_, err := server.NewServer("127.0.0.1:0", testCfg, nil, env.guard, &stubHandler{}, logger)
	assert.Error(t, err)

	_, err = server.NewServer("127.0.0.1:0", testCfg, env.svc, nil, &stubHandler{}, logger)
	assert.Error(t, err)

	_, err = server.NewServer("127.0.0.1:0", testCfg, env.svc, env.guard, nil, logger)
	assert.Error(t, err)

	_, err = server.NewServer("127.0.0.1:0", testCfg, env.svc, env.guard, &stubHandler{}, nil)
	assert.Error(t, err)
}

func TestServer_Run(t *testing.T) {
	defer goleak.VerifyNone(t)

	env := newTestEnv(t)
	env.addUser(t, "ryan", "swordfish")

	srv, err := server.NewServer("127.0.0.1:0", testCfg, env.svc, env.guard, &stubHandler{}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan error, 1)
	go func() {
		runDone <- srv.Run(ctx)
	}()

	// Wait for the listener to come up.
	require.Eventually(t, func() bool {
		return srv.Addr() != ""
	}, 2*time.Second, 10*time.Millisecond)

	conn, err := net.Dial("tcp", srv.Addr())
	require.NoError(t, err)
	defer conn.Close() //nolint:errcheck

	require.NoError(t, conn.SetDeadline(time.Now().Add(2*time.Second)))
	enc := json.NewEncoder(conn)
	r := bufio.NewReader(conn)

	readMsg := func() *proto.Message {
		t.Helper()
		line, err := r.ReadBytes('\n')
		require.NoError(t, err)
		var msg proto.Message
		require.NoError(t, json.Unmarshal(line, &msg))
		return &msg
	}

	require.NoError(t, enc.Encode(map[string]any{"id": testCfg.AppID, "key": testCfg.Key, "protocol": 1}))
	msg := readMsg()
	assert.Equal(t, proto.ModeLogin, msg.Mode)

	require.NoError(t, enc.Encode(map[string]any{"login": []string{"ryan", "swordfish"}}))
	msg = readMsg()
	assert.Equal(t, proto.ErrNone, msg.Error)
	assert.Equal(t, 1, srv.Registry().Len())

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool {
		return srv.Registry().Len() == 0
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-runDone:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}
