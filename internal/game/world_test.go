// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TADA Contributors

package game_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cminter/TADA/internal/game"
	"github.com/cminter/TADA/internal/proto"
)

func command(t *testing.T, w *game.World, userID, cmd string) *proto.Message {
	t.Helper()
	msg, err := w.OnCommand(context.Background(), userID, &proto.Request{Cmd: cmd})
	require.NoError(t, err)
	require.NotNil(t, msg)
	return msg
}

func TestWorld_Greetings(t *testing.T) {
	w := game.NewWorld()
	assert.NotEmpty(t, w.InitGreeting())
	assert.NotEmpty(t, w.LoginFailureLines())
}

func TestWorld_OnLoginSuccess(t *testing.T) {
	ctx := context.Background()

	t.Run("first login grants starting gold", func(t *testing.T) {
		w := game.NewWorld()
		msg, err := w.OnLoginSuccess(ctx, "ryan")
		require.NoError(t, err)

		assert.Equal(t, proto.ModeApp, msg.Mode)
		assert.Contains(t, msg.Lines[0], "ryan")
		assert.Equal(t, game.StartingGold, msg.Changes["gold"])
		assert.NotEmpty(t, msg.Prompt)
	})

	t.Run("relogin keeps existing state", func(t *testing.T) {
		w := game.NewWorld()
		_, err := w.OnLoginSuccess(ctx, "ryan")
		require.NoError(t, err)

		// Walk east, then come back through a fresh login.
		command(t, w, "ryan", "go e")

		msg, err := w.OnLoginSuccess(ctx, "ryan")
		require.NoError(t, err)
		assert.Contains(t, msg.Lines, "Northeast Corner")
	})
}

func TestWorld_Movement(t *testing.T) {
	ctx := context.Background()
	w := game.NewWorld()
	_, err := w.OnLoginSuccess(ctx, "ryan")
	require.NoError(t, err)

	t.Run("go with direction", func(t *testing.T) {
		msg := command(t, w, "ryan", "go east")
		assert.Contains(t, msg.Lines, "Northeast Corner")
		assert.Equal(t, "ur", msg.Changes["room"])
	})

	t.Run("bare direction word", func(t *testing.T) {
		msg := command(t, w, "ryan", "s")
		assert.Contains(t, msg.Lines, "Southeast Corner")
	})

	t.Run("g abbreviation", func(t *testing.T) {
		msg := command(t, w, "ryan", "g w")
		assert.Contains(t, msg.Lines, "Southwest Corner")
	})

	t.Run("blocked direction", func(t *testing.T) {
		// Southwest corner has no south exit.
		msg := command(t, w, "ryan", "go south")
		assert.Contains(t, msg.Lines, "You can't go that way.")
		assert.Nil(t, msg.Changes)
	})

	t.Run("go without argument", func(t *testing.T) {
		msg := command(t, w, "ryan", "go")
		assert.Contains(t, msg.Lines, "Go where?")
	})

	t.Run("go with nonsense argument", func(t *testing.T) {
		msg := command(t, w, "ryan", "go sideways")
		require.NotEmpty(t, msg.Lines)
		assert.Contains(t, msg.Lines[0], "not a direction")
	})
}

func TestWorld_Commands(t *testing.T) {
	ctx := context.Background()
	w := game.NewWorld()
	_, err := w.OnLoginSuccess(ctx, "ryan")
	require.NoError(t, err)

	t.Run("look", func(t *testing.T) {
		msg := command(t, w, "ryan", "look")
		assert.Contains(t, msg.Lines, "Northwest Corner")
		assert.Contains(t, msg.Lines, "Exits: e, s")
	})

	t.Run("help", func(t *testing.T) {
		msg := command(t, w, "ryan", "help")
		assert.NotEmpty(t, msg.Lines)
		assert.False(t, msg.Bye())
	})

	t.Run("bye terminates", func(t *testing.T) {
		msg := command(t, w, "ryan", "bye")
		assert.True(t, msg.Bye())
	})

	t.Run("logout terminates", func(t *testing.T) {
		msg := command(t, w, "ryan", "logout")
		assert.True(t, msg.Bye())
	})

	t.Run("unknown command", func(t *testing.T) {
		msg := command(t, w, "ryan", "dance")
		assert.Contains(t, msg.Lines, "Huh?")
		assert.False(t, msg.Bye())
	})

	t.Run("empty command", func(t *testing.T) {
		msg := command(t, w, "ryan", "   ")
		assert.Contains(t, msg.Lines, "Huh?")
	})
}

func TestWorld_OnCommand_UnknownPlayer(t *testing.T) {
	w := game.NewWorld()
	_, err := w.OnCommand(context.Background(), "ghost", &proto.Request{Cmd: "look"})
	assert.Error(t, err)
}
