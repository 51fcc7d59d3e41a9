// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TADA Contributors

package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cminter/TADA/internal/auth"
)

func TestLoginHistory_Banning(t *testing.T) {
	t.Run("fresh record is not banned", func(t *testing.T) {
		h := auth.NewLoginHistory("10.0.0.7")
		assert.False(t, h.IsBanned())
	})

	t.Run("banned at the failure limit", func(t *testing.T) {
		h := auth.NewLoginHistory("10.0.0.7")
		for i := 0; i < auth.FailLimit-1; i++ {
			assert.False(t, h.RecordBadPassword("ryan"))
		}
		assert.True(t, h.RecordBadPassword("ryan"))
		assert.True(t, h.IsBanned())
	})

	t.Run("unknown names and bad passwords share the counter", func(t *testing.T) {
		h := auth.NewLoginHistory("10.0.0.7")
		for i := 0; i < 5; i++ {
			h.RecordNoSuchUser("ghost")
		}
		for i := 0; i < 4; i++ {
			assert.False(t, h.RecordBadPassword("ryan"))
		}
		assert.True(t, h.RecordNoSuchUser("phantom"))

		assert.Equal(t, 6, h.NoUserAttempts["ghost"]+h.NoUserAttempts["phantom"])
		assert.Equal(t, 4, h.BadPasswordAttempts["ryan"])
	})
}

func TestLoginHistory_RecordSuccess(t *testing.T) {
	h := auth.NewLoginHistory("10.0.0.7")
	h.RecordNoSuchUser("ghost")
	h.RecordBadPassword("ryan")
	h.RecordBadPassword("alice")
	require.Equal(t, 3, h.FailCount)

	h.RecordSuccess("ryan")

	assert.Equal(t, 0, h.FailCount)
	assert.False(t, h.IsBanned())
	assert.NotContains(t, h.BadPasswordAttempts, "ryan")

	// A valid login clears only that user's slate. Evidence of probing
	// other names from the same address is kept.
	assert.Equal(t, 1, h.BadPasswordAttempts["alice"])
	assert.Equal(t, 1, h.NoUserAttempts["ghost"])
}

func TestLoginHistory_RecordRefusal(t *testing.T) {
	h := auth.NewLoginHistory("10.0.0.7")
	for i := 0; i < auth.FailLimit; i++ {
		h.RecordNoSuchUser("ghost")
	}
	require.True(t, h.IsBanned())

	h.RecordRefusal()
	h.RecordRefusal()

	assert.Equal(t, 2, h.BanCount)
	assert.True(t, h.IsBanned(), "refusals never clear a ban")
}
