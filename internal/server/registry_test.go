// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TADA Contributors

package server_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cminter/TADA/internal/server"
)

func TestRegistry_TryAcquire(t *testing.T) {
	r := server.NewRegistry()

	assert.True(t, r.TryAcquire("ryan"))
	assert.False(t, r.TryAcquire("ryan"), "second claim on the same ID must fail")
	assert.True(t, r.TryAcquire("alice"), "other IDs are unaffected")
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_Release(t *testing.T) {
	r := server.NewRegistry()

	r.TryAcquire("ryan")
	r.Release("ryan")
	assert.True(t, r.TryAcquire("ryan"), "released ID can be claimed again")

	// Releasing an unheld ID is a no-op.
	r.Release("ghost")
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_ConcurrentAcquire(t *testing.T) {
	r := server.NewRegistry()

	const attempts = 50
	var wins atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if r.TryAcquire("ryan") {
				wins.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load(), "exactly one goroutine may hold the ID")
	assert.Equal(t, 1, r.Len())
}
