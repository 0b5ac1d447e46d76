package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name     string
		rps      float64
		burst    int
		calls    int
		wantPass int
	}{
		{name: "burst allows initial requests", rps: 1, burst: 3, calls: 3, wantPass: 3},
		{name: "exceeding burst blocks", rps: 1, burst: 2, calls: 5, wantPass: 2},
		{name: "zero burst is raised to one", rps: 1, burst: 0, calls: 3, wantPass: 1},
		{name: "non-positive rate disables limiting", rps: 0, burst: 1, calls: 10, wantPass: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := New(tt.rps, tt.burst)

			passed := 0
			for i := 0; i < tt.calls; i++ {
				if rl.Allow("auto") {
					passed++
				}
			}

			assert.Equal(t, tt.wantPass, passed)
		})
	}
}

func TestPerMinute(t *testing.T) {
	rl := PerMinute(60, 1)

	assert.True(t, rl.Allow("manual"))
	assert.False(t, rl.Allow("manual"), "one token per second after the burst")
}

func TestKeyedRateLimiter_Wait(t *testing.T) {
	rl := New(10, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	start := time.Now()
	require.NoError(t, rl.Wait(ctx, "auto"))
	assert.Less(t, time.Since(start), 50*time.Millisecond, "first Wait should be immediate")

	start = time.Now()
	require.NoError(t, rl.Wait(ctx, "auto"))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestKeyedRateLimiter_WaitContextCancelled(t *testing.T) {
	rl := New(0.1, 1)
	rl.Allow("auto")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.Error(t, rl.Wait(ctx, "auto"))
}

func TestKeyedRateLimiter_IndependentKeys(t *testing.T) {
	rl := New(1, 1)

	rl.Allow("auto")
	assert.False(t, rl.Allow("auto"), "auto should be exhausted")
	assert.True(t, rl.Allow("manual"), "manual draws from its own bucket")
}
