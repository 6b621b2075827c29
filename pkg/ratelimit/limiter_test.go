package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(rps, burst int) (*Limiter, *time.Time) {
	l := New(rps, burst)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestLimiter_BurstThenDeny(t *testing.T) {
	l, _ := newTestLimiter(10, 20)

	for i := 0; i < 20; i++ {
		require.True(t, l.Allow("1.2.3.4"), "request %d should be allowed", i+1)
	}
	assert.False(t, l.Allow("1.2.3.4"), "21st request must be denied")
}

func TestLimiter_ContinuousRefill(t *testing.T) {
	l, now := newTestLimiter(10, 20)

	for i := 0; i < 20; i++ {
		require.True(t, l.Allow("1.2.3.4"))
	}
	require.False(t, l.Allow("1.2.3.4"))

	// One simulated second at 10 rps buys exactly 10 more requests.
	*now = now.Add(time.Second)
	for i := 0; i < 10; i++ {
		require.True(t, l.Allow("1.2.3.4"), "refilled request %d should be allowed", i+1)
	}
	assert.False(t, l.Allow("1.2.3.4"))
}

func TestLimiter_RefillIsCappedAtCapacity(t *testing.T) {
	l, now := newTestLimiter(10, 20)

	require.True(t, l.Allow("1.2.3.4"))
	*now = now.Add(time.Hour)

	// Tokens never exceed burst no matter how long the key was idle.
	for i := 0; i < 20; i++ {
		require.True(t, l.Allow("1.2.3.4"))
	}
	assert.False(t, l.Allow("1.2.3.4"))
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(1, 2)

	require.True(t, l.Allow("a"))
	require.True(t, l.Allow("a"))
	require.False(t, l.Allow("a"))

	assert.True(t, l.Allow("b"), "a different key has its own budget")
}

func TestLimiter_ReapIdle(t *testing.T) {
	l, now := newTestLimiter(10, 20)

	l.Allow("stale")
	*now = now.Add(30 * time.Minute)
	l.Allow("active")
	require.Equal(t, 2, l.Len())

	removed := l.ReapIdle(10 * time.Minute)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, l.Len())

	// A reaped key starts over with a full bucket.
	for i := 0; i < 20; i++ {
		require.True(t, l.Allow("stale"))
	}
}

func TestLimiter_ConcurrentSameKey(t *testing.T) {
	l := New(100, 100)

	var wg sync.WaitGroup
	allowed := make(chan bool, 200)
	wg.Add(200)
	for i := 0; i < 200; i++ {
		go func() {
			defer wg.Done()
			allowed <- l.Allow("shared")
		}()
	}
	wg.Wait()
	close(allowed)

	n := 0
	for ok := range allowed {
		if ok {
			n++
		}
	}
	// Real clock: refill during the test can admit a few extra requests,
	// but never fewer than the burst and never the full 200.
	assert.GreaterOrEqual(t, n, 100)
	assert.Less(t, n, 200)
}
