// Package ratelimit implements a per-key token bucket limiter. Tokens refill
// continuously rather than per fixed window, so a client cannot double its
// budget by straddling a window boundary.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type bucket struct {
	tokens     float64
	lastRefill time.Time
}

// Limiter admits or denies operations per key based on a continuously
// refilling token budget. Rate and capacity are fixed at construction.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket

	rate     float64 // tokens per second
	capacity float64

	now func() time.Time
}

// New creates a limiter allowing requestsPerSecond sustained with bursts of
// up to burst requests per key.
func New(requestsPerSecond, burst int) *Limiter {
	return &Limiter{
		buckets:  make(map[string]*bucket),
		rate:     float64(requestsPerSecond),
		capacity: float64(burst),
		now:      time.Now,
	}
}

// Allow reports whether one operation for key may proceed, debiting a token
// when it does. A bucket is lazily created at full capacity on first use.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		logrus.Debugf("[RATELIMIT] creating bucket for %s", key)
		b = &bucket{tokens: l.capacity, lastRefill: now}
		l.buckets[key] = b
	}

	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed > 0 {
		b.tokens += elapsed * l.rate
		if b.tokens > l.capacity {
			b.tokens = l.capacity
		}
	}
	b.lastRefill = now

	if b.tokens >= 1.0 {
		b.tokens--
		return true
	}
	logrus.Debugf("[RATELIMIT] denied %s, %.2f tokens left", key, b.tokens)
	return false
}

// Len returns the number of tracked buckets.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// ReapIdle removes buckets that have not been touched for olderThan and
// returns how many were dropped. An idle bucket is fully refilled anyway, so
// removing it does not change admission decisions.
func (l *Limiter) ReapIdle(olderThan time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, b := range l.buckets {
		if now.Sub(b.lastRefill) > olderThan {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

// StartReaper periodically drops idle buckets so the bucket map does not grow
// without bound. Meant to be called once by the composition root.
func (l *Limiter) StartReaper(ctx context.Context, every, idleAfter time.Duration) {
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := l.ReapIdle(idleAfter); n > 0 {
					logrus.Debugf("[RATELIMIT] reaped %d idle buckets", n)
				}
			}
		}
	}()
}
