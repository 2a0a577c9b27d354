// Package ratelimit enforces a minimum interval between operations that
// share a key (a provider host, a client IP).
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is satisfied by both the in-process and Redis limiters.
type RateLimiter interface {
	Allow(key string) bool
	Wait(ctx context.Context, key string) error
}

// Limiter is an in-process per-key limiter.
type Limiter struct {
	mu          sync.Mutex
	hosts       map[string]time.Time
	minInterval time.Duration
}

func New(minInterval time.Duration) *Limiter {
	return &Limiter{
		hosts:       make(map[string]time.Time),
		minInterval: minInterval,
	}
}

// Allow reports whether key may proceed now. A rejected call does not
// move the key's window.
func (l *Limiter) Allow(key string) bool {
	if l.minInterval <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if last, ok := l.hosts[key]; ok && now.Sub(last) < l.minInterval {
		return false
	}
	l.hosts[key] = now
	return true
}

// Wait blocks until key may proceed or ctx ends. Concurrent waiters on the
// same key are spaced minInterval apart.
func (l *Limiter) Wait(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if l.minInterval <= 0 {
		return nil
	}

	l.mu.Lock()
	now := time.Now()
	next := now
	if last, ok := l.hosts[key]; ok {
		if earliest := last.Add(l.minInterval); earliest.After(now) {
			next = earliest
		}
	}
	l.hosts[key] = next
	l.mu.Unlock()

	d := next.Sub(now)
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
