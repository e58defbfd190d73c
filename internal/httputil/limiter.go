// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"sync"
	"time"
)

// Limiter enforces a minimum interval between consecutive operations.
// The arXiv client uses it for the 3 s courtesy spacing between API
// requests; the notifier uses it between chat sends.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

// NewLimiter returns a Limiter with the given minimum interval. A zero or
// negative interval disables waiting.
func NewLimiter(interval time.Duration) *Limiter {
	return &Limiter{interval: interval}
}

// Wait blocks until the interval since the previous call has elapsed. The
// first call returns immediately. Concurrent callers are serialized at
// interval spacing. Returns ctx.Err() if the context ends first.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.interval <= 0 {
		return nil
	}

	l.mu.Lock()
	now := time.Now()
	wait := l.next.Sub(now)
	if wait < 0 {
		wait = 0
	}
	// Claim the next slot before sleeping so concurrent callers stack up
	// behind each other rather than waking together.
	l.next = now.Add(wait + l.interval)
	l.mu.Unlock()

	if wait == 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}
