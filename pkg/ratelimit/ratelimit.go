// Package ratelimit spaces out calls to external services with a fixed delay.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Lock serializes callers and lets one of them through every wait period.
type Lock interface {
	Lock(ctx context.Context) func()
}

type lock struct {
	mu      sync.Mutex
	limiter *rate.Limiter
}

// New returns a lock that waits d between consecutive acquisitions.
// A zero duration disables the delay.
func New(d time.Duration) Lock {
	limit := rate.Inf
	if d > 0 {
		limit = rate.Every(d)
	}
	return &lock{limiter: rate.NewLimiter(limit, 1)}
}

// Lock blocks until the delay since the previous call has elapsed and returns
// the unlock function. If ctx is done the wait is aborted but the returned
// function must still be called.
func (l *lock) Lock(ctx context.Context) func() {
	l.mu.Lock()
	_ = l.limiter.Wait(ctx)
	return l.mu.Unlock
}
