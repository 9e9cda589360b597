package ratelimiter

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter wraps golang.org/x/time/rate.Limiter with token-bucket semantics:
// a sustained requests-per-second rate plus a burst allowance.
type Limiter struct {
	limiter *rate.Limiter
	burst   int
	rps     int
}

// New creates a limiter from requests-per-second and burst.
func New(rps int, burst int) *Limiter {
	if rps <= 0 {
		rps = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		burst:   burst,
		rps:     rps,
	}
}

// Wait blocks until a token is available or ctx is canceled.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// TryAcquire attempts to acquire a token without blocking.
func (l *Limiter) TryAcquire() bool {
	return l.limiter.Allow()
}

// Stats returns approximate available tokens, capacity and refill interval.
func (l *Limiter) Stats() (available, capacity int, interval time.Duration) {
	available = int(l.limiter.Tokens())
	if available < 0 {
		available = 0
	}
	return available, l.burst, time.Second / time.Duration(l.rps)
}
