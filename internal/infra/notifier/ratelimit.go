package notifier

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter wraps a token bucket limiter so webhook services are not
// overwhelmed when a large feed diff produces a burst of notifications.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a limiter allowing requestsPerSecond sustained with
// up to burst immediate requests.
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Allow blocks until a token is available or the context is canceled.
func (r *RateLimiter) Allow(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
