package client

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket limiting outbound requests per second.
// The bucket holds one second worth of tokens, and never less than one token,
// so rates below 1/s still admit a request every 1/rate seconds.
type RateLimiter struct {
	mu     sync.Mutex
	rate   float64 // requests per second
	burst  float64 // bucket capacity, at least 1
	tokens float64 // current available tokens
	last   time.Time
}

// NewRateLimiter returns nil for a non-positive rate, which disables limiting.
func NewRateLimiter(requestsPerSecond float64) *RateLimiter {
	if requestsPerSecond <= 0 {
		return nil
	}
	burst := max(requestsPerSecond, 1)
	return &RateLimiter{rate: requestsPerSecond, burst: burst, tokens: burst, last: time.Now()}
}

// Wait blocks until a token is available or ctx is done.
func (l *RateLimiter) Wait(ctx context.Context) error {
	if l == nil || l.rate <= 0 {
		return nil
	}
	for {
		l.mu.Lock()
		now := time.Now()
		if elapsed := now.Sub(l.last).Seconds(); elapsed > 0 {
			l.tokens += elapsed * l.rate
			if capacity := max(l.burst, 1); l.tokens > capacity {
				l.tokens = capacity
			}
			l.last = now
		}
		if l.tokens >= 1 {
			l.tokens--
			l.mu.Unlock()
			return nil
		}
		wait := time.Duration((1 - l.tokens) / l.rate * float64(time.Second))
		l.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
