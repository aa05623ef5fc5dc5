package api

import (
	"context"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

// transientStatuses are the relay answers worth retrying: timeouts, rate
// limiting and gateway failures.
var transientStatuses = []int{408, 429, 500, 502, 503, 504}

// RetryPolicy decides whether a failed relay request is retried and how
// long to back off first.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
	// Jitter spreads each delay uniformly over ±Jitter of its value.
	Jitter float64

	statuses map[int]bool
}

// DefaultRetryPolicy retries transient failures three times, starting at
// one second and doubling up to thirty.
func DefaultRetryPolicy() *RetryPolicy {
	p := &RetryPolicy{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   30 * time.Second,
		Multiplier: 2.0,
		Jitter:     0.2,
	}
	p.SetStatuses(transientStatuses)
	return p
}

// SetStatuses replaces the HTTP statuses that trigger a retry.
func (p *RetryPolicy) SetStatuses(codes []int) {
	p.statuses = make(map[int]bool, len(codes))
	for _, code := range codes {
		p.statuses[code] = true
	}
}

// Retryable reports whether status is one of the retried statuses.
func (p *RetryPolicy) Retryable(status int) bool {
	return p.statuses[status]
}

// ShouldRetry reports whether the request that just failed on attempt
// (zero based) may be sent again. A status of 0 means the request never
// got an answer.
func (p *RetryPolicy) ShouldRetry(attempt, status int) bool {
	if attempt >= p.MaxRetries {
		return false
	}
	return status == 0 || p.Retryable(status)
}

// Backoff returns the pause before the retry following attempt. A
// Retry-After hint raises the pause but never past MaxDelay.
func (p *RetryPolicy) Backoff(attempt int, retryAfter time.Duration) time.Duration {
	d := float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(attempt))
	d = math.Min(d, float64(p.MaxDelay))
	if p.Jitter > 0 {
		d += d * p.Jitter * (2*rand.Float64() - 1)
	}

	delay := time.Duration(d)
	if retryAfter > delay {
		delay = min(retryAfter, p.MaxDelay)
	}
	return delay
}

// sleep pauses for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// parseRetryAfter reads a Retry-After header given in seconds. HTTP dates
// are ignored.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
