package web

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// defaultBackoff is used when a 429 response carries no Retry-After.
const defaultBackoff = 30 * time.Second

// hostLimit is the throttling state of one host.
type hostLimit struct {
	limiter *rate.Limiter
	retryAt time.Time
}

// RateLimiter throttles outbound page requests per host. Each host gets its
// own token bucket and its own backoff window after it answers 429, so one
// slow source never holds up the others.
type RateLimiter struct {
	mu    sync.Mutex
	limit rate.Limit
	hosts map[string]*hostLimit
}

// NewRateLimiter creates a limiter allowing requestsPerSecond sustained
// requests to each host. Non-positive values disable throttling.
func NewRateLimiter(requestsPerSecond float64) *RateLimiter {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &RateLimiter{
		limit: limit,
		hosts: make(map[string]*hostLimit),
	}
}

// host returns the state for host, creating it on first use. Callers hold mu.
func (r *RateLimiter) host(host string) *hostLimit {
	h, ok := r.hosts[host]
	if !ok {
		h = &hostLimit{limiter: rate.NewLimiter(r.limit, 1)}
		r.hosts[host] = h
	}
	return h
}

// Wait blocks until a request to host can be made without exceeding its
// rate limit, sitting out any backoff set by RecordRateLimitError.
func (r *RateLimiter) Wait(ctx context.Context, host string) error {
	r.mu.Lock()
	h := r.host(host)
	retryAt := h.retryAt
	r.mu.Unlock()

	if wait := time.Until(retryAt); wait > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	return h.limiter.Wait(ctx)
}

// RecordRateLimitError starts a backoff window for host after a 429.
func (r *RateLimiter) RecordRateLimitError(host string, retryAfter time.Duration) {
	if retryAfter <= 0 {
		retryAfter = defaultBackoff
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.host(host).retryAt = time.Now().Add(retryAfter)
}
