package health

import (
	"context"
	"sync"
	"time"
)

// CachedChecker reuses the last probe result for TTL, so each readiness request
// does not turn into an upstream gateway call. Concurrent callers share one probe.
type CachedChecker struct {
	Checker Checker
	// TTL of a probe result. Zero or negative disables caching.
	TTL time.Duration

	mu      sync.Mutex
	checked time.Time
	err     error
}

// NewCachedChecker wraps checker with a result cache.
func NewCachedChecker(checker Checker, ttl time.Duration) *CachedChecker {
	return &CachedChecker{Checker: checker, TTL: ttl}
}

// Ping implements Checker.
func (c *CachedChecker) Ping(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if c.TTL > 0 && !c.checked.IsZero() && now.Sub(c.checked) < c.TTL {
		return c.err
	}
	err := c.Checker.Ping(ctx)
	// A probe cut short by the caller says nothing about the gateway.
	if err != nil && ctx.Err() != nil {
		return err
	}
	c.checked, c.err = now, err
	return err
}
