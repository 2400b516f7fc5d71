package redis

import (
	"context"
	"time"
)

// FixedWindowAllow counts a hit against scope and reports whether the
// counter is still within limit for the current window.
func (c *Client) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	if err := c.ready(); err != nil {
		return false, 0, err
	}
	k := c.RateLimitKey(scope)
	count, err := c.cmd.Incr(ctx, k).Result()
	if err != nil {
		return false, 0, err
	}
	if window > 0 {
		if err := c.armWindow(ctx, k, count, window); err != nil {
			return false, count, err
		}
	}
	return count <= limit, count, nil
}

// armWindow sets the expiry on the first hit, and repairs counters that
// lost their TTL because a previous EXPIRE never landed.
func (c *Client) armWindow(ctx context.Context, k string, count int64, window time.Duration) error {
	if count > 1 {
		ttl, err := c.cmd.TTL(ctx, k).Result()
		if err != nil || ttl != -1 {
			return err
		}
	}
	return c.cmd.Expire(ctx, k, window).Err()
}
