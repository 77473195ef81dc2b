package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// windowScript increments the counter and starts the window on the first hit
// in one round trip, so a crash can never leave a counter without expiry.
var windowScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n`)

// RateLimiter counts hits per key in fixed windows.
type RateLimiter struct {
	store Store
}

func NewRateLimiter(store Store) *RateLimiter { return &RateLimiter{store: store} }

// Allow reports whether the hit stays within limit for the current window.
// A non-positive limit disables limiting.
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 {
		return true, nil
	}
	res, err := r.store.Run(ctx, windowScript, []string{key}, window.Milliseconds())
	if err != nil {
		return false, fmt.Errorf("rate limit %s: %w", key, err)
	}
	n, ok := res.(int64)
	if !ok {
		return false, fmt.Errorf("rate limit %s: unexpected reply %T", key, res)
	}
	return n <= int64(limit), nil
}

// UserCommandKey buckets by user and kind ("cmd" or "cb").
func UserCommandKey(userID int64, kind string) string {
	return fmt.Sprintf("rate_limit:%d:%s", userID, kind)
}
