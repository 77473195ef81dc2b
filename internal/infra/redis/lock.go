package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"promo-bot/internal/domain"
)

// releaseScript deletes the lock only while it still carries the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisLocker hands out single-attempt leases keyed by name. A lease lapses
// on its own after ttl if the holder dies.
type RedisLocker struct {
	store Store
}

func NewLocker(store Store) *RedisLocker { return &RedisLocker{store: store} }

// TryLock returns domain.ErrLockHeld when another holder owns key.
func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	acquired, err := l.store.PutIfAbsent(ctx, key, token, ttl)
	if err != nil {
		return "", fmt.Errorf("acquire %s: %w", key, err)
	}
	if !acquired {
		return "", domain.ErrLockHeld
	}
	return token, nil
}

func (l *RedisLocker) Unlock(ctx context.Context, key, token string) error {
	if _, err := l.store.Run(ctx, releaseScript, []string{key}, token); err != nil {
		return fmt.Errorf("release %s: %w", key, err)
	}
	return nil
}
