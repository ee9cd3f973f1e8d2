package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/hackgods/clinic-dashboard/internal/poller"
)

// ErrLockNotAcquired is returned when another watcher holds the poll lock.
var ErrLockNotAcquired = poller.ErrLockNotAcquired

type redisPollLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisPollLocker serialises polls of one scope across watchers. The lock lives
// at lock:poll:{scope} and expires after ttl so a crashed holder cannot wedge it.
func NewRedisPollLocker(client *redis.Client, ttl time.Duration) poller.Locker {
	return &redisPollLocker{
		client: client,
		ttl:    ttl,
	}
}

func (l *redisPollLocker) WithLock(ctx context.Context, scope string, fn func(ctx context.Context) error) error {
	key := fmt.Sprintf("lock:poll:%s", scope)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire poll lock: %w", err)
	}
	if !ok {
		return ErrLockNotAcquired
	}

	defer func() {
		// Release with a fresh context so a cancelled poll still frees the key.
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = l.release(releaseCtx, key, token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *redisPollLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release poll lock: %w", err)
	}
	return nil
}
