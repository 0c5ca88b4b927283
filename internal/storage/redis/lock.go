package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	lockKeyPrefix = "adventure:lock:character:"

	// DefaultLockTTL is used when a Locker is built with a non-positive TTL.
	DefaultLockTTL = 10 * time.Second

	lockRetry          = 25 * time.Millisecond
	lockReleaseTimeout = 2 * time.Second
)

// releaseScript deletes the lock only while it still carries the caller's token,
// so a holder whose TTL lapsed cannot free someone else's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker serializes work on one character across processes. Each lock is a
// key set with NX and a TTL; the value is a random owner token.
type Locker struct {
	client Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewLocker returns a Locker whose locks expire after ttl.
//
// Precondition: client and logger must be non-nil.
func NewLocker(client Client, ttl time.Duration, logger *zap.Logger) *Locker {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &Locker{client: client, ttl: ttl, logger: logger}
}

func lockKey(id string) string {
	return lockKeyPrefix + id
}

// Acquire blocks until the lock for id is held or ctx is done, polling every
// few milliseconds.
//
// Postcondition: on success the returned release func must be called exactly
// once; on failure the error wraps ctx.Err() or the Redis error.
func (l *Locker) Acquire(ctx context.Context, id string) (func(), error) {
	key := lockKey(id)
	token := uuid.NewString()

	ticker := time.NewTicker(lockRetry)
	defer ticker.Stop()
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("acquiring lock %q: %w", key, ctx.Err())
			}
			return nil, fmt.Errorf("acquiring lock %q: %w", key, err)
		}
		if ok {
			return func() { l.release(key, token) }, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("acquiring lock %q: %w", key, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (l *Locker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), lockReleaseTimeout)
	defer cancel()
	n, err := releaseScript.Run(ctx, l.client, []string{key}, token).Int()
	if err != nil {
		l.logger.Warn("releasing character lock", zap.String("key", key), zap.Error(err))
		return
	}
	if n == 0 {
		l.logger.Warn("character lock expired before release", zap.String("key", key))
	}
}
