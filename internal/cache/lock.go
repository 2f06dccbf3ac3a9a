package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockTimeout is returned when a pair lock could not be acquired in time.
var ErrLockTimeout = errors.New("pair lock: timed out waiting for lock")

// releaseScript deletes the key only if it still holds our token, so an
// expired holder never frees someone else's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// PairLocker serializes work on an unordered user pair across processes
// using SET NX PX.
type PairLocker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
}

// NewPairLocker builds a locker. ttl bounds how long a crashed holder blocks
// the pair; wait bounds how long Acquire retries.
func NewPairLocker(c *RedisCache, ttl, wait time.Duration) *PairLocker {
	return &PairLocker{client: c.Client, ttl: ttl, wait: wait, retry: 15 * time.Millisecond}
}

// KeyForPair generates the lock key for {a,b}; callers pass canonical order.
func KeyForPair(a, b string) string {
	return fmt.Sprintf("lock:pair:%s:%s", a, b)
}

// Acquire blocks until the lock for key is held, the wait budget is spent
// or ctx ends. The returned func releases the lock.
func (l *PairLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				// release on a detached context so a cancelled request still unlocks
				rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
				defer cancel()
				_ = releaseScript.Run(rctx, l.client, []string{key}, token).Err()
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}
}
