package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/oggyb/wandermatch/internal/config"
)

// StatsTTL is how long a cached stats snapshot lives.
const StatsTTL = time.Hour

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

// UserStats is the cached social counter snapshot of one user.
type UserStats struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
	Likes     int64 `json:"likes"`
}

// KeyForStats generates Redis key for a user's stats snapshot
func (c *RedisCache) KeyForStats(userID string) string {
	return fmt.Sprintf("stats:%s", userID)
}

// KeyForStatsVersion is the counter bumped each time userID's stats are invalidated.
func (c *RedisCache) KeyForStatsVersion(userID string) string {
	return fmt.Sprintf("stats:ver:%s", userID)
}

// GetStats returns the cached snapshot; ok=false on cache miss.
// Reads never extend the TTL, so a snapshot is at most StatsTTL old.
func (c *RedisCache) GetStats(ctx context.Context, userID string) (UserStats, bool, error) {
	val, err := c.Client.Get(ctx, c.KeyForStats(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return UserStats{}, false, nil // cache miss
	} else if err != nil {
		return UserStats{}, false, err
	}
	var s UserStats
	if err := json.Unmarshal(val, &s); err != nil {
		return UserStats{}, false, nil // treat corrupt entries as a miss
	}
	return s, true, nil
}

// StatsVersion returns userID's invalidation counter. Read it before
// counting and pass it to SetStats.
func (c *RedisCache) StatsVersion(ctx context.Context, userID string) (int64, error) {
	v, err := c.Client.Get(ctx, c.KeyForStatsVersion(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// SetStats stores a snapshot counted at version ver with a fresh TTL.
//
// Behavior:
//   - The version key is WATCHed; if an invalidation bumped it since ver was
//     read, the snapshot is stale and is not written (stored=false).
//   - A concurrent bump between the check and EXEC aborts the transaction,
//     which is also reported as stored=false.
func (c *RedisCache) SetStats(ctx context.Context, userID string, s UserStats, ver int64) (bool, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return false, err
	}
	verKey := c.KeyForStatsVersion(userID)

	stored := false
	err = c.Client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, verKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != ver {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.KeyForStats(userID), payload, StatsTTL)
			return nil
		})
		stored = err == nil
		return err
	}, verKey)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	return stored, err
}

// InvalidateStats drops the snapshots of every given user and bumps their
// versions so snapshots counted before this call are never stored.
func (c *RedisCache) InvalidateStats(ctx context.Context, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}
	_, err := c.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range userIDs {
			pipe.Del(ctx, c.KeyForStats(id))
			pipe.Incr(ctx, c.KeyForStatsVersion(id))
		}
		return nil
	})
	return err
}
