package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/wandermatch/internal/cache"
	"github.com/oggyb/wandermatch/internal/config"
	"github.com/oggyb/wandermatch/internal/db"
)

func setupCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()
	c := cache.NewRedisCache(cfg)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestStatsCacheRoundTripAndInvalidate(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	_, ok, err := c.GetStats(ctx, "anu")
	require.NoError(t, err)
	assert.False(t, ok)

	ver, err := c.StatsVersion(ctx, "anu")
	require.NoError(t, err)
	stored, err := c.SetStats(ctx, "anu", cache.UserStats{Followers: 3, Following: 1, Likes: 7}, ver)
	require.NoError(t, err)
	assert.True(t, stored)
	assert.Equal(t, cache.StatsTTL, mr.TTL(c.KeyForStats("anu")))

	s, ok, err := c.GetStats(ctx, "anu")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(7), s.Likes)

	require.NoError(t, c.InvalidateStats(ctx, "anu", "biju"))
	_, ok, err = c.GetStats(ctx, "anu")
	require.NoError(t, err)
	assert.False(t, ok)

	ver, err = c.StatsVersion(ctx, "biju")
	require.NoError(t, err)
	assert.Equal(t, int64(1), ver)
}

func TestStatsSnapshotCountedBeforeInvalidationIsDropped(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	ver, err := c.StatsVersion(ctx, "biju")
	require.NoError(t, err)

	// a follow lands between the count and the write
	require.NoError(t, c.InvalidateStats(ctx, "biju"))

	stored, err := c.SetStats(ctx, "biju", cache.UserStats{Followers: 0}, ver)
	require.NoError(t, err)
	assert.False(t, stored)
	assert.False(t, mr.Exists(c.KeyForStats("biju")))

	ver, err = c.StatsVersion(ctx, "biju")
	require.NoError(t, err)
	stored, err = c.SetStats(ctx, "biju", cache.UserStats{Followers: 1}, ver)
	require.NoError(t, err)
	assert.True(t, stored)
}

func TestStatsReadsDoNotExtendTTL(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	_, err := c.SetStats(ctx, "anu", cache.UserStats{Likes: 2}, 0)
	require.NoError(t, err)

	mr.FastForward(40 * time.Minute)
	_, ok, err := c.GetStats(ctx, "anu")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 20*time.Minute, mr.TTL(c.KeyForStats("anu")))

	mr.FastForward(21 * time.Minute)
	_, ok, err = c.GetStats(ctx, "anu")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPairLockExcludesSecondHolder(t *testing.T) {
	ctx := context.Background()
	c, _ := setupCache(t)
	locker := cache.NewPairLocker(c, time.Second, 50*time.Millisecond)
	key := cache.KeyForPair("anu", "biju")

	release, err := locker.Acquire(ctx, key)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, key)
	assert.ErrorIs(t, err, cache.ErrLockTimeout)

	release()

	release2, err := locker.Acquire(ctx, key)
	require.NoError(t, err)
	release2()
}

func TestPairLockExpiresForCrashedHolder(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)
	locker := cache.NewPairLocker(c, time.Second, 50*time.Millisecond)
	key := cache.KeyForPair("anu", "biju")

	_, err := locker.Acquire(ctx, key)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	release, err := locker.Acquire(ctx, key)
	require.NoError(t, err)
	release()
}

func TestRedisFeedDeliversPublishedMessages(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, _ := setupCache(t)
	feed := cache.NewRedisFeed(c)

	ch, stop, err := feed.Subscribe(ctx, "r1")
	require.NoError(t, err)
	defer stop()

	sender := "anu"
	require.NoError(t, feed.Publish(ctx, &db.ChatMessage{
		ID: 1, ChatRoomID: "r1", SenderID: &sender, Content: "Namaskaram", MessageType: db.MessageTypeText,
	}))
	// other rooms are not delivered
	require.NoError(t, feed.Publish(ctx, &db.ChatMessage{ID: 2, ChatRoomID: "r2", Content: "x"}))

	select {
	case msg := <-ch:
		assert.Equal(t, "Namaskaram", msg.Content)
		assert.Equal(t, uint64(1), msg.ID)
	case <-ctx.Done():
		t.Fatal("no message delivered")
	}
}
