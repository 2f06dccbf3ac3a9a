package social_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oggyb/wandermatch/internal/cache"
	"github.com/oggyb/wandermatch/internal/config"
	svcErr "github.com/oggyb/wandermatch/internal/errors"
	"github.com/oggyb/wandermatch/internal/social"
)

func TestFollowIsIdempotent(t *testing.T) {
	ctx := context.Background()
	env := setup(t, nil)

	res, err := env.engine.Follow(ctx, "anu", "biju")
	require.NoError(t, err)
	assert.True(t, res.Created)

	res, err = env.engine.Follow(ctx, "anu", "biju")
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, "anu", res.Edge.FollowerID)

	followers, err := env.engine.ListFollowers(ctx, "biju")
	require.NoError(t, err)
	assert.Equal(t, []string{"anu"}, followers)

	ok, err := env.engine.IsFollowing(ctx, "anu", "biju")
	require.NoError(t, err)
	assert.True(t, ok)

	// one direction only
	ok, err = env.engine.IsFollowing(ctx, "biju", "anu")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFollowRejectsSelfAndUnknownUsers(t *testing.T) {
	ctx := context.Background()
	env := setup(t, nil)

	_, err := env.engine.Follow(ctx, "anu", "anu")
	assert.ErrorIs(t, err, svcErr.ErrInvalidOperation)

	_, err = env.engine.Follow(ctx, "", "anu")
	assert.ErrorIs(t, err, svcErr.ErrInvalidOperation)

	_, err = env.engine.Follow(ctx, "anu", "ghost")
	assert.ErrorIs(t, err, svcErr.ErrNotFound)

	_, err = env.engine.ListFollowing(ctx, "ghost")
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}

func TestUnfollowAbsentEdgeIsNoop(t *testing.T) {
	ctx := context.Background()
	env := setup(t, nil)

	require.NoError(t, env.engine.Unfollow(ctx, "anu", "biju"))

	_, err := env.engine.Follow(ctx, "anu", "biju")
	require.NoError(t, err)
	require.NoError(t, env.engine.Unfollow(ctx, "anu", "biju"))

	following, err := env.engine.ListFollowing(ctx, "anu")
	require.NoError(t, err)
	assert.Empty(t, following)
}

func TestLikeIsIdempotentAndListed(t *testing.T) {
	ctx := context.Background()
	env := setup(t, nil)

	res, err := env.engine.Like(ctx, "anu", "biju")
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Nil(t, res.Match)
	assert.Nil(t, res.Room)

	res, err = env.engine.Like(ctx, "anu", "biju")
	require.NoError(t, err)
	assert.False(t, res.Created)

	_, err = env.engine.Like(ctx, "anu", "chitra")
	require.NoError(t, err)

	liked, err := env.engine.ListLiked(ctx, "anu")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"biju", "chitra"}, liked)

	likedBy, err := env.engine.ListLikedBy(ctx, "biju")
	require.NoError(t, err)
	assert.Equal(t, []string{"anu"}, likedBy)

	ok, err := env.engine.IsLiked(ctx, "anu", "biju")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = env.engine.Like(ctx, "dev", "dev")
	assert.ErrorIs(t, err, svcErr.ErrInvalidOperation)
}

func newStatsCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()
	rc := cache.NewRedisCache(cfg)
	t.Cleanup(func() { _ = rc.Close() })
	return rc, mr
}

func TestUserStatsUseCacheAndInvalidate(t *testing.T) {
	ctx := context.Background()
	rc, mr := newStatsCache(t)
	env := setup(t, func(d *social.Deps, _ *social.Options) { d.Cache = rc })

	_, err := env.engine.Follow(ctx, "anu", "biju")
	require.NoError(t, err)
	_, err = env.engine.Like(ctx, "chitra", "biju")
	require.NoError(t, err)

	s, err := env.engine.UserStats(ctx, "biju")
	require.NoError(t, err)
	assert.Equal(t, social.Stats{Followers: 1, Following: 0, Likes: 1}, *s)
	assert.True(t, mr.Exists(rc.KeyForStats("biju")))

	// a new follower drops the snapshot
	_, err = env.engine.Follow(ctx, "dev", "biju")
	require.NoError(t, err)
	assert.False(t, mr.Exists(rc.KeyForStats("biju")))

	s, err = env.engine.UserStats(ctx, "biju")
	require.NoError(t, err)
	assert.Equal(t, int64(2), s.Followers)
}

// A follow that commits while UserStats is counting must not be hidden by
// the snapshot that count produces.
func TestUserStatsSkipsSnapshotRacingAFollow(t *testing.T) {
	ctx := context.Background()
	rc, mr := newStatsCache(t)
	env := setup(t, func(d *social.Deps, _ *social.Options) { d.Cache = rc })

	var followMidCount atomic.Bool
	err := env.db.Callback().Query().After("gorm:query").Register("test:follow_mid_count", func(tx *gorm.DB) {
		if tx.Statement.Table == "like_edges" && followMidCount.CompareAndSwap(true, false) {
			_, err := env.engine.Follow(ctx, "dev", "biju")
			assert.NoError(t, err)
		}
	})
	require.NoError(t, err)

	followMidCount.Store(true)
	s, err := env.engine.UserStats(ctx, "biju")
	require.NoError(t, err)
	assert.False(t, followMidCount.Load(), "follow did not run during the count")
	assert.Equal(t, int64(0), s.Followers)
	assert.False(t, mr.Exists(rc.KeyForStats("biju")))

	s, err = env.engine.UserStats(ctx, "biju")
	require.NoError(t, err)
	assert.Equal(t, int64(1), s.Followers)
	assert.True(t, mr.Exists(rc.KeyForStats("biju")))
}

func TestSetOnlineStatus(t *testing.T) {
	ctx := context.Background()
	env := setup(t, nil)

	before, err := env.engine.GetUser(ctx, "anu")
	require.NoError(t, err)
	assert.False(t, before.IsOnline)

	u, err := env.engine.SetOnlineStatus(ctx, "anu", true)
	require.NoError(t, err)
	assert.True(t, u.IsOnline)
	require.NotNil(t, u.LastSeen)
	assert.WithinDuration(t, time.Now(), *u.LastSeen, time.Minute)

	// cached profile is refreshed
	after, err := env.engine.GetUser(ctx, "anu")
	require.NoError(t, err)
	assert.True(t, after.IsOnline)

	_, err = env.engine.SetOnlineStatus(ctx, "ghost", true)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}
