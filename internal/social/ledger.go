package social

import (
	"context"

	"gorm.io/gorm"

	"github.com/oggyb/wandermatch/internal/cache"
	"github.com/oggyb/wandermatch/internal/db"
	svcErr "github.com/oggyb/wandermatch/internal/errors"
)

// FollowResult is the stored edge; Created is false when it already existed.
type FollowResult struct {
	Edge    db.FollowEdge
	Created bool
}

// LikeResult carries the like edge and, when the pair is mutual, the match
// and the (romantic) room between them.
type LikeResult struct {
	Edge    db.LikeEdge
	Created bool
	Match   *db.MatchRecord
	Room    *db.ChatRoom
}

// Stats are the social counters of one user.
type Stats = cache.UserStats

// Follow records follower -> followee.
//
// Behavior:
//   - Self-follow and empty ids fail with ErrInvalidOperation.
//   - Unknown identities fail with ErrNotFound.
//   - Idempotent: following twice returns the existing edge, Created=false.
func (e *Engine) Follow(ctx context.Context, followerID, followeeID string) (res *FollowResult, err error) {
	defer func() { e.observe("follow", err) }()

	if err := validatePair(followerID, followeeID, "follow"); err != nil {
		return nil, err
	}
	if err := e.identity.Require(ctx, followerID, followeeID); err != nil {
		return nil, err
	}

	edge, created, err := e.follows.Create(ctx, followerID, followeeID, e.now())
	if err != nil {
		return nil, svcErr.Storage(err)
	}
	if created {
		e.invalidateStats(ctx, followerID, followeeID)
		e.log.Debug("follow created", "follower", followerID, "followee", followeeID)
	}
	return &FollowResult{Edge: *edge, Created: created}, nil
}

// Unfollow removes follower -> followee. Absent edges are a no-op.
func (e *Engine) Unfollow(ctx context.Context, followerID, followeeID string) (err error) {
	defer func() { e.observe("unfollow", err) }()

	if err := validatePair(followerID, followeeID, "unfollow"); err != nil {
		return err
	}
	if err := e.identity.Require(ctx, followerID, followeeID); err != nil {
		return err
	}

	removed, err := e.follows.Delete(ctx, followerID, followeeID)
	if err != nil {
		return svcErr.Storage(err)
	}
	if removed {
		e.invalidateStats(ctx, followerID, followeeID)
	}
	return nil
}

// Like records liker -> liked and runs match detection before returning.
// The edge insert, the MatchRecord and the romantic room commit in one
// transaction under the pair lock, so a failure leaves nothing behind and a
// concurrent like/unlike on the same pair sees a consistent result.
func (e *Engine) Like(ctx context.Context, likerID, likedID string) (res *LikeResult, err error) {
	defer func() { e.observe("like", err) }()

	if err := validatePair(likerID, likedID, "like"); err != nil {
		return nil, err
	}
	if err := e.identity.Require(ctx, likerID, likedID); err != nil {
		return nil, err
	}

	release, err := e.lockPair(ctx, likerID, likedID)
	if err != nil {
		return nil, err
	}
	defer release()

	var change matchChange
	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		edge, created, err := e.likes.WithTx(tx).Create(ctx, likerID, likedID, e.now())
		if err != nil {
			return svcErr.Storage(err)
		}
		res = &LikeResult{Edge: *edge, Created: created}
		change, err = e.reconcileMatch(ctx, tx, likerID, likedID)
		return err
	})
	if err != nil {
		return nil, svcErr.Storage(err)
	}

	res.Match, res.Room = change.match, change.room
	e.announceMatch(change, likerID, likedID)
	if res.Created {
		e.invalidateStats(ctx, likedID)
	}
	return res, nil
}

// Unlike removes liker -> liked and the pair's MatchRecord in one
// transaction. The chat room keeps its romantic flag.
func (e *Engine) Unlike(ctx context.Context, likerID, likedID string) (err error) {
	defer func() { e.observe("unlike", err) }()

	if err := validatePair(likerID, likedID, "unlike"); err != nil {
		return err
	}
	if err := e.identity.Require(ctx, likerID, likedID); err != nil {
		return err
	}

	release, err := e.lockPair(ctx, likerID, likedID)
	if err != nil {
		return err
	}
	defer release()

	var (
		removed bool
		change  matchChange
	)
	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if removed, err = e.likes.WithTx(tx).Delete(ctx, likerID, likedID); err != nil {
			return svcErr.Storage(err)
		}
		change, err = e.reconcileMatch(ctx, tx, likerID, likedID)
		return err
	})
	if err != nil {
		return svcErr.Storage(err)
	}

	e.announceMatch(change, likerID, likedID)
	if removed {
		e.invalidateStats(ctx, likedID)
	}
	return nil
}

// IsFollowing reports whether a follows b.
func (e *Engine) IsFollowing(ctx context.Context, a, b string) (bool, error) {
	if err := e.identity.Require(ctx, a, b); err != nil {
		return false, err
	}
	ok, err := e.follows.Exists(ctx, a, b)
	return ok, svcErr.Storage(err)
}

// IsLiked reports whether a likes b.
func (e *Engine) IsLiked(ctx context.Context, a, b string) (bool, error) {
	if err := e.identity.Require(ctx, a, b); err != nil {
		return false, err
	}
	ok, err := e.likes.HasLiked(ctx, a, b)
	return ok, svcErr.Storage(err)
}

// ListFollowers returns the ids following userID (unordered).
func (e *Engine) ListFollowers(ctx context.Context, userID string) ([]string, error) {
	return e.listIDs(ctx, userID, e.follows.ListFollowers)
}

// ListFollowing returns the ids userID follows (unordered).
func (e *Engine) ListFollowing(ctx context.Context, userID string) ([]string, error) {
	return e.listIDs(ctx, userID, e.follows.ListFollowing)
}

// ListLiked returns the ids userID likes (unordered).
func (e *Engine) ListLiked(ctx context.Context, userID string) ([]string, error) {
	return e.listIDs(ctx, userID, e.likes.ListLiked)
}

// ListLikedBy returns the ids that like userID (unordered).
func (e *Engine) ListLikedBy(ctx context.Context, userID string) ([]string, error) {
	return e.listIDs(ctx, userID, e.likes.ListLikedBy)
}

func (e *Engine) listIDs(
	ctx context.Context,
	userID string,
	list func(context.Context, string) ([]string, error),
) ([]string, error) {
	if err := e.identity.Require(ctx, userID); err != nil {
		return nil, err
	}
	ids, err := list(ctx, userID)
	if err != nil {
		return nil, svcErr.Storage(err)
	}
	return ids, nil
}

// UserStats returns follower/following/likes-received counts.
// Cache-first strategy:
//  1. Attempts to read the stats:<id> snapshot from Redis.
//  2. On miss reads the invalidation version, then counts in the DB.
//  3. Stores the snapshot with a 1h TTL unless a follow/like touching the
//     user invalidated it while counting.
func (e *Engine) UserStats(ctx context.Context, userID string) (*Stats, error) {
	if err := e.identity.Require(ctx, userID); err != nil {
		return nil, err
	}

	cached := e.cache != nil
	var ver int64
	if cached {
		s, ok, err := e.cache.GetStats(ctx, userID)
		if err == nil && ok {
			return &s, nil
		}
		if err == nil {
			ver, err = e.cache.StatsVersion(ctx, userID)
		}
		if err != nil {
			e.log.Warn("stats cache read failed", "user", userID, "err", err)
			cached = false
		}
	}

	var s Stats
	var err error
	if s.Followers, err = e.follows.CountFollowers(ctx, userID); err != nil {
		return nil, svcErr.Storage(err)
	}
	if s.Following, err = e.follows.CountFollowing(ctx, userID); err != nil {
		return nil, svcErr.Storage(err)
	}
	if s.Likes, err = e.likes.CountLikedBy(ctx, userID); err != nil {
		return nil, svcErr.Storage(err)
	}

	if cached {
		stored, err := e.cache.SetStats(ctx, userID, s, ver)
		switch {
		case err != nil:
			e.log.Warn("stats cache write failed", "user", userID, "err", err)
		case !stored:
			e.log.Debug("stale stats snapshot not cached", "user", userID)
		}
	}
	return &s, nil
}

func (e *Engine) invalidateStats(ctx context.Context, userIDs ...string) {
	if e.cache == nil {
		return
	}
	if err := e.cache.InvalidateStats(ctx, userIDs...); err != nil {
		e.log.Warn("stats cache invalidation failed", "users", userIDs, "err", err)
	}
}
