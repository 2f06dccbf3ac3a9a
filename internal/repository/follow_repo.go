package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/wandermatch/internal/db"
)

// FollowRepository provides data access for follow edges.
type FollowRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new repository bound to the given DB connection.
func NewFollowRepository(database *gorm.DB) *FollowRepository {
	return &FollowRepository{db: database}
}

// Create inserts follower -> followee if it does not exist yet.
//
// Behavior:
//   - Duplicate inserts hit the composite PK and are ignored (ON CONFLICT DO NOTHING).
//   - The stored edge is returned in both cases; created reports whether this
//     call inserted it.
func (r *FollowRepository) Create(
	ctx context.Context,
	followerID, followeeID string,
	at time.Time,
) (*db.FollowEdge, bool, error) {
	edge := db.FollowEdge{FollowerID: followerID, FolloweeID: followeeID, CreatedAt: at}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&edge)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected > 0 {
		return &edge, true, nil
	}

	var existing db.FollowEdge
	if err := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Take(&existing).Error; err != nil {
		return nil, false, err
	}
	return &existing, false, nil
}

// Delete removes the edge. Deleting a missing edge is not an error.
func (r *FollowRepository) Delete(ctx context.Context, followerID, followeeID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&db.FollowEdge{})
	return res.RowsAffected > 0, res.Error
}

// Exists reports whether follower follows followee.
func (r *FollowRepository) Exists(ctx context.Context, followerID, followeeID string) (bool, error) {
	var edge db.FollowEdge
	err := r.db.WithContext(ctx).
		Select("follower_id").
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Take(&edge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

// ListFollowers returns the ids following userID.
func (r *FollowRepository) ListFollowers(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).
		Model(&db.FollowEdge{}).
		Where("followee_id = ?", userID).
		Pluck("follower_id", &ids).Error
	return ids, err
}

// ListFollowing returns the ids userID follows.
func (r *FollowRepository) ListFollowing(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).
		Model(&db.FollowEdge{}).
		Where("follower_id = ?", userID).
		Pluck("followee_id", &ids).Error
	return ids, err
}

// CountFollowers returns how many users follow userID.
func (r *FollowRepository) CountFollowers(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&db.FollowEdge{}).Where("followee_id = ?", userID).Count(&n).Error
	return n, err
}

// CountFollowing returns how many users userID follows.
func (r *FollowRepository) CountFollowing(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&db.FollowEdge{}).Where("follower_id = ?", userID).Count(&n).Error
	return n, err
}
