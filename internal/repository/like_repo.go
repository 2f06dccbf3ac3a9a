package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/wandermatch/internal/db"
)

// LikeRepository provides data access for like edges.
// It encapsulates all queries related to likes between users.
type LikeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new repository bound to the given DB connection.
func NewLikeRepository(database *gorm.DB) *LikeRepository {
	return &LikeRepository{db: database}
}

// WithTx returns a repository bound to tx.
func (r *LikeRepository) WithTx(tx *gorm.DB) *LikeRepository {
	return &LikeRepository{db: tx}
}

// Create inserts liker -> liked if absent.
//
// Behavior:
//   - Composite PK (liker_id, liked_id) guarantees a single row per ordered pair.
//   - A repeated like is ignored and the existing edge is returned with created=false.
//
// Example:
//
//	repo.Create(ctx, "anu", "biju", now) // anu liked biju
func (r *LikeRepository) Create(
	ctx context.Context,
	likerID, likedID string,
	at time.Time,
) (*db.LikeEdge, bool, error) {
	edge := db.LikeEdge{LikerID: likerID, LikedID: likedID, CreatedAt: at}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&edge)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected > 0 {
		return &edge, true, nil
	}

	var existing db.LikeEdge
	if err := r.db.WithContext(ctx).
		Where("liker_id = ? AND liked_id = ?", likerID, likedID).
		Take(&existing).Error; err != nil {
		return nil, false, err
	}
	return &existing, false, nil
}

// Delete removes the like. Missing edges are not an error.
func (r *LikeRepository) Delete(ctx context.Context, likerID, likedID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("liker_id = ? AND liked_id = ?", likerID, likedID).
		Delete(&db.LikeEdge{})
	return res.RowsAffected > 0, res.Error
}

// HasLiked checks whether liker has liked liked.
//
// Behavior:
//   - Single PK lookup; used for the reciprocal check in match detection.
//
// Example:
//
//	repo.HasLiked(ctx, "biju", "anu") // -> true if biju liked anu
func (r *LikeRepository) HasLiked(ctx context.Context, likerID, likedID string) (bool, error) {
	var edge db.LikeEdge
	err := r.db.WithContext(ctx).
		Select("liker_id").
		Where("liker_id = ? AND liked_id = ?", likerID, likedID).
		Take(&edge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

// ListLiked returns the ids userID has liked.
func (r *LikeRepository) ListLiked(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).
		Model(&db.LikeEdge{}).
		Where("liker_id = ?", userID).
		Pluck("liked_id", &ids).Error
	return ids, err
}

// ListLikedBy returns the ids that liked userID.
func (r *LikeRepository) ListLikedBy(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).
		Model(&db.LikeEdge{}).
		Where("liked_id = ?", userID).
		Pluck("liker_id", &ids).Error
	return ids, err
}

// CountLikedBy returns how many users liked userID.
func (r *LikeRepository) CountLikedBy(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&db.LikeEdge{}).Where("liked_id = ?", userID).Count(&n).Error
	return n, err
}
