package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/wandermatch/internal/db"
)

// MatchRepository stores materialized mutual likes keyed by the canonical pair.
type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// WithTx returns a repository bound to tx.
func (r *MatchRepository) WithTx(tx *gorm.DB) *MatchRepository {
	return &MatchRepository{db: tx}
}

// CreateIfAbsent inserts the match for {a,b}; a concurrent or earlier insert
// wins and is returned with created=false.
func (r *MatchRepository) CreateIfAbsent(ctx context.Context, a, b string, at time.Time) (*db.MatchRecord, bool, error) {
	u1, u2 := CanonicalPair(a, b)
	rec := db.MatchRecord{User1ID: u1, User2ID: u2, CreatedAt: at}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rec)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected > 0 {
		return &rec, true, nil
	}

	var existing db.MatchRecord
	if err := latest(r.db.WithContext(ctx)).
		Where("user1_id = ? AND user2_id = ?", u1, u2).
		Take(&existing).Error; err != nil {
		return nil, false, err
	}
	return &existing, false, nil
}

// Find returns the match for {a,b} or gorm.ErrRecordNotFound.
func (r *MatchRepository) Find(ctx context.Context, a, b string) (*db.MatchRecord, error) {
	u1, u2 := CanonicalPair(a, b)
	var rec db.MatchRecord
	if err := r.db.WithContext(ctx).
		Where("user1_id = ? AND user2_id = ?", u1, u2).
		Take(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// Delete removes the match for {a,b}. Missing matches are not an error.
func (r *MatchRepository) Delete(ctx context.Context, a, b string) (bool, error) {
	u1, u2 := CanonicalPair(a, b)
	res := r.db.WithContext(ctx).
		Where("user1_id = ? AND user2_id = ?", u1, u2).
		Delete(&db.MatchRecord{})
	return res.RowsAffected > 0, res.Error
}

// ListForUser returns every match userID takes part in, newest first.
func (r *MatchRepository) ListForUser(ctx context.Context, userID string) ([]db.MatchRecord, error) {
	var recs []db.MatchRecord
	err := r.db.WithContext(ctx).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&recs).Error
	return recs, err
}
