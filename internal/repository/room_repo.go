package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/wandermatch/internal/db"
)

// RoomRepository provides data access for chat rooms.
type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(database *gorm.DB) *RoomRepository {
	return &RoomRepository{db: database}
}

// WithTx returns a repository bound to tx.
func (r *RoomRepository) WithTx(tx *gorm.DB) *RoomRepository {
	return &RoomRepository{db: tx}
}

// FindByID returns gorm.ErrRecordNotFound when the room is missing.
func (r *RoomRepository) FindByID(ctx context.Context, id string) (*db.ChatRoom, error) {
	var room db.ChatRoom
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// FindByPair looks the room up by its canonical participant pair.
func (r *RoomRepository) FindByPair(ctx context.Context, a, b string) (*db.ChatRoom, error) {
	p1, p2 := CanonicalPair(a, b)
	var room db.ChatRoom
	if err := r.db.WithContext(ctx).
		Where("participant1_id = ? AND participant2_id = ?", p1, p2).
		Take(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// FindByPairForShare is FindByPair reading the latest committed row, for
// fetching the winner of an insert race inside a transaction.
func (r *RoomRepository) FindByPairForShare(ctx context.Context, a, b string) (*db.ChatRoom, error) {
	p1, p2 := CanonicalPair(a, b)
	var room db.ChatRoom
	if err := latest(r.db.WithContext(ctx)).
		Where("participant1_id = ? AND participant2_id = ?", p1, p2).
		Take(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// CreateIfAbsent inserts room unless a row for the same canonical pair
// already exists. Participants are canonicalized in place.
//
// Behavior:
//   - idx_room_pair turns a concurrent duplicate into a no-op insert.
//   - created=false tells the caller to fetch the winner with FindByPairForShare.
func (r *RoomRepository) CreateIfAbsent(ctx context.Context, room *db.ChatRoom) (bool, error) {
	room.Participant1ID, room.Participant2ID = CanonicalPair(room.Participant1ID, room.Participant2ID)
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(room)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkRomantic flips is_romantic false→true. Starter fields are only filled
// when still NULL. Returns false when the room was already romantic.
func (r *RoomRepository) MarkRomantic(ctx context.Context, id, startedBy string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&db.ChatRoom{}).
		Where("id = ? AND is_romantic = ?", id, false).
		Updates(map[string]any{
			"is_romantic":         true,
			"romantic_started_by": gorm.Expr("COALESCE(romantic_started_by, ?)", startedBy),
			"romantic_started_at": gorm.Expr("COALESCE(romantic_started_at, ?)", at),
		})
	return res.RowsAffected > 0, res.Error
}

// TouchLastMessage stores the preview fields shown in room lists.
func (r *RoomRepository) TouchLastMessage(ctx context.Context, id, content string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&db.ChatRoom{}).
		Where("id = ?", id).
		Updates(map[string]any{"last_message": content, "last_message_time": at}).Error
}

// ListForUser returns the rooms userID participates in, most recent
// activity first; rooms without messages come last.
func (r *RoomRepository) ListForUser(ctx context.Context, userID string) ([]db.ChatRoom, error) {
	var rooms []db.ChatRoom
	err := r.db.WithContext(ctx).
		Where("participant1_id = ? OR participant2_id = ?", userID, userID).
		Order("last_message_time IS NULL, last_message_time DESC, created_at DESC").
		Find(&rooms).Error
	return rooms, err
}

// ClaimMilestone atomically marks the twenty-day message as sent when the
// room is romantic, not yet marked and romantic since at or before cutoff.
// Exactly one concurrent caller gets true.
func (r *RoomRepository) ClaimMilestone(ctx context.Context, id string, cutoff time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&db.ChatRoom{}).
		Where("id = ? AND is_romantic = ? AND twenty_day_message_sent = ? AND romantic_started_at <= ?",
			id, true, false, cutoff).
		Update("twenty_day_message_sent", true)
	return res.RowsAffected > 0, res.Error
}

// ListMilestoneDue returns ids of romantic rooms whose milestone is due.
// Served by idx_room_milestone.
func (r *RoomRepository) ListMilestoneDue(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).
		Model(&db.ChatRoom{}).
		Where("is_romantic = ? AND twenty_day_message_sent = ? AND romantic_started_at <= ?", true, false, cutoff).
		Order("romantic_started_at ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}
