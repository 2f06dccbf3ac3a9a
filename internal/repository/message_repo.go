package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/oggyb/wandermatch/internal/db"
	"github.com/oggyb/wandermatch/internal/utils/pagination"
)

// MessageRepository provides data access for chat messages.
type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(database *gorm.DB) *MessageRepository {
	return &MessageRepository{db: database}
}

// WithTx returns a repository bound to tx.
func (r *MessageRepository) WithTx(tx *gorm.DB) *MessageRepository {
	return &MessageRepository{db: tx}
}

// Create appends msg; the auto-increment ID is filled in.
func (r *MessageRepository) Create(ctx context.Context, msg *db.ChatMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// FindByID returns gorm.ErrRecordNotFound when the message is missing.
func (r *MessageRepository) FindByID(ctx context.Context, id uint64) (*db.ChatMessage, error) {
	var m db.ChatMessage
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// Delete removes a message by id.
func (r *MessageRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&db.ChatMessage{}).Error
}

// ListByRoom returns a room's messages ordered by created_at ASC, id ASC.
//
// Behavior:
//   - limit <= 0 returns the whole log and no token.
//   - Otherwise at most limit messages after the cursor are returned, with a
//     next token when more remain.
//
// Example:
//
//	repo.ListByRoom(ctx, roomID, nil, 50) // first 50 messages
func (r *MessageRepository) ListByRoom(
	ctx context.Context,
	roomID string,
	paginationToken *string,
	limit int,
) ([]db.ChatMessage, *string, error) {
	var msgs []db.ChatMessage

	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Where("chat_room_id = ?", roomID).
		Order("created_at ASC, id ASC")

	// apply cursor
	if !cursor.IsZero() {
		ts := cursor.Created()
		query = query.Where(
			"(created_at > ? OR (created_at = ? AND id > ?))",
			ts, ts, cursor.ID,
		)
	}
	if limit > 0 {
		query = query.Limit(limit + 1)
	}

	if err := query.Find(&msgs).Error; err != nil {
		return nil, nil, err
	}

	// pagination: build next cursor if needed
	var nextToken *string
	if limit > 0 && len(msgs) > limit {
		last := msgs[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			ID:          last.ID,
			CreatedUnix: last.CreatedAt.UnixMilli(),
		})
		nextToken = &token
		msgs = msgs[:limit]
	}

	return msgs, nextToken, nil
}

// ListAfter returns messages of roomID with id > afterID in id order.
// Used by the polling feed.
func (r *MessageRepository) ListAfter(ctx context.Context, roomID string, afterID uint64, limit int) ([]db.ChatMessage, error) {
	var msgs []db.ChatMessage
	err := r.db.WithContext(ctx).
		Where("chat_room_id = ? AND id > ?", roomID, afterID).
		Order("id ASC").
		Limit(limit).
		Find(&msgs).Error
	return msgs, err
}

// LastID returns the highest message id in roomID, or 0.
func (r *MessageRepository) LastID(ctx context.Context, roomID string) (uint64, error) {
	row := r.db.WithContext(ctx).
		Model(&db.ChatMessage{}).
		Where("chat_room_id = ?", roomID).
		Select("COALESCE(MAX(id), 0)").
		Row()
	var id uint64
	if err := row.Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
