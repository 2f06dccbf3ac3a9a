package social

import (
	"context"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/oggyb/wandermatch/internal/db"
	svcErr "github.com/oggyb/wandermatch/internal/errors"
	"github.com/oggyb/wandermatch/internal/metrics"
	"github.com/oggyb/wandermatch/internal/utils/pagination"
)

// Append adds a text message from senderID to roomID.
//
// Behavior:
//   - Unknown room → ErrRoomNotFound.
//   - Sender must be a participant; content must be non-blank and within
//     MaxMessageLen runes.
//   - With RequireFollow, a non-romantic room only accepts messages from a
//     sender who follows the other participant.
//   - The message insert and the room's last_message/last_message_time
//     update commit together.
func (e *Engine) Append(ctx context.Context, roomID, senderID, content string) (msg *db.ChatMessage, err error) {
	defer func() { e.observe("append", err) }()

	if strings.TrimSpace(content) == "" {
		return nil, svcErr.Invalid("message content must not be empty")
	}
	if e.opts.MaxMessageLen > 0 && utf8.RuneCountInString(content) > e.opts.MaxMessageLen {
		return nil, svcErr.Invalid("message longer than %d characters", e.opts.MaxMessageLen)
	}

	room, err := e.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(senderID) {
		return nil, svcErr.Invalid("user %q is not a participant of room %s", senderID, roomID)
	}
	if e.opts.RequireFollow && !room.IsRomantic {
		follows, err := e.follows.Exists(ctx, senderID, room.Other(senderID))
		if err != nil {
			return nil, svcErr.Storage(err)
		}
		if !follows {
			return nil, svcErr.Invalid("you can only send messages to people you follow")
		}
	}
	if !e.limiter.Allow(senderID) {
		return nil, svcErr.ErrRateLimited
	}

	sender := senderID
	return e.appendMessage(ctx, room.ID, &sender, content, db.MessageTypeText)
}

// AppendSystem adds a system message (no sender) to roomID. The
// milestone notifier writes its message through the same path inside its
// claim transaction.
func (e *Engine) AppendSystem(ctx context.Context, roomID, content string) (*db.ChatMessage, error) {
	room, err := e.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return e.appendMessage(ctx, room.ID, nil, content, db.MessageTypeSystem)
}

func (e *Engine) appendMessage(ctx context.Context, roomID string, senderID *string, content, kind string) (*db.ChatMessage, error) {
	var msg *db.ChatMessage
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		msg, err = e.appendMessageTx(ctx, tx, roomID, senderID, content, kind)
		return err
	})
	if err != nil {
		return nil, svcErr.Storage(err)
	}
	e.afterAppend(ctx, msg)
	return msg, nil
}

// appendMessageTx inserts the message and the room's last_message preview
// through tx. The caller runs afterAppend once tx has committed.
func (e *Engine) appendMessageTx(ctx context.Context, tx *gorm.DB, roomID string, senderID *string, content, kind string) (*db.ChatMessage, error) {
	msg := &db.ChatMessage{
		ChatRoomID:  roomID,
		SenderID:    senderID,
		Content:     content,
		MessageType: kind,
		CreatedAt:   e.now(),
	}
	if err := e.messages.WithTx(tx).Create(ctx, msg); err != nil {
		return nil, err
	}
	if err := e.rooms.WithTx(tx).TouchLastMessage(ctx, roomID, content, msg.CreatedAt); err != nil {
		return nil, err
	}
	return msg, nil
}

// afterAppend runs once a message is committed.
func (e *Engine) afterAppend(ctx context.Context, msg *db.ChatMessage) {
	metrics.MessagesAppended.WithLabelValues(msg.MessageType).Inc()
	if err := e.feed.Publish(ctx, msg); err != nil {
		e.log.Warn("failed to publish chat message", "room", msg.ChatRoomID, "message", msg.ID, "err", err)
	}
}

// List returns every message of roomID in (created_at, id) order, after
// delivering the twenty-day milestone if it is due.
func (e *Engine) List(ctx context.Context, roomID string) ([]db.ChatMessage, error) {
	msgs, _, err := e.ListPage(ctx, roomID, nil, 0)
	return msgs, err
}

// ListPage is List with cursor pagination. limit <= 0 returns everything.
func (e *Engine) ListPage(ctx context.Context, roomID string, pageToken *string, limit int) (msgs []db.ChatMessage, next *string, err error) {
	defer func() { e.observe("list_messages", err) }()

	if _, err := e.GetRoom(ctx, roomID); err != nil {
		return nil, nil, err
	}
	if _, err := e.checkMilestone(ctx, roomID, "read"); err != nil {
		return nil, nil, err
	}

	msgs, next, err = e.messages.ListByRoom(ctx, roomID, pageToken, limit)
	if err != nil {
		if svcErr.Is(err, pagination.ErrInvalidToken) {
			return nil, nil, svcErr.Invalid("invalid page token")
		}
		return nil, nil, svcErr.Storage(err)
	}
	return msgs, next, nil
}

// DeleteMessage lets a sender remove one of their own text messages.
func (e *Engine) DeleteMessage(ctx context.Context, messageID uint64, requesterID string) (err error) {
	defer func() { e.observe("delete_message", err) }()

	msg, err := e.messages.FindByID(ctx, messageID)
	if err != nil {
		if svcErr.Is(err, gorm.ErrRecordNotFound) {
			return svcErr.NotFound("message %d", messageID)
		}
		return svcErr.Storage(err)
	}
	if msg.SenderID == nil {
		return svcErr.Invalid("system messages cannot be deleted")
	}
	if *msg.SenderID != requesterID {
		return svcErr.Invalid("only the sender can delete a message")
	}
	if err := e.messages.Delete(ctx, messageID); err != nil {
		return svcErr.Storage(err)
	}
	return nil
}

// Subscribe streams messages appended to roomID after the call. Only
// participants may subscribe.
func (e *Engine) Subscribe(ctx context.Context, roomID, userID string) (<-chan db.ChatMessage, func(), error) {
	room, err := e.GetRoom(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}
	if !room.HasParticipant(userID) {
		return nil, nil, svcErr.Invalid("user %q is not a participant of room %s", userID, roomID)
	}
	ch, stop, err := e.feed.Subscribe(ctx, roomID)
	if err != nil {
		return nil, nil, svcErr.Storage(err)
	}
	return ch, stop, nil
}
