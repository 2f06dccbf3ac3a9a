package social

import (
	"context"

	"gorm.io/gorm"

	"github.com/oggyb/wandermatch/internal/db"
	svcErr "github.com/oggyb/wandermatch/internal/errors"
	"github.com/oggyb/wandermatch/internal/events"
	"github.com/oggyb/wandermatch/internal/repository"
)

// MatchView is a match as seen from one of its users.
type MatchView struct {
	Match       db.MatchRecord
	OtherUserID string
}

// CheckMutual reports whether a and b like each other.
func (e *Engine) CheckMutual(ctx context.Context, a, b string) (bool, error) {
	if err := validatePair(a, b, "match"); err != nil {
		return false, err
	}
	if err := e.identity.Require(ctx, a, b); err != nil {
		return false, err
	}
	return e.mutual(ctx, e.likes, a, b)
}

func (e *Engine) mutual(ctx context.Context, likes *repository.LikeRepository, a, b string) (bool, error) {
	ab, err := likes.HasLiked(ctx, a, b)
	if err != nil {
		return false, svcErr.Storage(err)
	}
	if !ab {
		return false, nil
	}
	ba, err := likes.HasLiked(ctx, b, a)
	if err != nil {
		return false, svcErr.Storage(err)
	}
	return ba, nil
}

// matchChange is what reconcileMatch did inside the transaction. It is
// announced only after commit.
type matchChange struct {
	match   *db.MatchRecord
	room    *db.ChatRoom
	created bool
	removed bool
}

// reconcileMatch makes the MatchRecord of {actor, other} agree with the
// like edges, using tx for every read and write. Callers hold the pair lock
// and run the like edge mutation in the same tx.
//
// Behavior:
//   - Mutual: create the MatchRecord if absent and create-or-upgrade the
//     pair's room to romantic with actor as the romantic starter.
//   - Not mutual: delete the MatchRecord if present. The room is left alone.
func (e *Engine) reconcileMatch(ctx context.Context, tx *gorm.DB, actorID, otherID string) (matchChange, error) {
	var ch matchChange
	mutual, err := e.mutual(ctx, e.likes.WithTx(tx), actorID, otherID)
	if err != nil {
		return ch, err
	}

	matches := e.matches.WithTx(tx)
	if !mutual {
		ch.removed, err = matches.Delete(ctx, actorID, otherID)
		return ch, svcErr.Storage(err)
	}

	ch.match, ch.created, err = matches.CreateIfAbsent(ctx, actorID, otherID, e.now())
	if err != nil {
		return ch, svcErr.Storage(err)
	}
	ch.room, _, err = e.ensureRoom(ctx, e.rooms.WithTx(tx), actorID, otherID, true)
	return ch, err
}

// announceMatch logs and publishes a committed match change.
func (e *Engine) announceMatch(ch matchChange, actorID, otherID string) {
	switch {
	case ch.created:
		e.log.Info("match created", "user", actorID, "other", otherID, "room", ch.room.ID)
		e.publishMatch(events.MatchCreated, actorID, otherID, ch.room.ID)
	case ch.removed:
		e.log.Info("match removed", "user", actorID, "other", otherID)
		e.publishMatch(events.MatchRemoved, actorID, otherID, "")
	}
}

// ListMatches returns userID's matches, newest first.
func (e *Engine) ListMatches(ctx context.Context, userID string) ([]MatchView, error) {
	if err := e.identity.Require(ctx, userID); err != nil {
		return nil, err
	}
	recs, err := e.matches.ListForUser(ctx, userID)
	if err != nil {
		return nil, svcErr.Storage(err)
	}
	out := make([]MatchView, 0, len(recs))
	for _, m := range recs {
		other := m.User1ID
		if other == userID {
			other = m.User2ID
		}
		out = append(out, MatchView{Match: m, OtherUserID: other})
	}
	return out, nil
}

// publishMatch emits a match event. The match state is already committed,
// so a publish failure is logged, not returned.
func (e *Engine) publishMatch(kind, a, b, roomID string) {
	if e.publisher == nil {
		return
	}
	u1, u2 := repository.CanonicalPair(a, b)
	msg, err := events.NewMatchMessage(events.MatchEvent{
		Type:       kind,
		User1ID:    u1,
		User2ID:    u2,
		RoomID:     roomID,
		OccurredAt: e.now(),
	})
	if err == nil {
		err = e.publisher.Publish(events.TopicMatches, msg)
	}
	if err != nil {
		e.log.Error("failed to publish match event", "type", kind, "user1", u1, "user2", u2, "err", err)
	}
}
