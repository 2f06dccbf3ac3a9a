package social

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oggyb/wandermatch/internal/db"
	svcErr "github.com/oggyb/wandermatch/internal/errors"
	"github.com/oggyb/wandermatch/internal/repository"
)

// RoomView is a room annotated for the room list of one user.
type RoomView struct {
	Room db.ChatRoom
	// Other is the other participant's profile; zero-valued (except ID)
	// when the identity store no longer knows them.
	Other db.User
}

// GetOrCreateRoom returns the single room of {userA, userB}.
//
// Behavior:
//   - The pair is canonicalized before lookup and insert, so argument order
//     never yields a second room.
//   - romanticHint upgrades an existing non-romantic room in place;
//     romantic_started_by/at are only set when still empty.
//   - A concurrent creator that loses the insert race fetches the winner.
func (e *Engine) GetOrCreateRoom(ctx context.Context, userA, userB string, romanticHint bool) (room *db.ChatRoom, created bool, err error) {
	defer func() { e.observe("get_or_create_room", err) }()

	if err := validatePair(userA, userB, "open a chat room with"); err != nil {
		return nil, false, err
	}
	if err := e.identity.Require(ctx, userA, userB); err != nil {
		return nil, false, err
	}
	return e.ensureRoom(ctx, e.rooms, userA, userB, romanticHint)
}

// ensureRoom finds or creates the pair's room through rooms, which may be
// bound to the caller's transaction.
func (e *Engine) ensureRoom(ctx context.Context, rooms *repository.RoomRepository, userA, userB string, romantic bool) (*db.ChatRoom, bool, error) {
	room, err := rooms.FindByPair(ctx, userA, userB)
	switch {
	case err == nil:
		room, err = e.upgradeRoom(ctx, rooms, room, userA, romantic)
		return room, false, err
	case !svcErr.Is(err, gorm.ErrRecordNotFound):
		return nil, false, svcErr.Storage(err)
	}

	now := e.now()
	room = &db.ChatRoom{
		ID:             uuid.NewString(),
		Participant1ID: userA,
		Participant2ID: userB,
		IsRomantic:     romantic,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if romantic {
		by := userA
		room.RomanticStartedBy = &by
		room.RomanticStartedAt = &now
	}

	created, err := rooms.CreateIfAbsent(ctx, room)
	if err != nil {
		return nil, false, svcErr.Storage(err)
	}
	if created {
		e.log.Debug("chat room created", "room", room.ID, "romantic", romantic)
		return room, true, nil
	}

	// lost the race: fetch the winner and apply the hint to it
	winner, err := rooms.FindByPairForShare(ctx, userA, userB)
	if err != nil {
		return nil, false, svcErr.Storage(err)
	}
	winner, err = e.upgradeRoom(ctx, rooms, winner, userA, romantic)
	return winner, false, err
}

func (e *Engine) upgradeRoom(ctx context.Context, rooms *repository.RoomRepository, room *db.ChatRoom, startedBy string, romantic bool) (*db.ChatRoom, error) {
	if !romantic || room.IsRomantic {
		return room, nil
	}
	upgraded, err := rooms.MarkRomantic(ctx, room.ID, startedBy, e.now())
	if err != nil {
		return nil, svcErr.Storage(err)
	}
	if upgraded {
		e.log.Debug("chat room marked romantic", "room", room.ID, "started_by", startedBy)
	}
	fresh, err := rooms.FindByID(ctx, room.ID)
	if err != nil {
		return nil, svcErr.Storage(err)
	}
	return fresh, nil
}

// GetRoom loads a room or fails with ErrRoomNotFound.
func (e *Engine) GetRoom(ctx context.Context, roomID string) (*db.ChatRoom, error) {
	room, err := e.rooms.FindByID(ctx, roomID)
	if err != nil {
		if svcErr.Is(err, gorm.ErrRecordNotFound) {
			return nil, svcErr.ErrRoomNotFound
		}
		return nil, svcErr.Storage(err)
	}
	return room, nil
}

// ListRoomsForUser returns userID's rooms with the other participant's
// profile and the last-message preview, most recent activity first.
func (e *Engine) ListRoomsForUser(ctx context.Context, userID string) ([]RoomView, error) {
	if err := e.identity.Require(ctx, userID); err != nil {
		return nil, err
	}
	rooms, err := e.rooms.ListForUser(ctx, userID)
	if err != nil {
		return nil, svcErr.Storage(err)
	}

	others := make([]string, 0, len(rooms))
	for i := range rooms {
		others = append(others, rooms[i].Other(userID))
	}
	profiles, err := e.identity.Lookup(ctx, others)
	if err != nil {
		return nil, err
	}

	out := make([]RoomView, 0, len(rooms))
	for _, r := range rooms {
		otherID := r.Other(userID)
		other, ok := profiles[otherID]
		if !ok {
			other = db.User{ID: otherID}
		}
		out = append(out, RoomView{Room: r, Other: other})
	}
	return out, nil
}
