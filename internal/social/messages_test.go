package social_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/wandermatch/internal/db"
	svcErr "github.com/oggyb/wandermatch/internal/errors"
	"github.com/oggyb/wandermatch/internal/social"
)

// openRoom follows both ways and returns a plain room for a and b.
func openRoom(t *testing.T, env *testEnv, a, b string) *db.ChatRoom {
	t.Helper()
	ctx := context.Background()
	_, err := env.engine.Follow(ctx, a, b)
	require.NoError(t, err)
	_, err = env.engine.Follow(ctx, b, a)
	require.NoError(t, err)
	room, _, err := env.engine.GetOrCreateRoom(ctx, a, b, false)
	require.NoError(t, err)
	return room
}

func TestMessagesKeepInsertionOrderOnTiedTimestamps(t *testing.T) {
	ctx := context.Background()
	env := setup(t, nil)
	room := openRoom(t, env, "anu", "biju")

	// the clock never moves: every message shares one created_at
	for i := 0; i < 5; i++ {
		sender := "anu"
		if i%2 == 1 {
			sender = "biju"
		}
		_, err := env.engine.Append(ctx, room.ID, sender, fmt.Sprintf("msg-%d", i))
		require.NoError(t, err)
	}

	msgs, err := env.engine.List(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 5)
	for i, m := range msgs {
		assert.Equal(t, fmt.Sprintf("msg-%d", i), m.Content)
		assert.True(t, m.CreatedAt.Equal(msgs[0].CreatedAt))
	}

	// the same order comes back page by page
	var paged []string
	var token *string
	for {
		page, next, err := env.engine.ListPage(ctx, room.ID, token, 2)
		require.NoError(t, err)
		for _, m := range page {
			paged = append(paged, m.Content)
		}
		if next == nil {
			break
		}
		token = next
	}
	assert.Equal(t, []string{"msg-0", "msg-1", "msg-2", "msg-3", "msg-4"}, paged)
}

func TestAppendUpdatesRoomPreview(t *testing.T) {
	ctx := context.Background()
	env := setup(t, nil)
	room := openRoom(t, env, "anu", "chitra")

	env.clock.Advance(time.Minute)
	msg, err := env.engine.Append(ctx, room.ID, "chitra", "Houseboat at 6?")
	require.NoError(t, err)

	fresh, err := env.engine.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, "Houseboat at 6?", fresh.LastMessage)
	require.NotNil(t, fresh.LastMessageTime)
	assert.True(t, fresh.LastMessageTime.Equal(msg.CreatedAt))
}

func TestAppendRejections(t *testing.T) {
	ctx := context.Background()
	env := setup(t, func(_ *social.Deps, o *social.Options) { o.MaxMessageLen = 10 })
	e := env.engine

	_, err := e.Append(ctx, "no-such-room", "anu", "hi")
	assert.ErrorIs(t, err, svcErr.ErrRoomNotFound)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)

	room, _, err := e.GetOrCreateRoom(ctx, "anu", "biju", false)
	require.NoError(t, err)

	_, err = e.Append(ctx, room.ID, "anu", "hi")
	assert.ErrorIs(t, err, svcErr.ErrInvalidOperation, "anu does not follow biju yet")

	_, err = e.Follow(ctx, "anu", "biju")
	require.NoError(t, err)

	_, err = e.Append(ctx, room.ID, "anu", "hi")
	assert.NoError(t, err)

	_, err = e.Append(ctx, room.ID, "biju", "hi")
	assert.ErrorIs(t, err, svcErr.ErrInvalidOperation, "follow is one-directional")

	_, err = e.Append(ctx, room.ID, "chitra", "hi")
	assert.ErrorIs(t, err, svcErr.ErrInvalidOperation)

	_, err = e.Append(ctx, room.ID, "anu", "   ")
	assert.ErrorIs(t, err, svcErr.ErrInvalidOperation)

	_, err = e.Append(ctx, room.ID, "anu", strings.Repeat("ക", 11))
	assert.ErrorIs(t, err, svcErr.ErrInvalidOperation)
}

func TestAppendRateLimited(t *testing.T) {
	ctx := context.Background()
	env := setup(t, func(_ *social.Deps, o *social.Options) {
		o.SendRate = 0.001
		o.SendBurst = 2
	})
	room := openRoom(t, env, "anu", "dev")

	for i := 0; i < 2; i++ {
		_, err := env.engine.Append(ctx, room.ID, "anu", "hey")
		require.NoError(t, err)
	}
	_, err := env.engine.Append(ctx, room.ID, "anu", "hey")
	assert.ErrorIs(t, err, svcErr.ErrRateLimited)

	// buckets are per sender
	_, err = env.engine.Append(ctx, room.ID, "dev", "hey")
	assert.NoError(t, err)
}

func TestListPageRejectsBadToken(t *testing.T) {
	ctx := context.Background()
	env := setup(t, nil)
	room := openRoom(t, env, "anu", "biju")

	bad := "%%%"
	_, _, err := env.engine.ListPage(ctx, room.ID, &bad, 10)
	assert.ErrorIs(t, err, svcErr.ErrInvalidOperation)

	_, err = env.engine.List(ctx, "no-such-room")
	assert.ErrorIs(t, err, svcErr.ErrRoomNotFound)
}

func TestDeleteMessage(t *testing.T) {
	ctx := context.Background()
	env := setup(t, nil)
	room := openRoom(t, env, "anu", "biju")

	msg, err := env.engine.Append(ctx, room.ID, "anu", "typo")
	require.NoError(t, err)
	sys, err := env.engine.AppendSystem(ctx, room.ID, "welcome")
	require.NoError(t, err)
	assert.Nil(t, sys.SenderID)
	assert.Equal(t, db.MessageTypeSystem, sys.MessageType)

	assert.ErrorIs(t, env.engine.DeleteMessage(ctx, msg.ID, "biju"), svcErr.ErrInvalidOperation)
	assert.ErrorIs(t, env.engine.DeleteMessage(ctx, sys.ID, "anu"), svcErr.ErrInvalidOperation)
	assert.ErrorIs(t, env.engine.DeleteMessage(ctx, 9999, "anu"), svcErr.ErrNotFound)

	require.NoError(t, env.engine.DeleteMessage(ctx, msg.ID, "anu"))
	msgs, err := env.engine.List(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "welcome", msgs[0].Content)
}

func TestSubscribeDeliversNewMessages(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	env := setup(t, nil)
	room := openRoom(t, env, "anu", "biju")

	_, err := env.engine.Append(ctx, room.ID, "anu", "before")
	require.NoError(t, err)

	_, _, err = env.engine.Subscribe(ctx, room.ID, "chitra")
	assert.ErrorIs(t, err, svcErr.ErrInvalidOperation)

	stream, stop, err := env.engine.Subscribe(ctx, room.ID, "biju")
	require.NoError(t, err)
	defer stop()

	_, err = env.engine.Append(ctx, room.ID, "anu", "after")
	require.NoError(t, err)

	select {
	case m := <-stream:
		assert.Equal(t, "after", m.Content)
	case <-ctx.Done():
		t.Fatal("no message on the feed")
	}
}
