package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/goccy/go-json"

	"github.com/oggyb/wandermatch/internal/db"
)

// RedisFeed pushes appended chat messages over Redis pub/sub, one channel
// per room, so every engine instance can serve live subscribers.
type RedisFeed struct {
	cache *RedisCache
}

func NewRedisFeed(c *RedisCache) *RedisFeed {
	return &RedisFeed{cache: c}
}

// KeyForRoomChannel generates the pub/sub channel name of a room.
func KeyForRoomChannel(roomID string) string {
	return fmt.Sprintf("chat:room:%s", roomID)
}

// Publish announces msg to the room's subscribers.
func (f *RedisFeed) Publish(ctx context.Context, msg *db.ChatMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return f.cache.Client.Publish(ctx, KeyForRoomChannel(msg.ChatRoomID), payload).Err()
}

// Subscribe streams messages published to roomID until ctx ends or the
// returned stop func is called. The subscription is confirmed before
// Subscribe returns, so nothing published afterwards is missed.
func (f *RedisFeed) Subscribe(ctx context.Context, roomID string) (<-chan db.ChatMessage, func(), error) {
	sub := f.cache.Client.Subscribe(ctx, KeyForRoomChannel(roomID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, err
	}

	out := make(chan db.ChatMessage, 16)
	done := make(chan struct{})
	go func() {
		defer close(out)
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case m, ok := <-ch:
				if !ok {
					return
				}
				var msg db.ChatMessage
				if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
					continue
				}
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				case <-done:
					return
				}
			}
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(done)
			_ = sub.Close()
		})
	}
	return out, stop, nil
}
