package social

import (
	"context"
	"time"

	"github.com/oggyb/wandermatch/internal/db"
	"github.com/oggyb/wandermatch/internal/repository"
)

// PollingFeed implements Feed by reading the message log periodically.
// It needs no broker, at the price of up to one interval of latency.
type PollingFeed struct {
	messages *repository.MessageRepository
	interval time.Duration
	batch    int
}

func NewPollingFeed(messages *repository.MessageRepository, interval time.Duration) *PollingFeed {
	return &PollingFeed{messages: messages, interval: interval, batch: 100}
}

// Publish is a no-op: pollers read the log itself.
func (f *PollingFeed) Publish(context.Context, *db.ChatMessage) error { return nil }

// Subscribe streams messages appended after the call.
func (f *PollingFeed) Subscribe(ctx context.Context, roomID string) (<-chan db.ChatMessage, func(), error) {
	last, err := f.messages.LastID(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	out := make(chan db.ChatMessage, 16)
	go func() {
		defer close(out)
		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			msgs, err := f.messages.ListAfter(ctx, roomID, last, f.batch)
			if err != nil {
				continue // transient; retried next tick
			}
			for _, m := range msgs {
				select {
				case out <- m:
					last = m.ID
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, cancel, nil
}
