// Package events carries match notifications over watermill.
package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/oggyb/wandermatch/internal/metrics"
)

// TopicMatches receives every MatchEvent.
const TopicMatches = "social.matches"

const (
	MatchCreated = "match.created"
	MatchRemoved = "match.removed"
)

// MatchEvent is the payload published when a match appears or disappears.
type MatchEvent struct {
	Type       string    `json:"type"`
	User1ID    string    `json:"user1_id"`
	User2ID    string    `json:"user2_id"`
	RoomID     string    `json:"room_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewPubSub builds the in-process broker used by the server.
func NewPubSub(log *slog.Logger) *gochannel.GoChannel {
	if log == nil {
		log = slog.Default()
	}
	return gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewSlogLogger(log),
	)
}

// NewMatchMessage encodes ev as a watermill message.
func NewMatchMessage(ev MatchEvent) (*message.Message, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("type", ev.Type)
	return msg, nil
}

// DecodeMatch parses a message produced by NewMatchMessage.
func DecodeMatch(msg *message.Message) (MatchEvent, error) {
	var ev MatchEvent
	err := json.Unmarshal(msg.Payload, &ev)
	return ev, err
}

// ConsumeMatches logs and counts match events until ctx ends.
func ConsumeMatches(ctx context.Context, sub message.Subscriber, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	messages, err := sub.Subscribe(ctx, TopicMatches)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			ev, err := DecodeMatch(msg)
			if err != nil {
				log.Error("failed to decode match event", "err", err, "uuid", msg.UUID)
				msg.Ack() // malformed payloads are never retried
				continue
			}
			metrics.MatchEvents.WithLabelValues(ev.Type).Inc()
			log.Info("match event", "type", ev.Type, "user1", ev.User1ID, "user2", ev.User2ID, "room", ev.RoomID)
			msg.Ack()
		}
	}()
	return nil
}
