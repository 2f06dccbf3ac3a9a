package social

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/wandermatch/internal/db"
	svcErr "github.com/oggyb/wandermatch/internal/errors"
	"github.com/oggyb/wandermatch/internal/metrics"
)

const milestoneText = "%s has been in romantic mode with you for 20 days 💕"

// CheckTwentyDayMilestone delivers the twenty-day system message to roomID
// if it is due and reports whether this call delivered it.
//
// Behavior:
//   - Due means romantic, not yet delivered, and romantic for at least
//     MilestoneAfter.
//   - The sent flag and the system message commit in one transaction, so
//     the message appears at most once even under concurrent callers.
func (e *Engine) CheckTwentyDayMilestone(ctx context.Context, roomID string) (bool, error) {
	return e.checkMilestone(ctx, roomID, "check")
}

func (e *Engine) checkMilestone(ctx context.Context, roomID, trigger string) (bool, error) {
	room, err := e.GetRoom(ctx, roomID)
	if err != nil {
		return false, err
	}
	cutoff := e.now().Add(-e.opts.MilestoneAfter)
	if !milestoneDue(room, cutoff) {
		return false, nil
	}

	text := fmt.Sprintf(milestoneText, e.starterName(ctx, *room.RomanticStartedBy))

	var msg *db.ChatMessage
	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		claimed, err := e.rooms.WithTx(tx).ClaimMilestone(ctx, room.ID, cutoff)
		if err != nil || !claimed {
			return err
		}
		msg, err = e.appendMessageTx(ctx, tx, room.ID, nil, text, db.MessageTypeSystem)
		return err
	})
	if err != nil {
		return false, svcErr.Storage(err)
	}
	if msg == nil {
		return false, nil
	}

	e.afterAppend(ctx, msg)
	metrics.MilestonesDelivered.WithLabelValues(trigger).Inc()
	e.log.Info("twenty-day milestone delivered", "room", room.ID, "trigger", trigger)
	return true, nil
}

func milestoneDue(room *db.ChatRoom, cutoff time.Time) bool {
	return room.IsRomantic &&
		!room.TwentyDayMessageSent &&
		room.RomanticStartedBy != nil &&
		room.RomanticStartedAt != nil &&
		!room.RomanticStartedAt.After(cutoff)
}

// starterName resolves the display name used in the milestone text,
// falling back to the raw id for identities that are gone.
func (e *Engine) starterName(ctx context.Context, userID string) string {
	u, err := e.identity.Get(ctx, userID)
	if err != nil || u.DisplayName == "" {
		if err != nil && !svcErr.Is(err, svcErr.ErrNotFound) {
			e.log.Warn("milestone starter lookup failed", "user", userID, "err", err)
		}
		return userID
	}
	return u.DisplayName
}
