package social

import (
	"context"

	"github.com/oggyb/wandermatch/internal/db"
)

// SetOnlineStatus records a user's presence. The new state shows up in
// room listings of the user's chat partners.
func (e *Engine) SetOnlineStatus(ctx context.Context, userID string, online bool) (u *db.User, err error) {
	defer func() { e.observe("set_online", err) }()
	return e.identity.SetOnline(ctx, userID, online)
}

// GetUser returns a user's profile from the identity store.
func (e *Engine) GetUser(ctx context.Context, userID string) (*db.User, error) {
	return e.identity.Get(ctx, userID)
}
