// Package identity is the engine's read-through view of the external
// identity store. Profiles live in the users table; lookups are cached
// in-process for a short TTL.
package identity

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"gorm.io/gorm"

	"github.com/oggyb/wandermatch/internal/db"
	svcErr "github.com/oggyb/wandermatch/internal/errors"
	"github.com/oggyb/wandermatch/internal/repository"
)

// Store resolves user ids for the engine.
type Store struct {
	users *repository.UserRepository
	cache *gocache.Cache
	now   func() time.Time
}

// NewStore wraps the users table. ttl <= 0 disables caching.
func NewStore(database *gorm.DB, ttl time.Duration) *Store {
	s := &Store{
		users: repository.NewUserRepository(database),
		now:   func() time.Time { return time.Now().UTC() },
	}
	if ttl > 0 {
		s.cache = gocache.New(ttl, 2*ttl)
	}
	return s
}

// Get returns the profile for id or an ErrNotFound naming it.
func (s *Store) Get(ctx context.Context, id string) (*db.User, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(id); ok {
			u := v.(db.User)
			return &u, nil
		}
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if svcErr.Is(err, gorm.ErrRecordNotFound) {
			return nil, svcErr.NotFound("user %q", id)
		}
		return nil, svcErr.Storage(err)
	}
	if s.cache != nil {
		s.cache.Set(id, *u, gocache.DefaultExpiration)
	}
	return u, nil
}

// Exists reports whether id resolves to a user.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.Get(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case svcErr.Is(err, svcErr.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Require fails with ErrNotFound on the first id that does not resolve.
func (s *Store) Require(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Lookup resolves many ids at once; unknown ids are absent from the map.
func (s *Store) Lookup(ctx context.Context, ids []string) (map[string]db.User, error) {
	out := make(map[string]db.User, len(ids))
	var missing []string
	for _, id := range ids {
		if s.cache != nil {
			if v, ok := s.cache.Get(id); ok {
				out[id] = v.(db.User)
				continue
			}
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return out, nil
	}
	found, err := s.users.FindByIDs(ctx, missing)
	if err != nil {
		return nil, svcErr.Storage(err)
	}
	for id, u := range found {
		out[id] = u
		if s.cache != nil {
			s.cache.Set(id, u, gocache.DefaultExpiration)
		}
	}
	return out, nil
}

// SetOnline records presence and drops the cached profile.
func (s *Store) SetOnline(ctx context.Context, id string, online bool) (*db.User, error) {
	if err := s.users.SetOnline(ctx, id, online, s.now()); err != nil {
		if svcErr.Is(err, gorm.ErrRecordNotFound) {
			return nil, svcErr.NotFound("user %q", id)
		}
		return nil, svcErr.Storage(err)
	}
	if s.cache != nil {
		s.cache.Delete(id)
	}
	return s.Get(ctx, id)
}
