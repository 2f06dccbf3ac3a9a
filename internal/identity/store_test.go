package identity_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oggyb/wandermatch/internal/db"
	svcErr "github.com/oggyb/wandermatch/internal/errors"
	"github.com/oggyb/wandermatch/internal/identity"
)

func setupStore(t *testing.T) (*identity.Store, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := database.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.Migrate(database))

	require.NoError(t, database.Create(&[]db.User{
		{ID: "anu", DisplayName: "Anu", Email: "anu@test.com"},
		{ID: "biju", DisplayName: "Biju", Email: "biju@test.com"},
	}).Error)

	return identity.NewStore(database, time.Minute), database
}

func TestGetAndNotFound(t *testing.T) {
	ctx := context.Background()
	store, _ := setupStore(t)

	u, err := store.Get(ctx, "anu")
	require.NoError(t, err)
	assert.Equal(t, "Anu", u.DisplayName)

	_, err = store.Get(ctx, "ghost")
	assert.ErrorIs(t, err, svcErr.ErrNotFound)

	assert.ErrorIs(t, store.Require(ctx, "anu", "ghost"), svcErr.ErrNotFound)
	assert.NoError(t, store.Require(ctx, "anu", "biju"))
}

func TestGetIsCached(t *testing.T) {
	ctx := context.Background()
	store, database := setupStore(t)

	_, err := store.Get(ctx, "anu")
	require.NoError(t, err)

	// change underneath the cache: the cached profile is still served
	require.NoError(t, database.Model(&db.User{}).Where("id = ?", "anu").Update("display_name", "Anu K").Error)
	u, err := store.Get(ctx, "anu")
	require.NoError(t, err)
	assert.Equal(t, "Anu", u.DisplayName)
}

func TestSetOnlineInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	store, _ := setupStore(t)

	_, err := store.Get(ctx, "biju")
	require.NoError(t, err)

	u, err := store.SetOnline(ctx, "biju", true)
	require.NoError(t, err)
	assert.True(t, u.IsOnline)
	assert.NotNil(t, u.LastSeen)

	_, err = store.SetOnline(ctx, "ghost", true)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}

func TestLookup(t *testing.T) {
	ctx := context.Background()
	store, _ := setupStore(t)

	users, err := store.Lookup(ctx, []string{"anu", "biju", "ghost"})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "Biju", users["biju"].DisplayName)
}

func TestExists(t *testing.T) {
	ctx := context.Background()
	store, _ := setupStore(t)

	ok, err := store.Exists(ctx, "biju")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, ok)
}
