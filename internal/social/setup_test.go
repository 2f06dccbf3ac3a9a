package social_test

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oggyb/wandermatch/internal/db"
	"github.com/oggyb/wandermatch/internal/social"
)

// fakeClock is a settable engine clock.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type testEnv struct {
	engine *social.Engine
	db     *gorm.DB
	clock  *fakeClock
}

var travellers = []db.User{
	{ID: "anu", DisplayName: "Anu", Email: "anu@test.com", District: "Kochi"},
	{ID: "biju", DisplayName: "Biju", Email: "biju@test.com", District: "Munnar"},
	{ID: "chitra", DisplayName: "Chitra", Email: "chitra@test.com", District: "Alleppey"},
	{ID: "dev", DisplayName: "Dev", Email: "dev@test.com", District: "Varkala"},
}

// setupDB opens an in-memory SQLite database with the schema and the
// travellers above. One connection keeps concurrent tests off SQLite's
// shared-cache table locks.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(database))
	users := append([]db.User(nil), travellers...)
	require.NoError(t, database.Create(&users).Error)
	return database
}

// setup builds an engine over a fresh database. tweak may adjust deps and
// options before construction.
func setup(t *testing.T, tweak func(*social.Deps, *social.Options)) *testEnv {
	t.Helper()
	database := setupDB(t)
	clock := newClock()

	deps := social.Deps{DB: database}
	opts := social.Options{
		RequireFollow: true,
		MaxMessageLen: 2000,
		Now:           clock.Now,
		PollInterval:  10 * time.Millisecond,
	}
	if tweak != nil {
		tweak(&deps, &opts)
	}
	return &testEnv{engine: social.NewEngine(deps, opts), db: database, clock: clock}
}
