package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/oggyb/wandermatch/internal/config"
)

func TestDefaults(t *testing.T) {
	cfg := config.New()

	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.Contains(t, cfg.DB.DSN, "@tcp(localhost:3306)/wandermatch")
	assert.Equal(t, "50051", cfg.GRPC.Port)
	assert.True(t, cfg.Chat.RequireFollow)
	assert.Equal(t, 2000, cfg.Chat.MaxMessageLen)
	assert.Equal(t, "redis", cfg.Chat.Feed)
	assert.Equal(t, 2000, cfg.Posts.MaxLen)
	assert.Equal(t, 480*time.Hour, cfg.Milestone.After)
	assert.Equal(t, 10*time.Minute, cfg.Milestone.SweepInterval)
	assert.Equal(t, 5*time.Second, cfg.Lock.TTL)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("CHAT_REQUIRE_FOLLOW", "off")
	t.Setenv("CHAT_SEND_RATE", "0.5")
	t.Setenv("CHAT_FEED", "POLL")
	t.Setenv("MILESTONE_AFTER", "1h30m")
	t.Setenv("MILESTONE_SWEEP_INTERVAL", "0s")
	t.Setenv("LOG_SOURCE", "yes")
	t.Setenv("REDIS_DB", "3")

	cfg := config.New()

	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Contains(t, cfg.DB.DSN, "host=db.internal port=5432")
	assert.False(t, cfg.Chat.RequireFollow)
	assert.Equal(t, 0.5, cfg.Chat.SendRate)
	assert.Equal(t, "poll", cfg.Chat.Feed)
	assert.Equal(t, 90*time.Minute, cfg.Milestone.After)
	assert.Zero(t, cfg.Milestone.SweepInterval)
	assert.True(t, cfg.Log.Source)
	assert.Equal(t, 3, cfg.Redis.DB)
}

func TestExplicitDSNWins(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_DSN", "file::memory:")

	cfg := config.New()
	assert.Equal(t, "file::memory:", cfg.DB.DSN)

	t.Setenv("DB_DRIVER", "")
	t.Setenv("MYSQL_DSN", "u:p@tcp(h:1)/x")
	assert.Equal(t, "u:p@tcp(h:1)/x", config.New().DB.DSN)
}

func TestBadValuesFallBack(t *testing.T) {
	t.Setenv("CHAT_MAX_MESSAGE_LEN", "lots")
	t.Setenv("PAIR_LOCK_WAIT", "soon")

	cfg := config.New()
	assert.Equal(t, 2000, cfg.Chat.MaxMessageLen)
	assert.Equal(t, 3*time.Second, cfg.Lock.Wait)
}
