package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/oggyb/wandermatch/internal/cache"
	"github.com/oggyb/wandermatch/internal/config"
	"github.com/oggyb/wandermatch/internal/social"
)

// AppContext holds shared dependencies (Config, DB, Redis, Logger, Engine)
type AppContext struct {
	Config     *config.Config
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
	Engine     *social.Engine
}

// New creates a new AppContext
func New(cfg *config.Config, db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger, engine *social.Engine) *AppContext {
	return &AppContext{
		Config:     cfg,
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,
		Engine:     engine,
	}
}
