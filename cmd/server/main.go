package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/oggyb/wandermatch/internal/app"
	"github.com/oggyb/wandermatch/internal/cache"
	"github.com/oggyb/wandermatch/internal/config"
	"github.com/oggyb/wandermatch/internal/db"
	"github.com/oggyb/wandermatch/internal/events"
	"github.com/oggyb/wandermatch/internal/identity"
	"github.com/oggyb/wandermatch/internal/logger"
	"github.com/oggyb/wandermatch/internal/metrics"
	"github.com/oggyb/wandermatch/internal/server"
	socialsvc "github.com/oggyb/wandermatch/internal/service/social"
	"github.com/oggyb/wandermatch/internal/social"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	defer logger.Close()
	log := logger.L() // slog.Logger pointer

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(ctx); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}
	defer redisCache.Close()

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database, log); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	// Match events
	pubsub := events.NewPubSub(log)
	defer pubsub.Close()
	if err := events.ConsumeMatches(ctx, pubsub, log.With("component", "match-events")); err != nil {
		log.Error("failed to subscribe to match events", "err", err)
		return
	}

	var feed social.Feed
	if cfg.Chat.Feed == "redis" {
		feed = cache.NewRedisFeed(redisCache)
	}

	engine := social.NewEngine(social.Deps{
		DB:        database,
		Identity:  identity.NewStore(database, cfg.Identity.CacheTTL),
		Cache:     redisCache,
		Locker:    cache.NewPairLocker(redisCache, cfg.Lock.TTL, cfg.Lock.Wait),
		Publisher: pubsub,
		Feed:      feed, // nil falls back to polling
		Logger:    log,
	}, social.OptionsFromConfig(cfg))

	// Inject dependencies into app context
	appCtx := app.New(cfg, database, redisCache, log, engine)

	registrars := []server.Registrar{
		socialsvc.NewRegistrar(appCtx),
	}

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Milestone.SweepInterval > 0 {
		sweeper := social.NewSweeper(engine, cfg.Milestone.SweepInterval, log)
		g.Go(func() error {
			sweeper.Run(ctx)
			return nil
		})
	}

	if cfg.Metrics.Addr != "" {
		g.Go(func() error { return metrics.Serve(ctx, cfg.Metrics.Addr, log) })
	}

	g.Go(func() error { return server.StartGRPCServer(ctx, cfg, log, registrars...) })

	if err := g.Wait(); err != nil {
		log.Error("server stopped", "err", err)
		return
	}
	log.Info("server stopped")
}
