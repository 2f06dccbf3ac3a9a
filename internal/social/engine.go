// Package social implements the WanderMatch social graph and interaction
// engine: follows and likes, mutual-match detection, one chat room per user
// pair with a one-way romantic flag, the per-room message log and the
// twenty-day romantic milestone.
package social

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"gorm.io/gorm"

	"github.com/oggyb/wandermatch/internal/cache"
	"github.com/oggyb/wandermatch/internal/config"
	"github.com/oggyb/wandermatch/internal/db"
	svcErr "github.com/oggyb/wandermatch/internal/errors"
	"github.com/oggyb/wandermatch/internal/identity"
	"github.com/oggyb/wandermatch/internal/metrics"
	"github.com/oggyb/wandermatch/internal/repository"
)

// Locker serializes work on a key. Acquire returns the release func.
type Locker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

// Feed is the message transport behind Subscribe: push (Redis pub/sub) or
// polling. Publish is a no-op for transports that read the log directly.
type Feed interface {
	Publish(ctx context.Context, msg *db.ChatMessage) error
	Subscribe(ctx context.Context, roomID string) (<-chan db.ChatMessage, func(), error)
}

// Options tune engine policy.
type Options struct {
	// RequireFollow restricts text messages in non-romantic rooms to senders
	// that follow the other participant.
	RequireFollow bool
	MaxMessageLen int
	// MaxPostLen caps community post content in runes; <= 0 disables.
	MaxPostLen int
	// SendRate is messages/second per sender; <= 0 disables limiting.
	SendRate  float64
	SendBurst int
	// MilestoneAfter is the romantic age at which the system message fires.
	MilestoneAfter time.Duration
	PollInterval   time.Duration
	Now            func() time.Time
}

// OptionsFromConfig maps app config onto engine options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		RequireFollow:  cfg.Chat.RequireFollow,
		MaxMessageLen:  cfg.Chat.MaxMessageLen,
		MaxPostLen:     cfg.Posts.MaxLen,
		SendRate:       cfg.Chat.SendRate,
		SendBurst:      cfg.Chat.SendBurst,
		MilestoneAfter: cfg.Milestone.After,
		PollInterval:   cfg.Chat.PollInterval,
	}
}

// Deps are the collaborators an Engine is built from. Cache, Publisher and
// Feed are optional; Locker defaults to an in-process LocalLocker.
type Deps struct {
	DB        *gorm.DB
	Identity  *identity.Store
	Cache     *cache.RedisCache
	Locker    Locker
	Publisher message.Publisher
	Feed      Feed
	Logger    *slog.Logger
}

// Engine is the social graph & interaction core. All methods are safe for
// concurrent use.
type Engine struct {
	db       *gorm.DB
	follows  *repository.FollowRepository
	likes    *repository.LikeRepository
	matches  *repository.MatchRepository
	rooms    *repository.RoomRepository
	messages *repository.MessageRepository
	posts    *repository.PostRepository

	identity  *identity.Store
	cache     *cache.RedisCache
	locker    Locker
	publisher message.Publisher
	feed      Feed
	limiter   *SendLimiter
	log       *slog.Logger
	opts      Options
}

// NewEngine wires repositories and collaborators together.
func NewEngine(deps Deps, opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MilestoneAfter <= 0 {
		opts.MilestoneAfter = 20 * 24 * time.Hour
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	e := &Engine{
		db:        deps.DB,
		follows:   repository.NewFollowRepository(deps.DB),
		likes:     repository.NewLikeRepository(deps.DB),
		matches:   repository.NewMatchRepository(deps.DB),
		rooms:     repository.NewRoomRepository(deps.DB),
		messages:  repository.NewMessageRepository(deps.DB),
		posts:     repository.NewPostRepository(deps.DB),
		identity:  deps.Identity,
		cache:     deps.Cache,
		locker:    deps.Locker,
		publisher: deps.Publisher,
		feed:      deps.Feed,
		limiter:   NewSendLimiter(opts.SendRate, opts.SendBurst),
		log:       log,
		opts:      opts,
	}
	if e.identity == nil {
		e.identity = identity.NewStore(deps.DB, 0)
	}
	if e.locker == nil {
		e.locker = NewLocalLocker()
	}
	if e.feed == nil {
		e.feed = NewPollingFeed(e.messages, opts.PollInterval)
	}
	return e
}

// now is the engine clock, UTC at millisecond precision so stored
// timestamps round-trip through pagination cursors unchanged.
func (e *Engine) now() time.Time {
	return e.opts.Now().UTC().Truncate(time.Millisecond)
}

// observe records the outcome of op.
func (e *Engine) observe(op string, err error) {
	metrics.Operations.WithLabelValues(op, svcErr.Kind(err)).Inc()
	if err != nil && svcErr.Is(err, svcErr.ErrStorageUnavailable) {
		e.log.Error("storage failure", "op", op, "err", err)
	}
}

// validatePair rejects empty ids and a user acting on themselves.
func validatePair(a, b, verb string) error {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return svcErr.Invalid("%s: user ids must not be empty", verb)
	}
	if a == b {
		return svcErr.Invalid("cannot %s yourself", verb)
	}
	return nil
}

// lockPair serializes match-affecting work on {a,b}.
func (e *Engine) lockPair(ctx context.Context, a, b string) (func(), error) {
	u1, u2 := repository.CanonicalPair(a, b)
	release, err := e.locker.Acquire(ctx, cache.KeyForPair(u1, u2))
	if err != nil {
		return nil, svcErr.Storage(err)
	}
	return release, nil
}
