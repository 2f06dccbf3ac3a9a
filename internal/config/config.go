package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App struct {
		ENV string
	}

	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
		File      string
	}

	DB struct {
		Driver   string
		DSN      string
		Host     string
		Port     string
		User     string
		Password string
		Name     string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	GRPC struct {
		Host string
		Port string
	}

	Metrics struct {
		Addr string
	}

	Chat struct {
		RequireFollow bool
		MaxMessageLen int
		SendRate      float64 // messages per second per sender
		SendBurst     int
		Feed          string // "redis" or "poll"
		PollInterval  time.Duration
	}

	Posts struct {
		MaxLen int
	}

	Milestone struct {
		After         time.Duration
		SweepInterval time.Duration
	}

	Identity struct {
		CacheTTL time.Duration
	}

	Lock struct {
		TTL  time.Duration
		Wait time.Duration
	}
}

func New() *Config {
	cfg := &Config{}

	cfg.App.ENV = getEnvDefault("APP_ENV", "production")

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "social_engine")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))
	cfg.Log.File = getEnvDefault("LOG_FILE", "")

	// Database
	cfg.DB.Driver = strings.ToLower(getEnvDefault("DB_DRIVER", "mysql"))
	switch cfg.DB.Driver {
	case "postgres":
		cfg.DB.DSN = os.Getenv("DATABASE_DSN")
		if cfg.DB.DSN == "" {
			cfg.DB.Host = getEnvDefault("DB_HOST", "localhost")
			cfg.DB.Port = getEnvDefault("DB_PORT", "5432")
			cfg.DB.User = getEnvDefault("DB_USER", "postgres")
			cfg.DB.Password = getEnvDefault("DB_PASSWORD", "postgres")
			cfg.DB.Name = getEnvDefault("DB_NAME", "wandermatch")

			cfg.DB.DSN = fmt.Sprintf(
				"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
				cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name,
			)
		}
	case "sqlite":
		cfg.DB.DSN = getEnvDefault("DATABASE_DSN", "file:wandermatch.db?_foreign_keys=on")
	default:
		cfg.DB.Driver = "mysql"
		cfg.DB.DSN = os.Getenv("MYSQL_DSN")
		if cfg.DB.DSN == "" {
			cfg.DB.Host = getEnvDefault("DB_HOST", "localhost")
			cfg.DB.Port = getEnvDefault("DB_PORT", "3306")
			cfg.DB.User = getEnvDefault("DB_USER", "root")
			cfg.DB.Password = getEnvDefault("DB_PASSWORD", "root")
			cfg.DB.Name = getEnvDefault("DB_NAME", "wandermatch")

			cfg.DB.DSN = fmt.Sprintf(
				"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
				cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
			)
		}
	}

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	// gRPC
	cfg.GRPC.Host = getEnvDefault("GRPC_HOST", "127.0.0.1")
	cfg.GRPC.Port = getEnvDefault("GRPC_PORT", "50051")

	// Metrics (empty disables the HTTP listener)
	cfg.Metrics.Addr = getEnvDefault("METRICS_ADDR", ":9090")

	// Chat
	cfg.Chat.RequireFollow = getEnvBool("CHAT_REQUIRE_FOLLOW", true)
	cfg.Chat.MaxMessageLen = getEnvInt("CHAT_MAX_MESSAGE_LEN", 2000)
	cfg.Chat.SendRate = getEnvFloat("CHAT_SEND_RATE", 5)
	cfg.Chat.SendBurst = getEnvInt("CHAT_SEND_BURST", 10)
	cfg.Chat.Feed = strings.ToLower(getEnvDefault("CHAT_FEED", "redis"))
	cfg.Chat.PollInterval = getEnvDuration("CHAT_POLL_INTERVAL", 2*time.Second)

	// Community posts
	cfg.Posts.MaxLen = getEnvInt("POST_MAX_LEN", 2000)

	// Twenty-day milestone
	cfg.Milestone.After = getEnvDuration("MILESTONE_AFTER", 20*24*time.Hour)
	cfg.Milestone.SweepInterval = getEnvDuration("MILESTONE_SWEEP_INTERVAL", 10*time.Minute)

	cfg.Identity.CacheTTL = getEnvDuration("IDENTITY_CACHE_TTL", time.Minute)

	cfg.Lock.TTL = getEnvDuration("PAIR_LOCK_TTL", 5*time.Second)
	cfg.Lock.Wait = getEnvDuration("PAIR_LOCK_WAIT", 3*time.Second)

	return cfg
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if n, err := strconv.Atoi(getEnvDefault(k, "")); err == nil {
		return n
	}
	return def
}

func getEnvFloat(k string, def float64) float64 {
	if f, err := strconv.ParseFloat(getEnvDefault(k, ""), 64); err == nil {
		return f
	}
	return def
}

func getEnvDuration(k string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnvDefault(k, "")); err == nil {
		return d
	}
	return def
}

func getEnvBool(k string, def bool) bool {
	v := getEnvDefault(k, "")
	if v == "" {
		return def
	}
	return isTruthy(v)
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
