package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Port      string `env:"PORT" default:"8080"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	// Empty DATABASE_URL selects the in-memory post store.
	DatabaseURL string `env:"DATABASE_URL"`
	// Empty REDIS_URL selects the in-memory resolver cache.
	RedisURL string `env:"REDIS_URL"`

	// Source credentials. A source with missing credentials is skipped,
	// not treated as an error.
	XBearerToken       string `env:"X_BEARER_TOKEN"`
	RedditClientID     string `env:"REDDIT_CLIENT_ID"`
	RedditClientSecret string `env:"REDDIT_CLIENT_SECRET"`
	RedditUserAgent    string `env:"REDDIT_USER_AGENT" default:"stonkzap/1.0"`
	StocktwitsToken    string `env:"STOCKTWITS_TOKEN"`
	DiscordBotToken    string `env:"DISCORD_BOT_TOKEN"`
	DiscordChannelIDs  string `env:"DISCORD_CHANNEL_ALLOWLIST"`

	SourceTimeout    time.Duration `env:"SOURCE_TIMEOUT" default:"5s"`
	QueryTimeout     time.Duration `env:"QUERY_TIMEOUT" default:"20s"`
	MaxFetchAttempts int           `env:"MAX_FETCH_ATTEMPTS" default:"3"`
	FetchBackoff     time.Duration `env:"FETCH_BACKOFF" default:"250ms"`

	ResolverCacheTTL time.Duration `env:"RESOLVER_CACHE_TTL" default:"168h"` // 7 days
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.SourceTimeout <= 0 {
		return fmt.Errorf("SOURCE_TIMEOUT must be positive")
	}
	if cfg.QueryTimeout < cfg.SourceTimeout {
		return fmt.Errorf("QUERY_TIMEOUT must be at least SOURCE_TIMEOUT")
	}
	if cfg.MaxFetchAttempts < 1 {
		return fmt.Errorf("MAX_FETCH_ATTEMPTS must be at least 1")
	}
	if cfg.ResolverCacheTTL <= 0 {
		return fmt.Errorf("RESOLVER_CACHE_TTL must be positive")
	}
	return nil
}
