package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/zach-wendland/stonkzap/internal/app"
	"github.com/zach-wendland/stonkzap/internal/collect"
	"github.com/zach-wendland/stonkzap/internal/config"
	"github.com/zach-wendland/stonkzap/internal/domain"
	"github.com/zach-wendland/stonkzap/internal/logging"
	"github.com/zach-wendland/stonkzap/internal/resolver"
	"github.com/zach-wendland/stonkzap/internal/scoring"
	"github.com/zach-wendland/stonkzap/internal/server"
	"github.com/zach-wendland/stonkzap/internal/source"
	"github.com/zach-wendland/stonkzap/internal/storage"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupStore(cfg *config.Config) (domain.PostStore, func()) {
	if cfg.DatabaseURL == "" {
		slog.Info("No DATABASE_URL configured, using in-memory post store")
		return storage.NewMemoryStore(), func() {}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := storage.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := store.RunMigrations(ctx); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return store, store.Close
}

func setupResolverCache(cfg *config.Config, clock clockwork.Clock) (domain.ResolverCache, *goredis.Client, func()) {
	if cfg.RedisURL == "" {
		slog.Info("No REDIS_URL configured, using in-memory resolver cache")
		cache := resolver.NewMemoryCache(cfg.ResolverCacheTTL, clock)
		stopEviction := cache.StartEvictionTimer(1 * time.Hour)
		return cache, nil, stopEviction
	}

	opts, err := goredis.ParseURL(cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to parse Redis URL", "error", err)
		os.Exit(1)
	}
	client := goredis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	return resolver.NewRedisCache(client, cfg.ResolverCacheTTL), client, func() { _ = client.Close() }
}

func setupAdapters(cfg *config.Config) []domain.SourceAdapter {
	adapters := []domain.SourceAdapter{
		source.NewXAdapter(cfg.XBearerToken),
		source.NewRedditAdapter(cfg.RedditClientID, cfg.RedditClientSecret, cfg.RedditUserAgent),
		source.NewStockTwitsAdapter(cfg.StocktwitsToken),
		source.NewDiscordAdapter(cfg.DiscordBotToken, cfg.DiscordChannelIDs),
	}

	for _, a := range adapters {
		if !a.Configured() {
			slog.Info("Source not configured, will be skipped", "source", a.Source())
		}
	}

	return adapters
}

func runGracefulShutdown(srv *server.Server, cleanups ...func()) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		for _, cleanup := range cleanups {
			cleanup()
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	store, closeStore := setupStore(cfg)
	cache, redisClient, closeCache := setupResolverCache(cfg, clock)

	res := resolver.New(cache, resolver.NewStaticLookup())
	orchestrator := collect.New(setupAdapters(cfg), cfg.SourceTimeout, cfg.MaxFetchAttempts, cfg.FetchBackoff, clock)
	scorer := scoring.NewLexiconScorer()

	svc := app.NewService(res, orchestrator, scorer, store, clock, cfg.QueryTimeout)

	checks := map[string]server.HealthChecker{"store": store}
	if redisClient != nil {
		checks["redis"] = redisPinger{redisClient}
	}

	srv := server.NewServer(cfg, svc, checks, clock)

	done := runGracefulShutdown(srv, closeStore, closeCache)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}

// redisPinger adapts the go-redis client to the readiness check contract.
type redisPinger struct {
	client *goredis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
