package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bilgisen/repurpose/internal/ai"
	"github.com/bilgisen/repurpose/internal/api"
	"github.com/bilgisen/repurpose/internal/cache"
	"github.com/bilgisen/repurpose/internal/config"
	"github.com/bilgisen/repurpose/internal/logger"
	"github.com/bilgisen/repurpose/internal/metrics"
	"github.com/bilgisen/repurpose/internal/publish"
	"github.com/bilgisen/repurpose/internal/repository"
	"github.com/bilgisen/repurpose/internal/storage"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: cfg.LogFile,
		Pretty: !cfg.IsProduction(),
	}); err != nil {
		panic(err)
	}

	log := logger.Get()
	log.Info().Msg("Starting application...")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	m := metrics.New()

	client, err := newChatClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize AI client")
	}

	opts := []ai.Option{ai.WithMetrics(m)}

	// Redis is optional; without it results are never cached
	var redisClient cache.RedisInterface
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisClient(cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Redis client")
		}
		redisClient = rc
		opts = append(opts, ai.WithCache(rc, cfg.CacheTTL))
		defer func() {
			log.Info().Msg("Closing Redis client...")
			if err := redisClient.Close(); err != nil {
				log.Error().Err(err).Msg("Error closing Redis client")
			}
		}()
	}

	generator, err := ai.NewGenerator(client, cfg.AITimeout, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize generator")
	}

	repo, err := repository.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("Failed to open repository")
	}
	defer repo.Close()

	archive, err := storage.New(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.ArchiveBackend).Msg("Failed to initialize archive")
	}

	dispatcher := publish.NewDispatcher(repo, publish.NewWebhookSender(publish.DefaultSenderOptions()), cfg.DispatchConcurrency, m)

	handlers := api.NewHandlers(api.Deps{
		Config:     cfg,
		Generator:  generator,
		Repo:       repo,
		Cache:      redisClient,
		Archive:    archive,
		Dispatcher: dispatcher,
		Metrics:    m,
	})
	app := api.NewApp(handlers)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	if cfg.DispatchInterval > 0 {
		go runDispatcher(ctx, dispatcher, cfg.DispatchInterval)
	}

	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("provider", cfg.AIProvider).
			Str("model", cfg.AIModel).
			Str("db_driver", cfg.DBDriver).
			Msg("Starting server")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

func newChatClient(cfg *config.Config) (ai.ChatClient, error) {
	switch cfg.AIProvider {
	case config.ProviderOpenAI:
		return ai.NewOpenAIClient(cfg.AIApiKey, cfg.AIModel, cfg.AIBaseURL, cfg.AITimeout)
	default:
		return ai.NewGatewayClient(cfg.AIApiKey, cfg.AIModel, cfg.AIBaseURL, cfg.AITimeout)
	}
}

// runDispatcher delivers due posts every interval until ctx is cancelled.
func runDispatcher(ctx context.Context, d *publish.Dispatcher, interval time.Duration) {
	log := logger.Get()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Dur("interval", interval).Msg("Starting dispatch loop")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Dispatch loop stopped")
			return
		case now := <-ticker.C:
			if _, err := d.DispatchDue(ctx, now); err != nil {
				log.Error().Err(err).Msg("Scheduled dispatch pass failed")
			}
		}
	}
}
