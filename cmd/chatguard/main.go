package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ToxicGuard/ChatGuard/pkg/classifier"
	"github.com/ToxicGuard/ChatGuard/pkg/config"
	"github.com/ToxicGuard/ChatGuard/pkg/dedup"
	handlers "github.com/ToxicGuard/ChatGuard/pkg/handlers/http"
	infraLogger "github.com/ToxicGuard/ChatGuard/pkg/infra/logger"
	"github.com/ToxicGuard/ChatGuard/pkg/infra/providers"
	"github.com/ToxicGuard/ChatGuard/pkg/infra/providers/factory"
	"github.com/ToxicGuard/ChatGuard/pkg/infra/youtube"
	"github.com/ToxicGuard/ChatGuard/pkg/moderation"
	"github.com/ToxicGuard/ChatGuard/pkg/server"
	"github.com/ToxicGuard/ChatGuard/pkg/storage"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger := infraLogger.NewLogger()

	if err := config.Load("./config"); err != nil {
		logger.WithError(err).Warn("could not load config file")
	}
	cfg := config.GetConfig()

	store := buildStore(ctx, cfg, logger)

	locator := factory.NewProviderLocator()
	provider, err := locator.Get(cfg.Classifier.Provider)
	if err != nil {
		logger.Fatalf("Failed to initialize classifier provider: %v", err)
	}
	providerConfig := &providers.Config{
		Credentials: providers.Credentials{ApiKey: cfg.Classifier.ApiKey},
		Model:       cfg.Classifier.Model,
		MaxTokens:   cfg.Classifier.MaxTokens,
		Temperature: cfg.Classifier.Temperature,
	}

	chatClient := youtube.NewClient(youtube.Config{
		BaseURL:     cfg.YouTube.BaseURL,
		AccessToken: cfg.YouTube.AccessToken,
		LiveChatID:  cfg.YouTube.LiveChatID,
		MaxResults:  cfg.YouTube.MaxResults,
	}, logger, nil)

	pipeline := moderation.NewPipeline(
		chatClient,
		classifier.New(provider, providerConfig, logger),
		moderation.NewEngine(logger),
		moderation.NewDispatcher(chatClient, logger),
		dedup.NewCache(cfg.Moderation.DedupWindow),
		store,
		logger,
	)

	runner := moderation.NewRunner(pipeline, moderation.RunnerConfig{
		PollInterval:    cfg.Moderation.PollInterval,
		ErrorBackoff:    cfg.Moderation.ErrorBackoff,
		CleanupInterval: cfg.Moderation.CleanupInterval,
	}, logger)

	srv := server.NewStatsServer(server.StatsServerDI{
		Config: cfg,
		Logger: logger,
		HandlerTransport: handlers.HandlerTransport{
			GetStatsHandler:     handlers.NewGetStatsHandler(logger, store),
			ListMessagesHandler: handlers.NewListMessagesHandler(logger, store),
			ListActionsHandler:  handlers.NewListActionsHandler(logger, store),
		},
	})

	go func() {
		if err := srv.Run(); err != nil {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	// Blocks until SIGINT/SIGTERM; the running cycle finishes first.
	if err := runner.Run(ctx); err != nil {
		logger.WithError(err).Error("moderation runner stopped")
	}

	logger.Info("shutting down server...")
	if err := srv.Shutdown(); err != nil {
		logger.WithError(err).Error("error shutting down server")
		os.Exit(1)
	}
	logger.Info("server gracefully stopped")
}

func buildStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) storage.Store {
	if !cfg.Redis.Enabled {
		logger.Info("redis disabled, using in-memory moderation history")
		return storage.NewMemoryStore()
	}

	redisStore := storage.NewRedisStore(storage.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TLS:      cfg.Redis.TLS,
	}, logger)

	if err := redisStore.Ping(ctx); err != nil {
		logger.WithError(err).Warn("redis unreachable, falling back to in-memory history")
		return storage.NewMemoryStore()
	}
	return redisStore
}
