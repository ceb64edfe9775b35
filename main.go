package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/vladimiradmaev/protein-tracker/internal/auth"
	"github.com/vladimiradmaev/protein-tracker/internal/bot"
	"github.com/vladimiradmaev/protein-tracker/internal/bot/handlers"
	"github.com/vladimiradmaev/protein-tracker/internal/bot/state"
	"github.com/vladimiradmaev/protein-tracker/internal/config"
	"github.com/vladimiradmaev/protein-tracker/internal/database"
	"github.com/vladimiradmaev/protein-tracker/internal/domain"
	httpserver "github.com/vladimiradmaev/protein-tracker/internal/http"
	"github.com/vladimiradmaev/protein-tracker/internal/logger"
	"github.com/vladimiradmaev/protein-tracker/internal/ratelimit"
	"github.com/vladimiradmaev/protein-tracker/internal/repository"
	"github.com/vladimiradmaev/protein-tracker/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Warn(".env file not found, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}

	if err := logger.InitWithConfig(logger.Config(cfg.Logger)); err != nil {
		logger.Fatal("Failed to initialize logger", "error", err)
	}
	defer logger.Close()

	log := logger.ForComponent("main")
	log.Info("Starting Protein Tracker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgresDB(cfg.DB, logger.ForComponent("database"))
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	store := repository.NewStore(db)
	defer store.Close()
	log.Info("Database connection established and migrations completed")

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = database.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", "error", err)
		}
		defer redisClient.Close()
		log.Info("Redis connection established", "addr", cfg.Redis.Addr)
	}

	// Initialize services
	aiService, err := services.NewAIService(ctx, cfg.AI, logger.ForComponent("ai"))
	if err != nil {
		logger.Fatal("Failed to initialize AI provider", "error", err)
	}
	defer aiService.Close()

	var wg sync.WaitGroup

	var limiter domain.Limiter
	if redisClient != nil {
		limiter = ratelimit.NewRedisSlidingWindow(redisClient, cfg.RateLimit.SuggestionLimit, cfg.RateLimit.SuggestionWindow)
	} else {
		window := ratelimit.NewSlidingWindow(cfg.RateLimit.SuggestionLimit, cfg.RateLimit.SuggestionWindow)
		if cfg.RateLimit.PruneInterval > 0 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				window.RunPruner(ctx, cfg.RateLimit.PruneInterval)
			}()
		}
		limiter = window
	}

	tracker := services.NewTrackerService(store.DailyLogs, store.Entries, cfg.Tracker.DefaultGoalProtein, logger.ForComponent("tracker"))
	suggestions := services.NewSuggestionService(aiService, limiter, cfg.AI.Timeout, logger.ForComponent("suggestions"))
	log.Info("Services initialized", "provider", aiService.Name())

	defaultLoc := cfg.Tracker.Location()
	verifier := auth.NewJWT(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	httpLogger := logger.ForComponent("http")
	router := httpserver.NewRouter(
		httpserver.NewHandler(tracker, suggestions, store, httpLogger),
		verifier, defaultLoc, httpLogger,
	)
	server := httpserver.NewServer(cfg.HTTP, router, httpLogger)

	errCh := make(chan error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.Run(ctx); err != nil {
			errCh <- err
		}
	}()

	if cfg.TelegramToken != "" {
		var stateManager state.StateManager = state.NewManager()
		if redisClient != nil {
			stateManager = state.NewRedisManager(redisClient, logger.ForComponent("bot_state"))
		}

		telegramBot, err := bot.NewBot(cfg.TelegramToken, handlers.Dependencies{
			Tracker:         tracker,
			Suggestions:     suggestions,
			DefaultLocation: defaultLoc,
			Logger:          logger.GetLogger(),
		}, stateManager, logger.GetLogger())
		if err != nil {
			logger.Fatal("Failed to create bot", "error", err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- err
			}
		}()
	} else {
		log.Info("TELEGRAM_BOT_TOKEN not set, Telegram bot disabled")
	}

	log.Info("Protein Tracker is running. Press Ctrl+C to stop.")

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case err := <-errCh:
		log.Error("Component stopped with error", "error", err)
		stop()
	}

	wg.Wait()
	log.Info("Protein Tracker stopped")
}
