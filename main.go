package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/vladimiradmaev/meal-ledger/internal/auth"
	"github.com/vladimiradmaev/meal-ledger/internal/bot"
	"github.com/vladimiradmaev/meal-ledger/internal/bot/handlers"
	"github.com/vladimiradmaev/meal-ledger/internal/bot/session"
	"github.com/vladimiradmaev/meal-ledger/internal/bot/state"
	"github.com/vladimiradmaev/meal-ledger/internal/config"
	"github.com/vladimiradmaev/meal-ledger/internal/database"
	"github.com/vladimiradmaev/meal-ledger/internal/domain"
	"github.com/vladimiradmaev/meal-ledger/internal/foodsearch"
	"github.com/vladimiradmaev/meal-ledger/internal/gateway"
	"github.com/vladimiradmaev/meal-ledger/internal/history"
	"github.com/vladimiradmaev/meal-ledger/internal/logger"
	"github.com/vladimiradmaev/meal-ledger/internal/repository"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Warn(".env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}

	if err := logger.InitWithConfig(logger.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	}); err != nil {
		logger.Fatal("Failed to initialize logger", "error", err)
	}
	logger.Info("Starting Meal Ledger Bot", "gateway_mode", cfg.Gateway.Mode, "state_backend", cfg.StateBackend)

	if err := cfg.ValidateBot(); err != nil {
		logger.Fatal("Invalid configuration", "error", err)
	}

	db, err := database.NewPostgresDB(cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	logger.Info("Database connection established and migrations completed")

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = database.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to redis", "error", err)
		}
		defer redisClient.Close()
	}

	accounts := repository.NewAccountRepository(db)
	var accountService domain.AccountService = accounts
	var mealGateway domain.SyncGateway

	switch cfg.Gateway.Mode {
	case config.GatewayHTTP:
		mealGateway = gateway.NewHTTPGateway(cfg.Gateway.BaseURL, auth.NewStaticToken(cfg.Gateway.Token), cfg.Gateway.Timeout)
		owner, err := auth.NewTokenOwner(accounts, cfg.Gateway.Token)
		if err != nil {
			logger.Fatal("Invalid ledger API token", "error", err)
		}
		accountService = owner
	default:
		mealGateway = repository.NewMealRepository(db)
	}

	var searcher domain.FoodSearcher = foodsearch.NewEdamamClient(cfg.Edamam.BaseURL, cfg.Edamam.AppID, cfg.Edamam.AppKey)
	if redisClient != nil {
		searcher = foodsearch.NewCachedSearcher(searcher, redisClient, cfg.Edamam.CacheTTL)
	}

	var stateManager state.StateManager = state.NewManager()
	if cfg.StateBackend == config.StateRedis {
		stateManager = state.NewRedisManager(redisClient)
	}
	logger.Info("Services initialized successfully")

	sessions := session.NewRegistry(mealGateway, accountService, domain.DefaultBudget)
	deps := handlers.Dependencies{
		Searcher: searcher,
		History:  history.NewService(mealGateway),
	}

	telegramBot, err := bot.NewBot(cfg.TelegramToken, sessions, deps, stateManager)
	if err != nil {
		logger.Fatal("Failed to create bot", "error", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("Bot is running. Press Ctrl+C to stop.")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Bot stopped with error", "error", err)
		os.Exit(1)
	}
}
