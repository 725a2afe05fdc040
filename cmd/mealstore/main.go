// Command mealstore serves the meal ledger HTTP API backed by PostgreSQL.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/vladimiradmaev/meal-ledger/internal/auth"
	"github.com/vladimiradmaev/meal-ledger/internal/config"
	"github.com/vladimiradmaev/meal-ledger/internal/database"
	"github.com/vladimiradmaev/meal-ledger/internal/logger"
	"github.com/vladimiradmaev/meal-ledger/internal/repository"
	"github.com/vladimiradmaev/meal-ledger/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()

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
	if err := cfg.ValidateStore(); err != nil {
		logger.Fatal("Invalid configuration", "error", err)
	}

	db, err := database.NewPostgresDB(cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	router := server.NewRouter(
		server.NewHandler(repository.NewMealRepository(db)),
		auth.NewVerifier(cfg.Store.JWTSecret),
	)
	srv := &http.Server{
		Addr:              cfg.Store.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Graceful shutdown failed", "error", err)
		}
	}()

	logger.Info("Meal store listening", "addr", cfg.Store.ListenAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Server stopped", "error", err)
	}
}
