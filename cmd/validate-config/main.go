package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/vladimiradmaev/meal-ledger/internal/config"
)

func main() {
	fmt.Println("🔍 Checking configuration...")

	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  .env file not found: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Configuration error:\n%v\n", err)
		os.Exit(1)
	}

	failed := false
	if err := cfg.ValidateBot(); err != nil {
		fmt.Printf("❌ Bot: %v\n", err)
		failed = true
	} else {
		fmt.Println("✅ Bot configuration is valid")
	}
	if err := cfg.ValidateStore(); err != nil {
		fmt.Printf("⚠️  Meal store: %v\n", err)
	} else {
		fmt.Println("✅ Meal store configuration is valid")
	}

	fmt.Printf("📋 Configuration details:\n")
	fmt.Printf("  - Telegram Token: %s\n", maskToken(cfg.TelegramToken))
	fmt.Printf("  - Edamam App ID: %s\n", maskToken(cfg.Edamam.AppID))
	fmt.Printf("  - Edamam App Key: %s\n", maskToken(cfg.Edamam.AppKey))
	fmt.Printf("  - Gateway Mode: %s\n", cfg.Gateway.Mode)
	if cfg.Gateway.Mode == config.GatewayHTTP {
		fmt.Printf("  - Ledger API URL: %s\n", cfg.Gateway.BaseURL)
		fmt.Printf("  - Ledger API Token: %s\n", maskToken(cfg.Gateway.Token))
	}
	fmt.Printf("  - DB Host: %s\n", cfg.DB.Host)
	fmt.Printf("  - DB Port: %s\n", cfg.DB.Port)
	fmt.Printf("  - DB User: %s\n", cfg.DB.User)
	fmt.Printf("  - DB Name: %s\n", cfg.DB.DBName)
	fmt.Printf("  - Redis: %s\n", redisSummary(cfg.Redis))
	fmt.Printf("  - State Backend: %s\n", cfg.StateBackend)
	fmt.Printf("  - Store Listen Addr: %s\n", cfg.Store.ListenAddr)
	fmt.Printf("  - JWT Secret: %s\n", maskToken(cfg.Store.JWTSecret))
	fmt.Printf("  - Log Level: %v\n", cfg.Logger.Level)
	fmt.Printf("  - Log Output: %s\n", cfg.Logger.OutputPath)
	fmt.Printf("  - Log Format: %s\n", cfg.Logger.Format)

	if failed {
		os.Exit(1)
	}
}

func redisSummary(c config.RedisConfig) string {
	if !c.Enabled() {
		return "<disabled>"
	}
	return c.Host + ":" + c.Port
}

func maskToken(token string) string {
	if token == "" {
		return "<not set>"
	}
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
