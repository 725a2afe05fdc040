package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vladimiradmaev/meal-ledger/internal/logger"
)

// Gateway modes
const (
	GatewayHTTP     = "http"
	GatewayPostgres = "postgres"
)

// State backends for the bot dialog state
const (
	StateMemory = "memory"
	StateRedis  = "redis"
)

type Config struct {
	TelegramToken string
	Edamam        EdamamConfig
	Gateway       GatewayConfig
	DB            DBConfig
	Redis         RedisConfig
	Store         StoreConfig
	StateBackend  string
	Logger        LoggerConfig
}

type EdamamConfig struct {
	AppID    string
	AppKey   string
	BaseURL  string
	CacheTTL time.Duration
}

type GatewayConfig struct {
	Mode    string
	BaseURL string
	Token   string
	Timeout time.Duration
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type RedisConfig struct {
	Host string
	Port string
}

// Enabled reports whether a Redis host is configured
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

type StoreConfig struct {
	ListenAddr string
	JWTSecret  string
}

type LoggerConfig struct {
	Level      logger.LogLevel
	OutputPath string
	Format     string
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.LevelDebug
	case "info":
		return logger.LevelInfo
	case "warn", "warning":
		return logger.LevelWarn
	case "error":
		return logger.LevelError
	default:
		return logger.LevelInfo
	}
}

func Load() (*Config, error) {
	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		Edamam: EdamamConfig{
			AppID:    os.Getenv("EDAMAM_APP_ID"),
			AppKey:   os.Getenv("EDAMAM_APP_KEY"),
			BaseURL:  getEnvOrDefault("EDAMAM_BASE_URL", "https://api.edamam.com"),
			CacheTTL: getDurationOrDefault("SEARCH_CACHE_TTL", 6*time.Hour),
		},
		Gateway: GatewayConfig{
			Mode:    strings.ToLower(getEnvOrDefault("GATEWAY_MODE", GatewayPostgres)),
			BaseURL: getEnvOrDefault("LEDGER_API_URL", "http://localhost:3000"),
			Token:   os.Getenv("LEDGER_API_TOKEN"),
			Timeout: time.Duration(getIntOrDefault("LEDGER_API_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		DB: DBConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getEnvOrDefault("DB_PORT", "5432"),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrDefault("DB_NAME", "meal_ledger"),
		},
		Redis: RedisConfig{
			Host: os.Getenv("REDIS_HOST"),
			Port: getEnvOrDefault("REDIS_PORT", "6379"),
		},
		Store: StoreConfig{
			ListenAddr: getEnvOrDefault("STORE_LISTEN_ADDR", ":3000"),
			JWTSecret:  os.Getenv("JWT_SECRET"),
		},
		StateBackend: strings.ToLower(getEnvOrDefault("STATE_BACKEND", StateMemory)),
		Logger: LoggerConfig{
			Level:      parseLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
			OutputPath: getEnvOrDefault("LOG_OUTPUT", "stdout"),
			Format:     getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	if cfg.Gateway.Mode != GatewayHTTP && cfg.Gateway.Mode != GatewayPostgres {
		return nil, fmt.Errorf("unknown GATEWAY_MODE %q", cfg.Gateway.Mode)
	}
	if cfg.StateBackend != StateMemory && cfg.StateBackend != StateRedis {
		return nil, fmt.Errorf("unknown STATE_BACKEND %q", cfg.StateBackend)
	}
	return cfg, nil
}

// ValidateBot checks the values the Telegram front-end needs
func (c *Config) ValidateBot() error {
	var missing []string
	if c.TelegramToken == "" {
		missing = append(missing, "TELEGRAM_BOT_TOKEN")
	}
	if c.Edamam.AppID == "" {
		missing = append(missing, "EDAMAM_APP_ID")
	}
	if c.Edamam.AppKey == "" {
		missing = append(missing, "EDAMAM_APP_KEY")
	}
	if c.Gateway.Mode == GatewayHTTP && c.Gateway.Token == "" {
		missing = append(missing, "LEDGER_API_TOKEN")
	}
	if c.StateBackend == StateRedis && !c.Redis.Enabled() {
		missing = append(missing, "REDIS_HOST")
	}
	return missingError(missing)
}

// ValidateStore checks the values the meal store API needs
func (c *Config) ValidateStore() error {
	var missing []string
	if c.Store.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	return missingError(missing)
}

func missingError(missing []string) error {
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
}
