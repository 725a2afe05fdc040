package database

import (
	"fmt"
	"time"

	"github.com/vladimiradmaev/meal-ledger/internal/config"
	"github.com/vladimiradmaev/meal-ledger/internal/database/migrations"
	"github.com/vladimiradmaev/meal-ledger/internal/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Account is a front-end user. Its CreatedAt is the earliest day the
// user may navigate to.
type Account struct {
	gorm.Model
	TelegramID int64  `gorm:"uniqueIndex"`
	Username   string
	UserID     string `gorm:"uniqueIndex;not null"` // ledger owner id used by the meal store
}

// MealRecord is one stored meal entry. Rows with quantity 0 are deleted
// entries and are kept for history.
type MealRecord struct {
	ID            string    `gorm:"type:uuid;primaryKey"`
	UserID        string    `gorm:"index:idx_meal_records_user_date;not null"`
	Date          time.Time `gorm:"type:date;index:idx_meal_records_user_date;not null"`
	Section       string    `gorm:"not null"`
	Label         string    `gorm:"not null"`
	Calories      float64
	Protein       float64
	Fat           float64
	Carbohydrates float64
	Quantity      float64 `gorm:"not null;default:1"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewPostgresDB connects to PostgreSQL and runs migrations
func NewPostgresDB(cfg config.DBConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	migrator := migrations.NewMigrator()
	if err := migrator.LoadSQL(migrations.Files); err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}
	if err := migrator.Run(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Columns added to the models after the last SQL migration
	if err := db.AutoMigrate(&Account{}, &MealRecord{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	logger.Info("Database connection established and migrations completed", "host", cfg.Host, "db", cfg.DBName)
	return db, nil
}
