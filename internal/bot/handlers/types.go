package handlers

import (
	"github.com/vladimiradmaev/meal-ledger/internal/bot/session"
	"github.com/vladimiradmaev/meal-ledger/internal/domain"
	"github.com/vladimiradmaev/meal-ledger/internal/history"
)

// Dependencies holds all service dependencies for handlers
type Dependencies struct {
	Searcher domain.FoodSearcher
	History  *history.Service
}

// Request identifies who an update came from
type Request struct {
	Session    *session.Session
	TelegramID int64
	ChatID     int64
}
