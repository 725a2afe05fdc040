// Package history aggregates a user's whole meal log into per-day totals.
package history

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/vladimiradmaev/meal-ledger/internal/domain"
	"github.com/vladimiradmaev/meal-ledger/internal/macros"
	"github.com/vladimiradmaev/meal-ledger/internal/utils"
)

// DayTotals is the intake of one calendar day
type DayTotals struct {
	Date    time.Time
	Entries int
	Totals  macros.Totals
}

// Daily groups active entries by day, oldest first. Days with no active
// entries are omitted.
func Daily(entries []domain.MealEntry) []DayTotals {
	byDay := make(map[time.Time][]domain.MealEntry)
	for _, e := range entries {
		if !e.Active() {
			continue
		}
		day := utils.Day(e.Date)
		byDay[day] = append(byDay[day], e)
	}

	days := make([]DayTotals, 0, len(byDay))
	for day, dayEntries := range byDay {
		days = append(days, DayTotals{Date: day, Entries: len(dayEntries), Totals: macros.Sum(dayEntries)})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	return days
}

// Service reads the full log through the gateway
type Service struct {
	gateway domain.SyncGateway
}

// NewService creates a history service reading from gateway
func NewService(gateway domain.SyncGateway) *Service {
	return &Service{gateway: gateway}
}

// Days returns the per-day totals of every logged day of userID
func (s *Service) Days(ctx context.Context, userID string) ([]DayTotals, error) {
	entries, err := s.gateway.FetchAllMeals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch meal history: %w", err)
	}
	return Daily(entries), nil
}

// Last returns at most n of the most recent days, oldest first
func Last(days []DayTotals, n int) []DayTotals {
	if n <= 0 || len(days) <= n {
		return days
	}
	return days[len(days)-n:]
}
