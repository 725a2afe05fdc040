// Package navigator moves the viewed day, never before the account's creation date.
package navigator

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/vladimiradmaev/meal-ledger/internal/errors"
	"github.com/vladimiradmaev/meal-ledger/internal/logger"
	"github.com/vladimiradmaev/meal-ledger/internal/utils"
)

// Loader loads the entries of a day. *ledger.Ledger satisfies it.
type Loader interface {
	Load(ctx context.Context, date time.Time) error
}

// Move is the outcome of a navigation call. Notice is set when the
// requested day was clamped to the floor.
type Move struct {
	Date   time.Time
	Notice *apperrors.AppError
}

// Navigator is the viewed-date cursor. Moves are serialized: a move holds
// moveMu from reading the cursor until its load returns, so the loader
// always sees days in cursor order.
type Navigator struct {
	loader Loader
	floor  time.Time

	moveMu  sync.Mutex
	mu      sync.Mutex
	current time.Time
}

// New creates a navigator positioned at start, clamped to accountCreated.
// It does not load anything; call SetDate or Shift for that.
func New(loader Loader, accountCreated, start time.Time) *Navigator {
	floor := utils.Day(accountCreated)
	current := utils.Day(start)
	if current.Before(floor) {
		current = floor
	}
	return &Navigator{loader: loader, floor: floor, current: current}
}

// Shift moves the cursor by days
func (n *Navigator) Shift(ctx context.Context, days int) (Move, error) {
	return n.move(ctx, func(current time.Time) time.Time {
		return utils.AddDays(current, days)
	})
}

// SetDate moves the cursor to date. There is no upper bound. Exactly one
// load is triggered for the resulting day, even if it did not change.
func (n *Navigator) SetDate(ctx context.Context, date time.Time) (Move, error) {
	return n.move(ctx, func(time.Time) time.Time { return date })
}

func (n *Navigator) move(ctx context.Context, target func(current time.Time) time.Time) (Move, error) {
	n.moveMu.Lock()
	defer n.moveMu.Unlock()

	date := target(n.Current())
	move := Move{Date: utils.Day(date)}
	if move.Date.Before(n.floor) {
		move.Date = n.floor
		move.Notice = apperrors.NewBelowFloorError(utils.FormatDate(n.floor))
		logger.Debug("Navigation clamped to floor", "requested", utils.FormatDate(date), "floor", utils.FormatDate(n.floor))
	}

	n.mu.Lock()
	n.current = move.Date
	n.mu.Unlock()

	return move, n.loader.Load(ctx, move.Date)
}

// Today moves the cursor to the calendar day of now
func (n *Navigator) Today(ctx context.Context) (Move, error) {
	return n.SetDate(ctx, time.Now())
}

// Current is the day the cursor points at
func (n *Navigator) Current() time.Time {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Floor is the earliest reachable day
func (n *Navigator) Floor() time.Time {
	return n.floor
}

// AtFloor reports whether the cursor cannot move further back
func (n *Navigator) AtFloor() bool {
	return !n.Current().After(n.floor)
}
