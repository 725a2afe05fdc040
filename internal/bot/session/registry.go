// Package session keeps one ledger, date cursor and search pager per chat user.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vladimiradmaev/meal-ledger/internal/domain"
	"github.com/vladimiradmaev/meal-ledger/internal/foodsearch"
	"github.com/vladimiradmaev/meal-ledger/internal/ledger"
	"github.com/vladimiradmaev/meal-ledger/internal/logger"
	"github.com/vladimiradmaev/meal-ledger/internal/navigator"
)

// Session is the working set of one user
type Session struct {
	Account   domain.Account
	Ledger    *ledger.Ledger
	Navigator *navigator.Navigator

	mu    sync.Mutex
	pager *foodsearch.Pager
	term  string
}

// SetResults replaces the search results shown to the user
func (s *Session) SetResults(term string, results []domain.FoodCandidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.term = term
	s.pager.Reset(results)
}

// WithPager runs fn with exclusive access to the search pager
func (s *Session) WithPager(fn func(term string, p *foodsearch.Pager)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.term, s.pager)
}

// Registry creates sessions on first contact and keeps them for the
// lifetime of the process
type Registry struct {
	gateway  domain.SyncGateway
	accounts domain.AccountService
	budget   domain.Budget
	now      func() time.Time

	mu       sync.Mutex
	sessions map[int64]*Session
}

// NewRegistry creates an empty session registry
func NewRegistry(gateway domain.SyncGateway, accounts domain.AccountService, budget domain.Budget) *Registry {
	return &Registry{
		gateway:  gateway,
		accounts: accounts,
		budget:   budget,
		now:      time.Now,
		sessions: make(map[int64]*Session),
	}
}

// Get returns the session of telegramID, registering the account if needed.
// The second result reports whether the session was just created; its
// ledger has not been loaded yet.
func (r *Registry) Get(ctx context.Context, telegramID int64, username string) (*Session, bool, error) {
	r.mu.Lock()
	s, ok := r.sessions[telegramID]
	r.mu.Unlock()
	if ok {
		return s, false, nil
	}

	account, err := r.accounts.RegisterAccount(ctx, telegramID, username)
	if err != nil {
		return nil, false, fmt.Errorf("failed to register account: %w", err)
	}

	l := ledger.New(r.gateway, account.UserID, r.budget)
	s = &Session{
		Account:   *account,
		Ledger:    l,
		Navigator: navigator.New(l, account.CreatedAt, r.now()),
		pager:     foodsearch.NewPager(nil),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sessions[telegramID]; ok {
		return existing, false, nil
	}
	r.sessions[telegramID] = s
	logger.Info("Session created", "telegram_id", telegramID, "user_id", account.UserID)
	return s, true, nil
}

// Len is the number of live sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
