package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vladimiradmaev/meal-ledger/internal/domain"
	"github.com/vladimiradmaev/meal-ledger/internal/foodsearch"
)

type countingAccounts struct {
	calls   int
	created time.Time
	err     error
}

func (a *countingAccounts) RegisterAccount(ctx context.Context, telegramID int64, username string) (*domain.Account, error) {
	a.calls++
	if a.err != nil {
		return nil, a.err
	}
	return &domain.Account{UserID: "u1", CreatedAt: a.created}, nil
}

func TestRegistry_CreatesOnce(t *testing.T) {
	created := time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)
	accounts := &countingAccounts{created: created}
	r := NewRegistry(nil, accounts, domain.DefaultBudget)

	s, isNew, err := r.Get(context.Background(), 42, "alice")
	if err != nil || !isNew {
		t.Fatalf("first Get = %v, %v; want new session", isNew, err)
	}
	again, isNew, err := r.Get(context.Background(), 42, "alice")
	if err != nil || isNew || again != s {
		t.Fatalf("second Get returned a different session (new=%v, err=%v)", isNew, err)
	}
	if accounts.calls != 1 {
		t.Fatalf("RegisterAccount called %d times, want 1", accounts.calls)
	}
	if want := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC); !s.Navigator.Floor().Equal(want) {
		t.Fatalf("Floor = %v, want %v", s.Navigator.Floor(), want)
	}
}

func TestRegistry_AccountError(t *testing.T) {
	boom := errors.New("db down")
	r := NewRegistry(nil, &countingAccounts{err: boom}, domain.DefaultBudget)
	if _, _, err := r.Get(context.Background(), 1, ""); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped db error", err)
	}
	if r.Len() != 0 {
		t.Fatalf("Len = %d, want 0", r.Len())
	}
}

func TestSession_Results(t *testing.T) {
	r := NewRegistry(nil, &countingAccounts{created: time.Now()}, domain.DefaultBudget)
	s, _, _ := r.Get(context.Background(), 1, "")

	s.SetResults("apple", []domain.FoodCandidate{{Label: "Apple"}, {Label: "Apple pie"}})
	var gotTerm string
	var gotLen int
	s.WithPager(func(term string, p *foodsearch.Pager) {
		gotTerm, gotLen = term, p.Len()
	})
	if gotTerm != "apple" || gotLen != 2 {
		t.Fatalf("pager = %q/%d, want apple/2", gotTerm, gotLen)
	}
}
