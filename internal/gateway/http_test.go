package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/meal-ledger/internal/auth"
	"github.com/vladimiradmaev/meal-ledger/internal/domain"
	apperrors "github.com/vladimiradmaev/meal-ledger/internal/errors"
	"github.com/vladimiradmaev/meal-ledger/internal/utils"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := utils.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func newTestGateway(t *testing.T, token string, h http.HandlerFunc) *HTTPGateway {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewHTTPGateway(srv.URL, auth.NewStaticToken(token), 5*time.Second)
}

func TestFetchMeals_WireFormat(t *testing.T) {
	gw := newTestGateway(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/meal/get-meals/user-1" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if got := r.URL.Query().Get("date"); got != "2024-03-01" {
			t.Errorf("date = %q, want 2024-03-01", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		if _, err := uuid.Parse(r.Header.Get(RequestIDHeader)); err != nil {
			t.Errorf("%s = %q, want a uuid", RequestIDHeader, r.Header.Get(RequestIDHeader))
		}
		_, _ = w.Write([]byte(`{"data":[{"_id":"abc","section":"Lunch","label":"Soup","calories":50,"quantity":1,
			"nutrients":{"protein":5,"fat":2,"carbohydrates":5},"date":"2024-03-01T00:00:00.000Z"}],"message":"ok"}`))
	})

	got, err := gw.FetchMeals(context.Background(), "user-1", mustDate(t, "2024-03-01"))
	if err != nil {
		t.Fatalf("FetchMeals: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	e := got[0]
	if e.ID != "abc" || e.Section != domain.Lunch || e.Nutrients.Protein != 5 || !e.Date.Equal(mustDate(t, "2024-03-01")) {
		t.Fatalf("entry = %+v", e)
	}
}

func TestCreateMeal_SendsEntry(t *testing.T) {
	gw := newTestGateway(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/meal/log-meal/user-1" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		var body MealDTO
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.Section != "Snacks" || body.Quantity != 1.5 || body.Date != "2024-03-01" || body.ID != "" {
			t.Errorf("body = %+v", body)
		}
		body.ID = "new-id"
		_ = json.NewEncoder(w).Encode(Envelope[MealDTO]{Data: body, Message: "Meal logged"})
	})

	entry := domain.MealEntry{Section: domain.Snacks, Label: "Apple", Calories: 79, Quantity: 1.5}
	created, err := gw.CreateMeal(context.Background(), "user-1", mustDate(t, "2024-03-01"), entry)
	if err != nil {
		t.Fatalf("CreateMeal: %v", err)
	}
	if created.ID != "new-id" {
		t.Fatalf("ID = %q, want new-id", created.ID)
	}
}

func TestUpdateMeal_SendsFullEntry(t *testing.T) {
	gw := newTestGateway(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/meal/update-meal/abc" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		var body MealDTO
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.ID != "abc" || body.Label != "Soup" || body.Quantity != 0 || body.Calories != 50 {
			t.Errorf("body = %+v", body)
		}
		w.WriteHeader(http.StatusOK)
	})

	entry := domain.MealEntry{ID: "abc", Section: domain.Lunch, Label: "Soup", Calories: 50, Quantity: 0, Date: mustDate(t, "2024-03-01")}
	saved, err := gw.UpdateMeal(context.Background(), "abc", entry)
	if err != nil {
		t.Fatalf("UpdateMeal: %v", err)
	}
	if saved.ID != "abc" || saved.Quantity != 0 {
		t.Fatalf("saved = %+v", saved)
	}
}

func TestUpdateMeal_NotFound(t *testing.T) {
	gw := newTestGateway(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"data":null,"message":"Meal not found"}`))
	})
	_, err := gw.UpdateMeal(context.Background(), "gone", domain.MealEntry{Quantity: 1})
	if !errors.Is(err, apperrors.ErrEntryNotFound) {
		t.Fatalf("err = %v, want EntryNotFound", err)
	}
}

func TestGateway_AuthFailures(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		gw := newTestGateway(t, "tok", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"message":"jwt expired"}`))
		})
		_, err := gw.FetchMeals(context.Background(), "user-1", mustDate(t, "2024-03-01"))
		if !errors.Is(err, apperrors.ErrUnauthenticated) {
			t.Fatalf("status %d: err = %v, want Unauthenticated", status, err)
		}
	}
}

func TestGateway_MissingTokenMakesNoRequest(t *testing.T) {
	var calls int32
	gw := newTestGateway(t, "", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})
	_, err := gw.FetchAllMeals(context.Background(), "user-1")
	if !errors.Is(err, apperrors.ErrUnauthenticated) {
		t.Fatalf("err = %v, want Unauthenticated", err)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatalf("server called %d times, want 0", calls)
	}
}

func TestGateway_ServerErrorIsTransport(t *testing.T) {
	gw := newTestGateway(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	_, err := gw.FetchMeals(context.Background(), "user-1", mustDate(t, "2024-03-01"))
	if !errors.Is(err, apperrors.ErrTransport) {
		t.Fatalf("err = %v, want Transport", err)
	}
}

func TestGateway_MalformedDateIsTransport(t *testing.T) {
	gw := newTestGateway(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"_id":"x","section":"Lunch","label":"Soup","date":"yesterday"}]}`))
	})
	_, err := gw.FetchAllMeals(context.Background(), "user-1")
	if !errors.Is(err, apperrors.ErrTransport) {
		t.Fatalf("err = %v, want Transport", err)
	}
}
