package foodsearch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	apperrors "github.com/vladimiradmaev/meal-ledger/internal/errors"
)

const twoHints = `{
  "hints": [
    {
      "food": {
        "foodId": "food_apple",
        "label": "Apple",
        "category": "Generic foods",
        "nutrients": {"ENERC_KCAL": 52, "PROCNT": 0.26, "FAT": 0.17, "CHOCDF": 13.8}
      },
      "measures": [{"label": "Whole", "weight": 182}]
    },
    {
      "food": {
        "foodId": "food_water",
        "label": "Sparkling Water",
        "brand": "Fizz",
        "category": "Packaged foods",
        "nutrients": {}
      }
    }
  ]
}`

func newTestClient(t *testing.T, h http.HandlerFunc) (*EdamamClient, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewEdamamClient(srv.URL, "id", "key"), &calls
}

func TestSearch_MapsHints(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != parserPath {
			t.Errorf("path = %q, want %q", r.URL.Path, parserPath)
		}
		if got := r.URL.Query().Get("ingr"); got != "apple" {
			t.Errorf("ingr = %q, want apple", got)
		}
		if r.URL.Query().Get("app_id") != "id" || r.URL.Query().Get("app_key") != "key" {
			t.Errorf("credentials not forwarded: %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(twoHints))
	})

	got, err := client.Search(context.Background(), "  apple ")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	apple := got[0]
	if apple.Label != "Apple" || apple.CaloriesPerServing != 52 || apple.Nutrients.Carbohydrates != 13.8 {
		t.Fatalf("apple = %+v", apple)
	}
	if apple.ServingLabel != "Whole" || apple.ServingWeight != 182 {
		t.Fatalf("apple serving = %q %v, want Whole 182", apple.ServingLabel, apple.ServingWeight)
	}
	water := got[1]
	if water.CaloriesPerServing != 0 || water.Nutrients.Protein != 0 || water.ServingWeight != 0 {
		t.Fatalf("missing nutrients should default to 0, got %+v", water)
	}
	if water.Brand != "Fizz" {
		t.Fatalf("brand = %q, want Fizz", water.Brand)
	}
}

func TestSearch_EmptyQueryMakesNoRequest(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(twoHints))
	})

	_, err := client.Search(context.Background(), "   ")
	if !errors.Is(err, apperrors.ErrEmptyQuery) {
		t.Fatalf("err = %v, want EmptyQuery", err)
	}
	if atomic.LoadInt32(calls) != 0 {
		t.Fatalf("server called %d times, want 0", *calls)
	}
}

func TestSearch_NoMatches(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hints": []}`))
	})

	_, err := client.Search(context.Background(), "zzzz")
	if !errors.Is(err, apperrors.ErrNoMatches) {
		t.Fatalf("err = %v, want NoMatches", err)
	}
	if errors.Is(err, apperrors.ErrTransport) {
		t.Fatal("NoMatches must not be reported as Transport")
	}
}

func TestSearch_RateLimitIsTransport(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	_, err := client.Search(context.Background(), "apple")
	if !errors.Is(err, apperrors.ErrTransport) {
		t.Fatalf("err = %v, want Transport", err)
	}
}

func TestSearch_MalformedBodyIsTransport(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hints": [`))
	})

	_, err := client.Search(context.Background(), "apple")
	if !errors.Is(err, apperrors.ErrTransport) {
		t.Fatalf("err = %v, want Transport", err)
	}
}
