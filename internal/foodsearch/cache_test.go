package foodsearch

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vladimiradmaev/meal-ledger/internal/domain"
	apperrors "github.com/vladimiradmaev/meal-ledger/internal/errors"
)

// memoryRedis answers GET and SET from a map inside a go-redis hook, so the
// client never dials. With down set every command fails.
type memoryRedis struct {
	mu   sync.Mutex
	data map[string]string
	sets int
	down bool
}

func newTestRedis(t *testing.T, down bool) (*redis.Client, *memoryRedis) {
	t.Helper()
	store := &memoryRedis{data: make(map[string]string), down: down}
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	client.AddHook(store)
	t.Cleanup(func() { _ = client.Close() })
	return client, store
}

func (m *memoryRedis) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return nil, errors.New("dial disabled in tests")
	}
}

func (m *memoryRedis) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.down {
			return errors.New("connection refused")
		}
		args := cmd.Args()
		switch cmd.Name() {
		case "get":
			v, ok := m.data[args[1].(string)]
			if !ok {
				return redis.Nil
			}
			cmd.(*redis.StringCmd).SetVal(v)
		case "set":
			m.sets++
			switch v := args[2].(type) {
			case []byte:
				m.data[args[1].(string)] = string(v)
			case string:
				m.data[args[1].(string)] = v
			}
			cmd.(*redis.StatusCmd).SetVal("OK")
		}
		return nil
	}
}

func (m *memoryRedis) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		return errors.New("pipelines not supported")
	}
}

type countingSearcher struct {
	calls   int
	results []domain.FoodCandidate
	err     error
}

func (s *countingSearcher) Search(ctx context.Context, term string) ([]domain.FoodCandidate, error) {
	s.calls++
	return s.results, s.err
}

func TestCachedSearcher_ServesRepeatFromCache(t *testing.T) {
	client, store := newTestRedis(t, false)
	next := &countingSearcher{results: candidates(2)}
	s := NewCachedSearcher(next, client, time.Hour)

	for i := 0; i < 2; i++ {
		got, err := s.Search(context.Background(), "Green  Apple")
		if err != nil {
			t.Fatalf("Search #%d: %v", i+1, err)
		}
		if len(got) != 2 || got[1].FoodID != "food_1" {
			t.Fatalf("Search #%d = %+v", i+1, got)
		}
	}
	if next.calls != 1 {
		t.Fatalf("wrapped searcher called %d times, want 1", next.calls)
	}
	if _, ok := store.data[CacheKey("green apple")]; !ok {
		t.Fatalf("cache keys = %v, want %q", store.data, CacheKey("green apple"))
	}
}

func TestCachedSearcher_FailuresAreNotCached(t *testing.T) {
	failures := []error{
		apperrors.NewNoMatchesError("zzz"),
		apperrors.NewTransportError(errors.New("quota exceeded"), "food search"),
	}
	for _, failure := range failures {
		client, store := newTestRedis(t, false)
		next := &countingSearcher{err: failure}
		s := NewCachedSearcher(next, client, time.Hour)

		for i := 0; i < 2; i++ {
			if _, err := s.Search(context.Background(), "zzz"); !errors.Is(err, failure) {
				t.Fatalf("Search err = %v, want %v", err, failure)
			}
		}
		if next.calls != 2 {
			t.Fatalf("%v: wrapped searcher called %d times, want 2", failure, next.calls)
		}
		if store.sets != 0 {
			t.Fatalf("%v: cache written %d times, want 0", failure, store.sets)
		}
	}
}

func TestCachedSearcher_RedisDownFallsThrough(t *testing.T) {
	client, _ := newTestRedis(t, true)
	next := &countingSearcher{results: candidates(3)}
	s := NewCachedSearcher(next, client, time.Hour)

	got, err := s.Search(context.Background(), "apple")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 3 || next.calls != 1 {
		t.Fatalf("got %d results after %d calls, want 3 after 1", len(got), next.calls)
	}
}

func TestCachedSearcher_BlankTermSkipsCache(t *testing.T) {
	client, store := newTestRedis(t, false)
	next := &countingSearcher{err: apperrors.NewEmptyQueryError()}
	s := NewCachedSearcher(next, client, time.Hour)

	if _, err := s.Search(context.Background(), "   "); !errors.Is(err, apperrors.ErrEmptyQuery) {
		t.Fatalf("err = %v, want EmptyQuery", err)
	}
	if store.sets != 0 || len(store.data) != 0 {
		t.Fatalf("blank term touched the cache: %v", store.data)
	}
}
