package state

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
)

// hashRedis is an in-memory stand-in behind a go-redis hook for the
// commands RedisManager sends. With down set every command fails.
type hashRedis struct {
	mu      sync.Mutex
	strings map[string]string
	hashes  map[string]map[string]string
	expires map[string]bool
	down    bool
}

func newRedisManager(t *testing.T, down bool) (*RedisManager, *hashRedis) {
	t.Helper()
	store := &hashRedis{
		strings: make(map[string]string),
		hashes:  make(map[string]map[string]string),
		expires: make(map[string]bool),
		down:    down,
	}
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	client.AddHook(store)
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisManager(client), store
}

func (h *hashRedis) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return nil, errors.New("dial disabled in tests")
	}
}

func (h *hashRedis) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		h.mu.Lock()
		defer h.mu.Unlock()
		return h.apply(cmd)
	}
}

func (h *hashRedis) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		h.mu.Lock()
		defer h.mu.Unlock()
		for _, cmd := range cmds {
			if err := h.apply(cmd); err != nil {
				return err
			}
		}
		return nil
	}
}

func (h *hashRedis) apply(cmd redis.Cmder) error {
	if h.down {
		return errors.New("connection refused")
	}
	args := cmd.Args()
	key := func(i int) string { s, _ := args[i].(string); return s }

	switch cmd.Name() {
	case "set":
		h.strings[key(1)] = key(2)
		h.expires[key(1)] = len(args) > 3
		cmd.(*redis.StatusCmd).SetVal("OK")
	case "get":
		v, ok := h.strings[key(1)]
		if !ok {
			return redis.Nil
		}
		cmd.(*redis.StringCmd).SetVal(v)
	case "hset":
		if h.hashes[key(1)] == nil {
			h.hashes[key(1)] = make(map[string]string)
		}
		h.hashes[key(1)][key(2)] = key(3)
		cmd.(*redis.IntCmd).SetVal(1)
	case "hget":
		v, ok := h.hashes[key(1)][key(2)]
		if !ok {
			return redis.Nil
		}
		cmd.(*redis.StringCmd).SetVal(v)
	case "expire":
		h.expires[key(1)] = true
		cmd.(*redis.BoolCmd).SetVal(true)
	case "del":
		delete(h.strings, key(1))
		delete(h.hashes, key(1))
		cmd.(*redis.IntCmd).SetVal(1)
	}
	return nil
}

func TestRedisManager_StateRoundTrip(t *testing.T) {
	m, store := newRedisManager(t, false)

	if got := m.GetUserState(1); got != None {
		t.Fatalf("GetUserState before set = %q, want %q", got, None)
	}
	m.SetUserState(1, WaitingForEditQuantity)
	if got := m.GetUserState(1); got != WaitingForEditQuantity {
		t.Fatalf("GetUserState = %q, want %q", got, WaitingForEditQuantity)
	}
	if !store.expires[stateKey(1)] {
		t.Fatal("state key saved without a TTL")
	}
}

func TestRedisManager_TempData(t *testing.T) {
	m, store := newRedisManager(t, false)

	m.SetTempData(1, KeyEntryID, "m1")
	m.SetTempData(1, KeySection, "Dinner")
	m.SetTempData(2, KeySection, "Lunch")

	if got, ok := m.GetTempData(1, KeyEntryID); !ok || got != "m1" {
		t.Fatalf("GetTempData = %q, %v; want m1", got, ok)
	}
	if !store.expires[tempKey(1)] {
		t.Fatal("temp data saved without a TTL")
	}

	m.ClearTempData(1)
	if _, ok := m.GetTempData(1, KeySection); ok {
		t.Fatal("temp data survived ClearTempData")
	}
	if got, _ := m.GetTempData(2, KeySection); got != "Lunch" {
		t.Fatalf("user 2 section = %q, want Lunch", got)
	}
}

func TestRedisManager_UnavailableRedisDegradesToEmpty(t *testing.T) {
	m, _ := newRedisManager(t, true)

	m.SetUserState(1, WaitingForDate)
	if got := m.GetUserState(1); got != None {
		t.Fatalf("GetUserState = %q, want %q", got, None)
	}
	m.SetTempData(1, KeySection, "Lunch")
	if _, ok := m.GetTempData(1, KeySection); ok {
		t.Fatal("GetTempData reported a value with redis down")
	}
}
