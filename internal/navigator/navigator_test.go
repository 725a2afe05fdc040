package navigator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

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

type recordingLoader struct {
	dates []time.Time
	err   error
}

func (r *recordingLoader) Load(ctx context.Context, date time.Time) error {
	r.dates = append(r.dates, date)
	return r.err
}

func TestShift_ClampsToFloor(t *testing.T) {
	floor := mustDate(t, "2024-01-10")
	loader := &recordingLoader{}
	n := New(loader, floor, floor)

	move, err := n.Shift(context.Background(), -1)
	if err != nil {
		t.Fatalf("Shift: %v", err)
	}
	if !move.Date.Equal(floor) {
		t.Fatalf("Date = %v, want %v", move.Date, floor)
	}
	if move.Notice == nil || !errors.Is(move.Notice, apperrors.ErrBelowFloor) {
		t.Fatalf("Notice = %v, want BelowFloor", move.Notice)
	}
	if len(loader.dates) != 1 || !loader.dates[0].Equal(floor) {
		t.Fatalf("loads = %v, want one load of the floor", loader.dates)
	}
	if !n.AtFloor() {
		t.Fatal("AtFloor = false, want true")
	}
}

func TestShift_Forward(t *testing.T) {
	floor := mustDate(t, "2024-01-10")
	loader := &recordingLoader{}
	n := New(loader, floor, mustDate(t, "2024-01-12"))

	move, err := n.Shift(context.Background(), 1)
	if err != nil {
		t.Fatalf("Shift: %v", err)
	}
	if move.Notice != nil {
		t.Fatalf("Notice = %v, want none", move.Notice)
	}
	if want := mustDate(t, "2024-01-13"); !n.Current().Equal(want) {
		t.Fatalf("Current = %v, want %v", n.Current(), want)
	}
}

func TestSetDate_NoUpperBound(t *testing.T) {
	floor := mustDate(t, "2024-01-10")
	n := New(&recordingLoader{}, floor, floor)

	future := mustDate(t, "2099-12-31")
	move, err := n.SetDate(context.Background(), future)
	if err != nil {
		t.Fatalf("SetDate: %v", err)
	}
	if !move.Date.Equal(future) || move.Notice != nil {
		t.Fatalf("move = %+v, want %v without notice", move, future)
	}
}

func TestSetDate_BeforeFloorClamps(t *testing.T) {
	floor := mustDate(t, "2024-01-10")
	n := New(&recordingLoader{}, floor, mustDate(t, "2024-02-01"))

	move, _ := n.SetDate(context.Background(), mustDate(t, "2023-06-01"))
	if !move.Date.Equal(floor) || move.Notice == nil {
		t.Fatalf("move = %+v, want clamp to %v", move, floor)
	}
}

func TestSetDate_ReturnsLoadError(t *testing.T) {
	floor := mustDate(t, "2024-01-10")
	loader := &recordingLoader{err: apperrors.NewTransportError(errors.New("down"), "load meals")}
	n := New(loader, floor, floor)

	target := mustDate(t, "2024-01-11")
	move, err := n.SetDate(context.Background(), target)
	if !errors.Is(err, apperrors.ErrTransport) {
		t.Fatalf("err = %v, want Transport", err)
	}
	if !move.Date.Equal(target) || !n.Current().Equal(target) {
		t.Fatalf("cursor = %v, want %v", n.Current(), target)
	}
}

func TestNew_StartBeforeFloor(t *testing.T) {
	floor := mustDate(t, "2024-01-10")
	n := New(&recordingLoader{}, floor, mustDate(t, "2024-01-01"))
	if !n.Current().Equal(floor) {
		t.Fatalf("Current = %v, want %v", n.Current(), floor)
	}
}

// gatedLoader holds the first Load until release is closed and records the
// day only when a load finishes, like a ledger applying its result.
type gatedLoader struct {
	mu      sync.Mutex
	calls   int
	last    time.Time
	entered chan time.Time
	release chan struct{}
}

func (g *gatedLoader) Load(ctx context.Context, date time.Time) error {
	g.mu.Lock()
	g.calls++
	first := g.calls == 1
	g.mu.Unlock()

	g.entered <- date
	if first {
		<-g.release
	}

	g.mu.Lock()
	g.last = date
	g.mu.Unlock()
	return nil
}

func TestSetDate_ConcurrentMovesLoadInCursorOrder(t *testing.T) {
	floor := mustDate(t, "2024-01-01")
	dayA := mustDate(t, "2024-03-01")
	dayB := mustDate(t, "2024-03-02")
	loader := &gatedLoader{entered: make(chan time.Time, 2), release: make(chan struct{})}
	n := New(loader, floor, floor)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = n.SetDate(context.Background(), dayA)
	}()
	if got := <-loader.entered; !got.Equal(dayA) {
		t.Fatalf("first load = %v, want %v", got, dayA)
	}
	go func() {
		defer wg.Done()
		_, _ = n.SetDate(context.Background(), dayB)
	}()

	select {
	case got := <-loader.entered:
		t.Fatalf("load of %v started while the move to A was still loading", got)
	case <-time.After(50 * time.Millisecond):
	}

	close(loader.release)
	if got := <-loader.entered; !got.Equal(dayB) {
		t.Fatalf("second load = %v, want %v", got, dayB)
	}
	wg.Wait()

	if !n.Current().Equal(dayB) || !loader.last.Equal(dayB) {
		t.Fatalf("cursor = %v, last load = %v; want both %v", n.Current(), loader.last, dayB)
	}
}
