package views

import (
	"context"
	"path/filepath"
	"testing"

	"biolink_back/localdb"
)

func newTestCounter(t *testing.T) *Counter {
	t.Helper()
	db, err := localdb.OpenTest(filepath.Join(t.TempDir(), "views.db"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	counter, err := NewCounter(nil, db)
	if err != nil {
		t.Fatalf("create counter: %v", err)
	}
	return counter
}

func TestCurrentDefaultsToZero(t *testing.T) {
	counter := newTestCounter(t)
	if got := counter.Current(context.Background()); got != 0 {
		t.Fatalf("Current = %d, want 0", got)
	}
}

func TestIncrementTwiceSkipsNothing(t *testing.T) {
	counter := newTestCounter(t)
	ctx := context.Background()

	first, err := counter.Increment(ctx)
	if err != nil {
		t.Fatalf("first increment: %v", err)
	}
	if first != 1 {
		t.Fatalf("first increment = %d, want 1", first)
	}

	second, err := counter.Increment(ctx)
	if err != nil {
		t.Fatalf("second increment: %v", err)
	}
	if second != 2 {
		t.Fatalf("second increment = %d, want 2", second)
	}

	if got := counter.Current(ctx); got != 2 {
		t.Fatalf("Current = %d, want 2", got)
	}
}

func TestSetThenIncrement(t *testing.T) {
	counter := newTestCounter(t)
	ctx := context.Background()

	if _, err := counter.Set(ctx, 5); err != nil {
		t.Fatalf("set: %v", err)
	}
	total, err := counter.Increment(ctx)
	if err != nil {
		t.Fatalf("increment: %v", err)
	}
	if total != 6 {
		t.Fatalf("total = %d, want 6", total)
	}
}

func TestCounterWithoutAnyTier(t *testing.T) {
	counter, err := NewCounter(nil, nil)
	if err != nil {
		t.Fatalf("create counter: %v", err)
	}
	ctx := context.Background()

	if got := counter.Current(ctx); got != 0 {
		t.Fatalf("Current = %d, want 0", got)
	}
	if _, err := counter.Increment(ctx); err == nil {
		t.Fatal("increment without storage should fail")
	}
}
