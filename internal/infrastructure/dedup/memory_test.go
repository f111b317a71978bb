package dedup

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryStore_CheckAndSet(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	seen, err := store.CheckAndSet(ctx, "delivery-1", time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen {
		t.Fatal("first check should not be seen")
	}

	seen, err = store.CheckAndSet(ctx, "delivery-1", time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !seen {
		t.Fatal("second check should be seen")
	}
}

func TestMemoryStore_CheckAndSetExpiry(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	if _, err := store.CheckAndSet(ctx, "delivery-1", 10*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	seen, err := store.CheckAndSet(ctx, "delivery-1", time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen {
		t.Fatal("expired entry should not count as seen")
	}
}

// Concurrent duplicates of the same id must resolve to exactly one winner.
func TestMemoryStore_CheckAndSetAtomic(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	winners := make(chan struct{}, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen, err := store.CheckAndSet(ctx, "same-id", time.Hour)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if !seen {
				winners <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(winners)

	count := 0
	for range winners {
		count++
	}
	if count != 1 {
		t.Fatalf("expected exactly one winner, got %d", count)
	}
}

func TestMemoryStore_MarkProcessed(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	if _, ok, _ := store.ProcessedAt(ctx, "delivery-1"); ok {
		t.Fatal("unprocessed delivery should not report a timestamp")
	}

	if _, err := store.CheckAndSet(ctx, "delivery-1", time.Hour); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.MarkProcessed(ctx, "delivery-1", time.Hour); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ts, ok, err := store.ProcessedAt(ctx, "delivery-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("processed delivery should report a timestamp")
	}
	if ts.IsZero() {
		t.Fatal("processed timestamp should not be zero")
	}
}
