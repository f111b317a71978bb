package dedup

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory DeliveryStore with expiration. Suitable for a
// single process; entries do not survive restarts.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]*memoryItem
	done  chan struct{}
}

type memoryItem struct {
	processedAt time.Time
	processed   bool
	expireTime  time.Time
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	store := &MemoryStore{
		items: make(map[string]*memoryItem),
		done:  make(chan struct{}),
	}

	// Start cleanup goroutine to remove expired items
	go store.cleanupExpired()

	return store
}

// CheckAndSet implements the atomic check-and-insert under one lock
func (ms *MemoryStore) CheckAndSet(_ context.Context, deliveryID string, ttl time.Duration) (bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	if item, exists := ms.items[deliveryID]; exists && now.Before(item.expireTime) {
		return true, nil
	}

	ms.items[deliveryID] = &memoryItem{expireTime: now.Add(ttl)}
	return false, nil
}

// MarkProcessed records pipeline completion for the id
func (ms *MemoryStore) MarkProcessed(_ context.Context, deliveryID string, ttl time.Duration) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	item, exists := ms.items[deliveryID]
	if !exists || now.After(item.expireTime) {
		item = &memoryItem{expireTime: now.Add(ttl)}
		ms.items[deliveryID] = item
	}
	item.processed = true
	item.processedAt = now
	return nil
}

// ProcessedAt reports pipeline completion for the id
func (ms *MemoryStore) ProcessedAt(_ context.Context, deliveryID string) (time.Time, bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	item, exists := ms.items[deliveryID]
	if !exists || time.Now().After(item.expireTime) || !item.processed {
		return time.Time{}, false, nil
	}
	return item.processedAt, true, nil
}

// cleanupExpired periodically removes expired items
func (ms *MemoryStore) cleanupExpired() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ms.done:
			return
		case <-ticker.C:
			ms.mu.Lock()
			now := time.Now()
			for key, item := range ms.items {
				if now.After(item.expireTime) {
					delete(ms.items, key)
				}
			}
			ms.mu.Unlock()
		}
	}
}

// Close stops the cleanup goroutine
func (ms *MemoryStore) Close() error {
	close(ms.done)
	return nil
}
