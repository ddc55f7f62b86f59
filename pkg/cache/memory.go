package cache

import (
	"context"
	"sync"
	"time"
)

type item struct {
	value      string
	expiration int64
}

func (it item) expired() bool {
	if it.expiration == 0 {
		return false
	}
	return time.Now().UnixNano() > it.expiration
}

// MemoryStore is a thread-safe in-process cache with expiration. It is the
// fallback mode when redis is not configured; entries live only as long as
// the process.
type MemoryStore struct {
	items           map[string]item
	mu              sync.RWMutex
	maxItems        int
	cleanupInterval time.Duration
	stop            chan struct{}
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore(maxItems int, cleanupInterval time.Duration) *MemoryStore {
	if maxItems <= 0 {
		maxItems = 1000
	}
	store := &MemoryStore{
		items:           make(map[string]item),
		maxItems:        maxItems,
		cleanupInterval: cleanupInterval,
		stop:            make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go store.startCleanupTimer()
	}
	return store
}

// Get retrieves a value; expired entries read as misses.
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, found := s.items[key]
	if !found || it.expired() {
		return "", false, nil
	}
	return it.value, true, nil
}

// Set stores a value with a TTL. Zero TTL means no expiration.
func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	var exp int64
	if ttl > 0 {
		exp = time.Now().Add(ttl).UnixNano()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[key]; !exists && len(s.items) >= s.maxItems {
		s.evictOldest()
	}
	s.items[key] = item{value: value, expiration: exp}
	return nil
}

// Delete removes the given keys.
func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.items, key)
	}
	return nil
}

// Ping always succeeds for the in-process store.
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// Close stops the cleanup goroutine.
func (s *MemoryStore) Close() {
	close(s.stop)
}

// evictOldest drops the entry closest to expiry. Called with the lock held.
func (s *MemoryStore) evictOldest() {
	var oldestKey string
	var oldestExp int64 = 1<<63 - 1
	for k, it := range s.items {
		if it.expiration != 0 && it.expiration < oldestExp {
			oldestKey = k
			oldestExp = it.expiration
		}
	}
	if oldestKey == "" {
		for k := range s.items {
			oldestKey = k
			break
		}
	}
	delete(s.items, oldestKey)
}

func (s *MemoryStore) startCleanupTimer() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			for k, it := range s.items {
				if it.expired() {
					delete(s.items, k)
				}
			}
			s.mu.Unlock()
		case <-s.stop:
			return
		}
	}
}
