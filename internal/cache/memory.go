// README: In-process response cache backed by go-cache, capped by entry count.
package cache

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps entries in process. Items expire from the underlying cache
// after TTL plus the staleness window; once MaxEntries is reached the entry with
// the oldest FetchedAt is evicted to make room.
type MemoryStore struct {
	items      *gocache.Cache
	maxStale   time.Duration
	maxEntries int
	now        func() time.Time

	// mu serializes writers so the capacity check and eviction are atomic.
	mu sync.Mutex
}

func NewMemoryStore(maxStale time.Duration, maxEntries int) *MemoryStore {
	cleanup := maxStale
	if cleanup <= 0 || cleanup > 10*time.Minute {
		cleanup = 10 * time.Minute
	}
	return &MemoryStore{
		items:      gocache.New(gocache.NoExpiration, cleanup),
		maxStale:   maxStale,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (Entry, bool, error) {
	v, found := s.items.Get(key)
	if !found {
		return Entry{}, false, nil
	}
	e, ok := v.(Entry)
	if !ok {
		return Entry{}, false, nil
	}
	if s.now().After(e.FetchedAt.Add(e.TTL + s.maxStale)) {
		return Entry{}, false, nil
	}
	return e, true, nil
}

func (s *MemoryStore) Set(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxEntries > 0 {
		if _, exists := s.items.Get(e.Key); !exists {
			if s.items.ItemCount() >= s.maxEntries {
				s.items.DeleteExpired()
			}
			for s.items.ItemCount() >= s.maxEntries {
				if !s.evictOldest() {
					break
				}
			}
		}
	}

	ttl := e.TTL + s.maxStale
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	s.items.Set(e.Key, e, ttl)
	return nil
}

// Len reports the number of held entries, expired-but-uncollected ones included.
func (s *MemoryStore) Len() int {
	return s.items.ItemCount()
}

func (s *MemoryStore) evictOldest() bool {
	var (
		oldestKey string
		oldestAt  time.Time
		found     bool
	)
	for k, item := range s.items.Items() {
		e, ok := item.Object.(Entry)
		if !ok {
			s.items.Delete(k)
			return true
		}
		if !found || e.FetchedAt.Before(oldestAt) {
			oldestKey, oldestAt, found = k, e.FetchedAt, true
		}
	}
	if found {
		s.items.Delete(oldestKey)
	}
	return found
}
