// README: Response cache entries and the store contract shared by the in-process and Redis backends.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Entry is one cached provider response keyed by its request fingerprint.
type Entry struct {
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	FetchedAt time.Time       `json:"fetched_at"`
	TTL       time.Duration   `json:"ttl"`
}

// NewEntry encodes v as the entry payload.
func NewEntry(key string, v any, fetchedAt time.Time, ttl time.Duration) (Entry, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return Entry{}, fmt.Errorf("encode cache payload for %s: %w", key, err)
	}
	return Entry{Key: key, Payload: payload, FetchedAt: fetchedAt, TTL: ttl}, nil
}

// Fresh reports whether the entry is still inside its TTL at now.
func (e Entry) Fresh(now time.Time) bool {
	return now.Before(e.FetchedAt.Add(e.TTL))
}

// Age is the time elapsed since the entry was fetched.
func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.FetchedAt)
}

// Decode unmarshals the payload into v.
func (e Entry) Decode(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode cache payload for %s: %w", e.Key, err)
	}
	return nil
}

// Store holds entries past their TTL for a bounded staleness window so callers can
// serve stale data when a provider fails. Implementations are safe for concurrent use;
// concurrent writes to one key resolve last-writer-wins.
type Store interface {
	// Get returns the entry for key, fresh or stale. ok is false when nothing usable is held.
	Get(ctx context.Context, key string) (e Entry, ok bool, err error)
	Set(ctx context.Context, e Entry) error
}
