package storage

import (
	"context"
	"fmt"
	"time"
)

// PreferenceStore keeps per-client UI state in Redis, currently just the last
// symbol a client selected on the chart. Entries expire so abandoned clients
// do not accumulate forever.
type PreferenceStore struct {
	cache *RedisCache
	ttl   time.Duration
}

// NewPreferenceStore creates a preference store.
func NewPreferenceStore(cache *RedisCache, ttl time.Duration) *PreferenceStore {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &PreferenceStore{cache: cache, ttl: ttl}
}

func preferenceKey(clientID string) string {
	return fmt.Sprintf("pref:symbol:%s", clientID)
}

// SetSymbol records the client's selected symbol.
func (s *PreferenceStore) SetSymbol(ctx context.Context, clientID, symbol string) error {
	return s.cache.Set(ctx, preferenceKey(clientID), symbol, s.ttl)
}

// GetSymbol returns the client's selected symbol, or "" when none is stored.
func (s *PreferenceStore) GetSymbol(ctx context.Context, clientID string) (string, error) {
	symbol, err := s.cache.Get(ctx, preferenceKey(clientID))
	if err != nil {
		if IsMiss(err) {
			return "", nil
		}
		return "", err
	}
	return symbol, nil
}
