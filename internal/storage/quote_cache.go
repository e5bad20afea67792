package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/trade-board/internal/models"
)

// QuoteCache caches fetched price series in Redis so repeated chart requests
// within the TTL do not hit the quote API again.
type QuoteCache struct {
	cache *RedisCache
	ttl   time.Duration
}

// NewQuoteCache creates a quote cache with the given TTL.
func NewQuoteCache(cache *RedisCache, ttl time.Duration) *QuoteCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &QuoteCache{cache: cache, ttl: ttl}
}

func quoteKey(symbol, interval, rangeStr string) string {
	return fmt.Sprintf("quotes:%s:%s:%s", symbol, interval, rangeStr)
}

// Get returns the cached series for a symbol, or nil on a miss. A corrupt
// cache entry is treated as a miss.
func (c *QuoteCache) Get(ctx context.Context, symbol, interval, rangeStr string) (*models.QuoteSeries, error) {
	data, err := c.cache.Get(ctx, quoteKey(symbol, interval, rangeStr))
	if err != nil {
		if IsMiss(err) {
			return nil, nil
		}
		return nil, err
	}

	var series models.QuoteSeries
	if err := json.Unmarshal([]byte(data), &series); err != nil {
		return nil, nil
	}
	return &series, nil
}

// Set stores a series under its symbol, interval and range.
func (c *QuoteCache) Set(ctx context.Context, series *models.QuoteSeries) error {
	data, err := json.Marshal(series)
	if err != nil {
		return fmt.Errorf("failed to marshal quote series: %w", err)
	}
	return c.cache.Set(ctx, quoteKey(series.Symbol, series.Interval, series.Range), data, c.ttl)
}
