// Package adapter provides clients for the remote trading-platform and price
// quote APIs. Each platform client normalizes its venue payload into the
// canonical RawTrade shape at the ingestion boundary.
package adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/trade-board/internal/config"
	"github.com/trade-board/internal/models"
	"github.com/trade-board/internal/types"
	"golang.org/x/time/rate"
)

// TradeFetcher fetches the raw trades of one trading account within a window.
type TradeFetcher interface {
	// FetchTradeRange returns raw trades for the account between start and
	// end (inclusive), in the order the platform delivers them. The order is
	// assumed chronological and is never re-sorted downstream.
	FetchTradeRange(ctx context.Context, accountID int64, start, end time.Time) ([]models.RawTrade, error)

	// Platform identifies which venue this fetcher talks to.
	Platform() types.PlatformID
}

// Provider selects the trade fetcher for a share's platform tag.
type Provider struct {
	fetchers map[types.PlatformID]TradeFetcher
}

// NewProvider builds a provider with clients for every supported platform.
// All clients share one request pacer so the service as a whole respects the
// configured request rate.
func NewProvider(cfg *config.PlatformsConfig) *Provider {
	limiter := rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)

	return &Provider{
		fetchers: map[types.PlatformID]TradeFetcher{
			types.PlatformTopstep:  NewTopstepClient(cfg.TopstepURL, cfg.RequestTimeout, limiter),
			types.PlatformTradeify: NewTradeifyClient(cfg.TradeifyURL, cfg.RequestTimeout, limiter),
		},
	}
}

// NewProviderWith builds a provider from explicit fetchers. Used by tests and
// by callers that need to stub a platform.
func NewProviderWith(fetchers ...TradeFetcher) *Provider {
	m := make(map[types.PlatformID]TradeFetcher, len(fetchers))
	for _, f := range fetchers {
		m[f.Platform()] = f
	}
	return &Provider{fetchers: m}
}

// Fetcher returns the client for a platform.
func (p *Provider) Fetcher(platform types.PlatformID) (TradeFetcher, error) {
	f, ok := p.fetchers[platform]
	if !ok {
		return nil, fmt.Errorf("no trade fetcher for platform %s", platform)
	}
	return f, nil
}
