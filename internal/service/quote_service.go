package service

import (
	"context"

	"github.com/trade-board/internal/circuitbreaker"
	"github.com/trade-board/internal/config"
	"github.com/trade-board/internal/logging"
	"github.com/trade-board/internal/models"
	"github.com/trade-board/internal/symbols"
)

// QuoteFetcher fetches a price series for a canonical symbol.
type QuoteFetcher interface {
	FetchQuotes(ctx context.Context, symbol, interval, rangeStr string) ([]models.Quote, error)
}

// QuoteCache caches price series between refreshes.
type QuoteCache interface {
	Get(ctx context.Context, symbol, interval, rangeStr string) (*models.QuoteSeries, error)
	Set(ctx context.Context, series *models.QuoteSeries) error
}

// QuoteService serves price series for the chart, caching fetched series for
// a short TTL. A failed fetch yields an empty series rather than an error;
// the chart simply renders empty, the way the dashboard behaves when the
// quote API is down.
type QuoteService struct {
	fetcher   QuoteFetcher
	cache     QuoteCache
	breaker   *circuitbreaker.CircuitBreaker
	symbolMap symbols.Map
	interval  string
	rangeStr  string
}

// NewQuoteService creates a quote service. cache may be nil, in which case
// every request goes to the quote API.
func NewQuoteService(fetcher QuoteFetcher, cache QuoteCache, symbolMap symbols.Map, cfg *config.QuotesConfig) *QuoteService {
	return &QuoteService{
		fetcher:   fetcher,
		cache:     cache,
		breaker:   circuitbreaker.New(circuitbreaker.DefaultConfig("quote-api")),
		symbolMap: symbolMap,
		interval:  cfg.Interval,
		rangeStr:  cfg.Range,
	}
}

// Symbols returns the canonical symbols available for charting.
func (s *QuoteService) Symbols() []string {
	return s.symbolMap.Canonical()
}

// GetQuotes returns the price series for a canonical symbol. Empty interval
// or range fall back to the configured defaults.
func (s *QuoteService) GetQuotes(ctx context.Context, symbol, interval, rangeStr string) *models.QuoteSeries {
	if interval == "" {
		interval = s.interval
	}
	if rangeStr == "" {
		rangeStr = s.rangeStr
	}

	logger := logging.FromContext(ctx).WithField("symbol", symbol)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, symbol, interval, rangeStr)
		if err != nil {
			logger.WithError(err).Warn("Quote cache read failed")
		} else if cached != nil {
			return cached
		}
	}

	series := &models.QuoteSeries{
		Symbol:   symbol,
		Interval: interval,
		Range:    rangeStr,
		Quotes:   []models.Quote{},
	}

	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		quotes, err := s.fetcher.FetchQuotes(ctx, symbol, interval, rangeStr)
		if err != nil {
			return err
		}
		series.Quotes = quotes
		return nil
	})
	if err != nil {
		logger.WithError(err).Warn("Quote fetch failed, serving empty series")
		return series
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, series); err != nil {
			logger.WithError(err).Warn("Quote cache write failed")
		}
	}

	return series
}
