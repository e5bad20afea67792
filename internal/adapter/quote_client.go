package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/trade-board/internal/config"
	"github.com/trade-board/internal/models"
)

// QuoteClient fetches intraday price series from the Yahoo Finance chart API.
type QuoteClient struct {
	baseURL string
	client  *http.Client
}

// chartResponse mirrors the subset of the chart API payload the service
// consumes: aligned timestamp and close arrays. Closes are pointers because
// the API emits null for gaps.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

// NewQuoteClient creates a new quote API client.
func NewQuoteClient(cfg *config.QuotesConfig) *QuoteClient {
	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &QuoteClient{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// FetchQuotes fetches the price series for a canonical symbol. Points with a
// null close are dropped. The symbol is resolved as a continuous futures
// contract ("=f" suffix), matching the dashboard's chart lookup.
func (c *QuoteClient) FetchQuotes(ctx context.Context, symbol, interval, rangeStr string) ([]models.Quote, error) {
	endpoint := fmt.Sprintf("%s%s=f?interval=%s&range=%s",
		c.baseURL, url.PathEscape(symbol), url.QueryEscape(interval), url.QueryEscape(rangeStr))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d - %s", resp.StatusCode, string(body))
	}

	var payload chartResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse chart response: %w", err)
	}

	if len(payload.Chart.Result) == 0 {
		return nil, fmt.Errorf("chart response has no result for %s", symbol)
	}

	result := payload.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return []models.Quote{}, nil
	}

	closes := result.Indicators.Quote[0].Close
	quotes := make([]models.Quote, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		quotes = append(quotes, models.Quote{
			Date:  time.Unix(ts, 0),
			Price: *closes[i],
		})
	}

	return quotes, nil
}
