package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// tradeRangeRequest is the POST body both ProjectX-derived platforms accept.
type tradeRangeRequest struct {
	TradingAccountID int64  `json:"tradingAccountId"`
	Start            string `json:"start"`
	End              string `json:"end"`
}

// platformClient holds the HTTP plumbing shared by the platform clients. The
// venue-specific payload decoding lives in the concrete clients.
type platformClient struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

func newPlatformClient(baseURL string, timeout time.Duration, limiter *rate.Limiter) platformClient {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return platformClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		limiter: limiter,
	}
}

// postTradeRange performs the Trade/range POST and returns the raw response
// body. A failed or timed-out request is reported to the caller, who skips
// the affected account share; there is no retry on trade fetches.
func (c *platformClient) postTradeRange(ctx context.Context, accountID int64, start, end time.Time) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("request pacing interrupted: %w", err)
		}
	}

	payload := tradeRangeRequest{
		TradingAccountID: accountID,
		Start:            start.UTC().Format(time.RFC3339),
		End:              end.UTC().Format(time.RFC3339),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	url := c.baseURL + "/Trade/range"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d - %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
