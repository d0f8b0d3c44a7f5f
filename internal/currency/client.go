package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RatesClient fetches USD-relative exchange rates from a frankfurter-style
// JSON API.
type RatesClient struct {
	baseURL    string
	httpClient *http.Client
	retryDelay time.Duration
	maxRetries int
}

// NewRatesClient creates a new exchange-rate API client.
func NewRatesClient(baseURL string, retryDelay time.Duration, maxRetries int) *RatesClient {
	return &RatesClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retryDelay: retryDelay,
		maxRetries: maxRetries,
	}
}

// FetchRates fetches the latest rates relative to the reference currency.
// Returns a map of currency code -> units per 1 USD.
func (c *RatesClient) FetchRates(ctx context.Context) (map[string]float64, error) {
	url := fmt.Sprintf("%s/latest?base=%s", c.baseURL, Ref)

	body, err := c.fetchWithRetry(ctx, url)
	if err != nil {
		return nil, err
	}

	// Parse: {"base":"USD","rates":{"EUR":0.92,"GBP":0.79,...}}
	var raw struct {
		Base  string             `json:"base"`
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parsing rates response: %w", err)
	}
	if raw.Base != Ref {
		return nil, fmt.Errorf("rates API returned base %q, want %s", raw.Base, Ref)
	}

	return raw.Rates, nil
}

func (c *RatesClient) fetchWithRetry(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := range c.maxRetries + 1 {
		if attempt > 0 {
			baseDelay := c.retryDelay
			if baseDelay == 0 {
				baseDelay = 5 * time.Second
			}
			delay := baseDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("creating rates request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("rates request failed: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading rates response: %w", err)
		}

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("rates API HTTP %d (attempt %d/%d)", resp.StatusCode, attempt+1, c.maxRetries+1)
			continue
		}

		return nil, fmt.Errorf("rates API HTTP %d: %s", resp.StatusCode, string(body))
	}

	return nil, lastErr
}
