package pricesource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cardvault/ledger/internal/domain"
)

// ErrCardUnknown indicates that the catalog has no entry for a card id.
var ErrCardUnknown = errors.New("card not found in catalog")

// CatalogClient fetches raw price quotes for a card from the catalog service.
type CatalogClient interface {
	FetchQuotes(ctx context.Context, cardID string) (domain.SourceQuotes, error)
}

// HTTPCatalogClient implements CatalogClient against the catalog's JSON API.
type HTTPCatalogClient struct {
	baseURL    string
	httpClient *http.Client
	retryDelay time.Duration
	maxRetries int
}

// NewHTTPCatalogClient creates a new catalog API client.
func NewHTTPCatalogClient(baseURL string, retryDelay time.Duration, maxRetries int) *HTTPCatalogClient {
	return &HTTPCatalogClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retryDelay: retryDelay,
		maxRetries: maxRetries,
	}
}

// FetchQuotes fetches all known source quotes for a card. A card with no
// price data at all yields empty SourceQuotes, not an error.
func (c *HTTPCatalogClient) FetchQuotes(ctx context.Context, cardID string) (domain.SourceQuotes, error) {
	u := fmt.Sprintf("%s/cards/%s/prices", c.baseURL, url.PathEscape(cardID))

	body, err := c.fetchWithRetry(ctx, u)
	if err != nil {
		return domain.SourceQuotes{}, err
	}

	// Parse: {"tcg":{"market":4.20,"mid":5.00},"cm":{"lowest":3.1,...},"fallback":{"price":4.0}}
	var quotes domain.SourceQuotes
	if err := json.Unmarshal(body, &quotes); err != nil {
		return domain.SourceQuotes{}, fmt.Errorf("parsing catalog response: %w", err)
	}

	return quotes, nil
}

func (c *HTTPCatalogClient) fetchWithRetry(ctx context.Context, url string) ([]byte, error) {
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
			return nil, fmt.Errorf("creating catalog request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("catalog request failed: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading catalog response: %w", err)
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return body, nil
		case resp.StatusCode == http.StatusNotFound:
			return nil, ErrCardUnknown
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = fmt.Errorf("catalog HTTP %d (attempt %d/%d)", resp.StatusCode, attempt+1, c.maxRetries+1)
			continue
		default:
			return nil, fmt.Errorf("catalog HTTP %d: %s", resp.StatusCode, string(body))
		}
	}

	return nil, lastErr
}
