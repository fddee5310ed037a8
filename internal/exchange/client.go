package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tryDmitriyCatch/crypto-api/internal/domain"
)

// Failure kinds for quote lookups. Callers distinguish them with errors.Is.
var (
	// ErrConnection is a transport-level failure reaching the provider. Retryable.
	ErrConnection = errors.New("quote provider unreachable")
	// ErrProviderServer is a 5xx response from the provider. Retryable with backoff.
	ErrProviderServer = errors.New("quote provider server error")
	// ErrProviderClient is a 4xx response (bad request, unknown ticker, auth). Not retried.
	ErrProviderClient = errors.New("quote provider rejected request")
	// ErrTooManyRedirects is an excessive redirect chain. Not retried.
	ErrTooManyRedirects = errors.New("quote provider redirect limit exceeded")
	// ErrMalformedResponse is a body that does not decode into a usable rate. Not retried.
	ErrMalformedResponse = errors.New("malformed quote response")
)

// Client fetches spot exchange rates from a CoinAPI-compatible provider.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
}

// NewClient creates a quote provider client. Only transport failures and
// provider 5xx responses are retried, with exponential backoff.
func NewClient(baseURL, apiKey string, maxRetries int, baseDelay time.Duration, maxRedirects int) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return ErrTooManyRedirects
				}
				return nil
			},
		},
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
	}
}

// rateResponse is the subset of the provider payload the client consumes.
type rateResponse struct {
	Rate *decimal.Decimal `json:"rate"`
	Time time.Time        `json:"time"`
}

// GetRate fetches the spot rate for one unit of base expressed in quote.
// An empty base returns an empty rate without calling the provider: absent
// currencies are skipped upstream rather than treated as errors.
func (c *Client) GetRate(ctx context.Context, base, quote string) (domain.ExchangeRate, error) {
	if base == "" {
		return domain.ExchangeRate{}, nil
	}

	url := fmt.Sprintf("%s/v1/exchangerate/%s/%s", c.baseURL, base, quote)

	body, err := c.fetchWithRetry(ctx, url)
	if err != nil {
		return domain.ExchangeRate{}, err
	}

	var payload rateResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.Warn("quote response failed to decode", "base", base, "quote", quote, "error", err)
		return domain.ExchangeRate{}, fmt.Errorf("%w: %s/%s: %v", ErrMalformedResponse, base, quote, err)
	}
	if payload.Rate == nil || !payload.Rate.IsPositive() {
		slog.Warn("quote response missing positive rate", "base", base, "quote", quote)
		return domain.ExchangeRate{}, fmt.Errorf("%w: %s/%s: no positive rate in payload", ErrMalformedResponse, base, quote)
	}

	observed := payload.Time
	if observed.IsZero() {
		observed = time.Now()
	}

	return domain.ExchangeRate{
		Base:       base,
		Quote:      quote,
		Rate:       *payload.Rate,
		ObservedAt: observed,
	}, nil
}

func (c *Client) fetchWithRetry(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries+1; attempt++ {
		if attempt > 0 {
			delay := c.baseDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		body, err := c.fetchOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		if !retryable(err) {
			return nil, err
		}
		lastErr = err
		slog.Warn("quote fetch failed, retrying", "attempt", attempt+1, "maxAttempts", c.maxRetries+1, "error", err)
	}
	return nil, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating quote request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-CoinAPI-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, ErrTooManyRedirects) {
			return nil, fmt.Errorf("%w: %s", ErrTooManyRedirects, url)
		}
		// Caller cancellation is not a provider failure
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrConnection, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: HTTP %d", ErrProviderServer, resp.StatusCode)
	default:
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrProviderClient, resp.StatusCode, body)
	}
}

func retryable(err error) bool {
	return errors.Is(err, ErrConnection) || errors.Is(err, ErrProviderServer)
}
