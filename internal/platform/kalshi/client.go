// Package kalshi fetches open prediction markets from the public Kalshi
// trade API. Only the unauthenticated markets listing is used; the signed
// portfolio endpoints are out of scope for a read-only poller.
package kalshi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kitebird-capital/terminal/internal/domain"
	"github.com/kitebird-capital/terminal/internal/normalize"
)

const userAgent = "kitebird-terminal/1.0 (market-data poller)"

// Client is the REST client for the Kalshi exchange API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Kalshi client. baseURL is the API root, e.g.
// "https://api.elections.kalshi.com/trade-api/v2".
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Venue identifies this adapter's source.
func (c *Client) Venue() domain.Venue { return domain.VenueKalshi }

// apiMarket mirrors the markets payload. Prices are quoted in cents.
type apiMarket struct {
	Title     string  `json:"title"`
	Subtitle  string  `json:"subtitle"`
	YesAsk    float64 `json:"yes_ask"`
	LastPrice float64 `json:"last_price"`
}

// Quotes returns up to limit open markets with their YES price normalized
// to a fraction. Kalshi quotes in cents, so any value above 1 is divided
// by 100. Markets without a price inside (0, 1) are skipped.
func (c *Client) Quotes(ctx context.Context, limit int) ([]domain.PredictionQuote, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("status", "open")

	body, err := c.doGet(ctx, "/markets?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("kalshi: get markets: %w", err)
	}

	var resp struct {
		Markets []apiMarket `json:"markets"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("kalshi: decode markets: %w", err)
	}

	quotes := make([]domain.PredictionQuote, 0, len(resp.Markets))
	for _, m := range resp.Markets {
		title := m.Title
		if title == "" {
			title = m.Subtitle
		}
		price := m.YesAsk
		if price == 0 {
			price = m.LastPrice
		}
		if price > 1 {
			price /= 100
		}
		if title == "" || price <= 0 || price >= 1 {
			continue
		}
		quotes = append(quotes, domain.PredictionQuote{
			Title:    normalize.Title(title),
			RawTitle: title,
			YesPrice: price,
			Venue:    domain.VenueKalshi,
		})
	}
	return quotes, nil
}

// doGet sends an unauthenticated GET request to the Kalshi API.
func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	return body, nil
}

// checkStatus maps non-2xx HTTP status codes to appropriate errors.
func checkStatus(statusCode int) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("kalshi: %w", domain.ErrNotFound)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("kalshi: %w", domain.ErrUnauthorized)
	case http.StatusTooManyRequests:
		return fmt.Errorf("kalshi: %w", domain.ErrRateLimited)
	default:
		return fmt.Errorf("kalshi: HTTP %d", statusCode)
	}
}
