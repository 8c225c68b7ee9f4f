// Package bybit fetches perpetual funding rates from the Bybit v5 market
// API.
package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/kitebird-capital/terminal/internal/domain"
)

const userAgent = "kitebird-terminal/1.0 (market-data poller)"

// Client is the REST client for Bybit linear-contract tickers.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Bybit client. baseURL is the API root, e.g.
// "https://api.bybit.com".
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Venue identifies this adapter's source.
func (c *Client) Venue() domain.Venue { return domain.VenueBybit }

// tickersResponse mirrors the v5 tickers payload: the list is nested one
// level down and rates are string-encoded.
type tickersResponse struct {
	Result struct {
		List []struct {
			Symbol      string `json:"symbol"`
			FundingRate string `json:"fundingRate"`
		} `json:"list"`
	} `json:"result"`
}

// FundingRates returns the current funding rate for every linear
// perpetual. Zero rates mean the venue did not publish funding for that
// contract and are dropped; malformed entries are skipped.
func (c *Client) FundingRates(ctx context.Context) ([]domain.FundingRecord, error) {
	body, err := c.doGet(ctx, "/v5/market/tickers?category=linear")
	if err != nil {
		return nil, fmt.Errorf("bybit: get tickers: %w", err)
	}

	var resp tickersResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("bybit: decode tickers: %w", err)
	}

	records := make([]domain.FundingRecord, 0, len(resp.Result.List))
	for _, t := range resp.Result.List {
		rate, err := strconv.ParseFloat(t.FundingRate, 64)
		if err != nil || rate == 0 {
			continue
		}
		records = append(records, domain.FundingRecord{
			Symbol: t.Symbol,
			Rate:   rate,
			Venue:  domain.VenueBybit,
		})
	}
	return records, nil
}

// doGet sends an unauthenticated GET request to the Bybit API.
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

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, truncate(body, 256))
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
