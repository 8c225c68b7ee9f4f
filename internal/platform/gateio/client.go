// Package gateio fetches perpetual funding rates from the Gate.io v4
// futures API.
package gateio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kitebird-capital/terminal/internal/domain"
)

const userAgent = "kitebird-terminal/1.0 (market-data poller)"

// Client is the REST client for Gate.io USDT-settled futures contracts.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Gate.io client. baseURL is the API root, e.g.
// "https://api.gateio.ws".
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Venue identifies this adapter's source.
func (c *Client) Venue() domain.Venue { return domain.VenueGateIO }

// contract is one entry of the contracts listing. Gate.io names contracts
// "BTC_USDT" and string-encodes the funding rate.
type contract struct {
	Name        string `json:"name"`
	FundingRate string `json:"funding_rate"`
}

// FundingRates returns the current funding rate for every USDT perpetual.
// The underscore in Gate.io contract names is removed so symbols line up
// with the other venues' spelling. Zero rates mean the venue did not
// publish funding and are dropped; malformed entries are skipped.
func (c *Client) FundingRates(ctx context.Context) ([]domain.FundingRecord, error) {
	body, err := c.doGet(ctx, "/api/v4/futures/usdt/contracts")
	if err != nil {
		return nil, fmt.Errorf("gateio: get contracts: %w", err)
	}

	var contracts []contract
	if err := json.Unmarshal(body, &contracts); err != nil {
		return nil, fmt.Errorf("gateio: decode contracts: %w", err)
	}

	records := make([]domain.FundingRecord, 0, len(contracts))
	for _, ct := range contracts {
		rate, err := strconv.ParseFloat(ct.FundingRate, 64)
		if err != nil || rate == 0 {
			continue
		}
		records = append(records, domain.FundingRecord{
			Symbol: strings.ReplaceAll(ct.Name, "_", ""),
			Rate:   rate,
			Venue:  domain.VenueGateIO,
		})
	}
	return records, nil
}

// doGet sends an unauthenticated GET request to the Gate.io API.
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
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return body, nil
}
