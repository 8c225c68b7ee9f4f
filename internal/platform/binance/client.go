// Package binance fetches perpetual funding rates from Binance USD-M
// futures via the official SDK's premium-index endpoint.
package binance

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2/futures"

	"github.com/kitebird-capital/terminal/internal/domain"
)

// Client wraps the go-binance futures client for funding-rate reads. No
// API key is needed; the premium index is a public endpoint.
type Client struct {
	fc *futures.Client
}

// New creates a Binance futures client. baseURL overrides the production
// endpoint when non-empty (tests, mirrors).
func New(baseURL string, timeout time.Duration) *Client {
	fc := futures.NewClient("", "")
	if baseURL != "" {
		fc.BaseURL = baseURL
	}
	fc.HTTPClient = &http.Client{Timeout: timeout}
	return &Client{fc: fc}
}

// Venue identifies this adapter's source.
func (c *Client) Venue() domain.Venue { return domain.VenueBinance }

// FundingRates returns the last funding rate for every perpetual contract.
// Zero rates mean the venue did not publish funding for that contract and
// are dropped; individual malformed entries are skipped, not fatal.
func (c *Client) FundingRates(ctx context.Context) ([]domain.FundingRecord, error) {
	indexes, err := c.fc.NewPremiumIndexService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance: premium index: %w", err)
	}

	records := make([]domain.FundingRecord, 0, len(indexes))
	for _, idx := range indexes {
		rate, err := strconv.ParseFloat(idx.LastFundingRate, 64)
		if err != nil || rate == 0 {
			continue
		}
		records = append(records, domain.FundingRecord{
			Symbol: idx.Symbol,
			Rate:   rate,
			Venue:  domain.VenueBinance,
		})
	}
	return records, nil
}
