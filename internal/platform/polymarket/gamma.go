// Package polymarket fetches active prediction markets from the Polymarket
// Gamma API.
package polymarket

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

// GammaClient is the REST client for the Polymarket Gamma API, which
// provides market discovery and metadata.
type GammaClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewGammaClient creates a Gamma API client. baseURL is the API root, e.g.
// "https://gamma-api.polymarket.com".
func NewGammaClient(baseURL string, timeout time.Duration) *GammaClient {
	return &GammaClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Venue identifies this adapter's source.
func (g *GammaClient) Venue() domain.Venue { return domain.VenuePolymarket }

// apiMarket mirrors the Gamma markets payload. OutcomePrices is a
// string-encoded JSON array of decimal strings ("[\"0.62\", \"0.38\"]");
// Tokens is the fallback price source for markets that omit it.
type apiMarket struct {
	Question      string `json:"question"`
	Title         string `json:"title"`
	OutcomePrices string `json:"outcomePrices"`
	Tokens        []struct {
		Price float64 `json:"price"`
	} `json:"tokens"`
}

// Quotes returns up to limit open markets ordered by 24h volume, each with
// its YES price. Markets without a resolvable price inside (0, 1) are
// skipped record by record; only transport and payload-level failures are
// returned as errors.
func (g *GammaClient) Quotes(ctx context.Context, limit int) ([]domain.PredictionQuote, error) {
	params := url.Values{}
	params.Set("closed", "false")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("order", "volume24hr")
	params.Set("ascending", "false")

	body, err := g.doGet(ctx, "/markets?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("polymarket/gamma: get markets: %w", err)
	}

	var markets []apiMarket
	if err := json.Unmarshal(body, &markets); err != nil {
		return nil, fmt.Errorf("polymarket/gamma: decode markets: %w", err)
	}

	quotes := make([]domain.PredictionQuote, 0, len(markets))
	for i := range markets {
		m := &markets[i]
		title := m.Question
		if title == "" {
			title = m.Title
		}
		yes := m.yesPrice()
		if title == "" || yes <= 0 || yes >= 1 {
			continue
		}
		quotes = append(quotes, domain.PredictionQuote{
			Title:    normalize.Title(title),
			RawTitle: title,
			YesPrice: yes,
			Venue:    domain.VenuePolymarket,
		})
	}
	return quotes, nil
}

// yesPrice extracts the YES outcome price, preferring the string-encoded
// outcomePrices array and falling back to the first token's price. Returns
// 0 when no price can be recovered.
func (m *apiMarket) yesPrice() float64 {
	if m.OutcomePrices != "" {
		var prices []string
		if err := json.Unmarshal([]byte(m.OutcomePrices), &prices); err == nil && len(prices) > 0 {
			if p, err := strconv.ParseFloat(prices[0], 64); err == nil && p > 0 {
				return p
			}
		}
	}
	if len(m.Tokens) > 0 {
		return m.Tokens[0].Price
	}
	return 0
}

// doGet sends an unauthenticated GET request to the Gamma API.
func (g *GammaClient) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := g.httpClient.Do(req)
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
