// Package yahoo fetches daily closes for the volatility indexes from the
// Yahoo Finance chart API.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const userAgent = "kitebird-terminal/1.0 (market-data poller)"

// Client is the REST client for the Yahoo Finance v8 chart endpoint.
type Client struct {
	baseURL       string
	primarySymbol string // e.g. "^VIX"
	termSymbol    string // e.g. "^VIX3M"
	httpClient    *http.Client
}

// New creates a Yahoo Finance client. baseURL is the API root, e.g.
// "https://query1.finance.yahoo.com".
func New(baseURL, primarySymbol, termSymbol string, timeout time.Duration) *Client {
	return &Client{
		baseURL:       baseURL,
		primarySymbol: primarySymbol,
		termSymbol:    termSymbol,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Series returns the primary index history (6 months of daily closes,
// oldest first) and the latest few closes of the term symbol. A failure on
// the term symbol is not an error: the term structure is simply omitted
// downstream. A failure on the primary symbol is.
func (c *Client) Series(ctx context.Context) (primary, secondary []float64, err error) {
	primary, err = c.History(ctx, c.primarySymbol, "6mo")
	if err != nil {
		return nil, nil, err
	}
	secondary, _ = c.History(ctx, c.termSymbol, "5d")
	return primary, secondary, nil
}

// chartResponse mirrors the v8 chart payload. Close values may be null for
// holidays, so they decode as pointers.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// History returns the daily closes for symbol over the given range
// ("6mo", "5d", ...), oldest first, with null entries dropped.
func (c *Client) History(ctx context.Context, symbol, rng string) ([]float64, error) {
	params := url.Values{}
	params.Set("range", rng)
	params.Set("interval", "1d")

	path := "/v8/finance/chart/" + url.PathEscape(symbol) + "?" + params.Encode()
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("yahoo: chart %s: %w", symbol, err)
	}

	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("yahoo: decode chart %s: %w", symbol, err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo: chart %s: %s (%s)", symbol, resp.Chart.Error.Description, resp.Chart.Error.Code)
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: chart %s: empty result", symbol)
	}

	raw := resp.Chart.Result[0].Indicators.Quote[0].Close
	closes := make([]float64, 0, len(raw))
	for _, v := range raw {
		if v != nil {
			closes = append(closes, *v)
		}
	}
	if len(closes) == 0 {
		return nil, fmt.Errorf("yahoo: chart %s: no closes", symbol)
	}
	return closes, nil
}

// doGet sends a GET request to the chart API.
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
