package kalshi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kitebird-capital/terminal/internal/domain"
)

func TestQuotes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/markets" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("status"); got != "open" {
			t.Errorf("want status=open, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"markets": [
				{"title": "Fed rate cut in March", "yes_ask": 51, "last_price": 50},
				{"title": "", "subtitle": "Subtitle market", "yes_ask": 0, "last_price": 30},
				{"title": "Fractional quote", "yes_ask": 0.62},
				{"title": "Settled", "yes_ask": 100}
			]
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)

	quotes, err := c.Quotes(context.Background(), 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(quotes) != 3 {
		t.Fatalf("want 3 quotes (settled dropped), got %d", len(quotes))
	}
	// Cent-quoted prices are normalized to fractions.
	if quotes[0].YesPrice != 0.51 {
		t.Fatalf("want 0.51 from 51 cents, got %v", quotes[0].YesPrice)
	}
	// Subtitle is the fallback title, last_price the fallback price.
	if quotes[1].RawTitle != "Subtitle market" || quotes[1].YesPrice != 0.30 {
		t.Fatalf("unexpected fallback quote %+v", quotes[1])
	}
	// Prices already inside (0, 1) pass through untouched.
	if quotes[2].YesPrice != 0.62 {
		t.Fatalf("want 0.62 unchanged, got %v", quotes[2].YesPrice)
	}
	if quotes[0].Venue != domain.VenueKalshi {
		t.Fatalf("want venue Kalshi, got %v", quotes[0].Venue)
	}
}

func TestQuotesStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusUnauthorized, domain.ErrUnauthorized},
		{http.StatusForbidden, domain.ErrUnauthorized},
		{http.StatusTooManyRequests, domain.ErrRateLimited},
	}

	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))

		c := NewClient(srv.URL, 5*time.Second)
		_, err := c.Quotes(context.Background(), 50)
		srv.Close()

		if !errors.Is(err, tc.want) {
			t.Fatalf("status %d: want %v, got %v", tc.status, tc.want, err)
		}
	}
}
