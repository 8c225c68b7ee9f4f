package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func chartPayload(closes string) string {
	return `{
		"chart": {
			"result": [
				{"indicators": {"quote": [{"close": [` + closes + `]}]}}
			],
			"error": null
		}
	}`
}

func TestHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v8/finance/chart/") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("interval"); got != "1d" {
			t.Errorf("want interval=1d, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		// Nulls are market holidays and must be dropped.
		w.Write([]byte(chartPayload("14.2, null, 15.1, 16.8")))
	}))
	defer srv.Close()

	c := New(srv.URL, "^VIX", "^VIX3M", 5*time.Second)

	closes, err := c.History(context.Background(), "^VIX", "6mo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []float64{14.2, 15.1, 16.8}
	if len(closes) != len(want) {
		t.Fatalf("want %d closes, got %d", len(want), len(closes))
	}
	for i := range want {
		if closes[i] != want[i] {
			t.Fatalf("close %d: want %v, got %v", i, want[i], closes[i])
		}
	}
}

func TestHistoryAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"chart": {
				"result": [],
				"error": {"code": "Not Found", "description": "No data found"}
			}
		}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "^VIX", "^VIX3M", 5*time.Second)

	if _, err := c.History(context.Background(), "^VIX", "6mo"); err == nil {
		t.Fatal("want error when the chart payload carries an error")
	}
}

func TestSeriesSecondaryFailureTolerated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Serve the primary symbol, fail the term symbol.
		if strings.Contains(r.URL.Path, "VIX3M") {
			http.Error(w, "no data", http.StatusNotFound)
			return
		}
		w.Write([]byte(chartPayload("17.0, 18.5")))
	}))
	defer srv.Close()

	c := New(srv.URL, "^VIX", "^VIX3M", 5*time.Second)

	primary, secondary, err := c.Series(context.Background())
	if err != nil {
		t.Fatalf("secondary failure must not fail the series: %v", err)
	}
	if len(primary) != 2 {
		t.Fatalf("want 2 primary closes, got %d", len(primary))
	}
	if secondary != nil {
		t.Fatalf("want nil secondary on failure, got %v", secondary)
	}
}

func TestSeriesPrimaryFailureFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(srv.URL, "^VIX", "^VIX3M", 5*time.Second)

	if _, _, err := c.Series(context.Background()); err == nil {
		t.Fatal("want error when the primary series is unavailable")
	}
}
