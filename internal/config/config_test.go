package config

import (
	"strings"
	"testing"
	"time"

	"github.com/kitebird-capital/terminal/internal/domain"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate, got %v", err)
	}
}

func TestDefaultsValues(t *testing.T) {
	cfg := Defaults()

	if cfg.Refresh.Interval.Duration != 5*time.Minute {
		t.Fatalf("want 5m refresh interval, got %v", cfg.Refresh.Interval.Duration)
	}
	if cfg.Funding.TopN != 10 {
		t.Fatalf("want top_n 10, got %d", cfg.Funding.TopN)
	}
	if cfg.Arbitrage.SimilarityThreshold != 0.55 {
		t.Fatalf("want similarity threshold 0.55, got %v", cfg.Arbitrage.SimilarityThreshold)
	}
	if cfg.Arbitrage.MinSpreadPct != 3.0 {
		t.Fatalf("want min spread 3.0, got %v", cfg.Arbitrage.MinSpreadPct)
	}
	if cfg.Arbitrage.MaxOpportunities != 20 {
		t.Fatalf("want max opportunities 20, got %d", cfg.Arbitrage.MaxOpportunities)
	}

	want := []domain.Venue{domain.VenueBinance, domain.VenueBybit, domain.VenueGateIO}
	got := cfg.FundingPriority()
	if len(got) != len(want) {
		t.Fatalf("want priority %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("priority[%d]: want %v, got %v", i, want[i], got[i])
		}
	}
}

func TestValidateRejectsUnknownVenue(t *testing.T) {
	cfg := Defaults()
	cfg.Funding.Priority = []string{"Binance", "FTX"}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("want error for unknown funding venue")
	}
	if !strings.Contains(err.Error(), "FTX") {
		t.Fatalf("error should name the bad venue, got %v", err)
	}
}

func TestValidateRejectsDuplicateVenue(t *testing.T) {
	cfg := Defaults()
	cfg.Funding.Priority = []string{"Binance", "Binance"}

	if err := cfg.Validate(); err == nil {
		t.Fatal("want error for duplicate venue in priority")
	}
}

func TestValidateRejectsBadThresholds(t *testing.T) {
	cfg := Defaults()
	cfg.Arbitrage.SimilarityThreshold = 1.5
	cfg.Arbitrage.MaxOpportunities = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("want validation error")
	}
	if !strings.Contains(err.Error(), "similarity_threshold") {
		t.Fatalf("want similarity_threshold named, got %v", err)
	}
	if !strings.Contains(err.Error(), "max_opportunities") {
		t.Fatalf("want max_opportunities named, got %v", err)
	}
}

func TestValidateRejectsHalfTelegramCredentials(t *testing.T) {
	cfg := Defaults()
	cfg.Notify.TelegramToken = "token"

	if err := cfg.Validate(); err == nil {
		t.Fatal("want error when telegram_chat_id is missing")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("KITEBIRD_REFRESH_INTERVAL", "90s")
	t.Setenv("KITEBIRD_FUNDING_PRIORITY", "Bybit, Binance")
	t.Setenv("KITEBIRD_FUNDING_TOP_N", "5")
	t.Setenv("KITEBIRD_ARBITRAGE_MIN_SPREAD_PCT", "4.5")
	t.Setenv("KITEBIRD_SERVER_ENABLED", "false")
	t.Setenv("KITEBIRD_LOG_LEVEL", "debug")

	cfg := Defaults()
	applyEnvOverrides(&cfg)

	if cfg.Refresh.Interval.Duration != 90*time.Second {
		t.Fatalf("want 90s interval, got %v", cfg.Refresh.Interval.Duration)
	}
	if len(cfg.Funding.Priority) != 2 || cfg.Funding.Priority[0] != "Bybit" {
		t.Fatalf("want priority [Bybit Binance], got %v", cfg.Funding.Priority)
	}
	if cfg.Funding.TopN != 5 {
		t.Fatalf("want top_n 5, got %d", cfg.Funding.TopN)
	}
	if cfg.Arbitrage.MinSpreadPct != 4.5 {
		t.Fatalf("want min spread 4.5, got %v", cfg.Arbitrage.MinSpreadPct)
	}
	if cfg.Server.Enabled {
		t.Fatal("want server disabled via env")
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("want log level debug, got %q", cfg.LogLevel)
	}
}

func TestEnvOverrideIgnoresMalformedValues(t *testing.T) {
	t.Setenv("KITEBIRD_FUNDING_TOP_N", "not-a-number")
	t.Setenv("KITEBIRD_REFRESH_INTERVAL", "soon")

	cfg := Defaults()
	applyEnvOverrides(&cfg)

	if cfg.Funding.TopN != 10 {
		t.Fatalf("malformed int must keep default, got %d", cfg.Funding.TopN)
	}
	if cfg.Refresh.Interval.Duration != 5*time.Minute {
		t.Fatalf("malformed duration must keep default, got %v", cfg.Refresh.Interval.Duration)
	}
}
