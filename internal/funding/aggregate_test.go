package funding

import (
	"fmt"
	"math"
	"testing"

	"github.com/kitebird-capital/terminal/internal/domain"
)

func TestAggregateDedupFirstVenueWins(t *testing.T) {
	records := []domain.FundingRecord{
		{Symbol: "BTCUSDT", Rate: 0.0001, Venue: domain.VenueBinance},
		{Symbol: "BTCUSD", Rate: 0.0003, Venue: domain.VenueBybit},
	}

	lb := Aggregate(records, 10)

	if lb.Total != 1 {
		t.Fatalf("want 1 deduped entry, got %d", lb.Total)
	}
	e := lb.TopPositive[0]
	if e.Key != "BTC" {
		t.Fatalf("want key BTC, got %q", e.Key)
	}
	if e.Rate != 0.0001 {
		t.Fatalf("want Binance rate 0.0001 to win, got %v", e.Rate)
	}
	if e.Venue != domain.VenueBinance {
		t.Fatalf("want venue Binance, got %v", e.Venue)
	}
	if math.Abs(e.Annualized-0.1095) > 1e-12 {
		t.Fatalf("want annualized 0.1095, got %v", e.Annualized)
	}
}

func TestAggregateDedupDeterministic(t *testing.T) {
	// Same records fed twice in identical priority order must produce the
	// same leaderboard.
	records := []domain.FundingRecord{
		{Symbol: "ETHUSDT", Rate: 0.0002, Venue: domain.VenueBinance},
		{Symbol: "ETHUSDT", Rate: -0.0001, Venue: domain.VenueBybit},
		{Symbol: "SOLUSDT", Rate: 0.0004, Venue: domain.VenueBybit},
		{Symbol: "SOLUSD", Rate: 0.0009, Venue: domain.VenueGateIO},
	}

	first := Aggregate(records, 10)
	second := Aggregate(records, 10)

	if first.Total != second.Total {
		t.Fatalf("totals differ: %d vs %d", first.Total, second.Total)
	}
	for i := range first.TopPositive {
		if first.TopPositive[i] != second.TopPositive[i] {
			t.Fatalf("entry %d differs: %+v vs %+v", i, first.TopPositive[i], second.TopPositive[i])
		}
	}
}

func TestAggregatePriorityOrderMatters(t *testing.T) {
	a := domain.FundingRecord{Symbol: "ETHUSDT", Rate: 0.0002, Venue: domain.VenueBinance}
	b := domain.FundingRecord{Symbol: "ETHUSD", Rate: 0.0005, Venue: domain.VenueBybit}

	binanceFirst := Aggregate([]domain.FundingRecord{a, b}, 10)
	bybitFirst := Aggregate([]domain.FundingRecord{b, a}, 10)

	if got := binanceFirst.TopPositive[0].Rate; got != 0.0002 {
		t.Fatalf("binance-first: want rate 0.0002, got %v", got)
	}
	if got := bybitFirst.TopPositive[0].Rate; got != 0.0005 {
		t.Fatalf("bybit-first: want rate 0.0005, got %v", got)
	}
}

func TestAggregateLeaderboardBounds(t *testing.T) {
	var records []domain.FundingRecord
	for i := 0; i < 30; i++ {
		records = append(records, domain.FundingRecord{
			Symbol: fmt.Sprintf("SYM%02dUSDT", i),
			Rate:   float64(i-15) * 0.0001,
			Venue:  domain.VenueBinance,
		})
	}

	lb := Aggregate(records, 10)

	if len(lb.TopPositive) > 10 {
		t.Fatalf("top positive exceeds 10: %d", len(lb.TopPositive))
	}
	if len(lb.TopNegative) > 10 {
		t.Fatalf("top negative exceeds 10: %d", len(lb.TopNegative))
	}
	if lb.Total != 30 {
		t.Fatalf("want total 30, got %d", lb.Total)
	}

	// Positive side descends, negative side ascends from the bottom.
	for i := 1; i < len(lb.TopPositive); i++ {
		if lb.TopPositive[i].Rate > lb.TopPositive[i-1].Rate {
			t.Fatalf("top positive not sorted descending at %d", i)
		}
	}
	for i := 1; i < len(lb.TopNegative); i++ {
		if lb.TopNegative[i].Rate < lb.TopNegative[i-1].Rate {
			t.Fatalf("top negative not sorted ascending at %d", i)
		}
	}
}

func TestAnnualizeExactFactor(t *testing.T) {
	rates := []float64{0.0001, -0.0025, 0.01, 0}
	for _, r := range rates {
		if got, want := Annualize(r), r*1095; got != want {
			t.Fatalf("Annualize(%v) = %v, want %v", r, got, want)
		}
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	lb := Aggregate(nil, 10)

	if lb.Total != 0 {
		t.Fatalf("want total 0, got %d", lb.Total)
	}
	if len(lb.TopPositive) != 0 || len(lb.TopNegative) != 0 {
		t.Fatalf("want empty sides, got %d/%d", len(lb.TopPositive), len(lb.TopNegative))
	}
	if lb.AvgRate != 0 || lb.AvgAnnualized != 0 {
		t.Fatalf("want zero averages, got %v/%v", lb.AvgRate, lb.AvgAnnualized)
	}
}

func TestAggregateFewerEntriesThanTopN(t *testing.T) {
	records := []domain.FundingRecord{
		{Symbol: "BTCUSDT", Rate: 0.0001, Venue: domain.VenueBinance},
		{Symbol: "ETHUSDT", Rate: -0.0002, Venue: domain.VenueBinance},
	}

	lb := Aggregate(records, 10)

	if len(lb.TopPositive) != 2 || len(lb.TopNegative) != 2 {
		t.Fatalf("want both sides length 2, got %d/%d", len(lb.TopPositive), len(lb.TopNegative))
	}
	if lb.TopPositive[0].Key != "BTC" {
		t.Fatalf("want BTC on top, got %q", lb.TopPositive[0].Key)
	}
	if lb.TopNegative[0].Key != "ETH" {
		t.Fatalf("want ETH most negative, got %q", lb.TopNegative[0].Key)
	}
}
