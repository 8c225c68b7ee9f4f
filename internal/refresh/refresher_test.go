package refresh

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/kitebird-capital/terminal/internal/arbitrage"
	"github.com/kitebird-capital/terminal/internal/domain"
)

type stubFundingSource struct {
	venue   domain.Venue
	records []domain.FundingRecord
	err     error
}

func (s *stubFundingSource) Venue() domain.Venue { return s.venue }

func (s *stubFundingSource) FundingRates(ctx context.Context) ([]domain.FundingRecord, error) {
	return s.records, s.err
}

type stubQuoteSource struct {
	venue  domain.Venue
	quotes []domain.PredictionQuote
	err    error
}

func (s *stubQuoteSource) Venue() domain.Venue { return s.venue }

func (s *stubQuoteSource) Quotes(ctx context.Context, limit int) ([]domain.PredictionQuote, error) {
	return s.quotes, s.err
}

type stubVolSource struct {
	primary   []float64
	secondary []float64
	err       error
}

func (s *stubVolSource) Series(ctx context.Context) ([]float64, []float64, error) {
	return s.primary, s.secondary, s.err
}

type recordingSink struct {
	name string
	got  []*domain.Snapshot
	err  error
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Publish(ctx context.Context, snap *domain.Snapshot) error {
	s.got = append(s.got, snap)
	return s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() Config {
	return Config{
		Interval:       time.Minute,
		FundingTimeout: time.Second,
		MarketTimeout:  time.Second,
		MarketLimit:    100,
		TopN:           10,
		Detector:       arbitrage.Config{},
	}
}

func newTestRefresher(
	funding []FundingSource,
	quoteA, quoteB QuoteSource,
	vol VolatilitySource,
	sinks []SnapshotSink,
) (*Refresher, *Cache) {
	cache := NewCache()
	r := New(testConfig(), funding, quoteA, quoteB, vol, cache, sinks, nil, testLogger())
	return r, cache
}

func TestRunCycleHappyPath(t *testing.T) {
	funding := []FundingSource{
		&stubFundingSource{venue: domain.VenueBinance, records: []domain.FundingRecord{
			{Symbol: "BTCUSDT", Rate: 0.0001, Venue: domain.VenueBinance},
		}},
		&stubFundingSource{venue: domain.VenueBybit, records: []domain.FundingRecord{
			{Symbol: "BTCUSD", Rate: 0.0003, Venue: domain.VenueBybit},
			{Symbol: "ETHUSDT", Rate: -0.0002, Venue: domain.VenueBybit},
		}},
	}
	quoteA := &stubQuoteSource{venue: domain.VenuePolymarket, quotes: []domain.PredictionQuote{
		{Title: "fed rate cut in march", RawTitle: "Fed rate cut in March", YesPrice: 0.62, Venue: domain.VenuePolymarket},
	}}
	quoteB := &stubQuoteSource{venue: domain.VenueKalshi, quotes: []domain.PredictionQuote{
		{Title: "fed rate cut in march", RawTitle: "Fed rate cut in March", YesPrice: 0.51, Venue: domain.VenueKalshi},
	}}
	vol := &stubVolSource{primary: []float64{19.2}, secondary: []float64{20.0}}
	sink := &recordingSink{name: "test"}

	r, cache := newTestRefresher(funding, quoteA, quoteB, vol, []SnapshotSink{sink})

	snap := r.RunCycle(context.Background())

	if snap.CycleID == "" {
		t.Fatal("want non-empty cycle id")
	}
	if snap.UpdatedAt.IsZero() {
		t.Fatal("want UpdatedAt to be stamped")
	}

	// Funding: BTC deduped in priority order, Binance wins.
	if snap.Funding.Error != "" {
		t.Fatalf("unexpected funding error %q", snap.Funding.Error)
	}
	lb := snap.Funding.Leaderboard
	if lb == nil || lb.Total != 2 {
		t.Fatalf("want 2 leaderboard entries, got %+v", lb)
	}
	if lb.TopPositive[0].Key != "BTC" || lb.TopPositive[0].Rate != 0.0001 {
		t.Fatalf("want BTC from Binance on top, got %+v", lb.TopPositive[0])
	}

	// Arbitrage: the matched pair qualifies.
	if snap.Arbitrage.Scan == nil || len(snap.Arbitrage.Scan.Opportunities) != 1 {
		t.Fatalf("want 1 arbitrage opportunity, got %+v", snap.Arbitrage.Scan)
	}

	// Volatility: 19.2 is above the selling threshold.
	if snap.Volatility.Snapshot == nil || snap.Volatility.Snapshot.Signal != domain.SignalSellSpreads {
		t.Fatalf("want sell_spreads signal, got %+v", snap.Volatility.Snapshot)
	}

	// Cache and sink both received the same snapshot.
	cached, ok := cache.Get()
	if !ok || cached != snap {
		t.Fatal("cache does not hold the published snapshot")
	}
	if len(sink.got) != 1 || sink.got[0] != snap {
		t.Fatal("sink did not receive the published snapshot")
	}
}

func TestRunCycleSingleFundingVenueFailure(t *testing.T) {
	funding := []FundingSource{
		&stubFundingSource{venue: domain.VenueBinance, err: errors.New("binance: HTTP 503")},
		&stubFundingSource{venue: domain.VenueBybit, records: []domain.FundingRecord{
			{Symbol: "BTCUSD", Rate: 0.0003, Venue: domain.VenueBybit},
		}},
	}
	quoteA := &stubQuoteSource{venue: domain.VenuePolymarket}
	quoteB := &stubQuoteSource{venue: domain.VenueKalshi}
	vol := &stubVolSource{primary: []float64{15.0}}

	r, _ := newTestRefresher(funding, quoteA, quoteB, vol, nil)

	snap := r.RunCycle(context.Background())

	if snap.Funding.Error != "" {
		t.Fatalf("one healthy venue remains, section error must be empty, got %q", snap.Funding.Error)
	}
	if _, ok := snap.Funding.VenueErrors[domain.VenueBinance]; !ok {
		t.Fatal("want Binance recorded in venue errors")
	}
	if snap.Funding.Leaderboard == nil || snap.Funding.Leaderboard.Total != 1 {
		t.Fatalf("want leaderboard from surviving venue, got %+v", snap.Funding.Leaderboard)
	}
}

func TestRunCycleAllFundingVenuesFail(t *testing.T) {
	funding := []FundingSource{
		&stubFundingSource{venue: domain.VenueBinance, err: errors.New("down")},
		&stubFundingSource{venue: domain.VenueBybit, err: errors.New("down")},
	}
	quoteA := &stubQuoteSource{venue: domain.VenuePolymarket}
	quoteB := &stubQuoteSource{venue: domain.VenueKalshi}
	vol := &stubVolSource{primary: []float64{15.0}}

	r, _ := newTestRefresher(funding, quoteA, quoteB, vol, nil)

	snap := r.RunCycle(context.Background())

	if snap.Funding.Error == "" {
		t.Fatal("want section error when every funding venue fails")
	}
	if snap.Funding.Leaderboard != nil {
		t.Fatalf("want nil leaderboard, got %+v", snap.Funding.Leaderboard)
	}
	if len(snap.Funding.VenueErrors) != 2 {
		t.Fatalf("want 2 venue errors, got %d", len(snap.Funding.VenueErrors))
	}

	// Other sections still populate.
	if snap.Volatility.Snapshot == nil {
		t.Fatal("volatility section must not be affected by funding outage")
	}
	if snap.Arbitrage.Scan == nil {
		t.Fatal("arbitrage section must not be affected by funding outage")
	}
}

func TestRunCycleOnePredictionVenueFailure(t *testing.T) {
	funding := []FundingSource{
		&stubFundingSource{venue: domain.VenueBinance},
	}
	quoteA := &stubQuoteSource{venue: domain.VenuePolymarket, err: errors.New("gamma down")}
	quoteB := &stubQuoteSource{venue: domain.VenueKalshi, quotes: []domain.PredictionQuote{
		{Title: "fed rate cut in march", RawTitle: "Fed rate cut in March", YesPrice: 0.51, Venue: domain.VenueKalshi},
	}}
	vol := &stubVolSource{primary: []float64{15.0}}

	r, _ := newTestRefresher(funding, quoteA, quoteB, vol, nil)

	snap := r.RunCycle(context.Background())

	if snap.Arbitrage.Error != "" {
		t.Fatalf("one venue up, section error must be empty, got %q", snap.Arbitrage.Error)
	}
	scan := snap.Arbitrage.Scan
	if scan == nil {
		t.Fatal("want counts-only scan, got nil")
	}
	if scan.VenueACount != 0 || scan.VenueBCount != 1 {
		t.Fatalf("want counts 0/1, got %d/%d", scan.VenueACount, scan.VenueBCount)
	}
	if len(scan.Opportunities) != 0 {
		t.Fatalf("want no opportunities, got %d", len(scan.Opportunities))
	}
	if _, ok := snap.Arbitrage.VenueErrors[domain.VenuePolymarket]; !ok {
		t.Fatal("want Polymarket recorded in venue errors")
	}
}

func TestRunCycleBothPredictionVenuesFail(t *testing.T) {
	funding := []FundingSource{
		&stubFundingSource{venue: domain.VenueBinance},
	}
	quoteA := &stubQuoteSource{venue: domain.VenuePolymarket, err: errors.New("down")}
	quoteB := &stubQuoteSource{venue: domain.VenueKalshi, err: errors.New("down")}
	vol := &stubVolSource{primary: []float64{15.0}}

	r, _ := newTestRefresher(funding, quoteA, quoteB, vol, nil)

	snap := r.RunCycle(context.Background())

	if snap.Arbitrage.Error == "" {
		t.Fatal("want section error when both prediction venues fail")
	}
	if snap.Arbitrage.Scan != nil {
		t.Fatalf("want nil scan, got %+v", snap.Arbitrage.Scan)
	}
}

func TestRunCycleVolatilityFailure(t *testing.T) {
	funding := []FundingSource{
		&stubFundingSource{venue: domain.VenueBinance},
	}
	quoteA := &stubQuoteSource{venue: domain.VenuePolymarket}
	quoteB := &stubQuoteSource{venue: domain.VenueKalshi}
	vol := &stubVolSource{err: errors.New("yahoo: HTTP 429")}

	r, _ := newTestRefresher(funding, quoteA, quoteB, vol, nil)

	snap := r.RunCycle(context.Background())

	if snap.Volatility.Error == "" {
		t.Fatal("want volatility section error")
	}
	if snap.Volatility.Snapshot != nil {
		t.Fatalf("want nil volatility snapshot, got %+v", snap.Volatility.Snapshot)
	}
}

func TestRunCycleSinkFailureIsNotFatal(t *testing.T) {
	funding := []FundingSource{
		&stubFundingSource{venue: domain.VenueBinance},
	}
	quoteA := &stubQuoteSource{venue: domain.VenuePolymarket}
	quoteB := &stubQuoteSource{venue: domain.VenueKalshi}
	vol := &stubVolSource{primary: []float64{15.0}}

	failing := &recordingSink{name: "failing", err: errors.New("sink down")}
	healthy := &recordingSink{name: "healthy"}

	r, cache := newTestRefresher(funding, quoteA, quoteB, vol, []SnapshotSink{failing, healthy})

	snap := r.RunCycle(context.Background())

	if len(healthy.got) != 1 {
		t.Fatal("healthy sink must still receive the snapshot")
	}
	if cached, ok := cache.Get(); !ok || cached != snap {
		t.Fatal("cache must be updated despite sink failure")
	}
}
