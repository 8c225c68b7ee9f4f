// Package refresh drives the periodic ingestion cycle: fetch every venue,
// derive the funding leaderboard, arbitrage scan, and volatility signal,
// and publish the bundle as one atomic snapshot.
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kitebird-capital/terminal/internal/arbitrage"
	"github.com/kitebird-capital/terminal/internal/domain"
	"github.com/kitebird-capital/terminal/internal/funding"
	"github.com/kitebird-capital/terminal/internal/volatility"
)

// FundingSource is a venue adapter for perpetual funding rates.
type FundingSource interface {
	Venue() domain.Venue
	FundingRates(ctx context.Context) ([]domain.FundingRecord, error)
}

// QuoteSource is a venue adapter for prediction-market listings.
type QuoteSource interface {
	Venue() domain.Venue
	Quotes(ctx context.Context, limit int) ([]domain.PredictionQuote, error)
}

// VolatilitySource provides the primary index history and the latest
// values of the longer-dated series. err concerns the primary series only;
// a missing secondary series comes back nil.
type VolatilitySource interface {
	Series(ctx context.Context) (primary, secondary []float64, err error)
}

// SnapshotSink receives every published snapshot (history store, Redis
// mirror, S3 archiver, WebSocket hub). Sink failures are logged, never
// fatal to the cycle.
type SnapshotSink interface {
	Name() string
	Publish(ctx context.Context, snap *domain.Snapshot) error
}

// Alerter delivers operator notifications for selected events.
type Alerter interface {
	Notify(ctx context.Context, event, title, message string) error
}

// Config tunes the refresher.
type Config struct {
	Interval          time.Duration    // time between cycle starts
	FundingTimeout    time.Duration    // per funding-venue fetch bound
	MarketTimeout     time.Duration    // per prediction/volatility fetch bound
	MarketLimit       int              // listings fetched per prediction venue
	TopN              int              // leaderboard depth per side
	Detector          arbitrage.Config
	AlertMinSpreadPct float64 // notify when the best spread reaches this; 0 disables
}

// Refresher runs refresh cycles and publishes snapshots to the cache and
// sinks. Funding sources must be given in venue-priority order: that order
// is the deterministic tie-break for instrument dedup.
type Refresher struct {
	cfg      Config
	funding  []FundingSource
	quoteA   QuoteSource // venue A of the arbitrage scan (Polymarket)
	quoteB   QuoteSource // venue B (Kalshi)
	vol      VolatilitySource
	cache    *Cache
	sinks    []SnapshotSink
	notifier Alerter
	logger   *slog.Logger
}

// New creates a Refresher.
func New(
	cfg Config,
	fundingSources []FundingSource,
	quoteA, quoteB QuoteSource,
	vol VolatilitySource,
	cache *Cache,
	sinks []SnapshotSink,
	notifier Alerter,
	logger *slog.Logger,
) *Refresher {
	return &Refresher{
		cfg:      cfg,
		funding:  fundingSources,
		quoteA:   quoteA,
		quoteB:   quoteB,
		vol:      vol,
		cache:    cache,
		sinks:    sinks,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "refresher")),
	}
}

// Run executes one cycle immediately and then one per interval tick until
// ctx is cancelled. The ticker fires a fixed Interval apart regardless of
// cycle duration, so a slow cycle compresses the idle gap rather than
// shifting the schedule.
func (r *Refresher) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "refresh loop starting",
		slog.Duration("interval", r.cfg.Interval),
	)

	r.RunCycle(ctx)

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("refresh loop stopped")
			return ctx.Err()
		case <-ticker.C:
			r.RunCycle(ctx)
		}
	}
}

// RunCycle fetches all venues concurrently, assembles a snapshot, and
// publishes it. It never fails: every venue error is absorbed into the
// snapshot's section error markers. Exported so tests (and the manual
// trigger path) can drive single cycles without the timer.
func (r *Refresher) RunCycle(ctx context.Context) *domain.Snapshot {
	start := time.Now()

	fundingResults := make([][]domain.FundingRecord, len(r.funding))
	fundingErrs := make([]error, len(r.funding))

	var (
		quotesA, quotesB     []domain.PredictionQuote
		quoteErrA, quoteErrB error
		primary, secondary   []float64
		volErr               error
	)

	// Venue fetches share no state and have independent failure domains,
	// so they all run in parallel. The closures never return an error:
	// one venue's outage must not cancel its siblings.
	g, gctx := errgroup.WithContext(ctx)

	for i, src := range r.funding {
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(gctx, r.cfg.FundingTimeout)
			defer cancel()
			fundingResults[i], fundingErrs[i] = src.FundingRates(fctx)
			return nil
		})
	}
	g.Go(func() error {
		qctx, cancel := context.WithTimeout(gctx, r.cfg.MarketTimeout)
		defer cancel()
		quotesA, quoteErrA = r.quoteA.Quotes(qctx, r.cfg.MarketLimit)
		return nil
	})
	g.Go(func() error {
		qctx, cancel := context.WithTimeout(gctx, r.cfg.MarketTimeout)
		defer cancel()
		quotesB, quoteErrB = r.quoteB.Quotes(qctx, r.cfg.MarketLimit)
		return nil
	})
	g.Go(func() error {
		vctx, cancel := context.WithTimeout(gctx, r.cfg.MarketTimeout)
		defer cancel()
		primary, secondary, volErr = r.vol.Series(vctx)
		return nil
	})
	_ = g.Wait()

	snap := &domain.Snapshot{
		CycleID:    uuid.NewString(),
		Volatility: r.volatilitySection(primary, secondary, volErr),
		Funding:    r.fundingSection(fundingResults, fundingErrs),
		Arbitrage:  r.arbitrageSection(quotesA, quotesB, quoteErrA, quoteErrB),
		UpdatedAt:  time.Now().UTC(),
	}

	r.cache.Publish(snap)

	for _, sink := range r.sinks {
		if err := sink.Publish(ctx, snap); err != nil {
			r.logger.ErrorContext(ctx, "snapshot sink failed",
				slog.String("sink", sink.Name()),
				slog.String("error", err.Error()),
			)
		}
	}

	r.alert(ctx, snap)

	r.logger.InfoContext(ctx, "refresh cycle complete",
		slog.String("cycle_id", snap.CycleID),
		slog.Duration("took", time.Since(start)),
		slog.Int("funding_total", fundingTotal(snap)),
		slog.Int("arb_opportunities", arbCount(snap)),
	)

	return snap
}

// fundingSection merges per-venue results in priority order. A venue that
// errored contributes nothing but is recorded; the section-level error is
// set only when every venue failed.
func (r *Refresher) fundingSection(results [][]domain.FundingRecord, errs []error) domain.FundingSection {
	section := domain.FundingSection{}

	var merged []domain.FundingRecord
	failed := 0
	for i, src := range r.funding {
		if errs[i] != nil {
			failed++
			if section.VenueErrors == nil {
				section.VenueErrors = make(map[domain.Venue]string)
			}
			section.VenueErrors[src.Venue()] = errs[i].Error()
			r.logger.Error("funding venue fetch failed",
				slog.String("venue", string(src.Venue())),
				slog.String("error", errs[i].Error()),
			)
			continue
		}
		merged = append(merged, results[i]...)
	}

	if failed == len(r.funding) {
		section.Error = "all funding venues unavailable"
		return section
	}

	lb := funding.Aggregate(merged, r.cfg.TopN)
	section.Leaderboard = &lb
	return section
}

// arbitrageSection runs the detector unless both venues failed outright.
// A single failed venue degrades to a counts-only scan, the same shape as
// a legitimately empty venue.
func (r *Refresher) arbitrageSection(quotesA, quotesB []domain.PredictionQuote, errA, errB error) domain.ArbitrageSection {
	section := domain.ArbitrageSection{}

	record := func(src QuoteSource, err error) {
		if err == nil {
			return
		}
		if section.VenueErrors == nil {
			section.VenueErrors = make(map[domain.Venue]string)
		}
		section.VenueErrors[src.Venue()] = err.Error()
		r.logger.Error("prediction venue fetch failed",
			slog.String("venue", string(src.Venue())),
			slog.String("error", err.Error()),
		)
	}
	record(r.quoteA, errA)
	record(r.quoteB, errB)

	if errA != nil && errB != nil {
		section.Error = "both prediction venues unavailable"
		return section
	}

	scan := arbitrage.Detect(r.cfg.Detector, quotesA, quotesB)
	section.Scan = &scan
	return section
}

func (r *Refresher) volatilitySection(primary, secondary []float64, err error) domain.VolatilitySection {
	if err != nil {
		r.logger.Error("volatility fetch failed", slog.String("error", err.Error()))
		return domain.VolatilitySection{Error: err.Error()}
	}
	snap, cerr := volatility.Compute(primary, secondary)
	if cerr != nil {
		return domain.VolatilitySection{Error: cerr.Error()}
	}
	return domain.VolatilitySection{Snapshot: &snap}
}

// alert pushes operator notifications for notable cycle outcomes.
func (r *Refresher) alert(ctx context.Context, snap *domain.Snapshot) {
	if r.notifier == nil {
		return
	}

	if snap.Funding.Error != "" || snap.Arbitrage.Error != "" {
		msg := snap.Funding.Error
		if msg == "" {
			msg = snap.Arbitrage.Error
		}
		if err := r.notifier.Notify(ctx, "venue_error", "Venue outage", msg); err != nil {
			r.logger.Error("notify failed", slog.String("error", err.Error()))
		}
	}

	if r.cfg.AlertMinSpreadPct <= 0 || snap.Arbitrage.Scan == nil || len(snap.Arbitrage.Scan.Opportunities) == 0 {
		return
	}
	best := snap.Arbitrage.Scan.Opportunities[0]
	if best.SpreadPct < r.cfg.AlertMinSpreadPct {
		return
	}
	msg := fmt.Sprintf("%s vs %s: %.1f%% spread (%.0f%% match)",
		best.VenueATitle, best.VenueBTitle, best.SpreadPct, best.SimilarityPct)
	if err := r.notifier.Notify(ctx, "arb_detected", "Arbitrage opportunity", msg); err != nil {
		r.logger.Error("notify failed", slog.String("error", err.Error()))
	}
}

func fundingTotal(snap *domain.Snapshot) int {
	if snap.Funding.Leaderboard == nil {
		return 0
	}
	return snap.Funding.Leaderboard.Total
}

func arbCount(snap *domain.Snapshot) int {
	if snap.Arbitrage.Scan == nil {
		return 0
	}
	return len(snap.Arbitrage.Scan.Opportunities)
}
