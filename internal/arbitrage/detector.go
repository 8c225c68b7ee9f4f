// Package arbitrage scans two prediction-market venues for listings that
// describe the same event at different prices.
package arbitrage

import (
	"math"
	"sort"

	"github.com/kitebird-capital/terminal/internal/domain"
)

// Default thresholds. Similarity alone matches generic wording; spread
// alone flags unrelated markets that happen to trade near each other. Only
// the conjunction targets genuine duplicate-market mispricings.
const (
	DefaultSimilarityThreshold = 0.55
	DefaultMinSpreadPct        = 3.0
	DefaultMaxOpportunities    = 20
)

// Config tunes the detector. Zero values fall back to the defaults above.
type Config struct {
	SimilarityThreshold float64 // minimum title similarity ratio, in [0,1]
	MinSpreadPct        float64 // minimum price spread in percentage points
	MaxOpportunities    int     // result cap after ranking
}

func (c Config) withDefaults() Config {
	if c.SimilarityThreshold == 0 {
		c.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if c.MinSpreadPct == 0 {
		c.MinSpreadPct = DefaultMinSpreadPct
	}
	if c.MaxOpportunities == 0 {
		c.MaxOpportunities = DefaultMaxOpportunities
	}
	return c
}

// Detect compares every venue-A listing against every venue-B listing and
// returns the ranked mispricings. When either side is empty the scan is
// skipped and a counts-only result comes back; an empty venue is a normal
// condition (off-hours, outage), not an error.
func Detect(cfg Config, venueA, venueB []domain.PredictionQuote) domain.ArbScan {
	cfg = cfg.withDefaults()

	scan := domain.ArbScan{
		VenueACount: len(venueA),
		VenueBCount: len(venueB),
	}
	if len(venueA) == 0 || len(venueB) == 0 {
		return scan
	}

	var opps []domain.ArbOpportunity
	for _, a := range venueA {
		for _, b := range venueB {
			ratio := Similarity(a.Title, b.Title)
			if ratio < cfg.SimilarityThreshold {
				continue
			}
			spread := math.Abs(a.YesPrice-b.YesPrice) * 100
			if spread <= cfg.MinSpreadPct {
				continue
			}
			opps = append(opps, domain.ArbOpportunity{
				VenueATitle:    a.RawTitle,
				VenueBTitle:    b.RawTitle,
				VenueAPricePct: round1(a.YesPrice * 100),
				VenueBPricePct: round1(b.YesPrice * 100),
				SpreadPct:      round1(spread),
				SimilarityPct:  math.Round(ratio * 100),
			})
		}
	}

	sort.Slice(opps, func(i, j int) bool {
		if opps[i].SpreadPct != opps[j].SpreadPct {
			return opps[i].SpreadPct > opps[j].SpreadPct
		}
		if opps[i].SimilarityPct != opps[j].SimilarityPct {
			return opps[i].SimilarityPct > opps[j].SimilarityPct
		}
		return opps[i].VenueATitle < opps[j].VenueATitle
	})

	if len(opps) > cfg.MaxOpportunities {
		opps = opps[:cfg.MaxOpportunities]
	}
	scan.Opportunities = opps
	return scan
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
