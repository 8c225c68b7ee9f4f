// Package funding merges per-venue funding-rate records into a ranked,
// annualized leaderboard.
package funding

import (
	"sort"

	"github.com/kitebird-capital/terminal/internal/domain"
	"github.com/kitebird-capital/terminal/internal/normalize"
)

// AnnualizationFactor scales a per-period rate to a yearly equivalent,
// assuming exactly 3 funding periods per day. Venues that settle on a
// different cadence would need a per-venue factor here.
const AnnualizationFactor = 3 * 365

// DefaultTopN is the leaderboard depth on each side.
const DefaultTopN = 10

// Annualize converts a per-period funding rate to its yearly equivalent.
func Annualize(rate float64) float64 {
	return rate * AnnualizationFactor
}

// Aggregate builds a leaderboard from funding records. Records must be
// supplied in venue-priority order: when two venues list the same
// normalized instrument, the first record wins and later ones are skipped,
// so the caller's ordering is the dedup tie-break. topN <= 0 falls back to
// DefaultTopN. Empty input yields an empty leaderboard with zero averages.
func Aggregate(records []domain.FundingRecord, topN int) domain.FundingLeaderboard {
	if topN <= 0 {
		topN = DefaultTopN
	}

	seen := make(map[string]domain.AnnualizedFundingEntry, len(records))
	keys := make([]string, 0, len(records))
	venueSet := make(map[domain.Venue]bool)

	for _, r := range records {
		venueSet[r.Venue] = true
		key := normalize.Symbol(r.Symbol)
		if _, ok := seen[key]; ok {
			continue // first venue in priority order wins
		}
		seen[key] = domain.AnnualizedFundingEntry{
			Key:        key,
			Rate:       r.Rate,
			Annualized: Annualize(r.Rate),
			Venue:      r.Venue,
		}
		keys = append(keys, key)
	}

	entries := make([]domain.AnnualizedFundingEntry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, seen[k])
	}

	// Highest rate first; equal rates ordered by key so the ranking is
	// stable across cycles.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Rate != entries[j].Rate {
			return entries[i].Rate > entries[j].Rate
		}
		return entries[i].Key < entries[j].Key
	})

	lb := domain.FundingLeaderboard{
		Total:  len(entries),
		Venues: sortedVenues(venueSet),
	}

	n := topN
	if n > len(entries) {
		n = len(entries)
	}
	lb.TopPositive = append(lb.TopPositive, entries[:n]...)

	// Last N reversed, so the most negative rate comes first.
	for i := len(entries) - 1; i >= len(entries)-n; i-- {
		lb.TopNegative = append(lb.TopNegative, entries[i])
	}

	if len(entries) > 0 {
		var sum float64
		for _, e := range entries {
			sum += e.Rate
		}
		lb.AvgRate = sum / float64(len(entries))
		lb.AvgAnnualized = Annualize(lb.AvgRate)
	}

	return lb
}

func sortedVenues(set map[domain.Venue]bool) []domain.Venue {
	out := make([]domain.Venue, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
