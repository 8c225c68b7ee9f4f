package domain

import (
	"encoding/json"
	"time"
)

// FundingSection is the funding part of a published snapshot. VenueErrors
// records every venue fetch that failed this cycle; Error is set only when
// no funding venue succeeded at all, so an empty leaderboard with a nil
// Error means "fetched fine, nothing reported".
type FundingSection struct {
	Leaderboard *FundingLeaderboard `json:"leaderboard,omitempty"`
	VenueErrors map[Venue]string    `json:"venue_errors,omitempty"`
	Error       string              `json:"error,omitempty"`
}

// ArbitrageSection is the cross-platform scan part of a snapshot. One
// failed or empty venue still yields a counts-only Scan; Error is set only
// when both prediction venues failed.
type ArbitrageSection struct {
	Scan        *ArbScan         `json:"scan,omitempty"`
	VenueErrors map[Venue]string `json:"venue_errors,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// VolatilitySection is the volatility part of a snapshot. A missing
// secondary series only omits the term structure; Error is set when the
// primary series itself was unavailable.
type VolatilitySection struct {
	Snapshot *VolatilitySnapshot `json:"snapshot,omitempty"`
	Error    string              `json:"error,omitempty"`
}

// Snapshot is the complete bundle of derived results published once per
// refresh cycle. It is built privately by the refresher and swapped in
// atomically; once published it is never mutated, so readers may hold it
// across requests.
type Snapshot struct {
	CycleID    string            `json:"cycle_id"`
	Volatility VolatilitySection `json:"volatility"`
	Funding    FundingSection    `json:"funding"`
	Arbitrage  ArbitrageSection  `json:"arbitrage"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// HistoryEntry is one archived snapshot row from the history store.
type HistoryEntry struct {
	CycleID    string          `json:"cycle_id"`
	CapturedAt time.Time       `json:"captured_at"`
	Snapshot   json.RawMessage `json:"snapshot"`
}
