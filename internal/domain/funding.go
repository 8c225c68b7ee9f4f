package domain

// FundingRecord is one venue's reported funding rate for a perpetual
// contract. Rate is a fraction (not percent) per 8-hour funding period.
// Adapters drop zero-rate entries at the boundary: all three venues report
// a literal 0 for contracts whose funding is not published, so zero means
// "not reported" rather than "no funding".
type FundingRecord struct {
	Symbol string  `json:"symbol"` // venue-native symbol, e.g. "BTCUSDT"
	Rate   float64 `json:"rate"`
	Venue  Venue   `json:"venue"`
}

// AnnualizedFundingEntry is a leaderboard row. Key is the normalized
// instrument key (denomination suffix stripped), Annualized the per-period
// rate scaled by 3 periods/day x 365 days.
type AnnualizedFundingEntry struct {
	Key        string  `json:"key"`
	Rate       float64 `json:"rate"`
	Annualized float64 `json:"annualized"`
	Venue      Venue   `json:"venue"`
}

// FundingLeaderboard ranks deduplicated funding rates across venues.
// TopPositive is ordered highest rate first, TopNegative most negative
// first. AvgRate is the unweighted mean over the deduplicated set.
type FundingLeaderboard struct {
	TopPositive   []AnnualizedFundingEntry `json:"top_positive"`
	TopNegative   []AnnualizedFundingEntry `json:"top_negative"`
	Total         int                      `json:"total"`
	AvgRate       float64                  `json:"avg_rate"`
	AvgAnnualized float64                  `json:"avg_annualized"`
	Venues        []Venue                  `json:"venues"` // venues that contributed records
}
