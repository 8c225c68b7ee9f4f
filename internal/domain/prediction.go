package domain

// PredictionQuote is a single prediction-market listing with its implied
// YES probability. YesPrice is strictly inside (0, 1); adapters reject
// anything outside that range. Title is the normalized (lower-cased,
// trimmed) form used for matching, RawTitle the venue's original wording.
type PredictionQuote struct {
	Title    string  `json:"title"`
	RawTitle string  `json:"raw_title"`
	YesPrice float64 `json:"yes_price"`
	Venue    Venue   `json:"venue"`
}

// ArbOpportunity is a pair of listings on different venues that appear to
// describe the same event but disagree on price. Prices and spread are in
// percentage points, similarity in percent.
type ArbOpportunity struct {
	VenueATitle    string  `json:"venue_a_title"`
	VenueBTitle    string  `json:"venue_b_title"`
	VenueAPricePct float64 `json:"venue_a_price_pct"`
	VenueBPricePct float64 `json:"venue_b_price_pct"`
	SpreadPct      float64 `json:"spread_pct"`
	SimilarityPct  float64 `json:"similarity_pct"`
}

// ArbScan is the detector's result for one refresh cycle. The counts are
// always populated, even when one venue returned nothing and the scan was
// skipped, so a consumer can tell an empty market apart from a dry scan.
type ArbScan struct {
	VenueACount   int              `json:"venue_a_count"`
	VenueBCount   int              `json:"venue_b_count"`
	Opportunities []ArbOpportunity `json:"opportunities"`
}
