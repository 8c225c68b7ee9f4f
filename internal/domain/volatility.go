package domain

// VolatilitySignal classifies the current level of the volatility index.
type VolatilitySignal string

const (
	SignalSellSpreads VolatilitySignal = "sell_spreads" // > 18: premium selling favorable
	SignalNeutral     VolatilitySignal = "neutral"      // [14, 18]
	SignalDontSell    VolatilitySignal = "dont_sell"    // < 14: premium too cheap
)

// TermStructureKind is the relationship between the spot index and its
// longer-dated counterpart.
type TermStructureKind string

const (
	Contango      TermStructureKind = "contango"      // ratio < 1
	Backwardation TermStructureKind = "backwardation" // ratio >= 1
)

// TermStructure relates the current index value to the latest value of the
// secondary (longer-dated) series.
type TermStructure struct {
	Kind           TermStructureKind `json:"kind"`
	Ratio          float64           `json:"ratio"`
	SecondaryValue float64           `json:"secondary_value"`
}

// VolatilitySnapshot carries the signal classification and rolling
// statistics for the volatility index. Structure is nil when the secondary
// series was unavailable; consumers must handle its absence.
type VolatilitySnapshot struct {
	Current   float64          `json:"current"`
	Signal    VolatilitySignal `json:"signal"`
	Avg7      float64          `json:"avg_7"`
	Avg30     float64          `json:"avg_30"`
	Avg90     float64          `json:"avg_90"`
	High90    float64          `json:"high_90"`
	Low90     float64          `json:"low_90"`
	Structure *TermStructure   `json:"structure,omitempty"`
}
