package domain

// Venue identifies an external market-data source.
type Venue string

const (
	VenueBinance    Venue = "Binance"
	VenueBybit      Venue = "Bybit"
	VenueGateIO     Venue = "Gate.io"
	VenuePolymarket Venue = "Polymarket"
	VenueKalshi     Venue = "Kalshi"
)

// FundingVenues is the set of venues that report perpetual funding rates.
var FundingVenues = map[Venue]bool{
	VenueBinance: true,
	VenueBybit:   true,
	VenueGateIO:  true,
}
