// Package volatility derives a premium-selling signal and term-structure
// read from the volatility index time series.
package volatility

import (
	"github.com/kitebird-capital/terminal/internal/domain"
)

// Classification thresholds on the current index value.
const (
	sellAbove    = 18.0 // strictly above: high IV, sell spreads
	neutralFloor = 14.0 // [neutralFloor, sellAbove]: neutral
)

// Rolling windows over the primary series, in observations.
const (
	shortWindow = 7
	midWindow   = 30
	longWindow  = 90
)

// Compute classifies the latest primary observation and attaches rolling
// statistics. primary is ordered oldest first; the last element is the
// current value. secondary may be empty, in which case the term structure
// is omitted rather than defaulted. Windows shorter than their nominal
// size degrade to whatever history exists.
func Compute(primary, secondary []float64) (domain.VolatilitySnapshot, error) {
	if len(primary) == 0 {
		return domain.VolatilitySnapshot{}, domain.ErrNoData
	}

	current := primary[len(primary)-1]

	snap := domain.VolatilitySnapshot{
		Current: current,
		Signal:  classify(current),
		Avg7:    mean(tail(primary, shortWindow)),
		Avg30:   mean(tail(primary, midWindow)),
		Avg90:   mean(tail(primary, longWindow)),
	}
	snap.High90, snap.Low90 = minMax(tail(primary, longWindow))

	if len(secondary) > 0 {
		latest := secondary[len(secondary)-1]
		if latest > 0 {
			ratio := current / latest
			kind := domain.Backwardation
			if ratio < 1 {
				kind = domain.Contango
			}
			snap.Structure = &domain.TermStructure{
				Kind:           kind,
				Ratio:          ratio,
				SecondaryValue: latest,
			}
		}
	}

	return snap, nil
}

func classify(current float64) domain.VolatilitySignal {
	switch {
	case current > sellAbove:
		return domain.SignalSellSpreads
	case current >= neutralFloor:
		return domain.SignalNeutral
	default:
		return domain.SignalDontSell
	}
}

// tail returns the most recent n observations, or the whole series when it
// is shorter than n.
func tail(series []float64, n int) []float64 {
	if len(series) <= n {
		return series
	}
	return series[len(series)-n:]
}

func mean(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	var sum float64
	for _, v := range series {
		sum += v
	}
	return sum / float64(len(series))
}

func minMax(series []float64) (high, low float64) {
	if len(series) == 0 {
		return 0, 0
	}
	high, low = series[0], series[0]
	for _, v := range series[1:] {
		if v > high {
			high = v
		}
		if v < low {
			low = v
		}
	}
	return high, low
}
