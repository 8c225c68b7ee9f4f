// Package normalize collapses venue-specific spellings into comparable keys:
// instrument symbols lose their quote-currency suffix so the same contract
// listed on several exchanges dedups to one entry, and market titles are
// folded for fuzzy matching.
package normalize

import "strings"

// denomSuffixes are the quote-currency suffixes stripped from the tail of a
// symbol, checked in this order. USDT must precede USD so that "BTCUSDT"
// becomes "BTC" rather than "BTCT".
var denomSuffixes = []string{"USDT", "BUSD", "USD"}

// Symbol maps a venue-native perpetual symbol to its instrument key, e.g.
// "BTCUSDT", "BTCUSD" and "BTCBUSD" all become "BTC". Symbols without a
// known suffix pass through unchanged.
func Symbol(raw string) string {
	s := raw
	for _, suffix := range denomSuffixes {
		s = strings.TrimSuffix(s, suffix)
	}
	return s
}

// Title folds a market title for matching: lower-case, surrounding
// whitespace trimmed. Semantic equivalence ("Fed rate cut" vs "Will the Fed
// cut rates?") is deliberately left to the fuzzy matcher.
func Title(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
