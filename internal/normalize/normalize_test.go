package normalize

import "testing"

func TestSymbol(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"BTCUSDT", "BTC"},
		{"BTCUSD", "BTC"},
		{"ETHBUSD", "ETH"},
		{"SOLUSDT", "SOL"},
		{"DOGE", "DOGE"},
		{"", ""},
		// USDT must be stripped as a whole, not as USD then a dangling T.
		{"XRPUSDT", "XRP"},
	}

	for _, tc := range cases {
		if got := Symbol(tc.in); got != tc.want {
			t.Fatalf("Symbol(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTitle(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Will the Fed cut rates in March?", "will the fed cut rates in march?"},
		{"  Padded Title  ", "padded title"},
		{"already lowercase", "already lowercase"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := Title(tc.in); got != tc.want {
			t.Fatalf("Title(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
