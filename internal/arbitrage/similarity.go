package arbitrage

// Similarity returns a symmetric likeness ratio in [0, 1] between two
// strings, computed as 2*LCS(a,b) / (len(a)+len(b)) over runes. 1 means
// identical, 0 means no characters in common. Two empty strings are
// considered identical.
func Similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra)+len(rb) == 0 {
		return 1
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	lcs := lcsLength(ra, rb)
	return 2 * float64(lcs) / float64(len(ra)+len(rb))
}

// lcsLength computes the longest-common-subsequence length with a two-row
// DP table, O(len(a)*len(b)) time and O(len(b)) space. Inputs are capped
// at 100 listings per venue upstream, so the quadratic cost is bounded.
func lcsLength(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
