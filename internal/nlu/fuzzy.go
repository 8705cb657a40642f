// internal/nlu/fuzzy.go
package nlu

import (
	"sort"
	"strings"
)

// tokenSortRatio scores the similarity of two strings on a 0-100 scale.
// Tokens are sorted before comparison so word order does not matter, then
// the strings are scored by edit distance where only insertions and
// deletions count (a substitution costs 2). This matches the token_sort
// scoring used to resolve misspelled entity references.
func tokenSortRatio(a, b string) float64 {
	return indelRatio(sortedTokens(a), sortedTokens(b))
}

func sortedTokens(s string) string {
	toks := fields(s)
	sort.Strings(toks)
	return strings.Join(toks, " ")
}

func indelRatio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	dist := total - 2*lcsLength(ra, rb)
	return 100 * (1 - float64(dist)/float64(total))
}

// lcsLength computes the longest common subsequence length with a
// two-row DP table.
func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
