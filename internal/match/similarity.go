// Package match implements the deterministic scoring helpers shared by the
// platform validators, most importantly the name-similarity gate applied to
// matches discovered through name-based search.
package match

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// TokenRatio is the normalized Levenshtein ratio between two tokens in
// [0.0, 1.0]: 1.0 for identical tokens, 0.0 when every rune differs.
func TokenRatio(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	d := levenshtein.ComputeDistance(a, b)
	r := 1 - float64(d)/float64(longest)
	if r < 0 {
		return 0
	}
	return r
}

// NameSimilarity compares two person names by their first and last name
// tokens and returns the product of the two token ratios. Requiring both
// tokens to match well keeps "Jane Rivera" vs "Jon Rivers" below the gate
// even though the surnames alone are close.
func NameSimilarity(a, b string) float64 {
	aTokens := strings.Fields(strings.ToLower(a))
	bTokens := strings.Fields(strings.ToLower(b))
	if len(aTokens) == 0 || len(bTokens) == 0 {
		return 0
	}
	if len(aTokens) == 1 && len(bTokens) == 1 {
		return TokenRatio(aTokens[0], bTokens[0])
	}

	first := TokenRatio(aTokens[0], bTokens[0])
	last := TokenRatio(aTokens[len(aTokens)-1], bTokens[len(bTokens)-1])
	return first * last
}
