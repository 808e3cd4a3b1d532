// Package similarity scores how much two pieces of free text overlap.
//
// Text is lower-cased, stripped of punctuation and split on whitespace;
// tokens of two characters or fewer are ignored. Two texts are compared
// with the Jaccard index of their token sets.
package similarity

import (
	"strings"
	"unicode"
)

// minTokenLength is the shortest token that takes part in comparisons
const minTokenLength = 3

// Tokenize returns the distinct comparison tokens of text
func Tokenize(text string) map[string]struct{} {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, strings.ToLower(text))

	tokens := make(map[string]struct{})
	for _, field := range strings.Fields(cleaned) {
		if len([]rune(field)) >= minTokenLength {
			tokens[field] = struct{}{}
		}
	}
	return tokens
}

// Similarity returns |A ∩ B| / |A ∪ B| over the token sets of a and b,
// or 0 when both are empty.
func Similarity(a, b string) float64 {
	tokensA := Tokenize(a)
	tokensB := Tokenize(b)

	intersection := 0
	for t := range tokensA {
		if _, ok := tokensB[t]; ok {
			intersection++
		}
	}

	union := len(tokensA) + len(tokensB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// ContainsKeywords reports whether text contains any keyword as a
// case-insensitive substring
func ContainsKeywords(text string, keywords ...string) bool {
	normalized := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(normalized, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
