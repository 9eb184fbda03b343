package utils

import (
	"regexp"
	"strings"
)

var nonAlnumRe = regexp.MustCompile(`[^A-Z0-9]+`)

// Normalize reduces a string to alphanumeric-only upper-case, so that
// "Ang Mo Kio" and "ANG-MO-KIO" compare equal.
func Normalize(s string) string {
	return nonAlnumRe.ReplaceAllString(strings.ToUpper(s), "")
}

// Tokenize splits a string into upper-cased alphanumeric words.
func Tokenize(s string) []string {
	parts := nonAlnumRe.Split(strings.ToUpper(s), -1)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// ContainsMatch reports whether the normalized candidate and input contain
// each other in either direction. Empty strings never match.
func ContainsMatch(input, candidate string) bool {
	a := Normalize(input)
	b := Normalize(candidate)
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// Ratio computes a similarity ratio in [0, 1] between two strings as
// 2*LCS/(len(a)+len(b)), comparable to difflib's SequenceMatcher ratio.
func Ratio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	// single-row LCS table
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
	lcs := prev[len(b)]
	return 2.0 * float64(lcs) / float64(len(a)+len(b))
}

// BestMatch finds the vocabulary entry closest to any same-length token
// window of the input, returning it when the best similarity reaches the
// cutoff. Candidates are compared in their normalized form.
func BestMatch(input string, candidates []string, cutoff float64) (string, bool) {
	tokens := Tokenize(input)
	if len(tokens) == 0 {
		return "", false
	}

	best := ""
	bestScore := 0.0
	for _, cand := range candidates {
		candTokens := Tokenize(cand)
		if len(candTokens) == 0 {
			continue
		}
		norm := Normalize(cand)
		width := len(candTokens)
		if width > len(tokens) {
			width = len(tokens)
		}
		for i := 0; i+width <= len(tokens); i++ {
			window := strings.Join(tokens[i:i+width], "")
			if score := Ratio(window, norm); score > bestScore {
				bestScore = score
				best = cand
			}
		}
	}
	if bestScore >= cutoff {
		return best, true
	}
	return "", false
}

// MatchVocabulary resolves input text against a vocabulary using the two
// router passes: containment first, then fuzzy closest-match at the cutoff.
func MatchVocabulary(input string, vocabulary []string, cutoff float64) (string, bool) {
	for _, cand := range vocabulary {
		if ContainsMatch(input, cand) {
			return cand, true
		}
	}
	return BestMatch(input, vocabulary, cutoff)
}
