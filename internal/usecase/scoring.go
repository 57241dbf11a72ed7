package usecase

import (
	"math"
	"strings"
)

// Scoring bonuses and penalties
const (
	neutralScore        = 50   // returned when the query has no usable tokens
	exactMatchBonus     = 50   // full query appears verbatim in the title
	tokenCoverageWeight = 30.0 // scaled by fraction of query tokens found anywhere
	earlyTokenWeight    = 20.0 // scaled by fraction of query tokens found early
	accessoryPenalty    = 40   // title is an accessory the query did not ask for
	refurbishedPenalty  = 20   // title is refurbished and the query did not ask for it
	shortTitlePenalty   = 15   // suspiciously short titles are usually spam
)

const (
	// earlyTitleWindow is how many leading characters of the title count as
	// "the product name proper" for the early-token bonus.
	earlyTitleWindow = 50

	// minTitleLength below this the short-title penalty applies.
	minTitleLength = 15

	// minTokenLength: query tokens this short carry no signal and are dropped.
	minTokenLength = 3
)

// queryStopWords are Spanish connector words ignored during tokenization.
var queryStopWords = map[string]bool{
	"el": true, "la": true, "de": true, "para": true, "con": true,
	"en": true, "y": true, "un": true, "una": true,
}

// accessoryKeywords flag listings that are accessories for a product rather
// than the product itself. One consolidated set is shared by the scorer;
// per-retailer nuance stays inside the adapters.
var accessoryKeywords = []string{
	"cable", "cargador", "funda", "estuche", "protector", "forro",
	"vidrio", "mica", "auricular", "audífono", "audifono",
	"soporte", "holder", "base", "stand", "tripode", "trípode",
	"adaptador", "power bank", "batería externa", "bateria externa",
	"manos libres", "control remoto",
}

// refurbishedKeywords flag non-new units.
var refurbishedKeywords = []string{"reacondicionado", "refurbished"}

// CalculateMatchScore rates how well a product title matches the search
// query, returning an integer in [0, 100]. It is a pure function: the same
// title and query always produce the same score.
//
// Additive rules:
//   - +50 when the full normalized query appears verbatim in the title
//   - up to +30 proportional to the query tokens present anywhere in the title
//   - up to +20 proportional to the query tokens present in the title's
//     first 50 characters
//
// Subtractive rules:
//   - -40 when the title names an accessory the query did not ask for
//   - -20 when the title is refurbished and the query did not ask for it
//   - -15 when the title is shorter than 15 characters
func CalculateMatchScore(title, query string) int {
	titleLower := strings.ToLower(title)
	queryLower := strings.ToLower(query)

	tokens := queryTokens(queryLower)
	if len(tokens) == 0 {
		return neutralScore
	}

	var score float64

	if strings.Contains(titleLower, queryLower) {
		score += exactMatchBonus
	}

	head := titleHead(titleLower, earlyTitleWindow)
	var matched, early int
	for _, token := range tokens {
		if strings.Contains(titleLower, token) {
			matched++
		}
		if strings.Contains(head, token) {
			early++
		}
	}
	score += tokenCoverageWeight * float64(matched) / float64(len(tokens))
	score += earlyTokenWeight * float64(early) / float64(len(tokens))

	if containsAny(titleLower, accessoryKeywords) && !containsAny(queryLower, accessoryKeywords) {
		score -= accessoryPenalty
	}
	if containsAny(titleLower, refurbishedKeywords) && !containsAny(queryLower, refurbishedKeywords) {
		score -= refurbishedPenalty
	}
	if len([]rune(title)) < minTitleLength {
		score -= shortTitlePenalty
	}

	return clampScore(int(math.Round(score)))
}

// queryTokens splits an already-lowercased query into scoring tokens,
// dropping stop words and tokens too short to carry signal.
func queryTokens(queryLower string) []string {
	var tokens []string
	for _, word := range strings.Fields(queryLower) {
		if queryStopWords[word] || len([]rune(word)) < minTokenLength {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

// titleHead returns the first n characters of s, rune-safe.
func titleHead(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// containsAny reports whether s contains any of the keywords as a substring.
func containsAny(s string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
