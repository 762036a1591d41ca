// Package query turns a raw search string into a search intent and a prioritized
// set of candidate queries.
package query

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"game-search-service/internal/domain"
	"game-search-service/internal/textnorm"
)

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// specificMinLength is the length in characters above which a query containing a title marker
// is treated as a specific game title.
const specificMinLength = 15

// Classify categorizes a query into a search intent.
//
// Rules are evaluated in order and the first match wins; later rules assume the
// earlier ones already captured their cases:
//
//  1. long query with a title marker ("the ", ": ", " of ") → specific game
//  2. year token or "new games"/"latest" → year search
//  3. platform keyword, or "nintendo" without "games" → platform search
//  4. company keyword, or "nintendo" with "games" → developer search
//  5. "games" plus a franchise keyword → franchise browse; plus a genre keyword → genre discovery
//  6. genre keyword → genre discovery
//  7. short single word → franchise browse
//  8. default → franchise browse
func Classify(query string) domain.SearchIntent {
	raw := strings.TrimSpace(query)
	rawLen := utf8.RuneCountInString(raw)
	q := textnorm.Normalize(raw)
	if q == "" {
		return domain.IntentFranchiseBrowse
	}
	tokens := tokenSet(q)

	if rawLen > specificMinLength && containsAny(q, specificMarks) {
		return domain.IntentSpecificGame
	}

	if yearPattern.MatchString(q) || containsAny(q, yearPhrases) {
		return domain.IntentYearSearch
	}

	hasNintendo := tokens["nintendo"]
	hasGames := strings.Contains(q, "games")

	if matchesKeyword(q, tokens, platformKeywords) || (hasNintendo && !hasGames) {
		return domain.IntentPlatformSearch
	}

	if matchesKeyword(q, tokens, companyKeywords) || (hasNintendo && hasGames) {
		return domain.IntentDeveloperSearch
	}

	if hasGames {
		if matchesKeyword(q, tokens, franchiseWords) {
			return domain.IntentFranchiseBrowse
		}
		if matchesKeyword(q, tokens, genreKeywords) {
			return domain.IntentGenreDiscovery
		}
	}

	if matchesKeyword(q, tokens, genreKeywords) {
		return domain.IntentGenreDiscovery
	}

	if rawLen <= specificMinLength && !strings.ContainsFunc(raw, unicode.IsSpace) {
		return domain.IntentFranchiseBrowse
	}

	return domain.IntentFranchiseBrowse
}

// tokenSet splits on anything that is not a letter or digit.
func tokenSet(s string) map[string]bool {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}

// matchesKeyword matches single-word keywords as whole tokens and multi-word
// keywords as substrings.
func matchesKeyword(q string, tokens map[string]bool, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(kw, " ") {
			if strings.Contains(q, kw) {
				return true
			}
			continue
		}
		if tokens[kw] {
			return true
		}
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
