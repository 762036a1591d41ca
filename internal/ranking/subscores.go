package ranking

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"game-search-service/internal/domain"
	"game-search-service/internal/franchise"
	"game-search-service/internal/textnorm"
)

// nonExactCeiling keeps every partial match below an exact one.
const nonExactCeiling = 0.95

// relevance scores how well the game's name matches the original query.
//
//	Exact name match:               1.0
//	Name starts with "query ":      0.9 (query is a whole leading phrase)
//	Name starts with query:         0.8 (query glued to more letters)
//	Name contains query:            0.7
//	Otherwise:                      word match ratio * 0.6
//	Unrelated (ratio < 0.5, no query word of length >= 3 matched): 0.05
//
// Words appearing in query order add 0.1. A different well-known franchise in
// the name that the query does not mention subtracts 0.3. Only an exact match
// reaches 1.
func relevance(g *domain.Game, q *analyzedQuery) float64 {
	if q.normalized == "" {
		return 0
	}
	name := textnorm.Normalize(g.Name)
	if name == "" {
		return 0
	}

	var score float64
	switch {
	case name == q.normalized:
		return 1
	case strings.HasPrefix(name, q.normalized+" "):
		score = 0.9
	case strings.HasPrefix(name, q.normalized):
		score = 0.8
	case strings.Contains(name, q.normalized):
		score = 0.7
	default:
		ratio, strong := wordMatch(name, q.words)
		if ratio < 0.5 && !strong {
			score = 0.05
		} else {
			score = ratio * 0.6
		}
	}

	if q.order != nil && q.order.MatchString(name) {
		score += 0.1
	}

	for _, f := range franchise.DetectAll(name) {
		if !q.mentioned[f.Name] {
			score -= 0.3
			break
		}
	}

	return min(clamp01(score), nonExactCeiling)
}

// wordMatch returns the fraction of query words found inside some name word and
// whether any matched query word is at least three characters long.
func wordMatch(name string, queryWords []string) (float64, bool) {
	if len(queryWords) == 0 {
		return 0, false
	}
	nameWords := strings.Fields(name)

	matched := 0
	strong := false
	for _, qw := range queryWords {
		for _, nw := range nameWords {
			if strings.Contains(nw, qw) {
				matched++
				if len(qw) >= 3 {
					strong = true
				}
				break
			}
		}
	}

	return float64(matched) / float64(len(queryWords)), strong
}

// quality scores metadata completeness and critic reception.
//
//	Base:                     0.5
//	Critic rating (0-100):    up to +0.3
//	Summary > 50 chars, developer, publisher, genre, cover: +0.05 each
//	Category: main game +0.1, remake/remaster +0.05, mod -0.2
func quality(g *domain.Game) float64 {
	score := 0.5

	if g.CriticRating != nil {
		score += clamp01(*g.CriticRating/100) * 0.3
	}

	signals := []bool{
		len(g.Summary) > 50,
		g.Developer != "",
		g.Publisher != "",
		len(g.Genres) > 0,
		g.CoverURL != "",
	}
	for _, ok := range signals {
		if ok {
			score += 0.05
		}
	}

	switch g.Category {
	case domain.CategoryMainGame:
		score += 0.1
	case domain.CategoryRemake, domain.CategoryRemaster:
		score += 0.05
	case domain.CategoryMod:
		score -= 0.2
	}

	return clamp01(score)
}

// legitimacy separates official entries from fan-made or unverified ones.
//
//	Fan content:       0.0 when the query names a franchise, else 0.1
//	Franchise query:   official studio 1.0, no company 0.15, other company 0.4
//	Other queries:     any company 0.6, none 0.4
func legitimacy(g *domain.Game, q *analyzedQuery) float64 {
	if franchise.IsFanContent(g) {
		if q.franchise != nil {
			return 0
		}
		return 0.1
	}

	if q.franchise != nil {
		switch {
		case q.franchise.IsOfficial(g):
			return 1
		case !g.HasCompany():
			return 0.15
		default:
			return 0.4
		}
	}

	if g.HasCompany() {
		return 0.6
	}
	return 0.4
}

var categoryWeight = map[domain.Category]float64{
	domain.CategoryMainGame:            0.6,
	domain.CategoryRemake:              0.5,
	domain.CategoryRemaster:            0.5,
	domain.CategoryExpandedGame:        0.5,
	domain.CategoryPort:                0.4,
	domain.CategoryExpansion:           0.3,
	domain.CategoryStandaloneExpansion: 0.3,
	domain.CategoryEpisode:             0.2,
	domain.CategorySeason:              0.2,
	domain.CategoryDLC:                 0.1,
	domain.CategoryBundle:              0.1,
	domain.CategoryPack:                0.1,
	domain.CategoryUpdate:              0.1,
	domain.CategoryMod:                 0,
	domain.CategoryFork:                0,
}

var (
	compilationWords = map[string]bool{
		"collection": true, "bundle": true, "edition": true, "pack": true,
		"trilogy": true, "compilation": true, "anthology": true,
	}
	romanNumeral = regexp.MustCompile(`^(ii|iii|iv|v|vi|vii|viii|ix|x|xi|xii|xiii|xiv|xv|xvi)$`)
)

// canonical rewards main-series entries.
//
//	Category weight:                              0.0 - 0.6
//	Collection/bundle/edition name:               -0.2
//	Numbered or roman-numeral main game:          +0.2
//	Name starts with the query's franchise name:  +0.2
func canonical(g *domain.Game, q *analyzedQuery) float64 {
	score := categoryWeight[g.Category]
	name := textnorm.Normalize(g.Name)
	words := strings.FieldsFunc(name, func(r rune) bool { return r == ' ' || r == ':' || r == '-' })

	for _, w := range words {
		if compilationWords[w] {
			score -= 0.2
			break
		}
	}

	if g.Category == domain.CategoryMainGame && isNumberedEntry(words) {
		score += 0.2
	}

	if q.franchise != nil {
		for _, kw := range q.franchise.Keywords {
			if strings.HasPrefix(name, kw) {
				score += 0.2
				break
			}
		}
	}

	return clamp01(score)
}

// isNumberedEntry reports whether a title word is a sequel number (2-99) or a
// roman numeral. Years are not sequel numbers.
func isNumberedEntry(words []string) bool {
	for _, w := range words[min(1, len(words)):] {
		if n, err := strconv.Atoi(w); err == nil && n >= 2 && n <= 99 {
			return true
		}
		if romanNumeral.MatchString(w) {
			return true
		}
	}
	return false
}

// popularity blends metadata completeness with engagement.
//
//	completeness * 0.4 + log10(rating count + 1) / 4 * 0.4 + popularity / 100 * 0.2
func popularity(g *domain.Game) float64 {
	score := g.MetadataCompleteness() * 0.4

	if g.UserRatingCount != nil && *g.UserRatingCount > 0 {
		score += clamp01(math.Log10(float64(*g.UserRatingCount)+1)/4) * 0.4
	}
	if g.PopularityScore != nil {
		score += clamp01(*g.PopularityScore/100) * 0.2
	}

	return clamp01(score)
}

// recency is a decaying bonus for recent releases.
//
//	<= 1 year:  1.0
//	<= 2 years: 0.7
//	<= 5 years: 0.4
//	<= 10 years: 0.2
//	Older or unknown: 0
func recency(g *domain.Game, now time.Time) float64 {
	years, ok := g.YearsSinceRelease(now)
	if !ok {
		return 0
	}

	switch {
	case years <= 1:
		return 1
	case years <= 2:
		return 0.7
	case years <= 5:
		return 0.4
	case years <= 10:
		return 0.2
	default:
		return 0
	}
}
