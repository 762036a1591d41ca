package query

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"game-search-service/internal/domain"
	"game-search-service/internal/textnorm"
)

// generalityGap is the length difference above which the shorter of two queries
// is preferred during prioritization.
const generalityGap = 5

// Expand returns the ordered, deduplicated set of alternate queries for query.
// The lowercased, trimmed original is always first.
func Expand(query string, intent domain.SearchIntent) []string {
	base := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	if base == "" {
		return nil
	}

	set := newOrderedSet()
	set.add(base)

	// Accent-normalized and franchise accent variants.
	normalized := textnorm.Normalize(base)
	set.add(normalized)
	for _, v := range textnorm.FranchiseVariants(base) {
		set.add(v)
	}

	// Abbreviations and aliases fire on a substring match and add each
	// alternative as is. When the key stands as a whole word, the alternative
	// spliced into the query is added too ("gta 5" -> "grand theft auto 5").
	// Alternatives already present in normalized form are skipped.
	for _, rule := range aliases {
		source := base
		idx := strings.Index(base, rule.key)
		if idx < 0 {
			source = normalized
			if idx = strings.Index(normalized, rule.key); idx < 0 {
				continue
			}
		}
		end := idx + len(rule.key)

		for _, alt := range rule.alternatives {
			if !set.containsNormalized(alt) {
				set.add(alt)
			}
		}
		if !isWholeWord(source, idx, end) {
			continue
		}
		for _, alt := range rule.alternatives {
			spliced := strings.Join(strings.Fields(source[:idx]+alt+source[end:]), " ")
			if !set.containsNormalized(spliced) {
				set.add(spliced)
			}
		}
	}

	if intent == domain.IntentFranchiseBrowse {
		for _, fp := range franchisePrefixes {
			if strings.Contains(normalized, fp.mention) && !strings.Contains(normalized, fp.marker) {
				if !set.containsNormalized(fp.prefix) {
					set.add(fp.prefix)
				}
			}
		}
	}

	return set.items
}

// isWholeWord reports whether s[i:j] is not glued to a letter or digit on either side.
func isWholeWord(s string, i, j int) bool {
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:i])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	if j < len(s) {
		r, _ := utf8.DecodeRuneInString(s[j:])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Prioritize orders expanded queries for execution: the original first, then
// simple accent variants of it, then shorter (more general) queries when the
// length gap is large, then queries containing the original, then lexicographic.
// The input slice is not modified.
func Prioritize(expanded []string, original string) []string {
	orig := strings.Join(strings.Fields(strings.ToLower(original)), " ")

	out := make([]string, len(expanded))
	copy(out, expanded)

	rank := func(q string) int {
		switch {
		case q == orig:
			return 0
		case textnorm.IsEquivalent(q, orig):
			return 1
		default:
			return 2
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		ra, rb := rank(a), rank(b)
		if ra != rb {
			return ra < rb
		}

		if diff := len(a) - len(b); diff > generalityGap || diff < -generalityGap {
			return len(a) < len(b)
		}

		ca, cb := strings.Contains(a, orig), strings.Contains(b, orig)
		if ca != cb {
			return ca
		}

		return a < b
	})

	return out
}

// Plan expands, prioritizes and caps the queries that will actually execute.
func Plan(query string, intent domain.SearchIntent, maxExecuted int) []string {
	prioritized := Prioritize(Expand(query, intent), query)
	if maxExecuted > 0 && len(prioritized) > maxExecuted {
		prioritized = prioritized[:maxExecuted]
	}
	return prioritized
}

// orderedSet keeps first-seen order with exact-string deduplication and an
// auxiliary index of normalized keys.
type orderedSet struct {
	items      []string
	seen       map[string]bool
	normalized map[string]bool
}

func newOrderedSet() *orderedSet {
	return &orderedSet{
		seen:       make(map[string]bool),
		normalized: make(map[string]bool),
	}
}

func (s *orderedSet) add(q string) {
	if q == "" || s.seen[q] {
		return
	}
	s.seen[q] = true
	s.normalized[textnorm.Normalize(q)] = true
	s.items = append(s.items, q)
}

func (s *orderedSet) containsNormalized(q string) bool {
	return s.normalized[textnorm.Normalize(q)]
}
