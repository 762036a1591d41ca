package ranking

import (
	"regexp"
	"strings"

	"game-search-service/internal/franchise"
	"game-search-service/internal/textnorm"
)

// analyzedQuery is the per-search view of the original query shared by every
// candidate's scoring.
type analyzedQuery struct {
	normalized string
	words      []string
	order      *regexp.Regexp // query words in order, nil for single-word queries
	franchise  *franchise.Franchise
	mentioned  map[string]bool // names of every franchise the query names
}

func analyze(original string) *analyzedQuery {
	n := textnorm.Normalize(original)
	q := &analyzedQuery{
		normalized: n,
		words:      strings.Fields(n),
		mentioned:  make(map[string]bool),
	}

	if len(q.words) > 1 {
		quoted := make([]string, len(q.words))
		for i, w := range q.words {
			quoted[i] = regexp.QuoteMeta(w)
		}
		q.order = regexp.MustCompile(strings.Join(quoted, ".*"))
	}

	for _, f := range franchise.DetectAll(n) {
		if q.franchise == nil {
			q.franchise = f
		}
		q.mentioned[f.Name] = true
	}

	return q
}
