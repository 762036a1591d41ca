package policy

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"game-search-service/internal/domain"
	"game-search-service/internal/franchise"
)

// Filter evaluates candidates against manual flags and company policy.
// The policy book is swapped atomically on Reload, so Evaluate never blocks.
type Filter struct {
	book   atomic.Pointer[Book]
	source domain.PolicySource
	logger *zap.Logger
}

// NewFilter creates a Filter seeded with DefaultPolicies. source may be nil, in
// which case Reload only restores the defaults.
func NewFilter(source domain.PolicySource, logger *zap.Logger) *Filter {
	f := &Filter{source: source, logger: logger}
	f.book.Store(NewBook(DefaultPolicies()))
	return f
}

// Book returns the current policy snapshot.
func (f *Filter) Book() *Book {
	return f.book.Load()
}

// Reload rebuilds the book from the defaults merged with the policy source.
// On error the previous snapshot stays in place.
func (f *Filter) Reload(ctx context.Context) error {
	if f.source == nil {
		f.book.Store(NewBook(DefaultPolicies()))
		return nil
	}

	rows, err := f.source.CompanyPolicies(ctx)
	if err != nil {
		return fmt.Errorf("failed to load company policies: %w", err)
	}

	book := NewBook(DefaultPolicies(), rows)
	f.book.Store(book)

	f.logger.Info("company policies reloaded",
		zap.Int("stored", len(rows)),
		zap.Int("total", book.Len()),
	)
	return nil
}

// ShouldBypass reports whether company policy is skipped for a search. Franchise
// browsing and popular-franchise queries favor completeness unless the caller
// asks for aggressive filtering.
func ShouldBypass(intent domain.SearchIntent, query string, aggressive bool) bool {
	if aggressive {
		return false
	}
	if intent == domain.IntentFranchiseBrowse {
		return true
	}
	_, popular := franchise.Detect(query)
	return popular
}

// Evaluate decides whether g is suppressed. Manual flags are honored even when
// bypassCompanyPolicy is set.
func (f *Filter) Evaluate(g *domain.Game, bypassCompanyPolicy bool) domain.PolicyDecision {
	if g.Greenlight {
		return domain.PolicyDecision{Reason: "greenlit"}
	}
	if g.Redlight {
		reason := g.FlagReason
		if reason == "" {
			reason = "redlit"
		}
		return domain.PolicyDecision{Suppress: true, Reason: reason}
	}
	if bypassCompanyPolicy {
		return domain.PolicyDecision{}
	}

	return f.evaluateCompanies(g)
}

// Apply filters games, returning the survivors in input order and the number suppressed.
func (f *Filter) Apply(games []*domain.Game, bypassCompanyPolicy bool) ([]*domain.Game, int) {
	kept := make([]*domain.Game, 0, len(games))
	suppressed := 0
	for _, g := range games {
		if f.Evaluate(g, bypassCompanyPolicy).Suppress {
			suppressed++
			continue
		}
		kept = append(kept, g)
	}
	return kept, suppressed
}

// evaluateCompanies resolves the most restrictive level among the developer,
// the publisher and the owners of franchises named in the title, then applies:
//
//	BlockAll:    suppress everything the company develops or publishes
//	Aggressive:  pass official entries; suppress fan content and unofficial use of a named franchise
//	Moderate:    suppress fan content and unofficial use of a protected franchise
//	ModFriendly: suppress only fan content with a commercial signal
func (f *Filter) evaluateCompanies(g *domain.Game) domain.PolicyDecision {
	book := f.book.Load()

	var (
		level      = domain.CopyrightNone
		reason     string
		blockedAll bool
	)
	consider := func(p domain.CompanyPolicy, direct bool) {
		if p.Level > level {
			level, reason = p.Level, p.Reason
		}
		if direct && p.Level == domain.CopyrightBlockAll {
			blockedAll = true
		}
	}

	if p, ok := book.Lookup(g.Developer); ok {
		consider(p, true)
	}
	if p, ok := book.Lookup(g.Publisher); ok {
		consider(p, true)
	}

	named := franchise.DetectAll(g.Name)
	official := len(named) == 0 && level > domain.CopyrightNone
	unofficialNamed, unofficialProtected := false, false
	for _, fr := range named {
		if fr.IsOfficial(g) {
			official = true
			continue
		}
		unofficialNamed = true
		if fr.Protected {
			unofficialProtected = true
		}
		if p, ok := book.Lookup(fr.Owner); ok {
			consider(p, false)
		}
	}

	fan := franchise.IsFanContent(g)

	suppress := false
	switch level {
	case domain.CopyrightBlockAll:
		if blockedAll {
			suppress = true
			break
		}
		suppress = fan || unofficialNamed
	case domain.CopyrightAggressive:
		suppress = !official && (fan || unofficialNamed)
	case domain.CopyrightModerate:
		suppress = fan || unofficialProtected
	case domain.CopyrightModFriendly:
		suppress = fan && franchise.HasCommercialSignal(g)
	case domain.CopyrightNone:
		suppress = false
	}

	if !suppress {
		return domain.PolicyDecision{Level: level}
	}
	return domain.PolicyDecision{Suppress: true, Level: level, Reason: reason}
}
