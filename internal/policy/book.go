// Package policy decides whether a candidate game may be shown, based on manual
// moderation flags and the copyright stance of the companies involved.
package policy

import (
	"sort"

	"game-search-service/internal/domain"
	"game-search-service/internal/franchise"
	"game-search-service/internal/textnorm"
)

// DefaultPolicies returns the built-in company policies. Rows from the policy
// source override these by company name.
func DefaultPolicies() []domain.CompanyPolicy {
	return []domain.CompanyPolicy{
		{Company: "nintendo", Level: domain.CopyrightAggressive, Reason: "Actively issues takedowns against fan games and ROM hacks"},
		{Company: "the pokemon company", Level: domain.CopyrightAggressive, Reason: "Enforces Pokémon trademarks against fan projects"},
		{Company: "take-two", Level: domain.CopyrightAggressive, Reason: "Pursues reverse-engineering and fan remake projects"},
		{Company: "square enix", Level: domain.CopyrightModerate, Reason: "Targets fan remakes of flagship titles"},
		{Company: "capcom", Level: domain.CopyrightModerate, Reason: "Targets fan projects using core franchises"},
		{Company: "konami", Level: domain.CopyrightModerate, Reason: "Targets fan projects using core franchises"},
		{Company: "rockstar", Level: domain.CopyrightModerate, Reason: "Tolerates mods, targets standalone fan remakes"},
		{Company: "activision", Level: domain.CopyrightModerate, Reason: "Targets fan-hosted multiplayer revivals"},
		{Company: "sega", Level: domain.CopyrightModFriendly, Reason: "Historically tolerant of non-commercial fan games"},
		{Company: "bethesda", Level: domain.CopyrightModFriendly, Reason: "Supports mods through official tooling"},
		{Company: "microsoft", Level: domain.CopyrightModFriendly, Reason: "Game content usage rules permit non-commercial fan work"},
	}
}

// Book is an immutable snapshot of company policies keyed by normalized name.
type Book struct {
	policies map[string]domain.CompanyPolicy
	keys     []string // sorted for deterministic lookup
}

// NewBook builds a snapshot. Later entries override earlier ones for the same
// normalized company name.
func NewBook(policies ...[]domain.CompanyPolicy) *Book {
	b := &Book{policies: make(map[string]domain.CompanyPolicy)}
	for _, set := range policies {
		for _, p := range set {
			key := textnorm.Normalize(p.Company)
			if key == "" {
				continue
			}
			p.Company = key
			b.policies[key] = p
		}
	}

	b.keys = make([]string, 0, len(b.policies))
	for k := range b.policies {
		b.keys = append(b.keys, k)
	}
	sort.Strings(b.keys)

	return b
}

// Len returns the number of companies in the book.
func (b *Book) Len() int {
	return len(b.policies)
}

// All returns every policy ordered by company.
func (b *Book) All() []domain.CompanyPolicy {
	out := make([]domain.CompanyPolicy, len(b.keys))
	for i, k := range b.keys {
		out[i] = b.policies[k]
	}
	return out
}

// Lookup returns the most restrictive policy whose company name appears in
// company as a whole word sequence ("Nintendo EPD" resolves to "nintendo").
func (b *Book) Lookup(company string) (domain.CompanyPolicy, bool) {
	if company == "" {
		return domain.CompanyPolicy{}, false
	}

	var (
		best  domain.CompanyPolicy
		found bool
	)
	for _, key := range b.keys {
		if !franchise.CompanyMatches(company, key) {
			continue
		}
		p := b.policies[key]
		if !found || p.Level > best.Level {
			best, found = p, true
		}
	}
	return best, found
}
