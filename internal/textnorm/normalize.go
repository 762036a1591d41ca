// Package textnorm produces accent-insensitive comparison keys for game titles.
package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// residual maps characters that canonical decomposition leaves intact.
var residual = strings.NewReplacer(
	"ø", "o", "Ø", "o",
	"đ", "d", "Đ", "d",
	"ł", "l", "Ł", "l",
	"æ", "ae", "Æ", "ae",
	"œ", "oe", "Œ", "oe",
	"ß", "ss",
	"ð", "d", "Ð", "d",
	"þ", "th", "Þ", "th",
	"ı", "i",
	"ħ", "h", "Ħ", "h",
	// trademark glyphs
	"™", "", "®", "", "©", "", "℠", "",
)

// Normalize lowercases text, strips diacritics and trademark glyphs and collapses
// whitespace. It never fails: invalid input degrades to a best-effort key.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "")
	}

	lowered := strings.ToLower(text)

	// The transformer chain is stateful, so build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, lowered)
	if err != nil {
		stripped = lowered
	}

	return strings.Join(strings.Fields(residual.Replace(stripped)), " ")
}

// IsEquivalent reports whether a and b normalize to the same key.
func IsEquivalent(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// franchisePair links the plain spelling of a franchise name to its accented form.
type franchisePair struct {
	plain    string
	accented string
}

// accentedFranchises is ordered so variant output is deterministic.
var accentedFranchises = []franchisePair{
	{"pokemon", "pokémon"},
	{"pokken", "pokkén"},
	{"okami", "ōkami"},
	{"brutal legend", "brütal legend"},
	{"deja vu", "déjà vu"},
	{"mobius", "möbius"},
}

// FranchiseVariants returns the accent variants of query for known accented
// franchise names, in both directions, so "pokemon" and "pokémon" find each other.
// The query itself is not included.
func FranchiseVariants(query string) []string {
	q := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	if q == "" {
		return nil
	}

	seen := map[string]bool{q: true}
	var out []string
	add := func(v string) {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}

	for _, p := range accentedFranchises {
		if strings.Contains(q, p.plain) {
			add(strings.ReplaceAll(q, p.plain, p.accented))
		}
		if strings.Contains(q, p.accented) {
			add(strings.ReplaceAll(q, p.accented, p.plain))
		}
	}
	add(Normalize(q))

	return out
}
