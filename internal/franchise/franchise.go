// Package franchise holds the lookup tables of well-known game franchises shared by
// ranking and content policy: keywords, owning company, official studios and
// fan-content indicators. All matching runs on textnorm-normalized text.
package franchise

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"game-search-service/internal/domain"
	"game-search-service/internal/textnorm"
)

// Franchise describes one well-known series.
type Franchise struct {
	Name     string
	Keywords []string
	Owner    string
	Official []string // developers and publishers that ship official entries
	// Protected franchises are enforced by their owner against fan content.
	Protected bool
}

// table is ordered so detection is deterministic when a text names several franchises.
var table = []Franchise{
	{
		Name:      "pokemon",
		Keywords:  []string{"pokemon", "pokken"},
		Owner:     "nintendo",
		Official:  []string{"nintendo", "game freak", "the pokemon company", "creatures", "ilca", "genius sonority", "hal laboratory", "spike chunsoft"},
		Protected: true,
	},
	{
		Name:      "zelda",
		Keywords:  []string{"zelda"},
		Owner:     "nintendo",
		Official:  []string{"nintendo", "grezzo", "koei tecmo", "capcom", "omega force", "flagship"},
		Protected: true,
	},
	{
		Name:      "mario",
		Keywords:  []string{"mario"},
		Owner:     "nintendo",
		Official:  []string{"nintendo", "intelligent systems", "hal laboratory", "camelot", "alphadream", "retro studios", "ubisoft", "hudson soft", "nd cube", "next level games"},
		Protected: true,
	},
	{
		Name:      "metroid",
		Keywords:  []string{"metroid"},
		Owner:     "nintendo",
		Official:  []string{"nintendo", "retro studios", "mercurysteam", "next level games"},
		Protected: true,
	},
	{
		Name:      "kirby",
		Keywords:  []string{"kirby"},
		Owner:     "nintendo",
		Official:  []string{"nintendo", "hal laboratory"},
		Protected: true,
	},
	{
		Name:      "smash bros",
		Keywords:  []string{"smash bros", "super smash"},
		Owner:     "nintendo",
		Official:  []string{"nintendo", "sora", "bandai namco"},
		Protected: true,
	},
	{
		Name:      "donkey kong",
		Keywords:  []string{"donkey kong"},
		Owner:     "nintendo",
		Official:  []string{"nintendo", "rare", "retro studios"},
		Protected: true,
	},
	{
		Name:      "fire emblem",
		Keywords:  []string{"fire emblem"},
		Owner:     "nintendo",
		Official:  []string{"nintendo", "intelligent systems", "koei tecmo"},
		Protected: true,
	},
	{
		Name:     "sonic",
		Keywords: []string{"sonic the hedgehog", "sonic"},
		Owner:    "sega",
		Official: []string{"sega", "sonic team", "dimps", "sumo digital", "headcannon"},
	},
	{
		Name:     "final fantasy",
		Keywords: []string{"final fantasy"},
		Owner:    "square enix",
		Official: []string{"square enix", "square", "squaresoft"},
	},
	{
		Name:     "dragon quest",
		Keywords: []string{"dragon quest"},
		Owner:    "square enix",
		Official: []string{"square enix", "enix", "armor project"},
	},
	{
		Name:     "kingdom hearts",
		Keywords: []string{"kingdom hearts"},
		Owner:    "square enix",
		Official: []string{"square enix", "square"},
	},
	{
		Name:     "call of duty",
		Keywords: []string{"call of duty"},
		Owner:    "activision",
		Official: []string{"activision", "infinity ward", "treyarch", "sledgehammer games", "raven software"},
	},
	{
		Name:     "halo",
		Keywords: []string{"halo"},
		Owner:    "microsoft",
		Official: []string{"microsoft", "343 industries", "bungie", "xbox game studios"},
	},
	{
		Name:     "resident evil",
		Keywords: []string{"resident evil"},
		Owner:    "capcom",
		Official: []string{"capcom"},
	},
	{
		Name:     "street fighter",
		Keywords: []string{"street fighter"},
		Owner:    "capcom",
		Official: []string{"capcom"},
	},
	{
		Name:     "mega man",
		Keywords: []string{"mega man", "megaman"},
		Owner:    "capcom",
		Official: []string{"capcom", "inti creates"},
	},
	{
		Name:     "castlevania",
		Keywords: []string{"castlevania"},
		Owner:    "konami",
		Official: []string{"konami"},
	},
	{
		Name:     "metal gear",
		Keywords: []string{"metal gear"},
		Owner:    "konami",
		Official: []string{"konami", "kojima productions"},
	},
	{
		Name:     "elder scrolls",
		Keywords: []string{"elder scrolls", "skyrim"},
		Owner:    "bethesda",
		Official: []string{"bethesda", "zenimax"},
	},
	{
		Name:     "grand theft auto",
		Keywords: []string{"grand theft auto"},
		Owner:    "rockstar",
		Official: []string{"rockstar"},
	},
}

// fanPatterns mark fan-made or derivative content in a title.
var fanPatterns = []string{
	"rom hack", "romhack", "fan made", "fan-made", "fangame", "fan game",
	"unofficial", "demake", "fan remake", "fan edition",
}

// fanTitles are well-known fan projects whose names carry no fan marker.
var fanTitles = []string{
	"pokemon uranium", "pokemon insurgence", "pokemon reborn", "pokemon rejuvenation",
	"pokemon prism", "pokemon clover", "pokemon light platinum", "pokemon glazed",
	"am2r", "another metroid 2 remake", "super mario 64 online", "mario forever",
	"super mario bros x", "sonic robo blast", "zelda classic", "zelda mystery of solarus",
}

// commercialSignals mark an attempt to sell fan content.
var commercialSignals = []string{"commercial", "paid", "premium", "kickstarter", "patreon", "crowdfund"}

// Detect returns the first franchise whose keyword appears in text.
func Detect(text string) (*Franchise, bool) {
	n := textnorm.Normalize(text)
	if n == "" {
		return nil, false
	}
	for i := range table {
		if mentions(n, table[i].Keywords) {
			return &table[i], true
		}
	}
	return nil, false
}

// DetectAll returns every franchise named in text, in table order.
func DetectAll(text string) []*Franchise {
	n := textnorm.Normalize(text)
	if n == "" {
		return nil
	}
	var out []*Franchise
	for i := range table {
		if mentions(n, table[i].Keywords) {
			out = append(out, &table[i])
		}
	}
	return out
}

// IsOfficial reports whether the game's developer or publisher is one of the
// franchise's official studios.
func (f *Franchise) IsOfficial(g *domain.Game) bool {
	return isAnyOf(g.Developer, f.Official) || isAnyOf(g.Publisher, f.Official)
}

// IsFanContent reports whether the game looks like fan-made content: a fan
// marker or known fan title in its name, or a mod/fork category.
func IsFanContent(g *domain.Game) bool {
	if g.Category == domain.CategoryMod || g.Category == domain.CategoryFork {
		return true
	}
	n := textnorm.Normalize(g.Name)
	return containsAny(n, fanPatterns) || containsAny(n, fanTitles)
}

// HasCommercialSignal reports whether the game's name or summary suggests it is sold.
func HasCommercialSignal(g *domain.Game) bool {
	return mentions(textnorm.Normalize(g.Name+" "+g.Summary), commercialSignals)
}

// CompanyMatches reports whether company names the given studio, matching on word
// boundaries so "nintendo" matches "Nintendo EPD" but "rare" does not match "rarely".
func CompanyMatches(company, studio string) bool {
	c := textnorm.Normalize(company)
	if c == "" || studio == "" {
		return false
	}
	return mentions(c, []string{studio})
}

func isAnyOf(company string, studios []string) bool {
	for _, s := range studios {
		if CompanyMatches(company, s) {
			return true
		}
	}
	return false
}

// mentions matches each keyword as a whole word or word sequence.
func mentions(text string, keywords []string) bool {
	for _, kw := range keywords {
		idx := 0
		for {
			i := strings.Index(text[idx:], kw)
			if i < 0 {
				break
			}
			start := idx + i
			end := start + len(kw)
			before, _ := utf8.DecodeLastRuneInString(text[:start])
			after, _ := utf8.DecodeRuneInString(text[end:])
			if isBoundary(before) && isBoundary(after) {
				return true
			}
			idx = start + 1
		}
	}
	return false
}

// isBoundary treats the empty-string sentinel (utf8.RuneError) as a boundary.
func isBoundary(r rune) bool {
	return r == utf8.RuneError || (!unicode.IsLetter(r) && !unicode.IsDigit(r))
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
