package query

// aliasRule maps an abbreviation or nickname to its spelled-out alternatives.
type aliasRule struct {
	key          string
	alternatives []string
}

// aliases is ordered so expansion output is deterministic.
var aliases = []aliasRule{
	{"ff7", []string{"final fantasy vii", "final fantasy 7"}},
	{"ff8", []string{"final fantasy viii", "final fantasy 8"}},
	{"ff9", []string{"final fantasy ix", "final fantasy 9"}},
	{"ff10", []string{"final fantasy x", "final fantasy 10"}},
	{"ff14", []string{"final fantasy xiv", "final fantasy 14"}},
	{"ff16", []string{"final fantasy xvi", "final fantasy 16"}},
	{"gta", []string{"grand theft auto"}},
	{"cod", []string{"call of duty"}},
	{"botw", []string{"breath of the wild"}},
	{"totk", []string{"tears of the kingdom"}},
	{"loz", []string{"the legend of zelda"}},
	{"mk8", []string{"mario kart 8"}},
	{"smb", []string{"super mario bros"}},
	{"ssb", []string{"super smash bros"}},
	{"smash bros", []string{"super smash bros"}},
	{"rdr2", []string{"red dead redemption 2", "red dead redemption ii"}},
	{"rdr", []string{"red dead redemption"}},
	{"mgs", []string{"metal gear solid"}},
	{"re4", []string{"resident evil 4"}},
	{"kh", []string{"kingdom hearts"}},
	{"dmc", []string{"devil may cry"}},
	{"tes", []string{"the elder scrolls"}},
	{"skyrim", []string{"the elder scrolls v skyrim"}},
	{"pkmn", []string{"pokemon", "pokémon"}},
	{"xc3", []string{"xenoblade chronicles 3"}},
}

// franchisePrefix adds the canonical series prefix for partial franchise mentions
// when the query lacks the marker word.
type franchisePrefix struct {
	mention string
	marker  string
	prefix  string
}

var franchisePrefixes = []franchisePrefix{
	{"mario", "super", "super mario"},
	{"zelda", "legend", "the legend of zelda"},
	{"smash", "super", "super smash bros"},
	{"metroid", "super", "super metroid"},
	{"sonic", "hedgehog", "sonic the hedgehog"},
	{"kirby", "dream", "kirby's dream land"},
	{"donkey kong", "country", "donkey kong country"},
	{"elder scrolls", "the elder", "the elder scrolls"},
}

// Intent keyword tables.
var (
	platformKeywords = []string{"pc", "ps5", "ps4", "xbox", "switch", "steam", "mobile"}
	companyKeywords  = []string{"sony", "microsoft", "valve", "ubisoft", "ea", "activision"}
	franchiseWords   = []string{
		"mario", "zelda", "pokemon", "sonic", "call of duty", "final fantasy",
		"metroid", "kirby", "halo", "resident evil", "street fighter", "mega man",
		"castlevania", "fire emblem", "dragon quest", "kingdom hearts",
	}
	genreKeywords = []string{"rpg", "action", "adventure", "strategy", "simulation", "sports", "racing", "puzzle"}
	specificMarks = []string{"the ", ": ", " of "}
	yearPhrases   = []string{"new games", "latest"}
)
