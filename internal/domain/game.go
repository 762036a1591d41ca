// Package domain contains the core business logic and entities.
// This package has no external dependencies (only stdlib).
package domain

import (
	"strconv"
	"time"
)

// Category is the catalog category of a game record.
type Category int

// Category values follow the external catalog's numeric codes so records can be
// persisted and mapped without a translation table.
const (
	CategoryMainGame            Category = 0
	CategoryDLC                 Category = 1
	CategoryExpansion           Category = 2
	CategoryBundle              Category = 3
	CategoryStandaloneExpansion Category = 4
	CategoryMod                 Category = 5
	CategoryEpisode             Category = 6
	CategorySeason              Category = 7
	CategoryRemake              Category = 8
	CategoryRemaster            Category = 9
	CategoryExpandedGame        Category = 10
	CategoryPort                Category = 11
	CategoryFork                Category = 12
	CategoryPack                Category = 13
	CategoryUpdate              Category = 14
)

// String returns the human-readable category name.
func (c Category) String() string {
	switch c {
	case CategoryMainGame:
		return "main_game"
	case CategoryDLC:
		return "dlc"
	case CategoryExpansion:
		return "expansion"
	case CategoryBundle:
		return "bundle"
	case CategoryStandaloneExpansion:
		return "standalone_expansion"
	case CategoryMod:
		return "mod"
	case CategoryEpisode:
		return "episode"
	case CategorySeason:
		return "season"
	case CategoryRemake:
		return "remake"
	case CategoryRemaster:
		return "remaster"
	case CategoryExpandedGame:
		return "expanded_game"
	case CategoryPort:
		return "port"
	case CategoryFork:
		return "fork"
	case CategoryPack:
		return "pack"
	case CategoryUpdate:
		return "update"
	default:
		return "unknown"
	}
}

// Source records where a candidate came from.
type Source string

const (
	SourceLocal    Source = "local"
	SourceExternal Source = "external"
	SourceMerged   Source = "merged"
)

// Game is a candidate record as seen by the search pipeline.
// At least one of ID or ExternalID is set.
type Game struct {
	// Identity
	ID         string `json:"id,omitempty"`          // Local store primary key
	ExternalID int64  `json:"external_id,omitempty"` // External catalog id (0 = unknown)

	// Descriptive
	Name        string     `json:"name"`
	Summary     string     `json:"summary,omitempty"`
	Developer   string     `json:"developer,omitempty"`
	Publisher   string     `json:"publisher,omitempty"`
	Category    Category   `json:"category"`
	Genres      []string   `json:"genres,omitempty"`
	Platforms   []string   `json:"platforms,omitempty"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`

	// Quality signals
	CriticRating    *float64 `json:"critic_rating,omitempty"` // 0-100
	UserRatingCount *int     `json:"user_rating_count,omitempty"`
	PopularityScore *float64 `json:"popularity_score,omitempty"`
	CoverURL        string   `json:"cover_url,omitempty"`

	// Manual moderation overrides
	Greenlight bool   `json:"greenlight,omitempty"` // never filter
	Redlight   bool   `json:"redlight,omitempty"`   // always filter
	FlagReason string `json:"flag_reason,omitempty"`

	Source Source `json:"source"`
}

// IdentityKey returns the merge key for the game. Local rows key off their
// primary key, external rows off the catalog id.
func (g *Game) IdentityKey() string {
	if g.ID != "" && g.Source != SourceExternal {
		return "local:" + g.ID
	}
	if g.ExternalID != 0 {
		return "ext:" + strconv.FormatInt(g.ExternalID, 10)
	}
	return "local:" + g.ID
}

// HasCompany reports whether either developer or publisher is known.
func (g *Game) HasCompany() bool {
	return g.Developer != "" || g.Publisher != ""
}

// MetadataCompleteness returns the fraction of descriptive fields present.
func (g *Game) MetadataCompleteness() float64 {
	present := 0
	fields := []bool{
		g.Summary != "",
		g.Developer != "",
		g.Publisher != "",
		len(g.Genres) > 0,
		len(g.Platforms) > 0,
		g.ReleaseDate != nil,
		g.CoverURL != "",
		g.CriticRating != nil,
	}
	for _, ok := range fields {
		if ok {
			present++
		}
	}

	return float64(present) / float64(len(fields))
}

// YearsSinceRelease returns the age of the game in years relative to now.
// The second return value is false when the release date is unknown or in the future.
func (g *Game) YearsSinceRelease(now time.Time) (float64, bool) {
	if g.ReleaseDate == nil || g.ReleaseDate.After(now) {
		return 0, false
	}
	return now.Sub(*g.ReleaseDate).Hours() / 24 / 365.25, true
}

// WithSource returns a shallow copy of the game tagged with the given source.
func (g *Game) WithSource(s Source) *Game {
	cp := *g
	cp.Source = s
	return &cp
}

// MergeFrom returns a merged copy of a local game with the catalog record ext:
// missing descriptive fields are filled from ext, ratings keep the larger value
// and a known catalog popularity wins. Identity and moderation flags stay local.
func (g *Game) MergeFrom(ext *Game) *Game {
	cp := *g
	cp.Source = SourceMerged

	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&cp.Summary, ext.Summary)
	fill(&cp.Developer, ext.Developer)
	fill(&cp.Publisher, ext.Publisher)
	fill(&cp.CoverURL, ext.CoverURL)

	if cp.ReleaseDate == nil {
		cp.ReleaseDate = ext.ReleaseDate
	}
	if len(cp.Genres) == 0 {
		cp.Genres = ext.Genres
	}
	if len(cp.Platforms) == 0 {
		cp.Platforms = ext.Platforms
	}
	if ext.CriticRating != nil && (cp.CriticRating == nil || *ext.CriticRating > *cp.CriticRating) {
		cp.CriticRating = ext.CriticRating
	}
	if ext.UserRatingCount != nil && (cp.UserRatingCount == nil || *ext.UserRatingCount > *cp.UserRatingCount) {
		cp.UserRatingCount = ext.UserRatingCount
	}
	if ext.PopularityScore != nil {
		cp.PopularityScore = ext.PopularityScore
	}
	return &cp
}
