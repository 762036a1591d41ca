package igdb

import (
	"strings"
	"time"

	"game-search-service/internal/domain"
)

// gameFields is the APIcalypse field list requested for every game.
const gameFields = "name,summary,cover.url,first_release_date,genres.name,platforms.name," +
	"involved_companies.company.name,involved_companies.developer,involved_companies.publisher," +
	"aggregated_rating,total_rating,total_rating_count,category"

// GameItem represents a single game record returned by POST /games.
type GameItem struct {
	ID                int64             `json:"id"`
	Name              string            `json:"name"`
	Summary           string            `json:"summary"`
	Cover             *Image            `json:"cover,omitempty"`
	FirstReleaseDate  int64             `json:"first_release_date,omitempty"` // unix seconds
	Genres            []Named           `json:"genres,omitempty"`
	Platforms         []Named           `json:"platforms,omitempty"`
	InvolvedCompanies []InvolvedCompany `json:"involved_companies,omitempty"`
	AggregatedRating  *float64          `json:"aggregated_rating,omitempty"`
	TotalRating       *float64          `json:"total_rating,omitempty"`
	TotalRatingCount  *int              `json:"total_rating_count,omitempty"`
	Category          int               `json:"category"`
}

// Image is an expanded image reference.
type Image struct {
	URL string `json:"url"`
}

// Named is any expanded reference carrying only a name.
type Named struct {
	Name string `json:"name"`
}

// InvolvedCompany links a company to a game with its role flags.
type InvolvedCompany struct {
	Company   Named `json:"company"`
	Developer bool  `json:"developer"`
	Publisher bool  `json:"publisher"`
}

// ToDomain converts a catalog record to an external candidate record.
func (i *GameItem) ToDomain() *domain.Game {
	g := &domain.Game{
		ExternalID:      i.ID,
		Name:            i.Name,
		Summary:         i.Summary,
		Category:        domain.Category(i.Category),
		Genres:          names(i.Genres),
		Platforms:       names(i.Platforms),
		CriticRating:    i.AggregatedRating,
		UserRatingCount: i.TotalRatingCount,
		PopularityScore: i.TotalRating,
		Source:          domain.SourceExternal,
	}

	if i.Cover != nil {
		g.CoverURL = CoverURL(i.Cover.URL)
	}
	if i.FirstReleaseDate != 0 {
		released := time.Unix(i.FirstReleaseDate, 0).UTC()
		g.ReleaseDate = &released
	}

	// First credited developer and publisher win.
	for _, ic := range i.InvolvedCompanies {
		if ic.Developer && g.Developer == "" {
			g.Developer = ic.Company.Name
		}
		if ic.Publisher && g.Publisher == "" {
			g.Publisher = ic.Company.Name
		}
	}

	return g
}

// CoverURL turns a protocol-relative thumbnail url into an absolute
// full-resolution one.
func CoverURL(raw string) string {
	if raw == "" {
		return ""
	}
	u := strings.Replace(raw, "t_thumb", "t_1080p", 1)
	if strings.HasPrefix(u, "//") {
		u = "https:" + u
	}
	return u
}

func names(items []Named) []string {
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, n := range items {
		if n.Name != "" {
			out = append(out, n.Name)
		}
	}
	return out
}
