package postgres

import (
	"time"

	"github.com/lib/pq"

	"game-search-service/internal/domain"
)

// GameModel is the GORM model for the games table. Nullable columns are
// pointers so enrichment can tell "missing" from "empty".
type GameModel struct {
	ID         string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ExternalID *int64  `gorm:"uniqueIndex"`
	Name       string  `gorm:"type:varchar(500);not null"`
	Summary    *string
	Developer  *string        `gorm:"type:varchar(255)"`
	Publisher  *string        `gorm:"type:varchar(255)"`
	Category   int            `gorm:"not null;default:0"`
	Genres     pq.StringArray `gorm:"type:text[]"`
	Platforms  pq.StringArray `gorm:"type:text[]"`

	ReleaseDate     *time.Time
	CriticRating    *float64
	UserRatingCount *int
	PopularityScore *float64
	CoverURL        *string

	// Moderation
	Greenlight bool `gorm:"not null;default:false"`
	Redlight   bool `gorm:"not null;default:false"`
	FlagReason *string

	LastSynced *time.Time
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for GameModel.
func (GameModel) TableName() string {
	return "games"
}

// ToDomain converts a row to a local candidate record.
func (m *GameModel) ToDomain() *domain.Game {
	g := &domain.Game{
		ID:              m.ID,
		Name:            m.Name,
		Summary:         deref(m.Summary),
		Developer:       deref(m.Developer),
		Publisher:       deref(m.Publisher),
		Category:        domain.Category(m.Category),
		Genres:          []string(m.Genres),
		Platforms:       []string(m.Platforms),
		ReleaseDate:     m.ReleaseDate,
		CriticRating:    m.CriticRating,
		UserRatingCount: m.UserRatingCount,
		PopularityScore: m.PopularityScore,
		CoverURL:        deref(m.CoverURL),
		Greenlight:      m.Greenlight,
		Redlight:        m.Redlight,
		FlagReason:      deref(m.FlagReason),
		Source:          domain.SourceLocal,
	}
	if m.ExternalID != nil {
		g.ExternalID = *m.ExternalID
	}
	return g
}

// FromCatalog builds a new row from an external catalog record. Moderation
// flags are never taken from the catalog.
func FromCatalog(g *domain.Game) *GameModel {
	m := &GameModel{
		Name:            g.Name,
		Summary:         nullString(g.Summary),
		Developer:       nullString(g.Developer),
		Publisher:       nullString(g.Publisher),
		Category:        int(g.Category),
		Genres:          pq.StringArray(g.Genres),
		Platforms:       pq.StringArray(g.Platforms),
		ReleaseDate:     g.ReleaseDate,
		CriticRating:    g.CriticRating,
		UserRatingCount: g.UserRatingCount,
		PopularityScore: g.PopularityScore,
		CoverURL:        nullString(g.CoverURL),
	}
	if g.ExternalID != 0 {
		id := g.ExternalID
		m.ExternalID = &id
	}
	return m
}

// CompanyPolicyModel is the GORM model for the company_policies table.
type CompanyPolicyModel struct {
	Company   string    `gorm:"type:varchar(255);primaryKey"`
	Level     string    `gorm:"type:varchar(20);not null"`
	Reason    string    `gorm:"type:text"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for CompanyPolicyModel.
func (CompanyPolicyModel) TableName() string {
	return "company_policies"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
