package franchise

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game-search-service/internal/domain"
)

func TestDetect(t *testing.T) {
	f, ok := Detect("Pokémon Red")
	require.True(t, ok)
	assert.Equal(t, "pokemon", f.Name)
	assert.Equal(t, "nintendo", f.Owner)

	_, ok = Detect("Celeste")
	assert.False(t, ok)

	_, ok = Detect("")
	assert.False(t, ok)
}

func TestDetect_WholeWords(t *testing.T) {
	_, ok := Detect("Supermarioland clone")
	assert.False(t, ok, "keywords match on word boundaries only")
}

func TestDetectAll(t *testing.T) {
	all := DetectAll("Mario and Zelda crossover")
	require.Len(t, all, 2)
	assert.Equal(t, "zelda", all[0].Name, "table order")
	assert.Equal(t, "mario", all[1].Name)
}

func TestIsOfficial(t *testing.T) {
	f, ok := Detect("pokemon")
	require.True(t, ok)

	assert.True(t, f.IsOfficial(&domain.Game{Developer: "Game Freak"}))
	assert.True(t, f.IsOfficial(&domain.Game{Publisher: "Nintendo EPD"}))
	assert.False(t, f.IsOfficial(&domain.Game{Developer: "Some Fan Team"}))
	assert.False(t, f.IsOfficial(&domain.Game{}))
}

func TestIsFanContent(t *testing.T) {
	tests := []struct {
		name string
		game domain.Game
		want bool
	}{
		{"rom hack marker", domain.Game{Name: "Pokemon Crystal Rom Hack"}, true},
		{"known fan title", domain.Game{Name: "Pokémon Uranium"}, true},
		{"mod category", domain.Game{Name: "Skyrim Overhaul", Category: domain.CategoryMod}, true},
		{"official", domain.Game{Name: "Pokemon Gold", Developer: "Game Freak"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsFanContent(&tt.game))
		})
	}
}

func TestHasCommercialSignal(t *testing.T) {
	assert.True(t, HasCommercialSignal(&domain.Game{Name: "Mario Kart Fan Edition", Summary: "Support us on Patreon"}))
	assert.False(t, HasCommercialSignal(&domain.Game{Name: "Mario Forever", Summary: "A free tribute"}))
}

func TestCompanyMatches(t *testing.T) {
	assert.True(t, CompanyMatches("Nintendo EPD", "nintendo"))
	assert.False(t, CompanyMatches("Nintendomania Ltd", "nintendo"))
	assert.False(t, CompanyMatches("", "nintendo"))
	assert.False(t, CompanyMatches("Nintendo", ""))
}
