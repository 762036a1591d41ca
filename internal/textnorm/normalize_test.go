package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"Pokémon", "pokemon"},
		{"Café", "cafe"},
		{"Final Fantasy™", "final fantasy"},
		{"  The   Witcher®  3 ", "the witcher 3"},
		{"Ōkami HD", "okami hd"},
		{"Søren Łódź", "soren lodz"},
		{"Straße", "strasse"},
		{"Æon Flux©", "aeon flux"},
		{"İstanbul", "istanbul"},
		{"", ""},
		{"\t\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Pokémon Légendes: Arceus",
		"NieR:Automata™",
		"Brütal Legend",
		"Déjà Vu",
		"ŁÓDŹ",
		"Mötley Crüe Racing",
		"already normal",
		"İİ",
		string([]byte{0xff, 'a', 0xfe}),
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "normalize must be idempotent for %q", in)
	}
}

func TestNormalize_InvalidUTF8(t *testing.T) {
	assert.Equal(t, "ab", Normalize(string([]byte{'a', 0xff, 'b'})))
}

func TestIsEquivalent(t *testing.T) {
	assert.True(t, IsEquivalent("Pokémon", "POKEMON"))
	assert.True(t, IsEquivalent("Final Fantasy™ VII", "final  fantasy vii"))
	assert.False(t, IsEquivalent("Zelda", "Mario"))
}

func TestFranchiseVariants(t *testing.T) {
	t.Run("plain to accented", func(t *testing.T) {
		variants := FranchiseVariants("pokemon red")
		assert.Contains(t, variants, "pokémon red")
		assert.NotContains(t, variants, "pokemon red")
	})

	t.Run("accented to plain", func(t *testing.T) {
		variants := FranchiseVariants("Pokémon Red")
		assert.Contains(t, variants, "pokemon red")
	})

	t.Run("deterministic order", func(t *testing.T) {
		assert.Equal(t, FranchiseVariants("okami pokemon"), FranchiseVariants("okami pokemon"))
	})

	t.Run("no franchise", func(t *testing.T) {
		assert.Empty(t, FranchiseVariants("celeste"))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Nil(t, FranchiseVariants("   "))
	})
}
