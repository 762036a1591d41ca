// Command igdb is a local stand-in for the IGDB games endpoint used during
// development. It understands the two query shapes the service sends:
// `search "<q>"; ...` and `where id = (...); ...`.
package main

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type company struct {
	Company   named `json:"company"`
	Developer bool  `json:"developer"`
	Publisher bool  `json:"publisher"`
}

type named struct {
	Name string `json:"name"`
}

type game struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Summary           string    `json:"summary,omitempty"`
	CoverURL          string    `json:"-"`
	FirstReleaseDate  int64     `json:"first_release_date,omitempty"`
	Genres            []named   `json:"genres,omitempty"`
	Platforms         []named   `json:"platforms,omitempty"`
	InvolvedCompanies []company `json:"involved_companies,omitempty"`
	AggregatedRating  float64   `json:"aggregated_rating,omitempty"`
	TotalRatingCount  int       `json:"total_rating_count,omitempty"`
	Category          int       `json:"category"`
}

func (g game) MarshalJSON() ([]byte, error) {
	type plain game
	out := struct {
		plain
		Cover map[string]string `json:"cover,omitempty"`
	}{plain: plain(g)}
	if g.CoverURL != "" {
		out.Cover = map[string]string{"url": g.CoverURL}
	}
	return json.Marshal(out)
}

func dev(name string) company { return company{Company: named{name}, Developer: true} }
func pub(name string) company { return company{Company: named{name}, Publisher: true} }

var catalog = []game{
	{ID: 26226, Name: "Celeste", Summary: "Help Madeline survive her inner demons on her journey to the top of Celeste Mountain.",
		CoverURL: "//images.igdb.com/igdb/image/upload/t_thumb/co3byy.jpg", FirstReleaseDate: 1516838400,
		Genres: []named{{"Platform"}, {"Indie"}}, Platforms: []named{{"PC (Microsoft Windows)"}, {"Nintendo Switch"}},
		InvolvedCompanies: []company{dev("Maddy Makes Games"), pub("Maddy Makes Games")}, AggregatedRating: 91, TotalRatingCount: 1800},
	{ID: 1942, Name: "The Witcher 3: Wild Hunt", FirstReleaseDate: 1431993600,
		Genres: []named{{"Role-playing (RPG)"}}, InvolvedCompanies: []company{dev("CD Projekt RED"), pub("CD Projekt")},
		AggregatedRating: 93, TotalRatingCount: 5200},
	{ID: 900001, Name: "Obscuria", Summary: "A forgotten puzzle game.", FirstReleaseDate: 1104537600},
	{ID: 900002, Name: "Obscuria II", Summary: "The sequel nobody played.", FirstReleaseDate: 1167609600},
	{ID: 900003, Name: "Obscuria Collection", Category: 3},
	{ID: 1025, Name: "Pokémon Red", FirstReleaseDate: 824083200,
		InvolvedCompanies: []company{dev("Game Freak"), pub("Nintendo")}, AggregatedRating: 89, TotalRatingCount: 900},
	{ID: 72, Name: "Portal 2", InvolvedCompanies: []company{dev("Valve"), pub("Valve")}, AggregatedRating: 95, TotalRatingCount: 4100},
}

var (
	searchRe = regexp.MustCompile(`search\s+"((?:[^"\\]|\\.)*)"`)
	idsRe    = regexp.MustCompile(`where\s+id\s*=\s*\(([^)]*)\)`)
	limitRe  = regexp.MustCompile(`limit\s+(\d+)`)
)

func query(body string) []game {
	limit := 10
	if m := limitRe.FindStringSubmatch(body); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			limit = n
		}
	}

	var out []game
	switch {
	case searchRe.MatchString(body):
		q := strings.ToLower(strings.ReplaceAll(searchRe.FindStringSubmatch(body)[1], `\"`, `"`))
		for _, g := range catalog {
			if strings.Contains(strings.ToLower(g.Name), q) {
				out = append(out, g)
			}
		}
	case idsRe.MatchString(body):
		want := map[int64]bool{}
		for _, p := range strings.Split(idsRe.FindStringSubmatch(body)[1], ",") {
			if id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64); err == nil {
				want[id] = true
			}
		}
		for _, g := range catalog {
			if want[g.ID] {
				out = append(out, g)
			}
		}
	}

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func main() {
	http.HandleFunc("/v4/games", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if r.Header.Get("Client-ID") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		// Simulate network latency (50-200ms)
		time.Sleep(time.Duration(50+time.Now().UnixNano()%150) * time.Millisecond)

		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		games := query(string(body))
		if games == nil {
			games = []game{}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(games); err != nil {
			log.Printf("[IGDB mock] Write error: %v", err)
		}

		log.Printf("[IGDB mock] %s %s - %d results", r.Method, r.URL.Path, len(games))
	})

	log.Println("Mock IGDB running on :8081")
	server := &http.Server{
		Addr:         ":8081",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
