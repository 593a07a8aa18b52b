// Package schedule loads the league's game and availability data from a
// JSON document, either a local file or an HTTP endpoint.
package schedule

import (
	"encoding/json"
	"fmt"
	"os"

	"league-predictor/internal/core/league"
)

// GameRecord is one series map as published by the data source. Played
// records carry a final score; upcoming ones are simulated.
type GameRecord struct {
	Stage    string     `json:"stage"`
	MatchID  int        `json:"match_id"`
	Format   string     `json:"format"`
	Drawable bool       `json:"drawable"`
	Teams    []string   `json:"teams"`
	Score    []int      `json:"score,omitempty"`
	Rosters  [][]string `json:"rosters,omitempty"`
	Played   bool       `json:"played"`
}

// AvailabilityRecord lists the players eligible for one team in one series.
type AvailabilityRecord struct {
	Stage       string   `json:"stage"`
	MatchNumber int      `json:"match_number"`
	Team        string   `json:"team"`
	Players     []string `json:"players"`
}

// Document is the full schedule payload. Games are in chronological order.
type Document struct {
	Games          []GameRecord         `json:"games"`
	Availabilities []AvailabilityRecord `json:"availabilities"`
}

// Load reads and validates a schedule document from a file.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read schedule: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a schedule document.
func Parse(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("parse schedule: %w", err)
	}
	if err := doc.validate(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (d Document) validate() error {
	for i, g := range d.Games {
		if len(g.Teams) != 2 {
			return fmt.Errorf("schedule: game %d: want 2 teams, got %d", i, len(g.Teams))
		}
		if g.Played && len(g.Score) != 2 {
			return fmt.Errorf("schedule: game %d: played game needs a 2-entry score", i)
		}
		for _, s := range g.Score {
			if s < 0 {
				return fmt.Errorf("schedule: game %d: negative score", i)
			}
		}
		if format := league.MatchFormat(g.Format); format != league.FormatRegular && format != league.FormatTitle {
			return fmt.Errorf("schedule: game %d: unknown format %q", i, g.Format)
		}
		if len(g.Rosters) > 2 {
			return fmt.Errorf("schedule: game %d: more than 2 rosters", i)
		}
		for _, r := range g.Rosters {
			if len(r) > league.RosterSize {
				return fmt.Errorf("schedule: game %d: roster larger than %d", i, league.RosterSize)
			}
		}
	}
	for i, a := range d.Availabilities {
		if a.Team == "" {
			return fmt.Errorf("schedule: availability %d: missing team", i)
		}
		if a.MatchNumber < 1 {
			return fmt.Errorf("schedule: availability %d: match numbers start at 1", i)
		}
	}
	return nil
}

// Split converts the document into the domain model: played games ready
// for replay, upcoming games for simulation, and the availability table.
// All identifiers are normalized.
func (d Document) Split() (played, upcoming []league.Game, avail league.Availabilities) {
	for _, rec := range d.Games {
		g := rec.game()
		if rec.Played {
			played = append(played, g)
		} else {
			upcoming = append(upcoming, g)
		}
	}

	avail = make(league.Availabilities)
	for _, rec := range d.Availabilities {
		key := league.MatchKey{Stage: rec.Stage, Number: rec.MatchNumber}
		teams, ok := avail[key]
		if !ok {
			teams = make(map[string]league.PlayerSet)
			avail[key] = teams
		}
		players := make([]string, len(rec.Players))
		for i, p := range rec.Players {
			players[i] = NormalizeID(p)
		}
		teams[NormalizeID(rec.Team)] = league.NewPlayerSet(players...)
	}
	return played, upcoming, avail
}

func (rec GameRecord) game() league.Game {
	g := league.Game{
		Stage:    rec.Stage,
		MatchID:  rec.MatchID,
		Format:   league.MatchFormat(rec.Format),
		Drawable: rec.Drawable,
		Teams:    [2]string{NormalizeID(rec.Teams[0]), NormalizeID(rec.Teams[1])},
	}
	if len(rec.Score) == 2 {
		g.Score = [2]int{rec.Score[0], rec.Score[1]}
	}
	for i, r := range rec.Rosters {
		if i >= 2 {
			break
		}
		roster := make(league.Roster, len(r))
		for j, p := range r {
			roster[j] = NormalizeID(p)
		}
		g.Rosters[i] = roster
	}
	return g
}
