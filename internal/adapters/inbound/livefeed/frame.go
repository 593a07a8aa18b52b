package livefeed

import (
	"encoding/json"
	"fmt"

	"league-predictor/internal/adapters/inbound/schedule"
	"league-predictor/internal/core/league"
)

// Frame is one live feed message. Type "map" carries a finished map of a
// series; Final marks the last map, meaning the series is over.
type Frame struct {
	Type     string     `json:"type"`
	Stage    string     `json:"stage"`
	MatchID  int        `json:"match_id"`
	Format   string     `json:"format"`
	Drawable bool       `json:"drawable"`
	Teams    []string   `json:"teams"`
	Score    []int      `json:"score"`
	Rosters  [][]string `json:"rosters,omitempty"`
	Final    bool       `json:"final"`
	TS       int64      `json:"ts"` // feed push time, unix millis
}

// ParseFrame decodes a map frame into the domain model. The second result
// reports whether the frame closed its series.
func ParseFrame(raw []byte) (league.Game, bool, error) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return league.Game{}, false, fmt.Errorf("livefeed: decode frame: %w", err)
	}
	if f.Type != "map" {
		return league.Game{}, false, fmt.Errorf("livefeed: unexpected frame type %q", f.Type)
	}
	if len(f.Teams) != 2 {
		return league.Game{}, false, fmt.Errorf("livefeed: want 2 teams, got %d", len(f.Teams))
	}
	if len(f.Score) != 2 {
		return league.Game{}, false, fmt.Errorf("livefeed: want a 2-entry score, got %d", len(f.Score))
	}
	if f.Score[0] < 0 || f.Score[1] < 0 {
		return league.Game{}, false, fmt.Errorf("livefeed: negative score")
	}
	format := league.MatchFormat(f.Format)
	if format != league.FormatRegular && format != league.FormatTitle {
		return league.Game{}, false, fmt.Errorf("livefeed: unknown format %q", f.Format)
	}

	g := league.Game{
		Stage:    f.Stage,
		MatchID:  f.MatchID,
		Format:   format,
		Drawable: f.Drawable,
		Teams:    [2]string{schedule.NormalizeID(f.Teams[0]), schedule.NormalizeID(f.Teams[1])},
		Score:    [2]int{f.Score[0], f.Score[1]},
	}
	for i, r := range f.Rosters {
		if i >= 2 {
			break
		}
		roster := make(league.Roster, len(r))
		for j, p := range r {
			roster[j] = schedule.NormalizeID(p)
		}
		g.Rosters[i] = roster
	}
	return g, f.Final, nil
}
