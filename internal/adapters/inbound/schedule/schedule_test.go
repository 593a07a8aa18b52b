package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"league-predictor/internal/core/league"
)

const sampleDoc = `{
  "games": [
    {
      "stage": "stage1", "match_id": 1, "format": "regular", "drawable": true,
      "teams": ["Shanghai", "New York"], "score": [2, 2],
      "rosters": [["a1","a2","a3","a4","a5","a6"], ["b1","b2","b3","b4","b5","b6"]],
      "played": true
    },
    {
      "stage": "stage1", "match_id": 2, "format": "regular", "drawable": false,
      "teams": ["Shanghai", "New York"], "played": false
    }
  ],
  "availabilities": [
    {"stage": "stage1", "match_number": 1, "team": "Shanghai",
     "players": ["a1","a2","a3","a4","a5","a6"]}
  ]
}`

func TestParseSplitsPlayedAndUpcoming(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc))
	require.NoError(t, err)

	played, upcoming, avail := doc.Split()
	require.Len(t, played, 1)
	require.Len(t, upcoming, 1)

	g := played[0]
	assert.Equal(t, [2]string{"Shanghai", "New York"}, g.Teams)
	assert.Equal(t, [2]int{2, 2}, g.Score)
	assert.Equal(t, league.FormatRegular, g.Format)
	assert.True(t, g.Drawable)
	assert.Len(t, g.Rosters[0], 6)

	assert.Equal(t, [2]int{0, 0}, upcoming[0].Score)

	key := league.MatchKey{Stage: "stage1", Number: 1}
	require.Contains(t, avail, key)
	assert.True(t, avail[key]["Shanghai"].Contains("a3"))
}

func TestParseRejectsUnknownFormat(t *testing.T) {
	_, err := Parse([]byte(`{"games":[{"stage":"s","match_id":1,"format":"bo9","teams":["A","B"],"played":false}]}`))
	assert.ErrorContains(t, err, "unknown format")
}

func TestParseRejectsWrongTeamCount(t *testing.T) {
	_, err := Parse([]byte(`{"games":[{"stage":"s","match_id":1,"format":"regular","teams":["A"],"played":false}]}`))
	assert.ErrorContains(t, err, "2 teams")
}

func TestParseRejectsOversizedRoster(t *testing.T) {
	_, err := Parse([]byte(`{"games":[{"stage":"s","match_id":1,"format":"regular","teams":["A","B"],
		"rosters":[["1","2","3","4","5","6","7"]],"played":false}]}`))
	assert.ErrorContains(t, err, "roster larger")
}

func TestParseRejectsZeroMatchNumber(t *testing.T) {
	_, err := Parse([]byte(`{"availabilities":[{"stage":"s","match_number":0,"team":"A","players":[]}]}`))
	assert.ErrorContains(t, err, "match numbers start at 1")
}

func TestNormalizeID(t *testing.T) {
	assert.Equal(t, "Sao Paulo", NormalizeID("  São   Paulo "))
	assert.Equal(t, "JJoNak", NormalizeID("JJoNak"))
	assert.Equal(t, "", NormalizeID(""))
}
