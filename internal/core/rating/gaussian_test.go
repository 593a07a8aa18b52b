package rating

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"league-predictor/internal/core/league"
	"league-predictor/internal/core/roster"
	"league-predictor/internal/core/standings"
)

func TestDrawMarginZeroWhenDrawsImpossible(t *testing.T) {
	env := newEnv(DefaultParams(), 0)
	assert.InDelta(t, 0, env.DrawMargin(2), 1e-12)
}

func TestDrawMarginGrowsWithDrawProbability(t *testing.T) {
	p := DefaultParams()
	narrow := newEnv(p, 0.05)
	wide := newEnv(p, 0.30)
	assert.Greater(t, wide.DrawMargin(2), narrow.DrawMargin(2))
	assert.Greater(t, narrow.DrawMargin(2), 0.0)
}

func TestPredictEqualRatingsIsEven(t *testing.T) {
	m := NewTeamGaussian(DefaultParams())

	p := m.Predict([2]string{"SHD", "NYE"}, [2]league.Roster{}, true)
	assert.InDelta(t, p.Win, p.Loss(), 1e-12)
	assert.Greater(t, p.Draw, 0.0)
	assert.InDelta(t, 1, p.Win+p.Draw+p.Loss(), 1e-12)
}

func TestPredictStrictEnvironmentNeverDraws(t *testing.T) {
	m := NewTeamGaussian(DefaultParams())
	m.Train(decisiveGame("stage1", 1, "SHD", "NYE", 3, 0))

	p := m.Predict([2]string{"SHD", "NYE"}, [2]league.Roster{}, false)
	assert.InDelta(t, 0, p.Draw, 1e-12)
	assert.Greater(t, p.Win, 0.5)
}

func TestPredictIsSideSymmetric(t *testing.T) {
	m := NewTeamGaussian(DefaultParams())
	m.Train(decisiveGame("stage1", 1, "SHD", "NYE", 3, 1))
	m.Train(decisiveGame("stage1", 2, "SHD", "NYE", 2, 1))

	ab := m.Predict([2]string{"SHD", "NYE"}, [2]league.Roster{}, true)
	ba := m.Predict([2]string{"NYE", "SHD"}, [2]league.Roster{}, true)
	assert.InDelta(t, ab.Win, ba.Loss(), 1e-9)
	assert.InDelta(t, ab.Draw, ba.Draw, 1e-9)
}

func TestTrainMovesWinnerUpLoserDown(t *testing.T) {
	m := NewTeamGaussian(DefaultParams())
	prior := m.Prior()

	m.Train(decisiveGame("stage1", 1, "SHD", "NYE", 3, 0))

	winner := m.Rating("SHD")
	loser := m.Rating("NYE")
	assert.Greater(t, winner.Mu, prior.Mu)
	assert.Less(t, loser.Mu, prior.Mu)
	assert.Less(t, winner.Sigma, prior.Sigma)
	assert.Less(t, loser.Sigma, prior.Sigma)
}

func TestTrainDrawPullsRatingsTogether(t *testing.T) {
	m := NewTeamGaussian(DefaultParams())
	for i := 1; i <= 3; i++ {
		m.Train(decisiveGame("stage1", i, "SHD", "NYE", 3, 0))
	}
	highBefore := m.Rating("SHD").Mu
	lowBefore := m.Rating("NYE").Mu
	require.Greater(t, highBefore, lowBefore)

	m.Train(league.Game{
		Stage: "stage1", MatchID: 4, Format: league.FormatRegular,
		Drawable: true, Teams: [2]string{"SHD", "NYE"}, Score: [2]int{1, 1},
	})

	assert.Less(t, m.Rating("SHD").Mu, highBefore)
	assert.Greater(t, m.Rating("NYE").Mu, lowBefore)
}

func playerGame(stage string, id int, a, b string, sa, sb int, ra, rb league.Roster) league.Game {
	g := decisiveGame(stage, id, a, b, sa, sb)
	g.Rosters = [2]league.Roster{ra, rb}
	return g
}

func teamRoster(prefix string) league.Roster {
	r := make(league.Roster, 0, league.RosterSize)
	for i := 0; i < league.RosterSize; i++ {
		r = append(r, fmt.Sprintf("%s%d", prefix, i))
	}
	return r
}

func TestPlayerTrainingUpdatesRosterAndSnapshots(t *testing.T) {
	tr := standings.NewTracker()
	rh := roster.NewHistory(0)
	shd := teamRoster("shd")
	nye := teamRoster("nye")
	avail := league.Availabilities{
		{Stage: "stage1", Number: 1}: {
			"SHD": league.NewPlayerSet(shd...),
			"NYE": league.NewPlayerSet(nye...),
		},
	}

	m := NewPlayerGaussian(DefaultParams(), tr, rh, avail)
	prior := m.Prior()

	g := playerGame("stage1", 1, "SHD", "NYE", 3, 1, shd, nye)
	rh.Record("SHD", shd)
	rh.Record("NYE", nye)
	tr.Update(g)
	m.Train(g)

	for _, p := range shd {
		assert.Greater(t, m.Rating(p).Mu, prior.Mu, p)
	}
	for _, p := range nye {
		assert.Less(t, m.Rating(p).Mu, prior.Mu, p)
	}

	// Each side's strongest eligible roster is the one it fielded.
	assert.Equal(t, shd, m.BestRoster("SHD"))
	assert.Equal(t, nye, m.BestRoster("NYE"))

	key := league.MatchKey{Stage: "stage1", Number: 1}
	snap := m.History().At(key)
	require.NotNil(t, snap)
	assert.Contains(t, snap, "shd0")
	assert.Contains(t, snap, "SHD")
	assert.Contains(t, snap, "NYE")
	assert.Equal(t, []league.MatchKey{key}, m.History().Keys())

	// The synthetic team entry summarizes its best roster.
	team := m.Rating("SHD")
	assert.Greater(t, team.Mu, prior.Mu)
}

func TestPlayerTrainingToleratesMissingAvailability(t *testing.T) {
	tr := standings.NewTracker()
	m := NewPlayerGaussian(DefaultParams(), tr, roster.NewHistory(0), league.Availabilities{})
	g := playerGame("stage1", 1, "SHD", "NYE", 3, 1, teamRoster("shd"), teamRoster("nye"))
	tr.Update(g)
	m.Train(g)

	// No availability entry: the team summary stays at the prior and no
	// snapshot is written.
	assert.Equal(t, m.Prior(), m.Rating("SHD"))
	assert.Empty(t, m.History().Keys())
	assert.Nil(t, m.BestRoster("SHD"))
}

func TestPlayerPredictUsesPlaceholderForUnknownTeams(t *testing.T) {
	m := NewPlayerGaussian(DefaultParams(), standings.NewTracker(), roster.NewHistory(0), league.Availabilities{})

	p := m.Predict([2]string{"SHD", "NYE"}, [2]league.Roster{}, true)
	assert.InDelta(t, p.Win, p.Loss(), 1e-12)
	assert.Greater(t, p.Draw, 0.0)
}
