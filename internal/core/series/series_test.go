package series

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"league-predictor/internal/core/league"
	"league-predictor/internal/core/rating"
)

func TestOutcomesSumToOne(t *testing.T) {
	undrawable := rating.Prediction{Win: 0.62}
	drawable := rating.Prediction{Win: 0.55, Draw: 0.08}

	for _, format := range []league.MatchFormat{league.FormatRegular, league.FormatTitle} {
		dist, err := Outcomes(format, undrawable, drawable)
		require.NoError(t, err)

		total := 0.0
		for _, mass := range dist {
			total += mass
		}
		assert.InDelta(t, 1, total, 1e-9, format)
	}
}

func TestOutcomesNeverEndTied(t *testing.T) {
	dist, err := Outcomes(league.FormatRegular,
		rating.Prediction{Win: 0.5}, rating.Prediction{Win: 0.45, Draw: 0.1})
	require.NoError(t, err)

	for s := range dist {
		assert.NotEqual(t, s.A, s.B, "score %+v", s)
	}
}

func TestOutcomesRoleSymmetry(t *testing.T) {
	undrawable := rating.Prediction{Win: 0.62}
	drawable := rating.Prediction{Win: 0.55, Draw: 0.08}
	flippedU := rating.Prediction{Win: undrawable.Loss()}
	flippedD := rating.Prediction{Win: drawable.Loss(), Draw: drawable.Draw}

	ab, err := Outcomes(league.FormatRegular, undrawable, drawable)
	require.NoError(t, err)
	ba, err := Outcomes(league.FormatRegular, flippedU, flippedD)
	require.NoError(t, err)

	require.Equal(t, len(ab), len(ba))
	for s, mass := range ab {
		assert.InDelta(t, mass, ba[Score{s.B, s.A}], 1e-12, "score %+v", s)
	}
	assert.InDelta(t, ab.WinProb(), 1-ba.WinProb(), 1e-12)
	assert.InDelta(t, ab.ExpectedDiff(), -ba.ExpectedDiff(), 1e-12)
}

func TestOutcomesCertainWinnerSweeps(t *testing.T) {
	dist, err := Outcomes(league.FormatTitle,
		rating.Prediction{Win: 1}, rating.Prediction{Win: 1})
	require.NoError(t, err)

	assert.InDelta(t, 1, dist[Score{5, 0}], 1e-12)
	assert.InDelta(t, 1, dist.WinProb(), 1e-12)
	assert.InDelta(t, 5, dist.ExpectedDiff(), 1e-12)
}

func TestOutcomesUnknownFormat(t *testing.T) {
	_, err := Outcomes(league.MatchFormat("bo9"),
		rating.Prediction{Win: 0.5}, rating.Prediction{Win: 0.5})
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
